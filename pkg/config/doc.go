// Package config loads and saves filter specifications.
//
// Filter files are JSON or YAML, auto-detected by extension (.yaml/.yml for
// YAML, otherwise JSON):
//
//	direction: to-peer
//	classes: [wl_surface, wl_buffer]
//	methods: [commit, attach]
//	where: instance > 10
//
// Loading returns wrapped sentinel errors (ErrFileNotFound, ErrInvalidYAML,
// ...) for the common failure cases so callers can branch with errors.Is.
package config
