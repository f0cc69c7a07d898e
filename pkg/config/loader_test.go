package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waytrace/waytrace/pkg/query"
	"github.com/waytrace/waytrace/pkg/wire"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFilter_YAML(t *testing.T) {
	path := writeFile(t, "filter.yaml", `
direction: to-peer
timeMin: 1000000
classes: [wl_surface, wl_buffer]
methods:
  - commit
instances: [3, 19]
where: generation > 1
`)

	spec, err := LoadFilter(path)
	require.NoError(t, err)
	assert.Equal(t, wire.DirectionToPeer, spec.Direction)
	assert.Equal(t, int64(1_000_000), spec.TimeMin)
	assert.Equal(t, []string{"wl_surface", "wl_buffer"}, spec.Classes)
	assert.Equal(t, []string{"commit"}, spec.Methods)
	assert.Equal(t, []uint32{3, 19}, spec.Instances)
	assert.Equal(t, "generation > 1", spec.Where)
	assert.False(t, spec.IsEmpty())
}

func TestLoadFilter_JSON(t *testing.T) {
	path := writeFile(t, "filter.json",
		`{"direction": "from-peer", "methods": ["done"], "timeMax": 5000000}`)

	spec, err := LoadFilter(path)
	require.NoError(t, err)
	assert.Equal(t, wire.DirectionFromPeer, spec.Direction)
	assert.Equal(t, []string{"done"}, spec.Methods)
	assert.Equal(t, int64(5_000_000), spec.TimeMax)
}

func TestLoadFilter_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFilter(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, ErrFileNotFound)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := LoadFilter(writeFile(t, "empty.yaml", ""))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := LoadFilter(t.TempDir())
		assert.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := LoadFilter(writeFile(t, "bad.yaml", "methods: [unclosed"))
		assert.ErrorIs(t, err, ErrInvalidYAML)
	})

	t.Run("bad json", func(t *testing.T) {
		_, err := LoadFilter(writeFile(t, "bad.json", "{not json"))
		assert.ErrorIs(t, err, ErrInvalidJSON)
	})
}

func TestSaveFilter_RoundTrip(t *testing.T) {
	spec := &query.FilterSpec{
		Direction: wire.DirectionToPeer,
		Classes:   []string{"wl_surface"},
		Arguments: []string{"wl_buffer@"},
		Where:     `method != "sync"`,
	}

	for _, name := range []string{"f.yaml", "f.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, SaveFilter(path, spec))

			loaded, err := LoadFilter(path)
			require.NoError(t, err)
			assert.Equal(t, spec, loaded)
		})
	}
}

func TestSaveFilter_Nil(t *testing.T) {
	assert.Error(t, SaveFilter(filepath.Join(t.TempDir(), "f.yaml"), nil))
}
