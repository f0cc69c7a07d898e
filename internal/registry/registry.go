// Package registry tracks which numeric protocol id denotes which logical
// object over the life of a connection. Ids are recycled on the wire, so each
// (class, instance) pair carries a generation counter that increments every
// time the same id is recreated after destruction and never resets.
package registry

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/waytrace/waytrace/pkg/wire"
)

// Registry-level failures. All three are fatal to an in-progress parse: a
// misresolved id would silently corrupt every later resolution on that
// connection.
var (
	// ErrUnknownInstance means a line referenced an id that is neither live
	// nor (when a class was supplied) in the graveyard.
	ErrUnknownInstance = errors.New("unknown instance")

	// ErrDuplicateInstance means a "new id" argument named an id that is
	// still live.
	ErrDuplicateInstance = errors.New("instance already exists")

	// ErrWrongClass means a live id was referenced under a different class
	// than the one it was created with.
	ErrWrongClass = errors.New("instance has a different class")
)

type genKey struct {
	class    string
	instance uint32
}

// Table is the identity table for one connection. It maps live instance ids
// to object refs, keeps the per-(class, instance) generation counters, and
// retains destroyed refs in an append-ordered graveyard for retroactive
// lookups.
type Table struct {
	live        map[uint32]wire.ObjectRef
	generations map[genKey]uint32
	graveyard   []wire.ObjectRef
	log         *slog.Logger
}

// NewTable returns an empty identity table. The logger is used for
// diagnostics only (graveyard hits); pass logging.Nop() to silence it.
func NewTable(log *slog.Logger) *Table {
	return &Table{
		live:        make(map[uint32]wire.ObjectRef),
		generations: make(map[genKey]uint32),
		log:         log,
	}
}

// Resolve returns the object a bare numeric id currently denotes. A live id
// wins; when class is non-empty it must match the live ref's class. An id
// that is no longer live is searched for in the graveyard, newest first
// (the reference then predates the object's destruction record in the log —
// worth a diagnostic, but not an error).
func (t *Table) Resolve(class string, instance uint32) (wire.ObjectRef, error) {
	o, live := t.live[instance]
	if !live {
		if class != "" {
			for i := len(t.graveyard) - 1; i >= 0; i-- {
				g := t.graveyard[i]
				if g.Instance == instance && g.Class == class {
					t.log.Warn("resolved object via graveyard",
						"class", g.Class, "instance", g.Instance, "generation", g.Generation)
					return g, nil
				}
			}
		}
		return wire.ObjectRef{}, fmt.Errorf("%w: %s#%d", ErrUnknownInstance, class, instance)
	}
	if class != "" && o.Class != class {
		return wire.ObjectRef{}, fmt.Errorf("%w: %s#%d is live, expected class %s",
			ErrWrongClass, o.Class, instance, class)
	}
	return o, nil
}

// Create registers a new live object under instance. The generation is seeded
// at 1 for the first (class, instance) use and incremented on every reuse.
func (t *Table) Create(class string, instance uint32) (wire.ObjectRef, error) {
	if o, ok := t.live[instance]; ok {
		return wire.ObjectRef{}, fmt.Errorf("%w: creating %s#%d but %s#%d is live",
			ErrDuplicateInstance, class, instance, o.Class, o.Instance)
	}
	key := genKey{class: class, instance: instance}
	generation := t.generations[key] + 1
	t.generations[key] = generation

	o := wire.ObjectRef{Class: class, Instance: instance, Generation: generation}
	t.live[instance] = o
	return o, nil
}

// Destroy retires a live object, moving it to the graveyard.
func (t *Table) Destroy(instance uint32) (wire.ObjectRef, error) {
	o, ok := t.live[instance]
	if !ok {
		return wire.ObjectRef{}, fmt.Errorf("%w: destroy of #%d", ErrUnknownInstance, instance)
	}
	delete(t.live, instance)
	t.graveyard = append(t.graveyard, o)
	return o, nil
}

// DestroyIfExists removes instance from the live set if present. Unlike
// Destroy it is idempotent and does not bury the ref: it exists for
// server-allocated ids that are recycled without a delete_id ever appearing
// in the log, and burying those would produce bogus graveyard hits.
func (t *Table) DestroyIfExists(instance uint32) {
	delete(t.live, instance)
}

// LiveCount returns the number of currently live objects.
func (t *Table) LiveCount() int {
	return len(t.live)
}

// GraveyardCount returns the number of destroyed objects on record.
func (t *Table) GraveyardCount() int {
	return len(t.graveyard)
}
