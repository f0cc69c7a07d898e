package wire

import (
	"fmt"
	"strings"
)

// ObjectRef identifies a logical protocol object at a point in time.
// Because the protocol recycles small numeric ids, the same (class, instance)
// pair can denote different objects over the life of a connection; Generation
// disambiguates successive incarnations. Two refs are equal iff all three
// fields match.
type ObjectRef struct {
	// Class is the protocol interface name, e.g. "wl_surface".
	Class string `json:"class"`

	// Instance is the numeric object id from the wire.
	Instance uint32 `json:"instance"`

	// Generation counts incarnations of this (Class, Instance) pair within
	// one connection, starting at 1.
	Generation uint32 `json:"generation"`
}

// IsZero reports whether the ref is the zero value.
func (o ObjectRef) IsZero() bool {
	return o.Class == "" && o.Instance == 0 && o.Generation == 0
}

// Compare orders refs by (Class, Instance, Generation). It returns a negative
// number, zero, or a positive number as o sorts before, equal to, or after
// other. This is the tie-break order used by object-column sorts.
func (o ObjectRef) Compare(other ObjectRef) int {
	if c := strings.Compare(o.Class, other.Class); c != 0 {
		return c
	}
	if o.Instance != other.Instance {
		if o.Instance < other.Instance {
			return -1
		}
		return 1
	}
	if o.Generation != other.Generation {
		if o.Generation < other.Generation {
			return -1
		}
		return 1
	}
	return 0
}

// String formats the ref as "class#instance [generation]".
func (o ObjectRef) String() string {
	return fmt.Sprintf("%s#%d [%d]", o.Class, o.Instance, o.Generation)
}
