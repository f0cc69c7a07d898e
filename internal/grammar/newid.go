package grammar

import (
	"strconv"
	"strings"
)

// newIDPrefix marks an argument that brings a new object to life.
const newIDPrefix = "new id "

// unknownClass is what the log prints when it cannot name a dynamically
// bound interface.
const unknownClass = "[unknown]"

// NewIDRef is the class/instance pair embedded in a "new id" argument.
type NewIDRef struct {
	Class    string
	Instance uint32
}

// ParseNewID inspects one argument for the "new id " side channel. The class
// name sits between the fixed prefix and the '@' separator ('#' in the legacy
// dialect); the instance id follows the separator.
func ParseNewID(arg string) (NewIDRef, bool) {
	if !strings.HasPrefix(arg, newIDPrefix) {
		return NewIDRef{}, false
	}
	p := strings.IndexByte(arg, '@')
	if p < 0 {
		p = strings.IndexByte(arg, '#')
	}
	if p <= 0 {
		return NewIDRef{}, false
	}
	instance, err := strconv.ParseUint(arg[p+1:], 10, 32)
	if err != nil {
		return NewIDRef{}, false
	}
	return NewIDRef{Class: arg[len(newIDPrefix):p], Instance: uint32(instance)}, true
}

// NewIDClass resolves the effective class for a new-id argument. For
// wl_registry.bind calls with exactly 4 arguments the log prints "[unknown]"
// as the class; the true interface name is the quoted second argument.
func (r *Record) NewIDClass(parsed string) string {
	if r.Class == "wl_registry" && r.Method == "bind" && len(r.Arguments) == 4 && parsed == unknownClass {
		if s := r.Arguments[1]; len(s) >= 2 {
			return s[1 : len(s)-1]
		}
	}
	return parsed
}
