package wire

import "gopkg.in/yaml.v3"

// Direction indicates which way a message travelled relative to the
// compositor. The ordinal order matters: it is the sort order for the
// direction column.
type Direction int

// Direction values. DirectionAny is only meaningful in filters, where it
// means "no constraint".
const (
	DirectionAny Direction = iota
	DirectionFromPeer
	DirectionToPeer
	DirectionUnknown
)

// String returns the human-readable direction label.
func (d Direction) String() string {
	switch d {
	case DirectionAny:
		return "any"
	case DirectionFromPeer:
		return "from-peer"
	case DirectionToPeer:
		return "to-peer"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so directions serialize as
// their labels in JSON and YAML.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unrecognized labels
// decode as DirectionUnknown; an empty label decodes as DirectionAny.
func (d *Direction) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", "any":
		*d = DirectionAny
	case "from-peer":
		*d = DirectionFromPeer
	case "to-peer":
		*d = DirectionToPeer
	default:
		*d = DirectionUnknown
	}
	return nil
}

// MarshalYAML serializes the direction as its label.
func (d Direction) MarshalYAML() (any, error) {
	return d.String(), nil
}

// UnmarshalYAML decodes a direction label from YAML.
func (d *Direction) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}
