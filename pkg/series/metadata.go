package series

import "strconv"

// Well-known metadata keys.
const (
	MetaX    = "x"
	MetaY    = "y"
	MetaKind = "kind"
)

// Metadata holds free-form item metadata such as spatial coordinates and
// stress kind. Values survive a JSON round trip, so numeric entries may come
// back as float64 regardless of how they were stored.
type Metadata map[string]interface{}

// XY returns the spatial coordinates stored under the "x" and "y" keys.
// ok is false when either coordinate is missing or non-numeric.
func (m Metadata) XY() (x, y float64, ok bool) {
	x, xok := m.number(MetaX)
	y, yok := m.number(MetaY)
	return x, y, xok && yok
}

// Kind returns the stress kind, or an empty string when not set.
func (m Metadata) Kind() string {
	if v, ok := m[MetaKind].(string); ok {
		return v
	}
	return ""
}

// Copy returns a shallow copy of the metadata map.
func (m Metadata) Copy() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Merge copies all entries from other into m, overwriting existing keys.
func (m Metadata) Merge(other Metadata) {
	for k, v := range other {
		m[k] = v
	}
}

func (m Metadata) number(key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
