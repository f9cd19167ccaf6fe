package recording

// Event is one decoded datum of a topic: an open mapping of field name to
// value in the msgpack value model. Every event carries "timestamp"; which
// other keys are present depends on the schema version that wrote it.
type Event map[string]any

// Field names shared across schema versions.
const (
	FieldTimestamp  = "timestamp"
	FieldTopic      = "topic"
	FieldNormPos    = "norm_pos"
	FieldBase       = "base"
	FieldBaseData   = "base_data"
	FieldConfidence = "confidence"
	FieldID         = "id"
	FieldLabel      = "label"
)

// Timestamp returns the event's timestamp.
func (e Event) Timestamp() (float64, bool) {
	return AsFloat(e[FieldTimestamp])
}

// String returns the string stored under key.
func (e Event) String(key string) (string, bool) {
	s, ok := e[key].(string)
	return s, ok
}

// Float returns the number stored under key as float64.
func (e Event) Float(key string) (float64, bool) {
	return AsFloat(e[key])
}

// Rename moves the value under from to to. It reports whether from was
// present; when it is absent the event is left unchanged, which makes
// renames safe to repeat.
func (e Event) Rename(from, to string) bool {
	v, ok := e[from]
	if !ok {
		return false
	}
	delete(e, from)
	e[to] = v
	return true
}

// Point returns a two-element numeric sequence stored under key.
func (e Event) Point(key string) (x, y float64, ok bool) {
	return AsPoint(e[key])
}

// AsFloat converts any numeric msgpack value to float64.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint32:
		return float64(n), true
	default:
		return 0, false
	}
}

// AsInt converts an integral msgpack value to int.
func AsInt(v any) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case int:
		return n, true
	case int32:
		return int(n), true
	case uint32:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

// AsPoint converts a two-element numeric sequence.
func AsPoint(v any) (x, y float64, ok bool) {
	s, isSlice := v.([]any)
	if !isSlice || len(s) != 2 {
		return 0, 0, false
	}
	x, okX := AsFloat(s[0])
	y, okY := AsFloat(s[1])
	return x, y, okX && okY
}
