package trigger

import "time"

// Snapshot is the decoded field set of a document at one side of an event.
// Handlers read it through the typed accessors and treat a missing or
// mistyped field as absent, never trusting payload shape at runtime.
type Snapshot map[string]any

// String returns the string field for key, or "" when missing or not a
// string.
func (s Snapshot) String(key string) string {
	v, _ := s[key].(string)
	return v
}

// Time returns the timestamp field for key and whether it was present.
func (s Snapshot) Time(key string) (time.Time, bool) {
	v, ok := s[key].(time.Time)
	return v, ok
}

// Bool returns the boolean field for key.
func (s Snapshot) Bool(key string) bool {
	v, _ := s[key].(bool)
	return v
}

// Strings returns the array field for key keeping only its string elements.
func (s Snapshot) Strings(key string) []string {
	arr, ok := s[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, e := range arr {
		if str, ok := e.(string); ok && str != "" {
			out = append(out, str)
		}
	}
	return out
}

// Snapshot returns the map field for key as a nested snapshot.
func (s Snapshot) Snapshot(key string) Snapshot {
	v, _ := s[key].(map[string]any)
	return Snapshot(v)
}
