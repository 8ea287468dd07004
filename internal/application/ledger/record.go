package ledger

// Record is a decoded ledger query result. Chaincode versions have shipped
// both PascalCase and camelCase field names, so all accessors take the
// candidate keys and return the first one present.
type Record map[string]any

// Str returns the first candidate key holding a string value.
func (r Record) Str(keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok {
			if s, ok := v.(string); ok {
				return s, true
			}
		}
	}
	return "", false
}

// Bool returns the first candidate key holding a boolean value. String
// renditions "true"/"false" are accepted as well.
func (r Record) Bool(keys ...string) (bool, bool) {
	for _, k := range keys {
		v, ok := r[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case bool:
			return t, true
		case string:
			if t == "true" {
				return true, true
			}
			if t == "false" {
				return false, true
			}
		}
	}
	return false, false
}

// Nested returns the first candidate key holding an object value.
func (r Record) Nested(keys ...string) (Record, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok {
			if m, ok := v.(map[string]any); ok {
				return Record(m), true
			}
		}
	}
	return nil, false
}
