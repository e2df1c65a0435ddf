package paramcount

import (
	"encoding/json"
	"fmt"
)

// requireInt extracts a required integer config field. Every field access in
// the cost models goes through this helper so a failure always names the
// exact missing key.
func requireInt(config Config, key string) (int64, error) {
	val, ok := config[key]
	if !ok || val == nil {
		return 0, &MissingFieldError{Key: key}
	}
	n, err := asInt64(val)
	if err != nil {
		return 0, fmt.Errorf("config field '%s': %w", key, err)
	}
	return n, nil
}

// optionalInt extracts an integer config field, returning fallback when the
// key is absent. A present-but-malformed value is still an error.
func optionalInt(config Config, key string, fallback int64) (int64, error) {
	val, ok := config[key]
	if !ok || val == nil {
		return fallback, nil
	}
	n, err := asInt64(val)
	if err != nil {
		return 0, fmt.Errorf("config field '%s': %w", key, err)
	}
	return n, nil
}

// asInt64 converts the numeric representations encoding/json may produce.
func asInt64(val interface{}) (int64, error) {
	switch n := val.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		return int64(n), nil
	case json.Number:
		return n.Int64()
	default:
		return 0, fmt.Errorf("value %v (%T) is not an integer", val, val)
	}
}

// boolField reads an optional boolean field, defaulting to false.
func boolField(config Config, key string) bool {
	b, _ := config[key].(bool)
	return b
}

// stringField reads an optional string field, defaulting to "".
func stringField(config Config, key string) string {
	s, _ := config[key].(string)
	return s
}
