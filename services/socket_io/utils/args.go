package socketio_utils

// Helpers to pull typed fields out of socket.io event payloads, which
// arrive as map[string]interface{}.

// ExtractPayload returns the first argument as a payload map.
func ExtractPayload(args []interface{}) (map[string]interface{}, bool) {
	if len(args) < 1 {
		return nil, false
	}
	data, ok := args[0].(map[string]interface{})
	return data, ok
}

// GetString reads a string field, returning "" when absent or mistyped.
func GetString(data map[string]interface{}, key string) string {
	value, _ := data[key].(string)
	return value
}

// GetInt reads a numeric field. socket.io decodes JSON numbers as
// float64, so both representations are accepted.
func GetInt(data map[string]interface{}, key string, fallback int) int {
	switch v := data[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}

// GetMap reads a nested object field.
func GetMap(data map[string]interface{}, key string) (map[string]interface{}, bool) {
	value, ok := data[key].(map[string]interface{})
	return value, ok
}
