package utils

import "strconv"

// ToStringMap flattens the scalar values of a decoded JSON object into a
// string map. Nested objects and arrays are skipped.
func ToStringMap(m map[string]any) map[string]string {
	fields := make(map[string]string, len(m))
	for k, v := range m {
		switch value := v.(type) {
		case string:
			fields[k] = value
		case bool:
			fields[k] = strconv.FormatBool(value)
		case float64:
			fields[k] = strconv.FormatFloat(value, 'f', -1, 64)
		}
	}
	return fields
}
