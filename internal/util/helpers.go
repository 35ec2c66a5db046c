package util

// BoolToInt converts a boolean to the 0/1 the task mirror stores.
func BoolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// IntToBool converts a stored 0/1 back to a boolean.
func IntToBool(i int) bool {
	return i != 0
}

// Clamp constrains a value to [min, max]. The floor wins when the range
// is empty, so clamping a cursor against an empty list yields min.
func Clamp(value, min, max int) int {
	if value > max {
		value = max
	}
	if value < min {
		value = min
	}
	return value
}
