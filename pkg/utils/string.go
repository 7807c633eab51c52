package utils

// Truncate caps s at maxLen bytes, appending an ellipsis when cut
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
