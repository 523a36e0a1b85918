package internal

import "strings"

// SanitizeString removes control characters from user supplied input before
// it is logged or echoed back, preventing forged log lines and terminal
// escapes.
func SanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}

// SanitizeStringArray applies SanitizeString to every element.
func SanitizeStringArray(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = SanitizeString(s)
	}
	return out
}
