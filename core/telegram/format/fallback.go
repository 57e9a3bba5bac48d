package format

import "strings"

// Fallback returns s unless it is empty after trimming, in which case def is returned.
func Fallback(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
