package env

import (
	"os"
	"strings"
)

// Get returns the value of the given environment variable or a fallback.
// Whitespace-only values count as unset.
func Get(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}
