package env

import (
	"os"
	"strings"
)

// Prefix namespaces every variable read by the service.
const Prefix = "TABLESIDE_"

// Get returns TABLESIDE_<key>, then the bare key, then fallback. Values are
// trimmed; blank counts as unset.
func Get(key, fallback string) string {
	for _, name := range []string{Prefix + key, key} {
		if val := strings.TrimSpace(os.Getenv(name)); val != "" {
			return val
		}
	}
	return fallback
}
