package env

import (
	"os"
	"strings"
)

// Get returns the trimmed value of the environment variable or the fallback.
func Get(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

// Bool interprets common truthy values for the environment variable.
func Bool(key string, fallback bool) bool {
	value := strings.ToLower(Get(key, ""))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}
