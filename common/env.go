package common

import (
	"os"
	"strconv"
	"strings"
)

// EnvString returns the first non-empty value among keys.
func EnvString(keys []string, defaultValue string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return defaultValue
}

// EnvInt returns the first value among keys that parses as a
// non-negative int.
func EnvInt(keys []string, defaultValue int) int {
	for _, key := range keys {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err == nil && n >= 0 {
			return n
		}
	}
	return defaultValue
}

// EnvFloat returns the first value among keys that parses as a float, and
// whether one was found.
func EnvFloat(keys []string) (float64, bool) {
	for _, key := range keys {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil {
			return f, true
		}
	}
	return 0, false
}
