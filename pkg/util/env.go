package util

import (
	"bufio"
	"os"
	"strings"

	"github.com/spf13/cast"
)

// GetEnv returns the value of an environment variable, or "" if unset.
func GetEnv(key string) string {
	return os.Getenv(key)
}

// GetEnvDefault returns the value of an environment variable, or def if unset.
func GetEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// GetIntEnv parses an environment variable as int64, 0 if unset or invalid.
func GetIntEnv(key string) int64 {
	return cast.ToInt64(os.Getenv(key))
}

// GetBoolEnv parses an environment variable as bool ("1", "true", "yes"...).
func GetBoolEnv(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	if v == "1" || v == "yes" {
		return true
	}
	return cast.ToBool(v)
}

// GetFloatEnv parses an environment variable as float64, 0 if unset or invalid.
func GetFloatEnv(key string) float64 {
	return cast.ToFloat64(os.Getenv(key))
}

// LoadEnv loads KEY=VALUE pairs from .env.<env> (falling back to .env) into the
// process environment. Existing variables are not overwritten.
func LoadEnv(env string) error {
	path := ".env." + env
	if _, err := os.Stat(path); err != nil {
		path = ".env"
		if _, err := os.Stat(path); err != nil {
			return err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}
