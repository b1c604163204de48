package config

import (
	"os"
	"testing"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "LH_TEST_STR_1", "redis://localhost:6379", "fallback", "redis://localhost:6379"},
		{"uses default when unset", "LH_TEST_STR_2", "", "fallback", "fallback"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				t.Setenv(tc.key, tc.envValue)
			}

			result := getEnvOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "LH_TEST_INT_1", "8", 3, 8},
		{"uses default when unset", "LH_TEST_INT_2", "", 3, 3},
		{"uses default for non-numeric", "LH_TEST_INT_3", "many", 3, 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				t.Setenv(tc.key, tc.envValue)
			}

			result := getEnvAsIntOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestMustGetEnv_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for missing required env var")
		}
	}()

	os.Unsetenv("LH_TEST_MISSING_VAR")
	mustGetEnv("LH_TEST_MISSING_VAR")
}

func TestMustGetEnv_ReturnsValue(t *testing.T) {
	t.Setenv("LH_TEST_REQUIRED", "super-secret")

	result := mustGetEnv("LH_TEST_REQUIRED")
	if result != "super-secret" {
		t.Errorf("Expected 'super-secret', got %q", result)
	}
}
