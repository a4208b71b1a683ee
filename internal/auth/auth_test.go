package auth

import "testing"

func TestGetAPIKey_FromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key-123")

	key, err := GetAPIKey()
	if err != nil {
		t.Fatalf("GetAPIKey returned error: %v", err)
	}
	if key != "test-key-123" {
		t.Errorf("key = %q, want %q", key, "test-key-123")
	}
}

func TestGetAPIKey_Missing(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	if _, err := GetAPIKey(); err == nil {
		t.Error("expected error when GEMINI_API_KEY is unset")
	}
}
