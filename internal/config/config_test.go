package config

import (
	"os"
	"path/filepath"
	"testing"
)

var managedEnv = []string{
	"API_PORT", "LOG_LEVEL", "LOG_FORMAT", "DB_PATH",
	"QDRANT_URL", "QDRANT_COLLECTION", "QDRANT_VECTOR_SIZE",
	"EMBEDDING_BASE_URL", "EMBEDDING_MODEL_NAME", "EMBEDDING_API_KEY",
	"GENAI_BASE_URL", "GEMINI_API_KEY", "GEMINI_API_KEY_2", "GENAI_MODEL",
	"USER_DATA_DIR",
}

func resetEnv(t *testing.T) {
	t.Helper()
	for _, key := range managedEnv {
		original := os.Getenv(key)
		_ = os.Unsetenv(key)
		t.Cleanup(func() {
			if original != "" {
				_ = os.Setenv(key, original)
			} else {
				_ = os.Unsetenv(key)
			}
		})
	}
}

func validEnv(t *testing.T) {
	t.Helper()
	tmp := t.TempDir()
	_ = os.Setenv("GEMINI_API_KEY", "test-key")
	_ = os.Setenv("QDRANT_VECTOR_SIZE", "384")
	_ = os.Setenv("DB_PATH", filepath.Join(tmp, "data", "egov-bot.db"))
	_ = os.Setenv("USER_DATA_DIR", filepath.Join(tmp, "user_data"))
}

func TestLoadDefaults(t *testing.T) {
	resetEnv(t)
	validEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIPort != "7860" {
		t.Errorf("APIPort = %q, want 7860", cfg.APIPort)
	}
	if cfg.QdrantCollection != "procedures" {
		t.Errorf("QdrantCollection = %q, want procedures", cfg.QdrantCollection)
	}
	if cfg.GeminiModel != "gemini-2.5-flash" {
		t.Errorf("GeminiModel = %q", cfg.GeminiModel)
	}
	if cfg.QdrantVectorSize != 384 {
		t.Errorf("QdrantVectorSize = %d, want 384", cfg.QdrantVectorSize)
	}
}

func TestLoadCreatesDirectories(t *testing.T) {
	resetEnv(t)
	validEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(cfg.DBPath)); err != nil {
		t.Errorf("data directory not created: %v", err)
	}
	if _, err := os.Stat(cfg.UserDataDir); err != nil {
		t.Errorf("user data directory not created: %v", err)
	}
}

func TestLoadMissingGeminiKey(t *testing.T) {
	resetEnv(t)
	validEnv(t)
	_ = os.Unsetenv("GEMINI_API_KEY")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error without GEMINI_API_KEY")
	}
}

func TestLoadVectorSize(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"missing", "", true},
		{"not a number", "abc", true},
		{"zero", "0", true},
		{"valid", "768", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetEnv(t)
			validEnv(t)
			if tt.value == "" {
				_ = os.Unsetenv("QDRANT_VECTOR_SIZE")
			} else {
				_ = os.Setenv("QDRANT_VECTOR_SIZE", tt.value)
			}

			_, err := Load()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
