package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("SESSION_DURATION", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg := Load()

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.StoreBackend != "sql" {
		t.Errorf("StoreBackend = %q, want sql", cfg.StoreBackend)
	}
	if cfg.SessionDuration != 30*24*time.Hour {
		t.Errorf("SessionDuration = %v, want 720h", cfg.SessionDuration)
	}
	if len(cfg.CORSOrigins) != 0 {
		t.Errorf("CORSOrigins = %v, want empty", cfg.CORSOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "Firestore")
	t.Setenv("SESSION_DURATION", "2h")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, ,https://study.example.com")
	t.Setenv("DEBUG", "yes")

	cfg := Load()

	if cfg.StoreBackend != "firestore" {
		t.Errorf("StoreBackend = %q, want firestore", cfg.StoreBackend)
	}
	if cfg.SessionDuration != 2*time.Hour {
		t.Errorf("SessionDuration = %v, want 2h", cfg.SessionDuration)
	}
	want := []string{"http://localhost:3000", "https://study.example.com"}
	if len(cfg.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %v, want %v", cfg.CORSOrigins, want)
	}
	for i := range want {
		if cfg.CORSOrigins[i] != want[i] {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.CORSOrigins[i], want[i])
		}
	}
	if !cfg.Debug {
		t.Error("Debug should be true")
	}
}

func TestGetDurationRejectsInvalid(t *testing.T) {
	t.Setenv("SESSION_DURATION", "soon")
	if got := getDuration("SESSION_DURATION", time.Hour); got != time.Hour {
		t.Errorf("getDuration() = %v, want fallback 1h", got)
	}
}
