package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Server.Port != 3000 {
			t.Errorf("expected default port 3000, got %d", config.Server.Port)
		}
		if config.Server.RateLimitMax != 80 || config.Server.RateLimitWindow != 30 {
			t.Errorf("unexpected rate limit defaults: %+v", config.Server)
		}
		if config.Database.Path != "crate.db" {
			t.Errorf("expected default database path crate.db, got %s", config.Database.Path)
		}
		if config.Server.SessionTTLHours != 24 {
			t.Errorf("expected default session ttl 24h, got %d", config.Server.SessionTTLHours)
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")

		content := `
[credentials.spotify]
client_id = "cid"
client_secret = "secret"

[server]
port = 8080
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if config.Credentials.Spotify.ClientID != "cid" {
			t.Errorf("expected client id from file, got %q", config.Credentials.Spotify.ClientID)
		}
		if config.Server.Port != 8080 {
			t.Errorf("expected port 8080, got %d", config.Server.Port)
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("Environment Overrides", func(t *testing.T) {
		t.Setenv("SPOTIFY_CLIENT_ID", "env-cid")
		t.Setenv("PORT", "9090")

		config := DefaultConfig()
		if config.Credentials.Spotify.ClientID != "env-cid" {
			t.Errorf("expected env client id, got %q", config.Credentials.Spotify.ClientID)
		}
		if config.Server.Port != 9090 {
			t.Errorf("expected env port 9090, got %d", config.Server.Port)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := CreateConfigFile(path); err == nil {
			t.Error("expected error for existing file")
		}
	})
}

func TestRateLimitError(t *testing.T) {
	err := &RateLimitError{RetryAfter: 5 * time.Second}

	if !errors.Is(err, ErrRateLimited) {
		t.Error("expected RateLimitError to unwrap to ErrRateLimited")
	}

	var rateErr *RateLimitError
	if !errors.As(err, &rateErr) || rateErr.RetryAfter != 5*time.Second {
		t.Errorf("expected retry delay to survive unwrapping, got %v", rateErr)
	}
}

func TestMarshalJSON(t *testing.T) {
	payload := map[string]int{"n": 1}

	t.Run("Compact", func(t *testing.T) {
		out, err := MarshalJSON(payload, false)
		if err != nil {
			t.Fatalf("MarshalJSON failed: %v", err)
		}
		if string(out) != `{"n":1}` {
			t.Errorf("expected compact output, got %s", out)
		}
	})

	t.Run("Pretty", func(t *testing.T) {
		out, err := MarshalJSON(payload, true)
		if err != nil {
			t.Fatalf("MarshalJSON failed: %v", err)
		}
		if string(out) != "{\n  \"n\": 1\n}" {
			t.Errorf("expected indented output, got %s", out)
		}
	})

	t.Run("Unmarshalable", func(t *testing.T) {
		if _, err := MarshalJSON(make(chan int), false); err == nil {
			t.Error("expected an error for an unmarshalable value")
		}
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == "" || a == b {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a, b)
	}
}

func TestMigrations(t *testing.T) {
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if err := RunMigrations(db); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// reapplying must be a no-op
	if err := RunMigrations(db); err != nil {
		t.Fatalf("expected idempotent migrations, got %v", err)
	}

	for _, table := range []string{"users", "tokens", "sessions"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("expected table %s to exist: %v", table, err)
		}
	}
}
