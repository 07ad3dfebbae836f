package shared

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./likesync.db" {
			t.Errorf("expected database path ./likesync.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Credentials.Spotify.Market != "GB" {
			t.Errorf("expected market GB, got %s", config.Credentials.Spotify.Market)
		}

		if config.Sync.ChunkSize != 100 {
			t.Errorf("expected chunk size 100, got %d", config.Sync.ChunkSize)
		}

		if config.Matcher.DurationTolerance != 5 {
			t.Errorf("expected duration tolerance 5, got %v", config.Matcher.DurationTolerance)
		}

		if len(config.Matcher.Extensions) != 1 || config.Matcher.Extensions[0] != ".mp3" {
			t.Errorf("expected extensions [.mp3], got %v", config.Matcher.Extensions)
		}

		if config.Email.SMTPPort != 587 {
			t.Errorf("expected smtp port 587, got %d", config.Email.SMTPPort)
		}

		if config.Credentials.Spotify.Token() != nil {
			t.Error("default config should not carry a token")
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"

[server]
host = "0.0.0.0"
port = 8080

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
redirect_uri = "http://localhost:3000/callback"

[matcher]
duration_tolerance = 10
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Server.Addr() != "0.0.0.0:8080" {
			t.Errorf("expected addr 0.0.0.0:8080, got %s", config.Server.Addr())
		}

		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected spotify client_id test_client_id, got %s", config.Credentials.Spotify.ClientID)
		}

		if config.Matcher.DurationTolerance != 10 {
			t.Errorf("expected tolerance 10, got %v", config.Matcher.DurationTolerance)
		}

		if config.Sync.ChunkSize != 100 {
			t.Errorf("missing values should keep defaults, got chunk size %d", config.Sync.ChunkSize)
		}
	})

	t.Run("LoadConfig rejects malformed toml", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[server\nport ="), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("SaveConfig round trips the token", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		expiry := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		config.Credentials.Spotify.Update(&oauth2.Token{
			AccessToken:  "access",
			RefreshToken: "refresh",
			TokenType:    "Bearer",
			Expiry:       expiry,
		})

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("SaveConfig failed: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}

		tok := loaded.Credentials.Spotify.Token()
		if tok == nil {
			t.Fatal("expected persisted token")
		}
		if tok.AccessToken != "access" || tok.RefreshToken != "refresh" {
			t.Errorf("unexpected token: %+v", tok)
		}
		if !tok.Expiry.Equal(expiry) {
			t.Errorf("expected expiry %v, got %v", expiry, tok.Expiry)
		}
	})
}

func TestSpotifyConfigUpdate(t *testing.T) {
	t.Run("keeps refresh token when rotation omits it", func(t *testing.T) {
		c := SpotifyConfig{RefreshToken: "original"}
		c.Update(&oauth2.Token{AccessToken: "new"})

		if c.AccessToken != "new" {
			t.Errorf("expected access token new, got %s", c.AccessToken)
		}
		if c.RefreshToken != "original" {
			t.Errorf("expected refresh token to be kept, got %s", c.RefreshToken)
		}
	})

	t.Run("nil token is ignored", func(t *testing.T) {
		c := SpotifyConfig{AccessToken: "keep"}
		c.Update(nil)
		if c.AccessToken != "keep" {
			t.Errorf("expected access token to be kept, got %s", c.AccessToken)
		}
	})
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvClientID:       "env-id",
		EnvClientSecret:   "env-secret",
		EnvSenderEmail:    "me@example.com",
		EnvSenderPassword: "app-pass",
		EnvRecipientEmail: "you@example.com",
		EnvTargetPlaylist: "playlist-1",
	}

	config := DefaultConfig()
	ApplyEnvFunc(config, func(name string) string { return env[name] })

	if config.Credentials.Spotify.ClientID != "env-id" || config.Credentials.Spotify.ClientSecret != "env-secret" {
		t.Errorf("spotify credentials not overridden: %+v", config.Credentials.Spotify)
	}
	if config.Credentials.Spotify.RedirectURI != DefaultConfig().Credentials.Spotify.RedirectURI {
		t.Error("unset variables should not override config values")
	}
	if !config.Email.Configured() {
		t.Error("email should be configured from environment")
	}
	if config.Sync.TargetPlaylistID != "playlist-1" {
		t.Errorf("expected target playlist playlist-1, got %s", config.Sync.TargetPlaylistID)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		if err := LoadEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})

	t.Run("loads variables", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(path, []byte("LIKESYNC_TEST_VALUE=from-file\n"), 0644); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}
		t.Cleanup(func() { os.Unsetenv("LIKESYNC_TEST_VALUE") })

		if err := LoadEnv(path); err != nil {
			t.Fatalf("LoadEnv failed: %v", err)
		}
		if got := os.Getenv("LIKESYNC_TEST_VALUE"); got != "from-file" {
			t.Errorf("expected from-file, got %q", got)
		}
	})
}

func TestDatabase(t *testing.T) {
	t.Run("in-memory database applies pragmas", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("NewDatabase failed: %v", err)
		}
		defer db.Close()

		var sync int
		if err := db.QueryRow("PRAGMA synchronous").Scan(&sync); err != nil {
			t.Fatalf("failed to read pragma: %v", err)
		}
		if sync != 1 {
			t.Errorf("expected synchronous=NORMAL (1), got %d", sync)
		}
	})

	t.Run("file database uses WAL", func(t *testing.T) {
		db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
		if err != nil {
			t.Fatalf("NewDatabase failed: %v", err)
		}
		defer db.Close()
		ConfigureDatabase(db, 1, 1)

		var mode string
		if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
			t.Fatalf("failed to read pragma: %v", err)
		}
		if mode != "wal" {
			t.Errorf("expected journal_mode wal, got %s", mode)
		}
	})
}
