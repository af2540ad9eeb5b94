package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "aural.db" {
			t.Errorf("expected database path aural.db, got %s", config.Database.Path)
		}

		if config.Resolver.TimeoutMS != 3500 {
			t.Errorf("expected resolver timeout 3500ms, got %d", config.Resolver.TimeoutMS)
		}

		if config.Player.Volume != 0.7 {
			t.Errorf("expected default volume 0.7, got %f", config.Player.Volume)
		}

		if config.Player.RepeatMode != "off" {
			t.Errorf("expected repeat mode off, got %s", config.Player.RepeatMode)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
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
max_open_conns = 20
max_idle_conns = 10

[resolver]
timeout_ms = 2500

[[resolver.mirrors]]
url = "https://piped.example.com"
dialect = "piped"

[[resolver.mirrors]]
url = "https://invidious.example.com"
dialect = "invidious"

[player]
volume = 0.4
buffer_kb = 128
repeat_mode = "all"

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
redirect_uri = "http://localhost:3000/callback"
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

		if config.Resolver.TimeoutMS != 2500 {
			t.Errorf("expected resolver timeout 2500ms, got %d", config.Resolver.TimeoutMS)
		}

		if len(config.Resolver.Mirrors) != 2 {
			t.Fatalf("expected 2 mirrors, got %d", len(config.Resolver.Mirrors))
		}

		if config.Resolver.Mirrors[1].Dialect != "invidious" {
			t.Errorf("expected second mirror dialect invidious, got %s", config.Resolver.Mirrors[1].Dialect)
		}

		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected spotify client_id test_client_id, got %s", config.Credentials.Spotify.ClientID)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing config file")
		}
	})
}
