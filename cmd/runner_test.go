package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/services"
	"github.com/desertthunder/likesync/internal/shared"
	tu "github.com/desertthunder/likesync/internal/testing"
)

type fakeLibrary struct {
	entries []models.LibraryEntry
	err     error
}

func (f *fakeLibrary) ListLocalTracks(ctx context.Context, dir string, recursive bool) ([]models.LibraryEntry, error) {
	return f.entries, f.err
}

type fakeMailer struct {
	subject string
	body    string
	sent    int
	err     error
}

func (f *fakeMailer) Send(ctx context.Context, subject, body string) error {
	f.sent++
	f.subject, f.body = subject, body
	return f.err
}

type fakeOAuthCatalog struct {
	*tu.MockCatalog
}

func (f *fakeOAuthCatalog) AuthURL(state string) string {
	return "https://accounts.example.com/authorize?state=" + state
}

func (f *fakeOAuthCatalog) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: code}, nil
}

func (f *fakeOAuthCatalog) Authenticate(ctx context.Context, token *oauth2.Token) error {
	return nil
}

// newTestRunner returns a runner writing to a buffer with its database in a temp dir.
func newTestRunner(t *testing.T, catalog services.Catalog, lib *fakeLibrary) (*Runner, *bytes.Buffer) {
	t.Helper()

	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(t.TempDir(), "likesync.db")

	output := &bytes.Buffer{}
	opts := RunnerOpts{
		Config:  config,
		Catalog: catalog,
		Logger:  log.New(io.Discard),
		Output:  output,
	}
	if lib != nil {
		opts.Library = lib
	}

	runner := NewRunner(opts)
	t.Cleanup(func() { runner.Close() })
	return runner, output
}

// run executes args against the runner's command tree without the root Before hook.
func run(r *Runner, args ...string) error {
	app := &cli.Command{Name: "likesync", Commands: r.register()}
	return app.Run(context.Background(), append([]string{"likesync"}, args...))
}

func syncFixture() *tu.MockCatalog {
	liked := models.NewCollection(
		tu.Track("a", "Alpha", "Band", 200000, 50),
		tu.Track("b", "Beta", "Band", 210000, 40),
	)
	playlist := models.NewCollection(
		tu.Track("b", "Beta", "Band", 210000, 40),
		tu.Track("c", "Gone", "Old", 190000, 10),
	)
	return tu.NewMockCatalog(liked, "pl", playlist)
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			catalog := &tu.MockCatalog{}
			lib := &fakeLibrary{}
			mailer := &fakeMailer{}

			runner := NewRunner(RunnerOpts{
				Config:  config,
				Logger:  logger,
				Output:  output,
				Catalog: catalog,
				Library: lib,
				Mailer:  mailer,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.catalog != catalog {
				t.Error("expected catalog to be set")
			}
			if runner.library != lib {
				t.Error("expected library to be set")
			}
			if runner.mailer != mailer {
				t.Error("expected mailer to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: "/test/path/config.toml"})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: tu.NewLimitedWriter(1, &bytes.Buffer{})})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}
		for _, want := range []string{"setup", "auth", "sync", "catalog", "library", "match", "history", "tui"} {
			if !names[want] {
				t.Errorf("expected %q command", want)
			}
		}
	})

	t.Run("saveTokens", func(t *testing.T) {
		t.Run("saves tokens successfully", func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.toml")

			config := shared.DefaultConfig()
			config.Credentials.Spotify.ClientID = "test_id"
			config.Credentials.Spotify.ClientSecret = "test_secret"
			if err := shared.SaveConfig(configPath, config); err != nil {
				t.Fatalf("failed to create test config: %v", err)
			}

			runner := NewRunner(RunnerOpts{Config: config, ConfigPath: configPath})

			token := &oauth2.Token{AccessToken: "new_access_token", RefreshToken: "new_refresh_token"}
			if err := runner.saveTokens(token); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			loaded, err := shared.LoadConfig(configPath)
			if err != nil {
				t.Fatalf("failed to reload config: %v", err)
			}
			if loaded.Credentials.Spotify.AccessToken != "new_access_token" {
				t.Errorf("expected access token to be updated, got %s", loaded.Credentials.Spotify.AccessToken)
			}
			if loaded.Credentials.Spotify.RefreshToken != "new_refresh_token" {
				t.Errorf("expected refresh token to be updated, got %s", loaded.Credentials.Spotify.RefreshToken)
			}
			if loaded.Credentials.Spotify.ClientID != "test_id" {
				t.Errorf("expected credentials to survive, got %s", loaded.Credentials.Spotify.ClientID)
			}
		})

		t.Run("handles nil config error", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: "/tmp/test.toml"})
			runner.config = nil

			err := runner.saveTokens(&oauth2.Token{AccessToken: "test"})
			if err == nil || !strings.Contains(err.Error(), "config is nil") {
				t.Errorf("expected nil config error, got %v", err)
			}
		})

		t.Run("handles empty configPath", func(t *testing.T) {
			config := shared.DefaultConfig()
			runner := NewRunner(RunnerOpts{Config: config})

			if err := runner.saveTokens(&oauth2.Token{AccessToken: "new_token", RefreshToken: "new_refresh"}); err != nil {
				t.Fatalf("expected no error with empty path, got %v", err)
			}
			if config.Credentials.Spotify.AccessToken != "new_token" {
				t.Error("expected config to be updated in memory")
			}
		})

		t.Run("handles SaveConfig failure", func(t *testing.T) {
			invalidPath := filepath.Join(t.TempDir(), "missing", "dir", "config.toml")
			runner := NewRunner(RunnerOpts{Config: shared.DefaultConfig(), ConfigPath: invalidPath})

			err := runner.saveTokens(&oauth2.Token{AccessToken: "test"})
			if err == nil || !strings.Contains(err.Error(), "failed to save config") {
				t.Errorf("expected save config error, got %v", err)
			}
		})

		t.Run("nil token keeps saved tokens", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Credentials.Spotify.RefreshToken = "keep"
			runner := NewRunner(RunnerOpts{Config: config})

			if err := runner.saveTokens(nil); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if config.Credentials.Spotify.RefreshToken != "keep" {
				t.Error("expected refresh token to be kept")
			}
		})
	})

	t.Run("catalogService", func(t *testing.T) {
		t.Run("returns injected catalog", func(t *testing.T) {
			catalog := syncFixture()
			runner, _ := newTestRunner(t, catalog, nil)

			got, err := runner.catalogService(context.Background())
			if err != nil || got != catalog {
				t.Errorf("expected injected catalog, got %v, %v", got, err)
			}
		})

		t.Run("missing credentials", func(t *testing.T) {
			runner, _ := newTestRunner(t, nil, nil)
			runner.config.Credentials.Spotify.ClientID = ""

			if _, err := runner.catalogService(context.Background()); !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("missing token", func(t *testing.T) {
			runner, _ := newTestRunner(t, nil, nil)

			if _, err := runner.catalogService(context.Background()); !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})

		t.Run("builds service from saved token once", func(t *testing.T) {
			runner, _ := newTestRunner(t, nil, nil)
			runner.config.Credentials.Spotify.AccessToken = "access"
			runner.config.Credentials.Spotify.TokenExpiry = time.Now().Add(time.Hour)

			first, err := runner.catalogService(context.Background())
			if err != nil {
				t.Fatalf("catalogService failed: %v", err)
			}
			if first.Name() != "Spotify" {
				t.Errorf("expected Spotify service, got %s", first.Name())
			}
			second, _ := runner.catalogService(context.Background())
			if first != second {
				t.Error("expected the service to be cached")
			}
		})
	})
}

func TestSyncCommand(t *testing.T) {
	t.Run("dry run prints the delta without writing", func(t *testing.T) {
		catalog := syncFixture()
		runner, output := newTestRunner(t, catalog, nil)

		if err := run(runner, "sync", "--playlist", "pl", "--dry-run"); err != nil {
			t.Fatalf("sync failed: %v", err)
		}

		out := output.String()
		for _, want := range []string{"Sync Preview (dry run)", "Tracks to add: 1", "  + Alpha by Band", "Tracks to remove: 1", "  - Gone by Old"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
		if len(catalog.AddCalls) != 0 || len(catalog.RemoveCalls) != 0 {
			t.Error("dry run must not write")
		}
	})

	t.Run("applies changes, notifies and records the run", func(t *testing.T) {
		catalog := syncFixture()
		runner, output := newTestRunner(t, catalog, nil)
		mailer := &fakeMailer{}
		runner.mailer = mailer

		if err := run(runner, "sync", "--playlist", "pl", "--notify"); err != nil {
			t.Fatalf("sync failed: %v", err)
		}

		if len(catalog.AddCalls) != 1 || catalog.AddCalls[0][0] != "a" {
			t.Errorf("unexpected add calls %v", catalog.AddCalls)
		}
		if len(catalog.RemoveCalls) != 1 || catalog.RemoveCalls[0][0] != "c" {
			t.Errorf("unexpected remove calls %v", catalog.RemoveCalls)
		}
		if !strings.Contains(output.String(), "✓ Added 1, removed 1") {
			t.Errorf("expected summary, got:\n%s", output.String())
		}

		if mailer.sent != 1 || !strings.HasPrefix(mailer.subject, "Spotify Sync Status - ") {
			t.Errorf("expected one notification, got %d %q", mailer.sent, mailer.subject)
		}
		if !strings.Contains(mailer.body, "- Alpha by Band") || !strings.Contains(mailer.body, "- Gone by Old") {
			t.Errorf("unexpected email body:\n%s", mailer.body)
		}

		output.Reset()
		if err := run(runner, "history", "runs", "--json"); err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if !strings.Contains(output.String(), `"playlist_id": "pl"`) || !strings.Contains(output.String(), `"added": 1`) {
			t.Errorf("expected recorded run, got:\n%s", output.String())
		}
	})

	t.Run("second sync is a no-op", func(t *testing.T) {
		catalog := syncFixture()
		runner, output := newTestRunner(t, catalog, nil)

		if err := run(runner, "sync", "--playlist", "pl"); err != nil {
			t.Fatalf("first sync failed: %v", err)
		}
		output.Reset()
		if err := run(runner, "sync", "--playlist", "pl"); err != nil {
			t.Fatalf("second sync failed: %v", err)
		}
		if !strings.Contains(output.String(), "already matches") {
			t.Errorf("expected in-sync message, got:\n%s", output.String())
		}
	})

	t.Run("target playlist from config", func(t *testing.T) {
		catalog := syncFixture()
		runner, _ := newTestRunner(t, catalog, nil)
		runner.config.Sync.TargetPlaylistID = "pl"

		if err := run(runner, "sync", "--dry-run"); err != nil {
			t.Fatalf("sync failed: %v", err)
		}
	})

	t.Run("notify without email settings is skipped", func(t *testing.T) {
		runner, _ := newTestRunner(t, syncFixture(), nil)

		if err := run(runner, "sync", "--playlist", "pl", "--dry-run", "--notify"); err != nil {
			t.Fatalf("expected notification to be skipped, got %v", err)
		}
	})

	t.Run("failed writes are reported", func(t *testing.T) {
		catalog := syncFixture()
		catalog.AddErr = func(call int, ids []string) error { return errors.New("status 502") }
		runner, output := newTestRunner(t, catalog, nil)

		err := run(runner, "sync", "--playlist", "pl")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
		if !strings.Contains(output.String(), "Failed writes: 1") {
			t.Errorf("expected failure summary, got:\n%s", output.String())
		}
		if len(catalog.RemoveCalls) != 1 {
			t.Error("removals should still run after a failed add")
		}
	})

	t.Run("argument errors", func(t *testing.T) {
		tests := []struct {
			name string
			args []string
			want error
		}{
			{"missing playlist", []string{"sync"}, shared.ErrMissingArgument},
			{"chunk size too large", []string{"sync", "--playlist", "pl", "--chunk-size", "101"}, shared.ErrInvalidFlag},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				runner, _ := newTestRunner(t, syncFixture(), nil)
				if err := run(runner, tt.args...); !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})
}

func TestCatalogCommands(t *testing.T) {
	catalog := syncFixture()
	catalog.UserPlaylists = []models.Playlist{{ID: "pl", Name: "Liked Mirror", URI: "spotify:playlist:pl"}}
	catalog.SearchResults["Band|Alpha"] = []models.TrackRecord{tu.Track("a", "Alpha", "Band", 200000, 50)}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"playlists", []string{"catalog", "playlists"}, "name~uri\nLiked Mirror~spotify:playlist:pl\n"},
		{"tracks", []string{"catalog", "tracks", "--id", "pl"}, "Old~Gone~190~spotify:track:c\n"},
		{"liked", []string{"spotify", "liked"}, "Band~Alpha~200~spotify:track:a\n"},
		{"liked json", []string{"catalog", "liked", "--json"}, `"id": "b"`},
		{"search", []string{"catalog", "search", "--artist", "Band", "--title", "Alpha"}, "Band~Alpha~200~spotify:track:a"},
		{"search without results", []string{"catalog", "search", "--artist", "X", "--title", "Y"}, "No results for X - Y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner, output := newTestRunner(t, catalog, nil)
			if err := run(runner, tt.args...); err != nil {
				t.Fatalf("command failed: %v", err)
			}
			if !strings.Contains(output.String(), tt.want) {
				t.Errorf("expected %q in output:\n%s", tt.want, output.String())
			}
		})
	}

	t.Run("add and remove", func(t *testing.T) {
		catalog := syncFixture()
		runner, output := newTestRunner(t, catalog, nil)

		if err := run(runner, "catalog", "add", "--id", "pl", "--track", "x", "--track", "y"); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if len(catalog.AddCalls) != 1 || len(catalog.AddCalls[0]) != 2 {
			t.Errorf("unexpected add calls %v", catalog.AddCalls)
		}
		if !strings.Contains(output.String(), "✓ Added 2 tracks") {
			t.Errorf("unexpected output %q", output.String())
		}

		if err := run(runner, "catalog", "remove", "--id", "pl", "-t", "x"); err != nil {
			t.Fatalf("remove failed: %v", err)
		}
		if _, ok := catalog.PlaylistItems["pl"]["x"]; ok {
			t.Error("expected x to be removed")
		}
	})

	t.Run("unknown playlist", func(t *testing.T) {
		runner, _ := newTestRunner(t, syncFixture(), nil)
		if err := run(runner, "catalog", "tracks", "--id", "nope"); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}

func TestMatchCommands(t *testing.T) {
	newFixture := func(t *testing.T) (*Runner, *bytes.Buffer, string) {
		dir := t.TempDir()
		lib := &fakeLibrary{entries: []models.LibraryEntry{
			tu.Entry(dir, "01.mp3", "Artist One", "Song One", 180),
			tu.Entry(dir, "02.mp3", "Nobody", "Nothing", 95),
		}}
		catalog := syncFixture()
		catalog.SearchResults["Artist One|Song One"] = []models.TrackRecord{tu.Track("t1", "Song One", "Artist One", 181000, 60)}

		runner, output := newTestRunner(t, catalog, lib)
		return runner, output, dir
	}

	t.Run("library list", func(t *testing.T) {
		runner, output, dir := newFixture(t)

		if err := run(runner, "library", "list", dir); err != nil {
			t.Fatalf("library list failed: %v", err)
		}
		if !strings.Contains(output.String(), "Artist One~Song One~3:00~") {
			t.Errorf("unexpected listing:\n%s", output.String())
		}
		if !strings.Contains(output.String(), "2 files") {
			t.Errorf("expected file count:\n%s", output.String())
		}
	})

	t.Run("match writes report and caches rows", func(t *testing.T) {
		runner, output, dir := newFixture(t)

		if err := run(runner, "match", "--save", dir); err != nil {
			t.Fatalf("match failed: %v", err)
		}

		reportPath := filepath.Join(dir, "spotify.txt")
		tu.AssertFileExists(t, reportPath)
		report := tu.MustReadFile(t, reportPath)
		if !strings.Contains(report, "Artist One~Song One~180~181~t1~t1~") {
			t.Errorf("unexpected report:\n%s", report)
		}
		if !strings.Contains(report, "Nobody~Nothing~95~UNK~UNK~UNK~UNK~02.mp3~") {
			t.Errorf("expected unmatched line:\n%s", report)
		}

		out := output.String()
		if !strings.Contains(out, "Matched: 1") || !strings.Contains(out, "Cached: 2") {
			t.Errorf("unexpected summary:\n%s", out)
		}

		output.Reset()
		if err := run(runner, "history", "matches", "--unmatched"); err != nil {
			t.Fatalf("history matches failed: %v", err)
		}
		if !strings.Contains(output.String(), "Nobody~Nothing~UNK~") || strings.Contains(output.String(), "Artist One~") {
			t.Errorf("expected only the unmatched row:\n%s", output.String())
		}
		if !strings.Contains(output.String(), "1 of 2 cached files matched") {
			t.Errorf("expected counts:\n%s", output.String())
		}
	})

	t.Run("custom output and csv", func(t *testing.T) {
		runner, _, dir := newFixture(t)
		outDir := t.TempDir()
		reportPath := filepath.Join(outDir, "report.txt")
		csvPath := filepath.Join(outDir, "report.csv")

		if err := run(runner, "match", "--output", reportPath, "--csv", csvPath, dir); err != nil {
			t.Fatalf("match failed: %v", err)
		}
		tu.AssertFileExists(t, reportPath)
		if content := tu.MustReadFile(t, csvPath); !strings.HasPrefix(content, "File,Dir,Artist,Title") {
			t.Errorf("unexpected csv:\n%s", content)
		}
	})

	t.Run("invalid tolerance", func(t *testing.T) {
		runner, _, dir := newFixture(t)

		err := run(runner, "match", "--tolerance", "150", dir)
		var verr *models.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		runner, _, _ := newFixture(t)

		if err := run(runner, "match"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if err := run(runner, "match", filepath.Join(t.TempDir(), "nope")); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestSetupAndAuthCommands(t *testing.T) {
	t.Run("setup config", func(t *testing.T) {
		runner, output := newTestRunner(t, nil, nil)
		runner.configPath = filepath.Join(t.TempDir(), "config.toml")

		if err := run(runner, "setup", "config"); err != nil {
			t.Fatalf("setup config failed: %v", err)
		}
		tu.AssertFileExists(t, runner.configPath)

		output.Reset()
		if err := run(runner, "setup", "config"); err != nil {
			t.Fatalf("second setup config failed: %v", err)
		}
		if !strings.Contains(output.String(), "already exists") {
			t.Errorf("expected existing config message, got %q", output.String())
		}
	})

	t.Run("setup database and rollback", func(t *testing.T) {
		runner, output := newTestRunner(t, nil, nil)

		if err := run(runner, "setup", "database"); err != nil {
			t.Fatalf("setup database failed: %v", err)
		}
		tu.AssertFileExists(t, runner.config.Database.Path)
		if !strings.Contains(output.String(), "✓ Database ready") {
			t.Errorf("unexpected output %q", output.String())
		}

		output.Reset()
		if err := run(runner, "setup", "rollback"); err != nil {
			t.Fatalf("rollback failed: %v", err)
		}
		if !strings.Contains(output.String(), "Rolled back") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("auth status", func(t *testing.T) {
		runner, output := newTestRunner(t, nil, nil)

		if err := run(runner, "auth", "status"); err != nil {
			t.Fatalf("auth status failed: %v", err)
		}
		if !strings.Contains(output.String(), "not authenticated") {
			t.Errorf("expected not authenticated, got:\n%s", output.String())
		}

		output.Reset()
		runner.config.Credentials.Spotify.AccessToken = "access"
		runner.config.Credentials.Spotify.RefreshToken = "refresh"
		runner.config.Credentials.Spotify.TokenExpiry = time.Now().Add(-time.Hour)
		if err := run(runner, "auth", "status"); err != nil {
			t.Fatalf("auth status failed: %v", err)
		}
		if !strings.Contains(output.String(), "will refresh") {
			t.Errorf("expected refresh notice, got:\n%s", output.String())
		}
	})

	t.Run("oauth times out without a callback", func(t *testing.T) {
		runner, output := newTestRunner(t, nil, nil)
		runner.config.Server.Port = 0

		previous := authTimeout
		authTimeout = 50 * time.Millisecond
		t.Cleanup(func() { authTimeout = previous })

		_, err := runner.doOAuth(context.Background(), &fakeOAuthCatalog{MockCatalog: syncFixture()}, false)
		if !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
		if !strings.Contains(output.String(), "https://accounts.example.com/authorize?state=") {
			t.Errorf("expected printed auth URL, got:\n%s", output.String())
		}
	})
}
