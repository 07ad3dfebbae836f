package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"github.com/desertthunder/likesync/internal/library"
	"github.com/desertthunder/likesync/internal/repositories"
	"github.com/desertthunder/likesync/internal/services"
	"github.com/desertthunder/likesync/internal/shared"
	"github.com/desertthunder/likesync/internal/tasks"
)

// Notifier delivers a sync status message (satisfied by [notify.Mailer]).
type Notifier interface {
	Send(ctx context.Context, subject, body string) error
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The catalog and database are opened lazily so commands that need neither (setup, library) work offline.
type Runner struct {
	config     *shared.Config
	configPath string
	catalog    services.Catalog
	library    tasks.LibraryLister
	db         *sql.DB
	mailer     Notifier
	logger     *log.Logger
	output     io.Writer
	closers    []io.Closer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Catalog    services.Catalog
	Library    tasks.LibraryLister
	DB         *sql.DB
	Mailer     Notifier
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		catalog:    opts.Catalog,
		library:    opts.Library,
		db:         opts.DB,
		mailer:     opts.Mailer,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, syncCommand, catalogCommand, libraryCommand, matchCommand, historyCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads .env files and the config file named by --config, then applies environment overrides
// and the configured log level.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if err := shared.LoadEnv(cmd.StringSlice("env")...); err != nil {
		return ctx, err
	}

	r.configPath = cmd.String("config")
	if _, err := os.Stat(r.configPath); err == nil {
		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	} else {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
	}
	shared.ApplyEnv(r.config)

	level := r.config.Log.Level
	if cmd.Bool("verbose") {
		level = "debug"
	}
	ll, err := shared.ParseLevel(level)
	if err != nil {
		return ctx, err
	}
	shared.SetLogLevel(r.logger, ll)

	if r.config.Log.File != "" {
		fileLogger, closer, err := shared.NewFileLogger(r.config.Log.File)
		if err != nil {
			return ctx, err
		}
		shared.SetLogLevel(fileLogger, ll)
		r.SetLogger(fileLogger)
		r.closers = append(r.closers, closer)
	}
	return ctx, nil
}

// After releases the database and log file opened while running a command.
func (r *Runner) After(ctx context.Context, cmd *cli.Command) error {
	return r.Close()
}

// Close closes the database and any log files. It is safe to call more than once.
func (r *Runner) Close() error {
	var firstErr error
	if r.db != nil {
		if err := r.db.Close(); err != nil {
			firstErr = fmt.Errorf("failed to close database: %w", err)
		}
		r.db = nil
	}
	for _, c := range r.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.closers = nil
	return firstErr
}

// SetLogger replaces the logger used by the runner and the services it builds afterwards.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// saveTokens persists a new or refreshed OAuth token to the config file.
func (r *Runner) saveTokens(tok *oauth2.Token) error {
	if r.config == nil {
		return fmt.Errorf("%w: config is nil", shared.ErrMissingConfig)
	}

	r.config.Credentials.Spotify.Update(tok)
	if r.configPath == "" {
		return nil
	}

	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	r.logger.Debug("saved spotify tokens", "path", r.configPath)
	return nil
}

// newSpotifyService builds an unauthenticated service from the configured credentials.
func (r *Runner) newSpotifyService() (*services.SpotifyService, error) {
	creds := r.config.Credentials.Spotify
	if !creds.HasCredentials() {
		return nil, fmt.Errorf("%w: set client_id and client_secret in %s or %s and %s",
			shared.ErrMissingCredentials, r.configPath, shared.EnvClientID, shared.EnvClientSecret)
	}

	return services.NewSpotifyService(creds,
		services.WithLogger(shared.WithLogger(r.logger, "service", "spotify")),
		services.WithPageDelay(r.config.Sync.PageDelay()),
	)
}

// catalogService returns the authenticated catalog, building it from the persisted token on first use.
func (r *Runner) catalogService(ctx context.Context) (services.Catalog, error) {
	if r.catalog != nil {
		return r.catalog, nil
	}

	svc, err := r.newSpotifyService()
	if err != nil {
		return nil, err
	}

	token := r.config.Credentials.Spotify.Token()
	if token == nil {
		return nil, fmt.Errorf("%w: no saved token", shared.ErrNotAuthenticated)
	}

	svc.SetTokenRefreshCallback(func(tok *oauth2.Token) {
		if err := r.saveTokens(tok); err != nil {
			r.logger.Warn("failed to persist refreshed token", "error", err)
		}
	})
	if err := svc.Authenticate(ctx, token); err != nil {
		return nil, err
	}

	r.catalog = svc
	return svc, nil
}

// database opens the configured database and applies pending migrations on first use.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	cfg := r.config.Database
	db, err := shared.NewDatabase(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxIdleConns)

	applied, err := shared.RunMigrations(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if applied > 0 {
		r.logger.Debug("applied migrations", "count", applied, "path", cfg.Path)
	}

	r.db = db
	return db, nil
}

func (r *Runner) libraryReader() tasks.LibraryLister {
	if r.library == nil {
		r.library = library.NewReader(r.config.Matcher.Extensions, shared.WithLogger(r.logger, "component", "library"))
	}
	return r.library
}

// engine builds a [tasks.Engine] around the catalog. When persist is set the engine records runs
// and matches in the database.
func (r *Runner) engine(ctx context.Context, persist bool) (*tasks.Engine, error) {
	catalog, err := r.catalogService(ctx)
	if err != nil {
		return nil, err
	}

	opts := []tasks.EngineOption{tasks.WithLibrary(r.libraryReader())}
	if persist {
		db, err := r.database()
		if err != nil {
			return nil, err
		}
		opts = append(opts,
			tasks.WithMatchStore(repositories.NewMatchRepository(db)),
			tasks.WithRunRecorder(repositories.NewSyncRunRepository(db)),
		)
	}

	return tasks.NewEngine(catalog, shared.WithLogger(r.logger, "component", "engine"), opts...), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
