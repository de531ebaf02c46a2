package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/gnx/internal/repositories"
	"github.com/desertthunder/gnx/internal/services"
	"github.com/desertthunder/gnx/internal/session"
	"github.com/desertthunder/gnx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The sheet store and the commit journal are opened on first use so that setup and auth commands
// work before credentials or a database exist.
type Runner struct {
	config     *shared.Config
	configPath string
	store      services.Service
	commits    *repositories.CommitRepository
	db         *sql.DB
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Store      services.Service
	DB         *sql.DB
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = "config.toml"
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		store:      opts.Store,
		db:         opts.DB,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
	if opts.DB != nil {
		r.commits = repositories.NewCommitRepository(opts.DB)
	}
	return r
}

// SetLogger replaces the logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, sheetsCommand, storyCommand, exportCommand, historyCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// before loads the configuration named by the global --config flag.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	path := cmd.String("config")
	if path == "" {
		return ctx, nil
	}
	r.configPath = path

	if _, err := os.Stat(path); err != nil {
		r.logger.Debug("config file not found, using defaults", "path", path)
		return ctx, nil
	}
	config, err := shared.LoadConfig(path)
	if err != nil {
		return ctx, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}
	r.config = config
	return ctx, nil
}

// Store returns the configured sheet store, connecting on first use.
func (r *Runner) Store(ctx context.Context) (services.Service, error) {
	if r.store != nil {
		return r.store, nil
	}
	store, err := services.FromConfig(ctx, r.config)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("connected sheet store", "store", store.Name())
	r.store = store
	return store, nil
}

// Commits returns the commit journal, opening the database on first use.
func (r *Runner) Commits() (*repositories.CommitRepository, error) {
	if r.commits != nil {
		return r.commits, nil
	}
	db, err := shared.OpenJournal(r.config.Database)
	if err != nil {
		return nil, err
	}
	r.db = db
	r.commits = repositories.NewCommitRepository(db)
	return r.commits, nil
}

// openSession creates a session over the store, journaling commits when the database can be opened.
func (r *Runner) openSession(ctx context.Context, views ...session.View) (*session.Session, error) {
	store, err := r.Store(ctx)
	if err != nil {
		return nil, err
	}

	opts := []session.Option{session.WithLogger(r.logger), session.WithView(session.LogView(r.logger))}
	for _, v := range views {
		opts = append(opts, session.WithView(v))
	}
	if commits, err := r.Commits(); err != nil {
		r.logger.Warn("commit journal unavailable", "error", err)
	} else {
		opts = append(opts, session.WithJournal(commits))
	}
	return session.New(store, opts...), nil
}

// Close releases the store and the database.
func (r *Runner) Close() error {
	if c, ok := r.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			r.logger.Warn("failed to close store", "error", err)
		}
	}
	if r.db != nil {
		return r.db.Close()
	}
	return nil
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
