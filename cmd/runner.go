package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/watchlist/internal/models"
	"github.com/desertthunder/watchlist/internal/router"
	"github.com/desertthunder/watchlist/internal/services"
	"github.com/desertthunder/watchlist/internal/session"
	"github.com/desertthunder/watchlist/internal/shared"
	"github.com/desertthunder/watchlist/internal/storage"
	"github.com/desertthunder/watchlist/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
	openURL    func(string) error

	session   *session.Store
	router    *router.Router
	auth      services.AuthService
	watchlist services.WatchlistService
	engine    *tasks.Engine
	db        *sql.DB
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Session, Auth and Watchlist are built from the configuration on first use when left nil.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
	OpenURL    func(string) error
	Session    *session.Store
	Auth       services.AuthService
	Watchlist  services.WatchlistService
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
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenURL
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
		openURL:    opts.OpenURL,
		auth:       opts.Auth,
		watchlist:  opts.Watchlist,
	}
	if opts.Session != nil {
		r.useSession(opts.Session)
	}
	if r.watchlist != nil {
		r.engine = tasks.NewEngine(r.watchlist, r.logger)
	}
	return r
}

func (r *Runner) useSession(s *session.Store) {
	r.session = s
	r.router = router.New(s, nil, r.logger)
}

// SetLogger replaces the logger used by subsequent commands.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// init loads the configuration from --config and builds whatever dependencies were not injected.
//
// The session is persisted in the sqlite database named by storage.path.
func (r *Runner) init(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}
	if r.session != nil && r.auth != nil && r.watchlist != nil {
		return ctx, nil
	}

	config, err := shared.LoadConfigOrDefault(r.configPath)
	if err != nil {
		return ctx, err
	}
	r.config = config

	if launchesTUI(cmd) && config.Log.TUIFile != "" {
		fileLogger, err := shared.NewFileLogger(config.Log.TUIFile)
		if err != nil {
			return ctx, fmt.Errorf("failed to create file logger: %w", err)
		}
		r.SetLogger(fileLogger)
	}

	level := config.Log.Level
	if flag := cmd.String("log-level"); flag != "" {
		level = flag
	}
	if err := shared.SetLogLevel(r.logger, level); err != nil {
		return ctx, err
	}

	backend, err := shared.ResolveBackend(config, nil)
	if err != nil {
		return ctx, err
	}
	r.logger.Debug("backend resolved", "mode", backend.Mode, "url", backend.BaseURL)

	var api *services.APIService
	if r.httpClient != http.DefaultClient {
		api = services.NewAPIService(backend.BaseURL, r.httpClient,
			services.WithRateLimit(backend.RateLimit), services.WithLogger(r.logger))
	} else {
		api = services.NewAPIServiceForBackend(backend, r.logger)
	}
	if r.auth == nil {
		r.auth = services.NewAuthClient(api, r.logger)
	}
	if r.watchlist == nil {
		r.watchlist = services.NewWatchlistClient(api, r.logger)
		r.engine = tasks.NewEngine(r.watchlist, r.logger)
	}

	if r.session == nil {
		db, err := shared.OpenStorageDatabase(config.Storage)
		if err != nil {
			return ctx, fmt.Errorf("%w: %v", shared.ErrStorage, err)
		}
		r.db = db
		r.useSession(session.New(storage.NewSQLiteStorage(db), r.logger))
	}
	return ctx, nil
}

// launchesTUI reports whether cmd will run the interactive UI, whose rendering owns the terminal.
func launchesTUI(cmd *cli.Command) bool {
	switch cmd.Args().First() {
	case "", "tui", "ui", "interactive":
		return !cmd.Bool("help")
	default:
		return false
	}
}

// Close releases the storage database and the router's session subscription.
func (r *Runner) Close() error {
	if r.router != nil {
		r.router.Close()
	}
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Runner) after(ctx context.Context, cmd *cli.Command) error {
	return r.Close()
}

// requireAuth applies the navigation guard to commands that act on the signed-in user's data.
func (r *Runner) requireAuth() (*models.User, error) {
	if r.session == nil {
		return nil, fmt.Errorf("%w: session not initialized", shared.ErrServiceUnavailable)
	}
	if dest, redirected := router.Guard(router.HomeRoute, r.session.IsAuthenticated()); redirected {
		r.logger.Debug("command redirected", "to", dest.Path)
		return nil, fmt.Errorf("%w: run 'watchlist auth login' first", shared.ErrNotAuthenticated)
	}
	return r.session.CurrentUser(), nil
}

// requireGuest applies the navigation guard to the login and register commands.
func (r *Runner) requireGuest(route router.Route) error {
	if r.session == nil {
		return fmt.Errorf("%w: session not initialized", shared.ErrServiceUnavailable)
	}
	if _, redirected := router.Guard(route, r.session.IsAuthenticated()); redirected {
		u := r.session.CurrentUser()
		return fmt.Errorf("%w as %s: run 'watchlist auth logout' first", shared.ErrAlreadyAuthenticated, u.Username)
	}
	return nil
}

// confirm asks question on the output and reads a yes/no answer from the input.
func (r *Runner) confirm(question string) (bool, error) {
	if err := r.writePlain("%s [j/N] ", question); err != nil {
		return false, err
	}
	line, err := bufio.NewReader(r.input).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "j", "ja", "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, accountCommand, entriesCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
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
