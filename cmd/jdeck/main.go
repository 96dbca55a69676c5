package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
	"github.com/hylla/jdeck/internal/adapters/jira"
	"github.com/hylla/jdeck/internal/adapters/server"
	"github.com/hylla/jdeck/internal/adapters/server/common"
	"github.com/hylla/jdeck/internal/adapters/storage/sqlite"
	"github.com/hylla/jdeck/internal/app"
	"github.com/hylla/jdeck/internal/config"
	"github.com/hylla/jdeck/internal/domain"
	"github.com/hylla/jdeck/internal/events"
	"github.com/hylla/jdeck/internal/platform"
	"github.com/hylla/jdeck/internal/tui"
	"github.com/spf13/cobra"
)

// version is set at build time.
var version = "dev"

// program is the part of tea.Program the CLI drives.
type program interface {
	Run() (tea.Model, error)
}

// programFactory builds the terminal program for one model.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// serveFunc runs serve mode until ctx is done.
var serveFunc = server.Run

// clipboardWrite copies one issue key to the system clipboard.
var clipboardWrite = clipboard.WriteAll

func main() {
	root := newRootCommand(os.Stdout, os.Stderr)
	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

// run executes one command line without fang's decoration.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCommand(stdout, stderr)
	root.SilenceUsage = true
	root.SilenceErrors = true
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// rootOptions holds persistent flag values shared by every command.
type rootOptions struct {
	configPath string
	dbPath     string
	appName    string
	devMode    bool
}

// newRootCommand builds the command tree.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	opts := &rootOptions{appName: platform.DefaultAppName, devMode: version == "dev"}
	if envDev, ok := parseBoolEnv("JDECK_DEV_MODE"); ok {
		opts.devMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("JDECK_APP_NAME")); envApp != "" {
		opts.appName = envApp
	}

	root := &cobra.Command{
		Use:   "jdeck",
		Short: "A keyboard-driven terminal deck for Jira sprints and backlogs",
		Long: `jdeck shows the active sprint of a Jira board, its backlog and issue details
in the terminal. Issues can be transitioned, commented on and renamed without
leaving the keyboard.`,
		Example: `  jdeck
  jdeck --config ./config.toml
  jdeck activity --limit 20
  jdeck serve --http 127.0.0.1:8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML")
	flags.StringVar(&opts.dbPath, "db", "", "path to sqlite activity journal")
	flags.StringVar(&opts.appName, "app", opts.appName, "application name for config/data path resolution")
	flags.BoolVar(&opts.devMode, "dev", opts.devMode, "use dev mode paths (<app>-dev)")

	root.AddCommand(
		newPathsCommand(opts, stdout),
		newActivityCommand(opts, stdout, stderr),
		newServeCommand(opts, stderr),
	)
	return root
}

func newPathsCommand(opts *rootOptions, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print the resolved config, data and database paths",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			paths, err := opts.paths()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(stdout, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(stdout, "config: %s\n", opts.resolveConfigPath(paths))
			_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(stdout, "db: %s\n", opts.resolveDBPath(paths))
			return nil
		},
	}
}

func newActivityCommand(opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "List changes made from this client, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be > 0, got %d", limit)
			}
			rt, err := opts.prepare(stderr, false)
			if err != nil {
				return err
			}
			defer rt.close()

			repo, err := rt.openJournal()
			if err != nil {
				return err
			}
			defer rt.closeJournal(repo)

			entries, err := repo.ListActivity(cmd.Context(), limit)
			if err != nil {
				rt.logger.Error("list activity failed", "err", err)
				return fmt.Errorf("list activity: %w", err)
			}
			return writeActivityTable(stdout, entries)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of entries to print")
	return cmd
}

func newServeCommand(opts *rootOptions, stderr io.Writer) *cobra.Command {
	var cfg server.Config
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve Jira boards over a REST API and MCP tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := opts.prepare(stderr, false)
			if err != nil {
				return err
			}
			defer rt.close()

			client, err := rt.newClient()
			if err != nil {
				return err
			}
			repo, err := rt.openJournal()
			if err != nil {
				return err
			}
			defer rt.closeJournal(repo)

			svc := common.NewService(client, common.WithJournal(repo), common.WithLogger(rt.logger))
			cfg.ServerName = opts.appName
			cfg.ServerVersion = version
			rt.logger.Info("command flow start", "command", "serve", "http", cfg.HTTPBind, "api", cfg.APIEndpoint, "mcp", cfg.MCPEndpoint)
			if err := serveFunc(cmd.Context(), cfg, server.Dependencies{Reader: svc, Writer: svc, Logger: rt.logger}); err != nil {
				rt.logger.Error("command flow failed", "command", "serve", "err", err)
				return fmt.Errorf("run server: %w", err)
			}
			rt.logger.Info("command flow complete", "command", "serve")
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&cfg.HTTPBind, "http", "127.0.0.1:8080", "listen address")
	flags.StringVar(&cfg.APIEndpoint, "api-endpoint", "/api/v1", "REST API mount path")
	flags.StringVar(&cfg.MCPEndpoint, "mcp-endpoint", "/mcp", "MCP endpoint path")
	return cmd
}

// runTUI wires the controller, event source and terminal model and runs the program.
func runTUI(ctx context.Context, opts *rootOptions, stderr io.Writer) error {
	rt, err := opts.prepare(stderr, true)
	if err != nil {
		return err
	}
	defer rt.close()

	theme, err := tui.ThemeNamed(rt.cfg.UI.Theme)
	if err != nil {
		return err
	}
	client, err := rt.newClient()
	if err != nil {
		return err
	}
	repo, err := rt.openJournal()
	if err != nil {
		return err
	}
	defer rt.closeJournal(repo)

	configPath := rt.configPath
	logger := rt.logger
	ctrl := app.NewController(
		client,
		uuid.NewString,
		nil,
		app.ControllerConfig{
			DefaultBoardID:  rt.cfg.Jira.DefaultBoardID,
			RefreshInterval: rt.cfg.RefreshInterval(),
			StatusTTL:       app.DefaultStatusTTL,
		},
		app.WithJournal(repo),
		app.WithLogger(logger),
		app.WithClipboard(clipboardWrite),
		app.WithDefaultBoardSaver(func(boardID int) error {
			logger.Info("default board update requested", "board_id", boardID, "config_path", configPath)
			if err := config.UpsertDefaultBoard(configPath, boardID); err != nil {
				logger.Error("default board update failed", "board_id", boardID, "config_path", configPath, "err", err)
				return fmt.Errorf("persist default board: %w", err)
			}
			return nil
		}),
	)
	source := events.NewSource(rt.cfg.UI.TickRate.Duration)
	defer source.Stop()

	m := tui.NewModel(ctrl, source,
		tui.WithContext(ctx),
		tui.WithTheme(theme),
		tui.WithAppName(opts.appName),
	)
	logger.Info("starting tui program loop", "default_board_id", rt.cfg.Jira.DefaultBoardID)
	final, err := programFactory(m).Run()
	if err != nil {
		logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	if fm, ok := final.(tui.Model); ok {
		if err := fm.Err(); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("event loop ended with error", "err", err)
			return fmt.Errorf("event loop: %w", err)
		}
	}
	logger.Info("command flow complete", "command", "tui")
	return nil
}

// session is the resolved state one command runs with.
type session struct {
	cfg        config.Config
	configPath string
	logger     *runtimeLogger
	stderr     io.Writer
}

func (o *rootOptions) paths() (platform.Paths, error) {
	return platform.DefaultPathsWithOptions(platform.Options{
		AppName: o.appName,
		DevMode: o.devMode,
	})
}

// resolveConfigPath applies --config, then JDECK_CONFIG, then the platform default.
func (o *rootOptions) resolveConfigPath(paths platform.Paths) string {
	if p := strings.TrimSpace(o.configPath); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv("JDECK_CONFIG")); p != "" {
		return p
	}
	return paths.ConfigPath
}

// resolveDBPath applies --db, then JDECK_DB_PATH, then the platform default.
func (o *rootOptions) resolveDBPath(paths platform.Paths) string {
	if p := strings.TrimSpace(o.dbPath); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv("JDECK_DB_PATH")); p != "" {
		return p
	}
	return paths.DBPath
}

// dbOverridden reports whether the journal path came from a flag or the environment.
func (o *rootOptions) dbOverridden() bool {
	return strings.TrimSpace(o.dbPath) != "" || strings.TrimSpace(os.Getenv("JDECK_DB_PATH")) != ""
}

// prepare loads config and starts the runtime logger. When tuiMode is set the
// console sink is muted so log lines never draw over the board.
func (o *rootOptions) prepare(stderr io.Writer, tuiMode bool) (*session, error) {
	paths, err := o.paths()
	if err != nil {
		return nil, err
	}
	configPath := o.resolveConfigPath(paths)
	dbPath := o.resolveDBPath(paths)

	defaults := config.Default(dbPath)
	created, err := config.WriteDefault(configPath, defaults)
	if err != nil {
		return nil, fmt.Errorf("write default config %q: %w", configPath, err)
	}
	cfg, err := config.Load(configPath, defaults)
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if o.dbOverridden() || strings.TrimSpace(cfg.Database.Path) == "" {
		cfg.Database.Path = dbPath
	}
	if token := strings.TrimSpace(os.Getenv("JDECK_TOKEN")); token != "" {
		cfg.Jira.Token = token
	}

	logger, err := newRuntimeLogger(stderr, o.appName, o.devMode, cfg.Logging, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	if tuiMode {
		logger.SetConsoleEnabled(false)
	}
	rt := &session{cfg: cfg, configPath: configPath, logger: logger, stderr: stderr}

	logger.Info("startup configuration resolved", "app", o.appName, "dev_mode", o.devMode)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", cfg.Database.Path)
	if created {
		logger.Info("default config written", "config_path", configPath)
	}
	logger.Info("configuration loaded", "config_path", configPath, "db_path", cfg.Database.Path, "log_level", cfg.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}
	return rt, nil
}

// newClient builds the Jira client, failing with a hint when credentials are missing.
func (rt *session) newClient() (*jira.Client, error) {
	if err := rt.cfg.RequireConnection(); err != nil {
		rt.logger.Error("jira connection not configured", "config_path", rt.configPath, "err", err)
		return nil, fmt.Errorf("%w (edit %s or set JDECK_TOKEN)", err, rt.configPath)
	}
	client, err := jira.New(jira.Config{
		Host:            rt.cfg.Jira.Host,
		Principal:       rt.cfg.Jira.Principal,
		Token:           rt.cfg.Jira.Token,
		CoreAPIVersion:  rt.cfg.Jira.CoreAPIVersion,
		AgileAPIVersion: rt.cfg.Jira.AgileAPIVersion,
		Timeout:         rt.cfg.Jira.RequestTimeout.Duration,
	}, jira.WithLogger(rt.logger))
	if err != nil {
		return nil, fmt.Errorf("configure jira client: %w", err)
	}
	rt.logger.Info("jira client ready", "host", client.Host())
	return client, nil
}

func (rt *session) openJournal() (*sqlite.Repository, error) {
	rt.logger.Info("opening sqlite journal", "db_path", rt.cfg.Database.Path)
	repo, err := sqlite.Open(rt.cfg.Database.Path)
	if err != nil {
		rt.logger.Error("sqlite open failed", "db_path", rt.cfg.Database.Path, "err", err)
		return nil, fmt.Errorf("open sqlite journal: %w", err)
	}
	rt.logger.Info("sqlite journal ready", "db_path", rt.cfg.Database.Path, "migrations", "ensured")
	return repo, nil
}

func (rt *session) closeJournal(repo *sqlite.Repository) {
	if err := repo.Close(); err != nil {
		rt.logger.Warn("sqlite close failed", "db_path", rt.cfg.Database.Path, "err", err)
	}
}

func (rt *session) close() {
	if err := rt.logger.Close(); err != nil && rt.logger.shouldLogToSink(rt.logger.consoleSink) {
		_, _ = fmt.Fprintf(rt.stderr, "warning: close runtime log sink: %v\n", err)
	}
}

// writeActivityTable renders journal entries as a bordered table.
func writeActivityTable(w io.Writer, entries []domain.Activity) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "no activity recorded")
		return err
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))).
		Headers("When", "Action", "Target", "Detail", "Board").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, entry := range entries {
		board := "-"
		if entry.BoardID > 0 {
			board = strconv.Itoa(entry.BoardID)
		}
		t.Row(
			entry.At.Local().Format("2006-01-02 15:04"),
			string(entry.Action),
			entry.Target,
			entry.Detail,
			board,
		)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// parseBoolEnv reads a boolean environment variable; ok is false when unset or invalid.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
