// Package cli wires the cobra command tree. A bare `todo` starts the
// interactive list; subcommands run a single operation and exit.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/todo-remote/internal/api"
	"github.com/idilsaglam/todo-remote/internal/config"
	"github.com/idilsaglam/todo-remote/internal/controller"
	"github.com/idilsaglam/todo-remote/internal/logging"
	"github.com/idilsaglam/todo-remote/internal/tui"
	"github.com/idilsaglam/todo-remote/internal/ui"
)

// annCreatesConfig marks commands that may run before the --config file
// exists.
const annCreatesConfig = "creates-config"

// App carries what every command needs.
type App struct {
	ConfigPath string
	Out        io.Writer
	Err        io.Writer

	// NewService builds the remote service for cfg.
	NewService func(cfg config.Config, logger *log.Logger) (api.Service, error)
	// RunTUI runs the interactive front end until the user quits.
	RunTUI func(ctx context.Context, ctl *controller.Controller, logger *log.Logger) error

	cfg    config.Config
	log    *log.Logger
	closer io.Closer
}

// NewApp returns an App talking HTTP on the process's stdio.
func NewApp() *App {
	return &App{
		Out:        os.Stdout,
		Err:        os.Stderr,
		NewService: httpService,
		RunTUI:     tui.Run,
	}
}

func httpService(cfg config.Config, logger *log.Logger) (api.Service, error) {
	return api.NewClient(cfg.APIURL, cfg.UserID,
		api.WithTimeout(cfg.Timeout),
		api.WithLogger(logger),
	)
}

// NewRootCmd builds the command tree around app.
func NewRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "todo",
		Short:         "Todo list backed by a remote service",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          usageArgs(cobra.NoArgs),
		Example: strings.TrimSpace(`
  # Start the interactive list
  todo

  # Scriptable commands
  todo ls --filter active
  todo add Buy milk
  todo done 12
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, err := app.newController(controller.WithErrorTTL(app.cfg.ErrorTTL))
			if err != nil {
				return err
			}
			defer ctl.Close()
			return app.RunTUI(cmd.Context(), ctl, app.log)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd, cmd.Root() == cmd)
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err: err}
	})

	pf := cmd.PersistentFlags()
	pf.StringVar(&app.ConfigPath, "config", "", "Config file (default ~/.config/todo/config.toml)")
	pf.String("api-url", "", "Base URL of the todo service")
	pf.Int("user", 0, "User id whose todos are shown")
	pf.Duration("timeout", 0, "Per-request timeout")
	pf.String("theme", "", "Theme ("+strings.Join(ui.Themes, "|")+")")
	pf.Bool("no-color", false, "Disable colors")
	pf.String("log-level", "", "Log level (debug|info|warn|error)")
	pf.String("log-file", "", "Write logs to this file")

	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newDoneCmd(app))
	cmd.AddCommand(newRemoveCmd(app))
	cmd.AddCommand(newRenameCmd(app))
	cmd.AddCommand(newToggleAllCmd(app))
	cmd.AddCommand(newClearCmd(app))
	cmd.AddCommand(newConfigCmd(app))

	return cmd
}

// Execute runs the command line and returns the exit status. Errors are
// printed to app.Err.
func Execute(ctx context.Context, app *App, args []string) int {
	cmd := NewRootCmd(app)
	cmd.SetArgs(args)
	cmd.SetOut(app.Out)
	cmd.SetErr(app.Err)

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		ui.Fail(app.Err, err.Error())
		if hint := hintFor(err); hint != "" {
			fmt.Fprintln(app.Err, ui.Current().Muted.Render("Hint: "+hint))
		}
	}
	app.close()
	return ExitCode(err)
}

// setup loads configuration and builds the logger. The interactive list
// keeps logs off the terminal unless a log file is configured.
func (a *App) setup(cmd *cobra.Command, interactive bool) error {
	path := a.ConfigPath
	if _, err := os.Stat(path); path != "" && err != nil && cmd.Annotations[annCreatesConfig] != "" {
		path = ""
	}
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg

	ui.SetTheme(cfg.Theme)
	ui.SetColorForcing(false, cfg.NoColor)

	var fallback io.Writer = a.Err
	if interactive {
		fallback = nil
	}
	logger, closer, err := logging.New(logging.Options{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		File:      cfg.LogFile,
		Timestamp: interactive,
	}, fallback)
	if err != nil {
		return err
	}
	a.log, a.closer = logger, closer
	logging.Component(logger, "cli").Debug("config loaded", "path", cfg.Path, "api", cfg.APIURL, "user", cfg.UserID)
	return nil
}

func (a *App) close() {
	if a.closer != nil {
		a.closer.Close()
		a.closer = nil
	}
}

// newController validates the config and builds a controller over the
// configured service. Nothing is loaded yet.
func (a *App) newController(opts ...controller.Option) (*controller.Controller, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	svc, err := a.NewService(a.cfg, a.log)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	opts = append([]controller.Option{controller.WithLogger(a.log)}, opts...)
	return controller.New(svc, a.cfg.UserID, opts...), nil
}

// session builds a loaded controller for one-shot commands. Messages never
// expire there.
func (a *App) session(ctx context.Context) (*controller.Controller, error) {
	ctl, err := a.newController(controller.WithErrorTTL(0))
	if err != nil {
		return nil, err
	}
	if err := ctl.Load(ctx); err != nil {
		err = opError(ctl, err)
		ctl.Close()
		return nil, err
	}
	return ctl, nil
}
