package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/filisonic/easyhr/internal/formatter"
	"github.com/filisonic/easyhr/internal/services"
	"github.com/filisonic/easyhr/internal/shared"
	"github.com/filisonic/easyhr/internal/tasks"
	"github.com/filisonic/easyhr/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database and workflow client are opened on first use so that commands like
// "setup config" work without either.
type Runner struct {
	config     *shared.Config
	configPath string
	engine     *tasks.Engine
	workflow   services.Workflow
	api        *services.APIService
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	db         *sql.DB
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Engine     *tasks.Engine
	Workflow   services.Workflow
	API        *services.APIService
	HTTPClient *http.Client
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
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = "config.toml"
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		engine:     opts.Engine,
		workflow:   opts.Workflow,
		api:        opts.API,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, serveCommand, candidatesCommand, jobsCommand, applicationsCommand, templatesCommand,
		emailCommand, interviewsCommand, dashboardCommand, exportCommand, workflowCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// app builds the root command. A fresh tree is built on every call since parsed flag state lives on it.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "easyhr",
		Usage:   "Recruiting pipeline, screening and candidate email automation",
		Version: "0.3.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   r.configPath,
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.before,
		Commands: r.register(),
	}
}

// before loads the config file named by --config when it exists and overlays the environment.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
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
	return ctx, nil
}

// open returns the engine, opening the database and building the workflow client on first use.
func (r *Runner) open(ctx context.Context) (*tasks.Engine, error) {
	if r.engine != nil {
		return r.engine, nil
	}
	if err := r.config.Validate(); err != nil {
		return nil, err
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, err
	}
	if r.config.Database.Path != ":memory:" {
		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	}
	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	r.db = db

	workflow, err := r.workflowClient()
	if err != nil {
		return nil, err
	}

	cfg := tasks.EngineConfig{CompanyName: r.config.App.CompanyName, DemoFallback: r.config.App.DemoFallback}
	r.engine = tasks.NewEngine(tasks.NewStore(db), workflow, cfg, r.logger)
	return r.engine, nil
}

// workflowClient returns the configured workflow, building the webhook client when none was injected.
func (r *Runner) workflowClient() (services.Workflow, error) {
	if r.workflow != nil {
		return r.workflow, nil
	}
	if r.config.Workflow.BaseURL == "" {
		r.logger.Warn("workflow base URL not set, automation is disabled")
		return nil, nil
	}

	client := r.httpClient
	if client == http.DefaultClient {
		client = nil
	}
	svc, err := services.NewWorkflowService(r.config.Workflow, client, r.logger)
	if err != nil {
		return nil, err
	}
	r.workflow = svc
	if r.api == nil {
		r.api = svc.API()
	}
	return svc, nil
}

// rawAPI returns the raw webhook client for the workflow call command.
func (r *Runner) rawAPI() (*services.APIService, error) {
	if r.api != nil {
		return r.api, nil
	}
	if r.config.Workflow.BaseURL == "" {
		return nil, fmt.Errorf("%w: workflow.base_url is not set", shared.ErrMissingConfig)
	}
	r.api = services.NewAPIService(r.config.Workflow.BaseURL, r.httpClient).WithAPIKey(r.config.Workflow.APIKey)
	return r.api, nil
}

// Close releases the database opened by [Runner.open].
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// watch prints progress updates until the returned stop function is called.
func (r *Runner) watch(quiet bool) (chan tasks.ProgressUpdate, func()) {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			if quiet {
				r.logger.Debug(update.Message, "phase", update.Phase.String())
				continue
			}
			r.writePlain("%s\n", ui.Progress(update))
		}
	}()
	return progress, func() {
		close(progress)
		<-done
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if output, err = shared.MarshalJSON(data, pretty); err != nil {
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
	r.writePlain("%s\n", ui.Title(title))
}

// writeResult prints v as JSON when asJSON is set, otherwise the rendered text.
func (r *Runner) writeResult(asJSON bool, v any, render func() string) error {
	if asJSON {
		return formatter.WriteJSON(r.output, v, true)
	}
	return r.writePlain("%s\n", render())
}

// reportWorkflow prints a warning when a record was saved but the workflow was not notified.
func (r *Runner) reportWorkflow(msg string) {
	if msg != "" {
		r.writePlain("%s\n", ui.Warn("! saved locally, workflow not notified: "+msg))
	}
}
