package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/filisonic/easyhr/internal/server"
	"github.com/filisonic/easyhr/internal/services"
	"github.com/filisonic/easyhr/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	engine, err := r.open(ctx)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	applied, err := shared.MigrationStatus(engine.Store().DB)
	if err != nil {
		return err
	}
	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return r.writePlain("✓ database ready at %s (%d migrations applied)\n", r.config.Database.Path, len(applied))
}

// SetupConfig writes config.toml from the embedded example config.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := r.configPath
	if cmd.Bool("force") {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to replace config file: %w", err)
		}
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)

	r.writePlain("✓ config written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set workflow.base_url or %s to your automation service\n", shared.EnvWorkflowURL)
	r.writePlain("2. Run 'easyhr setup database' and 'easyhr templates seed'\n")
	return nil
}

// Serve runs the HTTP API until the process is interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.open(ctx)
	if err != nil {
		return err
	}

	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.Port = port
	}
	if cfg.APIKey == "" {
		r.logger.Warn("server.api_key is empty, the API is unauthenticated")
	}

	return server.New(cfg, engine, r.logger).Run(ctx)
}

// SetupWorkflow reads a webhook request copied as cURL and stores its base URL, API key and
// endpoint in the config file.
func (r *Runner) SetupWorkflow(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")
	resource := cmd.String("resource")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}
	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidInput)
	}
	if resource != "" && !slices.Contains(services.Resources, resource) {
		return fmt.Errorf("%w: unknown resource %q", shared.ErrInvalidInput, resource)
	}

	var req *shared.CurlRequest
	var err error
	if curlFile != "" {
		req, err = shared.ParseCurlFile(curlFile)
	} else {
		req, err = shared.ParseCurlCommand([]byte(curlCmd))
	}
	if err != nil {
		return fmt.Errorf("failed to parse cURL command: %w", err)
	}

	if err := req.ApplyTo(&r.config.Workflow, resource); err != nil {
		return err
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return err
	}
	r.logger.Info("workflow settings saved", "path", r.configPath, "base_url", r.config.Workflow.BaseURL)

	r.writePlain("✓ workflow base URL set to %s\n", r.config.Workflow.BaseURL)
	if req.APIKey() != "" {
		r.writePlain("✓ API key imported from request headers\n")
	}
	if resource != "" {
		r.writePlain("✓ %s endpoints: %s\n", resource, strings.Join(r.config.Workflow.Endpoints[resource], ", "))
	}
	r.writePlainln("Run 'easyhr workflow ping' to check the connection.")
	return nil
}
