package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/filisonic/easyhr/internal/services"
	"github.com/filisonic/easyhr/internal/shared"
	"github.com/filisonic/easyhr/internal/ui"
	"github.com/urfave/cli/v3"
)

// WorkflowPing checks that the workflow service answers.
func (r *Runner) WorkflowPing(ctx context.Context, cmd *cli.Command) error {
	workflow, err := r.workflowClient()
	if err != nil {
		return err
	}
	if workflow == nil {
		return fmt.Errorf("%w: workflow.base_url is not set", shared.ErrMissingConfig)
	}

	if err := workflow.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	return r.writePlain("%s workflow service reachable\n", ui.OK("✓"))
}

// WorkflowCall makes a direct GET, or a POST when --data is given, and prints the raw response.
func (r *Runner) WorkflowCall(ctx context.Context, cmd *cli.Command) error {
	path, err := requireArg(cmd, "path")
	if err != nil {
		return err
	}
	api, err := r.rawAPI()
	if err != nil {
		return err
	}

	var resp *services.APIResponse
	if data := cmd.String("data"); data != "" {
		if !json.Valid([]byte(data)) {
			return fmt.Errorf("%w: data is not valid JSON", shared.ErrInvalidInput)
		}
		r.logger.Info("POST request", "path", path)
		resp, err = api.Post(ctx, path, []byte(data))
	} else {
		r.logger.Info("GET request", "path", path)
		resp, err = api.Get(ctx, path)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrWebhookFailed, err)
	}

	if !resp.OK() {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrWebhookFailed, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, true)
	}
	return r.writePlain("%s\n", resp.Body)
}
