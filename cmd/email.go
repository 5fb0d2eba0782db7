package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/filisonic/easyhr/internal/formatter"
	"github.com/filisonic/easyhr/internal/models"
	"github.com/filisonic/easyhr/internal/shared"
	"github.com/filisonic/easyhr/internal/tasks"
	"github.com/filisonic/easyhr/internal/ui"
	"github.com/urfave/cli/v3"
)

// findTemplate looks a template up by ID, then by name.
func findTemplate(ctx context.Context, engine *tasks.Engine, ref string) (*models.EmailTemplate, error) {
	t, err := engine.Store().Templates.Get(ctx, ref)
	if err == nil || !errors.Is(err, shared.ErrNotFound) {
		return t, err
	}
	return engine.Store().Templates.GetByName(ctx, ref)
}

// TemplatesList prints templates with the placeholders they use.
func (r *Runner) TemplatesList(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.open(ctx)
	if err != nil {
		return err
	}

	templates, err := engine.Store().Templates.List(ctx, listCriteria(cmd, map[string]string{"category": "category"}))
	if err != nil {
		return err
	}

	return r.writeResult(cmd.Bool("json"), templates, func() string {
		if len(templates) == 0 {
			return ui.Muted("No templates found, run 'easyhr templates seed'")
		}
		return ui.TemplateTable(templates)
	})
}

// TemplatesAdd creates a template from flags.
func (r *Runner) TemplatesAdd(ctx context.Context, cmd *cli.Command) error {
	body := cmd.String("body")
	if path := cmd.String("body-file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read body file: %w", err)
		}
		body = string(data)
	}
	engine, err := r.open(ctx)
	if err != nil {
		return err
	}

	t := &models.EmailTemplate{
		Name:     strings.TrimSpace(cmd.String("name")),
		Subject:  cmd.String("subject"),
		Body:     body,
		Category: models.TemplateCategory(cmd.String("category")),
	}
	if err := engine.Store().Templates.Create(ctx, t); err != nil {
		return err
	}

	r.writePlain("%s template %q (%s)\n", ui.OK("✓ added"), t.Name, t.ID)
	if vars := formatter.Placeholders(t.Subject + " " + t.Body); len(vars) > 0 {
		r.writePlain("Placeholders: %s\n", strings.Join(vars, ", "))
	}
	return nil
}

// TemplatesSeed inserts the templates of a YAML pack that do not exist yet.
func (r *Runner) TemplatesSeed(ctx context.Context, cmd *cli.Command) error {
	pack, err := formatter.LoadTemplatePack(cmd.String("file"))
	if err != nil {
		return err
	}
	engine, err := r.open(ctx)
	if err != nil {
		return err
	}

	res, err := engine.SeedTemplates(ctx, pack)
	if err != nil {
		return err
	}
	for _, name := range res.Created {
		r.writePlain("%s %s\n", ui.OK("✓"), name)
	}
	for _, name := range res.Skipped {
		r.writePlain("%s %s (exists)\n", ui.Muted("-"), name)
	}
	return r.writePlain("Seeded %d templates, skipped %d\n", len(res.Created), len(res.Skipped))
}

// TemplatesPreview prints a template rendered for one candidate.
func (r *Runner) TemplatesPreview(ctx context.Context, cmd *cli.Command) error {
	ref, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}
	engine, err := r.open(ctx)
	if err != nil {
		return err
	}

	t, err := findTemplate(ctx, engine, ref)
	if err != nil {
		return err
	}
	rendered, err := engine.PreviewTemplate(ctx, t.ID, cmd.String("candidate"), cmd.String("job"))
	if err != nil {
		return err
	}

	r.writePlain("%s %s\n\n", ui.Title("Subject:"), rendered.Subject)
	return r.writePlain("%s\n", rendered.Body)
}

// EmailSend renders a template for each candidate and sends the batch through the workflow.
func (r *Runner) EmailSend(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.open(ctx)
	if err != nil {
		return err
	}

	t, err := findTemplate(ctx, engine, cmd.String("template"))
	if err != nil {
		return err
	}
	ids, err := r.candidateIDs(ctx, engine, cmd)
	if err != nil {
		return err
	}

	opts := tasks.BulkOpts{JobID: cmd.String("job"), NumWorkers: cmd.Int("workers"), RateLimit: cmd.Float("rate")}
	progress, stop := r.watch(cmd.Bool("json"))
	res, err := engine.SendEmailBatch(ctx, progress, t.ID, ids, opts)
	stop()
	if res == nil {
		return err
	}

	if cmd.Bool("json") {
		if werr := r.writeJSON(res, true); werr != nil {
			return werr
		}
		return err
	}

	r.writePlain("\n%s\n", ui.BatchSummary(res.Batch))
	for _, d := range res.Deliveries {
		if !d.Success {
			r.writePlain("  %s %s: %s\n", ui.Err("✗"), d.CandidateID, d.ErrorText)
		}
	}
	return err
}
