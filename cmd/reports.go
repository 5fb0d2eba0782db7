package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/filisonic/easyhr/internal/formatter"
	"github.com/filisonic/easyhr/internal/shared"
	"github.com/filisonic/easyhr/internal/ui"
	"github.com/urfave/cli/v3"
)

// Dashboard prints status counts, upcoming interviews and recent email batches.
func (r *Runner) Dashboard(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.open(ctx)
	if err != nil {
		return err
	}

	d, err := engine.Dashboard(ctx)
	if err != nil {
		return err
	}
	return r.writeResult(cmd.Bool("json"), d, func() string { return ui.Dashboard(d) })
}

// Export writes candidates as CSV, or the whole pipeline as JSON or an xlsx workbook.
//
// JSON without --output goes to stdout.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	format := strings.ToLower(cmd.String("format"))
	output := cmd.String("output")

	engine, err := r.open(ctx)
	if err != nil {
		return err
	}

	var path string
	switch format {
	case "csv":
		candidates, err := engine.Store().Candidates.List(ctx, nil)
		if err != nil {
			return err
		}
		if path, err = formatter.WriteCandidatesCSV(candidates, output); err != nil {
			return err
		}
	case "json":
		report, err := engine.PipelineReport(ctx)
		if err != nil {
			return err
		}
		if output == "" {
			return formatter.WriteJSON(r.output, report, true)
		}
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create export file: %w", err)
		}
		defer f.Close()
		if err := formatter.WriteJSON(f, report, true); err != nil {
			return err
		}
		path = output
	case "xlsx":
		report, err := engine.PipelineReport(ctx)
		if err != nil {
			return err
		}
		if output == "" {
			output = "pipeline.xlsx"
		}
		if path, err = formatter.SavePipelineWorkbook(output, report); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown export format %q (csv, json or xlsx)", shared.ErrInvalidInput, format)
	}

	r.logger.Info("export written", "format", format, "path", path)
	return r.writePlain("%s exported to %s\n", ui.OK("✓"), path)
}
