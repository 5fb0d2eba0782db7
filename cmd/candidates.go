package main

import (
	"context"
	"fmt"

	"github.com/filisonic/easyhr/internal/models"
	"github.com/filisonic/easyhr/internal/shared"
	"github.com/filisonic/easyhr/internal/tasks"
	"github.com/filisonic/easyhr/internal/ui"
	"github.com/urfave/cli/v3"
)

// listCriteria collects the non-empty string flags named in keys plus --limit.
func listCriteria(cmd *cli.Command, keys map[string]string) map[string]any {
	values := make(map[string]any)
	for flag, key := range keys {
		if v := cmd.String(flag); v != "" {
			values[key] = v
		}
	}
	if limit := cmd.Int("limit"); limit > 0 {
		values["limit"] = limit
	}
	return values
}

func requireArg(cmd *cli.Command, name string) (string, error) {
	v := cmd.StringArg(name)
	if v == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	return v, nil
}

// CandidatesList prints candidates matching the filter flags.
func (r *Runner) CandidatesList(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.open(ctx)
	if err != nil {
		return err
	}

	values := listCriteria(cmd, map[string]string{"status": "status", "position": "position", "search": "search"})
	candidates, err := engine.Store().Candidates.List(ctx, values)
	if err != nil {
		return err
	}

	return r.writeResult(cmd.Bool("json"), candidates, func() string {
		if len(candidates) == 0 {
			return ui.Muted("No candidates found")
		}
		return ui.CandidateTable(candidates)
	})
}

// CandidatesAdd creates a candidate and notifies the workflow.
func (r *Runner) CandidatesAdd(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.open(ctx)
	if err != nil {
		return err
	}

	c := models.NewCandidate(cmd.String("name"), cmd.String("email"))
	c.Phone = cmd.String("phone")
	c.Position = cmd.String("position")
	c.ExperienceYears = cmd.Int("experience")
	c.Skills = shared.SplitList(cmd.String("skills"))
	c.ResumeURL = cmd.String("resume")
	c.Location = cmd.String("location")
	c.Source = cmd.String("source")

	res, err := engine.SaveCandidate(ctx, c)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(res, true)
	}

	r.writePlain("%s %s <%s> (%s)\n", ui.OK("✓ added"), c.Name, c.Email, c.ID)
	r.reportWorkflow(res.WorkflowError)
	return nil
}

// CandidatesGet prints one candidate with their applications.
func (r *Runner) CandidatesGet(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}
	engine, err := r.open(ctx)
	if err != nil {
		return err
	}

	c, err := engine.Store().Candidates.Get(ctx, id)
	if err != nil {
		return err
	}
	apps, err := engine.Store().Applications.ListByCandidate(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"candidate": c, "applications": apps}, true)
	}

	r.writePlainHeader(c.Name)
	r.writePlain("ID:         %s\n", c.ID)
	r.writePlain("Email:      %s\n", c.Email)
	r.writePlain("Status:     %s\n", ui.Badge(string(c.Status)))
	if c.Position != "" {
		r.writePlain("Position:   %s\n", c.Position)
	}
	r.writePlain("Experience: %d years\n", c.ExperienceYears)
	if len(c.Skills) > 0 {
		r.writePlain("Skills:     %s\n", c.SkillsString())
	}
	if c.AIScore != nil {
		r.writePlain("AI score:   %d\n", *c.AIScore)
	}
	if c.AISummary != "" {
		r.writePlainln("%s", c.AISummary)
	}
	if len(apps) > 0 {
		r.writePlain("\n%s\n", ui.ApplicationTable(apps, map[string]string{c.ID: c.Name}))
	}
	return nil
}

// CandidatesStatus sets a candidate's status.
func (r *Runner) CandidatesStatus(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}
	status, err := requireArg(cmd, "status")
	if err != nil {
		return err
	}
	engine, err := r.open(ctx)
	if err != nil {
		return err
	}

	c, err := engine.Store().Candidates.Get(ctx, id)
	if err != nil {
		return err
	}
	c.Status = models.CandidateStatus(status)

	res, err := engine.SaveCandidate(ctx, c)
	if err != nil {
		return err
	}
	r.writePlain("%s %s is now %s\n", ui.OK("✓"), c.Name, ui.Badge(status))
	r.reportWorkflow(res.WorkflowError)
	return nil
}

// CandidatesDelete removes a candidate.
func (r *Runner) CandidatesDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}
	engine, err := r.open(ctx)
	if err != nil {
		return err
	}

	res, err := engine.DeleteCandidate(ctx, id)
	if err != nil {
		return err
	}
	r.writePlain("%s deleted %s\n", ui.OK("✓"), res.Record.Name)
	r.reportWorkflow(res.WorkflowError)
	return nil
}

// CandidatesScreen screens the given candidates, or every candidate with --status.
func (r *Runner) CandidatesScreen(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.open(ctx)
	if err != nil {
		return err
	}

	ids, err := r.candidateIDs(ctx, engine, cmd)
	if err != nil {
		return err
	}

	opts := tasks.BulkOpts{JobID: cmd.String("job"), NumWorkers: cmd.Int("workers"), RateLimit: cmd.Float("rate")}
	progress, stop := r.watch(cmd.Bool("json"))
	res, err := engine.ScreenCandidates(ctx, progress, ids, opts)
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

	rows := make([][]string, 0, len(res.Results))
	for _, s := range res.Results {
		score, outcome := "-", ui.OK("ok")
		if s.Success {
			score = fmt.Sprintf("%d", s.Score)
		} else {
			outcome = ui.Err(s.ErrorText)
		}
		rows = append(rows, []string{s.Name, score, outcome})
	}
	r.writePlain("\n%s\n", ui.Table([]string{"Candidate", "Score", "Result"}, rows))
	r.writePlain("Screened %d of %d (%d failed)\n", res.Succeeded, res.Total, res.Failed)
	return err
}

// candidateIDs reads IDs from the arguments, or selects them by --status when none are given.
func (r *Runner) candidateIDs(ctx context.Context, engine *tasks.Engine, cmd *cli.Command) ([]string, error) {
	if ids := cmd.Args().Slice(); len(ids) > 0 {
		return ids, nil
	}
	status := cmd.String("status")
	if status == "" {
		return nil, fmt.Errorf("%w: pass candidate IDs or --status", shared.ErrMissingArgument)
	}

	candidates, err := engine.Store().Candidates.List(ctx, map[string]any{"status": status})
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no candidates with status %s", shared.ErrNotFound, status)
	}
	return ids, nil
}
