package main

import (
	"context"

	"github.com/filisonic/easyhr/internal/models"
	"github.com/filisonic/easyhr/internal/ui"
	"github.com/urfave/cli/v3"
)

// JobsList prints jobs matching the filter flags.
func (r *Runner) JobsList(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.open(ctx)
	if err != nil {
		return err
	}

	jobs, err := engine.Store().Jobs.List(ctx, listCriteria(cmd, map[string]string{"status": "status", "department": "department"}))
	if err != nil {
		return err
	}

	return r.writeResult(cmd.Bool("json"), jobs, func() string {
		if len(jobs) == 0 {
			return ui.Muted("No jobs found")
		}
		return ui.JobTable(jobs)
	})
}

// JobsAdd creates a job and notifies the workflow.
func (r *Runner) JobsAdd(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.open(ctx)
	if err != nil {
		return err
	}

	j := models.NewJob(cmd.String("title"))
	j.Department = cmd.String("department")
	j.Location = cmd.String("location")
	j.EmploymentType = models.EmploymentType(cmd.String("type"))
	j.Description = cmd.String("description")
	j.Requirements = cmd.String("requirements")
	j.SalaryRange = cmd.String("salary")
	j.Status = models.JobStatus(cmd.String("status"))

	res, err := engine.SaveJob(ctx, j)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(res, true)
	}

	r.writePlain("%s %s [%s] (%s)\n", ui.OK("✓ added"), j.Title, ui.Badge(string(j.Status)), j.ID)
	r.reportWorkflow(res.WorkflowError)
	return nil
}

// JobsGet prints one job with its applicants.
func (r *Runner) JobsGet(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}
	engine, err := r.open(ctx)
	if err != nil {
		return err
	}

	j, err := engine.Store().Jobs.Get(ctx, id)
	if err != nil {
		return err
	}
	apps, err := engine.Store().Applications.List(ctx, map[string]any{"job_id": id})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"job": j, "applications": apps}, true)
	}

	r.writePlainHeader(j.Title)
	r.writePlain("ID:         %s\n", j.ID)
	r.writePlain("Status:     %s\n", ui.Badge(string(j.Status)))
	r.writePlain("Type:       %s\n", j.EmploymentType)
	if j.Department != "" {
		r.writePlain("Department: %s\n", j.Department)
	}
	if j.Location != "" {
		r.writePlain("Location:   %s\n", j.Location)
	}
	if j.Requirements != "" {
		r.writePlainln("%s", j.Requirements)
	}
	if len(apps) > 0 {
		names, err := r.candidateNames(ctx, apps)
		if err != nil {
			return err
		}
		r.writePlain("\n%s\n", ui.ApplicationTable(apps, names))
	}
	return nil
}

// JobsStatus sets a job's status.
func (r *Runner) JobsStatus(ctx context.Context, cmd *cli.Command) error {
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

	j, err := engine.Store().Jobs.Get(ctx, id)
	if err != nil {
		return err
	}
	j.Status = models.JobStatus(status)

	res, err := engine.SaveJob(ctx, j)
	if err != nil {
		return err
	}
	r.writePlain("%s %s is now %s\n", ui.OK("✓"), j.Title, ui.Badge(status))
	r.reportWorkflow(res.WorkflowError)
	return nil
}

// JobsDelete removes a job.
func (r *Runner) JobsDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}
	engine, err := r.open(ctx)
	if err != nil {
		return err
	}

	res, err := engine.DeleteJob(ctx, id)
	if err != nil {
		return err
	}
	r.writePlain("%s deleted %s\n", ui.OK("✓"), res.Record.Title)
	r.reportWorkflow(res.WorkflowError)
	return nil
}
