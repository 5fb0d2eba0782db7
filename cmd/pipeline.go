package main

import (
	"context"
	"fmt"
	"time"

	"github.com/filisonic/easyhr/internal/formatter"
	"github.com/filisonic/easyhr/internal/models"
	"github.com/filisonic/easyhr/internal/shared"
	"github.com/filisonic/easyhr/internal/tasks"
	"github.com/filisonic/easyhr/internal/ui"
	"github.com/urfave/cli/v3"
)

// Accepted --at layouts, tried in order. Layouts without a zone are read in local time.
var scheduleLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04"}

func parseScheduleTime(raw string) (time.Time, error) {
	for _, layout := range scheduleLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: cannot read %q as a time, use RFC 3339 or 2006-01-02 15:04", shared.ErrInvalidInput, raw)
}

// candidateNames resolves the candidate of every application for table output.
func (r *Runner) candidateNames(ctx context.Context, apps []*models.Application) (map[string]string, error) {
	names := make(map[string]string, len(apps))
	for _, app := range apps {
		if _, ok := names[app.CandidateID]; ok {
			continue
		}
		c, err := r.engine.Store().Candidates.Get(ctx, app.CandidateID)
		if err != nil {
			return nil, err
		}
		names[c.ID] = c.Name
	}
	return names, nil
}

// ApplicationsList prints applications matching the filter flags.
func (r *Runner) ApplicationsList(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.open(ctx)
	if err != nil {
		return err
	}

	values := listCriteria(cmd, map[string]string{"job": "job_id", "candidate": "candidate_id", "stage": "stage"})
	apps, err := engine.Store().Applications.List(ctx, values)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(apps, true)
	}
	if len(apps) == 0 {
		return r.writePlain("%s\n", ui.Muted("No applications found"))
	}

	names, err := r.candidateNames(ctx, apps)
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", ui.ApplicationTable(apps, names))
}

// ApplicationsAdd attaches a candidate to an open job.
func (r *Runner) ApplicationsAdd(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.open(ctx)
	if err != nil {
		return err
	}

	app, err := engine.AddApplication(ctx, cmd.String("candidate"), cmd.String("job"), cmd.String("notes"))
	if err != nil {
		return err
	}
	return r.writePlain("%s application %s is %s\n", ui.OK("✓"), app.ID, ui.Badge(string(app.Stage)))
}

// ApplicationsStage moves an application through the pipeline.
func (r *Runner) ApplicationsStage(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}
	stage, err := requireArg(cmd, "stage")
	if err != nil {
		return err
	}
	engine, err := r.open(ctx)
	if err != nil {
		return err
	}

	app, err := engine.MoveApplication(ctx, id, models.Stage(stage))
	if err != nil {
		return err
	}
	return r.writePlain("%s application %s moved to %s\n", ui.OK("✓"), app.ID, ui.Badge(string(app.Stage)))
}

// InterviewsSchedule books an interview and prints the meeting details.
func (r *Runner) InterviewsSchedule(ctx context.Context, cmd *cli.Command) error {
	at, err := parseScheduleTime(cmd.String("at"))
	if err != nil {
		return err
	}
	engine, err := r.open(ctx)
	if err != nil {
		return err
	}

	interview, err := engine.ScheduleInterview(ctx, tasks.ScheduleRequest{
		ApplicationID:   cmd.String("application"),
		At:              at,
		DurationMinutes: cmd.Int("duration"),
		Interviewer:     cmd.String("interviewer"),
		Location:        cmd.String("location"),
	})
	if err != nil {
		return err
	}

	r.writePlain("%s interview %s scheduled for %s\n", ui.OK("✓"), interview.ID, formatter.FormatInterviewTime(interview.ScheduledAt, time.Local))
	if interview.MeetingURL != "" {
		r.writePlain("Meeting: %s\n", interview.MeetingURL)
	}
	return nil
}

// InterviewsList prints interviews, optionally only upcoming ones.
func (r *Runner) InterviewsList(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.open(ctx)
	if err != nil {
		return err
	}

	values := listCriteria(cmd, map[string]string{"status": "status"})
	if cmd.Bool("upcoming") {
		values["status"] = string(models.InterviewScheduled)
		values["from"] = time.Now()
	}
	interviews, err := engine.Store().Interviews.List(ctx, values)
	if err != nil {
		return err
	}

	return r.writeResult(cmd.Bool("json"), interviews, func() string {
		if len(interviews) == 0 {
			return ui.Muted("No interviews found")
		}
		return ui.InterviewTable(interviews)
	})
}

// InterviewsCancel cancels a scheduled interview through the calendar workflow.
func (r *Runner) InterviewsCancel(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}
	engine, err := r.open(ctx)
	if err != nil {
		return err
	}

	interview, err := engine.CancelInterview(ctx, id, cmd.String("reason"))
	if err != nil {
		return err
	}
	return r.writePlain("%s interview %s %s\n", ui.OK("✓"), interview.ID, ui.Badge(string(interview.Status)))
}
