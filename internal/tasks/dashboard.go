package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/filisonic/easyhr/internal/formatter"
	"github.com/filisonic/easyhr/internal/models"
	"github.com/filisonic/easyhr/internal/repositories"
)

const (
	upcomingLimit = 10
	recentBatches = 5
)

// Dashboard is the recruiter overview served by `easyhr dashboard` and GET /api/dashboard.
type Dashboard struct {
	Candidates         map[string]int              `json:"candidates"`
	Jobs               map[string]int              `json:"jobs"`
	Applications       map[string]int              `json:"applications"`
	TotalCandidates    int                         `json:"total_candidates"`
	OpenJobs           int                         `json:"open_jobs"`
	UpcomingInterviews []*models.InterviewSchedule `json:"upcoming_interviews"`
	RecentBatches      []*models.EmailBatch        `json:"recent_batches"`
	GeneratedAt        time.Time                   `json:"generated_at"`
	Demo               bool                        `json:"demo"`
}

// Dashboard loads status counts, upcoming interviews and recent email batches.
//
// When the store fails and demo fallback is enabled, static demo data is returned instead of the error.
func (e *Engine) Dashboard(ctx context.Context) (*Dashboard, error) {
	d, err := e.loadDashboard(ctx)
	if err == nil {
		return d, nil
	}
	if !e.config.DemoFallback {
		return nil, err
	}
	e.logger.Warn("dashboard unavailable, serving demo data", "error", err)
	return DemoDashboard(e.now()), nil
}

func (e *Engine) loadDashboard(ctx context.Context) (*Dashboard, error) {
	now := e.now()
	d := &Dashboard{GeneratedAt: now}

	counts := []struct {
		table  string
		target *map[string]int
	}{
		{"candidates", &d.Candidates},
		{"jobs", &d.Jobs},
		{"recruitment_candidates", &d.Applications},
	}
	for _, c := range counts {
		m, err := repositories.CountByStatus(ctx, e.store.DB, c.table)
		if err != nil {
			return nil, fmt.Errorf("failed to load dashboard: %w", err)
		}
		*c.target = m
	}

	for _, n := range d.Candidates {
		d.TotalCandidates += n
	}
	d.OpenJobs = d.Jobs[string(models.JobOpen)]

	upcoming, err := e.store.Interviews.ListUpcoming(ctx, now, upcomingLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}
	d.UpcomingInterviews = upcoming

	batches, err := e.store.Batches.List(ctx, map[string]any{"limit": recentBatches})
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}
	d.RecentBatches = batches
	return d, nil
}

// DemoDashboard returns the static data shown when the store cannot be reached.
func DemoDashboard(now time.Time) *Dashboard {
	next := now.Add(24 * time.Hour).Truncate(time.Hour)
	done := now.Add(-2 * time.Hour)
	started := done.Add(-time.Minute)

	interview := models.NewInterviewSchedule("demo-application-1", next)
	interview.ID = "demo-interview-1"
	interview.Interviewer = "Jordan Lee"
	interview.MeetingURL = "https://meet.example.com/demo"

	batch := models.NewEmailBatch("demo-template-1", 12)
	batch.ID = "demo-batch-1"
	batch.Sent = 11
	batch.Failed = 1
	batch.StartedAt = &started
	batch.Finish(done)

	return &Dashboard{
		Candidates: map[string]int{
			"new": 8, "screening": 5, "shortlisted": 3, "interviewing": 4, "offered": 1, "hired": 2, "rejected": 6,
		},
		Jobs:               map[string]int{"open": 3, "draft": 1, "closed": 2},
		Applications:       map[string]int{"applied": 9, "screening": 5, "interview": 4, "offer": 1, "hired": 2, "rejected": 6},
		TotalCandidates:    29,
		OpenJobs:           3,
		UpcomingInterviews: []*models.InterviewSchedule{interview},
		RecentBatches:      []*models.EmailBatch{batch},
		GeneratedAt:        now,
		Demo:               true,
	}
}

// PipelineReport gathers every live candidate, job and application for a workbook export.
func (e *Engine) PipelineReport(ctx context.Context) (*formatter.PipelineReport, error) {
	candidates, err := e.store.Candidates.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	jobs, err := e.store.Jobs.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	apps, err := e.store.Applications.List(ctx, nil)
	if err != nil {
		return nil, err
	}

	report := &formatter.PipelineReport{
		CompanyName:  e.config.CompanyName,
		GeneratedAt:  e.now(),
		Candidates:   candidates,
		Jobs:         jobs,
		Applications: apps,
	}
	if report.CandidateCounts, err = repositories.CountByStatus(ctx, e.store.DB, "candidates"); err != nil {
		return nil, err
	}
	if report.JobCounts, err = repositories.CountByStatus(ctx, e.store.DB, "jobs"); err != nil {
		return nil, err
	}
	if report.StageCounts, err = repositories.CountByStatus(ctx, e.store.DB, "recruitment_candidates"); err != nil {
		return nil, err
	}
	return report, nil
}
