// package tasks implements recruiting operations on top of the local store and the workflow service.
//
// The core abstraction is Engine, which persists records and delegates email, screening and scheduling
// to the automation webhooks. Bulk operations emit progress updates via channels.
package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/filisonic/easyhr/internal/formatter"
	"github.com/filisonic/easyhr/internal/models"
	"github.com/filisonic/easyhr/internal/repositories"
	"github.com/filisonic/easyhr/internal/services"
	"github.com/filisonic/easyhr/internal/shared"
)

// Store bundles the repositories the engine works against.
type Store struct {
	DB           *sql.DB
	Candidates   *repositories.CandidateRepository
	Jobs         *repositories.JobRepository
	Applications *repositories.ApplicationRepository
	Interviews   *repositories.InterviewRepository
	Templates    *repositories.EmailTemplateRepository
	Batches      *repositories.EmailBatchRepository
}

// NewStore creates every repository over db.
func NewStore(db *sql.DB) *Store {
	return &Store{
		DB:           db,
		Candidates:   repositories.NewCandidateRepository(db),
		Jobs:         repositories.NewJobRepository(db),
		Applications: repositories.NewApplicationRepository(db),
		Interviews:   repositories.NewInterviewRepository(db),
		Templates:    repositories.NewEmailTemplateRepository(db),
		Batches:      repositories.NewEmailBatchRepository(db),
	}
}

// EngineConfig holds the [shared.AppConfig] values the engine needs.
type EngineConfig struct {
	CompanyName  string
	DemoFallback bool
}

// Engine coordinates the store and the workflow service.
type Engine struct {
	store    *Store
	workflow services.Workflow
	config   EngineConfig
	logger   *log.Logger
	now      func() time.Time
}

// NewEngine creates an Engine. workflow may be nil, in which case record changes are not propagated
// and operations that need the automation service fail with [shared.ErrServiceUnavailable].
func NewEngine(store *Store, workflow services.Workflow, cfg EngineConfig, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{
		store:    store,
		workflow: workflow,
		config:   cfg,
		logger:   shared.WithLogger(logger, "component", "tasks"),
		now:      time.Now,
	}
}

// Store returns the underlying repositories.
func (e *Engine) Store() *Store { return e.store }

// Workflow returns the automation client, or nil when none is configured.
func (e *Engine) Workflow() services.Workflow { return e.workflow }

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func (e *Engine) requireWorkflow() error {
	if e.workflow == nil {
		return fmt.Errorf("%w: workflow service not configured", shared.ErrServiceUnavailable)
	}
	return nil
}

// SaveResult reports the outcome of a write that is mirrored to the workflow.
type SaveResult[T any] struct {
	Record        T      `json:"record"`
	Created       bool   `json:"created"`
	WorkflowError string `json:"workflow_error,omitempty"`
}

// notify runs a workflow sync and converts a failure into a logged, reportable message.
func (e *Engine) notify(kind, action, id string, sync func(services.Workflow) error) string {
	if e.workflow == nil {
		return ""
	}
	if err := sync(e.workflow); err != nil {
		e.logger.Warn("workflow notification failed", "record", kind, "action", action, "id", id, "error", err)
		return err.Error()
	}
	e.logger.Debug("workflow notified", "record", kind, "action", action, "id", id)
	return ""
}

// SaveCandidate creates the candidate when it has no ID, otherwise updates it, then notifies the workflow.
func (e *Engine) SaveCandidate(ctx context.Context, c *models.Candidate) (*SaveResult[*models.Candidate], error) {
	action := services.ActionUpdate
	if c.ID == "" {
		action = services.ActionCreate
		if err := e.store.Candidates.Create(ctx, c); err != nil {
			return nil, err
		}
	} else if err := e.store.Candidates.Update(ctx, c); err != nil {
		return nil, err
	}

	res := &SaveResult[*models.Candidate]{Record: c, Created: action == services.ActionCreate}
	res.WorkflowError = e.notify("candidate", action, c.ID, func(w services.Workflow) error {
		return w.SyncCandidate(ctx, action, c)
	})
	return res, nil
}

// DeleteCandidate soft-deletes a candidate and notifies the workflow.
func (e *Engine) DeleteCandidate(ctx context.Context, id string) (*SaveResult[*models.Candidate], error) {
	c, err := e.store.Candidates.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := e.store.Candidates.Delete(ctx, id); err != nil {
		return nil, err
	}

	res := &SaveResult[*models.Candidate]{Record: c}
	res.WorkflowError = e.notify("candidate", services.ActionDelete, id, func(w services.Workflow) error {
		return w.SyncCandidate(ctx, services.ActionDelete, c)
	})
	return res, nil
}

// SaveJob creates the job when it has no ID, otherwise updates it, then notifies the workflow.
func (e *Engine) SaveJob(ctx context.Context, j *models.Job) (*SaveResult[*models.Job], error) {
	action := services.ActionUpdate
	if j.ID == "" {
		action = services.ActionCreate
		if err := e.store.Jobs.Create(ctx, j); err != nil {
			return nil, err
		}
	} else if err := e.store.Jobs.Update(ctx, j); err != nil {
		return nil, err
	}

	res := &SaveResult[*models.Job]{Record: j, Created: action == services.ActionCreate}
	res.WorkflowError = e.notify("job", action, j.ID, func(w services.Workflow) error {
		return w.SyncJob(ctx, action, j)
	})
	return res, nil
}

// DeleteJob soft-deletes a job and notifies the workflow.
func (e *Engine) DeleteJob(ctx context.Context, id string) (*SaveResult[*models.Job], error) {
	j, err := e.store.Jobs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := e.store.Jobs.Delete(ctx, id); err != nil {
		return nil, err
	}

	res := &SaveResult[*models.Job]{Record: j}
	res.WorkflowError = e.notify("job", services.ActionDelete, id, func(w services.Workflow) error {
		return w.SyncJob(ctx, services.ActionDelete, j)
	})
	return res, nil
}

// AddApplication attaches a candidate to a job that is accepting applications.
func (e *Engine) AddApplication(ctx context.Context, candidateID, jobID, notes string) (*models.Application, error) {
	if _, err := e.store.Candidates.Get(ctx, candidateID); err != nil {
		return nil, err
	}
	job, err := e.store.Jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.AcceptsApplications() {
		return nil, fmt.Errorf("%w: job %q is %s", shared.ErrInvalidStatus, job.Title, job.Status)
	}

	app := models.NewApplication(candidateID, jobID)
	app.Notes = notes
	if err := e.store.Applications.Create(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// MoveApplication changes an application's stage and carries the implied status onto the candidate.
func (e *Engine) MoveApplication(ctx context.Context, id string, stage models.Stage) (*models.Application, error) {
	app, err := e.store.Applications.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := app.MoveTo(stage); err != nil {
		return nil, err
	}
	if err := e.store.Applications.Update(ctx, app); err != nil {
		return nil, err
	}
	if err := e.syncCandidateStatus(ctx, app.CandidateID, stage.CandidateStatus()); err != nil {
		e.logger.Warn("candidate status not updated", "candidate", app.CandidateID, "error", err)
	}
	return app, nil
}

func (e *Engine) syncCandidateStatus(ctx context.Context, candidateID string, status models.CandidateStatus) error {
	c, err := e.store.Candidates.Get(ctx, candidateID)
	if err != nil {
		return err
	}
	if c.Status == status {
		return nil
	}
	c.Status = status
	return e.store.Candidates.Update(ctx, c)
}

// ScheduleRequest describes an interview to book.
type ScheduleRequest struct {
	ApplicationID   string    `json:"application_id"`
	At              time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes,omitempty"`
	Interviewer     string    `json:"interviewer,omitempty"`
	Location        string    `json:"location,omitempty"`
}

// ScheduleInterview books an interview through the workflow and stores it with the returned event ID.
//
// The application moves to the interview stage. Nothing is stored when the workflow call fails.
func (e *Engine) ScheduleInterview(ctx context.Context, req ScheduleRequest) (*models.InterviewSchedule, error) {
	if err := e.requireWorkflow(); err != nil {
		return nil, err
	}

	app, err := e.store.Applications.Get(ctx, req.ApplicationID)
	if err != nil {
		return nil, err
	}
	if app.Stage.Terminal() {
		return nil, fmt.Errorf("%w: application is already %s", shared.ErrInvalidStatus, app.Stage)
	}
	candidate, err := e.store.Candidates.Get(ctx, app.CandidateID)
	if err != nil {
		return nil, err
	}
	job, err := e.store.Jobs.Get(ctx, app.JobID)
	if err != nil {
		return nil, err
	}

	interview := models.NewInterviewSchedule(app.ID, req.At.UTC())
	if req.DurationMinutes != 0 {
		interview.DurationMinutes = req.DurationMinutes
	}
	interview.Interviewer = req.Interviewer
	interview.Location = req.Location
	if err := interview.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	booked, err := e.workflow.ScheduleInterview(ctx, services.InterviewRequest{
		ApplicationID:   app.ID,
		CandidateName:   candidate.Name,
		CandidateEmail:  candidate.Email,
		JobTitle:        job.Title,
		StartTime:       interview.ScheduledAt,
		EndTime:         interview.EndsAt(),
		DurationMinutes: interview.DurationMinutes,
		Interviewer:     interview.Interviewer,
		Location:        interview.Location,
	})
	if err != nil {
		e.logger.Error("interview scheduling failed", "application", app.ID, "error", err)
		return nil, fmt.Errorf("failed to schedule interview: %w", err)
	}

	interview.CalendarEventID = booked.EventID
	interview.MeetingURL = booked.MeetingURL
	if err := e.store.Interviews.Create(ctx, interview); err != nil {
		return nil, err
	}

	if app.Stage != models.StageInterview && app.Stage != models.StageOffer {
		if _, err := e.MoveApplication(ctx, app.ID, models.StageInterview); err != nil {
			e.logger.Warn("application stage not updated", "application", app.ID, "error", err)
		}
	}

	e.logger.Info("interview scheduled", "interview", interview.ID, "event", interview.CalendarEventID, "at", interview.ScheduledAt)
	return interview, nil
}

// CancelInterview removes the calendar event through the workflow and marks the interview cancelled.
func (e *Engine) CancelInterview(ctx context.Context, id, reason string) (*models.InterviewSchedule, error) {
	if err := e.requireWorkflow(); err != nil {
		return nil, err
	}

	interview, err := e.store.Interviews.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if interview.Status != models.InterviewScheduled {
		return nil, fmt.Errorf("%w: interview is %s", shared.ErrInvalidStatus, interview.Status)
	}

	if err := e.workflow.CancelInterview(ctx, interview.ID, interview.CalendarEventID, reason); err != nil {
		e.logger.Error("interview cancellation failed", "interview", id, "error", err)
		return nil, fmt.Errorf("failed to cancel interview: %w", err)
	}

	interview.Status = models.InterviewCancelled
	if err := e.store.Interviews.Update(ctx, interview); err != nil {
		return nil, err
	}
	return interview, nil
}

// SeedResult counts the outcome of [Engine.SeedTemplates].
type SeedResult struct {
	Created []string `json:"created"`
	Skipped []string `json:"skipped"`
}

// SeedTemplates inserts every template of pack whose name is not taken yet.
func (e *Engine) SeedTemplates(ctx context.Context, pack *formatter.TemplatePack) (*SeedResult, error) {
	res := &SeedResult{}
	for _, t := range pack.Templates {
		_, err := e.store.Templates.GetByName(ctx, t.Name)
		switch {
		case err == nil:
			res.Skipped = append(res.Skipped, t.Name)
			continue
		case !errors.Is(err, shared.ErrNotFound):
			return res, err
		}

		tmpl := &models.EmailTemplate{Name: t.Name, Subject: t.Subject, Body: t.Body, Category: t.Category}
		if err := e.store.Templates.Create(ctx, tmpl); err != nil {
			return res, err
		}
		res.Created = append(res.Created, t.Name)
	}
	return res, nil
}

// PreviewTemplate renders a template against a candidate and, optionally, a job.
func (e *Engine) PreviewTemplate(ctx context.Context, templateID, candidateID, jobID string) (formatter.Rendered, error) {
	tmpl, err := e.store.Templates.Get(ctx, templateID)
	if err != nil {
		return formatter.Rendered{}, err
	}
	var job *models.Job
	if jobID != "" {
		if job, err = e.store.Jobs.Get(ctx, jobID); err != nil {
			return formatter.Rendered{}, err
		}
	}
	if candidateID == "" {
		mc := formatter.MessageContext{Job: job, CompanyName: e.config.CompanyName}
		return formatter.Render(tmpl, mc.Vars()), nil
	}

	c, err := e.store.Candidates.Get(ctx, candidateID)
	if err != nil {
		return formatter.Rendered{}, err
	}
	mc, err := e.messageContext(ctx, c, job)
	if err != nil {
		return formatter.Rendered{}, err
	}
	return formatter.Render(tmpl, mc.Vars()), nil
}

// messageContext builds the render context for a candidate, adding their next scheduled interview.
// When job is nil, the interview's job fills {{job_title}}.
func (e *Engine) messageContext(ctx context.Context, c *models.Candidate, job *models.Job) (formatter.MessageContext, error) {
	mc := formatter.MessageContext{Candidate: c, Job: job, CompanyName: e.config.CompanyName}

	interview, app, err := e.nextInterview(ctx, c.ID, job)
	if err != nil || interview == nil {
		return mc, err
	}
	mc.Interview = interview
	if mc.Job == nil {
		if mc.Job, err = e.store.Jobs.Get(ctx, app.JobID); err != nil {
			return mc, err
		}
	}
	return mc, nil
}

// nextInterview returns the soonest upcoming scheduled interview across the candidate's
// applications, restricted to job when it is set, with the application it belongs to.
func (e *Engine) nextInterview(ctx context.Context, candidateID string, job *models.Job) (*models.InterviewSchedule, *models.Application, error) {
	values := map[string]any{"candidate_id": candidateID}
	if job != nil {
		values["job_id"] = job.ID
	}
	apps, err := e.store.Applications.List(ctx, values)
	if err != nil {
		return nil, nil, err
	}

	var (
		next    *models.InterviewSchedule
		nextApp *models.Application
	)
	for _, app := range apps {
		interviews, err := e.store.Interviews.List(ctx, map[string]any{
			"application_id": app.ID,
			"status":         string(models.InterviewScheduled),
			"from":           e.now(),
			"limit":          1,
		})
		if err != nil {
			return nil, nil, err
		}
		if len(interviews) > 0 && (next == nil || interviews[0].ScheduledAt.Before(next.ScheduledAt)) {
			next, nextApp = interviews[0], app
		}
	}
	return next, nextApp, nil
}
