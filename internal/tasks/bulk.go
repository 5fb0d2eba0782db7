package tasks

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/filisonic/easyhr/internal/formatter"
	"github.com/filisonic/easyhr/internal/models"
	"github.com/filisonic/easyhr/internal/resume"
	"github.com/filisonic/easyhr/internal/services"
	"github.com/filisonic/easyhr/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultWorkers   = 5
	maxWorkers       = 10
	defaultRateLimit = 5.0
)

// BulkOpts configures the worker pool behind bulk operations.
type BulkOpts struct {
	JobID      string  // Optional job used for screening context or {{job_title}}
	NumWorkers int     // Concurrent workers (default: 5, max: 10)
	RateLimit  float64 // Workflow calls per second (default: 5)
}

func (o BulkOpts) normalize() BulkOpts {
	if o.NumWorkers <= 0 {
		o.NumWorkers = defaultWorkers
	}
	if o.NumWorkers > maxWorkers {
		o.NumWorkers = maxWorkers
	}
	if o.RateLimit <= 0 {
		o.RateLimit = defaultRateLimit
	}
	return o
}

// uniqueIDs drops blank and repeated IDs, keeping first-seen order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// runPool feeds items through a rate limiter to NumWorkers goroutines running fn.
//
// Results arrive in completion order. Items not dispatched before ctx is done are dropped.
func runPool[T, R any](ctx context.Context, items []T, opts BulkOpts, fn func(context.Context, T) R) <-chan R {
	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan T, len(items))
	results := make(chan R, len(items))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				results <- fn(ctx, item)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, item := range items {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			jobs <- item
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// CandidateScreening is the per-candidate outcome of [Engine.ScreenCandidates].
type CandidateScreening struct {
	CandidateID string `json:"candidate_id"`
	Name        string `json:"name,omitempty"`
	Score       int    `json:"score,omitempty"`
	Summary     string `json:"summary,omitempty"`
	Success     bool   `json:"success"`
	Error       error  `json:"-"`
	ErrorText   string `json:"error,omitempty"`
}

func (c CandidateScreening) label() string {
	if c.Name != "" {
		return c.Name
	}
	return c.CandidateID
}

// ScreeningRunResult summarises a screening run.
type ScreeningRunResult struct {
	Total     int                  `json:"total"`
	Succeeded int                  `json:"succeeded"`
	Failed    int                  `json:"failed"`
	Results   []CandidateScreening `json:"results"`
}

// ScreenCandidates sends each candidate's resume to the screening webhook and stores the returned score.
//
// Resume text is extracted when ResumeURL names a local file; otherwise the URL is passed through.
// Candidates still marked new move to screening. When opts.JobID is set the job's requirements are
// sent along and the matching application receives the score as its match score.
func (e *Engine) ScreenCandidates(ctx context.Context, progress chan<- ProgressUpdate, ids []string, opts BulkOpts) (*ScreeningRunResult, error) {
	if err := e.requireWorkflow(); err != nil {
		return nil, err
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no candidates to screen", shared.ErrMissingArgument)
	}
	opts = opts.normalize()

	var job *models.Job
	if opts.JobID != "" {
		var err error
		if job, err = e.store.Jobs.Get(ctx, opts.JobID); err != nil {
			return nil, err
		}
	}

	e.sendProgress(progress, loadingUpdate(len(ids), "candidates"))

	result := &ScreeningRunResult{Total: len(ids), Results: make([]CandidateScreening, 0, len(ids))}
	completed := 0
	for res := range runPool(ctx, ids, opts, func(ctx context.Context, id string) CandidateScreening {
		return e.screenOne(ctx, id, job)
	}) {
		completed++
		if res.Error != nil {
			res.ErrorText = res.Error.Error()
			result.Failed++
		} else {
			result.Succeeded++
		}
		result.Results = append(result.Results, res)
		e.sendProgress(progress, screenedUpdate(completed, len(ids), res))
	}

	e.sendProgress(progress, finalizeUpdate(fmt.Sprintf("Screened %d of %d candidates", result.Succeeded, result.Total)))
	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("screening interrupted: %w", err)
	}
	return result, nil
}

func (e *Engine) screenOne(ctx context.Context, id string, job *models.Job) CandidateScreening {
	res := CandidateScreening{CandidateID: id}

	c, err := e.store.Candidates.Get(ctx, id)
	if err != nil {
		res.Error = err
		return res
	}
	res.Name = c.Name

	req := services.ScreeningRequest{
		CandidateID:     c.ID,
		Name:            c.Name,
		Email:           c.Email,
		Position:        c.Position,
		Skills:          c.Skills,
		ExperienceYears: c.ExperienceYears,
		ResumeURL:       c.ResumeURL,
	}
	if job != nil {
		req.JobID = job.ID
		req.JobTitle = job.Title
		req.JobRequirements = job.Requirements
	}
	if text, ok := e.localResumeText(c.ResumeURL); ok {
		req.ResumeText = text
	}

	screened, err := e.workflow.ScreenResume(ctx, req)
	if err != nil {
		res.Error = err
		return res
	}

	score := screened.Score
	c.AIScore = &score
	c.AISummary = screened.Summary
	if c.Status == models.CandidateNew {
		c.Status = models.CandidateScreening
	}
	if err := e.store.Candidates.Update(ctx, c); err != nil {
		res.Error = err
		return res
	}

	if job != nil {
		e.recordMatchScore(ctx, c.ID, job.ID, score)
	}

	res.Score = score
	res.Summary = screened.Summary
	res.Success = true
	return res
}

// localResumeText extracts resume text when ref points at a readable local file.
func (e *Engine) localResumeText(ref string) (string, bool) {
	if ref == "" || strings.Contains(ref, "://") {
		return "", false
	}
	if _, err := os.Stat(ref); err != nil {
		return "", false
	}
	text, err := resume.ExtractText(ref)
	if err != nil {
		e.logger.Warn("resume text not extracted", "path", ref, "error", err)
		return "", false
	}
	return text, true
}

func (e *Engine) recordMatchScore(ctx context.Context, candidateID, jobID string, score int) {
	apps, err := e.store.Applications.ListByCandidate(ctx, candidateID)
	if err != nil {
		e.logger.Warn("applications not loaded", "candidate", candidateID, "error", err)
		return
	}
	for _, app := range apps {
		if app.JobID != jobID {
			continue
		}
		app.MatchScore = &score
		if err := e.store.Applications.Update(ctx, app); err != nil {
			e.logger.Warn("match score not stored", "application", app.ID, "error", err)
		}
	}
}

// Delivery is the per-recipient outcome of [Engine.SendEmailBatch].
type Delivery struct {
	CandidateID string `json:"candidate_id"`
	To          string `json:"to,omitempty"`
	Success     bool   `json:"success"`
	Error       error  `json:"-"`
	ErrorText   string `json:"error,omitempty"`
}

func (d Delivery) label() string {
	if d.To != "" {
		return d.To
	}
	return d.CandidateID
}

// EmailBatchResult pairs the stored batch with its per-recipient outcomes.
type EmailBatchResult struct {
	Batch      *models.EmailBatch `json:"batch"`
	Deliveries []Delivery         `json:"deliveries"`
}

// SendEmailBatch renders templateID for each candidate and delivers it through the workflow.
//
// The batch row tracks progress: it is created pending, moves to sending, and settles as
// completed, partial or failed from the sent and failed counters. Recipients never attempted
// because ctx ended are counted as failed.
func (e *Engine) SendEmailBatch(ctx context.Context, progress chan<- ProgressUpdate, templateID string, candidateIDs []string, opts BulkOpts) (*EmailBatchResult, error) {
	if err := e.requireWorkflow(); err != nil {
		return nil, err
	}
	candidateIDs = uniqueIDs(candidateIDs)
	if len(candidateIDs) == 0 {
		return nil, fmt.Errorf("%w: no recipients", shared.ErrMissingArgument)
	}
	opts = opts.normalize()

	tmpl, err := e.store.Templates.Get(ctx, templateID)
	if err != nil {
		return nil, err
	}

	var job *models.Job
	if opts.JobID != "" {
		if job, err = e.store.Jobs.Get(ctx, opts.JobID); err != nil {
			return nil, err
		}
	}

	batch := models.NewEmailBatch(tmpl.ID, len(candidateIDs))
	if err := e.store.Batches.Create(ctx, batch); err != nil {
		return nil, err
	}
	batch.Start(e.now())
	if err := e.store.Batches.Update(ctx, batch); err != nil {
		return nil, err
	}

	logger := e.logger.With("batch", batch.ID, "template", tmpl.Name)
	logger.Info("email batch started", "recipients", batch.Total)
	e.sendProgress(progress, batchStartedUpdate(batch.Total, tmpl.Name))

	result := &EmailBatchResult{Batch: batch, Deliveries: make([]Delivery, 0, len(candidateIDs))}
	var firstErr error
	completed := 0
	for d := range runPool(ctx, candidateIDs, opts, func(ctx context.Context, id string) Delivery {
		return e.deliver(ctx, tmpl, job, batch.ID, id)
	}) {
		completed++
		if d.Error != nil {
			d.ErrorText = d.Error.Error()
			batch.Failed++
			if firstErr == nil {
				firstErr = d.Error
			}
			logger.Warn("email not delivered", "candidate", d.CandidateID, "error", d.Error)
		} else {
			batch.Sent++
		}
		result.Deliveries = append(result.Deliveries, d)
		e.sendProgress(progress, deliveryUpdate(completed, batch.Total, d))
	}

	interrupted := ctx.Err()
	if skipped := batch.Total - batch.Sent - batch.Failed; skipped > 0 {
		batch.Failed += skipped
		if firstErr == nil {
			firstErr = fmt.Errorf("%d recipients not attempted: %w", skipped, interrupted)
		}
	}
	if firstErr != nil {
		batch.ErrorMessage = firstErr.Error()
	}
	batch.Finish(e.now())

	if err := e.store.Batches.Update(context.WithoutCancel(ctx), batch); err != nil {
		return result, fmt.Errorf("batch finished but could not be saved: %w", err)
	}

	logger.Info("email batch finished", "status", batch.Status, "sent", batch.Sent, "failed", batch.Failed)
	e.sendProgress(progress, finalizeUpdate(fmt.Sprintf("Batch %s: %d sent, %d failed", batch.Status, batch.Sent, batch.Failed)))

	if interrupted != nil {
		return result, fmt.Errorf("email batch interrupted: %w", interrupted)
	}
	return result, nil
}

func (e *Engine) deliver(ctx context.Context, tmpl *models.EmailTemplate, job *models.Job, batchID, candidateID string) Delivery {
	d := Delivery{CandidateID: candidateID}

	c, err := e.store.Candidates.Get(ctx, candidateID)
	if err != nil {
		d.Error = err
		return d
	}
	d.To = c.Email

	mc, err := e.messageContext(ctx, c, job)
	if err != nil {
		d.Error = err
		return d
	}
	rendered := formatter.Render(tmpl, mc.Vars())

	err = e.workflow.SendEmail(ctx, services.EmailMessage{
		To:          c.Email,
		Name:        c.Name,
		Subject:     rendered.Subject,
		Body:        rendered.Body,
		CandidateID: c.ID,
		TemplateID:  tmpl.ID,
		BatchID:     batchID,
	})
	if err != nil {
		d.Error = err
		return d
	}
	d.Success = true
	return d
}
