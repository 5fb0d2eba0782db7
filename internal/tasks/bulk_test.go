package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/filisonic/easyhr/internal/formatter"
	"github.com/filisonic/easyhr/internal/models"
	"github.com/filisonic/easyhr/internal/services"
	"github.com/filisonic/easyhr/internal/services/servicestest"
	"github.com/filisonic/easyhr/internal/shared"
)

var fastPool = BulkOpts{NumWorkers: 3, RateLimit: 1000}

func TestBulkOptsNormalize(t *testing.T) {
	tt := []struct {
		name        string
		in          BulkOpts
		wantWorkers int
		wantRate    float64
	}{
		{name: "defaults", in: BulkOpts{}, wantWorkers: defaultWorkers, wantRate: defaultRateLimit},
		{name: "capped workers", in: BulkOpts{NumWorkers: 50, RateLimit: 2}, wantWorkers: maxWorkers, wantRate: 2},
		{name: "kept", in: BulkOpts{NumWorkers: 2, RateLimit: 9}, wantWorkers: 2, wantRate: 9},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.normalize()
			if got.NumWorkers != tc.wantWorkers || got.RateLimit != tc.wantRate {
				t.Errorf("normalize() = %+v", got)
			}
		})
	}
}

func TestScreenCandidates(t *testing.T) {
	ctx := context.Background()

	t.Run("Scores Stored", func(t *testing.T) {
		var mu sync.Mutex
		var requests []services.ScreeningRequest
		wf := &servicestest.MockWorkflow{
			ScreenFn: func(req services.ScreeningRequest) (*services.ScreeningResult, error) {
				mu.Lock()
				requests = append(requests, req)
				mu.Unlock()
				return &services.ScreeningResult{Score: 91, Summary: "strong match"}, nil
			},
		}
		e := newTestEngine(t, wf)

		resumePath := filepath.Join(t.TempDir(), "alice.txt")
		if err := os.WriteFile(resumePath, []byte(strings.Repeat("Senior Go engineer with SQL experience. ", 5)), 0644); err != nil {
			t.Fatal(err)
		}
		alice := models.NewCandidate("Alice", "alice@example.com")
		alice.ResumeURL = resumePath
		if _, err := e.SaveCandidate(ctx, alice); err != nil {
			t.Fatal(err)
		}
		bob := models.NewCandidate("Bob", "bob@example.com")
		bob.ResumeURL = "https://files.example.com/bob.pdf"
		if _, err := e.SaveCandidate(ctx, bob); err != nil {
			t.Fatal(err)
		}

		job := mustOpenJob(t, e, "Engineer")
		app, err := e.AddApplication(ctx, alice.ID, job.ID, "")
		if err != nil {
			t.Fatal(err)
		}

		progress := make(chan ProgressUpdate, 20)
		opts := fastPool
		opts.JobID = job.ID
		res, err := e.ScreenCandidates(ctx, progress, []string{alice.ID, bob.ID}, opts)
		if err != nil {
			t.Fatalf("ScreenCandidates failed: %v", err)
		}
		if res.Succeeded != 2 || res.Failed != 0 {
			t.Errorf("unexpected result: %+v", res)
		}

		stored, _ := e.Store().Candidates.Get(ctx, alice.ID)
		if stored.AIScore == nil || *stored.AIScore != 91 {
			t.Errorf("expected score 91, got %v", stored.AIScore)
		}
		if stored.Status != models.CandidateScreening {
			t.Errorf("expected screening status, got %s", stored.Status)
		}
		if stored.AISummary != "strong match" {
			t.Errorf("unexpected summary %q", stored.AISummary)
		}

		storedApp, _ := e.Store().Applications.Get(ctx, app.ID)
		if storedApp.MatchScore == nil || *storedApp.MatchScore != 91 {
			t.Errorf("expected match score 91, got %v", storedApp.MatchScore)
		}

		for _, req := range requests {
			if req.JobRequirements != "Go, SQL" {
				t.Errorf("expected job requirements in request, got %q", req.JobRequirements)
			}
			switch req.CandidateID {
			case alice.ID:
				if !strings.Contains(req.ResumeText, "Senior Go engineer") {
					t.Errorf("expected local resume text, got %q", req.ResumeText)
				}
			case bob.ID:
				if req.ResumeText != "" || req.ResumeURL == "" {
					t.Errorf("remote resume should be passed by URL: %+v", req)
				}
			}
		}

		close(progress)
		var last ProgressUpdate
		for u := range progress {
			last = u
		}
		if last.Phase != Finalize {
			t.Errorf("expected final progress update, got %v", last.Phase)
		}
	})

	t.Run("Partial Failure", func(t *testing.T) {
		e := newTestEngine(t, nil)
		failing := mustCandidate(t, e, "Fail", "fail@example.com")
		ok := mustCandidate(t, e, "Ok", "ok@example.com")

		e.workflow = &servicestest.MockWorkflow{
			ScreenFn: func(req services.ScreeningRequest) (*services.ScreeningResult, error) {
				if req.CandidateID == failing.ID {
					return nil, fmt.Errorf("%w: 500", shared.ErrWebhookFailed)
				}
				return &services.ScreeningResult{Score: 60}, nil
			},
		}

		res, err := e.ScreenCandidates(ctx, nil, []string{failing.ID, ok.ID, "missing"}, fastPool)
		if err != nil {
			t.Fatalf("partial failures should not fail the run: %v", err)
		}
		if res.Succeeded != 1 || res.Failed != 2 {
			t.Errorf("expected 1 ok / 2 failed, got %+v", res)
		}
		for _, r := range res.Results {
			if !r.Success && r.ErrorText == "" {
				t.Errorf("failed result should carry error text: %+v", r)
			}
		}
	})

	t.Run("Guards", func(t *testing.T) {
		e := newTestEngine(t, nil)
		if _, err := e.ScreenCandidates(ctx, nil, []string{"x"}, fastPool); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}

		e.workflow = &servicestest.MockWorkflow{}
		if _, err := e.ScreenCandidates(ctx, nil, nil, fastPool); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if _, err := e.ScreenCandidates(ctx, nil, []string{"x"}, BulkOpts{JobID: "missing"}); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound for unknown job, got %v", err)
		}
	})
}

func TestSendEmailBatch(t *testing.T) {
	ctx := context.Background()

	newTemplate := func(t *testing.T, e *Engine) *models.EmailTemplate {
		t.Helper()
		tmpl := &models.EmailTemplate{
			Name:     "Invite",
			Subject:  "{{job_title}} at {{company_name}}",
			Body:     "Hi {{first_name}}, thanks for applying.",
			Category: models.CategoryInterviewInvite,
		}
		if err := e.Store().Templates.Create(ctx, tmpl); err != nil {
			t.Fatal(err)
		}
		return tmpl
	}

	t.Run("All Delivered", func(t *testing.T) {
		wf := &servicestest.MockWorkflow{}
		e := newTestEngine(t, wf)
		tmpl := newTemplate(t, e)
		alice := mustCandidate(t, e, "Alice Smith", "alice@example.com")
		bob := mustCandidate(t, e, "Bob Jones", "bob@example.com")
		job := mustOpenJob(t, e, "Engineer")

		opts := fastPool
		opts.JobID = job.ID
		res, err := e.SendEmailBatch(ctx, nil, tmpl.ID, []string{alice.ID, bob.ID}, opts)
		if err != nil {
			t.Fatalf("SendEmailBatch failed: %v", err)
		}
		if res.Batch.Status != models.BatchCompleted || res.Batch.Sent != 2 {
			t.Errorf("unexpected batch: %+v", res.Batch)
		}

		sent := wf.Sent()
		if len(sent) != 2 {
			t.Fatalf("expected 2 sent emails, got %d", len(sent))
		}
		for _, msg := range sent {
			if msg.Subject != "Engineer at Acme" {
				t.Errorf("unexpected subject %q", msg.Subject)
			}
			if msg.BatchID != res.Batch.ID || msg.TemplateID != tmpl.ID {
				t.Errorf("message not linked to batch: %+v", msg)
			}
			if !strings.HasPrefix(msg.Body, "Hi Alice,") && !strings.HasPrefix(msg.Body, "Hi Bob,") {
				t.Errorf("unexpected body %q", msg.Body)
			}
		}

		stored, err := e.Store().Batches.Get(ctx, res.Batch.ID)
		if err != nil {
			t.Fatal(err)
		}
		if stored.Status != models.BatchCompleted || stored.CompletedAt == nil || stored.StartedAt == nil {
			t.Errorf("stored batch not settled: %+v", stored)
		}
	})

	t.Run("Partial", func(t *testing.T) {
		e := newTestEngine(t, nil)
		tmpl := newTemplate(t, e)
		alice := mustCandidate(t, e, "Alice", "alice@example.com")
		bob := mustCandidate(t, e, "Bob", "bob@example.com")

		e.workflow = &servicestest.MockWorkflow{
			SendFn: func(msg services.EmailMessage) error {
				if msg.To == "bob@example.com" {
					return fmt.Errorf("%w: mailbox full", shared.ErrWebhookFailed)
				}
				return nil
			},
		}

		res, err := e.SendEmailBatch(ctx, nil, tmpl.ID, []string{alice.ID, bob.ID}, fastPool)
		if err != nil {
			t.Fatalf("SendEmailBatch failed: %v", err)
		}
		if res.Batch.Status != models.BatchPartial || res.Batch.Sent != 1 || res.Batch.Failed != 1 {
			t.Errorf("expected partial batch, got %+v", res.Batch)
		}
		if !strings.Contains(res.Batch.ErrorMessage, "mailbox full") {
			t.Errorf("expected error message recorded, got %q", res.Batch.ErrorMessage)
		}
	})

	t.Run("All Failed", func(t *testing.T) {
		e := newTestEngine(t, nil)
		tmpl := newTemplate(t, e)
		alice := mustCandidate(t, e, "Alice", "alice@example.com")
		e.workflow = &servicestest.MockWorkflow{Err: shared.ErrServiceUnavailable}

		res, err := e.SendEmailBatch(ctx, nil, tmpl.ID, []string{alice.ID, "missing"}, fastPool)
		if err != nil {
			t.Fatalf("SendEmailBatch failed: %v", err)
		}
		if res.Batch.Status != models.BatchFailed || res.Batch.Failed != 2 {
			t.Errorf("expected failed batch, got %+v", res.Batch)
		}
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		e := newTestEngine(t, nil)
		tmpl := newTemplate(t, e)
		alice := mustCandidate(t, e, "Alice", "alice@example.com")
		bob := mustCandidate(t, e, "Bob", "bob@example.com")

		cctx, cancel := context.WithCancel(ctx)
		defer cancel()
		wf := &servicestest.MockWorkflow{
			SendFn: func(msg services.EmailMessage) error {
				cancel()
				return nil
			},
		}
		e.workflow = wf

		// The slow limiter holds the second recipient until the first send cancels the run.
		res, err := e.SendEmailBatch(cctx, nil, tmpl.ID, []string{alice.ID, bob.ID}, BulkOpts{NumWorkers: 1, RateLimit: 0.001})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if res.Batch.Sent != 1 || res.Batch.Failed != 1 || res.Batch.Status != models.BatchPartial {
			t.Errorf("unattempted recipients should count as failed: %+v", res.Batch)
		}
		if !strings.Contains(res.Batch.ErrorMessage, "not attempted") {
			t.Errorf("unexpected error message %q", res.Batch.ErrorMessage)
		}

		stored, err := e.Store().Batches.Get(ctx, res.Batch.ID)
		if err != nil {
			t.Fatal(err)
		}
		if stored.Status != models.BatchPartial {
			t.Errorf("settled batch should be saved despite cancellation, got %s", stored.Status)
		}
	})

	t.Run("Interview Invitation", func(t *testing.T) {
		wf := &servicestest.MockWorkflow{}
		e := newTestEngine(t, wf)
		pack, err := formatter.LoadTemplatePack("")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := e.SeedTemplates(ctx, pack); err != nil {
			t.Fatal(err)
		}
		invite, err := e.Store().Templates.GetByName(ctx, "Interview invitation")
		if err != nil {
			t.Fatal(err)
		}

		alice := mustCandidate(t, e, "Alice Smith", "alice@example.com")
		job := mustOpenJob(t, e, "Engineer")
		app, err := e.AddApplication(ctx, alice.ID, job.ID, "")
		if err != nil {
			t.Fatal(err)
		}
		at := time.Now().Add(72 * time.Hour).Truncate(time.Minute)
		interview, err := e.ScheduleInterview(ctx, ScheduleRequest{ApplicationID: app.ID, At: at})
		if err != nil {
			t.Fatal(err)
		}

		if _, err := e.SendEmailBatch(ctx, nil, invite.ID, []string{alice.ID}, fastPool); err != nil {
			t.Fatalf("SendEmailBatch failed: %v", err)
		}
		sent := wf.Sent()
		if len(sent) != 1 {
			t.Fatalf("expected 1 sent email, got %d", len(sent))
		}

		body := sent[0].Body
		if strings.Contains(body, "{{") {
			t.Errorf("unfilled placeholders in body: %q", body)
		}
		if want := formatter.FormatInterviewTime(at, nil); !strings.Contains(body, want) {
			t.Errorf("expected interview date %q in body: %q", want, body)
		}
		if !strings.Contains(body, interview.MeetingURL) {
			t.Errorf("expected meeting URL %q in body: %q", interview.MeetingURL, body)
		}
		if sent[0].Subject != "Interview for Engineer at Acme" {
			t.Errorf("expected job title from the interview, got %q", sent[0].Subject)
		}
	})

	t.Run("Duplicate Recipients", func(t *testing.T) {
		wf := &servicestest.MockWorkflow{}
		e := newTestEngine(t, wf)
		tmpl := newTemplate(t, e)
		alice := mustCandidate(t, e, "Alice", "alice@example.com")

		res, err := e.SendEmailBatch(ctx, nil, tmpl.ID, []string{alice.ID, alice.ID, " " + alice.ID}, fastPool)
		if err != nil {
			t.Fatalf("SendEmailBatch failed: %v", err)
		}
		if res.Batch.Total != 1 || res.Batch.Sent != 1 {
			t.Errorf("expected one recipient, got %+v", res.Batch)
		}
		if n := len(wf.Sent()); n != 1 {
			t.Errorf("expected 1 sent email, got %d", n)
		}
	})

	t.Run("Guards", func(t *testing.T) {
		e := newTestEngine(t, &servicestest.MockWorkflow{})
		if _, err := e.SendEmailBatch(ctx, nil, "missing", []string{"x"}, fastPool); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound for unknown template, got %v", err)
		}
		if _, err := e.SendEmailBatch(ctx, nil, "missing", nil, fastPool); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}
