package tasks

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/filisonic/easyhr/internal/formatter"
	"github.com/filisonic/easyhr/internal/models"
	"github.com/filisonic/easyhr/internal/services"
	"github.com/filisonic/easyhr/internal/services/servicestest"
	"github.com/filisonic/easyhr/internal/shared"
	tu "github.com/filisonic/easyhr/internal/testing"
)

func newTestEngine(t *testing.T, wf services.Workflow) *Engine {
	t.Helper()
	db := tu.MustOpenDB(t)
	return NewEngine(NewStore(db), wf, EngineConfig{CompanyName: "Acme", DemoFallback: true}, shared.NewLogger(io.Discard))
}

func mustCandidate(t *testing.T, e *Engine, name, email string) *models.Candidate {
	t.Helper()
	c := models.NewCandidate(name, email)
	if _, err := e.SaveCandidate(context.Background(), c); err != nil {
		t.Fatalf("failed to save candidate: %v", err)
	}
	return c
}

func mustOpenJob(t *testing.T, e *Engine, title string) *models.Job {
	t.Helper()
	j := models.NewJob(title)
	j.Status = models.JobOpen
	j.Requirements = "Go, SQL"
	if _, err := e.SaveJob(context.Background(), j); err != nil {
		t.Fatalf("failed to save job: %v", err)
	}
	return j
}

func TestSaveRecords(t *testing.T) {
	ctx := context.Background()

	t.Run("Create Then Update Notifies Workflow", func(t *testing.T) {
		wf := &servicestest.MockWorkflow{}
		e := newTestEngine(t, wf)

		c := models.NewCandidate("Alice Smith", "alice@example.com")
		res, err := e.SaveCandidate(ctx, c)
		if err != nil {
			t.Fatalf("SaveCandidate failed: %v", err)
		}
		if !res.Created || c.ID == "" {
			t.Errorf("expected created candidate with ID, got %+v", res)
		}

		c.Position = "Backend Engineer"
		res, err = e.SaveCandidate(ctx, c)
		if err != nil {
			t.Fatalf("SaveCandidate update failed: %v", err)
		}
		if res.Created {
			t.Error("second save should be an update")
		}

		if n := wf.CountAction(services.ResourceCandidates, services.ActionCreate); n != 1 {
			t.Errorf("expected 1 create notification, got %d", n)
		}
		if n := wf.CountAction(services.ResourceCandidates, services.ActionUpdate); n != 1 {
			t.Errorf("expected 1 update notification, got %d", n)
		}
	})

	t.Run("Workflow Failure Keeps Local Write", func(t *testing.T) {
		wf := &servicestest.MockWorkflow{Err: shared.ErrServiceUnavailable}
		e := newTestEngine(t, wf)

		j := models.NewJob("Designer")
		res, err := e.SaveJob(ctx, j)
		if err != nil {
			t.Fatalf("SaveJob should not fail on workflow error: %v", err)
		}
		if res.WorkflowError == "" {
			t.Error("expected workflow error to be reported")
		}

		stored, err := e.Store().Jobs.Get(ctx, j.ID)
		if err != nil {
			t.Fatalf("job should be persisted: %v", err)
		}
		if stored.Title != "Designer" {
			t.Errorf("unexpected title %q", stored.Title)
		}
	})

	t.Run("Without Workflow", func(t *testing.T) {
		e := newTestEngine(t, nil)
		res, err := e.SaveCandidate(ctx, models.NewCandidate("Bob", "bob@example.com"))
		if err != nil {
			t.Fatalf("SaveCandidate failed: %v", err)
		}
		if res.WorkflowError != "" {
			t.Errorf("expected no workflow error, got %q", res.WorkflowError)
		}
	})

	t.Run("Validation Error Skips Workflow", func(t *testing.T) {
		wf := &servicestest.MockWorkflow{}
		e := newTestEngine(t, wf)

		_, err := e.SaveCandidate(ctx, models.NewCandidate("", "nobody@example.com"))
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if len(wf.Calls()) != 0 {
			t.Errorf("workflow should not be called, got %d calls", len(wf.Calls()))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		wf := &servicestest.MockWorkflow{}
		e := newTestEngine(t, wf)
		c := mustCandidate(t, e, "Carol", "carol@example.com")
		j := mustOpenJob(t, e, "Engineer")

		if _, err := e.DeleteCandidate(ctx, c.ID); err != nil {
			t.Fatalf("DeleteCandidate failed: %v", err)
		}
		if _, err := e.DeleteJob(ctx, j.ID); err != nil {
			t.Fatalf("DeleteJob failed: %v", err)
		}
		if _, err := e.Store().Candidates.Get(ctx, c.ID); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected deleted candidate to be gone, got %v", err)
		}
		if wf.CountAction(services.ResourceCandidates, services.ActionDelete) != 1 ||
			wf.CountAction(services.ResourceJobs, services.ActionDelete) != 1 {
			t.Errorf("expected delete notifications, got %+v", wf.Calls())
		}

		if _, err := e.DeleteCandidate(ctx, "missing"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestDeleteCascade(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		name   string
		delete func(e *Engine, app *models.Application) error
	}{
		{"Candidate", func(e *Engine, app *models.Application) error {
			_, err := e.DeleteCandidate(ctx, app.CandidateID)
			return err
		}},
		{"Job", func(e *Engine, app *models.Application) error {
			_, err := e.DeleteJob(ctx, app.JobID)
			return err
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(t, &servicestest.MockWorkflow{})
			c := mustCandidate(t, e, "Alice", "alice@example.com")
			j := mustOpenJob(t, e, "Engineer")
			app, err := e.AddApplication(ctx, c.ID, j.ID, "")
			if err != nil {
				t.Fatal(err)
			}
			interview, err := e.ScheduleInterview(ctx, ScheduleRequest{ApplicationID: app.ID, At: time.Now().Add(24 * time.Hour)})
			if err != nil {
				t.Fatal(err)
			}

			if err := tc.delete(e, app); err != nil {
				t.Fatalf("delete failed: %v", err)
			}

			d, err := e.Dashboard(ctx)
			if err != nil {
				t.Fatalf("Dashboard failed: %v", err)
			}
			if len(d.Applications) != 0 {
				t.Errorf("expected no application counts, got %v", d.Applications)
			}
			if len(d.UpcomingInterviews) != 0 {
				t.Errorf("expected no upcoming interviews, got %d", len(d.UpcomingInterviews))
			}

			byJob, err := e.Store().Applications.ListByJob(ctx, j.ID)
			if err != nil {
				t.Fatal(err)
			}
			if len(byJob) != 0 {
				t.Errorf("expected no live applications, got %d", len(byJob))
			}

			stored, err := e.Store().Interviews.Get(ctx, interview.ID)
			if err != nil {
				t.Fatal(err)
			}
			if stored.Status != models.InterviewCancelled {
				t.Errorf("expected cancelled interview, got %s", stored.Status)
			}
		})
	}
}

func TestApplications(t *testing.T) {
	ctx := context.Background()

	t.Run("Add And Move", func(t *testing.T) {
		e := newTestEngine(t, &servicestest.MockWorkflow{})
		c := mustCandidate(t, e, "Alice", "alice@example.com")
		j := mustOpenJob(t, e, "Engineer")

		app, err := e.AddApplication(ctx, c.ID, j.ID, "referred")
		if err != nil {
			t.Fatalf("AddApplication failed: %v", err)
		}
		if app.Stage != models.StageApplied {
			t.Errorf("expected applied stage, got %s", app.Stage)
		}

		if _, err := e.MoveApplication(ctx, app.ID, models.StageOffer); err != nil {
			t.Fatalf("MoveApplication failed: %v", err)
		}
		stored, _ := e.Store().Candidates.Get(ctx, c.ID)
		if stored.Status != models.CandidateOffered {
			t.Errorf("expected candidate offered, got %s", stored.Status)
		}

		if _, err := e.MoveApplication(ctx, app.ID, models.StageRejected); err != nil {
			t.Fatalf("MoveApplication to rejected failed: %v", err)
		}
		if _, err := e.MoveApplication(ctx, app.ID, models.StageInterview); !errors.Is(err, shared.ErrInvalidStatus) {
			t.Errorf("leaving a terminal stage should fail, got %v", err)
		}
	})

	t.Run("Closed Job", func(t *testing.T) {
		e := newTestEngine(t, nil)
		c := mustCandidate(t, e, "Alice", "alice@example.com")
		j := models.NewJob("Old role")
		j.Status = models.JobClosed
		if _, err := e.SaveJob(ctx, j); err != nil {
			t.Fatal(err)
		}

		if _, err := e.AddApplication(ctx, c.ID, j.ID, ""); !errors.Is(err, shared.ErrInvalidStatus) {
			t.Errorf("expected ErrInvalidStatus, got %v", err)
		}
	})

	t.Run("Duplicate", func(t *testing.T) {
		e := newTestEngine(t, nil)
		c := mustCandidate(t, e, "Alice", "alice@example.com")
		j := mustOpenJob(t, e, "Engineer")

		if _, err := e.AddApplication(ctx, c.ID, j.ID, ""); err != nil {
			t.Fatal(err)
		}
		if _, err := e.AddApplication(ctx, c.ID, j.ID, ""); !errors.Is(err, shared.ErrDuplicate) {
			t.Errorf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("Unknown Candidate", func(t *testing.T) {
		e := newTestEngine(t, nil)
		j := mustOpenJob(t, e, "Engineer")
		if _, err := e.AddApplication(ctx, "missing", j.ID, ""); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestInterviews(t *testing.T) {
	ctx := context.Background()
	at := time.Now().Add(48 * time.Hour).Truncate(time.Minute)

	setup := func(t *testing.T, wf services.Workflow) (*Engine, *models.Application) {
		e := newTestEngine(t, wf)
		c := mustCandidate(t, e, "Alice", "alice@example.com")
		j := mustOpenJob(t, e, "Engineer")
		app, err := e.AddApplication(ctx, c.ID, j.ID, "")
		if err != nil {
			t.Fatal(err)
		}
		return e, app
	}

	t.Run("Schedule", func(t *testing.T) {
		wf := &servicestest.MockWorkflow{}
		e, app := setup(t, wf)

		interview, err := e.ScheduleInterview(ctx, ScheduleRequest{ApplicationID: app.ID, At: at, Interviewer: "Jordan"})
		if err != nil {
			t.Fatalf("ScheduleInterview failed: %v", err)
		}
		if interview.CalendarEventID != "evt-"+app.ID {
			t.Errorf("expected event id from workflow, got %q", interview.CalendarEventID)
		}
		if interview.DurationMinutes != models.DefaultInterviewMinutes {
			t.Errorf("expected default duration, got %d", interview.DurationMinutes)
		}

		stored, err := e.Store().Applications.Get(ctx, app.ID)
		if err != nil {
			t.Fatal(err)
		}
		if stored.Stage != models.StageInterview {
			t.Errorf("expected interview stage, got %s", stored.Stage)
		}

		upcoming, err := e.Store().Interviews.ListUpcoming(ctx, time.Now(), 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(upcoming) != 1 || upcoming[0].ID != interview.ID {
			t.Errorf("expected the interview to be upcoming, got %d", len(upcoming))
		}
	})

	t.Run("Workflow Failure Stores Nothing", func(t *testing.T) {
		wf := &servicestest.MockWorkflow{Err: shared.ErrWebhookFailed}
		e, app := setup(t, wf)

		if _, err := e.ScheduleInterview(ctx, ScheduleRequest{ApplicationID: app.ID, At: at}); !errors.Is(err, shared.ErrWebhookFailed) {
			t.Fatalf("expected ErrWebhookFailed, got %v", err)
		}
		list, err := e.Store().Interviews.List(ctx, map[string]any{"application_id": app.ID})
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 0 {
			t.Errorf("expected no stored interviews, got %d", len(list))
		}
	})

	t.Run("Invalid Requests", func(t *testing.T) {
		e, app := setup(t, &servicestest.MockWorkflow{})

		if _, err := e.ScheduleInterview(ctx, ScheduleRequest{ApplicationID: app.ID}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("missing time should be invalid, got %v", err)
		}
		if _, err := e.ScheduleInterview(ctx, ScheduleRequest{ApplicationID: app.ID, At: at, DurationMinutes: -5}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("negative duration should be invalid, got %v", err)
		}
		if _, err := e.ScheduleInterview(ctx, ScheduleRequest{ApplicationID: "missing", At: at}); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}

		if _, err := e.MoveApplication(ctx, app.ID, models.StageHired); err != nil {
			t.Fatal(err)
		}
		if _, err := e.ScheduleInterview(ctx, ScheduleRequest{ApplicationID: app.ID, At: at}); !errors.Is(err, shared.ErrInvalidStatus) {
			t.Errorf("hired application should not be scheduled, got %v", err)
		}
	})

	t.Run("Cancel", func(t *testing.T) {
		wf := &servicestest.MockWorkflow{}
		e, app := setup(t, wf)

		interview, err := e.ScheduleInterview(ctx, ScheduleRequest{ApplicationID: app.ID, At: at})
		if err != nil {
			t.Fatal(err)
		}

		cancelled, err := e.CancelInterview(ctx, interview.ID, "candidate withdrew")
		if err != nil {
			t.Fatalf("CancelInterview failed: %v", err)
		}
		if cancelled.Status != models.InterviewCancelled {
			t.Errorf("expected cancelled, got %s", cancelled.Status)
		}
		if wf.CountAction(services.ResourceInterviews, services.ActionCancel) != 1 {
			t.Error("expected a cancel call to the workflow")
		}

		if _, err := e.CancelInterview(ctx, interview.ID, ""); !errors.Is(err, shared.ErrInvalidStatus) {
			t.Errorf("cancelling twice should fail, got %v", err)
		}
	})

	t.Run("No Workflow", func(t *testing.T) {
		e := newTestEngine(t, nil)
		if _, err := e.ScheduleInterview(ctx, ScheduleRequest{ApplicationID: "x", At: at}); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestTemplates(t *testing.T) {
	ctx := context.Background()

	t.Run("SeedTemplates", func(t *testing.T) {
		e := newTestEngine(t, nil)
		pack, err := formatter.LoadTemplatePack("")
		if err != nil {
			t.Fatal(err)
		}

		first, err := e.SeedTemplates(ctx, pack)
		if err != nil {
			t.Fatalf("SeedTemplates failed: %v", err)
		}
		if len(first.Created) != len(pack.Templates) || len(first.Skipped) != 0 {
			t.Errorf("unexpected first seed: %+v", first)
		}

		second, err := e.SeedTemplates(ctx, pack)
		if err != nil {
			t.Fatalf("SeedTemplates failed: %v", err)
		}
		if len(second.Created) != 0 || len(second.Skipped) != len(pack.Templates) {
			t.Errorf("reseeding should skip every template: %+v", second)
		}
	})

	t.Run("PreviewTemplate", func(t *testing.T) {
		e := newTestEngine(t, nil)
		c := mustCandidate(t, e, "Alice Smith", "alice@example.com")
		j := mustOpenJob(t, e, "Engineer")
		tmpl := &models.EmailTemplate{Name: "Hi", Subject: "{{job_title}} at {{company_name}}", Body: "Hi {{first_name}}", Category: models.CategoryGeneral}
		if err := e.Store().Templates.Create(ctx, tmpl); err != nil {
			t.Fatal(err)
		}

		got, err := e.PreviewTemplate(ctx, tmpl.ID, c.ID, j.ID)
		if err != nil {
			t.Fatalf("PreviewTemplate failed: %v", err)
		}
		if got.Subject != "Engineer at Acme" || got.Body != "Hi Alice" {
			t.Errorf("unexpected render: %+v", got)
		}
	})

	t.Run("PreviewTemplate With Interview", func(t *testing.T) {
		e := newTestEngine(t, &servicestest.MockWorkflow{})
		c := mustCandidate(t, e, "Alice Smith", "alice@example.com")
		j := mustOpenJob(t, e, "Engineer")
		app, err := e.AddApplication(ctx, c.ID, j.ID, "")
		if err != nil {
			t.Fatal(err)
		}
		at := time.Now().Add(48 * time.Hour).Truncate(time.Minute)
		interview, err := e.ScheduleInterview(ctx, ScheduleRequest{ApplicationID: app.ID, At: at})
		if err != nil {
			t.Fatal(err)
		}
		tmpl := &models.EmailTemplate{Name: "Invite", Subject: "{{job_title}}", Body: "{{interview_date}} {{meeting_url}}", Category: models.CategoryInterviewInvite}
		if err := e.Store().Templates.Create(ctx, tmpl); err != nil {
			t.Fatal(err)
		}

		got, err := e.PreviewTemplate(ctx, tmpl.ID, c.ID, "")
		if err != nil {
			t.Fatalf("PreviewTemplate failed: %v", err)
		}
		want := formatter.FormatInterviewTime(at, nil) + " " + interview.MeetingURL
		if got.Subject != "Engineer" || got.Body != want {
			t.Errorf("expected %q / %q, got %+v", "Engineer", want, got)
		}
	})
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()

	t.Run("Live Data", func(t *testing.T) {
		e := newTestEngine(t, &servicestest.MockWorkflow{})
		mustCandidate(t, e, "Alice", "alice@example.com")
		mustCandidate(t, e, "Bob", "bob@example.com")
		mustOpenJob(t, e, "Engineer")

		d, err := e.Dashboard(ctx)
		if err != nil {
			t.Fatalf("Dashboard failed: %v", err)
		}
		if d.Demo {
			t.Error("live dashboard should not be flagged demo")
		}
		if d.TotalCandidates != 2 || d.Candidates["new"] != 2 {
			t.Errorf("unexpected candidate counts: %+v", d.Candidates)
		}
		if d.OpenJobs != 1 {
			t.Errorf("expected 1 open job, got %d", d.OpenJobs)
		}
	})

	t.Run("Demo Fallback", func(t *testing.T) {
		e := newTestEngine(t, nil)
		e.Store().DB.Close()

		d, err := e.Dashboard(ctx)
		if err != nil {
			t.Fatalf("expected demo data, got error %v", err)
		}
		if !d.Demo {
			t.Error("expected demo flag")
		}
		if d.TotalCandidates != 29 {
			t.Errorf("unexpected demo total %d", d.TotalCandidates)
		}
	})

	t.Run("No Fallback", func(t *testing.T) {
		e := newTestEngine(t, nil)
		e.config.DemoFallback = false
		e.Store().DB.Close()

		if _, err := e.Dashboard(ctx); err == nil {
			t.Error("expected error without demo fallback")
		}
	})

	t.Run("DemoDashboard Batch Settled", func(t *testing.T) {
		d := DemoDashboard(time.Now())
		if d.RecentBatches[0].Status != models.BatchPartial {
			t.Errorf("expected partial demo batch, got %s", d.RecentBatches[0].Status)
		}
	})

	t.Run("PipelineReport", func(t *testing.T) {
		e := newTestEngine(t, nil)
		c := mustCandidate(t, e, "Alice", "alice@example.com")
		j := mustOpenJob(t, e, "Engineer")
		if _, err := e.AddApplication(ctx, c.ID, j.ID, ""); err != nil {
			t.Fatal(err)
		}

		report, err := e.PipelineReport(ctx)
		if err != nil {
			t.Fatalf("PipelineReport failed: %v", err)
		}
		if len(report.Candidates) != 1 || len(report.Jobs) != 1 || len(report.Applications) != 1 {
			t.Errorf("unexpected report sizes: %d/%d/%d", len(report.Candidates), len(report.Jobs), len(report.Applications))
		}
		if report.StageCounts["applied"] != 1 || report.CompanyName != "Acme" {
			t.Errorf("unexpected report: %+v", report)
		}
	})
}

func TestPhaseString(t *testing.T) {
	tt := []struct {
		phase Phase
		want  string
	}{
		{LoadRecords, "load_records"},
		{ScreenResumes, "screen_resumes"},
		{RenderEmails, "render_emails"},
		{SendEmails, "send_emails"},
		{Finalize, "finalize"},
		{Phase(99), ""},
	}
	for _, tc := range tt {
		if got := tc.phase.String(); got != tc.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tc.phase, got, tc.want)
		}
	}
}
