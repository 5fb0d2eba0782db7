package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/filisonic/easyhr/internal/models"
	"github.com/filisonic/easyhr/internal/services"
	"github.com/filisonic/easyhr/internal/services/servicestest"
	"github.com/filisonic/easyhr/internal/shared"
	"github.com/filisonic/easyhr/internal/tasks"
	tu "github.com/filisonic/easyhr/internal/testing"
	"github.com/xuri/excelize/v2"
)

// newTestRunner wires a runner to an in-memory database and a mock workflow.
func newTestRunner(t *testing.T) (*Runner, *bytes.Buffer, *servicestest.MockWorkflow) {
	t.Helper()
	logger := shared.NewLogger(io.Discard)
	wf := &servicestest.MockWorkflow{}
	engine := tasks.NewEngine(tasks.NewStore(tu.MustOpenDB(t)), wf, tasks.EngineConfig{CompanyName: "Acme"}, logger)
	output := &bytes.Buffer{}

	runner := NewRunner(RunnerOpts{
		ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
		Engine:     engine,
		Workflow:   wf,
		Logger:     logger,
		Output:     output,
	})
	return runner, output, wf
}

func run(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	return r.app().Run(context.Background(), append([]string{"easyhr"}, args...))
}

func mustRun(t *testing.T, r *Runner, args ...string) {
	t.Helper()
	if err := run(t, r, args...); err != nil {
		t.Fatalf("easyhr %s: %v", strings.Join(args, " "), err)
	}
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			workflow := &servicestest.MockWorkflow{}
			api := services.NewAPIService("http://localhost", nil)

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Workflow:   workflow,
				API:        api,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.workflow != workflow {
				t.Error("expected workflow to be set")
			}
			if runner.api != api {
				t.Error("expected api to be set")
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
			if runner.configPath != "config.toml" {
				t.Errorf("expected default config path, got %s", runner.configPath)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		seen := make(map[string]bool)
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			if seen[cmd.Name] {
				t.Errorf("command %s registered twice", cmd.Name)
			}
			seen[cmd.Name] = true
		}
		for _, name := range []string{"setup", "serve", "candidates", "jobs", "applications", "templates", "email", "interviews", "dashboard", "export", "workflow"} {
			if !seen[name] {
				t.Errorf("expected %s command", name)
			}
		}
	})

	t.Run("open", func(t *testing.T) {
		t.Run("opens and migrates the configured database", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Database.Path = ":memory:"
			config.Workflow.BaseURL = ""
			runner := NewRunner(RunnerOpts{Config: config, Logger: shared.NewLogger(io.Discard)})
			defer runner.Close()

			engine, err := runner.open(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if engine.Workflow() != nil {
				t.Error("expected workflow to be disabled without a base URL")
			}
			if _, err := engine.Store().Candidates.List(context.Background(), nil); err != nil {
				t.Errorf("expected migrated schema, got %v", err)
			}

			again, _ := runner.open(context.Background())
			if again != engine {
				t.Error("expected engine to be reused")
			}
		})

		t.Run("rejects invalid config", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Database.Path = ""
			runner := NewRunner(RunnerOpts{Config: config, Logger: shared.NewLogger(io.Discard)})

			if _, err := runner.open(context.Background()); !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	})
}

func TestSetupConfig(t *testing.T) {
	runner, output, _ := newTestRunner(t)

	mustRun(t, runner, "setup", "config")
	tu.AssertFileExists(t, runner.configPath)
	if !strings.Contains(output.String(), "config written to") {
		t.Errorf("unexpected output: %s", output.String())
	}

	if err := run(t, runner, "setup", "config"); err == nil {
		t.Error("expected error when config already exists")
	}
	mustRun(t, runner, "setup", "config", "--force")

	if _, err := shared.LoadConfig(runner.configPath); err != nil {
		t.Errorf("written config should load: %v", err)
	}

	nested := filepath.Join(t.TempDir(), "easyhr", "conf", "config.toml")
	mustRun(t, runner, "--config", nested, "setup", "config")
	tu.AssertDirExists(t, filepath.Dir(nested))
	tu.AssertFileExists(t, nested)
}

func TestSetupWorkflow(t *testing.T) {
	runner, output, _ := newTestRunner(t)
	curl := `curl -X POST 'https://n8n.example.com/webhook/send-email' -H 'X-API-Key: secret' -d '{}'`

	mustRun(t, runner, "setup", "workflow", "--resource", "email", "--curl", curl)
	if !strings.Contains(output.String(), "https://n8n.example.com/webhook") {
		t.Errorf("unexpected output: %s", output.String())
	}

	config, err := shared.LoadConfig(runner.configPath)
	if err != nil {
		t.Fatalf("expected saved config: %v", err)
	}
	if config.Workflow.BaseURL != "https://n8n.example.com/webhook" || config.Workflow.APIKey != "secret" {
		t.Errorf("unexpected workflow config: %+v", config.Workflow)
	}
	if got := config.Workflow.Endpoints["email"]; len(got) == 0 || got[0] != "/send-email" {
		t.Errorf("expected /send-email first, got %v", got)
	}

	tt := []struct {
		name string
		args []string
		want error
	}{
		{"no source", []string{"setup", "workflow"}, shared.ErrMissingArgument},
		{"both sources", []string{"setup", "workflow", "--curl", curl, "--curl-file", "x.sh"}, shared.ErrInvalidInput},
		{"unknown resource", []string{"setup", "workflow", "--resource", "payroll", "--curl", curl}, shared.ErrInvalidInput},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if err := run(t, runner, tc.args...); !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCandidateCommands(t *testing.T) {
	runner, output, wf := newTestRunner(t)
	ctx := context.Background()

	mustRun(t, runner, "candidates", "add", "--name", "Alice Smith", "--email", "alice@example.com", "--skills", "go, sql", "--experience", "4")
	if !strings.Contains(output.String(), "✓ added") {
		t.Errorf("unexpected output: %s", output.String())
	}
	if wf.CountAction(services.ResourceCandidates, services.ActionCreate) != 1 {
		t.Error("expected create notification")
	}

	list, _ := runner.engine.Store().Candidates.List(ctx, nil)
	if len(list) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(list))
	}
	alice := list[0]
	if len(alice.Skills) != 2 || alice.ExperienceYears != 4 {
		t.Errorf("unexpected candidate: %+v", alice)
	}

	t.Run("duplicate email", func(t *testing.T) {
		err := run(t, runner, "candidates", "add", "--name", "Other", "--email", "ALICE@example.com")
		if !errors.Is(err, shared.ErrDuplicate) {
			t.Errorf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("list json", func(t *testing.T) {
		output.Reset()
		mustRun(t, runner, "candidates", "list", "--json")

		var got []map[string]any
		if err := json.Unmarshal(output.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON %q: %v", output.String(), err)
		}
		if len(got) != 1 || got[0]["email"] != "alice@example.com" {
			t.Errorf("unexpected list: %v", got)
		}
	})

	t.Run("get missing id", func(t *testing.T) {
		if err := run(t, runner, "candidates", "get"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if err := run(t, runner, "candidates", "get", "nope"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("status", func(t *testing.T) {
		mustRun(t, runner, "candidates", "status", alice.ID, "shortlisted")
		c, _ := runner.engine.Store().Candidates.Get(ctx, alice.ID)
		if c.Status != models.CandidateShortlisted {
			t.Errorf("expected shortlisted, got %s", c.Status)
		}
		if err := run(t, runner, "candidates", "status", alice.ID, "famous"); !errors.Is(err, shared.ErrInvalidStatus) {
			t.Errorf("expected ErrInvalidStatus, got %v", err)
		}
	})

	t.Run("screen", func(t *testing.T) {
		output.Reset()
		mustRun(t, runner, "candidates", "screen", "--rate", "100", alice.ID)
		if !strings.Contains(output.String(), "Screened 1 of 1") {
			t.Errorf("unexpected output: %s", output.String())
		}
		c, _ := runner.engine.Store().Candidates.Get(ctx, alice.ID)
		if c.AIScore == nil || *c.AIScore != 80 {
			t.Errorf("expected stored score, got %v", c.AIScore)
		}

		if err := run(t, runner, "candidates", "screen"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		mustRun(t, runner, "candidates", "delete", alice.ID)
		if _, err := runner.engine.Store().Candidates.Get(ctx, alice.ID); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected candidate to be gone, got %v", err)
		}
	})
}

func TestPipelineCommands(t *testing.T) {
	runner, output, wf := newTestRunner(t)
	ctx := context.Background()

	mustRun(t, runner, "candidates", "add", "--name", "Bob Jones", "--email", "bob@example.com")
	mustRun(t, runner, "jobs", "add", "--title", "Backend Engineer", "--status", "open", "--requirements", "Go")
	candidates, _ := runner.engine.Store().Candidates.List(ctx, nil)
	jobs, _ := runner.engine.Store().Jobs.List(ctx, nil)
	bob, job := candidates[0], jobs[0]

	mustRun(t, runner, "applications", "add", "--candidate", bob.ID, "--job", job.ID)
	apps, _ := runner.engine.Store().Applications.List(ctx, nil)
	if len(apps) != 1 {
		t.Fatalf("expected 1 application, got %d", len(apps))
	}
	app := apps[0]

	t.Run("closed job rejects applications", func(t *testing.T) {
		mustRun(t, runner, "jobs", "add", "--title", "Draft Role")
		drafts, _ := runner.engine.Store().Jobs.List(ctx, map[string]any{"status": "draft"})
		err := run(t, runner, "applications", "add", "--candidate", bob.ID, "--job", drafts[0].ID)
		if !errors.Is(err, shared.ErrInvalidStatus) {
			t.Errorf("expected ErrInvalidStatus, got %v", err)
		}
	})

	t.Run("interviews", func(t *testing.T) {
		at := time.Now().Add(48 * time.Hour).Format(time.RFC3339)
		output.Reset()
		mustRun(t, runner, "interviews", "schedule", "--application", app.ID, "--at", at, "--interviewer", "Jordan")
		if !strings.Contains(output.String(), "Meeting: https://meet.example.com/"+app.ID) {
			t.Errorf("unexpected output: %s", output.String())
		}

		updated, _ := runner.engine.Store().Applications.Get(ctx, app.ID)
		if updated.Stage != models.StageInterview {
			t.Errorf("expected interview stage, got %s", updated.Stage)
		}

		output.Reset()
		mustRun(t, runner, "interviews", "list", "--upcoming", "--json")
		var interviews []map[string]any
		if err := json.Unmarshal(output.Bytes(), &interviews); err != nil {
			t.Fatalf("invalid JSON %q: %v", output.String(), err)
		}
		if len(interviews) != 1 {
			t.Fatalf("expected 1 upcoming interview, got %d", len(interviews))
		}

		mustRun(t, runner, "interviews", "cancel", "--reason", "conflict", interviews[0]["id"].(string))
		if wf.CountAction(services.ResourceInterviews, services.ActionCancel) != 1 {
			t.Error("expected cancel call")
		}
	})

	t.Run("stage", func(t *testing.T) {
		mustRun(t, runner, "applications", "stage", app.ID, "offer")
		c, _ := runner.engine.Store().Candidates.Get(ctx, bob.ID)
		if c.Status != models.StageOffer.CandidateStatus() {
			t.Errorf("expected candidate status to follow stage, got %s", c.Status)
		}
	})

	t.Run("templates and email", func(t *testing.T) {
		output.Reset()
		mustRun(t, runner, "templates", "seed")
		if !strings.Contains(output.String(), "Seeded 4 templates, skipped 0") {
			t.Errorf("unexpected output: %s", output.String())
		}
		output.Reset()
		mustRun(t, runner, "templates", "seed")
		if !strings.Contains(output.String(), "Seeded 0 templates, skipped 4") {
			t.Errorf("unexpected output: %s", output.String())
		}

		mustRun(t, runner, "templates", "add", "--name", "Nudge", "--subject", "Hi {{first_name}}", "--body", "About {{job_title}}")

		output.Reset()
		mustRun(t, runner, "templates", "preview", "--candidate", bob.ID, "--job", job.ID, "Nudge")
		if !strings.Contains(output.String(), "Hi Bob") || !strings.Contains(output.String(), "About Backend Engineer") {
			t.Errorf("unexpected preview: %s", output.String())
		}

		output.Reset()
		mustRun(t, runner, "email", "send", "--template", "Nudge", "--job", job.ID, "--rate", "100", bob.ID)
		if !strings.Contains(output.String(), "1/1 sent") {
			t.Errorf("unexpected output: %s", output.String())
		}
		sent := wf.Sent()
		if len(sent) != 1 || sent[0].Subject != "Hi Bob" {
			t.Errorf("unexpected sent emails: %+v", sent)
		}

		if err := run(t, runner, "email", "send", "--template", "Missing", bob.ID); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("dashboard", func(t *testing.T) {
		output.Reset()
		mustRun(t, runner, "dashboard", "--json")

		var d tasks.Dashboard
		if err := json.Unmarshal(output.Bytes(), &d); err != nil {
			t.Fatalf("invalid JSON %q: %v", output.String(), err)
		}
		if d.TotalCandidates != 1 || d.OpenJobs != 1 || len(d.RecentBatches) != 1 {
			t.Errorf("unexpected dashboard: %+v", d)
		}

		output.Reset()
		mustRun(t, runner, "dashboard")
		if !strings.Contains(output.String(), "Recruiting Dashboard") {
			t.Errorf("unexpected output: %s", output.String())
		}
	})

	t.Run("export", func(t *testing.T) {
		dir := t.TempDir()

		csvPath := filepath.Join(dir, "out.csv")
		mustRun(t, runner, "export", "--format", "csv", "--output", csvPath)
		if content := tu.MustReadFile(t, csvPath); !strings.Contains(content, "bob@example.com") {
			t.Errorf("unexpected CSV: %s", content)
		}

		xlsxPath := filepath.Join(dir, "pipeline")
		mustRun(t, runner, "export", "--output", xlsxPath)
		f, err := excelize.OpenFile(xlsxPath + ".xlsx")
		if err != nil {
			t.Fatalf("expected workbook: %v", err)
		}
		defer f.Close()
		if sheets := f.GetSheetList(); len(sheets) != 4 {
			t.Errorf("expected 4 sheets, got %v", sheets)
		}

		output.Reset()
		mustRun(t, runner, "export", "--format", "json")
		if !strings.Contains(output.String(), "Backend Engineer") {
			t.Errorf("unexpected JSON export: %s", output.String())
		}

		if err := run(t, runner, "export", "--format", "pdf"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestWorkflowCommands(t *testing.T) {
	t.Run("ping", func(t *testing.T) {
		runner, output, wf := newTestRunner(t)
		mustRun(t, runner, "workflow", "ping")
		if !strings.Contains(output.String(), "reachable") {
			t.Errorf("unexpected output: %s", output.String())
		}

		wf.Err = shared.ErrEndpointNotFound
		if err := run(t, runner, "workflow", "ping"); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("call", func(t *testing.T) {
		var gotMethod string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			if r.URL.Path == "/missing" {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"ok":true}`))
		}))
		defer srv.Close()

		runner, output, _ := newTestRunner(t)
		runner.api = services.NewAPIService(srv.URL, srv.Client())

		mustRun(t, runner, "workflow", "call", "/status")
		if gotMethod != http.MethodGet || !strings.Contains(output.String(), `"ok": true`) {
			t.Errorf("unexpected call: %s %s", gotMethod, output.String())
		}

		mustRun(t, runner, "workflow", "call", "--data", `{"x":1}`, "/status")
		if gotMethod != http.MethodPost {
			t.Errorf("expected POST, got %s", gotMethod)
		}

		if err := run(t, runner, "workflow", "call", "--data", "{", "/status"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if err := run(t, runner, "workflow", "call", "/missing"); !errors.Is(err, shared.ErrWebhookFailed) {
			t.Errorf("expected ErrWebhookFailed, got %v", err)
		}
	})
}

func TestParseScheduleTime(t *testing.T) {
	tt := []struct {
		in      string
		wantErr bool
	}{
		{"2026-03-09T14:30:00Z", false},
		{"2026-03-09 14:30", false},
		{"2026-03-09T14:30", false},
		{"next tuesday", true},
		{"", true},
	}
	for _, tc := range tt {
		t.Run(tc.in, func(t *testing.T) {
			_, err := parseScheduleTime(tc.in)
			if (err != nil) != tc.wantErr {
				t.Errorf("parseScheduleTime(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}
