// Package servicestest provides an in-memory [services.Workflow] for tests.
package servicestest

import (
	"context"
	"fmt"
	"sync"

	"github.com/filisonic/easyhr/internal/models"
	"github.com/filisonic/easyhr/internal/services"
)

// Call records one invocation of the mock.
type Call struct {
	Resource string
	Action   string
	Payload  map[string]any
}

// MockWorkflow is a test double for [services.Workflow].
//
// Each hook may be nil, in which case the operation succeeds with a canned answer.
// Err, when set, fails every operation.
type MockWorkflow struct {
	Err error

	ScreenFn   func(req services.ScreeningRequest) (*services.ScreeningResult, error)
	SendFn     func(msg services.EmailMessage) error
	ScheduleFn func(req services.InterviewRequest) (*services.InterviewResult, error)

	mu    sync.Mutex
	calls []Call
	sent  []services.EmailMessage
}

func (m *MockWorkflow) record(resource, action string, payload map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Resource: resource, Action: action, Payload: payload})
}

// Calls returns a copy of every recorded call.
func (m *MockWorkflow) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// Sent returns every email handed to SendEmail without error.
func (m *MockWorkflow) Sent() []services.EmailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]services.EmailMessage(nil), m.sent...)
}

// CountAction counts recorded calls for resource and action.
func (m *MockWorkflow) CountAction(resource, action string) int {
	n := 0
	for _, c := range m.Calls() {
		if c.Resource == resource && c.Action == action {
			n++
		}
	}
	return n
}

func (m *MockWorkflow) Call(ctx context.Context, resource, action string, payload map[string]any) (*services.APIResponse, error) {
	m.record(resource, action, payload)
	if m.Err != nil {
		return nil, m.Err
	}
	return &services.APIResponse{Path: "/" + resource, StatusCode: 200, IsJSON: true, JSONData: map[string]any{"ok": true}}, nil
}

func (m *MockWorkflow) SyncCandidate(ctx context.Context, action string, c *models.Candidate) error {
	m.record(services.ResourceCandidates, action, map[string]any{"id": c.ID})
	return m.Err
}

func (m *MockWorkflow) SyncJob(ctx context.Context, action string, j *models.Job) error {
	m.record(services.ResourceJobs, action, map[string]any{"id": j.ID})
	return m.Err
}

func (m *MockWorkflow) ScreenResume(ctx context.Context, req services.ScreeningRequest) (*services.ScreeningResult, error) {
	m.record(services.ResourceScreening, services.ActionScreen, map[string]any{"candidate_id": req.CandidateID})
	if m.Err != nil {
		return nil, m.Err
	}
	if m.ScreenFn != nil {
		return m.ScreenFn(req)
	}
	return &services.ScreeningResult{Score: 80, Summary: fmt.Sprintf("screened %s", req.Name)}, nil
}

func (m *MockWorkflow) SendEmail(ctx context.Context, msg services.EmailMessage) error {
	m.record(services.ResourceEmail, services.ActionSend, map[string]any{"to": msg.To})
	if m.Err != nil {
		return m.Err
	}
	if m.SendFn != nil {
		if err := m.SendFn(msg); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	return nil
}

func (m *MockWorkflow) ScheduleInterview(ctx context.Context, req services.InterviewRequest) (*services.InterviewResult, error) {
	m.record(services.ResourceInterviews, services.ActionSchedule, map[string]any{"application_id": req.ApplicationID})
	if m.Err != nil {
		return nil, m.Err
	}
	if m.ScheduleFn != nil {
		return m.ScheduleFn(req)
	}
	return &services.InterviewResult{EventID: "evt-" + req.ApplicationID, MeetingURL: "https://meet.example.com/" + req.ApplicationID}, nil
}

func (m *MockWorkflow) CancelInterview(ctx context.Context, interviewID, eventID, reason string) error {
	m.record(services.ResourceInterviews, services.ActionCancel, map[string]any{"interview_id": interviewID, "event_id": eventID})
	return m.Err
}

func (m *MockWorkflow) Ping(ctx context.Context) error {
	m.record(services.ResourceCandidates, services.ActionPing, nil)
	return m.Err
}

var _ services.Workflow = (*MockWorkflow)(nil)
