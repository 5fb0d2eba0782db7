package services

import (
	"context"
	"time"

	"github.com/filisonic/easyhr/internal/models"
)

// Resources name the groups of webhook endpoints the automation service exposes.
const (
	ResourceCandidates = "candidates"
	ResourceJobs       = "jobs"
	ResourceScreening  = "screening"
	ResourceEmail      = "email"
	ResourceInterviews = "interviews"
)

// Resources lists every resource name.
var Resources = []string{ResourceCandidates, ResourceJobs, ResourceScreening, ResourceEmail, ResourceInterviews}

// Actions are sent in the "action" discriminator field of every webhook payload.
const (
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionDelete   = "delete"
	ActionScreen   = "screen"
	ActionSend     = "send"
	ActionSchedule = "schedule"
	ActionCancel   = "cancel"
	ActionPing     = "ping"
)

// DefaultEndpoints lists the webhook paths probed for each resource, in order.
var DefaultEndpoints = map[string][]string{
	ResourceCandidates: {"/easyhrtools-candidates", "/candidates"},
	ResourceJobs:       {"/easyhrtools-jobs", "/jobs"},
	ResourceScreening:  {"/easyhrtools-screening", "/ai-screening"},
	ResourceEmail:      {"/easyhrtools-email", "/send-email"},
	ResourceInterviews: {"/schedule-interview", "/easyhrtools-interviews"},
}

// Workflow defines the operations delegated to the automation service.
type Workflow interface {
	// Call posts {"action": action, ...payload} to the endpoints configured for resource.
	Call(ctx context.Context, resource, action string, payload map[string]any) (*APIResponse, error)

	// SyncCandidate notifies the service that a candidate was created, updated or deleted.
	SyncCandidate(ctx context.Context, action string, c *models.Candidate) error

	// SyncJob notifies the service that a job was created, updated or deleted.
	SyncJob(ctx context.Context, action string, j *models.Job) error

	// ScreenResume asks the service to score a resume against a job.
	ScreenResume(ctx context.Context, req ScreeningRequest) (*ScreeningResult, error)

	// SendEmail delivers a single rendered message.
	SendEmail(ctx context.Context, msg EmailMessage) error

	// ScheduleInterview books a calendar event for an interview.
	ScheduleInterview(ctx context.Context, req InterviewRequest) (*InterviewResult, error)

	// CancelInterview removes a previously booked calendar event.
	CancelInterview(ctx context.Context, interviewID, eventID, reason string) error

	// Ping checks that the candidates webhook answers.
	Ping(ctx context.Context) error
}

// ScreeningRequest is the payload of a resume screening call.
type ScreeningRequest struct {
	CandidateID     string   `json:"candidate_id"`
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Position        string   `json:"position,omitempty"`
	Skills          []string `json:"skills,omitempty"`
	ExperienceYears int      `json:"experience_years"`
	ResumeURL       string   `json:"resume_url,omitempty"`
	ResumeText      string   `json:"resume_text,omitempty"`
	JobID           string   `json:"job_id,omitempty"`
	JobTitle        string   `json:"job_title,omitempty"`
	JobRequirements string   `json:"job_requirements,omitempty"`
}

// ScreeningResult is the decoded answer of a screening call.
type ScreeningResult struct {
	Score          int            `json:"score"`
	Summary        string         `json:"summary"`
	Recommendation string         `json:"recommendation,omitempty"`
	Raw            map[string]any `json:"-"`
}

// EmailMessage is one rendered email handed to the delivery webhook.
type EmailMessage struct {
	To          string `json:"to"`
	Name        string `json:"name,omitempty"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	CandidateID string `json:"candidate_id,omitempty"`
	TemplateID  string `json:"template_id,omitempty"`
	BatchID     string `json:"batch_id,omitempty"`
}

// InterviewRequest is the payload of a scheduling call.
type InterviewRequest struct {
	ApplicationID   string    `json:"application_id"`
	CandidateName   string    `json:"candidate_name"`
	CandidateEmail  string    `json:"candidate_email"`
	JobTitle        string    `json:"job_title"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Interviewer     string    `json:"interviewer,omitempty"`
	Location        string    `json:"location,omitempty"`
}

// InterviewResult is the decoded answer of a scheduling call.
type InterviewResult struct {
	EventID    string         `json:"event_id"`
	MeetingURL string         `json:"meeting_url,omitempty"`
	Raw        map[string]any `json:"-"`
}
