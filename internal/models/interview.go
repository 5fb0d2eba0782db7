package models

import (
	"fmt"
	"time"

	"github.com/filisonic/easyhr/internal/shared"
)

// InterviewStatus is the state of an [InterviewSchedule].
type InterviewStatus string

const (
	InterviewScheduled InterviewStatus = "scheduled"
	InterviewCompleted InterviewStatus = "completed"
	InterviewCancelled InterviewStatus = "cancelled"
)

// InterviewStatuses lists every valid [InterviewStatus].
var InterviewStatuses = []InterviewStatus{InterviewScheduled, InterviewCompleted, InterviewCancelled}

// DefaultInterviewMinutes is used when no duration is given.
const DefaultInterviewMinutes = 60

// InterviewSchedule is a row of interview_schedules.
type InterviewSchedule struct {
	Base
	ApplicationID   string          `json:"application_id"`
	ScheduledAt     time.Time       `json:"scheduled_at"`
	DurationMinutes int             `json:"duration_minutes"`
	Interviewer     string          `json:"interviewer,omitempty"`
	Location        string          `json:"location,omitempty"`
	MeetingURL      string          `json:"meeting_url,omitempty"`
	Status          InterviewStatus `json:"status"`
	CalendarEventID string          `json:"calendar_event_id,omitempty"`
}

// NewInterviewSchedule returns a scheduled interview with the default duration.
func NewInterviewSchedule(applicationID string, at time.Time) *InterviewSchedule {
	return &InterviewSchedule{
		ApplicationID:   applicationID,
		ScheduledAt:     at,
		DurationMinutes: DefaultInterviewMinutes,
		Status:          InterviewScheduled,
	}
}

// EndsAt returns the scheduled end time.
func (i *InterviewSchedule) EndsAt() time.Time {
	return i.ScheduledAt.Add(time.Duration(i.DurationMinutes) * time.Minute)
}

// Validate implements [Model].
func (i *InterviewSchedule) Validate() error {
	if err := required("application_id", i.ApplicationID); err != nil {
		return err
	}
	if i.ScheduledAt.IsZero() {
		return fmt.Errorf("%w: scheduled_at is required", shared.ErrInvalidInput)
	}
	if i.DurationMinutes <= 0 {
		return fmt.Errorf("%w: duration_minutes must be positive", shared.ErrInvalidInput)
	}
	return oneOf("interview status", i.Status, InterviewStatuses)
}
