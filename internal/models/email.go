package models

import (
	"fmt"
	"time"

	"github.com/filisonic/easyhr/internal/shared"
)

// TemplateCategory groups email templates by purpose.
type TemplateCategory string

const (
	CategoryApplicationReceived TemplateCategory = "application_received"
	CategoryInterviewInvite     TemplateCategory = "interview_invite"
	CategoryRejection           TemplateCategory = "rejection"
	CategoryOffer               TemplateCategory = "offer"
	CategoryGeneral             TemplateCategory = "general"
)

// TemplateCategories lists every valid [TemplateCategory].
var TemplateCategories = []TemplateCategory{
	CategoryApplicationReceived, CategoryInterviewInvite, CategoryRejection, CategoryOffer, CategoryGeneral,
}

// EmailTemplate is a row of email_templates.
type EmailTemplate struct {
	Base
	Name     string           `json:"name" yaml:"name"`
	Subject  string           `json:"subject" yaml:"subject"`
	Body     string           `json:"body" yaml:"body"`
	Category TemplateCategory `json:"category" yaml:"category"`
}

// Validate implements [Model].
func (t *EmailTemplate) Validate() error {
	if err := required("name", t.Name); err != nil {
		return err
	}
	if err := required("subject", t.Subject); err != nil {
		return err
	}
	if err := required("body", t.Body); err != nil {
		return err
	}
	return oneOf("template category", t.Category, TemplateCategories)
}

// BatchStatus is the state of an [EmailBatch].
type BatchStatus string

const (
	BatchPending   BatchStatus = "pending"
	BatchSending   BatchStatus = "sending"
	BatchCompleted BatchStatus = "completed"
	BatchPartial   BatchStatus = "partial"
	BatchFailed    BatchStatus = "failed"
)

// BatchStatuses lists every valid [BatchStatus].
var BatchStatuses = []BatchStatus{BatchPending, BatchSending, BatchCompleted, BatchPartial, BatchFailed}

// EmailBatch is a row of email_batches.
type EmailBatch struct {
	Base
	TemplateID   string      `json:"template_id"`
	Status       BatchStatus `json:"status"`
	Total        int         `json:"total"`
	Sent         int         `json:"sent"`
	Failed       int         `json:"failed"`
	ErrorMessage string      `json:"error_message,omitempty"`
	StartedAt    *time.Time  `json:"started_at,omitempty"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty"`
}

// NewEmailBatch returns a pending batch for total recipients.
func NewEmailBatch(templateID string, total int) *EmailBatch {
	return &EmailBatch{TemplateID: templateID, Status: BatchPending, Total: total}
}

// Start marks the batch as sending.
func (b *EmailBatch) Start(now time.Time) {
	b.Status = BatchSending
	b.StartedAt = &now
}

// Finish settles the final status from the sent and failed counters.
func (b *EmailBatch) Finish(now time.Time) {
	b.CompletedAt = &now
	switch {
	case b.Failed == 0:
		b.Status = BatchCompleted
	case b.Sent == 0:
		b.Status = BatchFailed
	default:
		b.Status = BatchPartial
	}
}

// Validate implements [Model].
func (b *EmailBatch) Validate() error {
	if err := required("template_id", b.TemplateID); err != nil {
		return err
	}
	if b.Total < 0 || b.Sent < 0 || b.Failed < 0 {
		return fmt.Errorf("%w: batch counters must not be negative", shared.ErrInvalidInput)
	}
	if b.Sent+b.Failed > b.Total {
		return fmt.Errorf("%w: sent+failed (%d) exceeds total (%d)", shared.ErrInvalidInput, b.Sent+b.Failed, b.Total)
	}
	return oneOf("batch status", b.Status, BatchStatuses)
}
