package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or HTTP layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	LoadRecords Phase = iota
	ScreenResumes
	RenderEmails
	SendEmails
	Finalize
)

func (p Phase) String() string {
	switch p {
	case LoadRecords:
		return "load_records"
	case ScreenResumes:
		return "screen_resumes"
	case RenderEmails:
		return "render_emails"
	case SendEmails:
		return "send_emails"
	case Finalize:
		return "finalize"
	default:
		return ""
	}
}

func loadingUpdate(total int, what string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadRecords,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Loading %d %s...", total, what),
	}
}

func screenedUpdate(step, total int, res CandidateScreening) ProgressUpdate {
	if res.Error != nil {
		return ProgressUpdate{
			Phase:   ScreenResumes,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.label(), res.Error),
			Data:    res,
		}
	}
	return ProgressUpdate{
		Phase:   ScreenResumes,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s scored %d", step, total, res.label(), res.Score),
		Data:    res,
	}
}

func batchStartedUpdate(total int, templateName string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RenderEmails,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Rendering %q for %d recipients...", templateName, total),
	}
}

func deliveryUpdate(step, total int, d Delivery) ProgressUpdate {
	if d.Error != nil {
		return ProgressUpdate{
			Phase:   SendEmails,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, d.label(), d.Error),
			Data:    d,
		}
	}
	return ProgressUpdate{
		Phase:   SendEmails,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, d.label()),
		Data:    d,
	}
}

func finalizeUpdate(message string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Finalize,
		Step:    1,
		Total:   1,
		Message: message,
	}
}
