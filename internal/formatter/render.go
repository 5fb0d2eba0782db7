package formatter

import (
	"regexp"
	"strings"
	"time"

	"github.com/filisonic/easyhr/internal/models"
	"github.com/filisonic/easyhr/internal/shared"
)

// Placeholder names understood by [Render].
const (
	VarCandidateName = "candidate_name"
	VarFirstName     = "first_name"
	VarJobTitle      = "job_title"
	VarCompanyName   = "company_name"
	VarInterviewDate = "interview_date"
	VarMeetingURL    = "meeting_url"
)

// InterviewDateLayout formats {{interview_date}}.
const InterviewDateLayout = "Monday, January 2, 2006 at 15:04 MST"

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_]+)\s*\}\}`)

// MessageContext holds the entities a template is rendered against. Every field is optional.
type MessageContext struct {
	Candidate   *models.Candidate
	Job         *models.Job
	Interview   *models.InterviewSchedule
	CompanyName string
}

// Vars resolves the placeholder values available from the context.
func (m MessageContext) Vars() map[string]string {
	vars := make(map[string]string)
	if m.CompanyName != "" {
		vars[VarCompanyName] = m.CompanyName
	}
	if m.Candidate != nil {
		vars[VarCandidateName] = m.Candidate.Name
		vars[VarFirstName] = shared.FirstName(m.Candidate.Name)
	}
	if m.Job != nil {
		vars[VarJobTitle] = m.Job.Title
	}
	if m.Interview != nil {
		vars[VarInterviewDate] = FormatInterviewTime(m.Interview.ScheduledAt, nil)
		if m.Interview.MeetingURL != "" {
			vars[VarMeetingURL] = m.Interview.MeetingURL
		}
	}
	return vars
}

// Rendered is a template with its placeholders substituted.
type Rendered struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Render substitutes {{name}} placeholders in subject and body. Unknown names are left verbatim.
func Render(t *models.EmailTemplate, vars map[string]string) Rendered {
	return Rendered{
		Subject: RenderString(t.Subject, vars),
		Body:    RenderString(t.Body, vars),
	}
}

// RenderString substitutes placeholders in a single string.
func RenderString(s string, vars map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.ToLower(placeholderPattern.FindStringSubmatch(match)[1])
		if v, ok := vars[name]; ok {
			return v
		}
		return match
	})
}

// Placeholders lists the distinct placeholder names used in s, in order of first use.
func Placeholders(s string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(s, -1) {
		name := strings.ToLower(m[1])
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// FormatInterviewTime renders t in loc (UTC when nil) with [InterviewDateLayout].
func FormatInterviewTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(InterviewDateLayout)
}
