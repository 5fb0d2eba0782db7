package ui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/filisonic/easyhr/internal/formatter"
	"github.com/filisonic/easyhr/internal/models"
	"github.com/filisonic/easyhr/internal/tasks"
)

const listTimeLayout = "2006-01-02 15:04"

var (
	headerStyle = NewBold("#7D56F4").Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = NewStyle("#626262")
)

// Table renders rows under headers with a rounded border.
func Table(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	return t.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// CandidateTable lists candidates with their status badge and AI score.
func CandidateTable(candidates []*models.Candidate) string {
	rows := make([][]string, 0, len(candidates))
	for _, c := range candidates {
		rows = append(rows, []string{
			shortID(c.ID), c.Name, c.Email, c.Position, Badge(string(c.Status)), formatter.ScoreString(c.AIScore),
		})
	}
	return Table([]string{"ID", "Name", "Email", "Position", "Status", "Score"}, rows)
}

// JobTable lists jobs.
func JobTable(jobs []*models.Job) string {
	rows := make([][]string, 0, len(jobs))
	for _, j := range jobs {
		rows = append(rows, []string{
			shortID(j.ID), j.Title, j.Department, j.Location, string(j.EmploymentType), Badge(string(j.Status)),
		})
	}
	return Table([]string{"ID", "Title", "Department", "Location", "Type", "Status"}, rows)
}

// ApplicationTable lists applications; names resolve candidate and job IDs when known.
func ApplicationTable(apps []*models.Application, names map[string]string) string {
	label := func(id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		return shortID(id)
	}
	rows := make([][]string, 0, len(apps))
	for _, a := range apps {
		rows = append(rows, []string{
			shortID(a.ID), label(a.CandidateID), label(a.JobID), Badge(string(a.Stage)), formatter.ScoreString(a.MatchScore),
		})
	}
	return Table([]string{"ID", "Candidate", "Job", "Stage", "Match"}, rows)
}

// TemplateTable lists email templates with the placeholders each one uses.
func TemplateTable(templates []*models.EmailTemplate) string {
	rows := make([][]string, 0, len(templates))
	for _, t := range templates {
		vars := formatter.Placeholders(t.Subject + "\n" + t.Body)
		rows = append(rows, []string{shortID(t.ID), t.Name, string(t.Category), t.Subject, strings.Join(vars, ", ")})
	}
	return Table([]string{"ID", "Name", "Category", "Subject", "Placeholders"}, rows)
}

// InterviewTable lists interviews in local time.
func InterviewTable(interviews []*models.InterviewSchedule) string {
	rows := make([][]string, 0, len(interviews))
	for _, i := range interviews {
		where := i.MeetingURL
		if where == "" {
			where = i.Location
		}
		rows = append(rows, []string{
			shortID(i.ID),
			i.ScheduledAt.Local().Format(listTimeLayout),
			strconv.Itoa(i.DurationMinutes) + "m",
			i.Interviewer,
			where,
			Badge(string(i.Status)),
		})
	}
	return Table([]string{"ID", "When", "Length", "Interviewer", "Where", "Status"}, rows)
}

// BatchSummary renders one line describing an email batch.
func BatchSummary(b *models.EmailBatch) string {
	line := fmt.Sprintf("%s  %s  %d/%d sent", shortID(b.ID), Badge(string(b.Status)), b.Sent, b.Total)
	if b.Failed > 0 {
		line += "  " + Err(fmt.Sprintf("%d failed", b.Failed))
	}
	return line
}

// Counts renders a status histogram as "status: n" lines in pipeline order where known.
func Counts(counts map[string]int, order []string) string {
	keys := make([]string, 0, len(counts))
	seen := make(map[string]bool)
	for _, k := range order {
		if _, ok := counts[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range counts {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	keys = append(keys, rest...)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "  %-14s %d\n", Badge(k), counts[k])
	}
	return b.String()
}

func stringsOf[S ~string](values []S) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// Dashboard renders the recruiter overview.
func Dashboard(d *tasks.Dashboard) string {
	var b strings.Builder

	title := "Recruiting Dashboard"
	b.WriteString(Title(title))
	b.WriteString("\n")
	if d.Demo {
		b.WriteString(Warn("Showing demo data: the database could not be reached."))
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "%s %d   %s %d\n\n", OK("Candidates:"), d.TotalCandidates, OK("Open jobs:"), d.OpenJobs)

	b.WriteString(NewBold("#7D56F4").Render("Candidates by status"))
	b.WriteString("\n")
	b.WriteString(Counts(d.Candidates, stringsOf(models.CandidateStatuses)))
	b.WriteString("\n")

	b.WriteString(NewBold("#7D56F4").Render("Applications by stage"))
	b.WriteString("\n")
	b.WriteString(Counts(d.Applications, stringsOf(models.Stages)))
	b.WriteString("\n")

	b.WriteString(NewBold("#7D56F4").Render("Upcoming interviews"))
	b.WriteString("\n")
	if len(d.UpcomingInterviews) == 0 {
		b.WriteString(Muted("  none scheduled"))
		b.WriteString("\n")
	} else {
		b.WriteString(InterviewTable(d.UpcomingInterviews))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(NewBold("#7D56F4").Render("Recent email batches"))
	b.WriteString("\n")
	if len(d.RecentBatches) == 0 {
		b.WriteString(Muted("  none sent"))
		b.WriteString("\n")
	}
	for _, batch := range d.RecentBatches {
		b.WriteString("  ")
		b.WriteString(BatchSummary(batch))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(Muted("Generated " + d.GeneratedAt.Local().Format(time.RFC1123)))
	b.WriteString("\n")
	return b.String()
}

// Progress renders a bulk-operation progress update as a single line.
func Progress(u tasks.ProgressUpdate) string {
	switch {
	case strings.Contains(u.Message, "✗"):
		return Err(u.Message)
	case strings.Contains(u.Message, "✓"):
		return OK(u.Message)
	case u.Phase == tasks.Finalize:
		return Title(u.Message)
	default:
		return Muted(u.Message)
	}
}
