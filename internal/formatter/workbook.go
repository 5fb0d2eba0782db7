package formatter

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/filisonic/easyhr/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet    = "Summary"
	CandidatesSheet = "Candidates"
	JobsSheet       = "Jobs"
	PipelineSheet   = "Pipeline"
)

// PipelineReport is the data behind a pipeline workbook.
type PipelineReport struct {
	CompanyName     string
	GeneratedAt     time.Time
	Candidates      []*models.Candidate
	Jobs            []*models.Job
	Applications    []*models.Application
	CandidateCounts map[string]int
	JobCounts       map[string]int
	StageCounts     map[string]int
}

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

// score band fills: excellent, good, fair, poor
var bandFills = []string{"C6EFCE", "FFEB9C", "FFC7CE", "FF9999"}

type workbookStyles struct {
	title  int
	header int
	label  int
	bands  []int
	plain  int
}

func newWorkbookStyles(f *excelize.File) (*workbookStyles, error) {
	s := &workbookStyles{}
	var err error

	if s.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	}); err != nil {
		return nil, err
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	}); err != nil {
		return nil, err
	}
	if s.label, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return nil, err
	}
	if s.plain, err = f.NewStyle(&excelize.Style{Border: thinBorder}); err != nil {
		return nil, err
	}
	for _, color := range bandFills {
		id, err := f.NewStyle(&excelize.Style{
			Fill:   excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Border: thinBorder,
		})
		if err != nil {
			return nil, err
		}
		s.bands = append(s.bands, id)
	}
	return s, nil
}

// rowStyle picks the fill for a score; unscored rows get the plain bordered style.
func (s *workbookStyles) rowStyle(score *int) int {
	if score == nil {
		return s.plain
	}
	switch {
	case *score >= 90:
		return s.bands[0]
	case *score >= 70:
		return s.bands[1]
	case *score >= 50:
		return s.bands[2]
	default:
		return s.bands[3]
	}
}

// WritePipelineWorkbook renders report as an xlsx workbook with Summary, Candidates, Jobs and Pipeline sheets.
func WritePipelineWorkbook(w io.Writer, report *PipelineReport) error {
	f, err := buildPipelineWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SavePipelineWorkbook writes the workbook to path, appending .xlsx when missing.
func SavePipelineWorkbook(path string, report *PipelineReport) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	f, err := buildPipelineWorkbook(report)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}
	return path, nil
}

func buildPipelineWorkbook(report *PipelineReport) (*excelize.File, error) {
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = time.Now()
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{CandidatesSheet, JobsSheet, PipelineSheet} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	styles, err := newWorkbookStyles(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create styles: %w", err)
	}

	builders := []struct {
		name  string
		build func(*excelize.File, *workbookStyles, *PipelineReport) error
	}{
		{SummarySheet, summarySheet},
		{CandidatesSheet, candidatesSheet},
		{JobsSheet, jobsSheet},
		{PipelineSheet, pipelineSheet},
	}
	for _, b := range builders {
		if err := b.build(f, styles, report); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create %s sheet: %w", strings.ToLower(b.name), err)
		}
	}
	return f, nil
}

func summarySheet(f *excelize.File, s *workbookStyles, r *PipelineReport) error {
	sheet := SummarySheet
	f.SetColWidth(sheet, "A", "A", 28)
	f.SetColWidth(sheet, "B", "B", 40)

	title := "Recruiting Pipeline"
	if r.CompanyName != "" {
		title = r.CompanyName + " Recruiting Pipeline"
	}

	row := 1
	f.SetCellValue(sheet, cell("A", row), title)
	f.SetCellStyle(sheet, cell("A", row), cell("B", row), s.title)
	f.MergeCell(sheet, cell("A", row), cell("B", row))
	row += 2

	label := func(name string, value any) {
		f.SetCellValue(sheet, cell("A", row), name)
		f.SetCellStyle(sheet, cell("A", row), cell("A", row), s.label)
		f.SetCellValue(sheet, cell("B", row), value)
		row++
	}

	label("Generated:", r.GeneratedAt.Format("2006-01-02 15:04:05"))
	label("Candidates:", len(r.Candidates))
	label("Jobs:", len(r.Jobs))
	label("Applications:", len(r.Applications))

	scored, total := 0, 0
	for _, c := range r.Candidates {
		if c.AIScore != nil {
			scored++
			total += *c.AIScore
		}
	}
	if scored > 0 {
		label("Average AI Score:", fmt.Sprintf("%.2f", float64(total)/float64(scored)))
	}
	row++

	for _, section := range []struct {
		title  string
		counts map[string]int
	}{
		{"Candidates by status", r.CandidateCounts},
		{"Jobs by status", r.JobCounts},
		{"Applications by stage", r.StageCounts},
	} {
		if len(section.counts) == 0 {
			continue
		}
		f.SetCellValue(sheet, cell("A", row), section.title)
		f.SetCellStyle(sheet, cell("A", row), cell("B", row), s.title)
		f.MergeCell(sheet, cell("A", row), cell("B", row))
		row++
		for _, key := range sortedKeys(section.counts) {
			f.SetCellValue(sheet, cell("A", row), key)
			f.SetCellValue(sheet, cell("B", row), section.counts[key])
			row++
		}
		row++
	}
	return nil
}

func candidatesSheet(f *excelize.File, s *workbookStyles, r *PipelineReport) error {
	sheet := CandidatesSheet
	widths := []float64{38, 25, 30, 22, 12, 40, 14, 10}
	headers := []string{"ID", "Name", "Email", "Position", "Experience", "Skills", "Status", "AI Score"}
	if err := writeHeader(f, sheet, s, headers, widths); err != nil {
		return err
	}

	for i, c := range r.Candidates {
		row := i + 2
		values := []any{c.ID, c.Name, c.Email, c.Position, c.ExperienceYears, strings.Join(c.Skills, ", "), string(c.Status), ScoreString(c.AIScore)}
		if c.AIScore != nil {
			values[7] = *c.AIScore
		}
		if err := f.SetSheetRow(sheet, cell("A", row), &values); err != nil {
			return err
		}
		f.SetCellStyle(sheet, cell("A", row), cell("H", row), s.rowStyle(c.AIScore))
	}

	finishTable(f, sheet, "H", len(r.Candidates))
	return nil
}

func jobsSheet(f *excelize.File, s *workbookStyles, r *PipelineReport) error {
	sheet := JobsSheet
	widths := []float64{38, 30, 20, 20, 14, 12, 12}
	headers := []string{"ID", "Title", "Department", "Location", "Type", "Status", "Applicants"}
	if err := writeHeader(f, sheet, s, headers, widths); err != nil {
		return err
	}

	applicants := make(map[string]int)
	for _, a := range r.Applications {
		applicants[a.JobID]++
	}

	for i, j := range r.Jobs {
		row := i + 2
		values := []any{j.ID, j.Title, j.Department, j.Location, string(j.EmploymentType), string(j.Status), applicants[j.ID]}
		if err := f.SetSheetRow(sheet, cell("A", row), &values); err != nil {
			return err
		}
		f.SetCellStyle(sheet, cell("A", row), cell("G", row), s.plain)
	}

	finishTable(f, sheet, "G", len(r.Jobs))
	return nil
}

func pipelineSheet(f *excelize.File, s *workbookStyles, r *PipelineReport) error {
	sheet := PipelineSheet
	widths := []float64{25, 30, 12, 12, 40}
	headers := []string{"Candidate", "Job", "Stage", "Match", "Notes"}
	if err := writeHeader(f, sheet, s, headers, widths); err != nil {
		return err
	}

	names := make(map[string]string, len(r.Candidates))
	for _, c := range r.Candidates {
		names[c.ID] = c.Name
	}
	titles := make(map[string]string, len(r.Jobs))
	for _, j := range r.Jobs {
		titles[j.ID] = j.Title
	}

	for i, a := range r.Applications {
		row := i + 2
		values := []any{orID(names[a.CandidateID], a.CandidateID), orID(titles[a.JobID], a.JobID), string(a.Stage), ScoreString(a.MatchScore), a.Notes}
		if a.MatchScore != nil {
			values[3] = *a.MatchScore
		}
		if err := f.SetSheetRow(sheet, cell("A", row), &values); err != nil {
			return err
		}
		f.SetCellStyle(sheet, cell("A", row), cell("E", row), s.rowStyle(a.MatchScore))
	}

	finishTable(f, sheet, "E", len(r.Applications))
	return nil
}

func writeHeader(f *excelize.File, sheet string, s *workbookStyles, headers []string, widths []float64) error {
	for i, h := range headers {
		col := string(rune('A' + i))
		f.SetColWidth(sheet, col, col, widths[i])
		if err := f.SetCellValue(sheet, cell(col, 1), h); err != nil {
			return err
		}
	}
	last := string(rune('A' + len(headers) - 1))
	return f.SetCellStyle(sheet, "A1", cell(last, 1), s.header)
}

// finishTable adds an auto-filter over the data and freezes the header row.
func finishTable(f *excelize.File, sheet, lastCol string, rows int) {
	if rows > 0 {
		f.AutoFilter(sheet, fmt.Sprintf("A1:%s%d", lastCol, rows+1), []excelize.AutoFilterOptions{})
	}
	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func orID(name, id string) string {
	if name != "" {
		return name
	}
	return id
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
