// package formatter renders recruiter-facing output: email placeholders, template packs,
// pipeline workbooks (xlsx) and candidate exports (CSV, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/filisonic/easyhr/internal/models"
	"github.com/filisonic/easyhr/internal/shared"
)

var candidateHeaders = []string{"ID", "Name", "Email", "Phone", "Position", "Experience", "Skills", "Status", "AI Score", "Source"}

// ExportCandidatesCSV converts candidates to CSV with one row per candidate
func ExportCandidatesCSV(candidates []*models.Candidate) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(candidateHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, c := range candidates {
		record := []string{
			c.ID,
			c.Name,
			c.Email,
			c.Phone,
			c.Position,
			strconv.Itoa(c.ExperienceYears),
			strings.Join(c.Skills, "; "),
			string(c.Status),
			ScoreString(c.AIScore),
			c.Source,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteCandidatesCSV writes the CSV export to path, defaulting to candidates.csv.
func WriteCandidatesCSV(candidates []*models.Candidate, path string) (string, error) {
	if path == "" {
		path = "candidates.csv"
	}

	data, err := ExportCandidatesCSV(candidates)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}
	return path, nil
}

// WriteJSON writes v to w as JSON followed by a newline.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	data, err := shared.MarshalJSON(v, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

// ScoreString renders a nullable score, "-" when unscored.
func ScoreString(score *int) string {
	if score == nil {
		return "-"
	}
	return strconv.Itoa(*score)
}
