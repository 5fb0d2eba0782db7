package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/filisonic/easyhr/internal/models"
	"github.com/filisonic/easyhr/internal/shared"
)

const candidateColumns = `id, sequence, name, email, phone, position, experience_years, skills, resume_url,
	linkedin_url, location, notes, source, status, ai_score, ai_summary, created_at, updated_at, deleted_at`

// CandidateRepository implements [models.Repository] for [models.Candidate] persistence.
type CandidateRepository struct {
	db *sql.DB
}

// NewCandidateRepository creates a new [CandidateRepository] with the given database connection
func NewCandidateRepository(db *sql.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

// Create inserts a new candidate with generated ID and sequence
func (r *CandidateRepository) Create(ctx context.Context, c *models.Candidate) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, r.db, "candidates")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	c.ID = shared.GenerateID()
	c.Sequence = sequence
	c.Stamp(now())

	query := `INSERT INTO candidates (` + candidateColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		c.ID, c.Sequence, c.Name, c.Email, c.Phone, c.Position, c.ExperienceYears, c.SkillsString(), c.ResumeURL,
		c.LinkedInURL, c.Location, c.Notes, c.Source, string(c.Status), nullInt(c.AIScore), nullString(c.AISummary),
		c.CreatedAt, c.UpdatedAt, nil,
	)
	if err != nil {
		return wrapWriteErr(err, "insert", "candidate")
	}

	return nil
}

// Get retrieves a candidate by ID, excluding soft-deleted rows
func (r *CandidateRepository) Get(ctx context.Context, id string) (*models.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE id = ? AND deleted_at IS NULL`
	c, err := r.scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapNotFound(err, "candidate", id)
	}
	return c, nil
}

// GetByEmail retrieves a live candidate by email address
func (r *CandidateRepository) GetByEmail(ctx context.Context, email string) (*models.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE email = ? AND deleted_at IS NULL`
	c, err := r.scan(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, wrapNotFound(err, "candidate", email)
	}
	return c, nil
}

// Update modifies an existing candidate
func (r *CandidateRepository) Update(ctx context.Context, c *models.Candidate) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	c.Stamp(now())

	query := `
		UPDATE candidates
		SET name = ?, email = ?, phone = ?, position = ?, experience_years = ?, skills = ?, resume_url = ?,
			linkedin_url = ?, location = ?, notes = ?, source = ?, status = ?, ai_score = ?, ai_summary = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		c.Name, c.Email, c.Phone, c.Position, c.ExperienceYears, c.SkillsString(), c.ResumeURL,
		c.LinkedInURL, c.Location, c.Notes, c.Source, string(c.Status), nullInt(c.AIScore), nullString(c.AISummary),
		c.UpdatedAt, c.ID,
	)
	if err != nil {
		return wrapWriteErr(err, "update", "candidate")
	}

	return expectOneRow(result, "candidate", c.ID)
}

// Delete soft-deletes a candidate by ID along with its live applications, cancelling their scheduled interviews.
func (r *CandidateRepository) Delete(ctx context.Context, id string) error {
	return softDeleteCascade(ctx, r.db, "candidates", "candidate", "candidate_id", id)
}

// List retrieves live candidates matching criteria.
//
// Supported keys: "status", "position", "source", "search" (name, email or skills substring), "limit" (int).
func (r *CandidateRepository) List(ctx context.Context, values map[string]any) ([]*models.Candidate, error) {
	var c criteria
	c.eq(values, "status", "status")
	c.eq(values, "position", "position")
	c.eq(values, "source", "source")
	c.like(values, "search", "name", "email", "skills")

	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE deleted_at IS NULL` + c.where() +
		` ORDER BY sequence DESC` + limitClause(values)

	rows, err := r.db.QueryContext(ctx, query, c.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	var candidates []*models.Candidate
	for rows.Next() {
		cand, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, cand)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return candidates, nil
}

func (r *CandidateRepository) scan(row scanner) (*models.Candidate, error) {
	var (
		c         models.Candidate
		skills    string
		status    string
		aiScore   sql.NullInt64
		aiSummary sql.NullString
		deletedAt sql.NullTime
	)

	err := row.Scan(
		&c.ID, &c.Sequence, &c.Name, &c.Email, &c.Phone, &c.Position, &c.ExperienceYears, &skills, &c.ResumeURL,
		&c.LinkedInURL, &c.Location, &c.Notes, &c.Source, &status, &aiScore, &aiSummary,
		&c.CreatedAt, &c.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Skills = shared.SplitList(skills)
	c.Status = models.CandidateStatus(status)
	c.AIScore = intPtr(aiScore)
	c.AISummary = aiSummary.String
	c.DeletedAt = timePtr(deletedAt)

	return &c, nil
}
