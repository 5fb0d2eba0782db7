package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/filisonic/easyhr/internal/models"
	"github.com/filisonic/easyhr/internal/shared"
)

const applicationColumns = `id, sequence, candidate_id, job_id, stage, match_score, notes, created_at, updated_at, deleted_at`

// ApplicationRepository persists [models.Application] rows in recruitment_candidates.
type ApplicationRepository struct {
	db *sql.DB
}

// NewApplicationRepository creates a new ApplicationRepository with the given database connection
func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts a new application. A candidate may hold one live application per job.
func (r *ApplicationRepository) Create(ctx context.Context, a *models.Application) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, r.db, "recruitment_candidates")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	a.ID = shared.GenerateID()
	a.Sequence = sequence
	a.Stamp(now())

	query := `INSERT INTO recruitment_candidates (` + applicationColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		a.ID, a.Sequence, a.CandidateID, a.JobID, string(a.Stage), nullInt(a.MatchScore), a.Notes,
		a.CreatedAt, a.UpdatedAt, nil,
	)
	if err != nil {
		return wrapWriteErr(err, "insert", "application")
	}
	return nil
}

// Get retrieves an application by ID
func (r *ApplicationRepository) Get(ctx context.Context, id string) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM recruitment_candidates WHERE id = ? AND deleted_at IS NULL`
	a, err := r.scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapNotFound(err, "application", id)
	}
	return a, nil
}

// Update modifies stage, score and notes of an application
func (r *ApplicationRepository) Update(ctx context.Context, a *models.Application) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	a.Stamp(now())

	query := `
		UPDATE recruitment_candidates
		SET stage = ?, match_score = ?, notes = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, string(a.Stage), nullInt(a.MatchScore), a.Notes, a.UpdatedAt, a.ID)
	if err != nil {
		return wrapWriteErr(err, "update", "application")
	}
	return expectOneRow(result, "application", a.ID)
}

// Delete soft-deletes an application by ID
func (r *ApplicationRepository) Delete(ctx context.Context, id string) error {
	return softDelete(ctx, r.db, "recruitment_candidates", "application", id)
}

// List retrieves live applications. Supported keys: "job_id", "candidate_id", "stage", "limit".
func (r *ApplicationRepository) List(ctx context.Context, values map[string]any) ([]*models.Application, error) {
	var c criteria
	c.eq(values, "job_id", "job_id")
	c.eq(values, "candidate_id", "candidate_id")
	c.eq(values, "stage", "stage")

	query := `SELECT ` + applicationColumns + ` FROM recruitment_candidates WHERE deleted_at IS NULL` + c.where() +
		` ORDER BY sequence ASC` + limitClause(values)

	rows, err := r.db.QueryContext(ctx, query, c.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()

	var apps []*models.Application
	for rows.Next() {
		a, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return apps, nil
}

// ListByJob returns the pipeline for a job in application order.
func (r *ApplicationRepository) ListByJob(ctx context.Context, jobID string) ([]*models.Application, error) {
	return r.List(ctx, map[string]any{"job_id": jobID})
}

// ListByCandidate returns every live application held by a candidate.
func (r *ApplicationRepository) ListByCandidate(ctx context.Context, candidateID string) ([]*models.Application, error) {
	return r.List(ctx, map[string]any{"candidate_id": candidateID})
}

func (r *ApplicationRepository) scan(row scanner) (*models.Application, error) {
	var (
		a          models.Application
		stage      string
		matchScore sql.NullInt64
		deletedAt  sql.NullTime
	)
	err := row.Scan(&a.ID, &a.Sequence, &a.CandidateID, &a.JobID, &stage, &matchScore, &a.Notes,
		&a.CreatedAt, &a.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	a.Stage = models.Stage(stage)
	a.MatchScore = intPtr(matchScore)
	a.DeletedAt = timePtr(deletedAt)
	return &a, nil
}
