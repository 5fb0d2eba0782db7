package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/filisonic/easyhr/internal/models"
	"github.com/filisonic/easyhr/internal/shared"
)

const jobColumns = `id, sequence, title, department, location, employment_type, description, requirements,
	salary_range, status, created_at, updated_at, deleted_at`

// JobRepository implements models.Repository[*models.Job].
type JobRepository struct {
	db *sql.DB
}

// NewJobRepository creates a new JobRepository with the given database connection
func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new job with generated ID and sequence
func (r *JobRepository) Create(ctx context.Context, j *models.Job) error {
	if err := j.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, r.db, "jobs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	j.ID = shared.GenerateID()
	j.Sequence = sequence
	j.Stamp(now())

	query := `INSERT INTO jobs (` + jobColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		j.ID, j.Sequence, j.Title, j.Department, j.Location, string(j.EmploymentType), j.Description, j.Requirements,
		j.SalaryRange, string(j.Status), j.CreatedAt, j.UpdatedAt, nil,
	)
	if err != nil {
		return wrapWriteErr(err, "insert", "job")
	}
	return nil
}

// Get retrieves a job by ID, excluding soft-deleted jobs
func (r *JobRepository) Get(ctx context.Context, id string) (*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = ? AND deleted_at IS NULL`
	j, err := r.scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapNotFound(err, "job", id)
	}
	return j, nil
}

// Update modifies an existing job
func (r *JobRepository) Update(ctx context.Context, j *models.Job) error {
	if err := j.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	j.Stamp(now())

	query := `
		UPDATE jobs
		SET title = ?, department = ?, location = ?, employment_type = ?, description = ?,
			requirements = ?, salary_range = ?, status = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query,
		j.Title, j.Department, j.Location, string(j.EmploymentType), j.Description,
		j.Requirements, j.SalaryRange, string(j.Status), j.UpdatedAt, j.ID,
	)
	if err != nil {
		return wrapWriteErr(err, "update", "job")
	}
	return expectOneRow(result, "job", j.ID)
}

// Delete soft-deletes a job by ID along with its live applications, cancelling their scheduled interviews.
func (r *JobRepository) Delete(ctx context.Context, id string) error {
	return softDeleteCascade(ctx, r.db, "jobs", "job", "job_id", id)
}

// List retrieves live jobs. Supported keys: "status", "department", "employment_type", "search", "limit".
func (r *JobRepository) List(ctx context.Context, values map[string]any) ([]*models.Job, error) {
	var c criteria
	c.eq(values, "status", "status")
	c.eq(values, "department", "department")
	c.eq(values, "employment_type", "employment_type")
	c.like(values, "search", "title", "description")

	query := `SELECT ` + jobColumns + ` FROM jobs WHERE deleted_at IS NULL` + c.where() +
		` ORDER BY sequence DESC` + limitClause(values)

	rows, err := r.db.QueryContext(ctx, query, c.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		j, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return jobs, nil
}

func (r *JobRepository) scan(row scanner) (*models.Job, error) {
	var (
		j              models.Job
		employmentType string
		status         string
		deletedAt      sql.NullTime
	)
	err := row.Scan(
		&j.ID, &j.Sequence, &j.Title, &j.Department, &j.Location, &employmentType, &j.Description, &j.Requirements,
		&j.SalaryRange, &status, &j.CreatedAt, &j.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}
	j.EmploymentType = models.EmploymentType(employmentType)
	j.Status = models.JobStatus(status)
	j.DeletedAt = timePtr(deletedAt)
	return &j, nil
}
