package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/filisonic/easyhr/internal/models"
	"github.com/filisonic/easyhr/internal/shared"
)

const batchColumns = `id, sequence, template_id, status, total, sent, failed, error_message, started_at,
	completed_at, created_at, updated_at, deleted_at`

// EmailBatchRepository persists [models.EmailBatch] rows.
type EmailBatchRepository struct {
	db *sql.DB
}

// NewEmailBatchRepository creates a new EmailBatchRepository with the given database connection
func NewEmailBatchRepository(db *sql.DB) *EmailBatchRepository {
	return &EmailBatchRepository{db: db}
}

// Create inserts a new batch
func (r *EmailBatchRepository) Create(ctx context.Context, b *models.EmailBatch) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, r.db, "email_batches")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	b.ID = shared.GenerateID()
	b.Sequence = sequence
	b.Stamp(now())

	query := `INSERT INTO email_batches (` + batchColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		b.ID, b.Sequence, b.TemplateID, string(b.Status), b.Total, b.Sent, b.Failed, nullString(b.ErrorMessage),
		nullTime(b.StartedAt), nullTime(b.CompletedAt), b.CreatedAt, b.UpdatedAt, nil,
	)
	if err != nil {
		return wrapWriteErr(err, "insert", "email batch")
	}
	return nil
}

// Get retrieves a batch by ID
func (r *EmailBatchRepository) Get(ctx context.Context, id string) (*models.EmailBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM email_batches WHERE id = ? AND deleted_at IS NULL`
	b, err := r.scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapNotFound(err, "email batch", id)
	}
	return b, nil
}

// Update writes status and counters of a batch
func (r *EmailBatchRepository) Update(ctx context.Context, b *models.EmailBatch) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	b.Stamp(now())

	query := `
		UPDATE email_batches
		SET status = ?, total = ?, sent = ?, failed = ?, error_message = ?, started_at = ?,
			completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query,
		string(b.Status), b.Total, b.Sent, b.Failed, nullString(b.ErrorMessage), nullTime(b.StartedAt),
		nullTime(b.CompletedAt), b.UpdatedAt, b.ID,
	)
	if err != nil {
		return wrapWriteErr(err, "update", "email batch")
	}
	return expectOneRow(result, "email batch", b.ID)
}

// Delete soft-deletes a batch by ID
func (r *EmailBatchRepository) Delete(ctx context.Context, id string) error {
	return softDelete(ctx, r.db, "email_batches", "email batch", id)
}

// List retrieves batches newest first. Supported keys: "status", "template_id", "limit".
func (r *EmailBatchRepository) List(ctx context.Context, values map[string]any) ([]*models.EmailBatch, error) {
	var c criteria
	c.eq(values, "status", "status")
	c.eq(values, "template_id", "template_id")

	query := `SELECT ` + batchColumns + ` FROM email_batches WHERE deleted_at IS NULL` + c.where() +
		` ORDER BY sequence DESC` + limitClause(values)

	rows, err := r.db.QueryContext(ctx, query, c.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query email batches: %w", err)
	}
	defer rows.Close()

	var batches []*models.EmailBatch
	for rows.Next() {
		b, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan email batch: %w", err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return batches, nil
}

func (r *EmailBatchRepository) scan(row scanner) (*models.EmailBatch, error) {
	var (
		b           models.EmailBatch
		status      string
		errMessage  sql.NullString
		startedAt   sql.NullTime
		completedAt sql.NullTime
		deletedAt   sql.NullTime
	)
	err := row.Scan(&b.ID, &b.Sequence, &b.TemplateID, &status, &b.Total, &b.Sent, &b.Failed, &errMessage,
		&startedAt, &completedAt, &b.CreatedAt, &b.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	b.Status = models.BatchStatus(status)
	b.ErrorMessage = errMessage.String
	b.StartedAt = timePtr(startedAt)
	b.CompletedAt = timePtr(completedAt)
	b.DeletedAt = timePtr(deletedAt)
	return &b, nil
}
