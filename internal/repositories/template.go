package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/filisonic/easyhr/internal/models"
	"github.com/filisonic/easyhr/internal/shared"
)

const templateColumns = `id, sequence, name, subject, body, category, created_at, updated_at, deleted_at`

// EmailTemplateRepository persists [models.EmailTemplate] rows.
type EmailTemplateRepository struct {
	db *sql.DB
}

// NewEmailTemplateRepository creates a new EmailTemplateRepository with the given database connection
func NewEmailTemplateRepository(db *sql.DB) *EmailTemplateRepository {
	return &EmailTemplateRepository{db: db}
}

// Create inserts a new template. Names are unique among live templates.
func (r *EmailTemplateRepository) Create(ctx context.Context, t *models.EmailTemplate) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, r.db, "email_templates")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	t.ID = shared.GenerateID()
	t.Sequence = sequence
	t.Stamp(now())

	query := `INSERT INTO email_templates (` + templateColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		t.ID, t.Sequence, t.Name, t.Subject, t.Body, string(t.Category), t.CreatedAt, t.UpdatedAt, nil,
	)
	if err != nil {
		return wrapWriteErr(err, "insert", "email template")
	}
	return nil
}

// Get retrieves a template by ID
func (r *EmailTemplateRepository) Get(ctx context.Context, id string) (*models.EmailTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM email_templates WHERE id = ? AND deleted_at IS NULL`
	t, err := r.scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapNotFound(err, "email template", id)
	}
	return t, nil
}

// GetByName retrieves a live template by its unique name
func (r *EmailTemplateRepository) GetByName(ctx context.Context, name string) (*models.EmailTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM email_templates WHERE name = ? AND deleted_at IS NULL`
	t, err := r.scan(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		return nil, wrapNotFound(err, "email template", name)
	}
	return t, nil
}

// Update modifies an existing template
func (r *EmailTemplateRepository) Update(ctx context.Context, t *models.EmailTemplate) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	t.Stamp(now())

	query := `
		UPDATE email_templates
		SET name = ?, subject = ?, body = ?, category = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, t.Name, t.Subject, t.Body, string(t.Category), t.UpdatedAt, t.ID)
	if err != nil {
		return wrapWriteErr(err, "update", "email template")
	}
	return expectOneRow(result, "email template", t.ID)
}

// Delete soft-deletes a template by ID
func (r *EmailTemplateRepository) Delete(ctx context.Context, id string) error {
	return softDelete(ctx, r.db, "email_templates", "email template", id)
}

// List retrieves live templates by name. Supported keys: "category", "limit".
func (r *EmailTemplateRepository) List(ctx context.Context, values map[string]any) ([]*models.EmailTemplate, error) {
	var c criteria
	c.eq(values, "category", "category")

	query := `SELECT ` + templateColumns + ` FROM email_templates WHERE deleted_at IS NULL` + c.where() +
		` ORDER BY name ASC` + limitClause(values)

	rows, err := r.db.QueryContext(ctx, query, c.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query email templates: %w", err)
	}
	defer rows.Close()

	var templates []*models.EmailTemplate
	for rows.Next() {
		t, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan email template: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return templates, nil
}

func (r *EmailTemplateRepository) scan(row scanner) (*models.EmailTemplate, error) {
	var (
		t         models.EmailTemplate
		category  string
		deletedAt sql.NullTime
	)
	err := row.Scan(&t.ID, &t.Sequence, &t.Name, &t.Subject, &t.Body, &category, &t.CreatedAt, &t.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	t.Category = models.TemplateCategory(category)
	t.DeletedAt = timePtr(deletedAt)
	return &t, nil
}
