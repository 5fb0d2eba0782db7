package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/filisonic/easyhr/internal/models"
	"github.com/filisonic/easyhr/internal/shared"
	"github.com/mattn/go-sqlite3"
)

// scanner is satisfied by both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

// NextSequence atomically increments and returns the next sequence number for the given table.
//
// Sequence numbers provide human-readable ordering for entities (e.g., candidate #42, job #15).
func NextSequence(ctx context.Context, db *sql.DB, table string) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequenceTable := table + "_sequence"

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1", sequenceTable)); err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	var sequence int
	if err := tx.QueryRowContext(ctx, fmt.Sprintf("SELECT value FROM %s WHERE id = 1", sequenceTable)).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to get sequence value: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sequence transaction: %w", err)
	}

	return sequence, nil
}

// StatusCount is one bucket of a GROUP BY over a status column.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// statusColumns whitelists the columns [CountByStatus] may group by.
var statusColumns = map[string]string{
	"candidates":             "status",
	"jobs":                   "status",
	"recruitment_candidates": "stage",
	"email_batches":          "status",
	"interview_schedules":    "status",
}

// CountByStatus counts live rows of table grouped by its status (or stage) column.
func CountByStatus(ctx context.Context, db *sql.DB, table string) (map[string]int, error) {
	column, ok := statusColumns[table]
	if !ok {
		return nil, fmt.Errorf("%w: no status column known for %s", shared.ErrInvalidInput, table)
	}

	query := fmt.Sprintf("SELECT %s, COUNT(*) FROM %s WHERE deleted_at IS NULL GROUP BY %s", column, table, column)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count %s: %w", table, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return counts, nil
}

// softDelete stamps deleted_at on a live row of table.
func softDelete(ctx context.Context, db *sql.DB, table, entity, id string) error {
	query := fmt.Sprintf("UPDATE %s SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL", table)

	result, err := db.ExecContext(ctx, query, now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", entity, err)
	}
	return expectOneRow(result, entity, id)
}

// softDeleteCascade soft-deletes a live candidate or job row, the live applications whose
// column references it, and cancels the scheduled interviews of those applications, in one transaction.
func softDeleteCascade(ctx context.Context, db *sql.DB, table, entity, column, id string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stamp := now()
	result, err := tx.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL", table), stamp, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", entity, err)
	}
	if err := expectOneRow(result, entity, id); err != nil {
		return err
	}

	cancelInterviews := fmt.Sprintf(`UPDATE interview_schedules SET status = ?, updated_at = ?
		WHERE deleted_at IS NULL AND status = ? AND application_id IN (
			SELECT id FROM recruitment_candidates WHERE %s = ? AND deleted_at IS NULL)`, column)
	if _, err := tx.ExecContext(ctx, cancelInterviews,
		string(models.InterviewCancelled), stamp, string(models.InterviewScheduled), id); err != nil {
		return fmt.Errorf("failed to cancel interviews of %s: %w", entity, err)
	}

	deleteApplications := fmt.Sprintf("UPDATE recruitment_candidates SET deleted_at = ? WHERE %s = ? AND deleted_at IS NULL", column)
	if _, err := tx.ExecContext(ctx, deleteApplications, stamp, id); err != nil {
		return fmt.Errorf("failed to delete applications of %s: %w", entity, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s delete: %w", entity, err)
	}
	return nil
}

func expectOneRow(result sql.Result, entity, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s %s not found or already deleted", shared.ErrNotFound, entity, id)
	}
	return nil
}

// wrapWriteErr converts unique constraint violations into [shared.ErrDuplicate].
func wrapWriteErr(err error, action, entity string) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%w: %s", shared.ErrDuplicate, entity)
	}
	return fmt.Errorf("failed to %s %s: %w", action, entity, err)
}

func wrapNotFound(err error, entity, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %s", shared.ErrNotFound, entity, id)
	}
	return fmt.Errorf("failed to scan %s: %w", entity, err)
}

// now returns the current time in UTC so stored timestamps compare lexically.
func now() time.Time {
	return time.Now().UTC()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

// criteria builds an AND-ed WHERE clause from string-valued criteria.
type criteria struct {
	clauses []string
	args    []any
}

func (c *criteria) eq(values map[string]any, key, column string) {
	if v, ok := values[key].(string); ok && v != "" {
		c.clauses = append(c.clauses, column+" = ?")
		c.args = append(c.args, v)
	}
}

func (c *criteria) like(values map[string]any, key string, columns ...string) {
	v, ok := values[key].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return
	}
	pattern := "%" + strings.ToLower(strings.TrimSpace(v)) + "%"
	var ors []string
	for _, col := range columns {
		ors = append(ors, "LOWER("+col+") LIKE ?")
		c.args = append(c.args, pattern)
	}
	c.clauses = append(c.clauses, "("+strings.Join(ors, " OR ")+")")
}

func (c *criteria) add(clause string, args ...any) {
	c.clauses = append(c.clauses, clause)
	c.args = append(c.args, args...)
}

func (c *criteria) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " AND " + strings.Join(c.clauses, " AND ")
}

// limitClause renders "LIMIT n" when criteria["limit"] is a positive int.
func limitClause(values map[string]any) string {
	if n, ok := values["limit"].(int); ok && n > 0 {
		return fmt.Sprintf(" LIMIT %d", n)
	}
	return ""
}
