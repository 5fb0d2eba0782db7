package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/filisonic/easyhr/internal/models"
	"github.com/filisonic/easyhr/internal/shared"
)

const interviewColumns = `id, sequence, application_id, scheduled_at, duration_minutes, interviewer, location,
	meeting_url, status, calendar_event_id, created_at, updated_at, deleted_at`

// InterviewRepository persists [models.InterviewSchedule] rows.
type InterviewRepository struct {
	db *sql.DB
}

// NewInterviewRepository creates a new InterviewRepository with the given database connection
func NewInterviewRepository(db *sql.DB) *InterviewRepository {
	return &InterviewRepository{db: db}
}

// Create inserts a new interview schedule
func (r *InterviewRepository) Create(ctx context.Context, i *models.InterviewSchedule) error {
	if err := i.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, r.db, "interview_schedules")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	i.ID = shared.GenerateID()
	i.Sequence = sequence
	i.ScheduledAt = i.ScheduledAt.UTC()
	i.Stamp(now())

	query := `INSERT INTO interview_schedules (` + interviewColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		i.ID, i.Sequence, i.ApplicationID, i.ScheduledAt, i.DurationMinutes, i.Interviewer, i.Location,
		i.MeetingURL, string(i.Status), nullString(i.CalendarEventID), i.CreatedAt, i.UpdatedAt, nil,
	)
	if err != nil {
		return wrapWriteErr(err, "insert", "interview")
	}
	return nil
}

// Get retrieves an interview schedule by ID
func (r *InterviewRepository) Get(ctx context.Context, id string) (*models.InterviewSchedule, error) {
	query := `SELECT ` + interviewColumns + ` FROM interview_schedules WHERE id = ? AND deleted_at IS NULL`
	i, err := r.scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapNotFound(err, "interview", id)
	}
	return i, nil
}

// Update modifies an existing interview schedule
func (r *InterviewRepository) Update(ctx context.Context, i *models.InterviewSchedule) error {
	if err := i.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	i.ScheduledAt = i.ScheduledAt.UTC()
	i.Stamp(now())

	query := `
		UPDATE interview_schedules
		SET scheduled_at = ?, duration_minutes = ?, interviewer = ?, location = ?, meeting_url = ?,
			status = ?, calendar_event_id = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query,
		i.ScheduledAt, i.DurationMinutes, i.Interviewer, i.Location, i.MeetingURL,
		string(i.Status), nullString(i.CalendarEventID), i.UpdatedAt, i.ID,
	)
	if err != nil {
		return wrapWriteErr(err, "update", "interview")
	}
	return expectOneRow(result, "interview", i.ID)
}

// Delete soft-deletes an interview schedule by ID
func (r *InterviewRepository) Delete(ctx context.Context, id string) error {
	return softDelete(ctx, r.db, "interview_schedules", "interview", id)
}

// List retrieves interview schedules ordered by start time.
//
// Supported keys: "application_id", "status", "from" and "to" ([time.Time] bounds), "limit".
func (r *InterviewRepository) List(ctx context.Context, values map[string]any) ([]*models.InterviewSchedule, error) {
	var c criteria
	c.eq(values, "application_id", "application_id")
	c.eq(values, "status", "status")
	if from, ok := values["from"].(time.Time); ok && !from.IsZero() {
		c.add("scheduled_at >= ?", from.UTC())
	}
	if to, ok := values["to"].(time.Time); ok && !to.IsZero() {
		c.add("scheduled_at < ?", to.UTC())
	}

	query := `SELECT ` + interviewColumns + ` FROM interview_schedules WHERE deleted_at IS NULL` + c.where() +
		` ORDER BY scheduled_at ASC` + limitClause(values)

	rows, err := r.db.QueryContext(ctx, query, c.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query interviews: %w", err)
	}
	defer rows.Close()

	var interviews []*models.InterviewSchedule
	for rows.Next() {
		i, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interview: %w", err)
		}
		interviews = append(interviews, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return interviews, nil
}

// ListUpcoming returns scheduled interviews starting at or after from, soonest first.
func (r *InterviewRepository) ListUpcoming(ctx context.Context, from time.Time, limit int) ([]*models.InterviewSchedule, error) {
	return r.List(ctx, map[string]any{
		"status": string(models.InterviewScheduled),
		"from":   from,
		"limit":  limit,
	})
}

func (r *InterviewRepository) scan(row scanner) (*models.InterviewSchedule, error) {
	var (
		i         models.InterviewSchedule
		status    string
		eventID   sql.NullString
		deletedAt sql.NullTime
	)
	err := row.Scan(&i.ID, &i.Sequence, &i.ApplicationID, &i.ScheduledAt, &i.DurationMinutes, &i.Interviewer,
		&i.Location, &i.MeetingURL, &status, &eventID, &i.CreatedAt, &i.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	i.Status = models.InterviewStatus(status)
	i.CalendarEventID = eventID.String
	i.DeletedAt = timePtr(deletedAt)
	return &i, nil
}
