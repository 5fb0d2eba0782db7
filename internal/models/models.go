// package models defines the data model for the recruiting service
package models

import (
	"context"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/filisonic/easyhr/internal/shared"
)

// Model defines the base interface for all persistent models.
type Model interface {
	Meta() *Base     // Meta returns the identity and timestamp fields
	Validate() error // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(ctx context.Context, model T) error                      // Create inserts a new model into the database
	Get(ctx context.Context, id string) (T, error)                  // Get retrieves a model by its ID
	Update(ctx context.Context, model T) error                      // Update modifies an existing model in the database
	Delete(ctx context.Context, id string) error                    // Delete soft-deletes a model by its ID
	List(ctx context.Context, criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Base holds the columns every table shares.
type Base struct {
	ID        string     `json:"id"`
	Sequence  int        `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Meta implements [Model].
func (b *Base) Meta() *Base { return b }

// Stamp sets CreatedAt (when zero) and UpdatedAt to now.
func (b *Base) Stamp(now time.Time) {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

// Deleted reports whether the row has been soft-deleted.
func (b *Base) Deleted() bool { return b.DeletedAt != nil }

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", shared.ErrInvalidInput, field)
	}
	return nil
}

func oneOf[S ~string](field string, value S, allowed []S) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return fmt.Errorf("%w: %s %q", shared.ErrInvalidStatus, field, value)
}

func validEmail(value string) error {
	if err := required("email", value); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(value); err != nil {
		return fmt.Errorf("%w: email %q is not a valid address", shared.ErrInvalidInput, value)
	}
	return nil
}

func validScore(field string, score *int) error {
	if score != nil && (*score < 0 || *score > 100) {
		return fmt.Errorf("%w: %s must be between 0 and 100, got %d", shared.ErrInvalidInput, field, *score)
	}
	return nil
}
