package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/language-school-api/internal/models"
)

const selectionColumns = `id, email, class_id, class_name, image, price, instructor_name, instructor_email, created_at`

// SelectionRepository stores pending class selections.
type SelectionRepository struct {
	db *sqlx.DB
}

// NewSelectionRepository constructs the repository.
func NewSelectionRepository(db *sqlx.DB) *SelectionRepository {
	return &SelectionRepository{db: db}
}

// Create persists a new selection.
func (r *SelectionRepository) Create(ctx context.Context, selection *models.Selection) error {
	if selection.ID == "" {
		selection.ID = uuid.NewString()
	}
	if selection.CreatedAt.IsZero() {
		selection.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO selected_classes (id, email, class_id, class_name, image, price, instructor_name, instructor_email, created_at)
VALUES (:id, :email, :class_id, :class_name, :image, :price, :instructor_name, :instructor_email, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, selection); err != nil {
		return fmt.Errorf("create selection: %w", err)
	}
	return nil
}

// ListByEmail returns the pending selections of a student.
func (r *SelectionRepository) ListByEmail(ctx context.Context, email string) ([]models.Selection, error) {
	query := `SELECT ` + selectionColumns + ` FROM selected_classes WHERE email = $1 ORDER BY created_at`
	selections := make([]models.Selection, 0)
	if err := r.db.SelectContext(ctx, &selections, query, email); err != nil {
		return nil, fmt.Errorf("list selections: %w", err)
	}
	return selections, nil
}

// Delete removes a selection by id.
func (r *SelectionRepository) Delete(ctx context.Context, id string) (*models.DeleteResult, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM selected_classes WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("delete selection: %w", err)
	}
	return deleteResult(res, "delete selection")
}
