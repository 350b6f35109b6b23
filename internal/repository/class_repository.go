package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/language-school-api/internal/models"
)

const classColumns = `id, name, image, instructor_name, instructor_email, seats, enrolled, price, status, feedback, created_at, updated_at`

// ClassRepository handles persistence of the class catalog.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs the repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns classes matching the filter. A positive limit returns the most enrolled classes first.
func (r *ClassRepository) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, error) {
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.InstructorEmail != "" {
		conditions = append(conditions, fmt.Sprintf("instructor_email = $%d", len(args)+1))
		args = append(args, filter.InstructorEmail)
	}

	query := `SELECT ` + classColumns + ` FROM classes`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	if filter.Limit > 0 {
		query += fmt.Sprintf(" ORDER BY enrolled DESC LIMIT %d", filter.Limit)
	}

	classes := make([]models.Class, 0)
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// FindByID returns a class by its ID.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	query := `SELECT ` + classColumns + ` FROM classes WHERE id = $1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find class: %w", err)
	}
	return &class, nil
}

// Create persists a new class.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	class.CreatedAt = now
	class.UpdatedAt = now
	if class.Status == "" {
		class.Status = models.ClassStatusPending
	}

	const query = `INSERT INTO classes (id, name, image, instructor_name, instructor_email, seats, enrolled, price, status, feedback, created_at, updated_at)
VALUES (:id, :name, :image, :instructor_name, :instructor_email, :seats, :enrolled, :price, :status, :feedback, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// Update overwrites the editable fields of a class.
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) (*models.UpdateResult, error) {
	class.UpdatedAt = time.Now().UTC()
	const query = `UPDATE classes SET name = :name, image = :image, seats = :seats, price = :price, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, class)
	if err != nil {
		return nil, fmt.Errorf("update class: %w", err)
	}
	return updateResult(res, "update class")
}

// UpdateStatus sets the review status of a class.
func (r *ClassRepository) UpdateStatus(ctx context.Context, id string, status models.ClassStatus) (*models.UpdateResult, error) {
	const query = `UPDATE classes SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("update class status: %w", err)
	}
	return updateResult(res, "update class status")
}

// UpdateFeedback stores admin feedback for a class.
func (r *ClassRepository) UpdateFeedback(ctx context.Context, id, feedback string) (*models.UpdateResult, error) {
	const query = `UPDATE classes SET feedback = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, feedback, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("update class feedback: %w", err)
	}
	return updateResult(res, "update class feedback")
}

// Delete removes a class by id.
func (r *ClassRepository) Delete(ctx context.Context, id string) (*models.DeleteResult, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("delete class: %w", err)
	}
	return deleteResult(res, "delete class")
}

func updateResult(res sql.Result, op string) (*models.UpdateResult, error) {
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%s rows: %w", op, err)
	}
	return &models.UpdateResult{Acknowledged: true, MatchedCount: affected, ModifiedCount: affected}, nil
}

func deleteResult(res sql.Result, op string) (*models.DeleteResult, error) {
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%s rows: %w", op, err)
	}
	return &models.DeleteResult{Acknowledged: true, DeletedCount: affected}, nil
}
