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

const userColumns = `id, email, name, photo_url, role, students, created_at, updated_at`

// UserRepository provides database access for students, instructors and admins.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// Upsert inserts the user or refreshes the profile fields of the existing record with the same email.
// The stored role and instructor counters are never touched here.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) (*models.UpdateResult, error) {
	now := time.Now().UTC()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	const query = `INSERT INTO users (id, email, name, photo_url, role, students, created_at, updated_at)
VALUES ($1, $2, $3, $4, '', 0, $5, $6)
ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, photo_url = EXCLUDED.photo_url, updated_at = EXCLUDED.updated_at
RETURNING id, (xmax = 0) AS inserted`

	var row struct {
		ID       string `db:"id"`
		Inserted bool   `db:"inserted"`
	}
	if err := r.db.GetContext(ctx, &row, query, user.ID, user.Email, user.Name, user.PhotoURL, user.CreatedAt, user.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	user.ID = row.ID

	if row.Inserted {
		return &models.UpdateResult{Acknowledged: true, UpsertedID: row.ID}, nil
	}
	return &models.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

// Create inserts a brand new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	const query = `INSERT INTO users (id, email, name, photo_url, role, students, created_at, updated_at) VALUES (:id, :email, :name, :photo_url, :role, :students, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// List returns users matching the filter. A positive limit returns the top records by student count;
// otherwise every match is returned in storage order.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	var conditions []string
	var args []interface{}

	if filter.Role != nil {
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, *filter.Role)
	}

	query := `SELECT ` + userColumns + ` FROM users`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	if filter.Limit > 0 {
		query += fmt.Sprintf(" ORDER BY students DESC LIMIT %d", filter.Limit)
	}

	users := make([]models.User, 0)
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateRole sets the role of the user identified by email.
func (r *UserRepository) UpdateRole(ctx context.Context, email string, role models.UserRole) (*models.UpdateResult, error) {
	const query = `UPDATE users SET role = $2, updated_at = $3 WHERE email = $1`
	res, err := r.db.ExecContext(ctx, query, email, role, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("update user role: %w", err)
	}
	return updateResult(res, "update user role")
}
