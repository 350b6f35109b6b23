package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/language-school-api/internal/models"
)

const uniqueViolation = "23505"

const (
	enrollmentColumns = `id, email, instructor_email, class_id, class_name, selection_id, payment_id, enrolled_at`
	paymentColumns    = `id, email, selection_id, transaction_id, amount, currency, class_id, class_name, created_at`
)

// EnrollmentRepository handles enrollments and the payment history they are created from.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListByEmail returns a student's enrollments, newest first.
func (r *EnrollmentRepository) ListByEmail(ctx context.Context, email string) ([]models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrolled_classes WHERE email = $1 ORDER BY enrolled_at DESC`
	enrollments := make([]models.Enrollment, 0)
	if err := r.db.SelectContext(ctx, &enrollments, query, email); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// ListPayments returns a student's payment history, newest first.
func (r *EnrollmentRepository) ListPayments(ctx context.Context, email string) ([]models.PaymentHistory, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_history WHERE email = $1 ORDER BY created_at DESC`
	payments := make([]models.PaymentHistory, 0)
	if err := r.db.SelectContext(ctx, &payments, query, email); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

// Commit moves a selection into a paid enrollment inside one transaction: payment history,
// class counters, enrollment record, instructor student count, and finally the selection removal.
// Nothing is persisted unless every step succeeds. The selection id doubles as idempotency key:
// when the selection is gone but its payment exists the call is a replay and writes nothing.
// The selection must belong to the payer.
func (r *EnrollmentRepository) Commit(ctx context.Context, commit *models.EnrollmentCommit) (result *models.DeleteResult, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin enrollment transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var owner string
	const lockQuery = `SELECT email FROM selected_classes WHERE id = $1 FOR UPDATE`
	lockErr := tx.GetContext(ctx, &owner, lockQuery, commit.SelectionID)
	if lockErr == sql.ErrNoRows {
		var replayed bool
		if replayed, err = paymentExists(ctx, tx, commit.SelectionID); err != nil {
			return nil, err
		}
		if !replayed {
			err = ErrSelectionNotFound
			return nil, err
		}
		_ = tx.Rollback()
		return &models.DeleteResult{Acknowledged: true, DeletedCount: 0, Replayed: true}, nil
	}
	if lockErr != nil {
		err = fmt.Errorf("lock selection: %w", lockErr)
		return nil, err
	}
	if owner != commit.Payment.Email {
		err = ErrSelectionNotOwned
		return nil, err
	}

	now := time.Now().UTC()

	payment := &commit.Payment
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	payment.SelectionID = commit.SelectionID
	payment.CreatedAt = now
	const paymentQuery = `INSERT INTO payment_history (id, email, selection_id, transaction_id, amount, currency, class_id, class_name, created_at)
VALUES (:id, :email, :selection_id, :transaction_id, :amount, :currency, :class_id, :class_name, :created_at)`
	if _, err = tx.NamedExecContext(ctx, paymentQuery, payment); err != nil {
		if isUniqueViolation(err) {
			err = ErrPaymentRecorded
			return nil, err
		}
		return nil, fmt.Errorf("insert payment history: %w", err)
	}

	const classQuery = `UPDATE classes SET seats = $2, enrolled = $3, updated_at = $4 WHERE id = $1`
	res, err := tx.ExecContext(ctx, classQuery, commit.Class.ClassID, commit.Class.Seats, commit.Class.Enrolled, now)
	if err != nil {
		return nil, fmt.Errorf("update class seats: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update class seats rows: %w", err)
	}
	if affected == 0 {
		err = ErrClassNotFound
		return nil, err
	}

	enrollment := &commit.Enrollment
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	enrollment.SelectionID = commit.SelectionID
	enrollment.PaymentID = payment.ID
	enrollment.EnrolledAt = now
	const enrollmentQuery = `INSERT INTO enrolled_classes (id, email, instructor_email, class_id, class_name, selection_id, payment_id, enrolled_at)
VALUES (:id, :email, :instructor_email, :class_id, :class_name, :selection_id, :payment_id, :enrolled_at)`
	if _, err = tx.NamedExecContext(ctx, enrollmentQuery, enrollment); err != nil {
		if isUniqueViolation(err) {
			err = ErrPaymentRecorded
			return nil, err
		}
		return nil, fmt.Errorf("insert enrollment: %w", err)
	}

	const instructorQuery = `UPDATE users SET students = $2, updated_at = $3 WHERE email = $1`
	if _, err = tx.ExecContext(ctx, instructorQuery, enrollment.InstructorEmail, commit.Class.Enrolled, now); err != nil {
		return nil, fmt.Errorf("update instructor students: %w", err)
	}

	res, err = tx.ExecContext(ctx, `DELETE FROM selected_classes WHERE id = $1`, commit.SelectionID)
	if err != nil {
		return nil, fmt.Errorf("delete selection: %w", err)
	}
	result, err = deleteResult(res, "delete selection")
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit enrollment: %w", err)
	}
	return result, nil
}

func paymentExists(ctx context.Context, tx *sqlx.Tx, selectionID string) (bool, error) {
	var exists int
	const query = `SELECT 1 FROM payment_history WHERE selection_id = $1 LIMIT 1`
	if err := tx.GetContext(ctx, &exists, query, selectionID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check payment replay: %w", err)
	}
	return true, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
