package models

import "time"

// Enrollment is the permanent record of a paid class selection.
type Enrollment struct {
	ID              string    `db:"id" json:"_id"`
	Email           string    `db:"email" json:"email"`
	InstructorEmail string    `db:"instructor_email" json:"instructor_email"`
	ClassID         string    `db:"class_id" json:"class_id"`
	ClassName       string    `db:"class_name" json:"class_name"`
	SelectionID     string    `db:"selection_id" json:"selection_id"`
	PaymentID       string    `db:"payment_id" json:"payment_id"`
	EnrolledAt      time.Time `db:"enrolled_at" json:"enrolled_at"`
}

// PaymentHistory is the audit record written for every completed payment.
type PaymentHistory struct {
	ID            string    `db:"id" json:"_id"`
	Email         string    `db:"email" json:"email"`
	SelectionID   string    `db:"selection_id" json:"selection_id"`
	TransactionID string    `db:"transaction_id" json:"transaction_id"`
	Amount        float64   `db:"amount" json:"amount"`
	Currency      string    `db:"currency" json:"currency"`
	ClassID       string    `db:"class_id" json:"class_id"`
	ClassName     string    `db:"class_name" json:"class_name"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// ClassSeatUpdate carries the seat and enrollment counters submitted with a payment.
type ClassSeatUpdate struct {
	ClassID  string `json:"class_id"`
	Seats    int    `json:"seats"`
	Enrolled int    `json:"enrolled"`
}

// EnrollmentCommit bundles every write of a single enrollment.
type EnrollmentCommit struct {
	SelectionID string
	Payment     PaymentHistory
	Class       ClassSeatUpdate
	Enrollment  Enrollment
}
