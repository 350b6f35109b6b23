package models

import "time"

// ClassStatus tracks the admin review state of a class.
type ClassStatus string

const (
	ClassStatusPending  ClassStatus = "pending"
	ClassStatusApproved ClassStatus = "approved"
	ClassStatusDenied   ClassStatus = "denied"
)

// Class is a course offered by an instructor.
type Class struct {
	ID              string      `db:"id" json:"_id"`
	Name            string      `db:"name" json:"name"`
	Image           string      `db:"image" json:"image"`
	InstructorName  string      `db:"instructor_name" json:"instructor_name"`
	InstructorEmail string      `db:"instructor_email" json:"instructor_email"`
	Seats           int         `db:"seats" json:"seats"`
	Enrolled        int         `db:"enrolled" json:"enrolled"`
	Price           float64     `db:"price" json:"price"`
	Status          ClassStatus `db:"status" json:"status"`
	Feedback        string      `db:"feedback" json:"feedback,omitempty"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updated_at"`
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	Status          ClassStatus
	InstructorEmail string
	Limit           int
}
