package models

import "time"

// Selection is a student's pending, unpaid intent to enroll in a class.
type Selection struct {
	ID              string    `db:"id" json:"_id"`
	Email           string    `db:"email" json:"email"`
	ClassID         string    `db:"class_id" json:"class_id"`
	ClassName       string    `db:"class_name" json:"name"`
	Image           string    `db:"image" json:"image"`
	Price           float64   `db:"price" json:"price"`
	InstructorName  string    `db:"instructor_name" json:"instructor_name"`
	InstructorEmail string    `db:"instructor_email" json:"instructor_email"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
