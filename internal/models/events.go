package models

import "time"

// Notification topics
const (
	EventEnrollmentConfirmed = "enrollment.confirmed"
	EventCertificateIssued   = "certificate.issued"
)

// EnrollmentConfirmedData is published once, when an enrollment row is first created
type EnrollmentConfirmedData struct {
	EnrollmentID     uint      `json:"enrollment_id"`
	UserID           string    `json:"user_id"`
	UserEmail        string    `json:"user_email"`
	UserName         string    `json:"user_name"`
	CourseID         uint      `json:"course_id"`
	CourseTitle      string    `json:"course_title"`
	PaymentReference *string   `json:"payment_reference,omitempty"`
	AmountPaid       string    `json:"amount_paid,omitempty"`
	EnrolledAt       time.Time `json:"enrolled_at"`
}

// CertificateIssuedData is published once per enrollment, after the mint commits
type CertificateIssuedData struct {
	EnrollmentID   uint      `json:"enrollment_id"`
	CertificateID  string    `json:"certificate_id"`
	UserID         string    `json:"user_id"`
	UserEmail      string    `json:"user_email"`
	UserName       string    `json:"user_name"`
	CourseID       uint      `json:"course_id"`
	CourseTitle    string    `json:"course_title"`
	CompletionDate time.Time `json:"completion_date"`
	Score          *float64  `json:"score,omitempty"`
}
