package payments

import (
	"context"
	"errors"
)

var (
	// ErrSessionNotFound means the provider does not know the session id
	ErrSessionNotFound = errors.New("payment session not found")
	// ErrProviderRejected means the provider refused the request itself
	ErrProviderRejected = errors.New("payment provider rejected request")
)

// Oracle is the source of truth for whether a purchase completed
type Oracle interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	Verify(ctx context.Context, sessionID string) (*Verification, error)
}

type CheckoutRequest struct {
	CourseID    uint
	CourseTitle string
	UserID      string
	UserEmail   string
	// AmountMinor is the price in the currency's smallest unit
	AmountMinor int64
	Currency    string
	SuccessURL  string
	CancelURL   string
}

type CheckoutSession struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"url"`
}

// Verification is what the provider reports for a session
type Verification struct {
	SessionID         string
	Paid              bool
	AmountTotal       int64
	Currency          string
	ClientReferenceID string
	Metadata          map[string]string
}

const (
	MetadataUserID   = "user_id"
	MetadataCourseID = "course_id"
)
