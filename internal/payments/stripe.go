package payments

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/SAP-F-2025/course-service/internal/config"
)

// StripeOracle talks to the Stripe Checkout Sessions API
type StripeOracle struct {
	client *resty.Client
	logger *slog.Logger
}

type stripeSession struct {
	ID                string            `json:"id"`
	URL               string            `json:"url"`
	PaymentStatus     string            `json:"payment_status"`
	AmountTotal       int64             `json:"amount_total"`
	Currency          string            `json:"currency"`
	ClientReferenceID string            `json:"client_reference_id"`
	Metadata          map[string]string `json:"metadata"`
}

type stripeError struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewStripeOracle(cfg config.StripeConfig, logger *slog.Logger) *StripeOracle {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetAuthToken(cfg.SecretKey).
		SetTimeout(cfg.Timeout).
		SetRetryCount(2).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	return &StripeOracle{client: client, logger: logger}
}

func (s *StripeOracle) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	courseID := strconv.FormatUint(uint64(req.CourseID), 10)
	form := map[string]string{
		"mode":                "payment",
		"success_url":         req.SuccessURL,
		"cancel_url":          req.CancelURL,
		"client_reference_id": req.UserID,
	}
	form["line_items[0][quantity]"] = "1"
	form["line_items[0][price_data][currency]"] = req.Currency
	form["line_items[0][price_data][unit_amount]"] = strconv.FormatInt(req.AmountMinor, 10)
	form["line_items[0][price_data][product_data][name]"] = req.CourseTitle
	form["metadata["+MetadataUserID+"]"] = req.UserID
	form["metadata["+MetadataCourseID+"]"] = courseID
	if req.UserEmail != "" {
		form["customer_email"] = req.UserEmail
	}

	var session stripeSession
	var apiErr stripeError
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", uuid.NewString()).
		SetFormData(form).
		SetResult(&session).
		SetError(&apiErr).
		Post("/v1/checkout/sessions")
	if err != nil {
		return nil, fmt.Errorf("stripe create checkout request failed: %w", err)
	}
	if resp.IsError() {
		s.logger.Error("Stripe checkout creation failed",
			"status", resp.StatusCode(),
			"type", apiErr.Error.Type,
			"message", apiErr.Error.Message)
		return nil, fmt.Errorf("%w: status %d", ErrProviderRejected, resp.StatusCode())
	}

	return &CheckoutSession{SessionID: session.ID, RedirectURL: session.URL}, nil
}

func (s *StripeOracle) Verify(ctx context.Context, sessionID string) (*Verification, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrSessionNotFound
	}

	var session stripeSession
	var apiErr stripeError
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("id", sessionID).
		SetResult(&session).
		SetError(&apiErr).
		Get("/v1/checkout/sessions/{id}")
	if err != nil {
		return nil, fmt.Errorf("stripe retrieve session request failed: %w", err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound, resp.StatusCode() == http.StatusBadRequest:
		return nil, ErrSessionNotFound
	case resp.IsError():
		s.logger.Error("Stripe session lookup failed",
			"status", resp.StatusCode(),
			"type", apiErr.Error.Type,
			"message", apiErr.Error.Message)
		return nil, fmt.Errorf("%w: status %d", ErrProviderRejected, resp.StatusCode())
	}

	return &Verification{
		SessionID:         session.ID,
		Paid:              session.PaymentStatus == "paid",
		AmountTotal:       session.AmountTotal,
		Currency:          strings.ToLower(session.Currency),
		ClientReferenceID: session.ClientReferenceID,
		Metadata:          session.Metadata,
	}, nil
}
