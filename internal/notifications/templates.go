package notifications

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/SAP-F-2025/course-service/internal/models"
)

const layout = `<html><body style="font-family: Arial, sans-serif; color: #1b263b;">
<div style="max-width: 600px; margin: 32px auto;">
{{template "content" .}}
<p style="font-size: 12px; color: #888888;">You are receiving this email because of activity on your course account.</p>
</div></body></html>`

var templates = map[string]string{
	"enrollment": `{{define "content"}}
<h3>Welcome to {{.CourseTitle}}</h3>
<p>Hi {{.UserName}}, you are now enrolled. Pick up where you left off any time from your dashboard.</p>
{{end}}`,
	"payment": `{{define "content"}}
<h3>Payment received</h3>
<p>Hi {{.UserName}}, we received your payment of {{.AmountPaid}} for {{.CourseTitle}}. Your enrollment is active.</p>
<p>Reference: {{.PaymentReference}}</p>
{{end}}`,
	"certificate": `{{define "content"}}
<h3>Congratulations, {{.UserName}}!</h3>
<p>You completed {{.CourseTitle}} on {{.CompletionDate}}.</p>
<p>Your certificate id is <strong>{{.CertificateID}}</strong>. Anyone can verify it at
<a href="{{.VerifyURL}}">{{.VerifyURL}}</a>.</p>
{{end}}`,
}

// Renderer turns event payloads into emails
type Renderer struct {
	frontendURL string
	parsed      map[string]*template.Template
}

func NewRenderer(frontendURL string) (*Renderer, error) {
	parsed := make(map[string]*template.Template, len(templates))
	for name, body := range templates {
		t, err := template.New(name).Parse(layout)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layout: %w", err)
		}
		if _, err := t.Parse(body); err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		parsed[name] = t
	}
	return &Renderer{frontendURL: frontendURL, parsed: parsed}, nil
}

// EnrollmentConfirmed renders the welcome email, or the receipt for paid enrollments
func (r *Renderer) EnrollmentConfirmed(data *models.EnrollmentConfirmedData) (*Email, error) {
	name := "enrollment"
	subject := fmt.Sprintf("You're enrolled in %s", data.CourseTitle)
	text := fmt.Sprintf("Hi %s, you are now enrolled in %s.", data.UserName, data.CourseTitle)
	if data.PaymentReference != nil {
		name = "payment"
		subject = fmt.Sprintf("Payment confirmed: %s", data.CourseTitle)
		text = fmt.Sprintf("Hi %s, we received your payment of %s for %s.", data.UserName, data.AmountPaid, data.CourseTitle)
	}

	view := struct {
		UserName         string
		CourseTitle      string
		AmountPaid       string
		PaymentReference string
	}{
		UserName:    data.UserName,
		CourseTitle: data.CourseTitle,
		AmountPaid:  data.AmountPaid,
	}
	if data.PaymentReference != nil {
		view.PaymentReference = *data.PaymentReference
	}

	return r.render(name, view, data.UserEmail, data.UserName, subject, text)
}

func (r *Renderer) CertificateIssued(data *models.CertificateIssuedData) (*Email, error) {
	completed := data.CompletionDate.Format("2006-01-02")
	verifyURL := fmt.Sprintf("%s/verify/%s", r.frontendURL, data.CertificateID)

	view := struct {
		UserName       string
		CourseTitle    string
		CompletionDate string
		CertificateID  string
		VerifyURL      string
	}{data.UserName, data.CourseTitle, completed, data.CertificateID, verifyURL}

	subject := fmt.Sprintf("Your certificate for %s", data.CourseTitle)
	text := fmt.Sprintf("Congratulations %s! Certificate %s for %s. Verify at %s", data.UserName, data.CertificateID, data.CourseTitle, verifyURL)
	return r.render("certificate", view, data.UserEmail, data.UserName, subject, text)
}

func (r *Renderer) render(name string, view interface{}, to, toName, subject, text string) (*Email, error) {
	var buf bytes.Buffer
	if err := r.parsed[name].Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("failed to render %s email: %w", name, err)
	}
	return &Email{
		ToAddress: to,
		ToName:    toName,
		Subject:   subject,
		PlainText: text,
		HTML:      buf.String(),
	}, nil
}
