package notifications

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/energycommunities/backend/internal/models"
	"gopkg.in/mail.v2"
)

// Email is a rendered message ready to be sent
type Email struct {
	To      []string
	Subject string
	Body    string // HTML
}

var decisionTemplate = template.Must(template.New("decision").Parse(
	`<p>Hola {{.Name}},</p>
<p>Tu solicitud para la comunidad energética <strong>{{.Community}}</strong> ({{.Location}}) ha sido <strong>{{.Outcome}}</strong>.</p>
<p>Puedes consultar el estado de tus solicitudes en tu panel de miembro.</p>`))

var digestTemplate = template.Must(template.New("digest").Parse(
	`<p>Hay <strong>{{.}}</strong> solicitudes de comunidades energéticas pendientes de revisión.</p>`))

// DecisionEmail renders the email telling an owner about the decision on their application
func DecisionEmail(owner *models.User, community *models.Community) (*Email, error) {
	outcome := "aprobada"
	if community.Status == models.CommunityStatusRejected {
		outcome = "rechazada"
	}

	var body bytes.Buffer
	err := decisionTemplate.Execute(&body, map[string]string{
		"Name":      owner.Name,
		"Community": community.Name,
		"Location":  community.Location,
		"Outcome":   outcome,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render decision email: %w", err)
	}

	return &Email{
		To:      []string{owner.Email},
		Subject: fmt.Sprintf("Solicitud %s: %s", outcome, community.Name),
		Body:    body.String(),
	}, nil
}

// PendingDigestEmail renders the digest sent to administrators
func PendingDigestEmail(recipients []string, pending int) (*Email, error) {
	var body bytes.Buffer
	if err := digestTemplate.Execute(&body, pending); err != nil {
		return nil, fmt.Errorf("failed to render digest email: %w", err)
	}

	return &Email{
		To:      recipients,
		Subject: fmt.Sprintf("%d solicitudes pendientes de revisión", pending),
		Body:    body.String(),
	}, nil
}

// SMTPMailer sends emails through an SMTP server
type SMTPMailer struct {
	dialer *mail.Dialer
	from   string
}

// NewSMTPMailer creates a mailer for the given SMTP server
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: mail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// Send delivers the email to all of its recipients
func (m *SMTPMailer) Send(email *Email) error {
	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email.To...)
	msg.SetHeader("Subject", email.Subject)
	msg.SetBody("text/html", email.Body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
