package domain

import (
	"context"
	"time"
)

// Mailer sends a single email message.
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders a named email template with data, returning
// subject, html body, and text body.
type EmailTemplateRenderer interface {
	Render(templateName string, data interface{}) (subject, htmlBody, textBody string, err error)
}

// FamilyInvitationEmailData is the data for the family_invitation template.
type FamilyInvitationEmailData struct {
	Email       string
	InviterName string
	FamilyName  string
	Role        Role
	Link        string
	ExpiresAt   time.Time
}

// WelcomeMessageEmailData is the data for the welcome template.
type WelcomeMessageEmailData struct {
	Email string
	Name  string
}

// EmailService defines the emails the application sends.
type EmailService interface {
	SendFamilyInvitation(ctx context.Context, data *FamilyInvitationEmailData) error
	SendWelcomeMessage(ctx context.Context, data *WelcomeMessageEmailData) error
}
