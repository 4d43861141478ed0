package services

import (
	"context"
	"fmt"
	"log"

	"householdledger/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendFamilyInvitation sends an invitation email using the "family_invitation" template.
func (s *emailService) SendFamilyInvitation(ctx context.Context, data *domain.FamilyInvitationEmailData) error {
	if data == nil {
		return fmt.Errorf("family invitation data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("family_invitation", data)
	if err != nil {
		return fmt.Errorf("failed to render family_invitation template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send invitation email: %w", err)
	}
	log.Printf("[EMAIL] Family invitation sent to %s", data.Email)
	return nil
}

// SendWelcomeMessage sends a welcome email using the "welcome" template.
func (s *emailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	if data == nil {
		return fmt.Errorf("welcome message data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("welcome", data)
	if err != nil {
		return fmt.Errorf("failed to render welcome template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	log.Printf("[EMAIL] Welcome email sent to %s", data.Email)
	return nil
}
