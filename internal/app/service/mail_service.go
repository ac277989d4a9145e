package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"hackr_api/internal/common"
)

const (
	MaxEmailsPerRequest = 10
	spamSubject         = "Not a spammm"
)

// Mailer delivers the same plain-text message count times.
type Mailer interface {
	SendRepeated(ctx context.Context, to, subject, body string, count int) error
}

type MailService struct {
	mailer Mailer
}

func NewMailService(mailer Mailer) *MailService {
	return &MailService{mailer: mailer}
}

type SpamRequest struct {
	Email   string `json:"email"`
	Content string `json:"content"`
	NbSend  *int   `json:"nbSend"`
}

var (
	ErrSpamFieldsRequired = common.NewClientError(common.ErrValidation, "Email, content, and nbSend are required")
	ErrSpamTooMany        = common.NewClientError(common.ErrValidation,
		fmt.Sprintf("Maximum %d emails allowed to be sent at once.", MaxEmailsPerRequest))
)

// Count resolves nbSend, defaulting to a single message when omitted.
func (r SpamRequest) Count() int {
	if r.NbSend == nil {
		return 1
	}
	return *r.NbSend
}

// SendSpam validates the request and sends Count() copies, returning how many went out.
func (s *MailService) SendSpam(ctx context.Context, req SpamRequest) (int, error) {
	to := strings.TrimSpace(req.Email)
	count := req.Count()
	if to == "" || req.Content == "" || count <= 0 {
		return 0, ErrSpamFieldsRequired
	}
	if count > MaxEmailsPerRequest {
		return 0, ErrSpamTooMany
	}

	if err := s.mailer.SendRepeated(ctx, to, spamSubject, req.Content, count); err != nil {
		return 0, fmt.Errorf("sending emails: %w", err)
	}
	slog.Info("emails sent", "to", to, "count", count)
	return count, nil
}
