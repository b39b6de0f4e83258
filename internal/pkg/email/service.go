package email

import (
	"bytes"
	"context"
	"html/template"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/giftbay/giftbay-api/internal/domain/wallet"
)

// Service handles email sending with templates
type Service struct {
	client       *SendGridClient
	templates    map[string]*template.Template
	baseTemplate *template.Template
	appBaseURL   string
	queue        chan *QueuedEmail
	wg           sync.WaitGroup
}

// QueuedEmail represents an email in the send queue
type QueuedEmail struct {
	To           string
	ToName       string
	Subject      string
	TemplateName string
	Data         interface{}
}

// NewService creates email service
func NewService(config SendGridConfig, appBaseURL string) *Service {
	s := &Service{
		client:     NewSendGridClient(config),
		templates:  make(map[string]*template.Template),
		appBaseURL: appBaseURL,
		queue:      make(chan *QueuedEmail, 100),
	}

	s.baseTemplate, _ = template.New("base").Parse(BaseTemplate)
	s.loadTemplates()

	// Start async worker
	s.wg.Add(1)
	go s.worker()

	return s
}

// loadTemplates loads all email templates
func (s *Service) loadTemplates() {
	templates := map[string]string{
		"welcome":       WelcomeTemplate,
		"reset_code":    ResetCodeTemplate,
		"payout_update": PayoutUpdateTemplate,
	}

	for name, content := range templates {
		tmpl, err := template.New(name).Parse(content)
		if err != nil {
			log.Error().Err(err).Str("template", name).Msg("Failed to parse email template")
			continue
		}
		s.templates[name] = tmpl
	}
}

// worker processes queued emails asynchronously
func (s *Service) worker() {
	defer s.wg.Done()

	for email := range s.queue {
		ctx := context.Background()
		if err := s.send(ctx, email); err != nil {
			log.Error().Err(err).
				Str("to", email.To).
				Str("template", email.TemplateName).
				Msg("Failed to send email")
		}
	}
}

// send renders the template and dispatches the message
func (s *Service) send(ctx context.Context, email *QueuedEmail) error {
	tmpl, ok := s.templates[email.TemplateName]
	if !ok {
		log.Warn().Str("template", email.TemplateName).Msg("Template not found")
		return nil
	}

	var contentBuf bytes.Buffer
	if err := tmpl.Execute(&contentBuf, email.Data); err != nil {
		return err
	}

	var htmlBuf bytes.Buffer
	if err := s.baseTemplate.Execute(&htmlBuf, map[string]interface{}{
		"Content": template.HTML(contentBuf.String()),
	}); err != nil {
		return err
	}

	return s.client.Send(ctx, &EmailMessage{
		To:          email.To,
		ToName:      email.ToName,
		Subject:     email.Subject,
		HTMLContent: htmlBuf.String(),
	})
}

// Queue adds an email to the async send queue
func (s *Service) Queue(to, toName, templateName, subject string, data interface{}) {
	select {
	case s.queue <- &QueuedEmail{
		To:           to,
		ToName:       toName,
		Subject:      subject,
		TemplateName: templateName,
		Data:         data,
	}:
	default:
		log.Warn().Str("to", to).Msg("Email queue full, dropping email")
	}
}

// Close stops the email worker
func (s *Service) Close() {
	close(s.queue)
	s.wg.Wait()
}

// --- Convenience methods for specific emails ---

// SendWelcome greets a new account
func (s *Service) SendWelcome(to, name string) {
	s.Queue(to, name, "welcome", "Welcome to GiftBay", map[string]interface{}{
		"Name":         name,
		"DashboardURL": s.appBaseURL + "/wallet",
	})
}

// SendWelcomeWithBonus greets a new account and mentions the signup credit
func (s *Service) SendWelcomeWithBonus(to, name string, bonusKobo int64) {
	s.Queue(to, name, "welcome", "Welcome to GiftBay", map[string]interface{}{
		"Name":         name,
		"BonusNaira":   wallet.FormatNaira(bonusKobo),
		"DashboardURL": s.appBaseURL + "/wallet",
	})
}

// SendResetCode delivers a password reset code
func (s *Service) SendResetCode(to, name, code string) {
	s.Queue(to, name, "reset_code", "Your GiftBay password reset code", map[string]interface{}{
		"Name": name,
		"Code": code,
	})
}

// SendPayoutUpdate reports a withdrawal status change
func (s *Service) SendPayoutUpdate(to, name, message string) {
	s.Queue(to, name, "payout_update", "Withdrawal update", map[string]interface{}{
		"Name":      name,
		"Message":   message,
		"WalletURL": s.appBaseURL + "/wallet",
	})
}
