package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"html"
	"strings"

	"github.com/princeprakhar/reviewflow-backend/internal/config"
	"github.com/princeprakhar/reviewflow-backend/internal/models"
	"github.com/princeprakhar/reviewflow-backend/pkg/logger"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

const customerNamePlaceholder = "{customer_name}"

// Notifier delivers messages that leave the system: review requests to
// campaign recipients and negative-review alerts to owners.
type Notifier interface {
	SendReviewRequest(ctx context.Context, campaign models.Campaign, recipient models.CampaignRecipient) error
	SendNegativeReviewAlert(ctx context.Context, owner models.User, review models.Review) error
}

// RenderCampaignMessage substitutes the recipient's name into the campaign template.
func RenderCampaignMessage(template string, recipient models.CampaignRecipient) string {
	return strings.ReplaceAll(template, customerNamePlaceholder, recipient.CustomerName)
}

type EmailService struct {
	config *config.Config
	dialer *gomail.Dialer
}

func NewEmailService(config *config.Config) *EmailService {
	d := gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.SMTPUsername, config.SMTPPassword)
	d.TLSConfig = &tls.Config{ServerName: config.SMTPHost}
	return &EmailService{config: config, dialer: d}
}

func (s *EmailService) SendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.config.FromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	return s.dialer.DialAndSend(m)
}

func (s *EmailService) SendReviewRequest(_ context.Context, campaign models.Campaign, recipient models.CampaignRecipient) error {
	if recipient.CustomerEmail == nil || *recipient.CustomerEmail == "" {
		return nil
	}

	message := RenderCampaignMessage(campaign.MessageTemplate, recipient)
	body := fmt.Sprintf(`
		<p>%s</p>
		<p>Thank you,<br>%s</p>
	`, html.EscapeString(message), html.EscapeString(campaign.Name))

	return s.SendEmail(*recipient.CustomerEmail, "We'd love your feedback", body)
}

func (s *EmailService) SendNegativeReviewAlert(_ context.Context, owner models.User, review models.Review) error {
	text := ""
	if review.ReviewText != nil {
		text = *review.ReviewText
	}

	subject := fmt.Sprintf("New %d-star review from %s", review.Rating, review.AuthorName)
	body := fmt.Sprintf(`
		<h2>A review needs your attention</h2>
		<p><strong>Author:</strong> %s</p>
		<p><strong>Rating:</strong> %d / 5</p>
		<p><strong>Source:</strong> %s</p>
		<blockquote>%s</blockquote>
		<p>Responding quickly to negative feedback helps recover the relationship.</p>
	`, html.EscapeString(review.AuthorName), review.Rating, html.EscapeString(review.Source), html.EscapeString(text))

	return s.SendEmail(owner.Email, subject, body)
}

// LogNotifier records outbound messages instead of sending them. It is used
// when SMTP is not configured.
type LogNotifier struct{}

func (LogNotifier) SendReviewRequest(_ context.Context, campaign models.Campaign, recipient models.CampaignRecipient) error {
	logger.WithFields(logrus.Fields{
		"campaign_id":  campaign.ID,
		"recipient_id": recipient.ID,
		"channel":      campaign.Type,
	}).Info("review request not delivered: no mail transport configured")
	return nil
}

func (LogNotifier) SendNegativeReviewAlert(_ context.Context, owner models.User, review models.Review) error {
	logger.WithFields(logrus.Fields{
		"user_id":   owner.ID,
		"review_id": review.ID,
		"rating":    review.Rating,
	}).Warn("negative review alert not delivered: no mail transport configured")
	return nil
}
