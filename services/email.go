package services

import (
	"fmt"
	"log"

	"vitalite_portal_go/config"

	"github.com/resend/resend-go/v2"
)

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	TextBody string
}

// BuildWelcomeEmail builds the email sent when an Admin creates an account
func BuildWelcomeEmail(toEmail, username string) *Email {
	body := fmt.Sprintf(
		"Hello %s,\n\n"+
			"An account has been created for you on the VitaLite Agent Query Portal.\n"+
			"Your username is: %s\n\n"+
			"Please ask your administrator for your initial password and change it after first login.\n",
		username, username)

	return &Email{
		To:       []string{toEmail},
		Subject:  "Welcome to the VitaLite Agent Query Portal",
		TextBody: body,
	}
}

// SendEmail sends an email using the Resend API.
// In test mode the email is logged to the console instead of sent.
func SendEmail(cfg *config.Config, email *Email) error {
	if cfg.EmailTestMode {
		log.Printf("[EMAIL:TEST] To: %v | Subject: %s\n%s", email.To, email.Subject, email.TextBody)
		return nil
	}

	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}
	if email.TextBody == "" {
		return fmt.Errorf("email must have a TextBody")
	}

	client := resend.NewClient(cfg.ResendAPIKey)

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom),
		To:      email.To,
		Subject: email.Subject,
		Text:    email.TextBody,
	}

	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}

	log.Printf("Email sent via Resend (ID: %s) to: %v", sent.Id, email.To)
	return nil
}

// SendEmailAsync sends an email in a goroutine; failures are logged only
func SendEmailAsync(cfg *config.Config, email *Email) {
	emailCopy := &Email{
		To:       append([]string{}, email.To...),
		Subject:  email.Subject,
		TextBody: email.TextBody,
	}

	go func() {
		if err := SendEmail(cfg, emailCopy); err != nil {
			log.Printf("Error sending async email: %v", err)
		}
	}()
}
