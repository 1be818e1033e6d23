package services

import (
	"fmt"
	"net/smtp"
	"strings"
)

// EmailService sends mail through the configured SMTP relay
type EmailService struct {
	smtpHost     string
	smtpPort     int
	smtpUsername string
	smtpPassword string
	fromEmail    string
}

// NewEmailService creates a new email service
func NewEmailService(host string, port int, username, password string) *EmailService {
	// Trim quotes some env files leave around the password
	password = strings.Trim(password, "\"")

	return &EmailService{
		smtpHost:     host,
		smtpPort:     port,
		smtpUsername: username,
		smtpPassword: password,
		fromEmail:    username,
	}
}

// IsConfigured reports whether the SMTP relay is usable
func (s *EmailService) IsConfigured() bool {
	return s.smtpHost != "" && s.smtpPort != 0 && s.smtpUsername != "" && s.smtpPassword != ""
}

// Send sends a single email. Without SMTP configuration the send is
// simulated so development flows keep working.
func (s *EmailService) Send(to, subject, body string) error {
	if !s.IsConfigured() {
		fmt.Printf("[email] SMTP not configured, simulating send to %s: %s\n", to, subject)
		return nil
	}

	message := fmt.Sprintf("To: %s\r\nFrom: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		to, s.fromEmail, subject, body)

	auth := smtp.PlainAuth("", s.smtpUsername, s.smtpPassword, s.smtpHost)
	addr := fmt.Sprintf("%s:%d", s.smtpHost, s.smtpPort)

	if err := smtp.SendMail(addr, auth, s.fromEmail, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// SendOTPEmail sends a one-time login code
func (s *EmailService) SendOTPEmail(to, code string) error {
	subject := "KefyStore - Code de vérification"
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 480px; margin: 0 auto;">
			<h2>Votre code de vérification</h2>
			<p>Utilisez ce code pour confirmer votre connexion :</p>
			<p style="font-size: 28px; letter-spacing: 6px; font-weight: bold;">%s</p>
			<p>Ce code expire dans 10 minutes. Si vous n'êtes pas à l'origine de cette demande, ignorez ce message.</p>
		</div>
	`, code)
	return s.Send(to, subject, body)
}

// SendOrderConfirmationEmail notifies a buyer that the order was placed
func (s *EmailService) SendOrderConfirmationEmail(to, orderNumber, total string) error {
	subject := fmt.Sprintf("KefyStore - Commande %s reçue", orderNumber)
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 480px; margin: 0 auto;">
			<h2>Merci pour votre commande !</h2>
			<p>Votre commande <strong>%s</strong> d'un montant de <strong>%s FCFA</strong> a bien été enregistrée.</p>
			<p>Vous recevrez une notification à chaque étape de sa préparation.</p>
		</div>
	`, orderNumber, total)
	return s.Send(to, subject, body)
}
