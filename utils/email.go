package utils

import (
	"crypto/tls"
	"fmt"
	"net/smtp"

	"github.com/SaintVisionAi/saintsal-chat-sub001/config"
	"go.uber.org/zap"
)

// SendEmail delivers a single HTML mail over implicit-TLS SMTP. Callers
// treat failures as best-effort: the primary operation never rolls back
// because a mail did not go out.
func SendEmail(to, subject, body string) error {
	host := config.GetEnv("SMTP_HOST", "")
	port := config.GetEnv("SMTP_PORT", "465")
	username := config.GetEnv("SMTP_USERNAME", "")
	password := config.GetEnv("SMTP_PASSWORD", "")

	if host == "" || username == "" {
		return fmt.Errorf("smtp not configured: set SMTP_HOST and SMTP_USERNAME")
	}

	msg := []byte(
		fmt.Sprintf("From: %s\r\n", username) +
			fmt.Sprintf("To: %s\r\n", to) +
			fmt.Sprintf("Subject: %s\r\n", subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=\"utf-8\"\r\n" +
			"\r\n" +
			body,
	)

	serverAddr := host + ":" + port

	tlsConfig := &tls.Config{ServerName: host}
	conn, err := tls.Dial("tcp", serverAddr, tlsConfig)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Quit()

	auth := smtp.PlainAuth("", username, password, host)
	if err := client.Auth(auth); err != nil {
		return err
	}

	if err := client.Mail(username); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	return w.Close()
}

// SendVerificationEmail sends the signup verification link.
func SendVerificationEmail(to, token string) error {
	link := fmt.Sprintf("%s/api/auth/verify-email?token=%s", config.GetAppURL(), token)
	body := fmt.Sprintf(
		"<p>Welcome to SaintSal!</p><p>Please verify your email by clicking <a href=\"%s\">this link</a>. The link expires in 24 hours.</p>",
		link,
	)
	return SendEmail(to, "Verify your SaintSal account", body)
}

// SendInvitationEmail sends a team invitation link. A returned error is
// surfaced to the inviter as emailSent:false, nothing more.
func SendInvitationEmail(to, teamName, inviteURL string) error {
	body := fmt.Sprintf(
		"<p>You have been invited to join the team <strong>%s</strong> on SaintSal.</p><p><a href=\"%s\">Accept the invitation</a> within 24 hours.</p>",
		teamName, inviteURL,
	)
	err := SendEmail(to, fmt.Sprintf("You're invited to %s on SaintSal", teamName), body)
	if err != nil {
		config.GetLogger().Warn("Invitation email failed",
			zap.String("to", to),
			zap.Error(err))
	}
	return err
}
