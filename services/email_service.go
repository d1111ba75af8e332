package services

import (
	"fmt"
	"net/smtp"
	"os"
	"regexp"
	"strings"

	"backend/models"

	"golang.org/x/net/html"
)

// convertHTMLToText strips markup so the email carries a plain-text
// alternative alongside the HTML body.
func convertHTMLToText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return htmlContent
	}

	var text strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			text.WriteString(n.Data)
		case html.ElementNode:
			if n.Data == "br" || n.Data == "p" || n.Data == "tr" {
				text.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
	}
	extractText(doc)

	collapsed := regexp.MustCompile(`[ \t]+`).ReplaceAllString(text.String(), " ")
	return strings.TrimSpace(collapsed)
}

// EmailService sends transactional mail over SMTP.
type EmailService struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewEmailServiceFromEnv builds the mailer from SMTP_* variables.
// Returns nil when SMTP_HOST is unset; callers treat a nil mailer as
// "sending disabled".
func NewEmailServiceFromEnv() *EmailService {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return nil
	}
	return &EmailService{
		host:     host,
		port:     getenvDefault("SMTP_PORT", "587"),
		username: os.Getenv("SMTP_USERNAME"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     getenvDefault("SMTP_FROM", os.Getenv("SMTP_USERNAME")),
	}
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Send delivers a multipart mail with HTML body and plain-text fallback.
func (s *EmailService) Send(to, subject, htmlBody string) error {
	if s == nil {
		return fmt.Errorf("email service not configured")
	}

	plain := convertHTMLToText(htmlBody)
	boundary := "compras-mail-boundary"

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", s.from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary))
	msg.WriteString(fmt.Sprintf("--%s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n", boundary, plain))
	msg.WriteString(fmt.Sprintf("--%s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n", boundary, htmlBody))
	msg.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	addr := s.host + ":" + s.port
	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	if err := smtp.SendMail(addr, auth, s.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

// SendQuoteRequest mails a quote request to the supplier, listing the
// materials to be priced.
func (s *EmailService) SendQuoteRequest(to string, qr models.QuoteRequest) error {
	var rows strings.Builder
	for _, item := range qr.Items {
		rows.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%.2f</td><td>%s</td></tr>", item.MaterialName, item.Quantity, item.Unit))
	}

	body := fmt.Sprintf(`
		<p>Estimado proveedor %s,</p>
		<p>Solicitamos cotización para los siguientes materiales (solicitud %s):</p>
		<table border="1" cellpadding="4">
			<tr><th>Material</th><th>Cantidad</th><th>Unidad</th></tr>
			%s
		</table>
		<p>%s</p>
	`, qr.SupplierName, qr.RequestNumber, rows.String(), qr.Notes)

	subject := fmt.Sprintf("Solicitud de cotización %s", qr.RequestNumber)
	return s.Send(to, subject, body)
}
