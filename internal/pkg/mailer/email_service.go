package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	"course-marketplace-be/internal/dto"
	"course-marketplace-be/internal/pkg/logger"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendNotification(toEmail, fullName string, notification dto.NotificationMessage) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
	clientURL   string
	logger      logger.ILogger
}

var notificationTemplate = template.Must(template.New("notification").Parse(`
<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
	<h2>{{.Title}}</h2>
	<p>Hi {{.FullName}},</p>
	<p>{{.Message}}</p>
	{{if .Link}}<a href="{{.Link}}" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">View details</a>{{end}}
</div>
`))

func NewEmailService(host string, port int, username, password, senderEmail, senderName, clientURL string, log logger.ILogger) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: senderEmail,
		senderName:  senderName,
		clientURL:   clientURL,
		logger:      log,
	}
}

// RenderNotification produces the HTML body. Payload values are escaped by html/template.
func RenderNotification(fullName, link string, n dto.NotificationMessage) (string, error) {
	var buf bytes.Buffer
	err := notificationTemplate.Execute(&buf, map[string]string{
		"Title":    n.Title,
		"Message":  n.Message,
		"FullName": fullName,
		"Link":     link,
	})
	return buf.String(), err
}

func (s *emailService) SendNotification(toEmail, fullName string, n dto.NotificationMessage) error {
	body, err := RenderNotification(fullName, s.linkFor(n), n)
	if err != nil {
		return fmt.Errorf("render notification email: %w", err)
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", n.Title)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error("MAILER", "Failed to send notification email", map[string]interface{}{
			"type":  n.Type,
			"error": err.Error(),
		})
		return err
	}

	s.logger.Info("MAILER", "Notification email sent", map[string]interface{}{"type": n.Type})
	return nil
}

func (s *emailService) linkFor(n dto.NotificationMessage) string {
	if s.clientURL == "" {
		return ""
	}
	switch id := n.Data["payment_id"].(type) {
	case string:
		return fmt.Sprintf("%s/purchases/%s", s.clientURL, id)
	}
	return ""
}
