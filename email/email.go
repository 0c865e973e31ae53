package email

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"procurely/models"
)

type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
	// NotifyTo receives new-submission notifications.
	NotifyTo string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type EmailService struct {
	cfg  Config
	send sendFunc
}

func NewEmailService(cfg Config) *EmailService {
	return &EmailService{cfg: cfg, send: smtp.SendMail}
}

// Enabled reports whether an SMTP relay and a recipient are configured.
func (e *EmailService) Enabled() bool {
	return e != nil && e.cfg.Host != "" && e.cfg.NotifyTo != ""
}

func (e *EmailService) NotifyContact(sub *models.ContactSubmission) error {
	subject := "New enquiry from " + sub.Name
	body := fmt.Sprintf(`A new contact enquiry was submitted.

Name:    %s
Email:   %s
Phone:   %s
Company: %s
Date:    %s

%s
`, sub.Name, sub.Email, sub.Phone, sub.Company, sub.CreatedAt.Format(time.RFC1123), sub.Message)

	return e.deliver(subject, body)
}

func (e *EmailService) NotifyApplication(app *models.JobApplication, job *models.Job) error {
	subject := fmt.Sprintf("New application for %s", job.Title)
	body := fmt.Sprintf(`A new job application was submitted.

Job:     %s (%s, %s)
Name:    %s
Email:   %s
Phone:   %s
Resume:  %s
Date:    %s

%s
`, job.Title, job.Department, job.Location, app.Name, app.Email, app.Phone, app.ResumeURL,
		app.CreatedAt.Format(time.RFC1123), app.CoverLetter)

	return e.deliver(subject, body)
}

func (e *EmailService) deliver(subject, body string) error {
	if !e.Enabled() {
		return nil
	}

	message := buildMessage(e.cfg.From, e.cfg.NotifyTo, subject, body)

	var auth smtp.Auth
	if e.cfg.User != "" {
		auth = smtp.PlainAuth("", e.cfg.User, e.cfg.Password, e.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%s", e.cfg.Host, e.cfg.Port)

	if err := e.send(addr, auth, e.cfg.From, []string{e.cfg.NotifyTo}, message); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	// header values must not carry line breaks from user input
	clean := strings.NewReplacer("\r", " ", "\n", " ")
	return []byte(fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: text/plain; charset=UTF-8\r\n"+
		"\r\n"+
		"%s\r\n", clean.Replace(from), clean.Replace(to), clean.Replace(subject), body))
}
