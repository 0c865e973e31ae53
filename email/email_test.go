package email

import (
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"procurely/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type sent struct {
	addr string
	from string
	to   []string
	msg  string
}

func newTestService(cfg Config) (*EmailService, *[]sent) {
	var out []sent
	e := NewEmailService(cfg)
	e.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		out = append(out, sent{addr: addr, from: from, to: to, msg: string(msg)})
		return nil
	}
	return e, &out
}

func TestDisabledWithoutHost(t *testing.T) {
	e, out := newTestService(Config{NotifyTo: "sales@example.com"})

	assert.False(t, e.Enabled())
	require.NoError(t, e.NotifyContact(&models.ContactSubmission{Name: "A"}))
	assert.Empty(t, *out)
}

func TestNotifyContact(t *testing.T) {
	e, out := newTestService(Config{
		Host:     "smtp.example.com",
		Port:     "587",
		From:     "site@example.com",
		NotifyTo: "sales@example.com",
	})

	err := e.NotifyContact(&models.ContactSubmission{
		Name:      "Priya\r\nBcc: victim@example.com",
		Email:     "priya@example.com",
		Company:   "Shah Infra",
		Message:   "Need a quote for 20t of TMT bars",
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, *out, 1)

	m := (*out)[0]
	assert.Equal(t, "smtp.example.com:587", m.addr)
	assert.Equal(t, []string{"sales@example.com"}, m.to)
	assert.Contains(t, m.msg, "Subject: New enquiry from Priya  Bcc: victim@example.com\r\n")
	headers := strings.SplitN(m.msg, "\r\n\r\n", 2)[0]
	assert.NotContains(t, headers, "\r\nBcc:")
	assert.Contains(t, m.msg, "Need a quote for 20t of TMT bars")
}

func TestNotifyApplication(t *testing.T) {
	e, out := newTestService(Config{Host: "smtp.example.com", Port: "25", NotifyTo: "hr@example.com"})

	job := &models.Job{Title: "Site Engineer", Department: "Projects", Location: "Pune"}
	app := &models.JobApplication{Name: "Meera", Email: "meera@example.com", ResumeURL: "https://cdn.example.com/cv.pdf"}
	require.NoError(t, e.NotifyApplication(app, job))

	require.Len(t, *out, 1)
	assert.Contains(t, (*out)[0].msg, "Subject: New application for Site Engineer")
	assert.Contains(t, (*out)[0].msg, "https://cdn.example.com/cv.pdf")
}

func TestSendFailureIsReturned(t *testing.T) {
	e := NewEmailService(Config{Host: "smtp.example.com", Port: "25", NotifyTo: "hr@example.com"})
	e.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	err := e.NotifyContact(&models.ContactSubmission{Name: "A"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
