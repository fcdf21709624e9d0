package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"sync"

	"tukangin-platform/internal/config"
)

// Mailer sends transactional mail. Callers treat delivery as best-effort;
// a failed mail must not fail the surrounding auth flow.
type Mailer interface {
	SendOTP(ctx context.Context, to, code, purpose string) error
}

// SMTPMailer delivers through a plain SMTP relay.
type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
}

func NewSMTP(cfg config.SMTPConfig) *SMTPMailer {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPMailer{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		from: cfg.From,
		auth: auth,
	}
}

func (m *SMTPMailer) SendOTP(_ context.Context, to, code, purpose string) error {
	subject, body := otpMessage(code, purpose)
	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="utf-8"`,
		"",
		body,
	}, "\r\n")
	return smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg))
}

func otpMessage(code, purpose string) (subject, body string) {
	switch purpose {
	case "reset":
		return "Kode reset kata sandi Tukangin",
			fmt.Sprintf("Gunakan kode %s untuk mengatur ulang kata sandi Anda. Kode berlaku 5 menit.", code)
	case "verify_email":
		return "Verifikasi email Tukangin Anda",
			fmt.Sprintf("Gunakan kode %s untuk memverifikasi email Anda. Kode berlaku 5 menit.", code)
	default:
		return "Kode masuk Tukangin",
			fmt.Sprintf("Gunakan kode %s untuk melanjutkan masuk. Kode berlaku 5 menit.", code)
	}
}

// MemoryMailer records mail instead of sending it; used by tests.
type MemoryMailer struct {
	mu   sync.Mutex
	sent []SentMail
}

type SentMail struct {
	To      string
	Code    string
	Purpose string
}

func NewMemory() *MemoryMailer { return &MemoryMailer{} }

func (m *MemoryMailer) SendOTP(_ context.Context, to, code, purpose string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentMail{To: to, Code: code, Purpose: purpose})
	return nil
}

func (m *MemoryMailer) Sent() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMail, len(m.sent))
	copy(out, m.sent)
	return out
}
