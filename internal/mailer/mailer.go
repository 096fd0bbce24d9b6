package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"
)

// Mailer dispatches one-time codes to users.
type Mailer interface {
	SendOTP(ctx context.Context, email, code string) error
}

// SMTPMailer sends the OTP email through a plain SMTP relay.
type SMTPMailer struct {
	addr    string
	auth    smtp.Auth
	from    string
	appName string
}

func NewSMTPMailer(host string, port int, username, password, from, appName string) *SMTPMailer {
	var a smtp.Auth
	if username != "" {
		a = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPMailer{
		addr:    fmt.Sprintf("%s:%d", host, port),
		auth:    a,
		from:    from,
		appName: appName,
	}
}

func (m *SMTPMailer) SendOTP(_ context.Context, email, code string) error {
	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: Your OTP Verification Code\r\n\r\nYour verification code is %s. It expires shortly.\r\n",
		m.appName, m.from, email, code)
	return smtp.SendMail(m.addr, m.auth, m.from, []string{email}, []byte(msg))
}

// LogMailer is the development fallback when no SMTP relay is configured; it
// just logs the code.
type LogMailer struct {
	lg *zap.SugaredLogger
}

func NewLogMailer(lg *zap.SugaredLogger) *LogMailer {
	return &LogMailer{lg: lg}
}

func (m *LogMailer) SendOTP(_ context.Context, email, code string) error {
	m.lg.Infow("otp email (log mailer)", "email", email, "code", code)
	return nil
}
