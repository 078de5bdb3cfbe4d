// Package mailer sends plain-text notification mail over SMTP.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"arvista/config"

	"github.com/rs/zerolog/log"
)

type Sender interface {
	Send(to, subject, body string) error
}

// Default is replaced by tests; Init wires SMTP when configured.
var Default Sender = LogSender{}

func Init() {
	if config.SMTP_HOST == "" || config.SMTP_FROM == "" {
		log.Info().Msg("SMTP not configured, mail will only be logged")
		Default = LogSender{}
		return
	}
	Default = SMTPSender{
		Host:     config.SMTP_HOST,
		Port:     config.SMTP_PORT,
		From:     config.SMTP_FROM,
		Password: config.SMTP_PASSWORD,
	}
}

type SMTPSender struct {
	Host     string
	Port     string
	From     string
	Password string
}

func (s SMTPSender) Send(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.From, s.Password, s.Host)
	if err := smtp.SendMail(s.Host+":"+s.Port, auth, s.From, []string{to}, buildMessage(s.From, to, subject, body)); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", to, err)
	}
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	// strip header injection attempts
	subject = strings.NewReplacer("\r", " ", "\n", " ").Replace(subject)
	return []byte("Subject: " + subject + "\r\n" +
		"From: " + from + "\r\n" +
		"To: " + to + "\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		body + "\r\n")
}

// LogSender writes mail to the log instead of sending it.
type LogSender struct{}

func (LogSender) Send(to, subject, body string) error {
	log.Info().Str("to", to).Str("subject", subject).Msg("mail (not sent, SMTP disabled)")
	return nil
}
