// Package smtp delivers digest emails over SMTP. The active transport
// configuration is resolved at send time: a database-stored configuration
// wins over the environment fallback, and an empty host switches the
// dispatcher into mock mode so development setups never need a real
// mail server.
package smtp

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/smtp"
	"net/textproto"

	"github.com/paperboy-dev/paperboy-api/internal/config"
	"github.com/paperboy-dev/paperboy-api/internal/domain"
	"github.com/paperboy-dev/paperboy-api/internal/platform/logger"
	"github.com/paperboy-dev/paperboy-api/internal/store"
)

// transmitFunc performs the wire-level SMTP exchange so tests can
// intercept it. useTLS selects an explicit STARTTLS upgrade before
// authentication.
type transmitFunc func(host string, port int, useTLS bool, a smtp.Auth, from string, to []string, msg []byte) error

// Dispatcher sends HTML digest emails using the currently active
// mail transport configuration.
type Dispatcher struct {
	configs  store.MailConfigStore
	envCfg   config.SMTPConfig
	transmit transmitFunc
	logger   *slog.Logger
}

// NewDispatcher creates a Dispatcher. The config store may be nil, in
// which case only the environment configuration is consulted. If logger
// is nil, a default logger will be used.
func NewDispatcher(configs store.MailConfigStore, envCfg config.SMTPConfig, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}

	return &Dispatcher{
		configs:  configs,
		envCfg:   envCfg,
		transmit: transmitSMTP,
		logger:   log.With(slog.String("component", "smtp_dispatcher")),
	}
}

// Send delivers an HTML email to the given recipient. It reports success
// as a boolean rather than an error: a failed send is an expected outcome
// the digest pipeline records, not a reason to abort the run. With no
// host configured the send is mocked: logged and reported successful.
func (d *Dispatcher) Send(ctx context.Context, to, subject, htmlBody string) bool {
	log := logger.FromContextOrDefault(ctx, d.logger)

	cfg := d.resolveConfig(ctx)
	if cfg.Host == "" {
		log.Info("mock email sent",
			slog.String("to", to),
			slog.String("subject", subject))
		return true
	}

	var auth smtp.Auth
	if cfg.Username != "" && cfg.Password != "" {
		// PLAIN credentials only travel over an upgraded connection.
		if !cfg.UseTLS {
			log.Error("refusing to authenticate over a plaintext connection",
				slog.String("host", cfg.Host))
			return false
		}
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	msg := buildMessage(cfg.Sender(), to, subject, htmlBody)

	if err := d.transmit(cfg.Host, cfg.Port, cfg.UseTLS, auth, cfg.FromEmail, []string{to}, msg); err != nil {
		log.Error("email send failed",
			slog.String("to", to),
			slog.String("host", cfg.Host),
			slog.String("error", err.Error()))
		return false
	}

	log.Info("email sent",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("host", cfg.Host))
	return true
}

// resolveConfig returns the active database configuration when one
// exists, otherwise the environment fallback mapped into the same shape.
func (d *Dispatcher) resolveConfig(ctx context.Context) *domain.MailTransportConfig {
	log := logger.FromContextOrDefault(ctx, d.logger)

	if d.configs != nil {
		cfg, err := d.configs.Active(ctx)
		if err == nil {
			return cfg
		}
		if !errors.Is(err, store.ErrMailConfigNotFound) {
			log.Warn("failed to load mail transport config, using environment fallback",
				slog.String("error", err.Error()))
		}
	}

	return &domain.MailTransportConfig{
		Host:      d.envCfg.Host,
		Port:      d.envCfg.Port,
		UseTLS:    d.envCfg.UseTLS,
		Username:  d.envCfg.Username,
		Password:  d.envCfg.Password,
		FromEmail: d.envCfg.FromEmail,
		FromName:  d.envCfg.FromName,
	}
}

// transmitSMTP speaks the SMTP exchange directly rather than through
// smtp.SendMail, because SendMail decides on STARTTLS by server
// advertisement alone while the stored configuration carries an explicit
// use_tls flag that must control the upgrade.
func transmitSMTP(host string, port int, useTLS bool, a smtp.Auth, from string, to []string, msg []byte) error {
	c, err := smtp.Dial(fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return err
	}
	defer c.Close()

	if useTLS {
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	if a != nil {
		if err := c.Auth(a); err != nil {
			return err
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// buildMessage assembles an RFC 5322 multipart/alternative message
// carrying a single HTML part.
func buildMessage(from, to, subject, htmlBody string) []byte {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	buf.WriteString("From: " + from + "\r\n")
	buf.WriteString("To: " + to + "\r\n")
	buf.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: multipart/alternative; boundary=" + mw.Boundary() + "\r\n")
	buf.WriteString("\r\n")

	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`text/html; charset="UTF-8"`},
	})
	if err == nil {
		part.Write([]byte(htmlBody))
	}
	mw.Close()

	return buf.Bytes()
}
