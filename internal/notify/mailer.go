package notify

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/domain"
	mail "github.com/wneessen/go-mail"
)

// Config is the SMTP side of notifications. SellerEmail receives the sale
// alerts; LogoPath is optional and embedded inline when readable.
type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	SellerEmail string
	LogoPath    string
}

func (c Config) Complete() bool {
	return c.Host != "" && c.Username != "" && c.Password != "" && c.From != "" && c.SellerEmail != ""
}

// Mailer sends the transactional mails over SMTP. Every send is bounded by
// the client timeout so a stuck server cannot hang the dispatcher worker.
type Mailer struct {
	client *mail.Client
	cfg    Config
	store  StoreInfo
	logo   []byte
}

func NewMailer(cfg Config, store StoreInfo) (*Mailer, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(15*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create mail client: %w", err)
	}

	var logo []byte
	if cfg.LogoPath != "" {
		logo, err = os.ReadFile(cfg.LogoPath)
		if err != nil {
			log.Printf("could not load mail logo from %s: %v", cfg.LogoPath, err)
			logo = nil
		}
	}

	return &Mailer{client: client, cfg: cfg, store: store, logo: logo}, nil
}

func (m *Mailer) SendOrderConfirmation(ctx context.Context, o *domain.Order) error {
	body, err := renderConfirmation(m.store, o, len(m.logo) > 0)
	if err != nil {
		return err
	}
	if err := m.send(ctx, o.CustomerEmail, fmt.Sprintf("Your %s order", m.store.StoreName), body); err != nil {
		return err
	}

	alert, err := renderSellerAlert(m.store, o, len(m.logo) > 0)
	if err != nil {
		return err
	}
	return m.send(ctx, m.cfg.SellerEmail, fmt.Sprintf("NEW SALE! - %s", o.CustomerName), alert)
}

func (m *Mailer) SendDispatchNotice(ctx context.Context, o *domain.Order) error {
	body, err := renderDispatchNotice(m.store, o, len(m.logo) > 0)
	if err != nil {
		return err
	}
	return m.send(ctx, o.CustomerEmail, fmt.Sprintf("Your order #%d has been shipped", o.ID), body)
}

func (m *Mailer) send(ctx context.Context, to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("set mail sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set mail recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)
	if len(m.logo) > 0 {
		if err := msg.EmbedReader("logo.png", bytes.NewReader(m.logo)); err != nil {
			return fmt.Errorf("embed logo: %w", err)
		}
	}

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// LogSender is used when SMTP is not configured: notifications degrade to a
// log line instead of failing orders or crashing at startup.
type LogSender struct{}

func (LogSender) SendOrderConfirmation(_ context.Context, o *domain.Order) error {
	log.Printf("mail disabled: skipping order confirmation for order %d (%s)", o.ID, o.CustomerEmail)
	return nil
}

func (LogSender) SendDispatchNotice(_ context.Context, o *domain.Order) error {
	log.Printf("mail disabled: skipping dispatch notice for order %d (%s)", o.ID, o.CustomerEmail)
	return nil
}
