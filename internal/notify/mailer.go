// Package notify sends administrator mail about blog submissions.
package notify

import (
	"fmt"
	"strings"
	"sync"

	"github.com/portfolio-blog-api/internal/config"
	"github.com/portfolio-blog-api/internal/models"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Sender delivers prepared messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends notifications in the background
type Mailer struct {
	sender     Sender
	from       string
	fromName   string
	recipients []string
	log        zerolog.Logger
	wg         sync.WaitGroup
}

// NewMailer creates a mailer from SMTP settings
func NewMailer(cfg *config.MailConfig, log zerolog.Logger) *Mailer {
	var sender Sender
	if cfg.Host != "" {
		sender = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return NewMailerWithSender(sender, cfg, log)
}

// NewMailerWithSender creates a mailer that delivers through sender
func NewMailerWithSender(sender Sender, cfg *config.MailConfig, log zerolog.Logger) *Mailer {
	return &Mailer{
		sender:     sender,
		from:       cfg.From,
		fromName:   cfg.FromName,
		recipients: cfg.AdminRecipients,
		log:        log.With().Str("component", "mailer").Logger(),
	}
}

// IsConfigured reports whether mail can be sent
func (m *Mailer) IsConfigured() bool {
	return m != nil && m.sender != nil && m.from != "" && len(m.recipients) > 0
}

// BlogSubmitted tells administrators a user submitted a blog for review
func (m *Mailer) BlogSubmitted(blog *models.Blog, author *models.User) {
	if !m.IsConfigured() || blog == nil {
		return
	}

	authorName := "A user"
	if author != nil {
		authorName = fmt.Sprintf("%s <%s>", author.Name, author.Email)
	}

	subject := fmt.Sprintf("Blog awaiting review: %s", blog.Title)
	var body strings.Builder
	fmt.Fprintf(&body, "%s submitted a blog for review.\n\n", authorName)
	fmt.Fprintf(&body, "Title: %s\n", blog.Title)
	if blog.Description != "" {
		fmt.Fprintf(&body, "Description: %s\n", blog.Description)
	}
	fmt.Fprintf(&body, "Slug: %s\nID: %s\n", blog.Slug, blog.ID)

	m.send(subject, body.String(), blog.ID)
}

func (m *Mailer) send(subject, body, ref string) {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, m.fromName)
	msg.SetHeader("To", m.recipients...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.sender.DialAndSend(msg); err != nil {
			m.log.Error().Err(err).Str("ref", ref).Msg("Failed to send notification")
			return
		}
		m.log.Debug().Str("ref", ref).Msg("Notification sent")
	}()
}

// Wait blocks until queued notifications are delivered or failed
func (m *Mailer) Wait() {
	if m != nil {
		m.wg.Wait()
	}
}
