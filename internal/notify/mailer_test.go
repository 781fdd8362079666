package notify

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/portfolio-blog-api/internal/config"
	"github.com/portfolio-blog-api/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type captureSender struct {
	mu   sync.Mutex
	msgs []*gomail.Message
	err  error
}

func (c *captureSender) DialAndSend(m ...*gomail.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, m...)
	return c.err
}

func mailConfig() *config.MailConfig {
	return &config.MailConfig{
		From:            "noreply@example.com",
		FromName:        "Portfolio",
		AdminRecipients: []string{"admin@example.com", "editor@example.com"},
	}
}

func TestIsConfigured(t *testing.T) {
	var nilMailer *Mailer
	assert.False(t, nilMailer.IsConfigured())

	assert.False(t, NewMailer(&config.MailConfig{}, zerolog.Nop()).IsConfigured())
	assert.False(t, NewMailerWithSender(&captureSender{}, &config.MailConfig{From: "a@b.c"}, zerolog.Nop()).IsConfigured())
	assert.True(t, NewMailerWithSender(&captureSender{}, mailConfig(), zerolog.Nop()).IsConfigured())
}

func TestBlogSubmitted(t *testing.T) {
	sender := &captureSender{}
	m := NewMailerWithSender(sender, mailConfig(), zerolog.Nop())

	m.BlogSubmitted(
		&models.Blog{ID: "b1", Title: "Hello", Slug: "hello", Description: "First post"},
		&models.User{Name: "Ada", Email: "ada@example.com"},
	)
	m.Wait()

	require.Len(t, sender.msgs, 1)
	msg := sender.msgs[0]
	assert.Equal(t, []string{"Blog awaiting review: Hello"}, msg.GetHeader("Subject"))
	assert.Equal(t, []string{"admin@example.com", "editor@example.com"}, msg.GetHeader("To"))

	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Ada <ada@example.com> submitted a blog for review.")
}

func TestBlogSubmitted_SendFailureIsLogged(t *testing.T) {
	sender := &captureSender{err: errors.New("smtp down")}
	m := NewMailerWithSender(sender, mailConfig(), zerolog.Nop())

	m.BlogSubmitted(&models.Blog{ID: "b1", Title: "Hello"}, nil)
	m.Wait()
	assert.Len(t, sender.msgs, 1)
}

func TestBlogSubmitted_NotConfigured(t *testing.T) {
	sender := &captureSender{}
	m := NewMailerWithSender(sender, &config.MailConfig{}, zerolog.Nop())

	m.BlogSubmitted(&models.Blog{ID: "b1", Title: "Hello"}, nil)
	m.Wait()
	assert.Empty(t, sender.msgs)
}
