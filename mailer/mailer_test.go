package mailer

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitshare/config"
	"fitshare/logger"
	"fitshare/models"
)

func TestSendVerification(t *testing.T) {
	m := New(config.MailConfig{Host: "smtp.example.com", Port: "587", User: "noreply@example.com", Password: "pw"}, logger.Discard())

	var gotAddr string
	var gotTo []string
	var gotMsg []byte
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, msg
		assert.Equal(t, "noreply@example.com", from)
		return nil
	}

	err := m.SendVerification(context.Background(), models.VerificationMail{
		Email: "ada@example.com",
		Name:  "Ada",
		Link:  "http://localhost:3000/verify/abc",
	})
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"ada@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Verify your email")
	assert.Contains(t, string(gotMsg), "http://localhost:3000/verify/abc")
}

func TestSendVerification_Disabled(t *testing.T) {
	m := New(config.MailConfig{}, logger.Discard())
	m.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send must not be called without a host")
		return nil
	}
	assert.NoError(t, m.SendVerification(context.Background(), models.VerificationMail{Email: "a@b.co"}))
}

func TestSendVerification_Failure(t *testing.T) {
	m := New(config.MailConfig{Host: "smtp.example.com", Port: "25"}, logger.Discard())
	m.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}
	err := m.SendVerification(context.Background(), models.VerificationMail{Email: "a@b.co"})
	assert.ErrorContains(t, err, "connection refused")
}
