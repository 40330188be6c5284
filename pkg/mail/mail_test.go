package mail

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudays/sudays-backend/config"
	"github.com/sudays/sudays-backend/pkg/logger"
)

func TestNewSender(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.EmailConfig
		want    interface{}
		wantErr bool
	}{
		{
			name: "Console provider",
			cfg:  config.EmailConfig{Provider: "console"},
			want: &ConsoleSender{},
		},
		{
			name: "SMTP without credentials falls back to console",
			cfg:  config.EmailConfig{Provider: "smtp", SMTPHost: "smtp.example.com"},
			want: &ConsoleSender{},
		},
		{
			name: "SMTP with credentials",
			cfg: config.EmailConfig{
				Provider:     "smtp",
				SMTPHost:     "smtp.example.com",
				SMTPPort:     "587",
				SMTPUsername: "user",
				SMTPPassword: "pass",
			},
			want: &SMTPSender{},
		},
		{
			name: "Resend with key",
			cfg:  config.EmailConfig{Provider: "resend", ResendAPIKey: "re_test", FromEmail: "noreply@sudays.app"},
			want: &ResendSender{},
		},
		{
			name:    "Resend without key",
			cfg:     config.EmailConfig{Provider: "resend"},
			wantErr: true,
		},
		{
			name:    "Unknown provider",
			cfg:     config.EmailConfig{Provider: "pigeon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender, err := NewSender(tt.cfg, logger.Nop())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, sender)
		})
	}
}

func TestSMTPSender_FromDefaultsToUsername(t *testing.T) {
	s := NewSMTPSender(config.EmailConfig{SMTPUsername: "me@example.com"})
	assert.Equal(t, "me@example.com", s.from)
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("Sudays <noreply@sudays.app>", "a@example.com", "[Sudays] 이메일 인증코드", "<p>hi</p>"))
	assert.True(t, strings.HasPrefix(msg, "From: Sudays <noreply@sudays.app>\r\n"))
	assert.Contains(t, msg, "Content-Type: text/html; charset=UTF-8\r\n\r\n<p>hi</p>")
}

func TestConsoleSender(t *testing.T) {
	assert.NoError(t, NewConsoleSender(logger.Nop()).Send(context.Background(), "a@example.com", "s", "b"))
}

func TestConsoleSender_BodyOnlyAtDebug(t *testing.T) {
	tests := []struct {
		level    string
		wantBody bool
	}{
		{"info", false},
		{"debug", true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := logger.New(logger.Config{Level: tt.level, Format: "json", Output: &buf})

			require.NoError(t, NewConsoleSender(log).Send(context.Background(), "a@example.com", "인증코드", "<p>code 482913</p>"))

			out := buf.String()
			assert.Contains(t, out, "a@example.com")
			assert.Equal(t, tt.wantBody, strings.Contains(out, "482913"))
		})
	}
}

func TestSMTPSender_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewSMTPSender(config.EmailConfig{SMTPHost: "127.0.0.1", SMTPPort: "1"})
	assert.ErrorIs(t, s.Send(ctx, "a@example.com", "s", "b"), context.Canceled)
}
