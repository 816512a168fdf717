package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailSenderRequiresFields(t *testing.T) {
	sender := NewEmailSender(EmailConfig{
		Host: "localhost",
		Port: 1025,
		From: "noreply@example.com",
	})

	tests := []struct {
		name    string
		config  map[string]any
		wantErr string
	}{
		{
			name: "missing recipient",
			config: map[string]any{
				"subject": "Digest",
				"body":    "hello",
			},
			wantErr: "recipient",
		},
		{
			name: "missing subject",
			config: map[string]any{
				"recipient": "user@example.com",
				"body":      "hello",
			},
			wantErr: "subject",
		},
		{
			name: "missing body",
			config: map[string]any{
				"recipient": "user@example.com",
				"subject":   "Digest",
			},
			wantErr: "body",
		},
		{
			name: "blank body",
			config: map[string]any{
				"recipient": "user@example.com",
				"subject":   "Digest",
				"body":      "   ",
			},
			wantErr: "body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sender.Invoke(context.Background(), tt.config)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestEmailSenderRejectsMalformedAddresses(t *testing.T) {
	sender := NewEmailSender(EmailConfig{
		Host: "localhost",
		Port: 1025,
		From: "noreply@example.com",
	})

	_, err := sender.Invoke(context.Background(), map[string]any{
		"recipient": "not-an-address",
		"subject":   "Digest",
		"body":      "hello",
	})
	assert.ErrorContains(t, err, "recipient")
}
