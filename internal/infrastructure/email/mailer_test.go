package email

import (
	"context"
	"errors"
	"testing"

	"MarketDigest/internal/config"
	"MarketDigest/internal/domain"
)

func TestDeliverRejectsMisconfiguredMailer(t *testing.T) {
	t.Parallel()

	m := NewMailer(config.EmailConfig{}, nil)

	err := m.Deliver(context.Background(), domain.Digest{Subject: "s", Body: "b"})

	var deliveryErr *domain.DeliveryError
	if !errors.As(err, &deliveryErr) {
		t.Fatalf("expected DeliveryError, got %v", err)
	}
}

func TestDeliverRequiresRecipient(t *testing.T) {
	t.Parallel()

	m := NewMailer(config.EmailConfig{
		Host:     "smtp.example.org",
		Username: "sender@example.org",
		Password: "pass",
	}, nil)

	err := m.Deliver(context.Background(), domain.Digest{Subject: "s", Body: "b"})

	var deliveryErr *domain.DeliveryError
	if !errors.As(err, &deliveryErr) {
		t.Fatalf("expected DeliveryError, got %v", err)
	}
}

func TestFromFallsBackToUsername(t *testing.T) {
	t.Parallel()

	m := NewMailer(config.EmailConfig{Username: "sender@example.org"}, nil)
	if m.from() != "sender@example.org" {
		t.Fatalf("unexpected sender: %s", m.from())
	}

	m = NewMailer(config.EmailConfig{Username: "u@example.org", From: "noreply@example.org"}, nil)
	if m.from() != "noreply@example.org" {
		t.Fatalf("explicit sender not used: %s", m.from())
	}
}
