package api

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.temporal.io/sdk/client"

	orderworkflows "github.com/plantnet/plantnet-api/internal/domains/orders/adapters/workflows"
)

func TestTemporalPlacement(t *testing.T) {
	tests := []struct {
		name     string
		disabled bool
		driver   string
		payments string
		want     bool
		reason   string
	}{
		{"postgres with stripe", false, DriverPostgres, PaymentsStripe, true, ""},
		{"mongo with stripe", false, DriverMongo, PaymentsStripe, true, ""},
		{"disabled", true, DriverPostgres, PaymentsStripe, false, "TEMPORAL_DISABLED"},
		{"memory storage", false, DriverMemory, PaymentsStripe, false, "in-memory"},
		{"offline payments", false, DriverPostgres, PaymentsOffline, false, "offline payment gateway"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := temporalPlacement(Config{TemporalDisabled: tt.disabled}, tt.driver, tt.payments)
			assert.Equal(t, tt.want, ok)
			if tt.reason == "" {
				assert.Empty(t, reason)
			} else {
				assert.Contains(t, reason, tt.reason)
			}
		})
	}
}

type stubClient struct {
	client.Client
	closed bool
}

func (c *stubClient) Close() { c.closed = true }

func TestSelectOrderWorkflows(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("memory storage never dials", func(t *testing.T) {
		dialed := false
		flows, cleanup := selectOrderWorkflows(Config{}, &Storage{Driver: DriverMemory}, &Services{Payments: PaymentsStripe}, logger,
			func() (client.Client, error) { dialed = true; return &stubClient{}, nil })
		defer cleanup()
		assert.False(t, dialed)
		assert.IsType(t, &orderworkflows.InlineOrderWorkflows{}, flows)
	})

	t.Run("dial failure falls back inline", func(t *testing.T) {
		flows, cleanup := selectOrderWorkflows(Config{}, &Storage{Driver: DriverPostgres}, &Services{Payments: PaymentsStripe}, logger,
			func() (client.Client, error) { return nil, errors.New("connection refused") })
		defer cleanup()
		assert.IsType(t, &orderworkflows.InlineOrderWorkflows{}, flows)
	})

	t.Run("shared state uses temporal", func(t *testing.T) {
		stub := &stubClient{}
		flows, cleanup := selectOrderWorkflows(Config{}, &Storage{Driver: DriverPostgres}, &Services{Payments: PaymentsStripe}, logger,
			func() (client.Client, error) { return stub, nil })
		assert.IsType(t, &orderworkflows.TemporalOrderWorkflows{}, flows)
		cleanup()
		assert.True(t, stub.closed)
	})
}
