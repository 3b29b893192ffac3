package stripe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripeapi "github.com/stripe/stripe-go/v81"

	"github.com/plantnet/plantnet-api/internal/domains/orders/domain"
	"github.com/plantnet/plantnet-api/internal/domains/orders/ports"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *Gateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	backend := stripeapi.GetBackendWithConfig(stripeapi.APIBackend, &stripeapi.BackendConfig{
		URL:               stripeapi.String(srv.URL),
		MaxNetworkRetries: stripeapi.Int64(0),
		LeveledLogger:     &stripeapi.LeveledLogger{Level: stripeapi.LevelNull},
	})
	gw, err := NewWithBackends("sk_test_123", &stripeapi.Backends{API: backend, Connect: backend, Uploads: backend})
	require.NoError(t, err)
	return gw
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(" ")
	assert.ErrorIs(t, err, ErrMissingKey)
}

func TestCreateIntent(t *testing.T) {
	var form map[string][]string
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/payment_intents", r.URL.Path)
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_123","object":"payment_intent","amount":3750,"currency":"usd","client_secret":"pi_123_secret_abc","status":"requires_payment_method"}`))
	})

	intent, err := gw.CreateIntent(context.Background(), domain.IntentRequest{Amount: 3750, Currency: "usd", PlantID: "p1", Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, "pi_123_secret_abc", intent.ClientSecret)
	assert.Equal(t, int64(3750), intent.Amount)
	assert.Equal(t, []string{"3750"}, form["amount"])
	assert.Equal(t, []string{"true"}, form["automatic_payment_methods[enabled]"])
	assert.Equal(t, []string{"p1"}, form["metadata[plantId]"])
	assert.Equal(t, []string{"3"}, form["metadata[quantity]"])
	assert.False(t, intent.Succeeded())
}

func TestGetIntent_Succeeded(t *testing.T) {
	var query string
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment_intents/pi_9", r.URL.Path)
		query = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_9","object":"payment_intent","amount":500,"amount_received":500,"currency":"usd","status":"succeeded",
			"metadata":{"plantId":"p1","quantity":"1"},
			"latest_charge":{"id":"ch_1","object":"charge","amount":500,"amount_refunded":0}}`))
	})

	intent, err := gw.GetIntent(context.Background(), "pi_9")
	require.NoError(t, err)
	assert.Contains(t, query, "latest_charge")
	assert.True(t, intent.Succeeded())
	assert.False(t, intent.Refunded())
	assert.Equal(t, int64(500), intent.AmountReceived)
	assert.Equal(t, "p1", intent.PlantID)
	assert.Equal(t, 1, intent.Quantity)
}

func TestGetIntent_RefundedChargeKeepsSucceededStatus(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_r","object":"payment_intent","amount":500,"amount_received":500,"currency":"usd","status":"succeeded",
			"latest_charge":{"id":"ch_r","object":"charge","amount":500,"amount_refunded":500,"refunded":true}}`))
	})

	intent, err := gw.GetIntent(context.Background(), "pi_r")
	require.NoError(t, err)
	assert.True(t, intent.Succeeded())
	assert.True(t, intent.Refunded())
	assert.Equal(t, int64(500), intent.AmountRefunded)
}

func TestCardErrorsAreDeclines(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`))
	})

	_, err := gw.CreateIntent(context.Background(), domain.IntentRequest{Amount: 100, Currency: "usd"})
	require.ErrorIs(t, err, ports.ErrPaymentDeclined)
}

func TestProviderErrors(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Invalid API Key provided"}}`))
	})

	err := gw.Refund(context.Background(), "pi_1")
	require.ErrorIs(t, err, ports.ErrPaymentProvider)
}

func TestMissingIntentIsNotCompleted(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","code":"resource_missing","message":"No such payment_intent"}}`))
	})

	_, err := gw.GetIntent(context.Background(), "pi_missing")
	require.ErrorIs(t, err, ports.ErrPaymentNotCompleted)
}
