package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKeys = Keys{PublicKey: "pkey_test_1", SecretKey: "skey_test_1"}

// omiseStub answers POST /links like the Omise API
func omiseStub(t *testing.T, status int, body string) (*OmiseGateway, *int32, *map[string]any) {
	t.Helper()
	var hits int32
	got := map[string]any{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/links", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return &OmiseGateway{apiURL: srv.URL}, &hits, &got
}

func TestKeys_Enabled(t *testing.T) {
	assert.False(t, Keys{}.Enabled())
	assert.False(t, Keys{PublicKey: "pkey_test"}.Enabled())
	assert.True(t, Keys{PublicKey: "pkey_test", SecretKey: "skey_test"}.Enabled())
}

func TestOmiseGateway_DisabledWithoutKeys(t *testing.T) {
	g := NewOmiseGateway()

	_, err := g.CreateCheckout(context.Background(), Keys{}, CheckoutRequest{AmountCents: 1000, Currency: "usd"})
	assert.ErrorIs(t, err, ErrGatewayDisabled)
}

func TestOmiseGateway_RejectsNonPositiveAmount(t *testing.T) {
	g := NewOmiseGateway()

	_, err := g.CreateCheckout(context.Background(), testKeys, CheckoutRequest{AmountCents: 0, Currency: "usd"})
	assert.Error(t, err)
}

func TestOmiseGateway_CreatesLink(t *testing.T) {
	g, hits, got := omiseStub(t, http.StatusOK,
		`{"object":"link","id":"link_test_5x","amount":1500,"currency":"usd","payment_uri":"https://pay.omise.co/links/link_test_5x"}`)

	session, err := g.CreateCheckout(context.Background(), testKeys, CheckoutRequest{
		AmountCents: 1500,
		Currency:    "usd",
		Title:       "Algebra",
		Description: "Enrollment #7",
	})
	require.NoError(t, err)
	assert.Equal(t, "link_test_5x", session.ID)
	assert.Equal(t, "https://pay.omise.co/links/link_test_5x", session.URL)

	assert.EqualValues(t, 1, atomic.LoadInt32(hits))
	assert.EqualValues(t, 1500, (*got)["amount"])
	assert.Equal(t, "Algebra", (*got)["title"])
}

func TestOmiseGateway_ProviderError(t *testing.T) {
	g, _, _ := omiseStub(t, http.StatusBadRequest,
		`{"object":"error","code":"invalid_amount","message":"amount is invalid"}`)

	session, err := g.CreateCheckout(context.Background(), testKeys, CheckoutRequest{AmountCents: 1500, Currency: "usd"})
	require.Error(t, err)
	assert.Nil(t, session)
	assert.Contains(t, err.Error(), "create payment link")
}

func TestOmiseGateway_CancelledContext(t *testing.T) {
	g, hits, _ := omiseStub(t, http.StatusOK, `{"object":"link","id":"link_never"}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	session, err := g.CreateCheckout(ctx, testKeys, CheckoutRequest{AmountCents: 1500, Currency: "usd"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, session)
	assert.Zero(t, atomic.LoadInt32(hits))
}
