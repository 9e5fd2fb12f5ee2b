package paystack

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyTransaction_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/ref_123", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"message":"Verification successful",
			"data":{"reference":"ref_123","status":"success","amount":250050,"currency":"NGN","channel":"card"}}`))
	}))
	defer srv.Close()

	tx, err := NewClient(srv.URL, "sk_test").VerifyTransaction(context.Background(), "ref_123")
	require.NoError(t, err)
	assert.Equal(t, "ref_123", tx.Reference)
	assert.InDelta(t, 2500.50, tx.Amount, 0.001)
	assert.Equal(t, "card", tx.Channel)
}

func TestVerifyTransaction_Abandoned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":true,"message":"Verification successful","data":{"status":"abandoned","amount":1000}}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "sk_test").VerifyTransaction(context.Background(), "ref_x")
	assert.ErrorIs(t, err, ErrVerificationFailed)
}

func TestVerifyTransaction_GatewayRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":false,"message":"Transaction reference not found"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "sk_test").VerifyTransaction(context.Background(), "missing")
	require.ErrorIs(t, err, ErrVerificationFailed)
	assert.Contains(t, err.Error(), "Transaction reference not found")
}

func TestVerifyTransaction_EmptyReference(t *testing.T) {
	_, err := NewClient("", "sk").VerifyTransaction(context.Background(), "")
	assert.Error(t, err)
}

func TestVerifyTransaction_GatewayDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "sk_test").VerifyTransaction(context.Background(), "ref_1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrVerificationFailed)

	srv.Close()
	_, err = NewClient(srv.URL, "sk_test").VerifyTransaction(context.Background(), "ref_1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrVerificationFailed)
}

func TestVerifyTransaction_HonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent with a cancelled context")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(srv.URL, "sk_test").VerifyTransaction(ctx, "ref_1")
	assert.ErrorIs(t, err, context.Canceled)
}
