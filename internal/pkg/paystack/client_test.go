package paystack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_abc", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req InitializeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "customer@test.com", req.Email)
		assert.Equal(t, int64(100000), req.Amount)

		json.NewEncoder(w).Encode(InitializeResponse{
			Status:  true,
			Message: "Authorization URL created",
			Data: InitializeData{
				AuthorizationURL: "https://checkout.paystack.com/abc123",
				AccessCode:       "abc123",
				Reference:        "ref-abc123",
			},
		})
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, SecretKey: "sk_test_abc"})

	resp, err := client.InitializeTransaction(context.Background(), InitializeRequest{
		Email:  "customer@test.com",
		Amount: 100000,
	})
	require.NoError(t, err)
	assert.True(t, resp.Status)
	assert.Equal(t, "ref-abc123", resp.Data.Reference)
	assert.Equal(t, "https://checkout.paystack.com/abc123", resp.Data.AuthorizationURL)
}

func TestInitializeTransactionDeclined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(InitializeResponse{
			Status:  false,
			Message: "Invalid amount",
		})
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, SecretKey: "sk_test_abc"})

	// A decline is a parseable response, not a transport error.
	resp, err := client.InitializeTransaction(context.Background(), InitializeRequest{
		Email:  "customer@test.com",
		Amount: 100,
	})
	require.NoError(t, err)
	assert.False(t, resp.Status)
	assert.Equal(t, "Invalid amount", resp.Message)
}

func TestInitializeTransactionServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, SecretKey: "sk_test_abc"})

	_, err := client.InitializeTransaction(context.Background(), InitializeRequest{
		Email:  "customer@test.com",
		Amount: 100000,
	})
	assert.Error(t, err)
}
