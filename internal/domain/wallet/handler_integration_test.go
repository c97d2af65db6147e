package wallet_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/cinepass/cinepass-api/internal/domain/wallet"
	"github.com/cinepass/cinepass-api/internal/middleware"
	"github.com/cinepass/cinepass-api/internal/pkg/jwt"
)

type walletAPIResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Balance      string `json:"balance"`
		Currency     string `json:"currency"`
		HasPaidToday bool   `json:"has_paid_today"`
		Paid         bool   `json:"paid"`
		Amount       string `json:"amount"`
	} `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestWalletEndpointsIntegration(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(db)

	userID := createTestUser(t, db, "api_owner@test.com")
	createTestUser(t, db, "api_peer@test.com")

	repo, svc := newTestService(db)
	seedBalance(t, repo, userID, decimal.NewFromInt(1000))

	h := wallet.NewHandler(svc, decimal.RequireFromString("500.00"))

	jwtSvc := jwt.NewService("wallet-integration-secret", time.Hour, 24*time.Hour)
	token, err := jwtSvc.GenerateAccessToken(userID, "user")
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}

	r := chi.NewRouter()
	r.Mount("/api/v1/wallet", h.Routes(middleware.Auth(jwtSvc)))

	t.Run("GET /me initial", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodGet, "/api/v1/wallet/me", nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.Code)
		}
		body := decodeWalletResponse(t, resp)
		if !body.Success || body.Data.Balance != "1000.00" {
			t.Fatalf("expected balance 1000.00, got success=%v balance=%s", body.Success, body.Data.Balance)
		}
		if body.Data.Currency != "NGN" {
			t.Fatalf("expected NGN currency, got %s", body.Data.Currency)
		}
		if body.Data.HasPaidToday {
			t.Fatal("expected has_paid_today=false before payment")
		}
	})

	t.Run("POST /transfer", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodPost, "/api/v1/wallet/transfer", map[string]interface{}{
			"destination_email": "api_peer@test.com",
			"amount":            "250.00",
		})
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.Code)
		}
		body := decodeWalletResponse(t, resp)
		if !body.Success || body.Data.Balance != "750.00" {
			t.Fatalf("expected balance 750.00 after transfer, got success=%v balance=%s", body.Success, body.Data.Balance)
		}
	})

	t.Run("POST /transfer insufficient", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodPost, "/api/v1/wallet/transfer", map[string]interface{}{
			"destination_email": "api_peer@test.com",
			"amount":            "9999.00",
		})
		if resp.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", resp.Code)
		}
	})

	t.Run("POST /transfer unknown destination", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodPost, "/api/v1/wallet/transfer", map[string]interface{}{
			"destination_email": "missing@test.com",
			"amount":            "10.00",
		})
		if resp.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.Code)
		}
	})

	t.Run("POST /transfer malformed amount", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodPost, "/api/v1/wallet/transfer", map[string]interface{}{
			"destination_email": "api_peer@test.com",
			"amount":            "12.345",
		})
		if resp.Code != http.StatusUnprocessableEntity && resp.Code != http.StatusBadRequest {
			t.Fatalf("expected validation failure, got %d", resp.Code)
		}
	})

	t.Run("POST /pay", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodPost, "/api/v1/wallet/pay", nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.Code)
		}
		body := decodeWalletResponse(t, resp)
		if !body.Success || !body.Data.Paid || body.Data.Amount != "500.00" {
			t.Fatalf("expected paid=true amount=500.00, got %+v", body.Data)
		}
	})

	t.Run("POST /pay twice is conflict", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodPost, "/api/v1/wallet/pay", nil)
		if resp.Code != http.StatusConflict {
			t.Fatalf("expected 409 on second pay, got %d", resp.Code)
		}
	})

	t.Run("GET /me final", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodGet, "/api/v1/wallet/me", nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.Code)
		}
		body := decodeWalletResponse(t, resp)
		if body.Data.Balance != "250.00" {
			t.Fatalf("expected final balance 250.00, got %s", body.Data.Balance)
		}
		if !body.Data.HasPaidToday {
			t.Fatal("expected has_paid_today=true after payment")
		}
	})

	t.Run("JWT required", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/wallet/me", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 without jwt, got %d", rec.Code)
		}
	})
}

func performWalletRequest(t *testing.T, handler http.Handler, token, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload failed: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeWalletResponse(t *testing.T, rec *httptest.ResponseRecorder) walletAPIResponse {
	t.Helper()
	var body walletAPIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	return body
}
