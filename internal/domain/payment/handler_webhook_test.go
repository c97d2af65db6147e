package payment_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cinepass/cinepass-api/internal/domain/payment"
	"github.com/cinepass/cinepass-api/internal/pkg/paystack"
)

// The signature gate runs before any parsing or database work, so these
// paths need no backing store.
func newWebhookServer(secret string) *httptest.Server {
	svc := payment.NewService(nil, nil, nil, secret, "", "")
	return httptest.NewServer(payment.NewHandler(svc).WebhookRoutes())
}

func postWebhook(t *testing.T, url string, body []byte, signature string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url+"/paystack", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("build request failed: %v", err)
	}
	if signature != "" {
		req.Header.Set(paystack.SignatureHeader, signature)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	srv := newWebhookServer("whsec_test")
	defer srv.Close()

	resp := postWebhook(t, srv.URL, []byte(`{"event":"charge.success"}`), "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestWebhookRejectsForgedSignature(t *testing.T) {
	srv := newWebhookServer("whsec_test")
	defer srv.Close()

	body := []byte(`{"event":"charge.success","data":{"reference":"ref-1","amount":100000}}`)
	forged := paystack.GenerateSignature(body, "whsec_wrong")

	resp := postWebhook(t, srv.URL, body, forged)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestWebhookRejectsTamperedBody(t *testing.T) {
	srv := newWebhookServer("whsec_test")
	defer srv.Close()

	signed := []byte(`{"event":"charge.success","data":{"amount":100}}`)
	sig := paystack.GenerateSignature(signed, "whsec_test")

	tampered := []byte(`{"event":"charge.success","data":{"amount":999999}}`)
	resp := postWebhook(t, srv.URL, tampered, sig)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestWebhookRejectsMalformedPayload(t *testing.T) {
	srv := newWebhookServer("whsec_test")
	defer srv.Close()

	body := []byte(`not json`)
	sig := paystack.GenerateSignature(body, "whsec_test")

	resp := postWebhook(t, srv.URL, body, sig)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestWebhookAcknowledgesIgnoredEvents(t *testing.T) {
	srv := newWebhookServer("whsec_test")
	defer srv.Close()

	// Events other than charge.success are acknowledged without touching
	// the ledger.
	body := []byte(`{"event":"transfer.success","data":{"reference":"ref-1"}}`)
	sig := paystack.GenerateSignature(body, "whsec_test")

	resp := postWebhook(t, srv.URL, body, sig)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
