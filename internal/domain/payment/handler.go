package payment

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/cinepass/cinepass-api/internal/middleware"
	"github.com/cinepass/cinepass-api/internal/pkg/paystack"
	"github.com/cinepass/cinepass-api/internal/pkg/response"
	"github.com/cinepass/cinepass-api/internal/pkg/validator"
)

const maxWebhookBody = 1 << 20 // 1 MiB

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Fund handles POST /payments/fund. Starts a hosted-payment session for
// the authenticated user's wallet.
func (h *Handler) Fund(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req FundRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.BadRequest(w, "invalid amount")
		return
	}

	result, err := h.svc.InitializeFundingForUser(r.Context(), userID, amount)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidAmount):
			response.BadRequest(w, "amount must be positive with at most two fraction digits")
		case errors.Is(err, ErrUserNotFound):
			response.NotFound(w, "user not found")
		default:
			log.Error().Err(err).Msg("funding initialize failed")
			response.InternalError(w)
		}
		return
	}

	if !result.Success {
		response.Error(w, http.StatusBadGateway, "PROVIDER_ERROR", result.Message)
		return
	}

	response.OK(w, FundResponse{
		AuthorizationURL: result.AuthorizationURL,
		AccessCode:       result.AccessCode,
		Reference:        result.Reference,
	})
}

// Webhook handles POST /webhooks/paystack. The signature is verified
// against the raw body before anything is parsed; forged callbacks never
// reach the ledger.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	rawBody, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		response.BadRequest(w, "unreadable body")
		return
	}
	defer r.Body.Close()

	signature := r.Header.Get(paystack.SignatureHeader)
	if !h.svc.VerifySignature(rawBody, signature) {
		log.Warn().Str("ip", r.RemoteAddr).Msg("webhook signature rejected")
		response.BadRequest(w, "invalid signature")
		return
	}

	var event WebhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		response.BadRequest(w, "invalid payload")
		return
	}

	result, err := h.svc.HandleEvent(r.Context(), &event)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Warn().Str("event", event.Event).Msg("webhook for unknown user")
			response.NotFound(w, "user not found")
			return
		}
		log.Error().Err(err).Str("reference", event.Data.Reference).Msg("webhook apply failed")
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{
		"status":   "received",
		"skipped":  result.Skipped,
		"credited": result.Credited,
	})
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/fund", h.Fund)
	return r
}

// WebhookRoutes are mounted outside the authenticated API surface; the
// HMAC signature is the only gate.
func (h *Handler) WebhookRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/paystack", h.Webhook)
	return r
}
