package wallet

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cinepass/cinepass-api/internal/middleware"
	"github.com/cinepass/cinepass-api/internal/pkg/response"
	"github.com/cinepass/cinepass-api/internal/pkg/validator"
)

type Handler struct {
	svc        *Service
	dailyPrice decimal.Decimal
}

func NewHandler(svc *Service, dailyPrice decimal.Decimal) *Handler {
	return &Handler{svc: svc, dailyPrice: dailyPrice}
}

// Me handles GET /wallet/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	summary, err := h.svc.Summary(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNoWallet) {
			response.NotFound(w, "wallet not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, SummaryResponse{
		Balance:      summary.Balance.StringFixed(2),
		Currency:     summary.Currency,
		HasPaidToday: summary.HasPaidToday,
	})
}

// Transfer handles POST /wallet/transfer
func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req TransferRequest
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

	if err := h.svc.Transfer(r.Context(), userID, req.DestinationEmail, amount); err != nil {
		h.writeServiceError(w, err)
		return
	}

	summary, err := h.svc.Summary(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, SummaryResponse{
		Balance:      summary.Balance.StringFixed(2),
		Currency:     summary.Currency,
		HasPaidToday: summary.HasPaidToday,
	})
}

// Pay handles POST /wallet/pay, debiting the configured daily access price
func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	if err := h.svc.PayForToday(r.Context(), userID, h.dailyPrice); err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"paid":   true,
		"amount": h.dailyPrice.StringFixed(2),
	})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		response.BadRequest(w, "amount must be greater than zero")
	case errors.Is(err, ErrSelfTransfer):
		response.BadRequest(w, "cannot transfer to your own wallet")
	case errors.Is(err, ErrDestinationNotFound):
		response.NotFound(w, "destination user not found")
	case errors.Is(err, ErrNoWallet):
		response.NotFound(w, "wallet not found")
	case errors.Is(err, ErrInsufficientFunds):
		response.Conflict(w, "insufficient wallet balance")
	case errors.Is(err, ErrAlreadyPaidToday):
		response.Conflict(w, "daily access already paid")
	case errors.Is(err, ErrLockTimeout):
		response.ServiceUnavailable(w, "wallet busy, re-check balance before retrying")
	default:
		response.InternalError(w)
	}
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/me", h.Me)
	r.Post("/transfer", h.Transfer)
	r.Post("/pay", h.Pay)
	return r
}
