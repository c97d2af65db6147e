package payment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/cinepass/cinepass-api/internal/domain/user"
	"github.com/cinepass/cinepass-api/internal/domain/wallet"
	"github.com/cinepass/cinepass-api/internal/pkg/paystack"
)

// Service reconciles external payment-provider flows with the wallet
// ledger: initialize creates a hosted session plus a pending transaction,
// the webhook confirms it exactly once.
type Service struct {
	client        paystack.API
	users         user.Repository
	wallets       *wallet.Repository
	webhookSecret string
	callbackURL   string
	cancelURL     string
}

func NewService(client paystack.API, users user.Repository, wallets *wallet.Repository, webhookSecret, callbackURL, cancelURL string) *Service {
	return &Service{
		client:        client,
		users:         users,
		wallets:       wallets,
		webhookSecret: webhookSecret,
		callbackURL:   callbackURL,
		cancelURL:     cancelURL,
	}
}

// FundingResult is the outcome of an initialize call. Provider declines and
// outages are reported through Success=false rather than an error: they are
// expected outcomes surfaced to the end user.
type FundingResult struct {
	Success          bool
	Message          string
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// EventResult describes what a webhook delivery did to the ledger
type EventResult struct {
	Skipped  bool
	Credited bool
}

// InitializeFunding starts a hosted-payment session for the given email and
// records a pending fund transaction keyed by the provider's reference.
func (s *Service) InitializeFunding(ctx context.Context, email string, amount decimal.Decimal) (*FundingResult, error) {
	minor, err := minorUnits(amount)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.InitializeTransaction(ctx, paystack.InitializeRequest{
		Email:       email,
		Amount:      minor,
		CallbackURL: s.callbackURL,
		Metadata:    map[string]string{"cancel_action": s.cancelURL},
	})
	if err != nil {
		log.Warn().Err(err).Str("email", email).Msg("paystack initialize failed")
		return &FundingResult{Success: false, Message: "Payment provider unavailable, please try again later"}, nil
	}
	if !resp.Status || resp.Data.Reference == "" {
		msg := resp.Message
		if msg == "" {
			msg = "Failed to initialize payment"
		}
		return &FundingResult{Success: false, Message: msg}, nil
	}

	// Record the pending attempt when the email maps to a wallet. An
	// unknown email is not fatal: the webhook path resolves the wallet
	// from the event's customer email and creates the entry then.
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u != nil {
		if err := s.wallets.EnsureWallet(ctx, u.ID); err != nil {
			return nil, err
		}
		w, err := s.wallets.GetByUserID(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		if err := s.wallets.CreatePendingFunding(ctx, w.ID, amount, resp.Data.Reference); err != nil {
			if !errors.Is(err, wallet.ErrDuplicateReference) {
				return nil, err
			}
			log.Warn().Str("reference", resp.Data.Reference).Msg("funding reference already recorded")
		}
	}

	log.Info().
		Str("email", email).
		Str("reference", resp.Data.Reference).
		Str("amount", amount.String()).
		Msg("funding session initialized")

	return &FundingResult{
		Success:          true,
		AuthorizationURL: resp.Data.AuthorizationURL,
		AccessCode:       resp.Data.AccessCode,
		Reference:        resp.Data.Reference,
	}, nil
}

// InitializeFundingForUser starts a funding session for a registered user
func (s *Service) InitializeFundingForUser(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*FundingResult, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return s.InitializeFunding(ctx, u.Email, amount)
}

// VerifySignature checks the webhook HMAC against the raw request body.
// Must pass before the payload is parsed or any database work happens.
func (s *Service) VerifySignature(rawBody []byte, signature string) bool {
	return paystack.VerifySignature(rawBody, signature, s.webhookSecret)
}

// HandleEvent applies a verified provider event to the ledger. Replays of a
// settled reference are no-ops; an event whose reference was never recorded
// is applied against the wallet resolved from the customer email.
func (s *Service) HandleEvent(ctx context.Context, event *WebhookEvent) (*EventResult, error) {
	if event.Event != "charge.success" {
		return &EventResult{Skipped: true}, nil
	}

	// Provider amounts are integer minor units; scale by -2 keeps the
	// conversion exact.
	amount := decimal.New(event.Data.Amount, -2)

	credited, err := s.wallets.SettleFundingByReference(ctx, event.Data.Reference, amount)
	if err == nil {
		if credited {
			log.Info().Str("reference", event.Data.Reference).Str("amount", amount.String()).Msg("funding settled")
		} else {
			log.Info().Str("reference", event.Data.Reference).Msg("webhook replay ignored")
		}
		return &EventResult{Credited: credited}, nil
	}
	if !errors.Is(err, wallet.ErrReferenceNotFound) {
		return nil, err
	}

	// No pending transaction for this reference: initialize was skipped or
	// its write never landed. Resolve the wallet from the event itself.
	email := event.Data.Customer.Email
	if email == "" {
		return nil, ErrUserNotFound
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	if err := s.wallets.EnsureWallet(ctx, u.ID); err != nil {
		return nil, err
	}
	w, err := s.wallets.GetByUserID(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	if err := s.wallets.CreateSettledDeposit(ctx, w.ID, amount, event.Data.Reference); err != nil {
		// A concurrent delivery of the same event won the unique-reference
		// race; the credit is already applied.
		if errors.Is(err, wallet.ErrDuplicateReference) {
			return &EventResult{Credited: false}, nil
		}
		return nil, err
	}

	log.Info().
		Str("reference", event.Data.Reference).
		Str("wallet_id", w.ID.String()).
		Str("amount", amount.String()).
		Msg("deposit created from webhook")
	return &EventResult{Credited: true}, nil
}

// minorUnits converts a decimal major-unit amount into integer minor units.
// The amount must be positive with at most two fraction digits.
func minorUnits(amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() {
		return 0, ErrInvalidAmount
	}
	shifted := amount.Shift(2)
	if !shifted.IsInteger() {
		return 0, ErrInvalidAmount
	}
	return shifted.IntPart(), nil
}
