package wallet

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// OwnerDirectory resolves wallet owners. Implemented by the user domain.
// OwnerIDByEmail returns uuid.Nil when the email is unknown.
type OwnerDirectory interface {
	OwnerIDByEmail(ctx context.Context, email string) (uuid.UUID, error)
}

type Service struct {
	repo   *Repository
	owners OwnerDirectory
	window time.Duration
}

// Summary is the wallet state reported to API callers
type Summary struct {
	Balance      decimal.Decimal `json:"balance"`
	Currency     string          `json:"currency"`
	HasPaidToday bool            `json:"has_paid_today"`
}

func NewService(repo *Repository, owners OwnerDirectory, window time.Duration) *Service {
	return &Service{repo: repo, owners: owners, window: window}
}

// EnsureWallet creates the user's zero-balance wallet if missing
func (s *Service) EnsureWallet(ctx context.Context, userID uuid.UUID) error {
	return s.repo.EnsureWallet(ctx, userID)
}

// Summary returns balance, currency and the daily-access entitlement state
func (s *Service) Summary(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	w, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, ErrNoWallet
	}

	paid, err := s.repo.HasPaidWithinWindow(ctx, w.ID, s.window)
	if err != nil {
		return nil, err
	}

	return &Summary{Balance: w.Balance, Currency: w.Currency, HasPaidToday: paid}, nil
}

// HasPaidToday reports the entitlement state for a user, false when the
// user has no wallet yet.
func (s *Service) HasPaidToday(ctx context.Context, userID uuid.UUID) (bool, error) {
	w, err := s.repo.GetByUserID(ctx, userID)
	if err != nil || w == nil {
		return false, err
	}
	return s.repo.HasPaidWithinWindow(ctx, w.ID, s.window)
}

// Transfer moves amount from the caller's wallet to the wallet of the user
// registered under toEmail.
func (s *Service) Transfer(ctx context.Context, fromUserID uuid.UUID, toEmail string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	toUserID, err := s.owners.OwnerIDByEmail(ctx, toEmail)
	if err != nil {
		return err
	}
	if toUserID == uuid.Nil {
		return ErrDestinationNotFound
	}

	fromWallet, err := s.repo.GetByUserID(ctx, fromUserID)
	if err != nil {
		return err
	}
	if fromWallet == nil {
		return ErrNoWallet
	}

	if err := s.repo.EnsureWallet(ctx, toUserID); err != nil {
		return err
	}
	toWallet, err := s.repo.GetByUserID(ctx, toUserID)
	if err != nil {
		return err
	}
	if toWallet == nil {
		return ErrDestinationNotFound
	}

	if fromWallet.ID == toWallet.ID {
		return ErrSelfTransfer
	}

	if err := s.repo.Transfer(ctx, fromWallet.ID, toWallet.ID, amount); err != nil {
		return err
	}

	log.Info().
		Str("from_wallet", fromWallet.ID.String()).
		Str("to_wallet", toWallet.ID.String()).
		Str("amount", amount.String()).
		Msg("wallet transfer applied")
	return nil
}

// PayForToday debits the daily access price once per rolling window. The
// pre-check avoids taking the row lock for callers that already paid; the
// repository re-validates both the entitlement and the balance under the
// lock before debiting.
func (s *Service) PayForToday(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	w, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if w == nil {
		return ErrNoWallet
	}

	paid, err := s.repo.HasPaidWithinWindow(ctx, w.ID, s.window)
	if err != nil {
		return err
	}
	if paid {
		return ErrAlreadyPaidToday
	}

	if err := s.repo.PayDailyAccess(ctx, w.ID, amount, s.window); err != nil {
		return err
	}

	log.Info().
		Str("wallet_id", w.ID.String()).
		Str("amount", amount.String()).
		Msg("daily access payment applied")
	return nil
}
