package wallet

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Repository is the ledger store. Every balance mutation happens inside a
// single database transaction holding a FOR UPDATE lock on the wallet row,
// so concurrent mutations of one wallet serialize at the database.
type Repository struct {
	db          *sqlx.DB
	currency    string
	lockTimeout time.Duration
}

func NewRepository(db *sqlx.DB, currency string, lockTimeout time.Duration) *Repository {
	return &Repository{db: db, currency: currency, lockTimeout: lockTimeout}
}

// EnsureWallet creates a zero-balance wallet for the user if none exists
func (r *Repository) EnsureWallet(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO wallets (id, user_id, balance, currency)
		VALUES ($1, $2, 0, $3)
		ON CONFLICT (user_id) DO NOTHING
	`, uuid.New(), userID, r.currency)
	return err
}

// GetByUserID returns the user's wallet, nil when none exists
func (r *Repository) GetByUserID(ctx context.Context, userID uuid.UUID) (*Wallet, error) {
	var w Wallet
	err := r.db.GetContext(ctx, &w, `
		SELECT id, user_id, balance, currency, updated_at
		FROM wallets WHERE user_id = $1
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// TransactionByReference returns the ledger entry carrying the external
// provider reference, nil when none exists.
func (r *Repository) TransactionByReference(ctx context.Context, reference string) (*Transaction, error) {
	var t Transaction
	err := r.db.GetContext(ctx, &t, `
		SELECT id, wallet_id, type, amount, status, reference, created_at
		FROM transactions WHERE reference = $1
	`, reference)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// HasPaidWithinWindow reports whether the wallet has a successful "pay"
// transaction younger than the window. Read-only; uses a single "now".
func (r *Repository) HasPaidWithinWindow(ctx context.Context, walletID uuid.UUID, window time.Duration) (bool, error) {
	return hasPaidWithinWindow(ctx, r.db, walletID, window)
}

func hasPaidWithinWindow(ctx context.Context, q sqlx.QueryerContext, walletID uuid.UUID, window time.Duration) (bool, error) {
	var lastPaid time.Time
	err := sqlx.GetContext(ctx, q, &lastPaid, `
		SELECT created_at
		FROM transactions
		WHERE wallet_id = $1 AND type = $2 AND status = $3
		ORDER BY created_at DESC
		LIMIT 1
	`, walletID, TransactionTypePay, StatusSuccess)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()
	return now.Sub(lastPaid.UTC()) < window, nil
}

// Transfer atomically moves amount between two wallets and records the
// transfer_out/transfer_in pair. Both rows are locked in ascending wallet-id
// order so that opposite-direction transfers cannot deadlock.
func (r *Repository) Transfer(ctx context.Context, fromID, toID uuid.UUID, amount decimal.Decimal) error {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	firstID, secondID := fromID, toID
	if bytes.Compare(toID[:], fromID[:]) < 0 {
		firstID, secondID = toID, fromID
	}

	first, err := lockWallet(ctx, tx, firstID)
	if err != nil {
		return err
	}
	second, err := lockWallet(ctx, tx, secondID)
	if err != nil {
		return err
	}

	src, dst := first, second
	if src.ID != fromID {
		src, dst = second, first
	}

	// Re-checked under the lock: the balance seen before the lock was
	// acquired may be stale.
	if src.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}

	if err := updateBalance(ctx, tx, src.ID, src.Balance.Sub(amount)); err != nil {
		return err
	}
	if err := updateBalance(ctx, tx, dst.ID, dst.Balance.Add(amount)); err != nil {
		return err
	}

	if err := insertTransaction(ctx, tx, src.ID, TransactionTypeTransferOut, amount, StatusSuccess, nil); err != nil {
		return err
	}
	if err := insertTransaction(ctx, tx, dst.ID, TransactionTypeTransferIn, amount, StatusSuccess, nil); err != nil {
		return err
	}

	return tx.Commit()
}

// PayDailyAccess debits the wallet for the rolling 24h entitlement and
// records a success "pay" transaction. The entitlement is re-checked under
// the row lock so two concurrent calls cannot both debit.
func (r *Repository) PayDailyAccess(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal, window time.Duration) error {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	w, err := lockWallet(ctx, tx, walletID)
	if err != nil {
		return err
	}

	paid, err := hasPaidWithinWindow(ctx, tx, walletID, window)
	if err != nil {
		return err
	}
	if paid {
		return ErrAlreadyPaidToday
	}

	if w.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}

	if err := updateBalance(ctx, tx, walletID, w.Balance.Sub(amount)); err != nil {
		return err
	}
	if err := insertTransaction(ctx, tx, walletID, TransactionTypePay, amount, StatusSuccess, nil); err != nil {
		return err
	}

	return tx.Commit()
}

// CreatePendingFunding records an external funding attempt keyed by the
// provider reference, awaiting webhook confirmation.
func (r *Repository) CreatePendingFunding(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal, reference string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, wallet_id, type, amount, status, reference)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New(), walletID, TransactionTypeFund, amount, StatusPending, reference)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateReference
		}
		return err
	}
	return nil
}

// SettleFundingByReference confirms a previously recorded funding attempt:
// the pending transaction flips to success and the wallet is credited by
// the confirmed amount, atomically. Returns credited=false without touching
// the ledger when the reference was already settled (webhook replay).
// Returns ErrReferenceNotFound when no transaction carries the reference.
func (r *Repository) SettleFundingByReference(ctx context.Context, reference string, amount decimal.Decimal) (credited bool, err error) {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var t Transaction
	err = tx.GetContext(ctx, &t, `
		SELECT id, wallet_id, type, amount, status, reference, created_at
		FROM transactions WHERE reference = $1
		FOR UPDATE
	`, reference)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrReferenceNotFound
	}
	if err != nil {
		return false, mapLockError(err)
	}

	// Providers may redeliver webhooks; a settled reference is a no-op.
	if t.Status != StatusPending {
		return false, nil
	}

	w, err := lockWallet(ctx, tx, t.WalletID)
	if err != nil {
		return false, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE transactions SET status = $1 WHERE id = $2
	`, StatusSuccess, t.ID); err != nil {
		return false, err
	}
	if err := updateBalance(ctx, tx, w.ID, w.Balance.Add(amount)); err != nil {
		return false, err
	}

	return true, tx.Commit()
}

// CreateSettledDeposit credits the wallet and records a success "deposit"
// entry for a confirmed provider event that has no prior pending
// transaction (the webhook arrived before, or without, initialize).
func (r *Repository) CreateSettledDeposit(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal, reference string) error {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	w, err := lockWallet(ctx, tx, walletID)
	if err != nil {
		return err
	}

	if err := insertTransaction(ctx, tx, walletID, TransactionTypeDeposit, amount, StatusSuccess, &reference); err != nil {
		return err
	}
	if err := updateBalance(ctx, tx, walletID, w.Balance.Add(amount)); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) beginTx(ctx context.Context) (*sqlx.Tx, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	if r.lockTimeout > 0 {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())); err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	return tx, nil
}

func lockWallet(ctx context.Context, tx *sqlx.Tx, walletID uuid.UUID) (*Wallet, error) {
	var w Wallet
	err := tx.GetContext(ctx, &w, `
		SELECT id, user_id, balance, currency, updated_at
		FROM wallets WHERE id = $1
		FOR UPDATE
	`, walletID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoWallet
	}
	if err != nil {
		return nil, mapLockError(err)
	}
	return &w, nil
}

func updateBalance(ctx context.Context, tx *sqlx.Tx, walletID uuid.UUID, balance decimal.Decimal) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE wallets SET balance = $1, updated_at = now() WHERE id = $2
	`, balance, walletID)
	return err
}

func insertTransaction(ctx context.Context, tx *sqlx.Tx, walletID uuid.UUID, txType TransactionType, amount decimal.Decimal, status TransactionStatus, reference *string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (id, wallet_id, type, amount, status, reference)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New(), walletID, txType, amount, status, reference)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateReference
		}
		return err
	}
	return nil
}

// mapLockError converts Postgres lock_timeout expiry (55P03) into the
// retryable sentinel.
func mapLockError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "55P03" {
		return ErrLockTimeout
	}
	return err
}
