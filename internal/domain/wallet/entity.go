package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeFund        TransactionType = "fund"
	TransactionTypePay         TransactionType = "pay"
	TransactionTypeTransferIn  TransactionType = "transfer_in"
	TransactionTypeTransferOut TransactionType = "transfer_out"
	TransactionTypeDeposit     TransactionType = "deposit"
)

type TransactionStatus string

const (
	StatusPending TransactionStatus = "pending"
	StatusSuccess TransactionStatus = "success"
	StatusFailed  TransactionStatus = "failed"
)

// Wallet holds a user's monetary balance. Balance is a fixed-point decimal
// (NUMERIC in Postgres) and never drops below zero.
type Wallet struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
	Currency  string          `db:"currency" json:"currency"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// Transaction is an append-only ledger entry. Once status is success the
// record is immutable; only pending rows may transition to success or failed.
// Reference carries the external payment-provider id and is unique, which
// makes replayed provider events idempotent.
type Transaction struct {
	ID        uuid.UUID         `db:"id" json:"id"`
	WalletID  uuid.UUID         `db:"wallet_id" json:"wallet_id"`
	Type      TransactionType   `db:"type" json:"type"`
	Amount    decimal.Decimal   `db:"amount" json:"amount"`
	Status    TransactionStatus `db:"status" json:"status"`
	Reference *string           `db:"reference" json:"reference,omitempty"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
}
