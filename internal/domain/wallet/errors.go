package wallet

import "errors"

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientFunds   = errors.New("insufficient wallet balance")
	ErrSelfTransfer        = errors.New("cannot transfer to same wallet")
	ErrDestinationNotFound = errors.New("destination user not found")
	ErrNoWallet            = errors.New("wallet not found")
	ErrAlreadyPaidToday    = errors.New("daily access already paid")
	ErrDuplicateReference  = errors.New("duplicate reference")
	ErrReferenceNotFound   = errors.New("reference not found")

	// ErrLockTimeout means a conflicting transaction held the wallet row
	// longer than the configured bound. The operation may or may not have
	// been applied by a competing call; callers should re-query state
	// instead of retrying blindly.
	ErrLockTimeout = errors.New("wallet lock timeout")
)
