package payment

import "errors"

var (
	ErrInvalidAmount    = errors.New("invalid funding amount")
	ErrUserNotFound     = errors.New("user not found for payment event")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)
