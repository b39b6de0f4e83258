package paymentrequest

import "errors"

var (
	ErrNotFound          = errors.New("payment request not found")
	ErrInvalidStatus     = errors.New("invalid payment request status")
	ErrIllegalTransition = errors.New("illegal payment request status transition")
	ErrNoSuchBankAccount = errors.New("bank account is not linked to this wallet")
	ErrMissingReason     = errors.New("a reason is required to reject a payment request")
)
