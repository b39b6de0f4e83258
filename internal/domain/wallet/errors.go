package wallet

import "errors"

var (
	ErrInvalidReference    = errors.New("unrecognized transaction reference kind")
	ErrInvalidStatus       = errors.New("unrecognized transaction status")
	ErrBelowMinimum        = errors.New("debit below minimum withdrawal amount")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrNotFound            = errors.New("wallet or transaction not found")
	ErrBankAccountLimit    = errors.New("wallet already has the maximum number of bank accounts")
	ErrBankAccountExists   = errors.New("bank account already linked to this wallet")
)
