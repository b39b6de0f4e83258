package ethwithdrawal

import "errors"

var (
	ErrNotFound          = errors.New("eth withdrawal not found")
	ErrInvalidStatus     = errors.New("invalid eth withdrawal status")
	ErrIllegalTransition = errors.New("illegal eth withdrawal status transition")
	ErrMissingReason     = errors.New("a reason is required to reject an eth withdrawal")
)
