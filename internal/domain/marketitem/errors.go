package marketitem

import "errors"

var (
	ErrNotFound      = errors.New("market item not found")
	ErrInvalidStatus = errors.New("invalid market item status")
	ErrMissingReason = errors.New("a reason is required to cancel a market item")
	ErrNoImages      = errors.New("at least one card image is required")
)
