package catalog

import "errors"

var (
	ErrNotFound = errors.New("product not found")
	ErrInactive = errors.New("product is not accepting submissions")
)
