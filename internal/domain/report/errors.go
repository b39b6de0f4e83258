package report

import "errors"

var (
	ErrNotFound        = errors.New("report not found")
	ErrAlreadyResolved = errors.New("report is already resolved")
)
