package apperrors

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrTransactionFailure  = errors.New("transaction failure")
	ErrNotificationFailure = errors.New("notification failure")
)
