package models

import "errors"

// Error kinds reported by the service layer. Callers match them with errors.Is;
// the HTTP layer maps each kind to a status code.
var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrDuplicateReview    = errors.New("user has already reviewed this product")
	ErrNotEligible        = errors.New("user must have received the product before leaving a review")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
