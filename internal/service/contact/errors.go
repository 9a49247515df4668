package contact

import "errors"

// Sentinel errors for the contact service layer.
var (
	ErrNotFound     = errors.New("contact not found")
	ErrEmailExists  = errors.New("a contact with this email already exists")
	ErrInvalidInput = errors.New("invalid contact input")
)
