package customfield

import "errors"

// Sentinel errors for the custom field service layer.
var (
	ErrNotFound    = errors.New("custom field not found")
	ErrInvalidType = errors.New("invalid field type: must be String, Int, or Bool")
)
