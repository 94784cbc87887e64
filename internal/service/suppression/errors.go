package suppression

import "errors"

// Sentinel errors for the suppression service layer.
var (
	ErrEmailRequired = errors.New("email address is required")
)
