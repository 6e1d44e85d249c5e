// Package common defines shared constants and sentinel errors used across
// the FlowCross account core and its presentation layer. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Credential store errors.
	ErrDuplicateAccount   = errors.New("account with this username or email already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")

	// Input validation. Details are wrapped: fmt.Errorf("%w: ...", ErrValidation).
	ErrValidation = errors.New("validation error")

	// Theme selection errors.
	ErrUnknownTheme    = errors.New("unknown theme")
	ErrPremiumRequired = errors.New("premium subscription required")

	// Session errors.
	ErrNoSession = errors.New("not logged in")
)
