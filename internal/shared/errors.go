package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure without revealing which input was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated indicates a missing, invalid or expired bearer token,
	// or a token whose subject no longer resolves to an account.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden indicates a valid identity with insufficient roles.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict indicates a uniqueness violation such as a duplicate role name or email.
	ErrConflict = errors.New("conflict")
	// ErrPolicyViolation indicates an operation blocked by policy, e.g. revoking the baseline role.
	ErrPolicyViolation = errors.New("policy violation")
	// ErrValidation indicates malformed or incomplete input.
	ErrValidation = errors.New("validation failed")
)
