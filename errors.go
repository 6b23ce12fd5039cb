package mealdiary

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Stable machine readable kinds exposed alongside error messages.
const (
	TextCodeInvalidInput      = "INVALID_INPUT"
	TextCodeUnauthenticated   = "UNAUTHENTICATED"
	TextCodeInvalidCredential = "INVALID_CREDENTIAL"
	TextCodeConflict          = "CONFLICT"
	TextCodeNotFound          = "NOT_FOUND"
	TextCodeUnexpected        = "UNEXPECTED"
	TextCodeTokenExpired      = "TOKEN_EXPIRED"
	TextCodeTokenMalformed    = "TOKEN_MALFORMED"
)

// ErrIdentityNotFound is returned when no account matches the identifier.
var ErrIdentityNotFound = errors.New("User not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode(TextCodeNotFound)

// ErrMismatchedHashAndPassword is the sole signal for a wrong password.
var ErrMismatchedHashAndPassword = errors.New("Invalid password", errors.CategoryAuth).
	WithCode(errors.CodeBadRequest).
	WithTextCode(TextCodeInvalidCredential)

// ErrEmailTaken guards the one-user-per-email invariant.
var ErrEmailTaken = errors.New("User already exists", errors.CategoryConflict).
	WithCode(errors.CodeConflict).
	WithTextCode(TextCodeConflict)

// ErrPasswordConfirmation is returned when password and confirmation differ.
var ErrPasswordConfirmation = errors.New("Passwords don't match", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest).
	WithTextCode(TextCodeInvalidInput)

// ErrOwnDiaryRating keeps ratings peer-only.
var ErrOwnDiaryRating = errors.New("You cannot rate your own diary", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest).
	WithTextCode(TextCodeInvalidInput)

// ErrTokenExpired marks an expired session or reset token.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed marks a token we could not parse or verify.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenMalformed)

// ErrUnauthenticated is the generic gate rejection.
var ErrUnauthenticated = errors.New("Unauthenticated", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeUnauthenticated)

// ErrNoEmptyString rejects empty secret material.
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest).
	WithTextCode(TextCodeInvalidInput)

// IsTokenExpiredError will check for expired tokens, including legacy
// string-matched errors coming out of the JWT library.
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for parse and signature failures.
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
