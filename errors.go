package auth

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes exposed to API clients alongside HTTP status codes.
const (
	TextCodeValidationFailed  = "VALIDATION_FAILED"
	TextCodeAlreadyRegistered = "ALREADY_REGISTERED"
	TextCodeIdentityNotFound  = "IDENTITY_NOT_FOUND"
	TextCodeInvalidCreds      = "INVALID_CREDENTIALS"
	TextCodeSessionNotFound   = "SESSION_NOT_FOUND"
	TextCodeTokenNotAuthentic = "TOKEN_NOT_AUTHENTIC"
	TextCodeStoreFailure      = "STORE_FAILURE"
)

// ErrIdentityNotFound is returned when the lookup key matches no credential record
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound).
	WithCode(http.StatusNotFound).
	WithTextCode(TextCodeIdentityNotFound)

// ErrAlreadyRegistered is returned when the unique key is already taken
var ErrAlreadyRegistered = goerrors.New("this username is already taken by another user", goerrors.CategoryConflict).
	WithCode(http.StatusNotAcceptable).
	WithTextCode(TextCodeAlreadyRegistered)

// ErrMismatchedHashAndPassword is returned when a password proof fails
var ErrMismatchedHashAndPassword = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithCode(http.StatusForbidden).
	WithTextCode(TextCodeInvalidCreds)

// ErrUnableToFindSession is the error when the request carries no token
var ErrUnableToFindSession = goerrors.New("unable to find session", goerrors.CategoryAuth).
	WithCode(http.StatusUnauthorized).
	WithTextCode(TextCodeSessionNotFound)

// ErrTokenNotAuthentic is the single outcome for every token verification
// failure. Signature, issuer, audience, and expiry problems all collapse into
// it so the caller cannot tell which check rejected the token.
var ErrTokenNotAuthentic = goerrors.New("token is not authentic", goerrors.CategoryAuth).
	WithCode(http.StatusUnauthorized).
	WithTextCode(TextCodeTokenNotAuthentic)

// ErrNoEmptyString rejects empty passwords before they reach bcrypt
var ErrNoEmptyString = goerrors.New("value must not be an empty string", goerrors.CategoryBadInput).
	WithCode(http.StatusBadRequest)

// NewValidationError wraps schema validation output. The field map travels in
// the error metadata so the boundary can render it back field-keyed.
func NewValidationError(fields FieldErrors) *goerrors.Error {
	return goerrors.New("request validation failed", goerrors.CategoryValidation).
		WithCode(http.StatusBadRequest).
		WithTextCode(TextCodeValidationFailed).
		WithMetadata(map[string]any{
			"validationErrors": fields,
		})
}

// WrapStoreError converts an unexpected store or signing library failure into
// the generic server-error class. The cause stays attached for logs, never
// for the response body.
func WrapStoreError(err error, msg string) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, msg).
		WithCode(http.StatusInternalServerError).
		WithTextCode(TextCodeStoreFailure)
}

// ValidationErrors extracts the field map carried by a validation error, if any.
func ValidationErrors(err error) (FieldErrors, bool) {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return nil, false
	}
	if richErr.Category != goerrors.CategoryValidation || richErr.Metadata == nil {
		return nil, false
	}
	if fields, ok := richErr.Metadata["validationErrors"].(FieldErrors); ok {
		return fields, true
	}
	return nil, false
}
