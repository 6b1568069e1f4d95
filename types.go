package auth

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// TokenIssuer mints signed bearer tokens. Admin tokens represent the service
// itself for privileged backend calls; user tokens carry an end-user session.
type TokenIssuer interface {
	IssueAdmin() (string, error)
	IssueUser(userID string) (string, error)
}

// TokenValidator checks a presented token and extracts its claims. Every
// failure mode surfaces as ErrTokenNotAuthentic.
type TokenValidator interface {
	Validate(token string) (*TokenClaims, error)
}

// TokenService combines issuance and verification over one signing strategy.
type TokenService interface {
	TokenIssuer
	TokenValidator
}

// CredentialStore is the narrow persistence contract the core consumes.
// Implementations translate their driver errors into the package sentinels:
// ErrIdentityNotFound for missing records, ErrAlreadyRegistered for unique
// key conflicts, WrapStoreError for everything else.
type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (*Credential, error)
	FindByID(ctx context.Context, id string) (*Credential, error)
	Create(ctx context.Context, record *Credential) (*Credential, error)
	Update(ctx context.Context, id string, changes *CredentialUpdate) (*Credential, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
