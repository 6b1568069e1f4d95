package auth

import (
	"context"
)

// Request schemas for the account operations. Messages and shapes follow the
// public API contract: one configured message per field, unknown fields
// rejected.
var (
	SignUpSchema = Schema{
		"email": {
			Type:     TypeString,
			Required: true,
			Email:    true,
			Message:  "The field 'email' is required and must be valid!",
		},
		"password": {
			Type:      TypeString,
			Required:  true,
			MinLength: 6,
			Message:   "The field 'password' is required and must contain at least 6 characters!",
		},
		"username": {
			Type:     TypeString,
			Required: true,
			Message:  "The field 'username' is required!",
		},
		"avatarURL": {
			Type:    TypeString,
			URL:     true,
			Message: "The field 'avatarURL' must be a valid URL!",
		},
	}

	SignInSchema = Schema{
		"username": {
			Type:     TypeString,
			Required: true,
			Message:  "The field 'username' is required!",
		},
		"password": {
			Type:      TypeString,
			Required:  true,
			MinLength: 6,
			Message:   "The field 'password' is required and must contain at least 6 characters!",
		},
	}

	ModifySchema = Schema{
		"currentPassword": {
			Type:      TypeString,
			Required:  true,
			MinLength: 6,
			Message:   "The field 'currentPassword' is required and must contain at least 6 characters!",
		},
		"password": {
			Type:      TypeString,
			MinLength: 6,
			Message:   "The field 'password' must contain at least 6 characters!",
		},
		"email": {
			Type:    TypeString,
			Email:   true,
			Message: "The field 'email' must be valid!",
		},
		"avatarURL": {
			Type:    TypeString,
			URL:     true,
			Message: "The field 'avatarURL' must be a valid URL!",
		},
	}
)

// AuthSession is what a successful signup or signin hands back: the public
// profile plus the freshly minted session token.
type AuthSession struct {
	User  *Profile `json:"user"`
	Token string   `json:"authToken"`
}

// Accounts orchestrates the credential pipeline: validator in front, store
// and hasher in the middle, token issuance at the end. It holds no mutable
// state of its own; every request flows through independently.
type Accounts struct {
	store     CredentialStore
	tokens    TokenService
	validator TokenValidator
	logger    Logger
}

// NewAccounts wires the orchestrator over a store and token service.
func NewAccounts(store CredentialStore, tokens TokenService) *Accounts {
	return &Accounts{
		store:     store,
		tokens:    tokens,
		validator: tokens,
		logger:    defLogger{},
	}
}

func (a *Accounts) WithLogger(logger Logger) *Accounts {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// WithTokenValidator swaps in a custom validator, e.g. JWKS-backed
// verification for RS256 deployments without a local public key.
func (a *Accounts) WithTokenValidator(validator TokenValidator) *Accounts {
	if validator != nil {
		a.validator = validator
	}
	return a
}

// SignUp validates the payload, checks uniqueness, hashes the password,
// creates the record, and mints a user token. The pre-lookup gives a clean
// conflict answer; the store's own uniqueness constraint settles any race
// between concurrent signups.
func (a *Accounts) SignUp(ctx context.Context, payload map[string]any) (*AuthSession, error) {
	if errs := SignUpSchema.Validate(payload); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	username := stringField(payload, "username")

	if _, err := a.store.FindByUsername(ctx, username); err == nil {
		return nil, ErrAlreadyRegistered
	} else if err != ErrIdentityNotFound {
		a.logger.Error("SignUp uniqueness lookup failed", "error", err)
		return nil, err
	}

	hash, err := HashPassword(stringField(payload, "password"))
	if err != nil {
		a.logger.Error("SignUp password hashing failed", "error", err)
		return nil, err
	}

	record := &Credential{
		Username:     username,
		Email:        stringField(payload, "email"),
		AvatarURL:    stringField(payload, "avatarURL"),
		PasswordHash: hash,
	}

	created, err := a.store.Create(ctx, record)
	if err != nil {
		a.logger.Error("SignUp credential create failed", "error", err)
		return nil, err
	}

	token, err := a.tokens.IssueUser(created.ID.String())
	if err != nil {
		a.logger.Error("SignUp token issuance failed", "error", err)
		return nil, err
	}

	return &AuthSession{User: created.Public(), Token: token}, nil
}

// SignIn verifies the password proof against the stored hash and mints a
// session token. A wrong password and an unknown username are distinct
// outcomes at this boundary, matching the public API contract.
func (a *Accounts) SignIn(ctx context.Context, payload map[string]any) (*AuthSession, error) {
	if errs := SignInSchema.Validate(payload); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	record, err := a.store.FindByUsername(ctx, stringField(payload, "username"))
	if err != nil {
		return nil, err
	}

	if err := ComparePasswordAndHash(stringField(payload, "password"), record.PasswordHash); err != nil {
		return nil, ErrMismatchedHashAndPassword
	}

	token, err := a.tokens.IssueUser(record.ID.String())
	if err != nil {
		a.logger.Error("SignIn token issuance failed", "error", err)
		return nil, err
	}

	return &AuthSession{User: record.Public(), Token: token}, nil
}

// CurrentUser resolves the subject of a presented session token. The
// returned profile never carries the password hash.
func (a *Accounts) CurrentUser(ctx context.Context, rawToken string) (*Profile, error) {
	claims, err := a.sessionClaims(rawToken)
	if err != nil {
		return nil, err
	}

	record, err := a.store.FindByID(ctx, claims.UserID())
	if err != nil {
		return nil, err
	}

	return record.Public(), nil
}

// Modify applies profile and password updates for the token's subject. The
// caller re-proves possession of the current password; a new password is
// re-hashed before it touches the store.
func (a *Accounts) Modify(ctx context.Context, rawToken string, payload map[string]any) (*Profile, error) {
	if errs := ModifySchema.Validate(payload); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	claims, err := a.sessionClaims(rawToken)
	if err != nil {
		return nil, err
	}

	record, err := a.store.FindByID(ctx, claims.UserID())
	if err != nil {
		return nil, err
	}

	if err := ComparePasswordAndHash(stringField(payload, "currentPassword"), record.PasswordHash); err != nil {
		return nil, ErrMismatchedHashAndPassword
	}

	changes := &CredentialUpdate{
		Email:     stringField(payload, "email"),
		AvatarURL: stringField(payload, "avatarURL"),
	}

	if password := stringField(payload, "password"); password != "" {
		hash, err := HashPassword(password)
		if err != nil {
			a.logger.Error("Modify password hashing failed", "error", err)
			return nil, err
		}
		changes.PasswordHash = hash
	}

	updated, err := a.store.Update(ctx, record.ID.String(), changes)
	if err != nil {
		a.logger.Error("Modify credential update failed", "error", err)
		return nil, err
	}

	return updated.Public(), nil
}

// sessionClaims authenticates a presented token as a user-level session.
// Admin tokens carry no subject and never pass here: an admin role must not
// be usable as a session.
func (a *Accounts) sessionClaims(rawToken string) (*TokenClaims, error) {
	if rawToken == "" {
		return nil, ErrUnableToFindSession
	}

	claims, err := a.validator.Validate(rawToken)
	if err != nil {
		return nil, err
	}

	if claims.Role() != RoleUser || claims.UserID() == "" {
		a.logger.Warn("token authenticated but does not carry a user session")
		return nil, ErrTokenNotAuthentic
	}

	return claims, nil
}

func stringField(payload map[string]any, key string) string {
	value, _ := payload[key].(string)
	return value
}
