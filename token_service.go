package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

type tokenService struct {
	strategy     SigningStrategy
	issuer       string
	audience     jwt.ClaimStrings
	adminSubject string
	namespace    string
	userTTL      time.Duration
	adminTTL     time.Duration
	logger       Logger
}

// NewTokenService creates the issuer/verifier pair over one signing strategy.
// Issuance and verification are pure functions of the configuration and are
// safe to call concurrently.
func NewTokenService(cfg *Config, strategy SigningStrategy, logger Logger) TokenService {
	if logger == nil {
		logger = defLogger{}
	}

	var aud jwt.ClaimStrings
	if len(cfg.Audience) > 0 {
		aud = make(jwt.ClaimStrings, len(cfg.Audience))
		copy(aud, cfg.Audience)
	}

	userTTL := cfg.UserTokenTTL
	if userTTL <= 0 {
		userTTL = 28 * 24 * time.Hour
	}

	adminTTL := cfg.AdminTokenTTL
	if adminTTL <= 0 {
		adminTTL = 60 * time.Second
	}

	return &tokenService{
		strategy:     strategy,
		issuer:       cfg.Issuer,
		audience:     aud,
		adminSubject: cfg.AdminSubject,
		namespace:    cfg.ClaimsNamespace,
		userTTL:      userTTL,
		adminTTL:     adminTTL,
		logger:       logger,
	}
}

// IssueAdmin mints a short-lived service-level token for privileged
// backend-to-backend calls. It asserts no user subject; a fresh one is meant
// to be minted per call.
func (ts *tokenService) IssueAdmin() (string, error) {
	claims := ts.newClaims(ts.adminSubject, ts.adminTTL)
	claims.Private = PrivateClaims{
		Role: RoleAdmin,
	}

	return ts.sign(claims)
}

// IssueUser mints a session token bound to the given user id.
func (ts *tokenService) IssueUser(userID string) (string, error) {
	if userID == "" {
		return "", goerrors.New("user id must not be empty", goerrors.CategoryBadInput)
	}

	claims := ts.newClaims(userID, ts.userTTL)
	claims.Private = PrivateClaims{
		Role:            RoleUser,
		UserID:          userID,
		IsAuthenticated: true,
	}

	return ts.sign(claims)
}

// Validate parses and checks a token: signature and expected algorithm,
// then issuer, audience, and expiry. Whatever fails, the caller sees only
// ErrTokenNotAuthentic; the cause goes to the debug log.
func (ts *tokenService) Validate(tokenString string) (*TokenClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 3)
	parserOptions = append(parserOptions, jwt.WithValidMethods([]string{ts.strategy.Method().Alg()}))
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, NewTokenClaims(ts.namespace), func(t *jwt.Token) (any, error) {
		if !ts.strategy.Accepts(t) {
			ts.logger.Error("token validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, ErrTokenNotAuthentic
		}
		return ts.strategy.VerifyKey()
	}, parserOptions...)

	if err != nil {
		ts.logger.Debug("token validation failed", "error", err)
		return nil, ErrTokenNotAuthentic
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		ts.logger.Error("token validate could not decode claims")
		return nil, ErrTokenNotAuthentic
	}

	return claims, nil
}

func (ts *tokenService) newClaims(subject string, ttl time.Duration) *TokenClaims {
	now := time.Now()

	var aud jwt.ClaimStrings
	if len(ts.audience) > 0 {
		aud = make(jwt.ClaimStrings, len(ts.audience))
		copy(aud, ts.audience)
	}

	claims := NewTokenClaims(ts.namespace)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    ts.issuer,
		Subject:   subject,
		Audience:  aud,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	return claims
}

func (ts *tokenService) sign(claims *TokenClaims) (string, error) {
	key, err := ts.strategy.SignKey()
	if err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(ts.strategy.Method(), claims)

	signedString, err := token.SignedString(key)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}
