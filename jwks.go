package auth

import (
	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

type jwksValidator struct {
	jwks      *keyfunc.JWKS
	issuer    string
	audience  jwt.ClaimStrings
	namespace string
	logger    Logger
}

// NewJWKSValidator verifies RS256 tokens against keys fetched from a JWK Set
// endpoint instead of a local PEM file. Useful when another deployment of the
// service holds the private key and only publishes the public half.
func NewJWKSValidator(cfg *Config, logger Logger) (TokenValidator, error) {
	if logger == nil {
		logger = defLogger{}
	}

	jwks, err := keyfunc.Get(cfg.JWKSEndpoint, keyfunc.Options{})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load JWK Set")
	}

	var aud jwt.ClaimStrings
	if len(cfg.Audience) > 0 {
		aud = make(jwt.ClaimStrings, len(cfg.Audience))
		copy(aud, cfg.Audience)
	}

	return &jwksValidator{
		jwks:      jwks,
		issuer:    cfg.Issuer,
		audience:  aud,
		namespace: cfg.ClaimsNamespace,
		logger:    logger,
	}, nil
}

// Validate applies the same checks and uniform failure signal as the local
// token service, resolving the verification key through the JWK Set.
func (v *jwksValidator) Validate(tokenString string) (*TokenClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 3)
	parserOptions = append(parserOptions, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	if v.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(v.issuer))
	}
	if len(v.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(v.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, NewTokenClaims(v.namespace), v.jwks.Keyfunc, parserOptions...)
	if err != nil {
		v.logger.Debug("JWKS token validation failed", "error", err)
		return nil, ErrTokenNotAuthentic
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		v.logger.Error("JWKS token validate could not decode claims")
		return nil, ErrTokenNotAuthentic
	}

	return claims, nil
}
