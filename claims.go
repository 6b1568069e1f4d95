package auth

import (
	"encoding/json"

	"github.com/golang-jwt/jwt/v5"
)

// Roles carried in the namespaced claims block.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// DefaultClaimsNamespace is the URI the private claims block lives under
// when no namespace is configured.
const DefaultClaimsNamespace = "https://toccatech.com/jwt/claims"

// PrivateClaims is the namespaced assertion block shared by issuer and
// verifier. USER is set only on user-level tokens; an admin token carries
// the role alone.
type PrivateClaims struct {
	Role            string `json:"ROLE"`
	UserID          string `json:"USER,omitempty"`
	IsAuthenticated bool   `json:"isAuthenticated,omitempty"`
}

// TokenClaims is the one typed claims contract for both minting and
// verification. The private block is serialized under the configured
// namespace URI rather than a fixed struct tag, so multi-tenant deployments
// can pick their own without recompiling.
type TokenClaims struct {
	jwt.RegisteredClaims
	Private   PrivateClaims `json:"-"`
	namespace string
}

// NewTokenClaims returns an empty claims value bound to a namespace. Pass it
// to jwt.ParseWithClaims so decoding knows where to find the private block.
func NewTokenClaims(namespace string) *TokenClaims {
	if namespace == "" {
		namespace = DefaultClaimsNamespace
	}
	return &TokenClaims{namespace: namespace}
}

// Namespace returns the URI the private block is keyed under.
func (c *TokenClaims) Namespace() string {
	if c.namespace == "" {
		return DefaultClaimsNamespace
	}
	return c.namespace
}

// Role returns the role asserted by the token
func (c *TokenClaims) Role() string {
	return c.Private.Role
}

// UserID returns the authenticated user id, empty for admin tokens
func (c *TokenClaims) UserID() string {
	return c.Private.UserID
}

// IsAdmin reports whether the token asserts the service-level role
func (c *TokenClaims) IsAdmin() bool {
	return c.Private.Role == RoleAdmin
}

func (c TokenClaims) MarshalJSON() ([]byte, error) {
	registered, err := json.Marshal(c.RegisteredClaims)
	if err != nil {
		return nil, err
	}

	body := map[string]json.RawMessage{}
	if err := json.Unmarshal(registered, &body); err != nil {
		return nil, err
	}

	private, err := json.Marshal(c.Private)
	if err != nil {
		return nil, err
	}
	body[c.Namespace()] = private

	return json.Marshal(body)
}

func (c *TokenClaims) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &c.RegisteredClaims); err != nil {
		return err
	}

	body := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}

	if raw, ok := body[c.Namespace()]; ok {
		if err := json.Unmarshal(raw, &c.Private); err != nil {
			return err
		}
	}

	return nil
}
