package auth

import (
	"crypto/rsa"
	"os"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// SigningStrategy binds one signature algorithm to its key material. A
// deployment picks exactly one; the verifier refuses tokens whose header
// advertises anything else, which closes the alg-confusion hole.
type SigningStrategy interface {
	Method() jwt.SigningMethod
	SignKey() (any, error)
	VerifyKey() (any, error)
	Accepts(token *jwt.Token) bool
}

type hmacStrategy struct {
	secret []byte
}

// NewHMACStrategy signs and verifies with a shared secret (HS256).
func NewHMACStrategy(secret []byte) (SigningStrategy, error) {
	if len(secret) == 0 {
		return nil, goerrors.New("signing secret must not be empty", goerrors.CategoryBadInput)
	}
	return &hmacStrategy{secret: secret}, nil
}

func (s *hmacStrategy) Method() jwt.SigningMethod {
	return jwt.SigningMethodHS256
}

func (s *hmacStrategy) SignKey() (any, error) {
	return s.secret, nil
}

func (s *hmacStrategy) VerifyKey() (any, error) {
	return s.secret, nil
}

func (s *hmacStrategy) Accepts(token *jwt.Token) bool {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return false
	}
	return token.Method.Alg() == jwt.SigningMethodHS256.Alg()
}

type rsaStrategy struct {
	private *rsa.PrivateKey
	public  *rsa.PublicKey
}

// NewRSAStrategy signs with the private key and verifies with the public key
// (RS256). The private key may be nil for verify-only deployments.
func NewRSAStrategy(private *rsa.PrivateKey, public *rsa.PublicKey) (SigningStrategy, error) {
	if private == nil && public == nil {
		return nil, goerrors.New("RSA strategy requires at least one key", goerrors.CategoryBadInput)
	}

	if public == nil {
		public = &private.PublicKey
	}

	return &rsaStrategy{private: private, public: public}, nil
}

// NewRSAStrategyFromPEM builds an RSA strategy from PEM-encoded key material.
// Either block may be empty as long as the other is usable.
func NewRSAStrategyFromPEM(privatePEM, publicPEM []byte) (SigningStrategy, error) {
	var private *rsa.PrivateKey
	var public *rsa.PublicKey
	var err error

	if len(privatePEM) > 0 {
		if private, err = jwt.ParseRSAPrivateKeyFromPEM(privatePEM); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse RSA private key")
		}
	}

	if len(publicPEM) > 0 {
		if public, err = jwt.ParseRSAPublicKeyFromPEM(publicPEM); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse RSA public key")
		}
	}

	return NewRSAStrategy(private, public)
}

func (s *rsaStrategy) Method() jwt.SigningMethod {
	return jwt.SigningMethodRS256
}

func (s *rsaStrategy) SignKey() (any, error) {
	if s.private == nil {
		return nil, goerrors.New("strategy is verify-only, no private key loaded", goerrors.CategoryInternal)
	}
	return s.private, nil
}

func (s *rsaStrategy) VerifyKey() (any, error) {
	return s.public, nil
}

func (s *rsaStrategy) Accepts(token *jwt.Token) bool {
	if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
		return false
	}
	return token.Method.Alg() == jwt.SigningMethodRS256.Alg()
}

// NewSigningStrategy resolves the configured strategy, loading PEM files
// from disk for RSA deployments.
func NewSigningStrategy(cfg *Config) (SigningStrategy, error) {
	switch cfg.SigningMethod {
	case SigningMethodHS256:
		return NewHMACStrategy([]byte(cfg.SigningSecret))
	case SigningMethodRS256:
		var privatePEM, publicPEM []byte
		var err error

		if cfg.PrivateKeyPath != "" {
			if privatePEM, err = os.ReadFile(cfg.PrivateKeyPath); err != nil {
				return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to read RSA private key file")
			}
		}
		if cfg.PublicKeyPath != "" {
			if publicPEM, err = os.ReadFile(cfg.PublicKeyPath); err != nil {
				return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to read RSA public key file")
			}
		}

		return NewRSAStrategyFromPEM(privatePEM, publicPEM)
	}

	return nil, goerrors.New("unsupported signing method: "+cfg.SigningMethod, goerrors.CategoryBadInput)
}
