package auth

import (
	"time"

	env "github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

// Signing methods supported by the token service. One is picked per
// deployment; tokens signed with one are never verified with the other.
const (
	SigningMethodHS256 = "HS256"
	SigningMethodRS256 = "RS256"
)

// Store backends selectable at boot.
const (
	StoreBackendSQLite  = "sqlite"
	StoreBackendGraphQL = "graphql"
)

// Config holds every deployment-specific knob. It is parsed once at process
// start and passed by reference into constructors; there is no package-level
// mutable state. Key material is never rotated mid-process.
type Config struct {
	Issuer          string   `env:"RASPIAUTH_ISSUER" envDefault:"toccatech.com"`
	Audience        []string `env:"RASPIAUTH_AUDIENCE" envDefault:"toccatech.com" envSeparator:","`
	AdminSubject    string   `env:"RASPIAUTH_ADMIN_SUBJECT" envDefault:"raspiauth"`
	ClaimsNamespace string   `env:"RASPIAUTH_CLAIMS_NAMESPACE" envDefault:"https://toccatech.com/jwt/claims"`

	// UserTokenTTL is the session lifetime, 28 days unless overridden.
	// AdminTokenTTL keeps machine tokens short enough to mint per call.
	UserTokenTTL  time.Duration `env:"RASPIAUTH_USER_TOKEN_TTL" envDefault:"672h"`
	AdminTokenTTL time.Duration `env:"RASPIAUTH_ADMIN_TOKEN_TTL" envDefault:"60s"`

	SigningMethod  string `env:"RASPIAUTH_SIGNING_METHOD" envDefault:"HS256"`
	SigningSecret  string `env:"RASPIAUTH_SIGNING_SECRET"`
	PrivateKeyPath string `env:"RASPIAUTH_PRIVATE_KEY_PATH"`
	PublicKeyPath  string `env:"RASPIAUTH_PUBLIC_KEY_PATH"`
	JWKSEndpoint   string `env:"RASPIAUTH_JWKS_ENDPOINT"`

	StoreBackend    string `env:"RASPIAUTH_STORE" envDefault:"sqlite"`
	DSN             string `env:"RASPIAUTH_DSN" envDefault:"file:raspiauth.db?cache=shared"`
	GraphQLEndpoint string `env:"RASPIAUTH_GRAPHQL_ENDPOINT"`
	AuthHeader      string `env:"RASPIAUTH_AUTH_HEADER" envDefault:"X-Toccatech-Auth"`

	CookieName string `env:"RASPIAUTH_COOKIE_NAME" envDefault:"X-Toccatech-Auth"`
	ListenAddr string `env:"RASPIAUTH_LISTEN_ADDR" envDefault:":3000"`
	Debug      bool   `env:"RASPIAUTH_DEBUG"`
}

// LoadConfig parses the environment and checks the result for coherence.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse environment configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate will run validation rules
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(
			&c.Issuer,
			validation.Required,
		),
		validation.Field(
			&c.SigningMethod,
			validation.Required,
			validation.In(SigningMethodHS256, SigningMethodRS256),
		),
		validation.Field(
			&c.StoreBackend,
			validation.Required,
			validation.In(StoreBackendSQLite, StoreBackendGraphQL),
		),
		validation.Field(
			&c.ClaimsNamespace,
			validation.Required,
		),
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid configuration")
	}

	if c.SigningMethod == SigningMethodHS256 && c.SigningSecret == "" {
		return goerrors.New("HS256 requires RASPIAUTH_SIGNING_SECRET", goerrors.CategoryBadInput)
	}

	if c.SigningMethod == SigningMethodRS256 && c.PrivateKeyPath == "" && c.PublicKeyPath == "" && c.JWKSEndpoint == "" {
		return goerrors.New("RS256 requires a private key, public key, or JWKS endpoint", goerrors.CategoryBadInput)
	}

	if c.StoreBackend == StoreBackendGraphQL && c.GraphQLEndpoint == "" {
		return goerrors.New("graphql store requires RASPIAUTH_GRAPHQL_ENDPOINT", goerrors.CategoryBadInput)
	}

	return nil
}
