package auth_test

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	auth "github.com/toccatech/raspiauth"
)

func testConfig() *auth.Config {
	return &auth.Config{
		Issuer:          "test-issuer",
		Audience:        []string{"test-audience"},
		AdminSubject:    "raspiauth",
		ClaimsNamespace: "https://example.com/jwt/claims",
		UserTokenTTL:    time.Hour,
		AdminTokenTTL:   time.Minute,
		SigningMethod:   auth.SigningMethodHS256,
		SigningSecret:   "test-signing-key",
		StoreBackend:    auth.StoreBackendSQLite,
		DSN:             "file::memory:?cache=shared",
		AuthHeader:      "X-Test-Auth",
		CookieName:      "X-Test-Auth",
	}
}

func newHMACService(t *testing.T, cfg *auth.Config) auth.TokenService {
	t.Helper()

	strategy, err := auth.NewHMACStrategy([]byte(cfg.SigningSecret))
	require.NoError(t, err)

	return auth.NewTokenService(cfg, strategy, nil)
}

func TestTokenServiceIssueUser(t *testing.T) {
	cfg := testConfig()
	service := newHMACService(t, cfg)

	token, err := service.IssueUser("user-42")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, auth.RoleUser, claims.Role())
	assert.Equal(t, "user-42", claims.UserID())
	assert.Equal(t, "user-42", claims.Subject)
	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.True(t, claims.Private.IsAuthenticated)
	assert.False(t, claims.IsAdmin())

	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	assert.InDelta(t, cfg.UserTokenTTL.Seconds(), ttl.Seconds(), 1)
}

func TestTokenServiceIssueUserRequiresID(t *testing.T) {
	service := newHMACService(t, testConfig())

	_, err := service.IssueUser("")
	assert.Error(t, err)
}

func TestTokenServiceIssueAdmin(t *testing.T) {
	cfg := testConfig()
	service := newHMACService(t, cfg)

	token, err := service.IssueAdmin()
	require.NoError(t, err)

	claims, err := service.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, auth.RoleAdmin, claims.Role())
	assert.True(t, claims.IsAdmin())
	assert.Empty(t, claims.UserID())
	assert.Equal(t, cfg.AdminSubject, claims.Subject)
	assert.False(t, claims.Private.IsAuthenticated)

	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	assert.InDelta(t, cfg.AdminTokenTTL.Seconds(), ttl.Seconds(), 1)
}

func TestTokenServiceRejectsWrongKey(t *testing.T) {
	cfg := testConfig()
	service := newHMACService(t, cfg)

	otherCfg := testConfig()
	otherCfg.SigningSecret = "a-completely-different-key"
	otherService := newHMACService(t, otherCfg)

	token, err := service.IssueUser("user-1")
	require.NoError(t, err)

	_, err = otherService.Validate(token)
	assert.Equal(t, auth.ErrTokenNotAuthentic, err)
}

func TestTokenServiceRejectsExpired(t *testing.T) {
	cfg := testConfig()
	cfg.UserTokenTTL = time.Millisecond

	service := newHMACService(t, cfg)

	token, err := service.IssueUser("user-1")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = service.Validate(token)
	assert.Equal(t, auth.ErrTokenNotAuthentic, err)
}

func TestTokenServiceRejectsWrongIssuer(t *testing.T) {
	cfg := testConfig()
	service := newHMACService(t, cfg)

	otherCfg := testConfig()
	otherCfg.Issuer = "someone-else"
	otherService := newHMACService(t, otherCfg)

	token, err := otherService.IssueUser("user-1")
	require.NoError(t, err)

	_, err = service.Validate(token)
	assert.Equal(t, auth.ErrTokenNotAuthentic, err)
}

func TestTokenServiceRejectsWrongAudience(t *testing.T) {
	cfg := testConfig()
	service := newHMACService(t, cfg)

	otherCfg := testConfig()
	otherCfg.Audience = []string{"another-audience"}
	otherService := newHMACService(t, otherCfg)

	token, err := otherService.IssueUser("user-1")
	require.NoError(t, err)

	_, err = service.Validate(token)
	assert.Equal(t, auth.ErrTokenNotAuthentic, err)
}

func TestTokenServiceRejectsAlgorithmConfusion(t *testing.T) {
	cfg := testConfig()
	hmacService := newHMACService(t, cfg)

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	strategy, err := auth.NewRSAStrategy(key, nil)
	require.NoError(t, err)
	rsaService := auth.NewTokenService(cfg, strategy, nil)

	hmacToken, err := hmacService.IssueUser("user-1")
	require.NoError(t, err)

	rsaToken, err := rsaService.IssueUser("user-1")
	require.NoError(t, err)

	// Neither side accepts tokens signed under the other scheme.
	_, err = rsaService.Validate(hmacToken)
	assert.Equal(t, auth.ErrTokenNotAuthentic, err)

	_, err = hmacService.Validate(rsaToken)
	assert.Equal(t, auth.ErrTokenNotAuthentic, err)
}

func TestTokenServiceRejectsGarbage(t *testing.T) {
	service := newHMACService(t, testConfig())

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := service.Validate(token)
		assert.Equal(t, auth.ErrTokenNotAuthentic, err)
	}
}

func TestRSAStrategyRoundTrip(t *testing.T) {
	cfg := testConfig()
	cfg.SigningMethod = auth.SigningMethodRS256

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	strategy, err := auth.NewRSAStrategy(key, nil)
	require.NoError(t, err)

	service := auth.NewTokenService(cfg, strategy, nil)

	token, err := service.IssueUser("user-9")
	require.NoError(t, err)

	claims, err := service.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-9", claims.UserID())
}

func TestRSAStrategyVerifyOnly(t *testing.T) {
	cfg := testConfig()
	cfg.SigningMethod = auth.SigningMethodRS256

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	signing, err := auth.NewRSAStrategy(key, nil)
	require.NoError(t, err)
	signingService := auth.NewTokenService(cfg, signing, nil)

	verifyOnly, err := auth.NewRSAStrategy(nil, &key.PublicKey)
	require.NoError(t, err)
	verifyService := auth.NewTokenService(cfg, verifyOnly, nil)

	token, err := signingService.IssueUser("user-3")
	require.NoError(t, err)

	claims, err := verifyService.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-3", claims.UserID())

	_, err = verifyService.IssueUser("user-3")
	assert.Error(t, err)
}

func TestNewSigningStrategyRequiresMaterial(t *testing.T) {
	_, err := auth.NewHMACStrategy(nil)
	assert.Error(t, err)

	_, err = auth.NewRSAStrategy(nil, nil)
	assert.Error(t, err)
}
