package authgate_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealdiary/mealdiary"
	"github.com/mealdiary/mealdiary/middleware/authgate"
)

var (
	testSigningKey = []byte("test-signing-key")
	testIssuer     = "mealdiary-test"
)

func newGateApp(t *testing.T, cfg ...authgate.Config) (*fiber.App, *mealdiary.Caller) {
	t.Helper()

	var seen mealdiary.Caller
	app := fiber.New()
	app.Use(authgate.New(cfg...))
	app.Get("/protected", func(c *fiber.Ctx) error {
		caller, ok := mealdiary.CallerFromFiber(c)
		require.True(t, ok)
		seen = caller
		return c.SendStatus(fiber.StatusOK)
	})

	return app, &seen
}

func defaultGateConfig() authgate.Config {
	return authgate.Config{
		TokenValidator:  mealdiary.NewTokenService(testSigningKey, testIssuer, nil),
		ExternalDecoder: mealdiary.NewExternalTokenDecoder(nil),
	}
}

func TestGateRejectsMissingToken(t *testing.T) {
	app, _ := newGateApp(t, defaultGateConfig())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGateAcceptsLocalSessionToken(t *testing.T) {
	svc := mealdiary.NewTokenService(testSigningKey, testIssuer, nil)
	user := &mealdiary.User{ID: uuid.New(), Email: "ana@x.com"}

	token, err := svc.Generate(user, mealdiary.DefaultSessionTTL)
	require.NoError(t, err)
	require.Less(t, len(token), authgate.DefaultLocalTokenMaxLen)

	app, seen := newGateApp(t, authgate.Config{
		TokenValidator:  svc,
		ExternalDecoder: mealdiary.NewExternalTokenDecoder(nil),
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, mealdiary.CallerByID, seen.Kind)
	assert.Equal(t, user.ID.String(), seen.Identifier())
}

func TestGateRejectsForgedLocalToken(t *testing.T) {
	forger := mealdiary.NewTokenService([]byte("some-other-key"), testIssuer, nil)
	token, err := forger.Generate(&mealdiary.User{ID: uuid.New()}, mealdiary.DefaultSessionTTL)
	require.NoError(t, err)

	app, _ := newGateApp(t, defaultGateConfig())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGateRoutesLongTokensThroughExternalDecoder(t *testing.T) {
	assertion := signExternalAssertion(t, jwt.MapClaims{
		"sub":     "google-oauth2|12345",
		"email":   "ana@x.com",
		"name":    "Ana",
		"picture": strings.Repeat("x", authgate.DefaultLocalTokenMaxLen),
	})
	require.GreaterOrEqual(t, len(assertion), authgate.DefaultLocalTokenMaxLen)

	app, seen := newGateApp(t, defaultGateConfig())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+assertion)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, mealdiary.CallerByEmail, seen.Kind)
	assert.Equal(t, "ana@x.com", seen.Identifier())
}

func TestGateRejectsExternalAssertionWithoutEmail(t *testing.T) {
	assertion := signExternalAssertion(t, jwt.MapClaims{
		"sub":     "google-oauth2|12345",
		"name":    "Ana",
		"picture": strings.Repeat("x", authgate.DefaultLocalTokenMaxLen),
	})

	app, _ := newGateApp(t, defaultGateConfig())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+assertion)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGateFilterSkipsMiddleware(t *testing.T) {
	cfg := defaultGateConfig()
	cfg.Filter = func(c *fiber.Ctx) bool { return true }

	app := fiber.New()
	app.Use(authgate.New(cfg))
	app.Get("/open", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/open", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGateTokenLookupQuery(t *testing.T) {
	svc := mealdiary.NewTokenService(testSigningKey, testIssuer, nil)
	token, err := svc.Generate(&mealdiary.User{ID: uuid.New()}, mealdiary.DefaultSessionTTL)
	require.NoError(t, err)

	cfg := defaultGateConfig()
	cfg.TokenValidator = svc
	cfg.TokenLookup = "query:auth_token"

	app, seen := newGateApp(t, cfg)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected?auth_token="+token, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, mealdiary.CallerByID, seen.Kind)
}

func signExternalAssertion(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("a-key-we-never-see"))
	require.NoError(t, err)
	return signed
}
