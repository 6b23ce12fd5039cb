// Package authgate is the HTTP auth middleware. It classifies bearer
// tokens by length: compact tokens are locally minted sessions verified
// against our signing key, oversized tokens are third-party assertions
// routed through the external decoder. Either path failing rejects the
// request with 401.
package authgate

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/mealdiary/mealdiary"
)

var (
	defaultTokenLookup       = "header:" + fiber.HeaderAuthorization
	ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT")
)

// DefaultLocalTokenMaxLen separates session tokens from external
// assertions. Locally minted tokens stay well under it; third-party
// assertions with full profile payloads exceed it.
const DefaultLocalTokenMaxLen = 500

type Config struct {
	// Filter skips the middleware when it returns true.
	Filter         func(*fiber.Ctx) bool
	SuccessHandler fiber.Handler
	ErrorHandler   fiber.ErrorHandler

	// TokenValidator verifies locally minted session tokens.
	TokenValidator mealdiary.TokenValidator
	// ExternalDecoder handles assertions past the length threshold.
	ExternalDecoder mealdiary.ExternalDecoder

	// LocalTokenMaxLen is the classification threshold. Zero uses the
	// default.
	LocalTokenMaxLen int

	ContextKey  string
	TokenLookup string
	AuthScheme  string

	// ContextEnricher propagates the caller into the request's standard
	// context after a successful validation.
	ContextEnricher func(ctx context.Context, caller mealdiary.Caller) context.Context
}

// New builds the gate handler. TokenValidator and ExternalDecoder are
// required.
func New(config ...Config) fiber.Handler {
	cfg := GetDefaultConfig(config...)

	extractors := GetExtractors(cfg.TokenLookup, cfg.AuthScheme)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw, err := ExtractRawToken(c, extractors)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		caller, err := resolveCaller(cfg, raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(cfg.ContextKey, caller)

		if cfg.ContextEnricher != nil {
			c.SetUserContext(cfg.ContextEnricher(c.UserContext(), caller))
		}

		return cfg.SuccessHandler(c)
	}
}

func resolveCaller(cfg Config, raw string) (mealdiary.Caller, error) {
	if len(raw) < cfg.LocalTokenMaxLen {
		claims, err := cfg.TokenValidator.Validate(raw)
		if err != nil {
			return mealdiary.Caller{}, err
		}
		return mealdiary.NewCallerByID(claims.UserID()), nil
	}

	claims, err := cfg.ExternalDecoder.Decode(raw)
	if err != nil {
		return mealdiary.Caller{}, err
	}
	if claims.Email == "" {
		return mealdiary.Caller{}, mealdiary.ErrTokenMalformed
	}

	return mealdiary.NewCallerByEmail(claims.Email), nil
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message":   "Unauthenticated",
				"text_code": mealdiary.TextCodeUnauthenticated,
			})
		}
	}

	if cfg.TokenValidator == nil {
		panic("AUTH: gate middleware configuration: TokenValidator is required.")
	}

	if cfg.ExternalDecoder == nil {
		panic("AUTH: gate middleware configuration: ExternalDecoder is required.")
	}

	if cfg.LocalTokenMaxLen == 0 {
		cfg.LocalTokenMaxLen = DefaultLocalTokenMaxLen
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = mealdiary.CallerLocalsKey
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	return cfg
}

func ExtractRawToken(c *fiber.Ctx, extractors []TokenExtractor) (string, error) {
	var raw string
	var err error

	for _, extractor := range extractors {
		raw, err = extractor(c)
		if raw != "" && err == nil {
			break
		}
	}

	return raw, err
}

func GetExtractors(tokenLookup string, authSchemes ...string) []TokenExtractor {
	extractors := make([]TokenExtractor, 0)

	authScheme := "Bearer"
	if len(authSchemes) > 0 {
		authScheme = authSchemes[0]
	}

	// header:Authorization,cookie:jwt,query:auth_token,param:token
	rootParts := strings.Split(tokenLookup, ",")
	for _, rootPart := range rootParts {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "header":
			extractors = append(extractors, tokenFromHeader(parts[1], authScheme))
		case "query":
			extractors = append(extractors, tokenFromQuery(parts[1]))
		case "param":
			extractors = append(extractors, tokenFromParam(parts[1]))
		case "cookie":
			extractors = append(extractors, tokenFromCookie(parts[1]))
		}
	}

	return extractors
}

type TokenExtractor func(c *fiber.Ctx) (string, error)

// tokenFromHeader returns a function that extracts token from the request header.
func tokenFromHeader(header string, authScheme string) TokenExtractor {
	return func(c *fiber.Ctx) (string, error) {
		a := c.Get(header)
		l := len(authScheme)
		if l == 0 {
			return "", ErrJWTMissingOrMalformed
		}
		authScheme = strings.TrimSpace(authScheme)
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrJWTMissingOrMalformed
	}
}

// tokenFromQuery returns a function that extracts token from the query string.
func tokenFromQuery(param string) TokenExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Query(param)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

// tokenFromParam returns a function that extracts token from the url param string.
func tokenFromParam(param string) TokenExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Params(param)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

// tokenFromCookie returns a function that extracts token from the named cookie.
func tokenFromCookie(name string) TokenExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}
