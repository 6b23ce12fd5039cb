package mealdiary

import (
	"fmt"
	"log"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// ExternalClaims are the profile claims we accept from a third-party
// identity assertion.
type ExternalClaims struct {
	Subject string
	Name    string
	Email   string
}

// ExternalDecoder extracts identity claims from a third-party assertion.
type ExternalDecoder interface {
	Decode(assertion string) (*ExternalClaims, error)
}

// ExternalTokenDecoder accepts third-party assertions. By default claims
// are extracted WITHOUT signature verification; the assertion is echoed
// back to the client as its session token. When JWK Set URLs are
// configured the assertion is instead verified against the issuer's
// published keys; unverified passthrough is not a real security boundary
// and production deployments should configure JWKS.
type ExternalTokenDecoder struct {
	keyfunc jwt.Keyfunc
	logger  Logger
}

// NewExternalTokenDecoder creates a passthrough decoder.
func NewExternalTokenDecoder(logger Logger) *ExternalTokenDecoder {
	if logger == nil {
		logger = defLogger{}
	}
	return &ExternalTokenDecoder{logger: logger}
}

// NewVerifyingExternalTokenDecoder creates a decoder that verifies
// assertions against the given JWK Set URLs before accepting claims.
func NewVerifyingExternalTokenDecoder(jwkSetURLs []string, logger Logger) (*ExternalTokenDecoder, error) {
	if logger == nil {
		logger = defLogger{}
	}

	kf, err := multiKeyfunc(jwkSetURLs)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to initialize JWKS keyfunc")
	}

	return &ExternalTokenDecoder{keyfunc: kf, logger: logger}, nil
}

// Decode extracts {sub, name, email} claims from the assertion.
func (d *ExternalTokenDecoder) Decode(assertion string) (*ExternalClaims, error) {
	claims := jwt.MapClaims{}

	if d.keyfunc != nil {
		token, err := jwt.ParseWithClaims(assertion, claims, d.keyfunc)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return nil, ErrTokenExpired
			}
			return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
				WithTextCode(ErrTokenMalformed.TextCode)
		}
		if !token.Valid {
			return nil, ErrTokenMalformed
		}
	} else {
		if _, _, err := jwt.NewParser().ParseUnverified(assertion, claims); err != nil {
			return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
				WithTextCode(ErrTokenMalformed.TextCode)
		}
	}

	out := &ExternalClaims{}
	if sub, ok := claims["sub"].(string); ok {
		out.Subject = sub
	}
	if name, ok := claims["name"].(string); ok {
		out.Name = name
	}
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}

	if out.Email == "" && out.Subject == "" {
		d.logger.Error("external assertion carries neither sub nor email claim")
		return nil, ErrTokenMalformed
	}

	return out, nil
}

func multiKeyfunc(jwkSetURLs []string) (jwt.Keyfunc, error) {
	opts := keyfunc.Options{
		RefreshErrorHandler: func(err error) {
			log.Printf("failed to do a background refresh of JWT set: %s", err)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	}

	m := make(map[string]keyfunc.Options, len(jwkSetURLs))
	for _, url := range jwkSetURLs {
		m[url] = opts
	}

	multi, err := keyfunc.GetMultiple(m, keyfunc.MultipleOptions{
		KeySelector: keyfunc.KeySelectorFirst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get JWT URLs: %w", err)
	}

	return multi.Keyfunc, nil
}
