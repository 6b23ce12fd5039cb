package mealdiary

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// CallerKind discriminates how a request caller is identified.
type CallerKind int

const (
	// CallerUnknown is the zero value, an unauthenticated caller.
	CallerUnknown CallerKind = iota
	// CallerByID identifies the caller by their user ID.
	CallerByID
	// CallerByEmail identifies the caller by their email address. Sessions
	// minted from external assertions carry the email, not the local ID.
	CallerByEmail
)

// Caller is the authenticated identity attached to a request. It is a
// tagged value: exactly one of ID or Email is set, per Kind.
type Caller struct {
	Kind  CallerKind
	ID    string
	Email string
}

// NewCallerByID builds a caller identified by user ID.
func NewCallerByID(id string) Caller {
	return Caller{Kind: CallerByID, ID: id}
}

// NewCallerByEmail builds a caller identified by email.
func NewCallerByEmail(email string) Caller {
	return Caller{Kind: CallerByEmail, Email: email}
}

// Authenticated reports whether the caller carries an identity.
func (c Caller) Authenticated() bool {
	return c.Kind == CallerByID || c.Kind == CallerByEmail
}

// Identifier returns whichever identifier the caller carries.
func (c Caller) Identifier() string {
	if c.Kind == CallerByEmail {
		return c.Email
	}
	return c.ID
}

var callerCtxKey = &contextKey{"caller"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithCaller sets the Caller in the given context.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerCtxKey, caller)
}

// CallerFromContext finds the caller from the context.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	raw, ok := ctx.Value(callerCtxKey).(Caller)
	return raw, ok && raw.Authenticated()
}

// WithClaimsContext sets the AuthClaims in the given context.
func WithClaimsContext(ctx context.Context, claims AuthClaims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context.
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}

// CallerLocalsKey is the fiber locals key populated by the auth gate.
const CallerLocalsKey = "caller"

// CallerFromFiber extracts the Caller the auth gate stored in locals.
func CallerFromFiber(c *fiber.Ctx) (Caller, bool) {
	raw := c.Locals(CallerLocalsKey)
	if raw == nil {
		return Caller{}, false
	}
	caller, ok := raw.(Caller)
	return caller, ok && caller.Authenticated()
}
