// Package mealdiary implements the domain core of a meal-diary service:
// account management, session and password-reset tokens, and diary
// storage with peer ratings.
//
// Accounts:
//   - Passwords are hashed with bcrypt at a fixed work factor. Accounts
//     bootstrapped from an external identity assertion carry a random
//     placeholder hash that no password signin can ever match.
//   - Session tokens are HMAC-signed JWTs with a one hour lifetime.
//     Reset tokens live fifteen minutes and are signed with a secret
//     derived from the current password hash, so a password change
//     invalidates every token issued before it.
//
// Diaries:
//   - A diary is one day of tracked meals with a macro breakdown.
//     Writes are owner-scoped; a diary owned by someone else behaves
//     exactly like a missing one. Ratings are stored privately and only
//     surfaced as an aggregate.
//
// Handlers follow a message/handler command shape: controllers build a
// message, Execute runs the work in a transaction, and results come
// back through the message's OnResponse callback.
package mealdiary
