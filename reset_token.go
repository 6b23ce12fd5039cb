package mealdiary

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// ResetTokenTTL is the lifetime of a password reset token.
const ResetTokenTTL = 15 * time.Minute

// ResetTokenService mints and verifies password reset tokens. The signing
// secret is derived per user from the server secret plus the user's current
// password hash: completing a password change rotates the derived secret
// and every outstanding reset token stops verifying. One-time use falls
// out of the mutation itself, no revocation list needed.
type ResetTokenService struct {
	serverSecret []byte
	issuer       string
	logger       Logger
}

// NewResetTokenService creates a ResetTokenService.
func NewResetTokenService(serverSecret []byte, issuer string, logger Logger) *ResetTokenService {
	if logger == nil {
		logger = defLogger{}
	}
	return &ResetTokenService{
		serverSecret: serverSecret,
		issuer:       issuer,
		logger:       logger,
	}
}

func (rs *ResetTokenService) derivedSecret(user *User) []byte {
	return append(append([]byte{}, rs.serverSecret...), []byte(user.PasswordHash)...)
}

// Generate mints a reset token bound to the user's current password hash.
func (rs *ResetTokenService) Generate(user *User) (string, error) {
	if user == nil {
		return "", errors.New("user must not be nil", errors.CategoryInternal)
	}

	now := time.Now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    rs.issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ResetTokenTTL)),
		},
		UID:   user.ID.String(),
		Email: user.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(rs.derivedSecret(user))
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign reset token")
	}

	return signed, nil
}

// Validate verifies a reset token against the user's derived secret.
func (rs *ResetTokenService) Validate(tokenString string, user *User) (AuthClaims, error) {
	if user == nil {
		return nil, ErrTokenMalformed
	}
	return validateHMAC(tokenString, rs.derivedSecret(user), rs.issuer, rs.logger)
}

// SubjectOf extracts the subject claim without verifying the signature.
// The reset flow needs the subject first to load the user whose password
// hash completes the verification key.
func SubjectOf(tokenString string) (string, error) {
	claims := &JWTClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return "", errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}
	return claims.Subject(), nil
}
