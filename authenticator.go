package mealdiary

import (
	"context"

	"github.com/goliatone/go-repository-bun"
)

// Auther verifies password credentials and mints session tokens.
type Auther struct {
	users        Users
	tokenService TokenService
	logger       Logger
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(users Users, tokenService TokenService) *Auther {
	return &Auther{
		users:        users,
		tokenService: tokenService,
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the email/password pair and returns a session token
// plus the matched account. An unknown email and a wrong password fail
// with distinct errors.
func (s *Auther) Login(ctx context.Context, email, password string) (string, *User, error) {
	user, err := s.users.GetByIdentifier(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return "", nil, ErrIdentityNotFound
		}
		s.logger.Error("Login identity lookup error: %v", err)
		return "", nil, err
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		s.logger.Error("Login password mismatch for user %s", user.ID)
		return "", nil, err
	}

	token, err := s.tokenService.Generate(user, DefaultSessionTTL)
	if err != nil {
		s.logger.Error("Login token generation error: %v", err)
		return "", nil, err
	}

	return token, user, nil
}
