package mealdiary_test

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"

	"github.com/mealdiary/mealdiary"
)

// MockRepositoryManager implements mealdiary.RepositoryManager. RunInTx
// invokes the transaction body with a zero bun.Tx unless an error was
// stubbed.
type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Users() mealdiary.Users {
	return m.Called().Get(0).(mealdiary.Users)
}

func (m *MockRepositoryManager) Diaries() mealdiary.Diaries {
	return m.Called().Get(0).(mealdiary.Diaries)
}

func (m *MockRepositoryManager) Validate() error {
	return m.Called().Error(0)
}

func (m *MockRepositoryManager) MustValidate() {
	m.Called()
}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(context.Context, bun.Tx) error) error {
	args := m.Called(ctx, opts, f)
	if err := args.Error(0); err != nil {
		return err
	}
	return f(ctx, bun.Tx{})
}

// MockUsers implements the subset of mealdiary.Users the handlers touch.
// The embedded interface panics on anything unstubbed.
type MockUsers struct {
	mock.Mock
	mealdiary.Users
}

func (m *MockUsers) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*mealdiary.User, error) {
	args := m.Called(ctx, identifier)
	user, _ := args.Get(0).(*mealdiary.User)
	return user, args.Error(1)
}

func (m *MockUsers) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (*mealdiary.User, error) {
	args := m.Called(ctx, tx, identifier)
	user, _ := args.Get(0).(*mealdiary.User)
	return user, args.Error(1)
}

func (m *MockUsers) CreateTx(ctx context.Context, tx bun.IDB, record *mealdiary.User, criteria ...repository.InsertCriteria) (*mealdiary.User, error) {
	args := m.Called(ctx, tx, record)
	user, _ := args.Get(0).(*mealdiary.User)
	return user, args.Error(1)
}

func (m *MockUsers) GetOrCreateTx(ctx context.Context, tx bun.IDB, record *mealdiary.User) (*mealdiary.User, error) {
	args := m.Called(ctx, tx, record)
	user, _ := args.Get(0).(*mealdiary.User)
	return user, args.Error(1)
}

func (m *MockUsers) UpdateTx(ctx context.Context, tx bun.IDB, record *mealdiary.User, criteria ...repository.UpdateCriteria) (*mealdiary.User, error) {
	args := m.Called(ctx, tx, record)
	user, _ := args.Get(0).(*mealdiary.User)
	return user, args.Error(1)
}

func (m *MockUsers) DeleteTx(ctx context.Context, tx bun.IDB, record *mealdiary.User) error {
	return m.Called(ctx, tx, record).Error(0)
}

func (m *MockUsers) ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	return m.Called(ctx, tx, id, passwordHash).Error(0)
}

// MockMailer records password reset deliveries.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	return m.Called(ctx, to, link).Error(0)
}

// MockLogger swallows output during tests.
type MockLogger struct{}

func (MockLogger) Debug(string, ...any) {}
func (MockLogger) Info(string, ...any)  {}
func (MockLogger) Warn(string, ...any)  {}
func (MockLogger) Error(string, ...any) {}
