package rest_test

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"

	"github.com/mealdiary/mealdiary"
)

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

func (m *MockUsers) ListAll(ctx context.Context) ([]*mealdiary.User, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]*mealdiary.User)
	return records, args.Error(1)
}

type MockDiaries struct {
	mock.Mock
	mealdiary.Diaries
}

func (m *MockDiaries) ListPublic(ctx context.Context) ([]*mealdiary.Diary, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]*mealdiary.Diary)
	return records, args.Error(1)
}

func (m *MockDiaries) ListByCreator(ctx context.Context, creatorID string) ([]*mealdiary.Diary, error) {
	args := m.Called(ctx, creatorID)
	records, _ := args.Get(0).([]*mealdiary.Diary)
	return records, args.Error(1)
}

func (m *MockDiaries) Create(ctx context.Context, record *mealdiary.Diary, criteria ...repository.InsertCriteria) (*mealdiary.Diary, error) {
	args := m.Called(ctx, record)
	diary, _ := args.Get(0).(*mealdiary.Diary)
	return diary, args.Error(1)
}

func (m *MockDiaries) UpdateOwned(ctx context.Context, id uuid.UUID, creatorID string, patch *mealdiary.DiaryPatch) (*mealdiary.Diary, error) {
	args := m.Called(ctx, id, creatorID, patch)
	diary, _ := args.Get(0).(*mealdiary.Diary)
	return diary, args.Error(1)
}

func (m *MockDiaries) DeleteOwned(ctx context.Context, id uuid.UUID, creatorID string) error {
	return m.Called(ctx, id, creatorID).Error(0)
}

func (m *MockDiaries) Rate(ctx context.Context, id uuid.UUID, rating mealdiary.Rating) (*mealdiary.Diary, error) {
	args := m.Called(ctx, id, rating)
	diary, _ := args.Get(0).(*mealdiary.Diary)
	return diary, args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	return m.Called(ctx, to, link).Error(0)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
