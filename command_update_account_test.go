package mealdiary_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mealdiary/mealdiary"
)

func TestUpdateProfileHandler(t *testing.T) {
	repo := &MockRepositoryManager{}
	users := &MockUsers{}
	user := newTestUser()

	repo.On("Users").Return(users)
	repo.On("RunInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	users.On("GetByIdentifierTx", mock.Anything, mock.Anything, user.ID.String()).
		Return(user, nil).Once()
	users.On("UpdateTx", mock.Anything, mock.Anything, mock.MatchedBy(func(u *mealdiary.User) bool {
		return u.Profile["avatar"] == "https://img.example.com/a.png"
	})).Return(user, nil).Once()

	var resp *mealdiary.UpdateProfileResponse
	handler := mealdiary.NewUpdateProfileHandler(repo)
	err := handler.Execute(context.Background(), mealdiary.UpdateProfileMessage{
		Identifier: user.ID.String(),
		Profile:    map[string]any{"avatar": "https://img.example.com/a.png"},
		OnResponse: func(r *mealdiary.UpdateProfileResponse) { resp = r },
	})
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.NotNil(t, resp.User)
	users.AssertExpectations(t)
}

// The incoming object is the whole profile: stored keys absent from it
// are gone afterwards.
func TestUpdateProfileHandlerReplacesWholesale(t *testing.T) {
	repo := &MockRepositoryManager{}
	users := &MockUsers{}
	user := newTestUser()
	user.Profile = map[string]any{"locale": "es", "kcalDemand": 1800}

	repo.On("Users").Return(users)
	repo.On("RunInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	users.On("GetByIdentifierTx", mock.Anything, mock.Anything, user.ID.String()).
		Return(user, nil).Once()
	users.On("UpdateTx", mock.Anything, mock.Anything, mock.MatchedBy(func(u *mealdiary.User) bool {
		_, hadLocale := u.Profile["locale"]
		return u.Profile["kcalDemand"] == 2000 && !hadLocale
	})).Return(user, nil).Once()

	handler := mealdiary.NewUpdateProfileHandler(repo)
	err := handler.Execute(context.Background(), mealdiary.UpdateProfileMessage{
		Identifier: user.ID.String(),
		Profile:    map[string]any{"kcalDemand": 2000},
	})
	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestUpdateProfileHandlerUnknownUser(t *testing.T) {
	repo := &MockRepositoryManager{}
	users := &MockUsers{}

	repo.On("Users").Return(users)
	repo.On("RunInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	users.On("GetByIdentifierTx", mock.Anything, mock.Anything, "ghost@x.com").
		Return(nil, repository.NewRecordNotFound()).Once()

	handler := mealdiary.NewUpdateProfileHandler(repo)
	err := handler.Execute(context.Background(), mealdiary.UpdateProfileMessage{
		Identifier: "ghost@x.com",
		Profile:    map[string]any{"locale": "en"},
	})
	assert.ErrorIs(t, err, mealdiary.ErrIdentityNotFound)
}

func TestUpdateAccountHandlerChangesPassword(t *testing.T) {
	repo := &MockRepositoryManager{}
	users := &MockUsers{}
	user := newResetUser(t, "OldSecret1")

	repo.On("Users").Return(users)
	repo.On("RunInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	users.On("GetByIdentifierTx", mock.Anything, mock.Anything, user.ID.String()).
		Return(user, nil).Once()

	var updated *mealdiary.User
	users.On("UpdateTx", mock.Anything, mock.Anything, mock.AnythingOfType("*mealdiary.User")).
		Run(func(args mock.Arguments) { updated = args.Get(2).(*mealdiary.User) }).
		Return(user, nil).Once()

	handler := mealdiary.NewUpdateAccountHandler(repo)
	err := handler.Execute(context.Background(), mealdiary.UpdateAccountMessage{
		Identifier:      user.ID.String(),
		OldPassword:     "OldSecret1",
		Password:        "NewSecret2",
		ConfirmPassword: "NewSecret2",
	})
	require.NoError(t, err)

	require.NotNil(t, updated)
	assert.NoError(t, mealdiary.ComparePasswordAndHash("NewSecret2", updated.PasswordHash))
	users.AssertExpectations(t)
}

// A name or email change alone never asks for the current password.
func TestUpdateAccountHandlerNameOnly(t *testing.T) {
	repo := &MockRepositoryManager{}
	users := &MockUsers{}
	user := newResetUser(t, "OldSecret1")
	originalHash := user.PasswordHash

	repo.On("Users").Return(users)
	repo.On("RunInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	users.On("GetByIdentifierTx", mock.Anything, mock.Anything, user.ID.String()).
		Return(user, nil).Once()

	var updated *mealdiary.User
	users.On("UpdateTx", mock.Anything, mock.Anything, mock.AnythingOfType("*mealdiary.User")).
		Run(func(args mock.Arguments) { updated = args.Get(2).(*mealdiary.User) }).
		Return(user, nil).Once()

	handler := mealdiary.NewUpdateAccountHandler(repo)
	err := handler.Execute(context.Background(), mealdiary.UpdateAccountMessage{
		Identifier: user.ID.String(),
		Name:       "Ana Maria",
	})
	require.NoError(t, err)

	require.NotNil(t, updated)
	assert.Equal(t, "Ana Maria", updated.Name)
	assert.Equal(t, originalHash, updated.PasswordHash)
}

func TestUpdateAccountHandlerWrongOldPassword(t *testing.T) {
	repo := &MockRepositoryManager{}
	users := &MockUsers{}
	user := newResetUser(t, "OldSecret1")

	repo.On("Users").Return(users)
	repo.On("RunInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	users.On("GetByIdentifierTx", mock.Anything, mock.Anything, user.ID.String()).
		Return(user, nil).Once()

	handler := mealdiary.NewUpdateAccountHandler(repo)
	err := handler.Execute(context.Background(), mealdiary.UpdateAccountMessage{
		Identifier:      user.ID.String(),
		OldPassword:     "not-my-password",
		Password:        "NewSecret2",
		ConfirmPassword: "NewSecret2",
	})

	assert.ErrorIs(t, err, mealdiary.ErrMismatchedHashAndPassword)
	users.AssertNotCalled(t, "UpdateTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateAccountHandlerPasswordConfirmation(t *testing.T) {
	repo := &MockRepositoryManager{}

	handler := mealdiary.NewUpdateAccountHandler(repo)
	err := handler.Execute(context.Background(), mealdiary.UpdateAccountMessage{
		Identifier:      "whoever",
		OldPassword:     "OldSecret1",
		Password:        "NewSecret2",
		ConfirmPassword: "typo",
	})

	assert.ErrorIs(t, err, mealdiary.ErrPasswordConfirmation)
	repo.AssertNotCalled(t, "RunInTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteAccountHandler(t *testing.T) {
	repo := &MockRepositoryManager{}
	users := &MockUsers{}
	user := newTestUser()

	repo.On("Users").Return(users)
	repo.On("RunInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	users.On("GetByIdentifierTx", mock.Anything, mock.Anything, user.ID.String()).
		Return(user, nil).Once()
	users.On("DeleteTx", mock.Anything, mock.Anything, user).Return(nil).Once()

	var resp *mealdiary.DeleteAccountResponse
	handler := mealdiary.NewDeleteAccountHandler(repo)
	err := handler.Execute(context.Background(), mealdiary.DeleteAccountMessage{
		Identifier: user.ID.String(),
		OnResponse: func(r *mealdiary.DeleteAccountResponse) { resp = r },
	})
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, user.ID, resp.User.ID)
	users.AssertExpectations(t)
}

func TestDeleteAccountHandlerUnknownUser(t *testing.T) {
	repo := &MockRepositoryManager{}
	users := &MockUsers{}

	repo.On("Users").Return(users)
	repo.On("RunInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	users.On("GetByIdentifierTx", mock.Anything, mock.Anything, "ghost@x.com").
		Return(nil, repository.NewRecordNotFound()).Once()

	handler := mealdiary.NewDeleteAccountHandler(repo)
	err := handler.Execute(context.Background(), mealdiary.DeleteAccountMessage{
		Identifier: "ghost@x.com",
	})
	assert.ErrorIs(t, err, mealdiary.ErrIdentityNotFound)
}
