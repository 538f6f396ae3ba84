package auth_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"app/internal/domain/model"
	auth "app/internal/usecase/auth_usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newRefreshUsecaseForTest(users *userRepoMock, tokens *refreshTokenRepoMock) *auth.RefreshUsecase {
	return auth.NewRefreshUsecase(
		users,
		tokens,
		stubIssuer{},
		&seqIDGen{},
		fixedClock{t: testNow},
		30*24*time.Hour,
	)
}

func hashOf(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

func TestRefresh_RotatesToken(t *testing.T) {
	users := &userRepoMock{}
	tokens := &refreshTokenRepoMock{}
	uc := newRefreshUsecaseForTest(users, tokens)

	stored := &model.RefreshToken{
		ID:        "rt-1",
		UserID:    1,
		TokenHash: hashOf("plain-token"),
		UserAgent: "test-agent",
		ExpiresAt: testNow.Add(24 * time.Hour),
	}

	tokens.On("FindByTokenHash", mock.Anything, hashOf("plain-token")).Return(stored, nil)
	users.On("FindByID", mock.Anything, int64(1)).Return(&model.User{ID: 1, Role: model.RoleCustomer, TokenVersion: 2, IsActive: true}, nil)
	tokens.On("MarkUsed", mock.Anything, "rt-1", testNow).Return(nil)
	tokens.On("Create", mock.Anything, mock.MatchedBy(func(rt *model.RefreshToken) bool {
		//旧トークンとは別ID・別ハッシュ
		return rt.ID != "rt-1" && rt.TokenHash != stored.TokenHash && rt.UsedAt == nil
	})).Return(nil)

	out, side, err := uc.Execute(context.Background(), auth.RefreshInput{
		PlainRefreshToken: "plain-token",
		UserAgent:         "test-agent",
	})

	assert.NoError(t, err)
	assert.Equal(t, "access-token", out.Token.AccessToken)
	assert.Equal(t, 2, out.Token.TokenVersion)
	assert.NotEmpty(t, side.PlainRefreshToken)
	assert.NotEqual(t, "plain-token", side.PlainRefreshToken)
	tokens.AssertCalled(t, "MarkUsed", mock.Anything, "rt-1", testNow)
}

func TestRefresh_ReplayRevokesAllTokens(t *testing.T) {
	users := &userRepoMock{}
	tokens := &refreshTokenRepoMock{}
	uc := newRefreshUsecaseForTest(users, tokens)

	used := testNow.Add(-time.Hour)
	stored := &model.RefreshToken{
		ID:        "rt-1",
		UserID:    1,
		TokenHash: hashOf("plain-token"),
		ExpiresAt: testNow.Add(24 * time.Hour),
		UsedAt:    &used,
	}

	tokens.On("FindByTokenHash", mock.Anything, mock.Anything).Return(stored, nil)
	tokens.On("RevokeAllForUser", mock.Anything, int64(1), testNow).Return(nil)

	_, _, err := uc.Execute(context.Background(), auth.RefreshInput{PlainRefreshToken: "plain-token"})

	assert.ErrorIs(t, err, auth.ErrSecurityIncident)
	tokens.AssertCalled(t, "RevokeAllForUser", mock.Anything, int64(1), testNow)
	tokens.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRefresh_UserAgentMismatch(t *testing.T) {
	users := &userRepoMock{}
	tokens := &refreshTokenRepoMock{}
	uc := newRefreshUsecaseForTest(users, tokens)

	stored := &model.RefreshToken{
		ID:        "rt-1",
		UserID:    1,
		TokenHash: hashOf("plain-token"),
		UserAgent: "agent-a",
		ExpiresAt: testNow.Add(24 * time.Hour),
	}

	tokens.On("FindByTokenHash", mock.Anything, mock.Anything).Return(stored, nil)
	tokens.On("RevokeAllForUser", mock.Anything, int64(1), testNow).Return(nil)

	_, _, err := uc.Execute(context.Background(), auth.RefreshInput{
		PlainRefreshToken: "plain-token",
		UserAgent:         "agent-b",
	})

	assert.ErrorIs(t, err, auth.ErrSecurityIncident)
}

func TestRefresh_ExpiredToken(t *testing.T) {
	users := &userRepoMock{}
	tokens := &refreshTokenRepoMock{}
	uc := newRefreshUsecaseForTest(users, tokens)

	stored := &model.RefreshToken{
		ID:        "rt-1",
		UserID:    1,
		TokenHash: hashOf("plain-token"),
		ExpiresAt: testNow.Add(-time.Minute),
	}

	tokens.On("FindByTokenHash", mock.Anything, mock.Anything).Return(stored, nil)

	_, _, err := uc.Execute(context.Background(), auth.RefreshInput{PlainRefreshToken: "plain-token"})

	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	tokens.AssertNotCalled(t, "RevokeAllForUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestChangePassword_InvalidatesAllTokens(t *testing.T) {
	users := &userRepoMock{}
	tokens := &refreshTokenRepoMock{}
	uc := auth.NewChangePasswordUsecase(users, tokens, plainHasher{}, stubVerifier{ok: true}, fixedClock{t: testNow})

	user := &model.User{ID: 1, PasswordHash: "old-hash", IsActive: true}
	users.On("FindByID", mock.Anything, int64(1)).Return(user, nil)
	users.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.PasswordHash == "hashed:new-strong-password"
	})).Return(nil)
	users.On("IncrementTokenVersion", mock.Anything, int64(1)).Return(nil)
	tokens.On("RevokeAllForUser", mock.Anything, int64(1), testNow).Return(nil)

	err := uc.Execute(context.Background(), auth.ChangePasswordInput{
		UserID:          1,
		CurrentPassword: "old-password-ok",
		NewPassword:     "new-strong-password",
	})

	assert.NoError(t, err)
	users.AssertCalled(t, "IncrementTokenVersion", mock.Anything, int64(1))
	tokens.AssertCalled(t, "RevokeAllForUser", mock.Anything, int64(1), testNow)
}

func TestChangePassword_WrongCurrentPassword(t *testing.T) {
	users := &userRepoMock{}
	tokens := &refreshTokenRepoMock{}
	uc := auth.NewChangePasswordUsecase(users, tokens, plainHasher{}, stubVerifier{ok: false}, fixedClock{t: testNow})

	users.On("FindByID", mock.Anything, int64(1)).Return(&model.User{ID: 1, PasswordHash: "old-hash", IsActive: true}, nil)

	err := uc.Execute(context.Background(), auth.ChangePasswordInput{
		UserID:          1,
		CurrentPassword: "wrong",
		NewPassword:     "new-strong-password",
	})

	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	tokens.AssertNotCalled(t, "RevokeAllForUser", mock.Anything, mock.Anything, mock.Anything)
}
