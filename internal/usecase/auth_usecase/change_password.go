package auth

import (
	"context"
	"errors"

	"app/internal/repository"
)

type ChangePasswordInput struct {
	UserID          int64
	CurrentPassword string
	NewPassword     string
}

// パスワード変更。成功時はトークンバージョンを上げ、
// 既発行のアクセストークンとリフレッシュトークンをすべて失効する。
type ChangePasswordUsecase struct {
	userRepo repository.UserRepository
	rtRepo   repository.RefreshTokenRepository
	hasher   PasswordHasher
	verifier PasswordVerifier
	clock    Clock
}

func NewChangePasswordUsecase(
	userRepo repository.UserRepository,
	rtRepo repository.RefreshTokenRepository,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	clock Clock,
) *ChangePasswordUsecase {
	return &ChangePasswordUsecase{
		userRepo: userRepo,
		rtRepo:   rtRepo,
		hasher:   hasher,
		verifier: verifier,
		clock:    clock,
	}
}

func (u *ChangePasswordUsecase) Execute(ctx context.Context, in ChangePasswordInput) error {
	if in.UserID <= 0 {
		return ErrInvalidCredentials
	}
	if len(in.NewPassword) < 12 {
		return ErrPasswordTooShort
	}
	if isWeakPassword(in.NewPassword) {
		return ErrWeakPassword
	}

	user, err := u.userRepo.FindByID(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	if !user.IsActive {
		return ErrUserInactive
	}

	if !u.verifier.Verify(in.CurrentPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hashed, err := u.hasher.Hash(in.NewPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hashed
	if err := u.userRepo.Update(ctx, user); err != nil {
		return err
	}

	//既発行トークンを全失効
	if err := u.userRepo.IncrementTokenVersion(ctx, in.UserID); err != nil {
		return err
	}
	return u.rtRepo.RevokeAllForUser(ctx, in.UserID, u.clock.Now())
}
