package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"app/internal/repository"
)

// リフレッシュトークンの再利用を検知した（盗難の疑い）
var ErrSecurityIncident = errors.New("security incident")

type RefreshInput struct {
	PlainRefreshToken string
	UserAgent         string
}

type RefreshOutput struct {
	Token JwtAccessToken `json:"token"`
}

type RefreshSideEffect struct {
	PlainRefreshToken string
}

// リフレッシュトークンのローテーション。
// 古いトークンはused、新しいトークンを発行する。
// used済みトークンの再提示はリプレイとみなし、そのユーザーの全トークンを失効する。
type RefreshUsecase struct {
	userRepo   repository.UserRepository
	rtRepo     repository.RefreshTokenRepository
	issuer     AccessTokenIssuer
	idGen      IDGenerator
	clock      Clock
	refreshTTL time.Duration
}

func NewRefreshUsecase(
	userRepo repository.UserRepository,
	rtRepo repository.RefreshTokenRepository,
	issuer AccessTokenIssuer,
	idGen IDGenerator,
	clock Clock,
	refreshTTL time.Duration,
) *RefreshUsecase {
	return &RefreshUsecase{
		userRepo:   userRepo,
		rtRepo:     rtRepo,
		issuer:     issuer,
		idGen:      idGen,
		clock:      clock,
		refreshTTL: refreshTTL,
	}
}

func (u *RefreshUsecase) Execute(ctx context.Context, in RefreshInput) (RefreshOutput, RefreshSideEffect, error) {
	var out RefreshOutput
	var side RefreshSideEffect

	if in.PlainRefreshToken == "" {
		return out, side, ErrInvalidCredentials
	}

	hash := sha256.Sum256([]byte(in.PlainRefreshToken))
	tokenHash := hex.EncodeToString(hash[:])

	rt, err := u.rtRepo.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return out, side, ErrInvalidCredentials
		}
		return out, side, err
	}

	now := u.clock.Now()

	//期限切れ・失効済み
	if rt.ExpiresAt.Before(now) || rt.RevokedAt != nil {
		return out, side, ErrInvalidCredentials
	}

	//used済みが来たらリプレイ。全トークンを失効する。
	if rt.UsedAt != nil {
		_ = u.rtRepo.RevokeAllForUser(ctx, rt.UserID, now)
		return out, side, ErrSecurityIncident
	}

	//user_agent違いも再認証扱い
	if in.UserAgent != "" && rt.UserAgent != "" && in.UserAgent != rt.UserAgent {
		_ = u.rtRepo.RevokeAllForUser(ctx, rt.UserID, now)
		return out, side, ErrSecurityIncident
	}

	user, err := u.userRepo.FindByID(ctx, rt.UserID)
	if err != nil || user == nil {
		return out, side, ErrInvalidCredentials
	}
	if !user.IsActive {
		return out, side, ErrUserInactive
	}

	//古いトークンをusedにしてから新しいものを発行
	if err := u.rtRepo.MarkUsed(ctx, rt.ID, now); err != nil {
		return out, side, err
	}

	accessToken, accessExp, err := u.issuer.Issue(user.ID, user.Role, user.TokenVersion, now)
	if err != nil {
		return out, side, err
	}

	plainRefresh, err := generateSecureToken(32)
	if err != nil {
		return out, side, err
	}
	newHash := sha256.Sum256([]byte(plainRefresh))

	next := *rt
	next.ID = u.idGen.NewID()
	next.TokenHash = hex.EncodeToString(newHash[:])
	next.ExpiresAt = now.Add(u.refreshTTL)
	next.UsedAt = nil
	next.RevokedAt = nil
	next.CreatedAt = now
	next.UpdatedAt = now

	if err := u.rtRepo.Create(ctx, &next); err != nil {
		return out, side, err
	}

	out.Token = JwtAccessToken{
		AccessToken:  accessToken,
		ExpiresIn:    int(accessExp.Sub(now).Seconds()),
		TokenVersion: user.TokenVersion,
	}
	side.PlainRefreshToken = plainRefresh
	return out, side, nil
}
