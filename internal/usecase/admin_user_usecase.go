package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"time"

	"app/internal/domain/model"
	"app/internal/pagination"
	repo "app/internal/repository"

	"github.com/rs/zerolog"
)

var adminUserLogger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "admin_user_usecase").Logger()

// 管理者によるユーザー管理（一覧・ロール変更・停止）。
// ロール変更と停止はトークンバージョンを上げて既発行JWTを無効化する。
type AdminUserUsecase struct {
	tx repo.TransactionManager
}

func NewAdminUserUsecase(tx repo.TransactionManager) *AdminUserUsecase {
	return &AdminUserUsecase{tx: tx}
}

type UserOutput struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

type UserListInput struct {
	Page       int
	PageSize   int
	Role       string
	ActiveOnly bool
}

type UserListOutput struct {
	Items    []UserOutput        `json:"items"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

func (u *AdminUserUsecase) List(ctx context.Context, in UserListInput) (UserListOutput, error) {
	if in.Role != "" && !model.Role(in.Role).IsValid() {
		return UserListOutput{}, errValidation("invalid role")
	}

	var out UserListOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		info := pagination.Normalize(in.Page, in.PageSize, 0)
		users, total, err := r.Users().List(ctx, repo.UserListFilter{
			Page:       info.Page,
			Limit:      info.PageSize,
			Role:       in.Role,
			ActiveOnly: in.ActiveOnly,
		})
		if err != nil {
			return errInternal("db error")
		}
		info = pagination.Normalize(in.Page, in.PageSize, total)

		items := make([]UserOutput, 0, len(users))
		for _, usr := range users {
			items = append(items, toUserOutput(&usr))
		}

		out = UserListOutput{Items: items, PageInfo: info}
		return nil
	})

	if err != nil {
		return UserListOutput{}, err
	}
	return out, nil
}

// UpdateRole はユーザーのロールを変更する。
// 自分自身の降格は許さない（管理者が誰もいなくなる事故の防止）。
func (u *AdminUserUsecase) UpdateRole(ctx context.Context, actorUserID int64, targetUserID int64, newRole model.Role) (UserOutput, error) {
	if targetUserID <= 0 {
		return UserOutput{}, errValidation("invalid id")
	}
	if !newRole.IsValid() {
		return UserOutput{}, errValidation("invalid role")
	}
	if actorUserID == targetUserID {
		return UserOutput{}, errValidation("cannot change own role")
	}

	var out UserOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		target, err := r.Users().FindByID(ctx, targetUserID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("user not found")
		}
		if err != nil {
			return errInternal("db error")
		}
		if target.Role == newRole {
			out = toUserOutput(target)
			return nil
		}

		oldRole := target.Role
		target.Role = newRole
		if err := r.Users().Update(ctx, target); err != nil {
			return errInternal("db error")
		}

		//既発行トークンのロールは古いので失効させる
		if err := r.Users().IncrementTokenVersion(ctx, targetUserID); err != nil {
			return errInternal("db error")
		}

		writeUserAudit(ctx, r, actorUserID, targetUserID, model.AuditActionUpdateUserRole,
			map[string]string{"role": string(oldRole)},
			map[string]string{"role": string(newRole)},
		)

		adminUserLogger.Info().
			Int64("actor_user_id", actorUserID).
			Int64("target_user_id", targetUserID).
			Str("from", string(oldRole)).
			Str("to", string(newRole)).
			Msg("user role updated")

		out = toUserOutput(target)
		return nil
	})

	if err != nil {
		return UserOutput{}, err
	}
	return out, nil
}

// Deactivate はユーザーを停止する。停止済みなら何もしない。
func (u *AdminUserUsecase) Deactivate(ctx context.Context, actorUserID int64, targetUserID int64) (UserOutput, error) {
	if targetUserID <= 0 {
		return UserOutput{}, errValidation("invalid id")
	}
	if actorUserID == targetUserID {
		return UserOutput{}, errValidation("cannot deactivate self")
	}

	var out UserOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		target, err := r.Users().FindByID(ctx, targetUserID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("user not found")
		}
		if err != nil {
			return errInternal("db error")
		}
		if !target.IsActive {
			out = toUserOutput(target)
			return nil
		}

		target.IsActive = false
		if err := r.Users().Update(ctx, target); err != nil {
			return errInternal("db error")
		}
		if err := r.Users().IncrementTokenVersion(ctx, targetUserID); err != nil {
			return errInternal("db error")
		}

		writeUserAudit(ctx, r, actorUserID, targetUserID, model.AuditActionDeactivateUser,
			map[string]bool{"is_active": true},
			map[string]bool{"is_active": false},
		)

		adminUserLogger.Info().
			Int64("actor_user_id", actorUserID).
			Int64("target_user_id", targetUserID).
			Msg("user deactivated")

		out = toUserOutput(target)
		return nil
	})

	if err != nil {
		return UserOutput{}, err
	}
	return out, nil
}

func writeUserAudit(ctx context.Context, r repo.TxRepos, actorUserID int64, targetUserID int64, action model.AuditAction, before interface{}, after interface{}) {
	b, _ := json.Marshal(before)
	a, _ := json.Marshal(after)

	if err := r.AuditLogs().Create(ctx, model.AuditLog{
		ActorUserID:  actorUserID,
		Action:       action,
		ResourceType: model.AuditResourceUser,
		ResourceID:   targetUserID,
		BeforeJSON:   string(b),
		AfterJSON:    string(a),
		CreatedAt:    time.Now().UTC(),
	}); err != nil {
		adminUserLogger.Error().Err(err).Int64("target_user_id", targetUserID).Msg("failed to write audit log")
	}
}

func toUserOutput(u *model.User) UserOutput {
	return UserOutput{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		Role:        string(u.Role),
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}
