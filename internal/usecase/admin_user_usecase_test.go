package usecase_test

import (
	"context"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newAdminUserUsecaseForTest(users *userRepoMock, auditLogs *auditLogRepoMock) *usecase.AdminUserUsecase {
	tx := &txManagerMock{Repos: &txReposMock{
		users:     users,
		auditLogs: auditLogs,
	}}
	return usecase.NewAdminUserUsecase(tx)
}

func TestAdminUserList(t *testing.T) {
	users := &userRepoMock{}
	uc := newAdminUserUsecaseForTest(users, &auditLogRepoMock{})

	users.On("List", mock.Anything, mock.MatchedBy(func(f repo.UserListFilter) bool {
		return f.Role == "customer" && f.ActiveOnly && f.Page == 1 && f.Limit == 20
	})).Return([]model.User{
		{ID: 1, Email: "a@example.com", Username: "alice", Role: model.RoleCustomer, IsActive: true},
		{ID: 2, Email: "b@example.com", Username: "bob", Role: model.RoleCustomer, IsActive: true},
	}, int64(2), nil)

	out, err := uc.List(context.Background(), usecase.UserListInput{Role: "customer", ActiveOnly: true})

	assert.NoError(t, err)
	assert.Len(t, out.Items, 2)
	assert.Equal(t, "alice", out.Items[0].Username)
	assert.Equal(t, "bob", out.Items[1].Username)
	assert.Equal(t, int64(2), out.PageInfo.TotalItems)
}

func TestAdminUserList_InvalidRole(t *testing.T) {
	users := &userRepoMock{}
	uc := newAdminUserUsecaseForTest(users, &auditLogRepoMock{})

	_, err := uc.List(context.Background(), usecase.UserListInput{Role: "superuser"})

	ue, ok := usecase.AsError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.KindValidation, ue.Kind)
	users.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestAdminUpdateRole_InvalidatesTokens(t *testing.T) {
	users := &userRepoMock{}
	auditLogs := &auditLogRepoMock{}

	uc := newAdminUserUsecaseForTest(users, auditLogs)

	target := &model.User{ID: 2, Email: "c@example.com", Role: model.RoleCashier, IsActive: true}

	users.On("FindByID", mock.Anything, int64(2)).Return(target, nil)
	users.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.ID == 2 && u.Role == model.RoleManager
	})).Return(nil)
	users.On("IncrementTokenVersion", mock.Anything, int64(2)).Return(nil)
	auditLogs.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateUserRole && l.ResourceID == 2 && l.ActorUserID == 1
	})).Return(nil)

	out, err := uc.UpdateRole(context.Background(), 1, 2, model.RoleManager)

	assert.NoError(t, err)
	assert.Equal(t, string(model.RoleManager), out.Role)
	users.AssertCalled(t, "IncrementTokenVersion", mock.Anything, int64(2))
	auditLogs.AssertExpectations(t)
}

func TestAdminUpdateRole_SelfChangeRejected(t *testing.T) {
	users := &userRepoMock{}
	uc := newAdminUserUsecaseForTest(users, &auditLogRepoMock{})

	_, err := uc.UpdateRole(context.Background(), 1, 1, model.RoleCustomer)

	ue, ok := usecase.AsError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.KindValidation, ue.Kind)
	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAdminUpdateRole_SameRoleIsNoop(t *testing.T) {
	users := &userRepoMock{}
	uc := newAdminUserUsecaseForTest(users, &auditLogRepoMock{})

	target := &model.User{ID: 2, Role: model.RoleCashier, IsActive: true}
	users.On("FindByID", mock.Anything, int64(2)).Return(target, nil)

	out, err := uc.UpdateRole(context.Background(), 1, 2, model.RoleCashier)

	assert.NoError(t, err)
	assert.Equal(t, string(model.RoleCashier), out.Role)
	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	users.AssertNotCalled(t, "IncrementTokenVersion", mock.Anything, mock.Anything)
}

func TestAdminDeactivate(t *testing.T) {
	users := &userRepoMock{}
	auditLogs := &auditLogRepoMock{}

	uc := newAdminUserUsecaseForTest(users, auditLogs)

	target := &model.User{ID: 2, Role: model.RoleCustomer, IsActive: true}

	users.On("FindByID", mock.Anything, int64(2)).Return(target, nil)
	users.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.ID == 2 && !u.IsActive
	})).Return(nil)
	users.On("IncrementTokenVersion", mock.Anything, int64(2)).Return(nil)
	auditLogs.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionDeactivateUser
	})).Return(nil)

	out, err := uc.Deactivate(context.Background(), 1, 2)

	assert.NoError(t, err)
	assert.False(t, out.IsActive)
}

func TestAdminDeactivate_SelfRejected(t *testing.T) {
	users := &userRepoMock{}
	uc := newAdminUserUsecaseForTest(users, &auditLogRepoMock{})

	_, err := uc.Deactivate(context.Background(), 1, 1)

	ue, ok := usecase.AsError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.KindValidation, ue.Kind)
}
