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

func int64ptr(v int64) *int64 { return &v }

func TestCategoryUpdate_SelfParentRejected(t *testing.T) {
	categories := &categoryRepoMock{}
	uc := usecase.NewCategoryUsecase(categories)

	categories.On("FindByID", mock.Anything, int64(1)).Return(model.Category{ID: 1, Name: "Electronics"}, nil)

	_, err := uc.Update(context.Background(), 1, usecase.UpdateCategoryInput{ParentID: int64ptr(1)})

	ue, ok := usecase.AsError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.KindValidation, ue.Kind)
	categories.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCategoryUpdate_CycleRejected(t *testing.T) {
	categories := &categoryRepoMock{}
	uc := usecase.NewCategoryUsecase(categories)

	// 1 ← 2 ← 3 のツリーで 1 の親を 3 にしようとすると循環
	categories.On("FindByID", mock.Anything, int64(1)).Return(model.Category{ID: 1}, nil)
	categories.On("FindByID", mock.Anything, int64(3)).Return(model.Category{ID: 3, ParentID: int64ptr(2)}, nil)
	categories.On("FindByID", mock.Anything, int64(2)).Return(model.Category{ID: 2, ParentID: int64ptr(1)}, nil)

	_, err := uc.Update(context.Background(), 1, usecase.UpdateCategoryInput{ParentID: int64ptr(3)})

	ue, ok := usecase.AsError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.KindValidation, ue.Kind)
	categories.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCategoryUpdate_ReparentOK(t *testing.T) {
	categories := &categoryRepoMock{}
	uc := usecase.NewCategoryUsecase(categories)

	// 2 を 3（別ルートの子なし）へ付け替える
	categories.On("FindByID", mock.Anything, int64(2)).Return(model.Category{ID: 2, Name: "Keyboards", ParentID: int64ptr(1)}, nil)
	categories.On("FindByID", mock.Anything, int64(3)).Return(model.Category{ID: 3}, nil)
	categories.On("Update", mock.Anything, mock.MatchedBy(func(c model.Category) bool {
		return c.ID == 2 && c.ParentID != nil && *c.ParentID == 3
	})).Return(nil)

	out, err := uc.Update(context.Background(), 2, usecase.UpdateCategoryInput{ParentID: int64ptr(3)})

	assert.NoError(t, err)
	assert.Equal(t, int64(3), *out.ParentID)
}

func TestCategoryUpdate_ClearParent(t *testing.T) {
	categories := &categoryRepoMock{}
	uc := usecase.NewCategoryUsecase(categories)

	categories.On("FindByID", mock.Anything, int64(2)).Return(model.Category{ID: 2, ParentID: int64ptr(1)}, nil)
	categories.On("Update", mock.Anything, mock.MatchedBy(func(c model.Category) bool {
		return c.ID == 2 && c.ParentID == nil
	})).Return(nil)

	out, err := uc.Update(context.Background(), 2, usecase.UpdateCategoryInput{ClearParent: true})

	assert.NoError(t, err)
	assert.Nil(t, out.ParentID)
}

func TestCategoryDelete_BlockedByChildren(t *testing.T) {
	categories := &categoryRepoMock{}
	uc := usecase.NewCategoryUsecase(categories)

	categories.On("FindByID", mock.Anything, int64(1)).Return(model.Category{ID: 1}, nil)
	categories.On("CountChildren", mock.Anything, int64(1)).Return(int64(2), nil)

	err := uc.Delete(context.Background(), 1)

	ue, ok := usecase.AsError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.KindState, ue.Kind)
	categories.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestCategoryDelete_BlockedByProducts(t *testing.T) {
	categories := &categoryRepoMock{}
	uc := usecase.NewCategoryUsecase(categories)

	categories.On("FindByID", mock.Anything, int64(1)).Return(model.Category{ID: 1}, nil)
	categories.On("CountChildren", mock.Anything, int64(1)).Return(int64(0), nil)
	categories.On("CountProducts", mock.Anything, int64(1)).Return(int64(7), nil)

	err := uc.Delete(context.Background(), 1)

	ue, ok := usecase.AsError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.KindState, ue.Kind)
	categories.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestCategoryDelete_EmptyCategoryOK(t *testing.T) {
	categories := &categoryRepoMock{}
	uc := usecase.NewCategoryUsecase(categories)

	categories.On("FindByID", mock.Anything, int64(1)).Return(model.Category{ID: 1}, nil)
	categories.On("CountChildren", mock.Anything, int64(1)).Return(int64(0), nil)
	categories.On("CountProducts", mock.Anything, int64(1)).Return(int64(0), nil)
	categories.On("Delete", mock.Anything, int64(1)).Return(nil)

	err := uc.Delete(context.Background(), 1)

	assert.NoError(t, err)
	categories.AssertCalled(t, "Delete", mock.Anything, int64(1))
}

func TestCategoryCreate_SlugConflict(t *testing.T) {
	categories := &categoryRepoMock{}
	uc := usecase.NewCategoryUsecase(categories)

	categories.On("Create", mock.Anything, mock.Anything).Return(model.Category{}, repo.ErrConflict)

	_, err := uc.Create(context.Background(), usecase.CreateCategoryInput{Name: "Electronics"})

	ue, ok := usecase.AsError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.KindConflict, ue.Kind)
}
