package usecase_test

import (
	"context"
	"errors"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestProductGetByID_CacheHit(t *testing.T) {
	products := &productRepoMock{}
	cache := &productCacheMock{}
	uc := usecase.NewProductUsecase(products, &categoryRepoMock{}, nil, cache)

	cached := model.Product{ID: 1, Name: "Keyboard", Price: 1250, Stock: 5, IsActive: true}
	cache.On("Get", mock.Anything, int64(1)).Return(cached, nil)

	out, err := uc.GetByID(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, "Keyboard", out.Name)
	//キャッシュヒット時はDBに行かない
	products.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestProductGetByID_CacheMissFallsBackToDB(t *testing.T) {
	products := &productRepoMock{}
	cache := &productCacheMock{}
	uc := usecase.NewProductUsecase(products, &categoryRepoMock{}, nil, cache)

	p := model.Product{ID: 1, Name: "Keyboard", Price: 1250, Stock: 5, IsActive: true}
	cache.On("Get", mock.Anything, int64(1)).Return(model.Product{}, errors.New("redis down"))
	products.On("FindByID", mock.Anything, int64(1)).Return(p, nil)
	cache.On("Set", mock.Anything, p).Return(nil)

	out, err := uc.GetByID(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, "Keyboard", out.Name)
	cache.AssertCalled(t, "Set", mock.Anything, p)
}

func TestProductGetByID_NilCacheIsFine(t *testing.T) {
	products := &productRepoMock{}
	uc := usecase.NewProductUsecase(products, &categoryRepoMock{}, nil, nil)

	p := model.Product{ID: 1, Name: "Keyboard", IsActive: true}
	products.On("FindByID", mock.Anything, int64(1)).Return(p, nil)

	out, err := uc.GetByID(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.ID)
}

func TestProductGetByID_InactiveIsNotFound(t *testing.T) {
	products := &productRepoMock{}
	uc := usecase.NewProductUsecase(products, &categoryRepoMock{}, nil, nil)

	products.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, IsActive: false}, nil)

	_, err := uc.GetByID(context.Background(), 1)

	ue, ok := usecase.AsError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.KindNotFound, ue.Kind)
}

func TestProductList_InvalidSortRejected(t *testing.T) {
	products := &productRepoMock{}
	uc := usecase.NewProductUsecase(products, &categoryRepoMock{}, nil, nil)

	_, err := uc.List(context.Background(), usecase.ProductListInput{Sort: "price; DROP TABLE products"})

	ue, ok := usecase.AsError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.KindValidation, ue.Kind)
	products.AssertNotCalled(t, "ListPublic", mock.Anything, mock.Anything)
}

func TestProductList_PriceRangeValidated(t *testing.T) {
	products := &productRepoMock{}
	uc := usecase.NewProductUsecase(products, &categoryRepoMock{}, nil, nil)

	min := int64(5000)
	max := int64(1000)
	_, err := uc.List(context.Background(), usecase.ProductListInput{MinPrice: &min, MaxPrice: &max})

	ue, ok := usecase.AsError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.KindValidation, ue.Kind)
}

func TestProductCreate_DuplicateSKU(t *testing.T) {
	products := &productRepoMock{}
	categories := &categoryRepoMock{}
	uc := usecase.NewProductUsecase(products, categories, nil, nil)

	categories.On("FindByID", mock.Anything, int64(10)).Return(model.Category{ID: 10}, nil)
	products.On("Create", mock.Anything, mock.Anything).Return(model.Product{}, repo.ErrConflict)

	_, err := uc.Create(context.Background(), usecase.CreateProductInput{
		Name:       "Keyboard",
		Price:      1250,
		SKU:        "KB-001",
		Stock:      5,
		CategoryID: 10,
		IsActive:   true,
	})

	ue, ok := usecase.AsError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.KindConflict, ue.Kind)
}

func TestProductCreate_UnknownCategory(t *testing.T) {
	products := &productRepoMock{}
	categories := &categoryRepoMock{}
	uc := usecase.NewProductUsecase(products, categories, nil, nil)

	categories.On("FindByID", mock.Anything, int64(99)).Return(model.Category{}, repo.ErrNotFound)

	_, err := uc.Create(context.Background(), usecase.CreateProductInput{
		Name:       "Keyboard",
		Price:      1250,
		SKU:        "KB-001",
		CategoryID: 99,
	})

	ue, ok := usecase.AsError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.KindValidation, ue.Kind)
	products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductUpdate_NameChangeRegeneratesSlug(t *testing.T) {
	products := &productRepoMock{}
	cache := &productCacheMock{}
	uc := usecase.NewProductUsecase(products, &categoryRepoMock{}, nil, cache)

	existing := model.Product{ID: 1, Name: "Old Name", Slug: "old-name", Price: 1000, CategoryID: 10, IsActive: true}
	products.On("FindByID", mock.Anything, int64(1)).Return(existing, nil)
	products.On("Update", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.Name == "Mechanical Keyboard" && p.Slug == "mechanical-keyboard"
	})).Return(nil)
	cache.On("Invalidate", mock.Anything, int64(1)).Return(nil)

	name := "Mechanical Keyboard"
	out, err := uc.Update(context.Background(), 1, usecase.UpdateProductInput{Name: &name})

	assert.NoError(t, err)
	assert.Equal(t, "mechanical-keyboard", out.Slug)
	cache.AssertCalled(t, "Invalidate", mock.Anything, int64(1))
}

func TestProductSetStock_RecordsAdjustmentAndAudit(t *testing.T) {
	products := &productRepoMock{}
	inventory := &inventoryRepoMock{}
	auditLogs := &auditLogRepoMock{}
	tx := &txManagerMock{Repos: &txReposMock{
		products:  products,
		inventory: inventory,
		auditLogs: auditLogs,
	}}
	uc := usecase.NewProductUsecase(products, &categoryRepoMock{}, tx, nil)

	products.On("FindByIDForUpdate", mock.Anything, int64(1)).Return(model.Product{ID: 1, Stock: 3, IsActive: true}, nil)
	inventory.On("SetStock", mock.Anything, int64(1), int64(10)).Return(nil)
	inventory.On("CreateAdjustment", mock.Anything, mock.MatchedBy(func(a model.InventoryAdjustment) bool {
		return a.ProductID == 1 && a.Delta == 7 && a.ActorUserID == 5
	})).Return(nil)
	auditLogs.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateStock && l.ResourceID == 1
	})).Return(nil)

	out, err := uc.SetStock(context.Background(), 5, 1, 10)

	assert.NoError(t, err)
	assert.Equal(t, int64(10), out.Stock)
	inventory.AssertExpectations(t)
}

func TestProductSetStock_NegativeRejected(t *testing.T) {
	uc := usecase.NewProductUsecase(&productRepoMock{}, &categoryRepoMock{}, nil, nil)

	_, err := uc.SetStock(context.Background(), 5, 1, -1)

	ue, ok := usecase.AsError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.KindValidation, ue.Kind)
}
