package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/pagination"
	repo "app/internal/repository"

	"github.com/rs/zerolog"
)

var productLogger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "product_usecase").Logger()

// 商品詳細のキャッシュ。実装はinfra/cache（Redis）。
// キャッシュ障害は握りつぶしてDBへフォールバックする。
type ProductCacheStore interface {
	Get(ctx context.Context, productID int64) (model.Product, error)
	Set(ctx context.Context, p model.Product) error
	Invalidate(ctx context.Context, productID int64) error
}

type ProductUsecase struct {
	products   repo.ProductRepository
	categories repo.CategoryRepository
	tx         repo.TransactionManager
	cache      ProductCacheStore //nilでもよい
}

func NewProductUsecase(
	products repo.ProductRepository,
	categories repo.CategoryRepository,
	tx repo.TransactionManager,
	cache ProductCacheStore,
) *ProductUsecase {
	return &ProductUsecase{
		products:   products,
		categories: categories,
		tx:         tx,
		cache:      cache,
	}
}

type ProductListInput struct {
	Page       int
	PageSize   int
	Q          string
	CategoryID *int64
	Featured   *bool
	MinPrice   *int64
	MaxPrice   *int64
	Sort       string
}

type ProductOutput struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	Slug               string `json:"slug"`
	Description        string `json:"description"`
	Price              int64  `json:"price"`
	ComparePrice       *int64 `json:"compare_price,omitempty"`
	DiscountPercentage int64  `json:"discount_percentage"`
	SKU                string `json:"sku"`
	Stock              int64  `json:"stock"`
	InStock            bool   `json:"in_stock"`
	CategoryID         int64  `json:"category_id"`
	IsActive           bool   `json:"is_active"`
	IsFeatured         bool   `json:"is_featured"`
}

type ProductListOutput struct {
	Items    []ProductOutput     `json:"items"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

var allowedProductSorts = map[string]bool{
	"":           true,
	"price_asc":  true,
	"price_desc": true,
	"newest":     true,
	"name":       true,
}

// List は公開中の商品一覧を返す。
func (u *ProductUsecase) List(ctx context.Context, in ProductListInput) (ProductListOutput, error) {
	if !allowedProductSorts[in.Sort] {
		return ProductListOutput{}, errValidation("invalid sort")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && *in.MinPrice > *in.MaxPrice {
		return ProductListOutput{}, errValidation("min_price must not exceed max_price")
	}

	info := pagination.Normalize(in.Page, in.PageSize, 0)

	products, total, err := u.products.ListPublic(ctx, repo.ProductListQuery{
		Page:       info.Page,
		Limit:      info.PageSize,
		Q:          strings.TrimSpace(in.Q),
		CategoryID: in.CategoryID,
		Featured:   in.Featured,
		MinPrice:   in.MinPrice,
		MaxPrice:   in.MaxPrice,
		Sort:       in.Sort,
	})
	if err != nil {
		return ProductListOutput{}, errInternal("db error")
	}

	info = pagination.Normalize(in.Page, in.PageSize, total)

	items := make([]ProductOutput, 0, len(products))
	for _, p := range products {
		items = append(items, toProductOutput(p))
	}

	return ProductListOutput{Items: items, PageInfo: info}, nil
}

// GetByID は商品詳細を返す。キャッシュがあれば先に引く。
func (u *ProductUsecase) GetByID(ctx context.Context, id int64) (ProductOutput, error) {
	if id <= 0 {
		return ProductOutput{}, errValidation("invalid id")
	}

	if u.cache != nil {
		if p, err := u.cache.Get(ctx, id); err == nil {
			if !p.IsActive {
				return ProductOutput{}, errNotFound("product not found")
			}
			return toProductOutput(p), nil
		}
	}

	p, err := u.products.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductOutput{}, errNotFound("product not found")
	}
	if err != nil {
		return ProductOutput{}, errInternal("db error")
	}
	if !p.IsActive {
		return ProductOutput{}, errNotFound("product not found")
	}

	if u.cache != nil {
		if err := u.cache.Set(ctx, p); err != nil {
			productLogger.Warn().Err(err).Int64("product_id", id).Msg("failed to cache product")
		}
	}

	return toProductOutput(p), nil
}

// GetBySlug はスラッグで商品詳細を返す。
func (u *ProductUsecase) GetBySlug(ctx context.Context, slug string) (ProductOutput, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return ProductOutput{}, errValidation("invalid slug")
	}

	p, err := u.products.FindBySlug(ctx, slug)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductOutput{}, errNotFound("product not found")
	}
	if err != nil {
		return ProductOutput{}, errInternal("db error")
	}
	if !p.IsActive {
		return ProductOutput{}, errNotFound("product not found")
	}
	return toProductOutput(p), nil
}

type CreateProductInput struct {
	Name         string
	Description  string
	Price        int64
	ComparePrice *int64
	SKU          string
	Barcode      *string
	Stock        int64
	CategoryID   int64
	IsActive     bool
	IsFeatured   bool
}

// Create は商品を作成する（管理者用）。スラッグは名前から生成する。
func (u *ProductUsecase) Create(ctx context.Context, in CreateProductInput) (ProductOutput, error) {
	if err := validateProductInput(in.Name, in.Price, in.SKU, in.Stock, in.CategoryID); err != nil {
		return ProductOutput{}, err
	}

	if _, err := u.categories.FindByID(ctx, in.CategoryID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ProductOutput{}, errValidation("category not found")
		}
		return ProductOutput{}, errInternal("db error")
	}

	p := model.Product{
		Name:         strings.TrimSpace(in.Name),
		Slug:         model.GenerateSlug(in.Name),
		Description:  in.Description,
		Price:        in.Price,
		ComparePrice: in.ComparePrice,
		SKU:          strings.TrimSpace(in.SKU),
		Barcode:      in.Barcode,
		Stock:        in.Stock,
		CategoryID:   in.CategoryID,
		IsActive:     in.IsActive,
		IsFeatured:   in.IsFeatured,
	}

	created, err := u.products.Create(ctx, p)
	if errors.Is(err, repo.ErrConflict) {
		return ProductOutput{}, NewError(KindConflict, "sku or slug already exists")
	}
	if err != nil {
		return ProductOutput{}, errInternal("db error")
	}

	productLogger.Info().Int64("product_id", created.ID).Str("sku", created.SKU).Msg("product created")
	return toProductOutput(created), nil
}

type UpdateProductInput struct {
	Name         *string
	Description  *string
	Price        *int64
	ComparePrice *int64
	Barcode      *string
	CategoryID   *int64
	IsActive     *bool
	IsFeatured   *bool
}

// Update は商品を部分更新する（管理者用）。SKUと在庫はここでは変更しない。
func (u *ProductUsecase) Update(ctx context.Context, id int64, in UpdateProductInput) (ProductOutput, error) {
	if id <= 0 {
		return ProductOutput{}, errValidation("invalid id")
	}

	p, err := u.products.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductOutput{}, errNotFound("product not found")
	}
	if err != nil {
		return ProductOutput{}, errInternal("db error")
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return ProductOutput{}, errValidation("name must not be empty")
		}
		p.Name = name
		p.Slug = model.GenerateSlug(name)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return ProductOutput{}, errValidation("price must not be negative")
		}
		p.Price = *in.Price
	}
	if in.ComparePrice != nil {
		p.ComparePrice = in.ComparePrice
	}
	if in.Barcode != nil {
		p.Barcode = in.Barcode
	}
	if in.CategoryID != nil {
		if _, err := u.categories.FindByID(ctx, *in.CategoryID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ProductOutput{}, errValidation("category not found")
			}
			return ProductOutput{}, errInternal("db error")
		}
		p.CategoryID = *in.CategoryID
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}

	if err := u.products.Update(ctx, p); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return ProductOutput{}, NewError(KindConflict, "slug already exists")
		}
		return ProductOutput{}, errInternal("db error")
	}

	u.invalidate(ctx, id)
	return toProductOutput(p), nil
}

// Delete は商品を論理削除する（管理者用）。
func (u *ProductUsecase) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errValidation("invalid id")
	}

	if _, err := u.products.FindByID(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("product not found")
		}
		return errInternal("db error")
	}

	if err := u.products.SoftDelete(ctx, id); err != nil {
		return errInternal("db error")
	}

	u.invalidate(ctx, id)
	productLogger.Info().Int64("product_id", id).Msg("product deleted")
	return nil
}

// SetStock は在庫数を直接設定する（管理者用）。調整履歴と監査ログを残す。
func (u *ProductUsecase) SetStock(ctx context.Context, actorUserID int64, productID int64, newStock int64) (ProductOutput, error) {
	if productID <= 0 {
		return ProductOutput{}, errValidation("invalid id")
	}
	if newStock < 0 {
		return ProductOutput{}, errValidation("stock must not be negative")
	}

	var out ProductOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByIDForUpdate(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("product not found")
		}
		if err != nil {
			return errInternal("db error")
		}

		if err := r.Inventory().SetStock(ctx, productID, newStock); err != nil {
			return errInternal("db error")
		}

		now := time.Now().UTC()
		if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
			ProductID:   productID,
			ActorUserID: actorUserID,
			Delta:       newStock - p.Stock,
			Reason:      "manual stock set",
			CreatedAt:   now,
		}); err != nil {
			return errInternal("db error")
		}

		before, _ := json.Marshal(map[string]int64{"stock": p.Stock})
		after, _ := json.Marshal(map[string]int64{"stock": newStock})
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorUserID,
			Action:       model.AuditActionUpdateStock,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   productID,
			BeforeJSON:   string(before),
			AfterJSON:    string(after),
			CreatedAt:    now,
		}); err != nil {
			productLogger.Error().Err(err).Int64("product_id", productID).Msg("failed to write audit log")
		}

		p.Stock = newStock
		out = toProductOutput(p)
		return nil
	})

	if err != nil {
		return ProductOutput{}, err
	}

	u.invalidate(ctx, productID)
	return out, nil
}

func (u *ProductUsecase) invalidate(ctx context.Context, productID int64) {
	if u.cache == nil {
		return
	}
	if err := u.cache.Invalidate(ctx, productID); err != nil {
		productLogger.Warn().Err(err).Int64("product_id", productID).Msg("failed to invalidate product cache")
	}
}

func validateProductInput(name string, price int64, sku string, stock int64, categoryID int64) error {
	if strings.TrimSpace(name) == "" {
		return errValidation("name must not be empty")
	}
	if price < 0 {
		return errValidation("price must not be negative")
	}
	if strings.TrimSpace(sku) == "" {
		return errValidation("sku must not be empty")
	}
	if stock < 0 {
		return errValidation("stock must not be negative")
	}
	if categoryID <= 0 {
		return errValidation("invalid category_id")
	}
	return nil
}

func toProductOutput(p model.Product) ProductOutput {
	return ProductOutput{
		ID:                 p.ID,
		Name:               p.Name,
		Slug:               p.Slug,
		Description:        p.Description,
		Price:              p.Price,
		ComparePrice:       p.ComparePrice,
		DiscountPercentage: p.DiscountPercentage(),
		SKU:                p.SKU,
		Stock:              p.Stock,
		InStock:            p.IsInStock(),
		CategoryID:         p.CategoryID,
		IsActive:           p.IsActive,
		IsFeatured:         p.IsFeatured,
	}
}
