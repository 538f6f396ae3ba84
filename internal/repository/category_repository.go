package repository

import (
	"context"

	"app/internal/domain/model"
)

type CategoryRepository interface {
	Create(ctx context.Context, c model.Category) (model.Category, error)
	FindByID(ctx context.Context, id int64) (model.Category, error)
	FindBySlug(ctx context.Context, slug string) (model.Category, error)
	// rootOnly=trueならparent_id IS NULLだけ
	ListActive(ctx context.Context, rootOnly bool) ([]model.Category, error)
	Update(ctx context.Context, c model.Category) error
	Delete(ctx context.Context, id int64) error

	//削除ガード用
	CountChildren(ctx context.Context, id int64) (int64, error)
	CountProducts(ctx context.Context, id int64) (int64, error)
}
