package usecase

import (
	"context"
	"errors"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// カテゴリ管理。ツリーの循環防止と削除ガードを担う。
type CategoryUsecase struct {
	categories repo.CategoryRepository
}

func NewCategoryUsecase(categories repo.CategoryRepository) *CategoryUsecase {
	return &CategoryUsecase{categories: categories}
}

type CategoryOutput struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	ParentID    *int64 `json:"parent_id"`
	IsActive    bool   `json:"is_active"`
}

func (u *CategoryUsecase) List(ctx context.Context, rootOnly bool) ([]CategoryOutput, error) {
	cats, err := u.categories.ListActive(ctx, rootOnly)
	if err != nil {
		return nil, errInternal("db error")
	}

	out := make([]CategoryOutput, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategoryOutput(c))
	}
	return out, nil
}

func (u *CategoryUsecase) GetByID(ctx context.Context, id int64) (CategoryOutput, error) {
	if id <= 0 {
		return CategoryOutput{}, errValidation("invalid id")
	}
	c, err := u.categories.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return CategoryOutput{}, errNotFound("category not found")
	}
	if err != nil {
		return CategoryOutput{}, errInternal("db error")
	}
	return toCategoryOutput(c), nil
}

type CreateCategoryInput struct {
	Name        string
	Description string
	ParentID    *int64
}

func (u *CategoryUsecase) Create(ctx context.Context, in CreateCategoryInput) (CategoryOutput, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return CategoryOutput{}, errValidation("name must not be empty")
	}

	if in.ParentID != nil {
		if _, err := u.categories.FindByID(ctx, *in.ParentID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return CategoryOutput{}, errValidation("parent category not found")
			}
			return CategoryOutput{}, errInternal("db error")
		}
	}

	c := model.Category{
		Name:        name,
		Slug:        model.GenerateSlug(name),
		Description: in.Description,
		ParentID:    in.ParentID,
		IsActive:    true,
	}

	created, err := u.categories.Create(ctx, c)
	if errors.Is(err, repo.ErrConflict) {
		return CategoryOutput{}, NewError(KindConflict, "category slug already exists")
	}
	if err != nil {
		return CategoryOutput{}, errInternal("db error")
	}
	return toCategoryOutput(created), nil
}

type UpdateCategoryInput struct {
	Name        *string
	Description *string
	ParentID    *int64
	ClearParent bool
	IsActive    *bool
}

func (u *CategoryUsecase) Update(ctx context.Context, id int64, in UpdateCategoryInput) (CategoryOutput, error) {
	if id <= 0 {
		return CategoryOutput{}, errValidation("invalid id")
	}

	c, err := u.categories.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return CategoryOutput{}, errNotFound("category not found")
	}
	if err != nil {
		return CategoryOutput{}, errInternal("db error")
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return CategoryOutput{}, errValidation("name must not be empty")
		}
		c.Name = name
		c.Slug = model.GenerateSlug(name)
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.ClearParent {
		c.ParentID = nil
	} else if in.ParentID != nil {
		if *in.ParentID == id {
			return CategoryOutput{}, errValidation("category cannot be its own parent")
		}
		if _, err := u.categories.FindByID(ctx, *in.ParentID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return CategoryOutput{}, errValidation("parent category not found")
			}
			return CategoryOutput{}, errInternal("db error")
		}
		//新しい親の祖先をたどってidが出てきたら循環
		cyclic, err := u.wouldCreateCycle(ctx, id, *in.ParentID)
		if err != nil {
			return CategoryOutput{}, err
		}
		if cyclic {
			return CategoryOutput{}, errValidation("category tree must not contain cycles")
		}
		c.ParentID = in.ParentID
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}

	if err := u.categories.Update(ctx, c); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return CategoryOutput{}, NewError(KindConflict, "category slug already exists")
		}
		return CategoryOutput{}, errInternal("db error")
	}
	return toCategoryOutput(c), nil
}

// Delete はカテゴリを削除する。子カテゴリか商品が残っていれば拒否。
func (u *CategoryUsecase) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errValidation("invalid id")
	}

	if _, err := u.categories.FindByID(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("category not found")
		}
		return errInternal("db error")
	}

	children, err := u.categories.CountChildren(ctx, id)
	if err != nil {
		return errInternal("db error")
	}
	if children > 0 {
		return NewError(KindState, "category has child categories")
	}

	products, err := u.categories.CountProducts(ctx, id)
	if err != nil {
		return errInternal("db error")
	}
	if products > 0 {
		return NewError(KindState, "category has products")
	}

	if err := u.categories.Delete(ctx, id); err != nil {
		return errInternal("db error")
	}
	return nil
}

// 祖先を上にたどり、途中でcategoryIDに行き着けば循環になる。
// ツリーの深さは小さい前提なので素朴な逐次ルックアップで十分。
func (u *CategoryUsecase) wouldCreateCycle(ctx context.Context, categoryID int64, newParentID int64) (bool, error) {
	seen := map[int64]bool{}
	cur := newParentID

	for {
		if cur == categoryID {
			return true, nil
		}
		if seen[cur] {
			//既存データ側の循環。これ以上たどらない。
			return true, nil
		}
		seen[cur] = true

		c, err := u.categories.FindByID(ctx, cur)
		if errors.Is(err, repo.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, errInternal("db error")
		}
		if c.ParentID == nil {
			return false, nil
		}
		cur = *c.ParentID
	}
}

func toCategoryOutput(c model.Category) CategoryOutput {
	return CategoryOutput{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		ParentID:    c.ParentID,
		IsActive:    c.IsActive,
	}
}
