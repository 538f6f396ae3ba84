package usecase

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// カート操作。明細金額は常に商品の現在価格から計算する（価格スナップショットは注文時のみ）。
type CartUsecase struct {
	tx repo.TransactionManager
}

func NewCartUsecase(tx repo.TransactionManager) *CartUsecase {
	return &CartUsecase{tx: tx}
}

type CartItemOutput struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int64  `json:"quantity"`
	LineTotal   int64  `json:"line_total"`
	InStock     bool   `json:"in_stock"`
}

type CartOutput struct {
	ID        int64            `json:"id"`
	Status    string           `json:"status"`
	Items     []CartItemOutput `json:"items"`
	ItemCount int64            `json:"item_count"`
	Subtotal  int64            `json:"subtotal"`
}

// GetCart は顧客のACTIVEカートを返す（なければ作る）。
func (u *CartUsecase) GetCart(ctx context.Context, customerID int64) (CartOutput, error) {
	if customerID <= 0 {
		return CartOutput{}, errUnauthorized("unauthorized")
	}

	var out CartOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().GetOrCreateActiveByCustomerID(ctx, customerID)
		if err != nil {
			return errInternal("db error")
		}
		o, err := buildCartOutput(ctx, r, cart)
		if err != nil {
			return err
		}
		out = o
		return nil
	})

	if err != nil {
		return CartOutput{}, err
	}
	return out, nil
}

type AddCartItemInput struct {
	ProductID int64
	Quantity  int64
}

// AddItem はカートに商品を追加する。同一商品は数量加算、上限は1明細100。
func (u *CartUsecase) AddItem(ctx context.Context, customerID int64, in AddCartItemInput) (CartOutput, error) {
	if customerID <= 0 {
		return CartOutput{}, errUnauthorized("unauthorized")
	}
	if in.ProductID <= 0 {
		return CartOutput{}, errValidation("invalid product_id")
	}
	if in.Quantity <= 0 || in.Quantity > model.MaxCartItemQuantity {
		return CartOutput{}, errValidation("quantity must be between 1 and 100")
	}

	var out CartOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, in.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("product not found")
		}
		if err != nil {
			return errInternal("db error")
		}
		if !p.IsActive {
			return NewError(KindResource, "product is not available")
		}
		if p.Stock < in.Quantity {
			return &Error{Kind: KindResource, Message: "insufficient stock", Details: []ProductIssue{
				{ProductID: p.ID, Reason: "insufficient stock", Shortfall: in.Quantity - p.Stock},
			}}
		}

		cart, err := r.Carts().GetOrCreateActiveByCustomerID(ctx, customerID)
		if err != nil {
			return errInternal("db error")
		}

		if err := r.CartItems().UpsertByCartAndProduct(ctx, cart.ID, in.ProductID, in.Quantity); err != nil {
			return errInternal("db error")
		}

		//加算後の数量が上限を超えていたら丸める
		items, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return errInternal("db error")
		}
		for _, ci := range items {
			if ci.ProductID == in.ProductID && ci.Quantity > model.MaxCartItemQuantity {
				if err := r.CartItems().UpdateQuantity(ctx, ci.ID, model.MaxCartItemQuantity); err != nil {
					return errInternal("db error")
				}
			}
		}

		o, err := buildCartOutput(ctx, r, cart)
		if err != nil {
			return err
		}
		out = o
		return nil
	})

	if err != nil {
		return CartOutput{}, err
	}
	return out, nil
}

// UpdateItemQuantity は明細の数量を置き換える。0は削除扱い。
func (u *CartUsecase) UpdateItemQuantity(ctx context.Context, customerID int64, cartItemID int64, qty int64) (CartOutput, error) {
	if customerID <= 0 {
		return CartOutput{}, errUnauthorized("unauthorized")
	}
	if cartItemID <= 0 {
		return CartOutput{}, errValidation("invalid id")
	}
	if qty < 0 || qty > model.MaxCartItemQuantity {
		return CartOutput{}, errValidation("quantity must be between 0 and 100")
	}

	var out CartOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		owned, err := r.CartItems().IsOwnedByCustomer(ctx, cartItemID, customerID)
		if err != nil {
			return errInternal("db error")
		}
		if !owned {
			return errNotFound("cart item not found")
		}

		if qty == 0 {
			if err := r.CartItems().DeleteByID(ctx, cartItemID); err != nil {
				return errInternal("db error")
			}
		} else {
			ci, err := r.CartItems().FindByID(ctx, cartItemID)
			if err != nil {
				return errInternal("db error")
			}
			p, err := r.Products().FindByID(ctx, ci.ProductID)
			if err != nil {
				return errInternal("db error")
			}
			if p.Stock < qty {
				return &Error{Kind: KindResource, Message: "insufficient stock", Details: []ProductIssue{
					{ProductID: p.ID, Reason: "insufficient stock", Shortfall: qty - p.Stock},
				}}
			}
			if err := r.CartItems().UpdateQuantity(ctx, cartItemID, qty); err != nil {
				return errInternal("db error")
			}
		}

		cart, err := r.Carts().GetOrCreateActiveByCustomerID(ctx, customerID)
		if err != nil {
			return errInternal("db error")
		}
		o, err := buildCartOutput(ctx, r, cart)
		if err != nil {
			return err
		}
		out = o
		return nil
	})

	if err != nil {
		return CartOutput{}, err
	}
	return out, nil
}

// RemoveItem は明細を削除する。
func (u *CartUsecase) RemoveItem(ctx context.Context, customerID int64, cartItemID int64) (CartOutput, error) {
	return u.UpdateItemQuantity(ctx, customerID, cartItemID, 0)
}

// ClearCart はカートの全明細を削除する。
func (u *CartUsecase) ClearCart(ctx context.Context, customerID int64) (CartOutput, error) {
	if customerID <= 0 {
		return CartOutput{}, errUnauthorized("unauthorized")
	}

	var out CartOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().GetOrCreateActiveByCustomerID(ctx, customerID)
		if err != nil {
			return errInternal("db error")
		}
		if err := r.Carts().Clear(ctx, cart.ID); err != nil {
			return errInternal("db error")
		}
		o, err := buildCartOutput(ctx, r, cart)
		if err != nil {
			return err
		}
		out = o
		return nil
	})

	if err != nil {
		return CartOutput{}, err
	}
	return out, nil
}

func buildCartOutput(ctx context.Context, r repo.TxRepos, cart model.Cart) (CartOutput, error) {
	items, err := r.CartItems().ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartOutput{}, errInternal("db error")
	}

	outItems := make([]CartItemOutput, 0, len(items))
	var subtotal int64 = 0
	var count int64 = 0

	for _, ci := range items {
		p, err := r.Products().FindByID(ctx, ci.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			//削除済み商品の明細は表示しない
			continue
		}
		if err != nil {
			return CartOutput{}, errInternal("db error")
		}

		line := p.Price * ci.Quantity
		outItems = append(outItems, CartItemOutput{
			ID:          ci.ID,
			ProductID:   p.ID,
			ProductName: p.Name,
			UnitPrice:   p.Price,
			Quantity:    ci.Quantity,
			LineTotal:   line,
			InStock:     p.Stock >= ci.Quantity,
		})
		subtotal += line
		count += ci.Quantity
	}

	return CartOutput{
		ID:        cart.ID,
		Status:    string(cart.Status),
		Items:     outItems,
		ItemCount: count,
		Subtotal:  subtotal,
	}, nil
}
