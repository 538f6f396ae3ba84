package repository

import (
	"context"

	"app/internal/domain/model"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	FindByID(ctx context.Context, customerID int64) (model.Customer, error)
	FindByUserID(ctx context.Context, userID int64) (model.Customer, error)
	Update(ctx context.Context, customer *model.Customer) error
}
