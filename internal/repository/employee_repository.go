package repository

import (
	"context"

	"app/internal/domain/model"
)

type EmployeeRepository interface {
	Create(ctx context.Context, employee *model.Employee) error
	FindByUserID(ctx context.Context, userID int64) (model.Employee, error)
	Update(ctx context.Context, employee *model.Employee) error
}
