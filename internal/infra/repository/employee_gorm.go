package repository

import (
	"context"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type EmployeeGormRepository struct {
	db *gorm.DB
}

func NewEmployeeGormRepository(db *gorm.DB) *EmployeeGormRepository {
	return &EmployeeGormRepository{db: db}
}

func (r *EmployeeGormRepository) Create(ctx context.Context, employee *model.Employee) error {
	if err := r.db.WithContext(ctx).Create(employee).Error; err != nil {
		if isUniqueViolation(err) {
			return repo.ErrConflict
		}
		return err
	}
	return nil
}

func (r *EmployeeGormRepository) FindByUserID(ctx context.Context, userID int64) (model.Employee, error) {
	var e model.Employee
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&e).Error
	if isNotFound(err) {
		return model.Employee{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Employee{}, err
	}
	return e, nil
}

func (r *EmployeeGormRepository) Update(ctx context.Context, employee *model.Employee) error {
	res := r.db.WithContext(ctx).Save(employee)
	if res.Error != nil {
		return res.Error
	}
	return nil
}
