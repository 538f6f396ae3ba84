package model

import "time"

// 従業員プロフィール（role=manager/cashier/adminのUserと1:1）
type Employee struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex" json:"user_id"`
	FirstName string    `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName  string    `gorm:"type:varchar(100);not null" json:"last_name"`
	Phone     string    `gorm:"type:varchar(30)" json:"phone"`
	HireDate  time.Time `gorm:"not null" json:"hire_date"`

	//給与（セント）
	Salary int64 `gorm:"not null" json:"salary"`

	//住所は任意
	Address Address `gorm:"embedded" json:"address"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
