package model

import (
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(200);not null;index" json:"name"`
	Slug        string `gorm:"type:varchar(250);uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`

	//価格（セント）
	Price int64 `gorm:"not null" json:"price"`

	//割引表示用の元値（セント、任意）
	ComparePrice *int64 `gorm:"" json:"compare_price"`

	SKU     string  `gorm:"column:sku;type:varchar(100);uniqueIndex;not null" json:"sku"`
	Barcode *string `gorm:"type:varchar(100);uniqueIndex" json:"barcode"`

	//在庫数（負にならない）
	Stock int64 `gorm:"not null;default:0" json:"stock"`

	CategoryID int64 `gorm:"not null;index" json:"category_id"`

	IsActive   bool `gorm:"not null;default:true" json:"is_active"`
	IsFeatured bool `gorm:"not null;default:false" json:"is_featured"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p Product) IsInStock() bool {
	return p.Stock > 0
}

// 割引率（%）。compare_priceが無い/価格以下なら0。
func (p Product) DiscountPercentage() int64 {
	if p.ComparePrice == nil || *p.ComparePrice <= p.Price {
		return 0
	}
	return (*p.ComparePrice - p.Price) * 100 / *p.ComparePrice
}

var slugNonWord = regexp.MustCompile(`[^a-z0-9\s-]`)
var slugSpaces = regexp.MustCompile(`[\s_-]+`)

// GenerateSlug は名前からURL用スラッグを作る。
// "Samsung Galaxy S24" -> "samsung-galaxy-s24"
func GenerateSlug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugNonWord.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
