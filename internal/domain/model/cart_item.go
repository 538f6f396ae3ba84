package model

import "time"

// カートの明細。(cart_id, product_id)は一意で、同一商品の追加は数量加算。
// 価格はここには保存しない。明細金額は常に商品の現在価格から計算し、
// スナップショットは注文確定時にOrderItemへ取る。
type CartItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    int64     `gorm:"not null;index;uniqueIndex:uq_cart_product" json:"cart_id"`
	ProductID int64     `gorm:"not null;index;uniqueIndex:uq_cart_product" json:"product_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 1明細あたりの数量上限
const MaxCartItemQuantity int64 = 100
