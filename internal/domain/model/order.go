package model

import "time"

type PaymentMethod string

const (
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodDebitCard    PaymentMethod = "debit_card"
	PaymentMethodPaypal       PaymentMethod = "paypal"
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCreditCard, PaymentMethodDebitCard, PaymentMethodPaypal,
		PaymentMethodCash, PaymentMethodBankTransfer:
		return true
	}
	return false
}

type Order struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber string `gorm:"type:varchar(50);uniqueIndex;not null" json:"order_number"`
	CustomerID  int64  `gorm:"not null;index;uniqueIndex:uq_orders_customer_idem_key" json:"customer_id"`

	Status        OrderStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null" json:"payment_status"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(50)" json:"payment_method"`

	//金額（セント）
	Subtotal     int64 `gorm:"not null" json:"subtotal"`
	Tax          int64 `gorm:"not null;default:0" json:"tax"`
	ShippingCost int64 `gorm:"not null;default:0" json:"shipping_cost"`
	Total        int64 `gorm:"not null" json:"total"`

	//配送先スナップショット（住所テーブルへの参照ではなくコピー）
	ShippingAddress Address `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`

	CustomerNotes string `gorm:"type:text" json:"customer_notes"`
	AdminNotes    string `gorm:"type:text" json:"admin_notes"`

	//二重送信防止キー。顧客ごとに一意。
	//任意なので未指定はNULLで保存し、一意制約の対象から外す。
	IdempotencyKey *string `gorm:"type:varchar(255);uniqueIndex:uq_orders_customer_idem_key" json:"-"`

	CreatedAt   time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
	ConfirmedAt *time.Time `json:"confirmed_at"`
	ShippedAt   *time.Time `json:"shipped_at"`
	DeliveredAt *time.Time `json:"delivered_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
}
