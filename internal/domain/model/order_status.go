package model

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// 終端ステータス（以降の遷移は一切不可）
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCancelled || s == OrderStatusRefunded
}

// 通常フローの順序。前進遷移の判定に使う。
var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusConfirmed:  1,
	OrderStatusProcessing: 2,
	OrderStatusShipped:    3,
	OrderStatusDelivered:  4,
}

// CanTransition は注文ステータスの遷移が合法かを返す。
//   - 終端（cancelled/refunded）からは遷移不可
//   - cancelledへはshipped前（pending/confirmed/processing）からのみ
//   - refundedへは返金操作経由のみ（ここでは直接遷移を許さない）
//   - 通常フローは前進のみ（スキップは許す）
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	if !to.IsValid() || s == to {
		return false
	}
	if s.IsTerminal() {
		return false
	}
	if to == OrderStatusCancelled {
		return s == OrderStatusPending || s == OrderStatusConfirmed || s == OrderStatusProcessing
	}
	if to == OrderStatusRefunded {
		return false
	}
	return orderStatusRank[to] > orderStatusRank[s]
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// CanTransition は支払いステータスの遷移が合法かを返す。
// pending → paid / failed。refundedへは返金操作経由のみ。
func (s PaymentStatus) CanTransition(to PaymentStatus) bool {
	if !to.IsValid() || s == to {
		return false
	}
	switch s {
	case PaymentStatusPending:
		return to == PaymentStatusPaid || to == PaymentStatusFailed
	default:
		return false
	}
}

// 返金できるのは支払い済みのときだけ
func (s PaymentStatus) CanRefund() bool {
	return s == PaymentStatusPaid
}
