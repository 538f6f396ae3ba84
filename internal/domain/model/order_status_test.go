package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusCanTransition(t *testing.T) {
	//通常フローは前進のみ（スキップ可）
	assert.True(t, OrderStatusPending.CanTransition(OrderStatusConfirmed))
	assert.True(t, OrderStatusPending.CanTransition(OrderStatusShipped))
	assert.True(t, OrderStatusConfirmed.CanTransition(OrderStatusProcessing))
	assert.True(t, OrderStatusProcessing.CanTransition(OrderStatusShipped))
	assert.True(t, OrderStatusShipped.CanTransition(OrderStatusDelivered))

	//後退は不可
	assert.False(t, OrderStatusShipped.CanTransition(OrderStatusConfirmed))
	assert.False(t, OrderStatusDelivered.CanTransition(OrderStatusPending))

	//キャンセルは出荷前のみ
	assert.True(t, OrderStatusPending.CanTransition(OrderStatusCancelled))
	assert.True(t, OrderStatusConfirmed.CanTransition(OrderStatusCancelled))
	assert.True(t, OrderStatusProcessing.CanTransition(OrderStatusCancelled))
	assert.False(t, OrderStatusShipped.CanTransition(OrderStatusCancelled))
	assert.False(t, OrderStatusDelivered.CanTransition(OrderStatusCancelled))

	//refundedへの直接遷移は不可（返金操作経由のみ）
	assert.False(t, OrderStatusDelivered.CanTransition(OrderStatusRefunded))
	assert.False(t, OrderStatusPending.CanTransition(OrderStatusRefunded))

	//終端からは一切不可
	assert.False(t, OrderStatusCancelled.CanTransition(OrderStatusPending))
	assert.False(t, OrderStatusCancelled.CanTransition(OrderStatusRefunded))
	assert.False(t, OrderStatusRefunded.CanTransition(OrderStatusDelivered))

	//同一ステータス・不正値
	assert.False(t, OrderStatusPending.CanTransition(OrderStatusPending))
	assert.False(t, OrderStatusPending.CanTransition(OrderStatus("unknown")))
}

func TestOrderStatusIsTerminal(t *testing.T) {
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.True(t, OrderStatusRefunded.IsTerminal())
	assert.False(t, OrderStatusPending.IsTerminal())
	assert.False(t, OrderStatusDelivered.IsTerminal())
}

func TestPaymentStatusCanTransition(t *testing.T) {
	assert.True(t, PaymentStatusPending.CanTransition(PaymentStatusPaid))
	assert.True(t, PaymentStatusPending.CanTransition(PaymentStatusFailed))

	//refundedへは返金操作経由のみ
	assert.False(t, PaymentStatusPaid.CanTransition(PaymentStatusRefunded))
	assert.False(t, PaymentStatusPaid.CanTransition(PaymentStatusPending))
	assert.False(t, PaymentStatusFailed.CanTransition(PaymentStatusPaid))
	assert.False(t, PaymentStatusRefunded.CanTransition(PaymentStatusPaid))
}

func TestPaymentStatusCanRefund(t *testing.T) {
	assert.True(t, PaymentStatusPaid.CanRefund())
	assert.False(t, PaymentStatusPending.CanRefund())
	assert.False(t, PaymentStatusFailed.CanRefund())
	assert.False(t, PaymentStatusRefunded.CanRefund())
}
