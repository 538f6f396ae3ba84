package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowed(t *testing.T) {
	//admin: 全部
	assert.True(t, Allowed(RoleAdmin, OpManageProducts))
	assert.True(t, Allowed(RoleAdmin, OpManageUsers))
	assert.True(t, Allowed(RoleAdmin, OpManageOrders))

	//manager: ユーザー管理以外の管理操作
	assert.True(t, Allowed(RoleManager, OpManageProducts))
	assert.True(t, Allowed(RoleManager, OpManageInventory))
	assert.False(t, Allowed(RoleManager, OpManageUsers))

	//cashier: 注文処理のみ
	assert.True(t, Allowed(RoleCashier, OpManageOrders))
	assert.True(t, Allowed(RoleCashier, OpViewAllOrders))
	assert.False(t, Allowed(RoleCashier, OpManageProducts))
	assert.False(t, Allowed(RoleCashier, OpManageUsers))

	//customer: カートと注文のみ
	assert.True(t, Allowed(RoleCustomer, OpPlaceOrder))
	assert.True(t, Allowed(RoleCustomer, OpUseCart))
	assert.False(t, Allowed(RoleCustomer, OpManageOrders))
	assert.False(t, Allowed(RoleCustomer, OpViewAllOrders))

	//スタッフはカート・注文を使わない
	assert.False(t, Allowed(RoleAdmin, OpPlaceOrder))
	assert.False(t, Allowed(RoleCashier, OpUseCart))

	//未知のロール
	assert.False(t, Allowed(Role("ghost"), OpPlaceOrder))
}

func TestRoleIsStaff(t *testing.T) {
	assert.True(t, RoleAdmin.IsStaff())
	assert.True(t, RoleManager.IsStaff())
	assert.True(t, RoleCashier.IsStaff())
	assert.False(t, RoleCustomer.IsStaff())
}
