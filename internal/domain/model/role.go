package model

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleCashier  Role = "cashier"
	RoleCustomer Role = "customer"
)

// ロールとして有効か
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleCashier, RoleCustomer:
		return true
	}
	return false
}

// 従業員ロールか（customer以外）
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleCashier
}

// 操作の種類。権限判定はロールではなく操作単位で行う。
type Operation string

const (
	OpManageProducts   Operation = "manage_products"
	OpManageCategories Operation = "manage_categories"
	OpManageInventory  Operation = "manage_inventory"
	OpManageOrders     Operation = "manage_orders"
	OpManageUsers      Operation = "manage_users"
	OpViewAllOrders    Operation = "view_all_orders"
	OpPlaceOrder       Operation = "place_order"
	OpUseCart          Operation = "use_cart"
)

// ロールごとの許可テーブル
var rolePermissions = map[Role]map[Operation]bool{
	RoleAdmin: {
		OpManageProducts:   true,
		OpManageCategories: true,
		OpManageInventory:  true,
		OpManageOrders:     true,
		OpManageUsers:      true,
		OpViewAllOrders:    true,
	},
	RoleManager: {
		OpManageProducts:   true,
		OpManageCategories: true,
		OpManageInventory:  true,
		OpManageOrders:     true,
		OpViewAllOrders:    true,
	},
	RoleCashier: {
		OpManageOrders:  true,
		OpViewAllOrders: true,
	},
	RoleCustomer: {
		OpPlaceOrder: true,
		OpUseCart:    true,
	},
}

// Allowed はroleがopを実行できるかを返す。
// HTTP層に依存しない純粋な判定（単体テスト対象）。
func Allowed(role Role, op Operation) bool {
	perms, ok := rolePermissions[role]
	if !ok {
		return false
	}
	return perms[op]
}
