package auth_test

import (
	"context"
	"strconv"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"

	"github.com/stretchr/testify/mock"
)

type userRepoMock struct{ mock.Mock }

func (m *userRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	//DBの自動採番を模す
	if user.ID == 0 {
		user.ID = 1
	}
	return args.Error(0)
}

func (m *userRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *userRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *userRepoMock) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *userRepoMock) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *userRepoMock) IncrementTokenVersion(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *userRepoMock) List(ctx context.Context, f repository.UserListFilter) ([]model.User, int64, error) {
	args := m.Called(ctx, f)
	users, _ := args.Get(0).([]model.User)
	total, _ := args.Get(1).(int64)
	return users, total, args.Error(2)
}

type customerRepoMock struct{ mock.Mock }

func (m *customerRepoMock) Create(ctx context.Context, customer *model.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *customerRepoMock) FindByID(ctx context.Context, customerID int64) (model.Customer, error) {
	args := m.Called(ctx, customerID)
	c, _ := args.Get(0).(model.Customer)
	return c, args.Error(1)
}

func (m *customerRepoMock) FindByUserID(ctx context.Context, userID int64) (model.Customer, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Customer)
	return c, args.Error(1)
}

func (m *customerRepoMock) Update(ctx context.Context, customer *model.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

type employeeRepoMock struct{ mock.Mock }

func (m *employeeRepoMock) Create(ctx context.Context, employee *model.Employee) error {
	return m.Called(ctx, employee).Error(0)
}

func (m *employeeRepoMock) FindByUserID(ctx context.Context, userID int64) (model.Employee, error) {
	args := m.Called(ctx, userID)
	e, _ := args.Get(0).(model.Employee)
	return e, args.Error(1)
}

func (m *employeeRepoMock) Update(ctx context.Context, employee *model.Employee) error {
	return m.Called(ctx, employee).Error(0)
}

type refreshTokenRepoMock struct{ mock.Mock }

func (m *refreshTokenRepoMock) Create(ctx context.Context, token *model.RefreshToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *refreshTokenRepoMock) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	if t, ok := args.Get(0).(*model.RefreshToken); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *refreshTokenRepoMock) MarkUsed(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *refreshTokenRepoMock) RevokeAllForUser(ctx context.Context, userID int64, at time.Time) error {
	return m.Called(ctx, userID, at).Error(0)
}

// トランザクション境界だけを模す。fnをそのまま実行する。
type txManagerMock struct {
	Repos repository.TxRepos
}

func (m *txManagerMock) WithinTx(ctx context.Context, fn func(r repository.TxRepos) error) error {
	return fn(m.Repos)
}

type txReposMock struct {
	users     *userRepoMock
	customers *customerRepoMock
	employees *employeeRepoMock
}

func (m *txReposMock) Users() repository.UserRepository          { return m.users }
func (m *txReposMock) Customers() repository.CustomerRepository  { return m.customers }
func (m *txReposMock) Employees() repository.EmployeeRepository  { return m.employees }
func (m *txReposMock) Orders() repository.OrderRepository        { return nil }
func (m *txReposMock) OrderItems() repository.OrderItemRepository {
	return nil
}
func (m *txReposMock) Carts() repository.CartRepository         { return nil }
func (m *txReposMock) CartItems() repository.CartItemRepository { return nil }
func (m *txReposMock) Inventory() repository.InventoryRepository {
	return nil
}
func (m *txReposMock) Products() repository.ProductRepository   { return nil }
func (m *txReposMock) AuditLogs() repository.AuditLogRepository { return nil }

// テスト用の軽量スタブ群

type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

type stubVerifier struct{ ok bool }

func (v stubVerifier) Verify(plain string, hashed string) bool { return v.ok }

type stubIssuer struct{}

func (stubIssuer) Issue(userID int64, role model.Role, tokenVersion int, now time.Time) (string, time.Time, error) {
	return "access-token", now.Add(15 * time.Minute), nil
}

type seqIDGen struct{ n int }

func (g *seqIDGen) NewID() string {
	g.n++
	return "id-" + strconv.Itoa(g.n)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }
