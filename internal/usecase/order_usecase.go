package usecase

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/pagination"
	repo "app/internal/repository"

	"github.com/rs/zerolog"
)

var orderLogger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "order_usecase").Logger()

// 注文番号衝突時の再試行上限
const orderNumberMaxAttempts = 3

type OrderUsecase struct {
	tx        repo.TransactionManager
	customers repo.CustomerRepository
	pricing   PricingCalculator
	orderNums OrderNumberGenerator
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	customers repo.CustomerRepository,
	pricing PricingCalculator,
	orderNums OrderNumberGenerator,
) *OrderUsecase {
	return &OrderUsecase{
		tx:        tx,
		customers: customers,
		pricing:   pricing,
		orderNums: orderNums,
	}
}

type PlaceOrderInput struct {
	ShippingAddress model.Address
	PaymentMethod   model.PaymentMethod
	CustomerNotes   string
	IdempotencyKey  string
}

type OrderItemOutput struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int64  `json:"quantity"`
	LineTotal int64  `json:"line_total"`
}

type OrderOutput struct {
	ID              int64             `json:"id"`
	OrderNumber     string            `json:"order_number"`
	CustomerID      int64             `json:"customer_id"`
	Status          string            `json:"status"`
	PaymentStatus   string            `json:"payment_status"`
	PaymentMethod   string            `json:"payment_method"`
	Subtotal        int64             `json:"subtotal"`
	Tax             int64             `json:"tax"`
	ShippingCost    int64             `json:"shipping_cost"`
	Total           int64             `json:"total"`
	ShippingAddress model.Address     `json:"shipping_address"`
	CreatedAt       time.Time         `json:"created_at"`
	Items           []OrderItemOutput `json:"items"`
}

type OrderListOutput struct {
	Items    []OrderOutput       `json:"items"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

// PlaceOrder は顧客のカートを注文に変換する。
// 検証（1-4）は読み取りのみ、変更（5-7）は単一トランザクションで、
// 失敗時は在庫もカートも元のまま残る。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, customerID int64, in PlaceOrderInput) (OrderOutput, error) {
	if customerID <= 0 {
		return OrderOutput{}, errUnauthorized("unauthorized")
	}
	if !in.ShippingAddress.IsComplete() {
		return OrderOutput{}, errValidation("incomplete shipping address")
	}
	if !in.PaymentMethod.IsValid() {
		return OrderOutput{}, errValidation("invalid payment_method")
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if len(key) > 255 {
		return OrderOutput{}, errValidation("invalid idempotency_key")
	}

	//顧客の存在確認
	if _, err := u.customers.FindByID(ctx, customerID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return OrderOutput{}, errNotFound("customer not found")
		}
		return OrderOutput{}, errInternal("db error")
	}

	var out OrderOutput
	var lastErr error

	//注文番号の衝突だけはトランザクションごと作り直してリトライする
	for attempt := 0; attempt < orderNumberMaxAttempts; attempt++ {
		out = OrderOutput{}
		lastErr = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			return u.placeOrderTx(ctx, r, customerID, key, in, &out)
		})

		if lastErr == nil {
			return out, nil
		}
		if ue, ok := AsError(lastErr); !ok || ue.Kind != KindTransient {
			return OrderOutput{}, lastErr
		}
	}

	orderLogger.Warn().Int64("customer_id", customerID).Msg("order number collision retries exhausted")
	return OrderOutput{}, lastErr
}

func (u *OrderUsecase) placeOrderTx(ctx context.Context, r repo.TxRepos, customerID int64, key string, in PlaceOrderInput, out *OrderOutput) error {
	// 同じキーなら同じ結果
	if key != "" {
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, customerID, key)
		if err != nil {
			return errInternal("db error")
		}
		if found {
			items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
			if err != nil {
				return errInternal("db error")
			}
			*out = toOrderOutput(existing, items)
			return nil
		}
	}

	//ACTIVEカート取得
	cart, err := r.Carts().FindActiveByCustomerID(ctx, customerID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewError(KindResource, "cart is empty")
	}
	if err != nil {
		return errInternal("db error")
	}

	//カート明細取得
	cartItems, err := r.CartItems().ListByCartID(ctx, cart.ID)
	if err != nil {
		return errInternal("db error")
	}
	if len(cartItems) == 0 {
		return NewError(KindResource, "cart is empty")
	}

	//商品を行ロック付きで読み、全明細を検証する。
	//同じ商品への並行注文はこのロックで直列化されるので、
	//チェック時の在庫が減算時まで変わらないことが保証される。
	products := make(map[int64]model.Product, len(cartItems))
	issues := make([]ProductIssue, 0)

	for _, ci := range cartItems {
		p, err := r.Products().FindByIDForUpdate(ctx, ci.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			issues = append(issues, ProductIssue{ProductID: ci.ProductID, Reason: "not found"})
			continue
		}
		if err != nil {
			return errInternal("db error")
		}
		if !p.IsActive {
			issues = append(issues, ProductIssue{ProductID: p.ID, Reason: "inactive"})
			continue
		}
		if p.Stock < ci.Quantity {
			issues = append(issues, ProductIssue{
				ProductID: p.ID,
				Reason:    "insufficient stock",
				Shortfall: ci.Quantity - p.Stock,
			})
			continue
		}
		products[ci.ProductID] = p
	}

	if len(issues) > 0 {
		return &Error{Kind: KindResource, Message: "order validation failed", Details: issues}
	}

	//単価は今この瞬間の商品価格をスナップショットする
	now := time.Now().UTC()
	orderItems := make([]model.OrderItem, 0, len(cartItems))
	var subtotal int64 = 0

	for _, ci := range cartItems {
		p := products[ci.ProductID]
		orderItems = append(orderItems, model.OrderItem{
			ProductID:           p.ID,
			ProductNameSnapshot: p.Name,
			ProductSKUSnapshot:  p.SKU,
			UnitPriceSnapshot:   p.Price,
			Quantity:            ci.Quantity,
			CreatedAt:           now,
		})
		subtotal += p.Price * ci.Quantity
	}

	tax, shipping := u.pricing.Calculate(subtotal, in.ShippingAddress)
	total := subtotal + tax + shipping

	//注文作成。キー未指定はNULLで保存して一意制約に掛けない。
	var idemKey *string
	if key != "" {
		idemKey = &key
	}

	order := model.Order{
		OrderNumber:     u.orderNums.Generate(),
		CustomerID:      customerID,
		Status:          model.OrderStatusPending,
		PaymentStatus:   model.PaymentStatusPending,
		PaymentMethod:   in.PaymentMethod,
		Subtotal:        subtotal,
		Tax:             tax,
		ShippingCost:    shipping,
		Total:           total,
		ShippingAddress: in.ShippingAddress,
		CustomerNotes:   in.CustomerNotes,
		IdempotencyKey:  idemKey,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	orderID, err := r.Orders().Create(ctx, order)
	if errors.Is(err, repo.ErrConflict) {
		//並行で同じidempotency keyが入った場合は既存を返す
		if key != "" {
			ex, found, err2 := r.Orders().FindByIdempotencyKey(ctx, customerID, key)
			if err2 == nil && found {
				items, err3 := r.OrderItems().ListByOrderID(ctx, ex.ID)
				if err3 != nil {
					return errInternal("db error")
				}
				*out = toOrderOutput(ex, items)
				return nil
			}
		}
		//注文番号の衝突。外側でトランザクションごとリトライする。
		return NewError(KindTransient, "order number collision")
	}
	if err != nil {
		return errInternal("db error")
	}

	//注文明細一括作成
	if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
		return errInternal("db error")
	}

	//在庫減算。行ロック済みなので必ず足りるはずだが、条件付きUPDATEで二重に守る。
	for _, it := range orderItems {
		ok, err := r.Inventory().DecreaseStockIfEnough(ctx, it.ProductID, it.Quantity)
		if err != nil {
			return errInternal("db error")
		}
		if !ok {
			return &Error{Kind: KindResource, Message: "order validation failed", Details: []ProductIssue{
				{ProductID: it.ProductID, Reason: "insufficient stock"},
			}}
		}
	}

	//カートをCHECKED_OUTにして明細をクリア（再注文防止）
	if err := r.Carts().UpdateStatus(ctx, cart.ID, model.CartStatusCheckedOut); err != nil {
		return errInternal("db error")
	}
	if err := r.Carts().Clear(ctx, cart.ID); err != nil {
		return errInternal("db error")
	}

	order.ID = orderID
	*out = toOrderOutput(order, orderItems)

	orderLogger.Info().
		Int64("customer_id", customerID).
		Str("order_number", order.OrderNumber).
		Int64("total", total).
		Int("items", len(orderItems)).
		Msg("order placed")

	return nil
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, customerID int64, page int, pageSize int) (OrderListOutput, error) {
	if customerID <= 0 {
		return OrderListOutput{}, errUnauthorized("unauthorized")
	}

	var outs OrderListOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//件数を先に取り、正規化したページ情報で読む
		info := pagination.Normalize(page, pageSize, 0)
		orders, total, err := r.Orders().ListByCustomerID(ctx, customerID, info.Page, info.PageSize)
		if err != nil {
			return errInternal("db error")
		}
		info = pagination.Normalize(page, pageSize, total)

		items := make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			its, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return errInternal("db error")
			}
			items = append(items, toOrderOutput(o, its))
		}

		outs = OrderListOutput{Items: items, PageInfo: info}
		return nil
	})

	if err != nil {
		return OrderListOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, customerID int64, orderID int64) (OrderOutput, error) {
	if customerID <= 0 {
		return OrderOutput{}, errUnauthorized("unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, errValidation("invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("not found")
		}
		if err != nil {
			return errInternal("db error")
		}
		if o.CustomerID != customerID {
			//他人の注文は「存在しない扱い」にする
			return errNotFound("not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return errInternal("db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			SKU:       it.ProductSKUSnapshot,
			UnitPrice: it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal(),
		})
	}

	return OrderOutput{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		PaymentMethod:   string(o.PaymentMethod),
		Subtotal:        o.Subtotal,
		Tax:             o.Tax,
		ShippingCost:    o.ShippingCost,
		Total:           o.Total,
		ShippingAddress: o.ShippingAddress,
		CreatedAt:       o.CreatedAt,
		Items:           outItems,
	}
}
