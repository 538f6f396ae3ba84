package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"time"

	"app/internal/domain/model"
	"app/internal/pagination"
	repo "app/internal/repository"

	"github.com/rs/zerolog"
)

var adminOrderLogger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "admin_order_usecase").Logger()

// 管理者向けの注文操作。
// ステータス遷移の判定はmodel側のCanTransitionに寄せ、
// ここでは在庫戻し・タイムスタンプ・監査ログの整合だけを担う。
type AdminOrderUsecase struct {
	tx repo.TransactionManager
}

func NewAdminOrderUsecase(tx repo.TransactionManager) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx}
}

type AdminOrderListInput struct {
	Page       int
	PageSize   int
	Status     string
	CustomerID *int64
	From       *time.Time
	To         *time.Time
}

func (u *AdminOrderUsecase) List(ctx context.Context, in AdminOrderListInput) (OrderListOutput, error) {
	if in.Status != "" && !model.OrderStatus(in.Status).IsValid() {
		return OrderListOutput{}, errValidation("invalid status")
	}

	var out OrderListOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		info := pagination.Normalize(in.Page, in.PageSize, 0)
		orders, total, err := r.Orders().ListAdmin(ctx, repo.AdminOrderListFilter{
			Page:       info.Page,
			Limit:      info.PageSize,
			Status:     in.Status,
			CustomerID: in.CustomerID,
			From:       in.From,
			To:         in.To,
		})
		if err != nil {
			return errInternal("db error")
		}
		info = pagination.Normalize(in.Page, in.PageSize, total)

		items := make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			its, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return errInternal("db error")
			}
			items = append(items, toOrderOutput(o, its))
		}

		out = OrderListOutput{Items: items, PageInfo: info}
		return nil
	})

	if err != nil {
		return OrderListOutput{}, err
	}
	return out, nil
}

func (u *AdminOrderUsecase) GetDetail(ctx context.Context, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, errValidation("invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("order not found")
		}
		if err != nil {
			return errInternal("db error")
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

// UpdateStatus は注文ステータスを遷移させる。
// cancelledへの遷移では予約済み在庫を戻す。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorUserID int64, orderID int64, to model.OrderStatus) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, errValidation("invalid id")
	}
	if !to.IsValid() {
		return OrderOutput{}, errValidation("invalid status")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("order not found")
		}
		if err != nil {
			return errInternal("db error")
		}

		if !o.Status.CanTransition(to) {
			return NewErrorf(KindState, "cannot transition from %s to %s", o.Status, to)
		}

		now := time.Now().UTC()

		if err := r.Orders().UpdateStatus(ctx, orderID, to, now); err != nil {
			return errInternal("db error")
		}

		//キャンセルは在庫を戻す（返金時の二重戻しはRefund側で防ぐ）
		if to == model.OrderStatusCancelled {
			if err := restoreOrderStock(ctx, r, orderID, actorUserID); err != nil {
				return err
			}
		}

		writeOrderAudit(ctx, r, actorUserID, orderID, model.AuditActionUpdateOrderStatus, string(o.Status), string(to))

		updated, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return errInternal("db error")
		}
		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return errInternal("db error")
		}
		out = toOrderOutput(updated, items)

		adminOrderLogger.Info().
			Int64("actor_user_id", actorUserID).
			Int64("order_id", orderID).
			Str("from", string(o.Status)).
			Str("to", string(to)).
			Msg("order status updated")

		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// UpdatePaymentStatus は支払いステータスを遷移させる（pending→paid/failed）。
// refundedへの直接遷移は不可、Refundを使う。
func (u *AdminOrderUsecase) UpdatePaymentStatus(ctx context.Context, actorUserID int64, orderID int64, to model.PaymentStatus) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, errValidation("invalid id")
	}
	if !to.IsValid() {
		return OrderOutput{}, errValidation("invalid payment_status")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("order not found")
		}
		if err != nil {
			return errInternal("db error")
		}

		if !o.PaymentStatus.CanTransition(to) {
			return NewErrorf(KindState, "cannot transition payment from %s to %s", o.PaymentStatus, to)
		}

		if err := r.Orders().UpdatePaymentStatus(ctx, orderID, to); err != nil {
			return errInternal("db error")
		}

		writeOrderAudit(ctx, r, actorUserID, orderID, model.AuditActionUpdatePaymentStatus, string(o.PaymentStatus), string(to))

		updated, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return errInternal("db error")
		}
		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return errInternal("db error")
		}
		out = toOrderOutput(updated, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// Refund は支払い済み注文を返金する。
// 注文ステータスと支払いステータスを両方refundedにし、
// キャンセル経由で戻し済みでなければ在庫を戻す。
func (u *AdminOrderUsecase) Refund(ctx context.Context, actorUserID int64, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, errValidation("invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("order not found")
		}
		if err != nil {
			return errInternal("db error")
		}

		if !o.PaymentStatus.CanRefund() {
			return NewError(KindState, "order is not paid")
		}
		if o.Status == model.OrderStatusRefunded {
			return NewError(KindState, "order already refunded")
		}

		//キャンセル済みなら在庫は戻し済み。二重に戻さない。
		alreadyRestored := o.Status == model.OrderStatusCancelled

		now := time.Now().UTC()

		if err := r.Orders().UpdateStatus(ctx, orderID, model.OrderStatusRefunded, now); err != nil {
			return errInternal("db error")
		}
		if err := r.Orders().UpdatePaymentStatus(ctx, orderID, model.PaymentStatusRefunded); err != nil {
			return errInternal("db error")
		}

		if !alreadyRestored {
			if err := restoreOrderStock(ctx, r, orderID, actorUserID); err != nil {
				return err
			}
		}

		writeOrderAudit(ctx, r, actorUserID, orderID, model.AuditActionRefundOrder, string(o.Status), string(model.OrderStatusRefunded))

		updated, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return errInternal("db error")
		}
		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return errInternal("db error")
		}
		out = toOrderOutput(updated, items)

		adminOrderLogger.Info().
			Int64("actor_user_id", actorUserID).
			Int64("order_id", orderID).
			Bool("stock_restored", !alreadyRestored).
			Msg("order refunded")

		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 注文明細の数量分を在庫に戻し、調整履歴も残す
func restoreOrderStock(ctx context.Context, r repo.TxRepos, orderID int64, actorUserID int64) error {
	items, err := r.OrderItems().ListByOrderID(ctx, orderID)
	if err != nil {
		return errInternal("db error")
	}

	for _, it := range items {
		if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
			return errInternal("db error")
		}
		adj := model.InventoryAdjustment{
			ProductID:   it.ProductID,
			Delta:       it.Quantity,
			Reason:      "order stock restore",
			ActorUserID: actorUserID,
			CreatedAt:   time.Now().UTC(),
		}
		if err := r.Inventory().CreateAdjustment(ctx, adj); err != nil {
			return errInternal("db error")
		}
	}
	return nil
}

func writeOrderAudit(ctx context.Context, r repo.TxRepos, actorUserID int64, orderID int64, action model.AuditAction, before string, after string) {
	b, _ := json.Marshal(map[string]string{"status": before})
	a, _ := json.Marshal(map[string]string{"status": after})

	//監査ログの失敗で本処理は止めない
	if err := r.AuditLogs().Create(ctx, model.AuditLog{
		ActorUserID:  actorUserID,
		Action:       action,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   orderID,
		BeforeJSON:   string(b),
		AfterJSON:    string(a),
		CreatedAt:    time.Now().UTC(),
	}); err != nil {
		adminOrderLogger.Error().Err(err).Int64("order_id", orderID).Msg("failed to write audit log")
	}
}
