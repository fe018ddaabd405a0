package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"eventmart/internal/domain/model"
	repo "eventmart/internal/repository"

	"github.com/rs/zerolog"
)

// AdminOrderUsecase はスタッフ・管理者向けの注文操作
type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	auditRepo repo.AuditLogRepository
	clock     Clock
	// 決済の確定通知が無い環境で手動で支払い済みにするか
	allowManualPayment bool
	log                zerolog.Logger
}

func NewAdminOrderUsecase(tx repo.TransactionManager, auditRepo repo.AuditLogRepository, clock Clock, allowManualPayment bool, log zerolog.Logger) *AdminOrderUsecase {
	return &AdminOrderUsecase{
		tx:                 tx,
		auditRepo:          auditRepo,
		clock:              clock,
		allowManualPayment: allowManualPayment,
		log:                log,
	}
}

// PENDING→PAID（手動）。期限切れで未掃除の注文は支払い済みにしない
func (u *AdminOrderUsecase) MarkPaid(ctx context.Context, p model.Principal, orderID int64) error {
	if p.UserID <= 0 {
		return errUnauthorized()
	}
	if p.Role != model.RoleAdmin && p.Role != model.RoleStaff {
		return errForbidden("staff only")
	}
	if !u.allowManualPayment {
		return errForbidden("manual payment is disabled")
	}
	if orderID <= 0 {
		return errValidation("invalid id")
	}

	now := u.clock.Now()
	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("order not found")
		}
		if err != nil {
			return u.fault(err, p, "find order")
		}
		if o.Status != model.OrderStatusPending {
			return errInvalidState(fmt.Sprintf("order is %s, only pending orders can be marked paid", o.Status))
		}
		if o.Expired(now) {
			return errInvalidState("order has expired")
		}

		ok, err := r.Orders().UpdateStatusIf(ctx, o.ID,
			[]model.OrderStatus{model.OrderStatusPending},
			model.OrderStatusPaid,
			repo.StatusChange{At: now},
		)
		if err != nil {
			return u.fault(err, p, "update order status")
		}
		if !ok {
			return errInvalidState("order is no longer pending")
		}

		if err := r.AuditLogs().Create(ctx, statusAudit(p.UserID, model.AuditActionMarkOrderPaid, o.ID, o.Status, model.OrderStatusPaid, now)); err != nil {
			return u.fault(err, p, "create audit log")
		}

		u.log.Info().Int64("order_id", o.ID).Int64("actor_id", p.UserID).Msg("order marked paid")
		return nil
	})
}

type AuditLogListInput struct {
	Action     string
	ResourceID *int64
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// 注文・チケットの状態遷移の履歴
func (u *AdminOrderUsecase) ListAuditLogs(ctx context.Context, p model.Principal, in AuditLogListInput) ([]model.AuditLog, error) {
	if p.UserID <= 0 {
		return nil, errUnauthorized()
	}
	if p.Role != model.RoleAdmin {
		return nil, errForbidden("admin only")
	}
	if in.Limit < 0 || in.Limit > 200 {
		return nil, errValidation("invalid limit")
	}
	if in.Offset < 0 {
		return nil, errValidation("invalid offset")
	}

	f := repo.AuditLogFilter{
		ResourceID:  in.ResourceID,
		CreatedFrom: in.From,
		CreatedTo:   in.To,
		Limit:       in.Limit,
		Offset:      in.Offset,
	}
	if in.Action != "" {
		a := model.AuditAction(in.Action)
		switch a {
		case model.AuditActionCancelOrder, model.AuditActionExpireOrder, model.AuditActionMarkOrderPaid, model.AuditActionCheckIn:
		default:
			return nil, errValidation("invalid action")
		}
		f.Action = &a
	}

	logs, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return nil, u.fault(err, p, "list audit logs")
	}
	return logs, nil
}

func (u *AdminOrderUsecase) fault(err error, p model.Principal, op string) error {
	u.log.Error().Err(err).Int64("actor_id", p.UserID).Msg(op)
	return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
}
