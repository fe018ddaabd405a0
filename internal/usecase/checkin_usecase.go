package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"eventmart/internal/domain/model"
	repo "eventmart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CheckInUsecase は入場ゲートでのチケット読み取り。
// VALID→USED は1回だけ。USED の再読み取りは ALREADY_USED で何も書かない
type CheckInUsecase struct {
	tx       repo.TransactionManager
	notifier Notifier
	clock    Clock
	log      zerolog.Logger
}

func NewCheckInUsecase(tx repo.TransactionManager, notifier Notifier, clock Clock, log zerolog.Logger) *CheckInUsecase {
	return &CheckInUsecase{
		tx:       tx,
		notifier: notifier,
		clock:    clock,
		log:      log,
	}
}

// ゲート端末に表示する内容
type CheckInOutput struct {
	TicketID       int64     `json:"ticket_id"`
	Code           string    `json:"code"`
	AttendeeName   string    `json:"attendee_name"`
	EventName      string    `json:"event_name"`
	TicketTypeName string    `json:"ticket_type_name"`
	OrderNumber    string    `json:"order_number"`
	ScannedAt      time.Time `json:"scanned_at"`
}

func (u *CheckInUsecase) Verify(ctx context.Context, p model.Principal, code string) (CheckInOutput, error) {
	if p.UserID <= 0 {
		return CheckInOutput{}, errUnauthorized()
	}
	if !p.CanScan() {
		return CheckInOutput{}, errForbidden("staff only")
	}
	code = strings.TrimSpace(code)
	if code == "" || len(code) > 64 {
		return CheckInOutput{}, errValidation("invalid code")
	}

	now := u.clock.Now()
	var (
		out       CheckInOutput
		order     model.Order
		completed bool
	)

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		t, err := r.Tickets().FindByCode(ctx, code)
		if errors.Is(err, repo.ErrNotFound) {
			return errInvalidTicketCode()
		}
		if err != nil {
			return u.fault(err, p, "find ticket")
		}
		//2回目の読み取りは CheckIn を書きに行かない
		if t.Status == model.TicketStatusUsed {
			return errAlreadyUsed(code)
		}

		ev, err := r.Events().FindByID(ctx, t.EventID)
		if err != nil {
			return u.fault(err, p, "find event")
		}
		if p.Role == model.RoleOrganizer && ev.OrganizerID != p.UserID {
			return errForbidden("ticket is for another organizer's event")
		}

		o, err := r.Orders().FindByIDForUpdate(ctx, t.OrderID)
		if err != nil {
			return u.fault(err, p, "find order")
		}
		if o.Status == model.OrderStatusCancelled {
			return errInvalidState("order cancelled")
		}

		ok, err := r.Tickets().MarkUsed(ctx, t.ID, now)
		if err != nil {
			return u.fault(err, p, "mark ticket used")
		}
		if !ok {
			//同時に読み取られた
			return errAlreadyUsed(code)
		}

		err = r.CheckIns().Create(ctx, model.CheckIn{
			TicketID:  t.ID,
			ScannerID: p.UserID,
			Outcome:   model.CheckInOutcomeSuccess,
			ScannedAt: now,
		})
		if errors.Is(err, repo.ErrConflict) {
			return errAlreadyUsed(code)
		}
		if err != nil {
			return u.fault(err, p, "create check-in")
		}

		//最初の1枚で注文全体を COMPLETED にする（グループ入場）
		completed, err = r.Orders().UpdateStatusIf(ctx, o.ID,
			[]model.OrderStatus{model.OrderStatusPending, model.OrderStatusPaid},
			model.OrderStatusCompleted,
			repo.StatusChange{At: now},
		)
		if err != nil {
			return u.fault(err, p, "complete order")
		}

		audits := []model.AuditLog{{
			ActorUserID:  p.UserID,
			Action:       model.AuditActionCheckIn,
			ResourceType: model.AuditResourceTicket,
			ResourceID:   t.ID,
			BeforeJSON:   `{"status":"` + string(model.TicketStatusValid) + `"}`,
			AfterJSON:    `{"status":"` + string(model.TicketStatusUsed) + `"}`,
			CreatedAt:    now,
		}}
		if completed {
			audits = append(audits, statusAudit(p.UserID, model.AuditActionCheckIn, o.ID, o.Status, model.OrderStatusCompleted, now))
		}
		for _, a := range audits {
			if err := r.AuditLogs().Create(ctx, a); err != nil {
				return u.fault(err, p, "create audit log")
			}
		}

		tierName := ""
		if tt, err := r.Catalog().FindTicketType(ctx, t.TicketTypeID); err == nil {
			tierName = tt.Name
		} else if !errors.Is(err, repo.ErrNotFound) {
			return u.fault(err, p, "find ticket type")
		}

		order = o
		out = CheckInOutput{
			TicketID:       t.ID,
			Code:           t.Code,
			AttendeeName:   t.AttendeeName,
			EventName:      ev.Name,
			TicketTypeName: tierName,
			OrderNumber:    o.OrderNumber,
			ScannedAt:      now,
		}
		return nil
	})
	if err != nil {
		if he, ok := AsHTTPError(err); ok && he.Kind != KindInternal {
			u.log.Info().Int64("scanner_id", p.UserID).Str("kind", string(he.Kind)).Msg("check-in rejected")
		}
		return CheckInOutput{}, err
	}

	u.log.Info().
		Int64("ticket_id", out.TicketID).
		Int64("order_id", order.ID).
		Int64("scanner_id", p.UserID).
		Bool("order_completed", completed).
		Msg("ticket checked in")

	nerr := u.notifier.Notify(ctx, Notification{
		ID:          uuid.NewString(),
		Type:        NotificationTicketCheckedIn,
		UserID:      order.UserID,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Message:     out.AttendeeName + " checked in to " + out.EventName,
		OccurredAt:  now,
	})
	if nerr != nil {
		u.log.Warn().Err(nerr).Int64("order_id", order.ID).Msg("notify")
	}
	return out, nil
}

func (u *CheckInUsecase) fault(err error, p model.Principal, op string) error {
	u.log.Error().Err(err).Int64("scanner_id", p.UserID).Msg(op)
	return errInternal()
}
