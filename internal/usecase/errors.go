package usecase

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// 呼び出し側が分岐に使うエラーの種類
type ErrorKind string

const (
	KindValidation            ErrorKind = "VALIDATION_ERROR"
	KindUnauthorized          ErrorKind = "UNAUTHORIZED"
	KindStockConflict         ErrorKind = "STOCK_CONFLICT"
	KindAmountMismatch        ErrorKind = "AMOUNT_MISMATCH"
	KindAttendeeCountMismatch ErrorKind = "ATTENDEE_COUNT_MISMATCH"
	KindNotFound              ErrorKind = "NOT_FOUND"
	KindForbidden             ErrorKind = "FORBIDDEN"
	KindInvalidState          ErrorKind = "INVALID_STATE"
	KindAlreadyUsed           ErrorKind = "ALREADY_USED"
	KindInternal              ErrorKind = "INTERNAL"
)

// 想定内の失敗はすべてこれで返す。それ以外の error は500扱い
type HTTPError struct {
	Status  int
	Kind    ErrorKind
	Message string
	// 衝突した明細名・残数など
	Details map[string]interface{}
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Kind, e.Message)
}

func NewHTTPError(status int, kind ErrorKind, message string) error {
	return &HTTPError{
		Status:  status,
		Kind:    kind,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// HTTPError でなければ INTERNAL
func KindOf(err error) ErrorKind {
	if he, ok := AsHTTPError(err); ok {
		return he.Kind
	}
	return KindInternal
}

func errValidation(msg string) error {
	return NewHTTPError(http.StatusBadRequest, KindValidation, msg)
}

func errUnauthorized() error {
	return NewHTTPError(http.StatusUnauthorized, KindUnauthorized, "unauthorized")
}

func errNotFound(msg string) error {
	return NewHTTPError(http.StatusNotFound, KindNotFound, msg)
}

func errForbidden(msg string) error {
	return NewHTTPError(http.StatusForbidden, KindForbidden, msg)
}

func errInvalidState(msg string) error {
	return NewHTTPError(http.StatusBadRequest, KindInvalidState, msg)
}

func errInternal() error {
	return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
}

func errStockConflict(item string, remaining int64) error {
	return &HTTPError{
		Status:  http.StatusConflict,
		Kind:    KindStockConflict,
		Message: fmt.Sprintf("insufficient stock for %s: %d remaining", item, remaining),
		Details: map[string]interface{}{"item": item, "remaining": remaining},
	}
}

func errAmountMismatch(submitted, computed decimal.Decimal) error {
	return &HTTPError{
		Status:  http.StatusBadRequest,
		Kind:    KindAmountMismatch,
		Message: fmt.Sprintf("submitted total %s does not match order total %s", submitted.StringFixed(2), computed.StringFixed(2)),
		Details: map[string]interface{}{"submitted_total": submitted.StringFixed(2), "total_amount": computed.StringFixed(2)},
	}
}

func errAttendeeCountMismatch(want, got int64) error {
	return &HTTPError{
		Status:  http.StatusBadRequest,
		Kind:    KindAttendeeCountMismatch,
		Message: fmt.Sprintf("%d attendees required for %d tickets, got %d", want, want, got),
		Details: map[string]interface{}{"tickets": want, "attendees": got},
	}
}

// 入場時のエラーは全部4xx（スタッフ端末で出し分ける）
func errInvalidTicketCode() error {
	return NewHTTPError(http.StatusBadRequest, KindNotFound, "invalid ticket code")
}

func errAlreadyUsed(code string) error {
	return &HTTPError{
		Status:  http.StatusBadRequest,
		Kind:    KindAlreadyUsed,
		Message: "ticket already used",
		Details: map[string]interface{}{"code": code},
	}
}
