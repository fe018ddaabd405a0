package notify

import (
	"context"

	"eventmart/internal/usecase"

	"github.com/rs/zerolog"
)

// ブローカーが無い環境用。ログに出すだけ
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (l *LogNotifier) Notify(_ context.Context, n usecase.Notification) error {
	l.log.Info().
		Str("notification_id", n.ID).
		Str("type", string(n.Type)).
		Int64("user_id", n.UserID).
		Int64("order_id", n.OrderID).
		Str("order_number", n.OrderNumber).
		Msg(n.Message)
	return nil
}

func (l *LogNotifier) Close() error { return nil }
