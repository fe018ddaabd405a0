package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// 1リクエスト1行のアクセスログ
// request id は echo の RequestID ミドルウェアがレスポンスヘッダに入れたもの
func RequestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				//ステータスを確定させる
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			ev := log.Info()
			if res.Status >= 500 {
				ev = log.Error().Err(err)
			}
			userID, _ := c.Get(CtxUserIDKey).(int64)
			ev.
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Int64("user_id", userID).
				Str("method", req.Method).
				Str("path", c.Path()).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Msg("request completed")
			return nil
		}
	}
}
