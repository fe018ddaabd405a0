package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New は環境に合わせた zerolog.Logger を作る
// dev は人が読むコンソール形式、それ以外はJSON
func New(goEnv string, level string) zerolog.Logger {
	var w io.Writer = os.Stdout
	if goEnv == "dev" {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Str("service", "eventmart").
		Logger()
}

func ParseLevel(level string) zerolog.Level {
	lv, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lv
}
