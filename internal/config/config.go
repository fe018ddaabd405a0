package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Configはアプリ全体の設定
type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	GoEnv    string `envconfig:"GO_ENV" default:"dev"` // dev/prod
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	// 停止時にリクエストを待つ時間
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// postgres / sqlite（sqlite はローカル開発用）
	DBDriver   string `envconfig:"DB_DRIVER" default:"postgres"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"eventmart.db"`

	// DATABASE_URL があれば POSTGRES_* より優先
	DatabaseURL      string `envconfig:"DATABASE_URL"`
	PostgresHost     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresUser     string `envconfig:"POSTGRES_USER" default:"postgres"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD" default:"postgres"`
	PostgresDB       string `envconfig:"POSTGRES_DB" default:"eventmart"`
	PostgresSSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
	AutoMigrate      bool   `envconfig:"AUTO_MIGRATE" default:"true"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"` // JWT署名シークレット

	//予約期限（注文作成からの時間）
	ReservationWindow time.Duration `envconfig:"RESERVATION_WINDOW" default:"30m"`
	//期限切れ注文の掃除間隔
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"1m"`
	SweepLockTTL  time.Duration `envconfig:"SWEEP_LOCK_TTL" default:"50s"`
	SweepBatch    int           `envconfig:"SWEEP_BATCH" default:"200"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	KafkaBrokers      []string `envconfig:"KAFKA_BROKERS"`
	NotificationTopic string   `envconfig:"NOTIFICATION_TOPIC" default:"order-notifications"`

	Payment PaymentConfig `envconfig:"PAYMENT"`

	//テスト・手動運用向けの支払い済み化
	AllowManualPayment bool `envconfig:"ALLOW_MANUAL_PAYMENT" default:"false"`
}

type PaymentConfig struct {
	GatewayURL    string `envconfig:"GATEWAY_URL" default:"https://payment-stage.ecpay.com.tw/Cashier/AioCheckOut/V5"`
	MerchantID    string `envconfig:"MERCHANT_ID"`
	HashKey       string `envconfig:"HASH_KEY"`
	HashIV        string `envconfig:"HASH_IV"`
	ReturnURL     string `envconfig:"RETURN_URL"`
	ClientBackURL string `envconfig:"CLIENT_BACK_URL"`
}

// Loadは .env（あれば）と環境変数から読む
func Load() (Config, error) {
	//.env は無くてもよい
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	cfg.KafkaBrokers = compact(cfg.KafkaBrokers)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.DBDriver != "postgres" && c.DBDriver != "sqlite" {
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.ReservationWindow <= 0 {
		return fmt.Errorf("RESERVATION_WINDOW must be positive")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive")
	}
	if c.SweepLockTTL <= 0 {
		return fmt.Errorf("SWEEP_LOCK_TTL must be positive")
	}
	if c.SweepBatch <= 0 {
		return fmt.Errorf("SWEEP_BATCH must be positive")
	}

	//決済は全部そろっているか、全部空（開発用のダミー署名）
	p := c.Payment
	set := 0
	for _, v := range []string{p.MerchantID, p.HashKey, p.HashIV} {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != 3 {
		return fmt.Errorf("PAYMENT_MERCHANT_ID, PAYMENT_HASH_KEY and PAYMENT_HASH_IV must be set together")
	}
	if c.GoEnv == "prod" && set == 0 {
		return fmt.Errorf("payment credentials are required in prod")
	}
	return nil
}

// DB_DRIVER に合わせた DSN
func (c Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.SQLitePath
	}
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
