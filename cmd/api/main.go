package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"eventmart/internal/config"
	"eventmart/internal/handler"
	"eventmart/internal/infra/db"
	"eventmart/internal/infra/lock"
	"eventmart/internal/infra/logger"
	"eventmart/internal/infra/notify"
	"eventmart/internal/infra/payment"
	infraRepo "eventmart/internal/infra/repository"
	"eventmart/internal/middleware"
	"eventmart/internal/scheduler"
	"eventmart/internal/server"
	"eventmart/internal/usecase"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type notifier interface {
	usecase.Notifier
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(cfg.GoEnv, cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("exit")
	}
}

func run(cfg config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return err
	}
	if cfg.AutoMigrate {
		if err := db.Migrate(gormDB); err != nil {
			return err
		}
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	//Repository（GORM実装）生成
	txm := infraRepo.NewTxManagerGorm(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	catalogRepo := infraRepo.NewCatalogGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)

	//通知：ブローカーがあれば Kafka、無ければログ
	var n notifier = notify.NewLogNotifier(log.With().Str("component", "notify").Logger())
	if len(cfg.KafkaBrokers) > 0 {
		n = notify.NewKafkaNotifier(cfg.KafkaBrokers, cfg.NotificationTopic, log.With().Str("component", "notify").Logger())
		log.Info().Str("brokers", strings.Join(cfg.KafkaBrokers, ",")).Msg("notifications via kafka")
	}
	defer n.Close()

	gateway := payment.NewECPayGateway(payment.Config{
		GatewayURL:    cfg.Payment.GatewayURL,
		MerchantID:    cfg.Payment.MerchantID,
		HashKey:       cfg.Payment.HashKey,
		HashIV:        cfg.Payment.HashIV,
		ReturnURL:     cfg.Payment.ReturnURL,
		ClientBackURL: cfg.Payment.ClientBackURL,
	})

	//usecaseに渡す部品
	clock := usecase.SystemClock{}
	codes := usecase.UUIDCodes{}

	//Usecase生成
	cartUC := usecase.NewCartUsecase(cartRepo, catalogRepo, clock, log.With().Str("component", "cart").Logger())
	orderUC := usecase.NewOrderUsecase(txm, gateway, n, clock, codes, usecase.OrderConfig{
		ReservationWindow: cfg.ReservationWindow,
		SweepBatch:        cfg.SweepBatch,
	}, log.With().Str("component", "order").Logger())
	checkInUC := usecase.NewCheckInUsecase(txm, n, clock, log.With().Str("component", "check_in").Logger())
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, auditRepo, clock, cfg.AllowManualPayment, log.With().Str("component", "admin_order").Logger())

	//掃除のロック：Redis があればレプリカ間、無ければプロセス内
	var locker scheduler.Locker = lock.NewLocalLocker()
	if cfg.RedisAddr != "" {
		rdb := lock.NewRedisClient(cfg.RedisAddr, lock.WithPassword(cfg.RedisPassword), lock.WithDB(cfg.RedisDB))
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb)
	}
	sweeper := scheduler.NewRunner("expire-orders", cfg.SweepInterval,
		func(ctx context.Context, now time.Time) error {
			res, err := orderUC.ExpireOrders(ctx, now)
			if res.Expired > 0 || res.Failed > 0 {
				log.Info().
					Int("scanned", res.Scanned).
					Int("expired", res.Expired).
					Int("skipped", res.Skipped).
					Int("failed", res.Failed).
					Msg("expired orders swept")
			}
			return err
		},
		log,
		scheduler.WithLocker(locker, cfg.SweepLockTTL),
		scheduler.WithClock(clock.Now),
	)

	//Handler生成
	e := server.New(log)
	server.RegisterRoutes(e, middleware.AuthJWT(cfg.JWTSecret), server.Handlers{
		Health:     handler.NewHealthHandler(sqlDB),
		Cart:       handler.NewCartHandler(cartUC),
		Order:      handler.NewOrderHandler(orderUC),
		CheckIn:    handler.NewCheckInHandler(checkInUC),
		AdminOrder: handler.NewAdminOrderHandler(adminOrderUC),
	})

	addr := cfg.Port
	if !strings.HasPrefix(addr, ":") {
		addr = ":" + addr
	}

	//Server起動（HTTP と掃除を並べて動かし、どちらかが落ちたら両方止める）
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("http server started")
		return server.Start(gctx, e, addr, cfg.ShutdownTimeout)
	})
	g.Go(func() error {
		return sweeper.Run(gctx)
	})
	return g.Wait()
}
