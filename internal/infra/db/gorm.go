package db

import (
	"fmt"
	"time"

	"eventmart/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(driver string, dsn string) (*gorm.DB, error) {
	switch driver {
	case "postgres":
		return connectPostgres(dsn)
	case "sqlite":
		return ConnectSQLite(dsn)
	}
	return nil, fmt.Errorf("unsupported db driver %q", driver)
}

func connectPostgres(dsn string) (*gorm.DB, error) {
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return gormDB, nil
}

// ConnectSQLite はローカル開発・テスト用。
// SQLite は行ロックが無いので接続を1本にしてTxを直列にする
func ConnectSQLite(path string) (*gorm.DB, error) {
	gormDB, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on&_busy_timeout=5000"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return gormDB, nil
}

// 注文エンジンが使うテーブル
func Models() []interface{} {
	return []interface{}{
		&model.Event{},
		&model.TicketType{},
		&model.Product{},
		&model.ProductVariant{},
		&model.Coupon{},
		&model.Cart{},
		&model.CartLine{},
		&model.Order{},
		&model.OrderItem{},
		&model.Ticket{},
		&model.CheckIn{},
		&model.InventoryMovement{},
		&model.AuditLog{},
	}
}

func Migrate(gormDB *gorm.DB) error {
	return gormDB.AutoMigrate(Models()...)
}
