package db

import (
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/audit"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/history"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/installment"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/investment"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/ledger"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/loan"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/user"
	"github.com/nancy-13-hue/p2p-lending-database/internal/observability"
)

// OpenGorm connects to MySQL with the pool sizing the API runs with.
func OpenGorm(dsn string) (*gorm.DB, error) {
	return OpenGormWithDialector(mysql.Open(dsn))
}

// OpenGormWithDialector is the injectable variant; tests pass a dialector
// backed by a mocked *sql.DB.
func OpenGormWithDialector(dial gorm.Dialector) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	lg := observability.NewLogger("db")
	lg.Info().Msg("gorm: connected")
	return db, nil
}

// Models lists every persisted entity, in FK dependency order.
// Migrate and the schema tests both key off this list.
func Models() []any {
	return []any{
		&user.User{},
		&loan.Loan{},
		&loan.FundingRecord{},
		&investment.Investment{},
		&installment.Installment{},
		&ledger.Entry{},
		&history.Entry{},
		&audit.Entry{},
	}
}

// Migrate creates or updates the schema. The enum column types in the
// entity tags are MySQL-specific; tests use sqlite-safe shadows instead.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
