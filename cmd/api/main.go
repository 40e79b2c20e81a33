package main

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpadp "github.com/nancy-13-hue/p2p-lending-database/internal/adapter/http"
	idem "github.com/nancy-13-hue/p2p-lending-database/internal/adapter/middleware"
	"github.com/nancy-13-hue/p2p-lending-database/internal/adapter/repository/mysql"
	"github.com/nancy-13-hue/p2p-lending-database/internal/config"
	"github.com/nancy-13-hue/p2p-lending-database/internal/infrastructure/cache"
	"github.com/nancy-13-hue/p2p-lending-database/internal/infrastructure/db"
	"github.com/nancy-13-hue/p2p-lending-database/internal/observability"
	fundinguc "github.com/nancy-13-hue/p2p-lending-database/internal/usecase/funding"
	loanuc "github.com/nancy-13-hue/p2p-lending-database/internal/usecase/loan"
	queryuc "github.com/nancy-13-hue/p2p-lending-database/internal/usecase/query"
	repaymentuc "github.com/nancy-13-hue/p2p-lending-database/internal/usecase/repayment"
	useruc "github.com/nancy-13-hue/p2p-lending-database/internal/usecase/user"
)

func main() {
	_ = godotenv.Load() // optional .env for local runs

	log := observability.NewLogger("api")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("mysql connect failed")
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal().Err(err).Msg("schema migration failed")
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connect failed")
	}

	metrics := observability.NewMetrics()

	loans := mysql.NewLoanRepository(gdb)
	fundings := mysql.NewFundingRepository(gdb)
	users := mysql.NewUserRepository(gdb)
	investments := mysql.NewInvestmentRepository(gdb)
	installments := mysql.NewInstallmentRepository(gdb)
	entries := mysql.NewLedgerRepository(gdb)
	audits := mysql.NewAuditRepository(gdb)
	tx := mysql.NewGormUoW(gdb)

	loanUC := loanuc.NewUsecase(loans, fundings, users, tx, metrics, cfg.LoanTxRetries)
	fundingUC := fundinguc.NewUsecase(loans, investments, tx, metrics, cfg.LoanTxRetries)
	repaymentUC := repaymentuc.NewUsecase(tx, metrics, cfg.LoanTxRetries)
	userUC := useruc.NewUsecase(tx, metrics)
	queryUC := queryuc.NewUsecase(loans, fundings, users, investments, installments, entries, audits)

	health := httpadp.NewHealthHandler()
	loanH := httpadp.NewLoanHandler(loanUC, queryUC)
	investH := httpadp.NewInvestmentHandler(fundingUC, queryUC)
	repayH := httpadp.NewRepaymentHandler(repaymentUC)
	userH := httpadp.NewUserHandler(userUC, queryUC)
	auditH := httpadp.NewAuditHandler(queryUC)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger(), middleware.Recover())
	// Idempotency lets reads through untouched, so it can sit on the whole chain.
	e.Use(idem.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second))
	e.Validator = httpadp.NewValidator()

	// reads
	e.GET("/health", health.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/loans", loanH.ListLoans)
	e.GET("/loans/:loan_id", loanH.GetLoan)
	e.GET("/loans/:loan_id/funding", loanH.FundingProgress)
	e.GET("/loans/:loan_id/repayments", loanH.RepaymentHistory)
	e.GET("/investors/:investor_id/portfolio", investH.Portfolio)
	e.GET("/users/:user_id/transactions", userH.Transactions)
	e.GET("/audit", auditH.AuditLog)

	// writes
	e.POST("/users", userH.Register)
	e.POST("/loans", loanH.CreateLoan)
	e.PATCH("/loans/:loan_id/status", loanH.ChangeStatus)
	e.POST("/loans/:loan_id/investments", investH.ApplyInvestment)
	e.POST("/investments/:investment_id/withdraw", investH.Withdraw)
	e.POST("/loans/:loan_id/installments/:installment_id/payments", repayH.Pay)
	e.POST("/overdue-sweeps", repayH.OverdueSweep)

	addr := ":" + cfg.AppPort
	log.Info().Str("addr", addr).Msg("listening")
	if err := e.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
