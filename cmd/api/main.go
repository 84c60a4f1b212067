package main

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"backed-protocol/internal/adapter/custodyhttp"
	httpadp "backed-protocol/internal/adapter/http"
	mw "backed-protocol/internal/adapter/middleware"
	"backed-protocol/internal/adapter/repository/mysql"
	"backed-protocol/internal/config"
	"backed-protocol/internal/domain/drawer"
	"backed-protocol/internal/domain/loan"
	"backed-protocol/internal/domain/protocol"
	"backed-protocol/internal/domain/ticket"
	"backed-protocol/internal/infrastructure/cache"
	"backed-protocol/internal/infrastructure/db"
	drawerusecase "backed-protocol/internal/usecase/drawer"
	loanusecase "backed-protocol/internal/usecase/loan"
	ticketusecase "backed-protocol/internal/usecase/ticket"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	if err := gdb.AutoMigrate(&loan.Loan{}, &ticket.Ticket{}, &drawer.Balance{}); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}

	settings, err := protocol.NewSettings(cfg.AdminID, cfg.OriginationFeeRate, cfg.ImprovementPercent,
		cfg.BorrowTicketAsset, cfg.LendTicketAsset)
	if err != nil {
		log.Fatalf("settings: %v", err)
	}

	store := mysql.NewGormUoW(gdb)
	custodian := custodyhttp.New(cfg.CustodyBaseURL)

	loanUC := loanusecase.NewUsecase(store, custodian, settings)
	ticketUC := ticketusecase.NewUsecase(store)
	drawerUC := drawerusecase.NewUsecase(store, custodian, settings)

	h := httpadp.NewHandler()
	loanH := httpadp.NewLoanHandler(loanUC)
	ticketH := httpadp.NewTicketHandler(ticketUC)
	drawerH := httpadp.NewDrawerHandler(drawerUC)
	adminH := httpadp.NewAdminHandler(settings)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover())
	e.Use(mw.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second))

	// routes
	e.GET("/health", h.Health)

	e.POST("/loans", loanH.CreateLoan)
	e.GET("/loans", loanH.ListLoans)
	e.GET("/loans/:loan_id", loanH.GetLoan)
	e.GET("/loans/:loan_id/interest", loanH.GetInterest)
	e.POST("/loans/:loan_id/underwrite", loanH.Underwrite)
	e.POST("/loans/:loan_id/draw", loanH.Draw)
	e.POST("/loans/:loan_id/repay", loanH.Repay)
	e.POST("/loans/:loan_id/seize", loanH.Seize)
	e.POST("/loans/:loan_id/close", loanH.Close)

	e.GET("/tickets", ticketH.ListByOwner)
	e.GET("/tickets/:side/:loan_id", ticketH.GetOwner)
	e.POST("/tickets/:side/:loan_id/transfer", ticketH.Transfer)

	e.GET("/drawer/:asset", drawerH.GetBalance)
	e.POST("/drawer/:asset/withdraw", drawerH.Withdraw)

	e.PUT("/admin/origination-fee-rate", adminH.SetOriginationFeeRate)
	e.PUT("/admin/improvement-percent", adminH.SetImprovementPercent)

	addr := ":" + cfg.AppPort
	log.Printf("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
