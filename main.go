package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sethvargo/go-envconfig"
	"github.com/shopspring/decimal"

	"laxmi-banking/bank"
	"laxmi-banking/billers"
	"laxmi-banking/store"
)

// Config is read from the environment at startup.
type Config struct {
	Port        int           `env:"PORT,default=8080"`
	FrontendURL string        `env:"FRONTEND_URL,default=http://localhost:5173"`
	LockWait    time.Duration `env:"LEDGER_LOCK_WAIT,default=3s"`
}

// app bundles the ledger core and the external payment network behind
// the HTTP handlers.
type app struct {
	svc *bank.Service
	dir *billers.Directory
}

func init() {
	// The front end expects amounts as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

func main() {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		log.Fatal("loading config: ", err)
	}

	a := &app{
		svc: bank.New(store.New(cfg.LockWait)),
		dir: billers.NewMockDirectory(),
	}

	// Gin with default middleware (Logger and Recovery).
	r := a.router(cfg)

	addr := fmt.Sprintf(":%d", cfg.Port)
	fmt.Println("Starting laxmi-banking server on", addr, "...")
	if err := r.Run(addr); err != nil {
		log.Fatal("server: ", err)
	}
}

// router wires all routes. Customer routes are scoped by the
// :customerId path parameter; admin routes are unauthenticated at this
// layer, authorization belongs to the admin front end's gateway.
func (a *app) router(cfg Config) *gin.Engine {
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/health", a.health)
	r.GET("/api/billers", a.listBillers)

	c := r.Group("/api/customers/:customerId")
	c.POST("/accounts", a.openAccount)
	c.GET("/accounts", a.accountSummary)
	c.GET("/accounts/:accountId", a.getAccount)
	c.GET("/accounts/:accountId/transactions", a.listTransactions)
	c.POST("/transfers", a.transfer)
	c.POST("/bill-payments", a.payBill)
	c.POST("/loans", a.requestLoan)
	c.GET("/loans", a.listLoans)

	adm := r.Group("/api/admin")
	adm.GET("/dashboard", a.dashboard)
	adm.GET("/accounts", a.adminListAccounts)
	adm.PUT("/accounts/:accountId/status", a.adminSetAccountStatus)
	adm.GET("/transactions", a.adminListTransactions)

	return r
}
