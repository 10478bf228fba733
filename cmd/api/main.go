package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nishkarsh/go-shop-api/internal/cart"
	"github.com/nishkarsh/go-shop-api/internal/catalog"
	"github.com/nishkarsh/go-shop-api/internal/checkout"
	"github.com/nishkarsh/go-shop-api/internal/config"
	"github.com/nishkarsh/go-shop-api/internal/gateway"
	"github.com/nishkarsh/go-shop-api/internal/httpx"
	kafkax "github.com/nishkarsh/go-shop-api/internal/kafka"
	"github.com/nishkarsh/go-shop-api/internal/logx"
	"github.com/nishkarsh/go-shop-api/internal/notify"
	"github.com/nishkarsh/go-shop-api/internal/orders"
	"github.com/nishkarsh/go-shop-api/internal/postgres"
	"github.com/nishkarsh/go-shop-api/internal/pricing"
	"github.com/nishkarsh/go-shop-api/internal/reconcile"
	"github.com/nishkarsh/go-shop-api/internal/redisx"
	"github.com/nishkarsh/go-shop-api/internal/session"
	"github.com/nishkarsh/go-shop-api/internal/settlement"
	"github.com/nishkarsh/go-shop-api/internal/stock"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logx.New(logx.Options{Service: cfg.ServiceName, Env: cfg.Env, Level: cfg.LogLevel})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer for order lifecycle events
	prod := kafkax.NewProducer(cfg.KafkaBrokers, notify.TopicOrderEvents, 1024)
	prod.Start(ctx)
	publisher := &notify.Publisher{Producer: prod, Service: cfg.ServiceName}

	// Repos
	catalogRepo := &catalog.Repo{DB: db}
	cartRepo := &cart.Repo{DB: db}
	orderRepo := &orders.Repo{DB: db}
	settingsRepo := &pricing.SettingsRepo{DB: db}
	stockStore := &stock.Store{DB: db}

	// Redis-backed pieces
	ledger := stock.NewLedger(rdb, cfg.ReservationTTL)
	snapshots := stock.NewSnapshots(rdb, cfg.SnapshotTTL)
	pricer := &pricing.Engine{Settings: settingsRepo, Cache: rdb}

	// Gateway
	gw := gateway.New(cfg.GatewayBaseURL, cfg.GatewayToken, cfg.RedirectURL)

	// Services
	checkoutSvc := &checkout.Service{
		Cart:      cartRepo,
		Pricer:    pricer,
		Ledger:    ledger,
		Stock:     stockStore,
		Orders:    orderRepo,
		Snapshots: snapshots,
		Gateway:   gw,
	}
	settlementSvc := &settlement.Service{
		Snapshots: snapshots,
		Payments:  orderRepo,
		Stock:     stockStore,
		Ledger:    ledger,
		Orders:    orderRepo,
		Notifier:  publisher,
	}

	// Reconciliation sweep for UPI orders whose webhook never arrived
	job := &reconcile.Job{
		Orders:   orderRepo,
		Gateway:  gw,
		Notifier: publisher,
		Grace:    cfg.ReconcileGrace,
		Every:    cfg.ReconcileEvery,
	}
	go job.Run(ctx)

	// HTTP
	sm := &session.Manager{Secret: []byte(cfg.JWTSecret)}
	router := httpx.NewRouter(sm)
	(&httpx.CatalogHandler{Catalog: catalogRepo, Stock: stockStore, Ledger: ledger}).Register(router)
	(&httpx.CartHandler{Cart: cartRepo, Catalog: catalogRepo, Stock: stockStore, Ledger: ledger}).Register(router)
	(&httpx.CheckoutHandler{Checkout: checkoutSvc}).Register(router)
	(&httpx.PaymentsHandler{Settlement: settlementSvc}).Register(router)
	(&httpx.OrdersHandler{Orders: orderRepo}).Register(router)
	(&httpx.AdminHandler{Settings: settingsRepo, Pricer: pricer, Stock: stockStore}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	slog.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()
	cancel()
	prod.WaitClosed()
}
