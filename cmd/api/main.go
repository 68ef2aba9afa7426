package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/everbloom-studio/booking-api/internal/adapters/busycal"
	"github.com/everbloom-studio/booking-api/internal/adapters/httpapi"
	memblackoutrepo "github.com/everbloom-studio/booking-api/internal/adapters/memory/blackoutrepo"
	membookingrepo "github.com/everbloom-studio/booking-api/internal/adapters/memory/bookingrepo"
	memcalendar "github.com/everbloom-studio/booking-api/internal/adapters/memory/calendar"
	memevents "github.com/everbloom-studio/booking-api/internal/adapters/memory/events"
	memkeystore "github.com/everbloom-studio/booking-api/internal/adapters/memory/keystore"
	postgres "github.com/everbloom-studio/booking-api/internal/adapters/postgres"
	pgblackoutrepo "github.com/everbloom-studio/booking-api/internal/adapters/postgres/blackoutrepo"
	pgbookingrepo "github.com/everbloom-studio/booking-api/internal/adapters/postgres/bookingrepo"
	pgkeystore "github.com/everbloom-studio/booking-api/internal/adapters/postgres/keystore"
	"github.com/everbloom-studio/booking-api/internal/adapters/rabbitmq"
	"github.com/everbloom-studio/booking-api/internal/app/availability"
	"github.com/everbloom-studio/booking-api/internal/app/checkout"
	"github.com/everbloom-studio/booking-api/internal/app/idempotency"
	platformclock "github.com/everbloom-studio/booking-api/internal/platform/clock"
	"github.com/everbloom-studio/booking-api/internal/platform/config"
	blackoutrepoport "github.com/everbloom-studio/booking-api/internal/ports/out/blackoutrepo"
	bookingrepoport "github.com/everbloom-studio/booking-api/internal/ports/out/bookingrepo"
	calendarport "github.com/everbloom-studio/booking-api/internal/ports/out/calendar"
	eventsport "github.com/everbloom-studio/booking-api/internal/ports/out/events"
	keystoreport "github.com/everbloom-studio/booking-api/internal/ports/out/keystore"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	clk := platformclock.NewSystemClock()

	var (
		blackoutRepo blackoutrepoport.Repository
		bookingRepo  bookingrepoport.Repository
		keyStore     keystoreport.Store
		cleanup      func()
	)

	switch cfg.StorageBackend {
	case "postgres":
		if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		pool, err := postgres.NewPool(context.Background(), cfg.DatabaseURL, postgres.PoolOptions{})
		if err != nil {
			log.Fatalf("invalid postgres config: %v", err)
		}
		cleanup = pool.Close

		blackoutRepo = pgblackoutrepo.NewRepo(pool)
		bookingRepo = pgbookingrepo.NewRepo(pool)
		keyStore = pgkeystore.NewStore(pool)
	default:
		blackoutRepo = memblackoutrepo.NewRepo()
		bookingRepo = membookingrepo.NewRepo()
		keyStore = memkeystore.NewStore()
	}

	if cleanup != nil {
		defer cleanup()
	}

	var calendarProvider calendarport.Provider
	if cfg.CalendarBaseURL != "" {
		calendarProvider = busycal.NewProvider(cfg.CalendarBaseURL, 5*time.Second)
	} else {
		calendarProvider = memcalendar.NewProvider()
	}

	var publisher eventsport.Publisher
	if cfg.RabbitURL != "" {
		conn, err := amqp.Dial(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("dial rabbitmq: %v", err)
		}
		defer conn.Close()
		pub, err := rabbitmq.NewPublisher(conn)
		if err != nil {
			log.Fatalf("init rabbitmq publisher: %v", err)
		}
		defer pub.Close()
		publisher = pub
	} else {
		publisher = memevents.NewPublisher()
	}

	resolver := availability.NewResolver(blackoutRepo, bookingRepo, calendarProvider)
	idemSvc := idempotency.NewService(keyStore, clk, idempotency.Config{
		KeyTTL:            cfg.IdempotencyTTL,
		CheckoutKeyWindow: cfg.CheckoutKeyWindow,
	})
	checkoutSvc := checkout.NewService(bookingRepo, resolver, idemSvc, publisher, clk)

	api := httpapi.NewServer(resolver, checkoutSvc, bookingRepo, blackoutRepo, clk)
	handler := httpapi.NewRouterWithOptions(api, httpapi.RouterOptions{
		TenantMiddleware: httpapi.NewTenantMiddleware(cfg.DefaultTenant),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("api listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
