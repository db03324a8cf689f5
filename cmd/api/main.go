package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/safar/coffee-shop/internal/accounts"
	"github.com/safar/coffee-shop/internal/cart"
	"github.com/safar/coffee-shop/internal/checkout"
	"github.com/safar/coffee-shop/internal/config"
	"github.com/safar/coffee-shop/internal/database"
	"github.com/safar/coffee-shop/internal/events"
	"github.com/safar/coffee-shop/internal/metrics"
	"github.com/safar/coffee-shop/internal/notify"
	"github.com/safar/coffee-shop/internal/store"
)

func main() {
	migrate := flag.Bool("migrate", false, "apply migrations/*.up.sql before serving")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("Connect to database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database successfully")

	if *migrate {
		applied, err := database.RunMigrations(ctx, db, "migrations", "up")
		if err != nil {
			log.Fatalf("Run migrations: %v", err)
		}
		log.Printf("Applied %d migration(s)", len(applied))
	}

	mongoClient, err := database.NewMongoClient(ctx, &cfg.Mongo)
	if err != nil {
		log.Fatalf("Connect to mongo: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Printf("Disconnect mongo: %v", err)
		}
	}()

	log.Printf("Connected to mongo database %s", cfg.Mongo.Database)

	mongoDB := mongoClient.Database(cfg.Mongo.Database)
	users := accounts.NewStore(mongoDB)
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Ensure user indexes: %v", err)
	}

	var carts interface {
		cartStore
		checkout.CartStore
	}
	switch cfg.Cart.Backend {
	case config.CartBackendMemory:
		carts = cart.NewMemoryStoreWithLookup(func(ctx context.Context, userID string) error {
			_, err := users.GetUser(ctx, userID)
			return err
		})
	default:
		carts = cart.NewMongoStore(mongoDB)
	}
	log.Printf("Cart backend: %s", cfg.Cart.Backend)

	catalog := store.NewCatalog(db)
	orders := store.NewOrders(db)

	publisher := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.OrderTopic)
	defer publisher.Close()
	if !publisher.Enabled() {
		log.Printf("Kafka disabled, order events will not be published")
	}

	mailer := notify.NewSender(cfg.SMTP)
	if !cfg.SMTP.Enabled() {
		log.Printf("SMTP not configured, order emails will not be sent")
	}

	serverMetrics := metrics.NewServerMetrics(prometheus.DefaultRegisterer)

	checkoutService := checkout.NewService(checkout.Deps{
		Carts:    carts,
		Catalog:  catalog,
		Orders:   orders,
		Profiles: users,
		Mailer:   mailer,
		Events:   publisher,
		Metrics:  serverMetrics,
	}, checkout.OptionsFromConfig(cfg))

	a := &app{
		carts:     carts,
		catalog:   catalog,
		orders:    orders,
		favorites: users,
		checkout:  checkoutService,
		metrics:   serverMetrics,
		checks: map[string]healthCheck{
			"postgres": db.PingContext,
			"mongo": func(ctx context.Context) error {
				return mongoClient.Ping(ctx, nil)
			},
		},
		jwtSecret:   cfg.Auth.JWTSecret,
		adminAPIKey: cfg.Auth.AdminAPIKey,
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      a.routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}

	checkoutService.Wait()
	log.Printf("Server stopped")
}
