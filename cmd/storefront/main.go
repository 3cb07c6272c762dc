package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/catalog"
	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/events"
	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/fulfillment"
	storehttp "github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/http"
	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/notify"
	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/order"
	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/postgres"
	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/review"
	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/shipping"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	db, err := postgres.Open(&postgres.Credentials{
		Host:     envStr("DB_HOST", "localhost"),
		Port:     envInt("DB_PORT", 5432),
		User:     envStr("DB_USER", "postgres"),
		Password: envStr("DB_PASSWORD", "postgres"),
		DBName:   envStr("DB_NAME", "storefront"),
	})
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db, envStr("MIGRATIONS_DIR", "migrations")); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	storeInfo := notify.StoreInfo{
		StoreName:      envStr("STORE_NAME", "Estilo Fachero"),
		Bank:           envStr("PAYMENT_BANK", ""),
		Alias:          envStr("PAYMENT_ALIAS", ""),
		Holder:         envStr("PAYMENT_HOLDER", ""),
		WhatsAppNumber: envStr("WHATSAPP_NUMBER", ""),
		WhatsAppLink:   envStr("WHATSAPP_LINK", ""),
	}

	var sender notify.Sender = notify.LogSender{}
	mailCfg := notify.Config{
		Host:        envStr("SMTP_HOST", ""),
		Port:        envInt("SMTP_PORT", 587),
		Username:    envStr("SMTP_USERNAME", ""),
		Password:    envStr("SMTP_PASSWORD", ""),
		From:        envStr("SMTP_FROM", ""),
		SellerEmail: envStr("SELLER_EMAIL", ""),
		LogoPath:    envStr("MAIL_LOGO_PATH", ""),
	}
	if mailCfg.Complete() {
		mailer, err := notify.NewMailer(mailCfg, storeInfo)
		if err != nil {
			log.Fatalf("mailer setup failed: %v", err)
		}
		sender = mailer
	} else {
		log.Printf("SMTP not configured, notifications will only be logged")
	}
	dispatcher := notify.NewDispatcher(sender)
	defer dispatcher.Close()

	catalogStore := catalog.NewPostgresStore(db)
	reviewStore := review.NewPostgresStore(db)
	optionStore := shipping.NewPostgresOptionStore(db)
	orderRepo := order.NewPostgresRepository(db)

	payment := order.PaymentDetails{
		Bank:           storeInfo.Bank,
		Alias:          storeInfo.Alias,
		Holder:         storeInfo.Holder,
		WhatsAppNumber: storeInfo.WhatsAppNumber,
		WhatsAppLink:   storeInfo.WhatsAppLink,
	}
	orderService := order.NewService(orderRepo, dispatcher, payment)
	fulfillmentService := fulfillment.NewService(orderRepo, dispatcher)

	estimator := shipping.NewEstimator(catalogStore)
	carrier := shipping.NewClient(shipping.Config{
		BaseURL:          envStr("CARRIER_BASE_URL", ""),
		Username:         envStr("CARRIER_USERNAME", ""),
		Password:         envStr("CARRIER_PASSWORD", ""),
		CustomerID:       envStr("CARRIER_CUSTOMER_ID", ""),
		OriginPostalCode: envStr("CARRIER_ORIGIN_POSTAL_CODE", ""),
	})

	var quoteCache shipping.QuoteCache
	if addr := envStr("REDIS_ADDR", ""); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		defer rdb.Close()
		quoteCache = shipping.NewRedisQuoteCache(rdb)
	} else {
		log.Printf("REDIS_ADDR not set, quote caching disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if brokers := envStr("KAFKA_BROKERS", ""); brokers != "" {
		publisher := events.NewPublisher(orderRepo, strings.Split(brokers, ",")...)
		defer publisher.Close()
		go publisher.Run(ctx)
	} else {
		log.Printf("KAFKA_BROKERS not set, outbox publishing disabled")
	}

	router := storehttp.NewRouter(storehttp.RouterConfig{
		Catalog:    catalogStore,
		Reviews:    reviewStore,
		Options:    optionStore,
		Estimator:  estimator,
		Quoter:     carrier,
		QuoteCache: quoteCache,
		Submitter:  orderService,
		Orders:     orderRepo,
		Updater:    fulfillmentService,
		AdminToken: envStr("ADMIN_TOKEN", ""),
	})

	srv := &http.Server{
		Addr:    ":" + envStr("HTTP_PORT", "8080"),
		Handler: router,
	}

	go func() {
		log.Printf("storefront listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown failed: %v", err)
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
