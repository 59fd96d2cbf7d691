package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/api/handler"
	"github.com/RoyceAzure/lab/storefront/internal/api/router"
	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/RoyceAzure/lab/storefront/internal/infra/producer"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/storefront/internal/infra/sheetsync"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func main() {
	cf := config.GetConfig()
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	pricing, err := pricingFromConfig(cf)
	if err != nil {
		log.Fatal(err)
	}

	// postgres
	conn, err := db.GetDbConn(cf.DbName, cf.DbHost, cf.DbPort, cf.DbUser, cf.DbPas, cf.DbSSLMode)
	if err != nil {
		log.Fatal(err)
	}
	unifiedDB := db.NewUnifiedDB(conn)
	if err := unifiedDB.InitMigrate(); err != nil {
		log.Fatal(err)
	}

	// redis 只放購物車
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cf.RedisAddr,
		Password: cf.RedisPassword,
		DB:       cf.RedisDB,
	})
	cartRepo := redis_repo.NewCartRepo(redisClient)

	// 外部報表同步，未設定webhook就停用
	var appender sheetsync.RowAppender
	if cf.SheetWebhookURL != "" {
		appender = sheetsync.NewWebhookAppender(cf.SheetWebhookURL)
	}
	notifier := sheetsync.NewNotifier(appender, unifiedDB, logger)

	// kafka 領域事件，未設定broker就停用
	var events service.IOrderEventPublisher
	var eventProducer *producer.OrderEventProducer
	if brokers := cf.KafkaBrokerList(); len(brokers) > 0 {
		eventProducer = producer.NewOrderEventProducer(brokers, cf.KafkaOrderTopic)
		events = eventProducer
	}

	inventoryService := service.NewInventoryService(unifiedDB, logger)
	cartService := service.NewCartService(cartRepo, unifiedDB, pricing, logger)
	orderService := service.NewOrderService(unifiedDB, unifiedDB, inventoryService, cartService, notifier, events, logger)

	cartHandler := handler.NewCartHandler(cartService)
	orderHandler := handler.NewOrderHandler(orderService, notifier, pricing)

	r := router.SetupRouter(cartHandler, orderHandler, &logger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cf.ServerPort),
		Handler: r,
	}

	// 設置訊號監聽
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	shutDownCompleted := make(chan struct{}, 1)
	go func() {
		<-sigChan
		log.Println("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		if eventProducer != nil {
			if err := eventProducer.Close(); err != nil {
				log.Printf("Kafka producer close error: %v", err)
			}
		}
		if err := redisClient.Close(); err != nil {
			log.Printf("Redis close error: %v", err)
		}

		shutDownCompleted <- struct{}{}
	}()

	log.Printf("Server starting on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal(err)
	}
	<-shutDownCompleted
	log.Printf("closed completed")
}

func pricingFromConfig(cf *config.Config) (service.PricingParams, error) {
	discount, err := decimal.NewFromString(cf.DiscountPercent)
	if err != nil {
		return service.PricingParams{}, fmt.Errorf("invalid DISCOUNT_PERCENT %q: %w", cf.DiscountPercent, err)
	}
	fee, err := decimal.NewFromString(cf.DeliveryFee)
	if err != nil {
		return service.PricingParams{}, fmt.Errorf("invalid DELIVERY_FEE %q: %w", cf.DeliveryFee, err)
	}
	return service.PricingParams{DiscountPercent: discount, DeliveryFee: fee}, nil
}
