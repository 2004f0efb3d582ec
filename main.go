package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"shop-service/handlers"
	"shop-service/internal/auth"
	"shop-service/internal/consul"
	"shop-service/internal/orders"
	"shop-service/internal/products"
	"shop-service/internal/reports"
	"shop-service/internal/stores/kafka"
	"shop-service/internal/stores/postgres"
	"shop-service/internal/users"
	"shop-service/migrations"
	"shop-service/pkg/metrics"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
)

const serviceName = "shop-service"

func main() {
	if err := startApp(); err != nil {
		slog.Error("service stopped", slog.String("Error", err.Error()))
		os.Exit(1)
	}
}

func startApp() error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, relying on environment")
	}

	db, err := postgres.OpenDB()
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("migrations applied")

	privateKeyPath := os.Getenv("JWT_PRIVATE_KEY_PATH")
	publicKeyPath := os.Getenv("JWT_PUBLIC_KEY_PATH")
	if privateKeyPath == "" || publicKeyPath == "" {
		return fmt.Errorf("JWT_PRIVATE_KEY_PATH and JWT_PUBLIC_KEY_PATH are required")
	}
	privatePEM, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return fmt.Errorf("reading private key: %w", err)
	}
	publicPEM, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return fmt.Errorf("reading public key: %w", err)
	}
	keys, err := auth.NewKeys(privatePEM, publicPEM)
	if err != nil {
		return fmt.Errorf("loading auth keys: %w", err)
	}

	productsConf, err := products.NewConf(db)
	if err != nil {
		return fmt.Errorf("creating products conf: %w", err)
	}
	usersConf, err := users.NewConf(db)
	if err != nil {
		return fmt.Errorf("creating users conf: %w", err)
	}
	ordersConf, err := orders.NewConf(db)
	if err != nil {
		return fmt.Errorf("creating orders conf: %w", err)
	}
	reportsConf, err := reports.NewConf(db)
	if err != nil {
		return fmt.Errorf("creating reports conf: %w", err)
	}

	var kafkaConf *kafka.Conf
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		kafkaConf, err = kafka.NewConf(brokers)
		if err != nil {
			return fmt.Errorf("connecting to kafka: %w", err)
		}
		defer kafkaConf.Close()
		slog.Info("kafka producer connected")
	}

	port := 8000
	if p := os.Getenv("SERVICE_PORT"); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid SERVICE_PORT: %w", err)
		}
	}

	if consulAddr := os.Getenv("CONSUL_HTTP_ADDR"); consulAddr != "" {
		client, err := consul.NewClient(consulAddr)
		if err != nil {
			return fmt.Errorf("connecting to consul: %w", err)
		}
		host := os.Getenv("SERVICE_HOST")
		if host == "" {
			host = "localhost"
		}
		serviceID := serviceName + "-" + uuid.NewString()
		if err := consul.RegisterService(client, serviceName, serviceID, host, port); err != nil {
			return fmt.Errorf("registering with consul: %w", err)
		}
		slog.Info("registered with consul", slog.String("ServiceID", serviceID))
	}

	sm := metrics.NewServerMetrics("api")
	engine := handlers.API(productsConf, usersConf, ordersConf, reportsConf, kafkaConf, keys, sm)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      engine,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	slog.Info("starting server", slog.Int("Port", port))
	return server.ListenAndServe()
}
