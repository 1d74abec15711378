package main

import (
	"database/sql"
	"fmt"
	"net"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/viper"

	"homefind/messaging-service/internal/api"
	"homefind/messaging-service/internal/directory"
	"homefind/messaging-service/internal/repository"
	"homefind/messaging-service/internal/service"

	"github.com/sirupsen/logrus"
)

func main() {
	viper.AutomaticEnv()
	viper.SetEnvPrefix("")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/app/config")

	if err := viper.ReadInConfig(); err != nil {
		logrus.Fatalf("Failed to read config file: %v", err)
	}

	logger := logrus.New()
	logLevel := viper.GetString("logging.level")
	logFormat := viper.GetString("logging.format")

	switch logLevel {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "info":
		logger.SetLevel(logrus.InfoLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	if logFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{})
	}

	dbHost := viper.GetString("database.host")
	dbPort := viper.GetInt("database.port")
	dbUser := viper.GetString("database.user")
	dbPassword := viper.GetString("database.password")
	dbName := viper.GetString("database.dbname")
	sslmode := viper.GetString("database.sslmode")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == 0 {
		dbPort = 5432
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "homefind"
	}
	if sslmode == "" {
		sslmode = "disable"
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		dbUser, dbPassword, dbHost, dbPort, dbName, sslmode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	logger.Info("Connected to PostgreSQL database")

	convRepo := repository.NewConversationRepository(db)
	if err := convRepo.InitializeTables(); err != nil {
		logger.Fatalf("Failed to initialize database tables: %v", err)
	}

	dir := directory.NewPgDirectory(db)
	convService := service.NewConversationService(convRepo, dir, logger)

	port := viper.GetString("server.port")
	if port == "" {
		port = "8087"
	}

	host := viper.GetString("server.host")
	if host == "" {
		host = "0.0.0.0"
	}

	shutdownTimeout := viper.GetDuration("http.shutdown_timeout")
	if shutdownTimeout == 0 {
		shutdownTimeout = 10 * time.Second
	}

	server := api.NewServer(convService, logger, net.JoinHostPort(host, port), shutdownTimeout)
	if err := server.Start(); err != nil {
		logger.Fatalf("Server shutdown failed: %v", err)
	}
}
