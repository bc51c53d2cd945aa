package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bureau/internal/config"
	"bureau/internal/db"
	"bureau/internal/handlers"
	"bureau/internal/logger"
	"bureau/internal/services"
	"bureau/internal/store"
	"bureau/internal/websocket"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	log, sync := logger.New(cfg.AppEnv)
	defer func() { _ = sync() }()

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect database", zap.Error(err))
	}
	defer database.Close()

	users := store.NewUserStore(database)
	currencies := store.NewCurrencyStore(database)
	customers := store.NewCustomerStore(database)
	queue := store.NewQueueStore(database)
	transactions := store.NewTransactionStore(database)
	notifications := store.NewNotificationStore(database)
	audit := store.NewAuditStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()

	queueService := services.NewQueueService(txRunner, customers, queue, currencies, audit, hub, cfg, log)
	settlementService := services.NewSettlementService(txRunner, queue, currencies, transactions, notifications, audit, hub, cfg, log)

	handler := handlers.New(txRunner, cfg, log, users, currencies, notifications, audit, queueService, settlementService, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("bureau API listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("shutdown error", zap.Error(err))
	}
}
