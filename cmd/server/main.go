package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roomledger/internal/config"
	"roomledger/internal/db"
	"roomledger/internal/handlers"
	"roomledger/internal/logging"
	"roomledger/internal/services"
	"roomledger/internal/store"
	"roomledger/internal/websocket"
)

func main() {
	logging.Setup()
	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	users := store.NewUserStore(database)
	groups := store.NewGroupStore(database)
	expenses := store.NewExpenseStore(database)
	payments := store.NewPaymentStore(database)
	audit := store.NewAuditStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()

	groupService := services.NewGroupService(txRunner, groups, expenses, payments, audit)
	expenseService := services.NewExpenseService(txRunner, groups, expenses, audit)
	settlementService := services.NewSettlementService(txRunner, payments, groupService, audit, hub)

	handler := handlers.New(txRunner, cfg, users, audit, groupService, expenseService, settlementService, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("roomledger API listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
