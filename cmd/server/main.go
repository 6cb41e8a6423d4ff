package main

import (
	"context"
	"delivery-dispatch-service/internal/adapters/events"
	"delivery-dispatch-service/internal/api"
	"delivery-dispatch-service/internal/api/handlers"
	"delivery-dispatch-service/internal/config"
	"delivery-dispatch-service/internal/platform/storage"
	"delivery-dispatch-service/internal/ports"
	"delivery-dispatch-service/internal/services"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
)

// main is the application composition root.
// It wires the selected store and event publisher behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer stores.Close()
	log.Printf("storage ready backend=%s", stores.Backend)

	var publisher ports.BatchEventPublisher = events.LogPublisher{}
	if cfg.Events.AMQPURL != "" {
		amqpPublisher, err := events.DialAMQP(cfg.Events.AMQPURL, cfg.Events.Exchange)
		if err != nil {
			log.Fatal(err)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
		log.Printf("events ready exchange=%s", cfg.Events.Exchange)
	}

	dispatcher := services.NewDispatcher(stores.Drivers, stores.Assignments, publisher)
	router := api.NewRouter(dispatcher, api.RouterConfig{
		Service: cfg.Service,
		Limits: handlers.Limits{
			MaxDrivers: cfg.Limits.MaxDrivers,
			MaxOrders:  cfg.Limits.MaxOrders,
		},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown failed: %v", err)
		}
	}()

	log.Printf("Server listening addr=:%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	log.Println("Server stopped")
}
