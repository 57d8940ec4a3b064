package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slack-review-relay/internal/api"
	"slack-review-relay/internal/config"
	"slack-review-relay/internal/listener"
	"slack-review-relay/internal/notify"
	"slack-review-relay/internal/review"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	gateway := notify.NewSlackGateway(cfg.BotToken, cfg.DefaultChannelID, cfg.SlackAPIURL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := gateway.Ping(ctx); err != nil {
		log.Fatalf("slack auth: %v", err)
	}

	broker := review.NewBroker(gateway)
	replies := listener.New(cfg.ListenerTrigger, cfg.ListenerReply, gateway, gateway.BotUserID)

	h := api.NewHandler(cfg, broker, gateway, replies)
	router := api.NewRouter(h)

	// No WriteTimeout: /display_reviews holds its response until a human decides.
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("relay listening on :%s channel=%s", cfg.HTTPPort, cfg.DefaultChannelID)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
