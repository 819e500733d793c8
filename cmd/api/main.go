package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Reese0301/careerinfinance/internal/auth"
	"github.com/Reese0301/careerinfinance/internal/config"
	"github.com/Reese0301/careerinfinance/internal/handler"
	"github.com/Reese0301/careerinfinance/internal/service/advisor"
	"github.com/Reese0301/careerinfinance/internal/service/chat"
	"github.com/Reese0301/careerinfinance/internal/service/prediction"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	for _, warning := range cfg.Warnings() {
		log.Printf("warning: %s", warning)
	}

	advisorService, err := advisor.NewService(ctx, prediction.NewClient(nil), cfg.Advisor)
	if err != nil {
		log.Fatalf("failed to initialize advisor service: %v", err)
	}
	chatService := chat.NewService(cfg.Advisor.Welcome)
	gate := auth.NewGate(cfg.Auth)

	router := handler.NewRouter(chatService, advisorService, gate)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("careerinfinance advisor listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
