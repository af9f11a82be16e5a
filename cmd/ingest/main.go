// Тестовый приемник событий: принимает подписанные запросы агента,
// печатает их в журнал и копит в памяти. Живой endpoint для отладки
// без боевой инфраструктуры.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kazakovdmitriy/go-gameserver-agent/internal/config"
	"github.com/kazakovdmitriy/go-gameserver-agent/internal/handler"
	"github.com/kazakovdmitriy/go-gameserver-agent/internal/logger"
	"github.com/kazakovdmitriy/go-gameserver-agent/internal/signer"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.ParseIngestConfig()

	log, err := logger.Initialize(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	var s *signer.HMACSigner
	if cfg.AgentKey != "" {
		s = signer.NewHMACSigner(cfg.AgentKey)
	} else {
		log.Warn("no signing secret configured, accepting unsigned requests")
	}

	store := handler.NewEventStore()
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: handler.SetupHandler(store, s, log),
	}

	go func() {
		log.Info("ingest receiver starting", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed to start", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("graceful shutdown initiated", zap.Int("events_received", store.Len()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}

	return nil
}
