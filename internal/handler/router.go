package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kazakovdmitriy/go-gameserver-agent/internal/handler/middlewares"
	"github.com/kazakovdmitriy/go-gameserver-agent/internal/signer"
)

// SetupHandler собирает маршруты приемника. Подписант nil отключает
// проверку подписи (удобно в локальных прогонах).
func SetupHandler(store *EventStore, s *signer.HMACSigner, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.ResponseLogger(log))

	ingestHandler := NewIngestHandler(store, log)

	r.Route("/api", func(r chi.Router) {
		r.With(middlewares.SignatureValidation(s)).Post("/ingest", ingestHandler.Ingest)
	})

	return r
}
