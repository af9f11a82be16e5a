package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/kazakovdmitriy/go-gameserver-agent/internal/model"
)

// IngestHandler принимает подписанные события агента.
type IngestHandler struct {
	store *EventStore
	log   *zap.Logger
}

func NewIngestHandler(store *EventStore, log *zap.Logger) *IngestHandler {
	return &IngestHandler{
		store: store,
		log:   log,
	}
}

// Ingest обрабатывает POST /api/ingest: разбирает тело события,
// сохраняет его и отвечает {"ok": true}.
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.log.Error("failed to read request body", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	event, err := model.UnmarshalEvent(body)
	if err != nil {
		h.log.Warn("rejecting malformed event", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	h.store.Add(event)
	h.log.Info("event ingested",
		zap.String("server_id", event.ServerID),
		zap.String("event", string(event.Event)),
		zap.Int64("ts", event.TS),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]bool{"ok": true}); err != nil {
		h.log.Error("failed to write response", zap.Error(err))
	}
}
