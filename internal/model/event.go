// Package model содержит типы событий агента и их каноническую
// JSON-сериализацию: одни и те же байты используются для подписи
// и для передачи.
package model

import (
	"encoding/json"
	"fmt"
)

// EventKind - вид события
type EventKind string

const (
	EventStarted      EventKind = "started"
	EventStopped      EventKind = "stopped"
	EventPlayerJoined EventKind = "player_joined"
	EventPlayerLeft   EventKind = "player_left"
	EventMetrics      EventKind = "metrics"
)

// MetricsSnapshot - одно измерение состояния хоста
type MetricsSnapshot struct {
	CPUPct    float64 `json:"cpu_pct"`
	MemPct    float64 `json:"mem_pct"`
	Load1     float64 `json:"load1"`
	Hostname  string  `json:"hostname"`
	AgentTime string  `json:"agent_time"`
}

// Event - неизменяемая запись о событии игрового сервера.
// Поля, специфичные для вида события, опускаются при сериализации,
// если не заполнены.
type Event struct {
	ServerID      string           `json:"server_id"`
	Event         EventKind        `json:"event"`
	TS            int64            `json:"ts"`
	Player        string           `json:"player,omitempty"`
	PlayersOnline *int             `json:"players_online,omitempty"`
	Metrics       *MetricsSnapshot `json:"metrics,omitempty"`
}

// MarshalCanonical возвращает канонические байты события: стабильный
// порядок полей, без лишних пробелов.
func (e Event) MarshalCanonical() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshaling event failed: %w", err)
	}
	return data, nil
}

// UnmarshalEvent разбирает каноническое представление события.
func UnmarshalEvent(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("unmarshaling event failed: %w", err)
	}
	return e, nil
}

// IntPtr - вспомогательная функция для опционального счетчика игроков.
func IntPtr(v int) *int {
	return &v
}
