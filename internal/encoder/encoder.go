// Package encoder собирает канонические записи событий: идентичность
// сервера и метка времени добавляются к полям конкретного вида события.
package encoder

import (
	"time"

	"github.com/kazakovdmitriy/go-gameserver-agent/internal/model"
)

// Encoder привязан к идентичности сервера; часы инжектируются для тестов.
type Encoder struct {
	serverID string
	now      func() time.Time
}

func New(serverID string) *Encoder {
	return &Encoder{
		serverID: serverID,
		now:      time.Now,
	}
}

// NewWithClock создает энкодер с явными часами.
func NewWithClock(serverID string, now func() time.Time) *Encoder {
	return &Encoder{
		serverID: serverID,
		now:      now,
	}
}

func (e *Encoder) base(kind model.EventKind) model.Event {
	return model.Event{
		ServerID: e.serverID,
		Event:    kind,
		TS:       e.now().Unix(),
	}
}

func (e *Encoder) ServerStarted() model.Event {
	return e.base(model.EventStarted)
}

func (e *Encoder) ServerStopped() model.Event {
	return e.base(model.EventStopped)
}

func (e *Encoder) PlayerJoined(name string, online int) model.Event {
	ev := e.base(model.EventPlayerJoined)
	ev.Player = name
	ev.PlayersOnline = model.IntPtr(online)
	return ev
}

func (e *Encoder) PlayerLeft(name string, online int) model.Event {
	ev := e.base(model.EventPlayerLeft)
	ev.Player = name
	ev.PlayersOnline = model.IntPtr(online)
	return ev
}

func (e *Encoder) Metrics(snap model.MetricsSnapshot, online int) model.Event {
	ev := e.base(model.EventMetrics)
	ev.Metrics = &snap
	ev.PlayersOnline = model.IntPtr(online)
	return ev
}
