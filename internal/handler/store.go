// Package handler содержит HTTP-приемник событий для тестирования
// агента без боевого endpoint-а: проверка подписи, журналирование
// и накопление принятых событий в памяти.
package handler

import (
	"sync"

	"github.com/kazakovdmitriy/go-gameserver-agent/internal/model"
)

// EventStore накапливает принятые события в памяти.
type EventStore struct {
	mu     sync.Mutex
	events []model.Event
}

func NewEventStore() *EventStore {
	return &EventStore{}
}

func (s *EventStore) Add(e model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

// Events возвращает копию принятых событий в порядке приема.
func (s *EventStore) Events() []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *EventStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}
