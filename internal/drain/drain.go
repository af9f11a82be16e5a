// Package drain содержит фоновый цикл повторной доставки: он по одному
// забирает старейшие элементы очереди и пытается отправить их снова
// с адаптивной задержкой.
package drain

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kazakovdmitriy/go-gameserver-agent/internal/delivery"
	"github.com/kazakovdmitriy/go-gameserver-agent/internal/queue"
)

// Пустая очередь перепроверяется реже, чем повторяется сбойный
// endpoint, поэтому пределы различаются.
const (
	defaultInitialDelay = 2 * time.Second
	defaultResetDelay   = 1 * time.Second
	defaultIdleCap      = 30 * time.Second
	defaultFailCap      = 10 * time.Second
)

type Loop struct {
	queue  *queue.Queue
	sender delivery.Sender
	log    *zap.Logger

	initialDelay time.Duration
	resetDelay   time.Duration
	idleCap      time.Duration
	failCap      time.Duration
}

func New(q *queue.Queue, sender delivery.Sender, log *zap.Logger) *Loop {
	return &Loop{
		queue:        q,
		sender:       sender,
		log:          log,
		initialDelay: defaultInitialDelay,
		resetDelay:   defaultResetDelay,
		idleCap:      defaultIdleCap,
		failCap:      defaultFailCap,
	}
}

// NewWithDelays создает цикл с явными задержками.
func NewWithDelays(
	q *queue.Queue,
	sender delivery.Sender,
	log *zap.Logger,
	initial, reset, idleCap, failCap time.Duration,
) *Loop {
	return &Loop{
		queue:        q,
		sender:       sender,
		log:          log,
		initialDelay: initial,
		resetDelay:   reset,
		idleCap:      idleCap,
		failCap:      failCap,
	}
}

// Run работает до отмены контекста. Сон прерываем: отмена наблюдается
// не позже одного текущего интервала.
func (l *Loop) Run(ctx context.Context) error {
	delay := l.initialDelay
	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		delay = l.step(ctx, delay)
		timer.Reset(delay)
	}
}

// step выполняет один проход и возвращает следующую задержку:
// пусто - рост к idleCap; успех - удаление и сброс к минимуму,
// пока может оставаться backlog; неудача - рост к failCap.
func (l *Loop) step(ctx context.Context, delay time.Duration) time.Duration {
	entry, err := l.queue.PeekOldest()
	if err != nil {
		l.log.Warn("queue read failed", zap.Error(err))
		return capDelay(delay*2, l.idleCap)
	}
	if entry == nil {
		return capDelay(delay*2, l.idleCap)
	}

	if !l.sender.Send(ctx, entry.Event) {
		return capDelay(delay*2, l.failCap)
	}

	if err := l.queue.Delete(entry); err != nil {
		l.log.Warn("failed to delete delivered entry", zap.Error(err))
	}
	l.log.Info("queued event delivered",
		zap.String("event", string(entry.Event.Event)),
		zap.String("path", entry.Path),
	)
	return l.resetDelay
}

func capDelay(d, limit time.Duration) time.Duration {
	if d > limit {
		return limit
	}
	return d
}
