package delivery

import (
	"context"

	"go.uber.org/zap"

	"github.com/kazakovdmitriy/go-gameserver-agent/internal/model"
	"github.com/kazakovdmitriy/go-gameserver-agent/internal/queue"
)

// Emitter реализует контракт "хотя бы раз": немедленная попытка
// доставки, при неудаче - постановка в устойчивую очередь.
type Emitter struct {
	sender Sender
	queue  *queue.Queue
	log    *zap.Logger
}

func NewEmitter(sender Sender, q *queue.Queue, log *zap.Logger) *Emitter {
	return &Emitter{
		sender: sender,
		queue:  q,
		log:    log,
	}
}

// Emit отправляет событие или ставит его в очередь.
func (em *Emitter) Emit(ctx context.Context, e model.Event) {
	if em.sender.Send(ctx, e) {
		return
	}
	if err := em.queue.Push(e); err != nil {
		// Событие потеряно: ни доставить, ни сохранить не удалось
		em.log.Error("failed to queue undelivered event",
			zap.String("event", string(e.Event)),
			zap.Error(err),
		)
	}
}
