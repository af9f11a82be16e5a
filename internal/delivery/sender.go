// Package delivery отвечает за передачу событий приемнику: подпись,
// HTTP-отправка с ограниченным таймаутом и dry-run вариант, пишущий
// события в локальный sink вместо сети.
package delivery

import (
	"context"

	"github.com/kazakovdmitriy/go-gameserver-agent/internal/model"
)

// Sender передает одно событие. false означает невозможность доставки
// прямо сейчас; постановка в очередь - ответственность вызывающего.
type Sender interface {
	Send(ctx context.Context, e model.Event) bool
}
