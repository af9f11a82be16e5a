package tracker

import (
	"bufio"
	"context"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/kazakovdmitriy/go-gameserver-agent/internal/delivery"
	"github.com/kazakovdmitriy/go-gameserver-agent/internal/encoder"
	"github.com/kazakovdmitriy/go-gameserver-agent/internal/model"
)

const (
	defaultTailPoll  = 200 * time.Millisecond
	defaultTailRetry = 500 * time.Millisecond
)

// LogTracker следит за растущим логом игрового сервера с учетом
// ротации: усечение файла (размер меньше смещения чтения) возобновляет
// чтение с нуля, смена identity файла по пути переоткрывает его
// с конца. История никогда не перечитывается.
type LogTracker struct {
	path     string
	pop      *Population
	emitter  *delivery.Emitter
	encoder  *encoder.Encoder
	matchers []lineMatcher
	log      *zap.Logger

	pollInterval  time.Duration
	retryInterval time.Duration
}

func NewLogTracker(
	path string,
	pop *Population,
	emitter *delivery.Emitter,
	enc *encoder.Encoder,
	log *zap.Logger,
) *LogTracker {
	return &LogTracker{
		path:          path,
		pop:           pop,
		emitter:       emitter,
		encoder:       enc,
		matchers:      defaultMatchers,
		log:           log,
		pollInterval:  defaultTailPoll,
		retryInterval: defaultTailRetry,
	}
}

// Run читает лог до отмены контекста. Пропавший файл и ошибки чтения
// не фатальны: короткая пауза и новая попытка.
func (t *LogTracker) Run(ctx context.Context) error {
	var (
		file    *os.File
		reader  *bufio.Reader
		opened  os.FileInfo
		offset  int64
		pending []byte
	)
	defer func() {
		if file != nil {
			file.Close()
		}
	}()

	for ctx.Err() == nil {
		st, err := os.Stat(t.path)
		if err != nil {
			if !sleepCtx(ctx, t.retryInterval) {
				return nil
			}
			continue
		}

		if file == nil || !os.SameFile(opened, st) {
			if file != nil {
				file.Close()
				t.log.Info("log file identity changed, reopening", zap.String("path", t.path))
			}
			file, err = os.Open(t.path)
			if err != nil {
				if !sleepCtx(ctx, t.retryInterval) {
					return nil
				}
				continue
			}
			opened, err = file.Stat()
			if err != nil {
				file.Close()
				file = nil
				if !sleepCtx(ctx, t.retryInterval) {
					return nil
				}
				continue
			}
			// При открытии прыгаем в конец: историю не проигрываем
			offset, _ = file.Seek(0, io.SeekEnd)
			reader = bufio.NewReader(file)
			pending = pending[:0]
		}

		chunk, err := reader.ReadString('\n')
		offset += int64(len(chunk))
		if err != nil {
			// Неполная строка копится до прихода перевода строки
			pending = append(pending, chunk...)

			cur, statErr := os.Stat(t.path)
			if statErr == nil && cur.Size() < offset {
				// Файл усечен (ротация на месте): читаем с начала
				if _, seekErr := file.Seek(0, io.SeekStart); seekErr == nil {
					t.log.Info("log file truncated, resuming from start", zap.String("path", t.path))
					offset = 0
					reader.Reset(file)
					pending = pending[:0]
					continue
				}
			}
			if !sleepCtx(ctx, t.pollInterval) {
				return nil
			}
			continue
		}

		line := string(pending) + chunk
		pending = pending[:0]
		t.handleLine(ctx, line)
	}

	return nil
}

func (t *LogTracker) handleLine(ctx context.Context, line string) {
	kind, name, ok := matchLine(t.matchers, line)
	if !ok {
		return
	}

	switch kind {
	case model.EventPlayerJoined:
		online := t.pop.Inc()
		t.log.Info("player joined", zap.String("player", name), zap.Int("online", online))
		t.emitter.Emit(ctx, t.encoder.PlayerJoined(name, online))
	case model.EventPlayerLeft:
		online := t.pop.Dec()
		t.log.Info("player left", zap.String("player", name), zap.Int("online", online))
		t.emitter.Emit(ctx, t.encoder.PlayerLeft(name, online))
	}
}

// sleepCtx - прерываемая пауза; false означает отмену контекста.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
