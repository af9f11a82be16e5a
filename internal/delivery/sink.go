package delivery

import (
	"context"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/kazakovdmitriy/go-gameserver-agent/internal/model"
)

// Sink - локальный приемник наблюдения для dry-run режима.
type Sink interface {
	Observe(e model.Event)
}

// DrySender всегда успешен: записывает событие в sink вместо передачи
// по сети. Используется для тестирования без живого endpoint-а.
type DrySender struct {
	sink Sink
}

func NewDrySender(sink Sink) *DrySender {
	return &DrySender{sink: sink}
}

func (d *DrySender) Send(_ context.Context, e model.Event) bool {
	d.sink.Observe(e)
	return true
}

// FileSink пишет события JSON-строками в файл наблюдения.
type FileSink struct {
	file     *os.File
	filePath string
	log      *zap.Logger
	mu       sync.Mutex
}

func NewFileSink(filePath string, log *zap.Logger) (*FileSink, error) {
	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return &FileSink{
		file:     file,
		filePath: filePath,
		log:      log,
	}, nil
}

func (f *FileSink) Observe(e model.Event) {
	data, err := e.MarshalCanonical()
	if err != nil {
		f.log.Error("error marshaling event", zap.Error(err))
		return
	}
	data = append(data, '\n')

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.file.Write(data); err != nil {
		f.log.Error("error writing to file", zap.Error(err))
		return
	}

	f.log.Debug("event observed", zap.String("event", string(e.Event)))
}

// Close закрывает файл при завершении работы
func (f *FileSink) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return nil
	}

	if err := f.file.Sync(); err != nil {
		f.log.Warn("sync failed on close", zap.Error(err))
	}

	if err := f.file.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}

	f.file = nil
	f.log.Info("file sink closed", zap.String("path", f.filePath))
	return nil
}

// LogSink выводит события в журнал агента.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

func (l *LogSink) Observe(e model.Event) {
	data, err := e.MarshalCanonical()
	if err != nil {
		l.log.Error("error marshaling event", zap.Error(err))
		return
	}
	l.log.Info("dry-run event", zap.ByteString("payload", data))
}
