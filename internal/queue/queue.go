// Package queue реализует крэш-устойчивую офлайн-очередь событий:
// каталог из небольших файлов, по одному на ожидающее событие,
// именованных монотонным ключом последовательности.
package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/kazakovdmitriy/go-gameserver-agent/internal/model"
)

const (
	entrySuffix   = ".json"
	stagingSuffix = ".tmp"
)

// Entry - событие, прочитанное из очереди.
type Entry struct {
	Path  string
	Event model.Event
}

// Queue - файловая FIFO-очередь. Ключи выдает строго монотонный
// внутрипроцессный счетчик, засеянный наибольшим ключом на диске:
// ключ из настенных часов может столкнуться при быстрых конкурентных
// Push. Писателей может быть несколько, читатель/удаляющий - один.
type Queue struct {
	dir string
	log *zap.Logger

	mu  sync.Mutex
	seq uint64
}

func New(dir string, log *zap.Logger) (*Queue, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating queue dir failed: %w", err)
	}

	q := &Queue{
		dir: dir,
		log: log,
	}

	names, err := q.list()
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if seq, ok := parseSeq(name); ok && seq > q.seq {
			q.seq = seq
		}
	}

	return q, nil
}

// Push сериализует событие и атомарно кладет его в очередь: запись
// во временный файл и переименование, чтобы читатель никогда не увидел
// частично записанный элемент.
func (q *Queue) Push(e model.Event) error {
	data, err := e.MarshalCanonical()
	if err != nil {
		return err
	}

	q.mu.Lock()
	q.seq++
	seq := q.seq
	q.mu.Unlock()

	path := filepath.Join(q.dir, fmt.Sprintf("%020d%s", seq, entrySuffix))
	staging := path + stagingSuffix

	if err := os.WriteFile(staging, data, 0o644); err != nil {
		return fmt.Errorf("writing queue entry failed: %w", err)
	}
	if err := os.Rename(staging, path); err != nil {
		return fmt.Errorf("committing queue entry failed: %w", err)
	}

	q.log.Debug("event queued", zap.String("path", path), zap.String("event", string(e.Event)))
	return nil
}

// PeekOldest возвращает элемент с наименьшим ключом или nil, если
// очередь пуста. Нечитаемый элемент удаляется, а не повторяется:
// иначе он навсегда заблокировал бы разбор очереди.
func (q *Queue) PeekOldest() (*Entry, error) {
	names, err := q.list()
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, nil
	}

	path := filepath.Join(q.dir, names[0])
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading queue entry failed: %w", err)
	}

	var e model.Event
	if err := json.Unmarshal(data, &e); err != nil {
		// Принятая потеря данных: поврежденный элемент отбрасывается
		q.log.Warn("dropping corrupt queue entry",
			zap.String("path", path),
			zap.Error(err),
		)
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			q.log.Warn("failed to remove corrupt entry", zap.String("path", path), zap.Error(err))
		}
		return nil, nil
	}

	return &Entry{Path: path, Event: e}, nil
}

// Delete удаляет обработанный элемент; отсутствие файла не ошибка.
func (q *Queue) Delete(e *Entry) error {
	if e == nil {
		return nil
	}
	if err := os.Remove(e.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting queue entry failed: %w", err)
	}
	return nil
}

// Len возвращает число ожидающих элементов.
func (q *Queue) Len() (int, error) {
	names, err := q.list()
	if err != nil {
		return 0, err
	}
	return len(names), nil
}

// list возвращает имена элементов в порядке ключей. Имена имеют
// фиксированную ширину, поэтому лексикографический порядок каталога
// совпадает с числовым.
func (q *Queue) list() ([]string, error) {
	dirEntries, err := os.ReadDir(q.dir)
	if err != nil {
		return nil, fmt.Errorf("listing queue dir failed: %w", err)
	}

	names := make([]string, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), entrySuffix) {
			continue
		}
		names = append(names, de.Name())
	}
	return names, nil
}

func parseSeq(name string) (uint64, bool) {
	seq, err := strconv.ParseUint(strings.TrimSuffix(name, entrySuffix), 10, 64)
	if err != nil {
		return 0, false
	}
	return seq, true
}
