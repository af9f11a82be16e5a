package queue

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/kazakovdmitriy/go-gameserver-agent/internal/model"
)

func newTestQueue(t *testing.T) *Queue {
	t.Helper()
	q, err := New(t.TempDir(), zaptest.NewLogger(t))
	require.NoError(t, err)
	return q
}

func testEvent(kind model.EventKind, ts int64) model.Event {
	return model.Event{
		ServerID: "beelink-01",
		Event:    kind,
		TS:       ts,
	}
}

func TestQueue_PushPeekRoundTrip(t *testing.T) {
	q := newTestQueue(t)

	original := model.Event{
		ServerID:      "beelink-01",
		Event:         model.EventPlayerJoined,
		TS:            1700000000,
		Player:        "Steve",
		PlayersOnline: model.IntPtr(1),
	}
	require.NoError(t, q.Push(original))

	entry, err := q.PeekOldest()
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, original, entry.Event)
}

func TestQueue_PeekOldestReturnsSmallestKey(t *testing.T) {
	q := newTestQueue(t)

	require.NoError(t, q.Push(testEvent(model.EventStarted, 1)))
	require.NoError(t, q.Push(testEvent(model.EventPlayerJoined, 2)))
	require.NoError(t, q.Push(testEvent(model.EventPlayerLeft, 3)))

	entry, err := q.PeekOldest()
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, model.EventStarted, entry.Event.Event)

	// Порядок сохраняется после удаления головы
	require.NoError(t, q.Delete(entry))
	entry, err = q.PeekOldest()
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, model.EventPlayerJoined, entry.Event.Event)
}

func TestQueue_EmptyPeek(t *testing.T) {
	q := newTestQueue(t)

	entry, err := q.PeekOldest()
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestQueue_DeleteIsIdempotent(t *testing.T) {
	q := newTestQueue(t)
	require.NoError(t, q.Push(testEvent(model.EventStarted, 1)))

	entry, err := q.PeekOldest()
	require.NoError(t, err)
	require.NotNil(t, entry)

	require.NoError(t, q.Delete(entry))
	require.NoError(t, q.Delete(entry))
	require.NoError(t, q.Delete(nil))
}

func TestQueue_CorruptEntryIsDropped(t *testing.T) {
	dir := t.TempDir()
	q, err := New(dir, zaptest.NewLogger(t))
	require.NoError(t, err)

	corrupt := filepath.Join(dir, fmt.Sprintf("%020d.json", 1))
	require.NoError(t, os.WriteFile(corrupt, []byte("{half written"), 0o644))
	require.NoError(t, q.Push(testEvent(model.EventStopped, 2)))

	// Первый вызов отбрасывает отравленный элемент, не возвращая его
	entry, err := q.PeekOldest()
	require.NoError(t, err)
	assert.Nil(t, entry)
	assert.NoFileExists(t, corrupt)

	// Следующий вызов видит живой элемент за ним
	entry, err = q.PeekOldest()
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, model.EventStopped, entry.Event.Event)
}

func TestQueue_NoStagingVisibleAsEntry(t *testing.T) {
	dir := t.TempDir()
	q, err := New(dir, zaptest.NewLogger(t))
	require.NoError(t, err)

	staging := filepath.Join(dir, fmt.Sprintf("%020d.json%s", 5, stagingSuffix))
	require.NoError(t, os.WriteFile(staging, []byte("partial"), 0o644))

	entry, err := q.PeekOldest()
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestQueue_ConcurrentPushesNeverCollide(t *testing.T) {
	q := newTestQueue(t)

	const pushers = 8
	const perPusher = 25

	var wg sync.WaitGroup
	for i := 0; i < pushers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perPusher; j++ {
				assert.NoError(t, q.Push(testEvent(model.EventPlayerJoined, int64(id*1000+j))))
			}
		}(i)
	}
	wg.Wait()

	n, err := q.Len()
	require.NoError(t, err)
	assert.Equal(t, pushers*perPusher, n)
}

func TestQueue_SequenceResumesAfterReopen(t *testing.T) {
	dir := t.TempDir()
	log := zaptest.NewLogger(t)

	q1, err := New(dir, log)
	require.NoError(t, err)
	require.NoError(t, q1.Push(testEvent(model.EventStarted, 1)))
	require.NoError(t, q1.Push(testEvent(model.EventPlayerJoined, 2)))

	// Новый процесс продолжает нумерацию, не перезаписывая старые элементы
	q2, err := New(dir, log)
	require.NoError(t, err)
	require.NoError(t, q2.Push(testEvent(model.EventStopped, 3)))

	n, err := q2.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	entry, err := q2.PeekOldest()
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, model.EventStarted, entry.Event.Event)
}
