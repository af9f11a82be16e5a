package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/kazakovdmitriy/go-gameserver-agent/internal/delivery"
	"github.com/kazakovdmitriy/go-gameserver-agent/internal/encoder"
	"github.com/kazakovdmitriy/go-gameserver-agent/internal/model"
	"github.com/kazakovdmitriy/go-gameserver-agent/internal/queue"
)

// fakeStatus отдает заготовленные составы по одному на опрос.
type fakeStatus struct {
	rosters []func() ([]string, error)
	calls   int
}

func (f *fakeStatus) Players(_ context.Context) ([]string, error) {
	if f.calls >= len(f.rosters) {
		return nil, errors.New("no more rosters")
	}
	roster := f.rosters[f.calls]
	f.calls++
	return roster()
}

func roster(names ...string) func() ([]string, error) {
	return func() ([]string, error) { return names, nil }
}

func failedPoll() func() ([]string, error) {
	return func() ([]string, error) { return nil, errors.New("no response") }
}

// fakeSampler отдает фиксированное измерение.
type fakeSampler struct {
	snap  model.MetricsSnapshot
	calls int
}

func (f *fakeSampler) Sample(_ context.Context) (model.MetricsSnapshot, error) {
	f.calls++
	return f.snap, nil
}

func newQueryFixture(t *testing.T, status StatusClient, metricsInterval time.Duration) (*QueryTracker, *captureSender, *Population) {
	t.Helper()

	log := zaptest.NewLogger(t)
	q, err := queue.New(t.TempDir(), log)
	require.NoError(t, err)

	capture := &captureSender{}
	pop := NewPopulation()
	enc := encoder.NewWithClock("beelink-01", func() time.Time {
		return time.Unix(1700000000, 0)
	})

	tracker := NewQueryTracker(
		status,
		pop,
		delivery.NewEmitter(capture, q, log),
		enc,
		&fakeSampler{snap: model.MetricsSnapshot{Hostname: "beelink"}},
		time.Second,
		metricsInterval,
		log,
	)
	return tracker, capture, pop
}

func TestQueryTracker_DiffsRosters(t *testing.T) {
	status := &fakeStatus{rosters: []func() ([]string, error){
		roster("A", "B"),
		roster("B", "C"),
	}}
	tracker, capture, pop := newQueryFixture(t, status, time.Hour)
	tracker.lastMetrics = time.Now()

	ctx := context.Background()
	tracker.poll(ctx)

	// Первый опрос: оба игрока новые
	events := capture.list()
	require.Len(t, events, 2)
	assert.Equal(t, model.EventPlayerJoined, events[0].Event)
	assert.Equal(t, "A", events[0].Player)
	assert.Equal(t, "B", events[1].Player)
	assert.Equal(t, 2, pop.Count())

	tracker.poll(ctx)

	// known={A,B}, current={B,C}: ровно один join C и один leave A
	events = capture.list()
	require.Len(t, events, 4)
	assert.Equal(t, model.EventPlayerJoined, events[2].Event)
	assert.Equal(t, "C", events[2].Player)
	require.NotNil(t, events[2].PlayersOnline)
	assert.Equal(t, 2, *events[2].PlayersOnline)
	assert.Equal(t, model.EventPlayerLeft, events[3].Event)
	assert.Equal(t, "A", events[3].Player)
	require.NotNil(t, events[3].PlayersOnline)
	assert.Equal(t, 2, *events[3].PlayersOnline)

	assert.Equal(t, 2, pop.Count())
	assert.Equal(t, map[string]struct{}{"B": {}, "C": {}}, tracker.known)
}

func TestQueryTracker_EmitsInLexicographicOrder(t *testing.T) {
	status := &fakeStatus{rosters: []func() ([]string, error){
		roster("zeta", "alpha", "mike"),
	}}
	tracker, capture, _ := newQueryFixture(t, status, time.Hour)
	tracker.lastMetrics = time.Now()

	tracker.poll(context.Background())

	events := capture.list()
	require.Len(t, events, 3)
	assert.Equal(t, "alpha", events[0].Player)
	assert.Equal(t, "mike", events[1].Player)
	assert.Equal(t, "zeta", events[2].Player)
}

func TestQueryTracker_FailedPollLeavesKnownUnchanged(t *testing.T) {
	status := &fakeStatus{rosters: []func() ([]string, error){
		roster("A", "B"),
		failedPoll(),
		roster("A", "B"),
	}}
	tracker, capture, pop := newQueryFixture(t, status, time.Hour)
	tracker.lastMetrics = time.Now()

	ctx := context.Background()
	tracker.poll(ctx)
	require.Equal(t, 2, capture.count())

	// Сбой опроса не выглядит как массовый выход: ноль событий
	tracker.poll(ctx)
	assert.Equal(t, 2, capture.count())
	assert.Equal(t, 2, pop.Count())
	assert.Equal(t, map[string]struct{}{"A": {}, "B": {}}, tracker.known)

	// Восстановление без ложных повторных join-ов
	tracker.poll(ctx)
	assert.Equal(t, 2, capture.count())
}

func TestQueryTracker_MetricsShareThePollLoop(t *testing.T) {
	status := &fakeStatus{rosters: []func() ([]string, error){
		roster("A"),
		roster("A"),
	}}
	tracker, capture, _ := newQueryFixture(t, status, time.Hour)

	ctx := context.Background()
	tracker.poll(ctx)

	// Первый цикл с игроками онлайн отправляет метрики сразу
	events := capture.list()
	require.Len(t, events, 2)
	assert.Equal(t, model.EventMetrics, events[1].Event)
	require.NotNil(t, events[1].Metrics)
	assert.Equal(t, "beelink", events[1].Metrics.Hostname)
	require.NotNil(t, events[1].PlayersOnline)
	assert.Equal(t, 1, *events[1].PlayersOnline)

	// Интервал не истек: второй цикл метрик не отправляет
	tracker.poll(ctx)
	assert.Equal(t, 2, capture.count())
}

func TestQueryTracker_NoMetricsWhenEmpty(t *testing.T) {
	status := &fakeStatus{rosters: []func() ([]string, error){
		roster(),
		roster(),
	}}
	tracker, capture, _ := newQueryFixture(t, status, time.Nanosecond)

	ctx := context.Background()
	tracker.poll(ctx)
	tracker.poll(ctx)

	assert.Equal(t, 0, capture.count())
}
