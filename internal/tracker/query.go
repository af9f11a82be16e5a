package tracker

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kazakovdmitriy/go-gameserver-agent/internal/delivery"
	"github.com/kazakovdmitriy/go-gameserver-agent/internal/encoder"
	"github.com/kazakovdmitriy/go-gameserver-agent/internal/model"
)

// StatusClient возвращает текущий список имен игроков на сервере.
type StatusClient interface {
	Players(ctx context.Context) ([]string, error)
}

// MetricsSource - источник измерений хоста для решения "пора ли метрики".
type MetricsSource interface {
	Sample(ctx context.Context) (model.MetricsSnapshot, error)
}

// QueryTracker опрашивает статусный интерфейс сервера и вычисляет
// события входа/выхода как разности множеств имен между опросами.
// Отправка метрик встроена в тот же цикл: отдельный поток не нужен.
type QueryTracker struct {
	client  StatusClient
	pop     *Population
	emitter *delivery.Emitter
	encoder *encoder.Encoder
	sampler MetricsSource
	log     *zap.Logger

	pollInterval    time.Duration
	metricsInterval time.Duration

	known       map[string]struct{}
	lastMetrics time.Time
}

func NewQueryTracker(
	client StatusClient,
	pop *Population,
	emitter *delivery.Emitter,
	enc *encoder.Encoder,
	sampler MetricsSource,
	pollInterval, metricsInterval time.Duration,
	log *zap.Logger,
) *QueryTracker {
	return &QueryTracker{
		client:          client,
		pop:             pop,
		emitter:         emitter,
		encoder:         enc,
		sampler:         sampler,
		log:             log,
		pollInterval:    pollInterval,
		metricsInterval: metricsInterval,
		known:           make(map[string]struct{}),
	}
}

// Run опрашивает сервер до отмены контекста.
func (t *QueryTracker) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			t.poll(ctx)
		}
	}
}

// poll выполняет один цикл: diff состава и, отдельно, решение о метриках.
func (t *QueryTracker) poll(ctx context.Context) {
	names, err := t.client.Players(ctx)
	if err != nil {
		// Нет ответа не значит пустой состав: цикл пропускается целиком,
		// иначе краткий сбой сервера выглядел бы как массовый выход
		t.log.Debug("status query failed, keeping known roster", zap.Error(err))
	} else {
		t.applyRoster(ctx, names)
	}

	t.maybeEmitMetrics(ctx)
}

func (t *QueryTracker) applyRoster(ctx context.Context, names []string) {
	current := make(map[string]struct{}, len(names))
	for _, name := range names {
		current[name] = struct{}{}
	}

	arrived := sortedDiff(current, t.known)
	departed := sortedDiff(t.known, current)

	total := len(current)
	t.pop.Set(total)

	for _, name := range arrived {
		t.log.Info("player joined", zap.String("player", name), zap.Int("online", total))
		t.emitter.Emit(ctx, t.encoder.PlayerJoined(name, total))
	}
	for _, name := range departed {
		t.log.Info("player left", zap.String("player", name), zap.Int("online", total))
		t.emitter.Emit(ctx, t.encoder.PlayerLeft(name, total))
	}

	t.known = current
}

func (t *QueryTracker) maybeEmitMetrics(ctx context.Context) {
	online := t.pop.Count()
	if online <= 0 {
		return
	}
	if time.Since(t.lastMetrics) < t.metricsInterval {
		return
	}

	snap, err := t.sampler.Sample(ctx)
	if err != nil {
		t.log.Warn("metrics sample failed", zap.Error(err))
		return
	}

	t.lastMetrics = time.Now()
	t.emitter.Emit(ctx, t.encoder.Metrics(snap, online))
}

// sortedDiff возвращает элементы a, отсутствующие в b, в лексикографическом
// порядке: порядок событий воспроизводим для данного diff-а.
func sortedDiff(a, b map[string]struct{}) []string {
	var out []string
	for name := range a {
		if _, ok := b[name]; !ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
