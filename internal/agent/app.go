// Package agent связывает компоненты агента в работающее приложение:
// трекер присутствия, цикл метрик, фоновый разбор очереди
// и координацию остановки.
package agent

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kazakovdmitriy/go-gameserver-agent/internal/config"
	"github.com/kazakovdmitriy/go-gameserver-agent/internal/delivery"
	"github.com/kazakovdmitriy/go-gameserver-agent/internal/drain"
	"github.com/kazakovdmitriy/go-gameserver-agent/internal/encoder"
	"github.com/kazakovdmitriy/go-gameserver-agent/internal/mcquery"
	"github.com/kazakovdmitriy/go-gameserver-agent/internal/queue"
	"github.com/kazakovdmitriy/go-gameserver-agent/internal/sampler"
	"github.com/kazakovdmitriy/go-gameserver-agent/internal/tracker"
)

const (
	// Период проверки "пора ли метрики" в лог-стратегии
	metricsPoll = 200 * time.Millisecond

	// Ограниченное окно на дослив очереди после финального события
	defaultGracePeriod = 500 * time.Millisecond
)

// runner - один supervised-цикл агента.
type runner interface {
	Run(ctx context.Context) error
}

// App представляет основное приложение агента
type App struct {
	cfg *config.AgentFlags
	log *zap.Logger

	queue   *queue.Queue
	emitter *delivery.Emitter
	encoder *encoder.Encoder
	sampler *sampler.Sampler
	pop     *tracker.Population
	tracker runner
	drain   *drain.Loop

	gracePeriod time.Duration
	closers     []io.Closer
}

// NewApp создает и настраивает все компоненты приложения.
func NewApp(cfg *config.AgentFlags, log *zap.Logger) (*App, error) {
	a := &App{
		cfg:         cfg,
		log:         log,
		gracePeriod: defaultGracePeriod,
	}

	q, err := queue.New(cfg.QueueDir, log)
	if err != nil {
		return nil, fmt.Errorf("queue initialization failed: %w", err)
	}
	a.queue = q

	sender, err := a.buildSender()
	if err != nil {
		return nil, err
	}

	a.encoder = encoder.New(cfg.ServerID)
	a.emitter = delivery.NewEmitter(sender, q, log)
	a.sampler = sampler.New(log)
	a.pop = tracker.NewPopulation()
	a.drain = drain.New(q, sender, log)

	if err := a.buildTracker(); err != nil {
		return nil, err
	}

	return a, nil
}

func (a *App) buildSender() (delivery.Sender, error) {
	if !a.cfg.DryRun {
		return delivery.NewClient(a.cfg.IngestURL, a.cfg.AgentKey, a.log), nil
	}

	var sink delivery.Sink
	if a.cfg.SinkPath != "" {
		fileSink, err := delivery.NewFileSink(a.cfg.SinkPath, a.log)
		if err != nil {
			return nil, fmt.Errorf("sink initialization failed: %w", err)
		}
		a.closers = append(a.closers, fileSink)
		sink = fileSink
	} else {
		sink = delivery.NewLogSink(a.log)
	}

	a.log.Info("dry-run mode: events are recorded locally")
	return delivery.NewDrySender(sink), nil
}

func (a *App) buildTracker() error {
	switch a.cfg.Tracker {
	case config.TrackerLog:
		a.tracker = tracker.NewLogTracker(a.cfg.LogPath, a.pop, a.emitter, a.encoder, a.log)
	case config.TrackerQuery:
		a.tracker = tracker.NewQueryTracker(
			mcquery.NewClient(a.cfg.QueryAddr),
			a.pop,
			a.emitter,
			a.encoder,
			a.sampler,
			time.Duration(a.cfg.QueryInterval)*time.Second,
			time.Duration(a.cfg.MetricInterval)*time.Second,
			a.log,
		)
	default:
		return fmt.Errorf("unknown tracker strategy: %q", a.cfg.Tracker)
	}
	return nil
}

// Run запускает агента и блокируется до сигнала остановки.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.log.Info("agent starting",
		zap.String("server_id", a.cfg.ServerID),
		zap.String("tracker", a.cfg.Tracker),
		zap.Int("metric_interval", a.cfg.MetricInterval),
		zap.Bool("dry_run", a.cfg.DryRun),
	)

	// Базовое чтение CPU: первое измерение в жизни процесса отбрасывается
	a.sampler.Prime(ctx)

	a.emitter.Emit(ctx, a.encoder.ServerStarted())

	// Drain живет на собственном контексте: после финального события
	// ему дается grace-период на дослив, уже когда остальные циклы
	// остановлены
	drainCtx, drainCancel := context.WithCancel(context.Background())
	defer drainCancel()

	var drainGroup errgroup.Group
	drainGroup.Go(func() error {
		return a.drain.Run(drainCtx)
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.tracker.Run(gctx)
	})
	if a.cfg.Tracker == config.TrackerLog {
		g.Go(func() error {
			return a.metricsLoop(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		a.log.Error("agent loop failed", zap.Error(err))
	}

	a.log.Info("shutdown requested, emitting final event")
	a.emitter.Emit(context.Background(), a.encoder.ServerStopped())

	// Best-effort: дослив может не успеть, и это нормально
	graceTimer := time.NewTimer(a.gracePeriod)
	defer graceTimer.Stop()
	<-graceTimer.C

	drainCancel()
	if err := drainGroup.Wait(); err != nil {
		a.log.Warn("drain loop stopped with error", zap.Error(err))
	}

	a.close()
	a.log.Info("agent stopped")
	return nil
}

// metricsLoop отправляет метрики хоста, пока на сервере есть игроки.
// Нужен только лог-стратегии: опросная складывает метрики в свой цикл.
func (a *App) metricsLoop(ctx context.Context) error {
	interval := time.Duration(a.cfg.MetricInterval) * time.Second
	ticker := time.NewTicker(metricsPoll)
	defer ticker.Stop()

	var last time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		online := a.pop.Count()
		if online <= 0 {
			// При возвращении игроков метрики уходят сразу
			last = time.Time{}
			continue
		}
		if !last.IsZero() && time.Since(last) < interval {
			continue
		}

		snap, err := a.sampler.Sample(ctx)
		if err != nil {
			a.log.Warn("metrics sample failed", zap.Error(err))
			continue
		}
		last = time.Now()
		a.emitter.Emit(ctx, a.encoder.Metrics(snap, online))
	}
}

func (a *App) close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.log.Error("resource close failed", zap.Error(err))
		}
	}
}
