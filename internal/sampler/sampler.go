// Package sampler собирает метрики хоста через gopsutil.
package sampler

import (
	"context"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	"github.com/kazakovdmitriy/go-gameserver-agent/internal/model"
)

// Sampler возвращает одно измерение по запросу. Перед первым настоящим
// измерением требуется один вызов Prime: cpu.Percent с нулевым интервалом
// считает загрузку с момента предыдущего вызова, и первое значение
// в жизни процесса не имеет осмысленного окна.
type Sampler struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Sampler {
	return &Sampler{log: log}
}

// Prime выполняет отбрасываемое базовое чтение CPU.
func (s *Sampler) Prime(ctx context.Context) {
	if _, err := cpu.PercentWithContext(ctx, 0, false); err != nil {
		s.log.Warn("cpu baseline read failed", zap.Error(err))
	}
}

// Sample собирает текущее состояние хоста.
func (s *Sampler) Sample(ctx context.Context) (model.MetricsSnapshot, error) {
	snap := model.MetricsSnapshot{
		AgentTime: time.Now().UTC().Format(time.RFC3339),
	}

	cpuPercent, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return snap, err
	}
	if len(cpuPercent) > 0 {
		snap.CPUPct = cpuPercent[0]
	}

	memInfo, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return snap, err
	}
	snap.MemPct = memInfo.UsedPercent

	// На платформах без load average деградируем до 0.0
	if avg, err := load.AvgWithContext(ctx); err == nil {
		snap.Load1 = avg.Load1
	} else {
		s.log.Debug("load average unavailable", zap.Error(err))
	}

	hostname, err := os.Hostname()
	if err != nil {
		s.log.Warn("hostname lookup failed", zap.Error(err))
	}
	snap.Hostname = hostname

	return snap, nil
}
