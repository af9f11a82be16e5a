package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
	"github.com/spf13/pflag"
)

// Стратегии отслеживания присутствия игроков.
const (
	TrackerLog   = "log"
	TrackerQuery = "query"
)

type AgentFlags struct {
	ServerID       string `env:"SERVER_ID"`
	AgentKey       string `env:"AGENT_KEY"`
	IngestURL      string `env:"INGEST_URL"`
	LogPath        string `env:"MC_LOG"`
	MetricInterval int    `env:"METRIC_INTERVAL"`
	QueueDir       string `env:"QUEUE_DIR"`
	DryRun         bool   `env:"DRY_RUN"`
	Tracker        string `env:"TRACKER"`
	QueryAddr      string `env:"QUERY_ADDR"`
	QueryInterval  int    `env:"QUERY_INTERVAL"`
	SinkPath       string `env:"SINK_PATH"`
	LogLevel       string `env:"LOGLEVEL" envDefault:"info"`
}

func ParseAgentConfig() *AgentFlags {
	var cfg AgentFlags

	// Устанавливаем значения по умолчанию
	setDefaultAgentFlags(&cfg)

	// Перезаписываем флагами
	parseFlagsAgent(&cfg)

	// Устанавливаем переменные окружения
	parseEnvAgent(&cfg)

	return &cfg
}

func setDefaultAgentFlags(cfg *AgentFlags) {
	cfg.ServerID = "beelink-01"
	cfg.LogPath = "/mc/logs/latest.log"
	cfg.MetricInterval = 30
	cfg.QueueDir = "/app/queue"
	cfg.DryRun = true
	cfg.Tracker = TrackerLog
	cfg.QueryAddr = "localhost:25565"
	cfg.QueryInterval = 5
}

func parseEnvAgent(cfg *AgentFlags) {
	err := env.Parse(cfg)
	if err != nil {
		fmt.Println(err)
	}
}

func parseFlagsAgent(cfg *AgentFlags) {
	flags := pflag.NewFlagSet("agent", pflag.ExitOnError)

	flags.StringVarP(&cfg.ServerID, "server-id", "s", cfg.ServerID, "server identity attached to every event")
	flags.StringVarP(&cfg.IngestURL, "ingest", "i", "", "ingestion endpoint URL")
	flags.StringVarP(&cfg.AgentKey, "key", "k", "", "shared signing secret")
	flags.StringVarP(&cfg.LogPath, "log", "f", cfg.LogPath, "game server log file to tail")
	flags.IntVarP(&cfg.MetricInterval, "metric-interval", "m", cfg.MetricInterval, "metrics interval in sec")
	flags.StringVarP(&cfg.QueueDir, "queue", "q", cfg.QueueDir, "offline queue directory")
	flags.BoolVarP(&cfg.DryRun, "dry-run", "n", cfg.DryRun, "record events locally instead of sending")
	flags.StringVarP(&cfg.Tracker, "tracker", "t", cfg.Tracker, "presence tracker strategy: log or query")
	flags.StringVarP(&cfg.QueryAddr, "query-addr", "a", cfg.QueryAddr, "game server query host:port")
	flags.IntVarP(&cfg.QueryInterval, "query-interval", "p", cfg.QueryInterval, "query poll interval in sec")
	flags.StringVarP(&cfg.SinkPath, "sink", "o", "", "dry-run observation file")

	if err := flags.Parse(os.Args[1:]); err != nil {
		_, err := fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if err != nil {
			return
		}
		os.Exit(1)
	}

	// Проверяем наличие неизвестных флагов
	if flags.NArg() > 0 {
		for i := 0; i < flags.NArg(); i++ {
			arg := flags.Arg(i)
			if len(arg) > 0 && arg[0] == '-' {
				_, err := fmt.Fprintf(os.Stderr, "Error: unknown flag: %s\n", arg)
				if err != nil {
					return
				}
				os.Exit(1)
			}
		}
	}
}
