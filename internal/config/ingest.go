package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
	"github.com/spf13/pflag"
)

type IngestFlags struct {
	Addr     string `env:"ADDRESS"`
	AgentKey string `env:"AGENT_KEY"`
	LogLevel string `env:"LOGLEVEL" envDefault:"info"`
}

func ParseIngestConfig() *IngestFlags {
	var cfg IngestFlags

	cfg.Addr = ":5001"

	flags := pflag.NewFlagSet("ingest", pflag.ExitOnError)
	flags.StringVarP(&cfg.Addr, "address", "a", cfg.Addr, "HTTP listen address")
	flags.StringVarP(&cfg.AgentKey, "key", "k", "", "shared signing secret; empty disables verification")

	if err := flags.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := env.Parse(&cfg); err != nil {
		fmt.Println(err)
	}

	return &cfg
}
