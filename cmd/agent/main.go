package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kazakovdmitriy/go-gameserver-agent/internal/agent"
	"github.com/kazakovdmitriy/go-gameserver-agent/internal/config"
	"github.com/kazakovdmitriy/go-gameserver-agent/internal/logger"
)

func main() {
	cfg := config.ParseAgentConfig()

	log, err := logger.Initialize(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	app, err := agent.NewApp(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := app.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
