package main

import (
	"log/slog"
	"os"

	"github.com/atelier-vision/zoocard/internal/cli"
	"github.com/atelier-vision/zoocard/internal/env"
	"github.com/atelier-vision/zoocard/internal/logger"
)

func main() {
	environment := env.FromEnv()

	slog.SetDefault(
		logger.New(environment,
			logger.WithLogToFile(environment.IsProduction()),
			logger.WithLogFile("logs/zoocard.log"),
		),
	)

	if err := cli.RootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
