package main

import (
	"log"
	"os"

	"nepc/internal/config"
	"nepc/internal/logger"
)

const (
	Name        = "nepc"
	Version     = "0.1"
	Description = "Access and explore the NEPC database."
)

const defaultConfig = "nepc.yaml"

func main() {
	path := os.Getenv("NEPC_CONFIG")
	if path == "" {
		path = defaultConfig
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger.SetLevel(cfg.App.LogLevel)
	closer := logger.SetFile(cfg.App.LogPath)
	defer closer.Close()

	logger.Infof("%s %s: %s", Name, Version, Description)

	if failed := runAll(cfg.Jobs); failed > 0 {
		logger.Errorf("%d of %d jobs failed", failed, len(cfg.Jobs))
		closer.Close()
		os.Exit(1)
	}
}

// runAll runs every job and returns how many failed.
func runAll(jobs []config.Job) int {
	failed := 0
	for _, job := range jobs {
		if err := runJob(job); err != nil {
			logger.Errorf("job %s: %v", job.Name, err)
			failed++
			continue
		}
		logger.Infof("job %s: wrote %s", job.Name, job.Output)
	}
	return failed
}
