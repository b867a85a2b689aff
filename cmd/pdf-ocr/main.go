package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/dms1981/python-ocr/internal/config"
	"github.com/dms1981/python-ocr/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Setup(cfg.Logger.Level, cfg.Logger.Format)

	cli := NewCLI(cfg)
	if err := cli.Run(os.Args[1:]); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
