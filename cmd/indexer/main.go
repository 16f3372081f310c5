package main

import (
	"context"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/futig/chatbot-backend/internal/builder"
)

func main() {
	pipeline, cfg, logger, err := builder.BuildIndexer()
	if err != nil {
		log.Fatal("Failed to build indexer:", err)
	}

	n, err := pipeline.Run(context.Background(), cfg.DataDir)
	if err != nil {
		logger.Error("indexing failed", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("indexing finished", zap.Int("chunks", n))
}
