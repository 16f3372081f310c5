package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/futig/chatbot-backend/internal/builder"
)

func main() {
	loop, logger, err := builder.BuildREPL()
	if err != nil {
		log.Fatal("Failed to build chatbot:", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("chatbot error", zap.Error(err))
		os.Exit(1)
	}
}
