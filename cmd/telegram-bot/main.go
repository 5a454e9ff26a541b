package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/futig/bms-rag/internal/builder"
	"go.uber.org/zap"
)

func main() {
	environment := flag.String("env", "local", "environment, selects the .env.<env> file")
	flag.Parse()

	b, err := builder.New(*environment)
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	defer b.Close()
	logger := b.Logger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx = b.Context(ctx)

	bot, err := b.BuildTelegramBot(ctx)
	if err != nil {
		logger.Error("failed to build telegram bot", zap.Error(err))
		b.Close()
		os.Exit(1)
	}

	logger.Info("starting telegram bot...")
	if err := bot.Start(ctx); err != nil {
		logger.Error("telegram bot error", zap.Error(err))
		b.Close()
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("received shutdown signal")

	if err := bot.Stop(); err != nil {
		logger.Error("error stopping bot", zap.Error(err))
	}
	logger.Info("telegram bot stopped gracefully")
}
