package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/futig/bms-rag/internal/builder"
	"github.com/spf13/cobra"
)

var environment string

// rootCmd starts the interactive chat when no subcommand is given
var rootCmd = &cobra.Command{
	Use:          "bms-rag",
	Short:        "RAG chatbot over the BMS TARA item definition and damage scenarios",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runChat,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&environment, "env", "local", "environment, selects the .env.<env> file")
	addExportFlags(rootCmd)
}

// setup loads the configuration and returns a context that carries the logger
// and is cancelled on SIGINT or SIGTERM.
func setup(cmd *cobra.Command) (context.Context, *builder.Builder, func(), error) {
	b, err := builder.New(environment)
	if err != nil {
		return nil, nil, nil, err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	cleanup := func() {
		stop()
		b.Close()
	}

	return b.Context(ctx), b, cleanup, nil
}
