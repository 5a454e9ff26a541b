package main

import (
	"fmt"
	"strings"

	"github.com/futig/bms-rag/internal/chat"
	"github.com/spf13/cobra"
)

var askOutputDir string

var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Answer a single query and exit",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askOutputDir, "output-dir", "", "save the answer into this directory")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, b, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	index, err := b.BuildIndex(ctx, false)
	if err != nil {
		return err
	}

	ragUC, err := b.BuildRAG(ctx, index)
	if err != nil {
		return err
	}

	answer, err := ragUC.Ask(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	chat.WriteAnswer(out, answer)

	if askOutputDir == "" || !answer.Parsed() {
		return nil
	}

	exporter, err := b.BuildExporter(askOutputDir)
	if err != nil {
		return err
	}
	path, err := exporter.Save(ctx, answer)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "  Saved -> %s\n", path)
	return nil
}
