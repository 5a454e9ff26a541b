package main

import (
	"fmt"
	"io"

	"github.com/futig/bms-rag/internal/builder"
	"github.com/futig/bms-rag/internal/chat"
	"github.com/spf13/cobra"
)

var (
	noSave    bool
	outputDir string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions interactively (default)",
	Args:  cobra.NoArgs,
	RunE:  runChat,
}

func init() {
	addExportFlags(chatCmd)
	rootCmd.AddCommand(chatCmd)
}

func addExportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not save answers")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for saved answers (default EXPORT_OUTPUT_DIR)")
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx, b, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	out := cmd.OutOrStdout()

	// --output-dir turns saving on even when EXPORT_ENABLED is false
	save := !noSave && (b.Config().ExportCfg.Enabled || outputDir != "")

	var saver chat.Saver
	exportDir := ""
	if save {
		exporter, err := b.BuildExporter(outputDir)
		if err != nil {
			return err
		}
		saver = exporter
		exportDir = exporter.Dir()
	}

	chat.PrintBanner(out, save, exportDir)

	chat.PrintStep(out, 1, 2, "Ingesting JSON data...")
	index, err := b.BuildIndex(ctx, false)
	if err != nil {
		return err
	}
	printIndex(out, index)

	chat.PrintStep(out, 2, 2, "Building RAG pipeline...")
	ragUC, err := b.BuildRAG(ctx, index)
	if err != nil {
		return err
	}

	return chat.NewSession(ragUC, saver, cmd.InOrStdin(), out).Run(ctx)
}

func printIndex(out io.Writer, index *builder.Index) {
	if index.Loaded {
		fmt.Fprintf(out, "  Loaded %d documents from snapshot\n", index.Store.Count())
		return
	}
	fmt.Fprintf(out, "  Item definition docs: %d\n", index.Stats.ItemDefinition)
	fmt.Fprintf(out, "  Damage scenario docs: %d\n", index.Stats.DamageScenarios)
	fmt.Fprintf(out, "  Total documents:      %d\n", index.Stats.Total())
}
