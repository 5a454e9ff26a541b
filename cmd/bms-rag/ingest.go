package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var snapshotPath string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Embed both datasets and write a vector store snapshot",
	Args:  cobra.NoArgs,
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&snapshotPath, "snapshot", "", "snapshot file (default STORE_SNAPSHOT)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	ctx, b, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	path := snapshotPath
	if path == "" {
		path = b.Config().StoreSnapshot
	}
	if path == "" {
		return errors.New("no snapshot path: set STORE_SNAPSHOT or pass --snapshot")
	}

	index, err := b.BuildIndex(ctx, true)
	if err != nil {
		return err
	}
	if err := index.Store.Export(path); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printIndex(out, index)
	fmt.Fprintf(out, "  Snapshot -> %s\n", path)
	return nil
}
