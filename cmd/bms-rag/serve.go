package main

import (
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the query pipeline over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, b, cleanup, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		app, err := b.BuildServer(ctx)
		if err != nil {
			return err
		}
		return app.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
