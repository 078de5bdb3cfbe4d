package main

import (
	"fmt"
	"os"

	"arvista/config"
	"arvista/internal/infra/logging"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "arvista",
	Short: "Arvista art gallery storefront API",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadEnv()
		logging.Init(config.IsProduction())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}
