package main

import (
	"arvista/internal/app/server"

	"github.com/spf13/cobra"
)

// arvista serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server and background jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Run()
	},
}
