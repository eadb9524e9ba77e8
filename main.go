package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "aduan",
	Short: "Citizen report clustering service",
	Long: `aduan groups citizen reports that describe the same problem into
clusters and ranks those clusters for follow-up.

Example usage:
  aduan serve                           # HTTP API plus scheduled jobs
  aduan cluster -i reports.json         # cluster a batch of reports
  aduan rank -i clusters.json           # rank clusters into recommendations`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serveCmd, newClusterCmd(), newRankCmd())
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}
