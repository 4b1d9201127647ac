package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tractionlens",
	Short: "SaaS traction diagnostic service",
	Long:  "Guides a SaaS company through a growth stage questionnaire and compiles a traction report against stage benchmarks.",
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
