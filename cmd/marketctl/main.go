package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/usedgoods/marketplace/cmd/marketctl/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "marketctl",
		Short:         "Maintenance tools for the marketplace backend",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.SeedCmd())
	rootCmd.AddCommand(cmd.SweepCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
