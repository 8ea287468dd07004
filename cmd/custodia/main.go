package main

import (
	"os"

	"github.com/spf13/cobra"

	"custodia/internal/interfaces/cli/migrate"
	"custodia/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "custodia",
		Short: "Custodia - residential access control service",
		Long:  `Custodia manages residents, visitors, and visit requests for a building, keeps entry records on a permissioned ledger, and serves the QR entry verification API.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
