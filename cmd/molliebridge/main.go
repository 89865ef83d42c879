package main

import (
	"os"

	"github.com/spf13/cobra"

	"molliebridge/internal/interfaces/cli/migrate"
	"molliebridge/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "molliebridge",
		Short: "Mollie recurring payment gateway bridge",
		Long:  `Bridge service connecting a billing platform to Mollie recurring payments: customer mandates, charges, webhooks and refunds.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
