package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func SeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the built-in payment methods (existing keys are kept)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			n, err := a.PaymentMethodService.Seed(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d payment methods\n", n)
			return nil
		},
	}
}
