package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var dropFirst bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the hospital tables if they do not exist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			if dropFirst {
				if err := a.db.DropAll(ctx); err != nil {
					return errors.WithMessage(err, "drop tables failed")
				}
			}
			if err := a.executor.Migrate(ctx); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "migrated %d tables (%s)\n", len(a.service.Entities()), a.db.Driver())
			return err
		})
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&dropFirst, "drop", false, "drop every table before creating them, all data is lost")
	rootCmd.AddCommand(migrateCmd)
}
