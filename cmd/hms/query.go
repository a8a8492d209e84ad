package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hatlonely/hms/database"
	"github.com/hatlonely/hms/query"
	"github.com/spf13/cobra"
)

var (
	runID    string
	operator string
)

var queriesCmd = &cobra.Command{
	Use:   "queries [category]",
	Short: "List query categories, or the queries of one category",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			tw := newTabWriter(cmd.OutOrStdout())
			if len(args) == 0 {
				fmt.Fprintln(tw, "CATEGORY\tQUERIES\tDESCRIPTION")
				for _, c := range a.service.Categories() {
					defs, err := a.service.Queries(c)
					if err != nil {
						return err
					}
					description, _ := query.Describe(c)
					fmt.Fprintf(tw, "%s\t%d\t%s\n", c, len(defs), description)
				}
				fmt.Fprintf(tw, "\ncustom query policy: %s\n", a.service.Policy())
				return tw.Flush()
			}

			defs, err := a.service.Queries(query.Category(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintln(tw, "ID\tLABEL")
			for _, def := range defs {
				fmt.Fprintf(tw, "%s\t%s\n", def.ID, def.Label)
			}
			return tw.Flush()
		})
	},
}

var runCmd = &cobra.Command{
	Use:   "run [<category> <label>]",
	Short: "Run a prewritten query by category and label, or by --id",
	Args: func(cmd *cobra.Command, args []string) error {
		if runID != "" {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			var rs *database.ResultSet
			var err error
			if runID != "" {
				rs, err = a.service.RunQueryByID(ctx, runID)
			} else {
				rs, err = a.service.RunQuery(ctx, query.Category(args[0]), args[1])
			}
			if err != nil {
				return err
			}
			return printResultSet(cmd.OutOrStdout(), rs)
		})
	},
}

var customCmd = &cobra.Command{
	Use:   "custom <sql>",
	Short: "Run operator supplied SQL under the configured policy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			rs, err := a.service.RunCustom(ctx, operator, args[0])
			if err != nil {
				return err
			}
			return printResultSet(cmd.OutOrStdout(), rs)
		})
	},
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Print the most recent custom query executions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("n")
		return withApp(func(ctx context.Context, a *app) error {
			entries, err := a.service.Audit(ctx, n)
			if err != nil {
				return err
			}
			return printAudit(cmd.OutOrStdout(), entries)
		})
	},
}

func defaultOperator() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "anonymous"
}

func init() {
	runCmd.Flags().StringVar(&runID, "id", "", "query id as listed by `hms queries <category>`")
	customCmd.Flags().StringVar(&operator, "operator", defaultOperator(), "operator name recorded in the audit trail")
	auditCmd.Flags().IntP("n", "n", 20, "number of entries")
	rootCmd.AddCommand(queriesCmd, runCmd, customCmd, auditCmd)
}
