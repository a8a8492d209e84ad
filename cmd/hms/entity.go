package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var setValues []string

var entitiesCmd = &cobra.Command{
	Use:   "entities",
	Short: "List entities and their editable fields",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			tw := newTabWriter(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ENTITY\tPRIMARY KEY\tFIELDS")
			for _, name := range a.service.Entities() {
				schema, err := a.service.Schema(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", schema.Name, schema.PrimaryKey, strings.Join(schema.FieldNames(), ", "))
			}
			return tw.Flush()
		})
	},
}

var readCmd = &cobra.Command{
	Use:   "read <entity>",
	Short: "Print every record of an entity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			rs, err := a.service.ReadAll(ctx, args[0])
			if err != nil {
				return err
			}
			return printResultSet(cmd.OutOrStdout(), rs)
		})
	},
}

var getCmd = &cobra.Command{
	Use:   "get <entity> <id>",
	Short: "Print one record by primary key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			row, err := a.service.Get(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			schema, err := a.service.Schema(args[0])
			if err != nil {
				return err
			}
			return printRecord(cmd.OutOrStdout(), schema, row)
		})
	},
}

var createCmd = &cobra.Command{
	Use:     "create <entity>",
	Short:   "Create a record from --set column=value pairs",
	Example: `  hms create Patient --set FirstName=alice --set LastName=smith --set Gender=Female ...`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		form, err := parseSet(setValues)
		if err != nil {
			return err
		}
		return withApp(func(ctx context.Context, a *app) error {
			outcome, err := a.service.Create(ctx, args[0], form)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), outcome.Message)
			return err
		})
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <entity> <id>",
	Short: "Replace the editable fields of a record from --set column=value pairs",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		form, err := parseSet(setValues)
		if err != nil {
			return err
		}
		return withApp(func(ctx context.Context, a *app) error {
			outcome, err := a.service.Update(ctx, args[0], args[1], form)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), outcome.Message)
			return err
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <entity> <id>",
	Short: "Delete a record by primary key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			outcome, err := a.service.Delete(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), outcome.Message)
			return err
		})
	},
}

// parseSet 解析 column=value，值中可以再包含等号
func parseSet(pairs []string) (map[string]string, error) {
	form := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, errors.Errorf("invalid --set value %q, expected column=value", pair)
		}
		form[k] = v
	}
	return form, nil
}

func init() {
	createCmd.Flags().StringArrayVar(&setValues, "set", nil, "column=value, repeatable")
	updateCmd.Flags().StringArrayVar(&setValues, "set", nil, "column=value, repeatable")
	rootCmd.AddCommand(entitiesCmd, readCmd, getCmd, createCmd, updateCmd, deleteCmd)
}
