package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hatlonely/hms/cfg"
	"github.com/hatlonely/hms/server"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serve the HTTP API and prometheus metrics. When a config file is in use it is
watched, and changes to admin.custom.mode and database.limits apply without restart.
SIGHUP reopens file log outputs after rotation.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			config.Server.Addr = addr
		}

		return withApp(func(ctx context.Context, a *app) error {
			srv, err := server.NewServerWithOptions(&config.Server, a.service, a.logger, a.registry)
			if err != nil {
				return errors.WithMessage(err, "server.NewServerWithOptions failed")
			}

			options := cfgOptions(configPath)
			if options.Path != "" {
				watcher, err := cfg.Watch(options, func(c *Config, err error) {
					if err != nil {
						a.logger.Warn("reload config failed, keep previous settings", "error", err.Error())
						return
					}
					a.service.SetPolicy(c.Admin.Custom)
					a.service.SetLimits(c.Database.Limits)
					a.logger.Info("config reloaded", "policy", c.Admin.Custom.Mode,
						"statementTimeout", c.Database.Limits.StatementTimeout.String(), "maxRows", c.Database.Limits.MaxRows)
				})
				if err != nil {
					return err
				}
				defer watcher.Close()
			}

			hup := make(chan os.Signal, 1)
			signal.Notify(hup, syscall.SIGHUP)
			defer signal.Stop(hup)
			go func() {
				for {
					select {
					case <-hup:
						if err := a.logger.Reopen(); err != nil {
							a.logger.Error("reopen log output failed", "error", err.Error())
						}
					case <-ctx.Done():
						return
					}
				}
			}()

			return srv.Run(ctx)
		})
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address, overrides server.addr")
	rootCmd.AddCommand(serveCmd)
}
