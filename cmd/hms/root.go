package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hatlonely/hms/admin"
	"github.com/hatlonely/hms/audit"
	"github.com/hatlonely/hms/cfg"
	"github.com/hatlonely/hms/database"
	"github.com/hatlonely/hms/log"
	"github.com/hatlonely/hms/server"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "hms.yaml"

// Config 命令行读取的完整配置
type Config struct {
	Database      database.Options           `cfg:"database"`
	Observability database.ObservableOptions `cfg:"observability"`
	Log           log.Options                `cfg:"log"`
	Audit         audit.Options              `cfg:"audit"`
	Admin         admin.Options              `cfg:"admin"`
	Server        server.Options             `cfg:"server"`
}

// envAliases 兼容部署环境里常见的数据库变量名
var envAliases = map[string]string{
	"DB_HOST":     "database.host",
	"DB_PORT":     "database.port",
	"DB_USER":     "database.username",
	"DB_PASSWORD": "database.password",
	"DB_NAME":     "database.database",
}

var (
	configPath string
	envFile    string
	config     *Config
)

var rootCmd = &cobra.Command{
	Use:   "hms",
	Short: "Hospital management system administration tool",
	Long: `hms manages the records of a multi-branch hospital database: CRUD over the ten
entities, a catalogue of prewritten analytical queries, policy-gated custom SQL
with an audit trail, and an HTTP API for front ends.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		config, err = loadConfig(configPath, envFile)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "path to config file (yaml, json, toml, ini or .env)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded into the environment before the config")
}

// cfgOptions 默认配置文件不存在时只读取环境变量
func cfgOptions(path string) *cfg.Options {
	if path == defaultConfigPath {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			path = ""
		}
	}
	return &cfg.Options{Path: path, EnvPrefix: "HMS", EnvAliases: envAliases}
}

func loadConfig(path string, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "load env file %s failed", envFile)
		}
	}

	var c Config
	if err := cfg.LoadWithOptions(cfgOptions(path), &c); err != nil {
		return nil, errors.WithMessage(err, "load config failed")
	}
	return &c, nil
}

// withApp 组件生命周期限定在一次命令执行内，收到中断信号时取消 ctx
func withApp(fn func(ctx context.Context, a *app) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(config)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.logger.Warn("close failed", "error", err.Error())
		}
	}()

	return fn(ctx, a)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, admin.Message(err))
		os.Exit(1)
	}
}
