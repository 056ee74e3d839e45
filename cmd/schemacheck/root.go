package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/schemacheck"
	"github.com/aretw0/schemacheck/internal/config"
	"github.com/aretw0/schemacheck/internal/logging"
	"github.com/aretw0/schemacheck/internal/metrics"
	"github.com/aretw0/schemacheck/pkg/adapters/file"
	"github.com/aretw0/schemacheck/pkg/adapters/memory"
	"github.com/aretw0/schemacheck/pkg/adapters/redis"
	"github.com/aretw0/schemacheck/pkg/domain"
	"github.com/aretw0/schemacheck/pkg/ports"
)

var rootCmd = &cobra.Command{
	Use:   "schemacheck",
	Short: "Validate JSON and YAML documents against JSON Schemas",
	Long: `schemacheck checks documents against a JSON Schema using either the
built-in subset engine (type, enum, pattern, required, properties, items)
or a full draft-07 engine. It runs as a CLI, an HTTP API or an MCP server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitError carries a process exit code without printing anything further.
type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); overrides the config")
}

// app holds the components shared by every command.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	checker *schemacheck.Checker
	metrics *metrics.Metrics
	redis   *redis.Store
}

// newApp loads configuration and sets up logging and metrics.
func newApp(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	a := &app{
		cfg:     cfg,
		logger:  logging.NewWithFormat(cfg.LogLevel(), cfg.Log.Format),
		metrics: metrics.New(),
	}
	return a, nil
}

// buildChecker creates the checker and its report store. Extra hooks run
// after the metrics hooks.
func (a *app) buildChecker(hooks ...domain.LifecycleHooks) {
	cfg := a.cfg
	engine, _ := domain.ParseEngine(cfg.Engine.Default)
	opts := []schemacheck.Option{
		schemacheck.WithLogger(a.logger),
		schemacheck.WithMaxDepth(cfg.Engine.MaxDepth),
		schemacheck.WithRegexTimeout(cfg.Engine.RegexTimeout),
		schemacheck.WithDefaultEngine(engine),
		schemacheck.WithHooks(a.metrics.Hooks()),
	}
	for _, h := range hooks {
		opts = append(opts, schemacheck.WithHooks(h))
	}

	if store := a.newStore(); store != nil {
		opts = append(opts, schemacheck.WithStore(store))
	}

	a.checker = schemacheck.New(opts...)
}

func (a *app) newStore() ports.ReportStore {
	sc := a.cfg.Store
	switch sc.Driver {
	case config.DriverRedis:
		var opts []redis.Option
		if sc.Prefix != "" {
			opts = append(opts, redis.WithPrefix(sc.Prefix))
		}
		if sc.TTL > 0 {
			opts = append(opts, redis.WithTTL(sc.TTL))
		}
		a.redis = redis.New(sc.Addr, sc.Password, sc.DB, opts...)
		a.logger.Info("using redis report store", "addr", sc.Addr, "db", sc.DB)
		return a.redis
	case config.DriverFile:
		store := file.New(sc.Dir)
		a.logger.Info("using file report store", "dir", store.Dir)
		return store
	case config.DriverMemory:
		return memory.NewStore(memory.WithLimit(sc.Limit))
	default:
		return nil
	}
}

func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis client", "error", err)
		}
	}
}
