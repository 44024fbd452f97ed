package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/matcalc/internal/config"
	"github.com/piwi3910/matcalc/internal/model"
	"github.com/piwi3910/matcalc/internal/project"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string
	jsonOut bool
)

var rootCmd = &cobra.Command{
	Use:   "matcalc",
	Short: "Bar and plate material cost calculator",
	Long: `Calculate how many standard bars a batch of turned parts needs,
what the stock weighs and costs, and how much of the cost comes back
as scrap. Plates are priced by weight.

Configuration is read from config.yaml (./configs or the working
directory), an optional .env file and MATCALC_ environment variables.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./configs/config.yaml or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print results as JSON")
}

// env is what a command needs from configuration: the parsed config, a
// logger, the material catalog and the user defaults.
type env struct {
	cfg          *config.Config
	logger       *zap.Logger
	catalog      model.Catalog
	defaults     model.DefaultsConfig
	defaultsPath string
	store        project.KVStore
}

func loadEnv() (*env, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	cat, err := project.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		logger.Warn("Using built-in catalog", zap.String("path", cfg.CatalogPath), zap.Error(err))
		cat = model.DefaultCatalog()
	}

	e := &env{
		cfg:          cfg,
		logger:       logger,
		catalog:      cat,
		defaultsPath: filepath.Join(filepath.Dir(cfg.CatalogPath), "defaults.json"),
	}
	e.defaults, err = loadDefaults(e.defaultsPath, cfg.Defaults)
	if err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	return e, nil
}

// loadDefaults prefers a saved defaults file and falls back to the
// configured values when there is none.
func loadDefaults(path string, configured model.DefaultsConfig) (model.DefaultsConfig, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return configured, nil
	}
	return project.LoadDefaults(path)
}

// history opens the configured store on first use.
func (e *env) history(ctx context.Context) (*project.OrderHistory, error) {
	if e.store == nil {
		store, err := openStore(ctx, e.cfg.Store)
		if err != nil {
			return nil, err
		}
		e.store = store
		e.logger.Debug("Store opened", zap.String("driver", store.Name()))
	}
	return project.NewOrderHistory(e.store), nil
}

func (e *env) close() {
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.logger.Warn("Failed to close store", zap.Error(err))
		}
	}
	_ = e.logger.Sync()
}

func openStore(ctx context.Context, cfg config.StoreConfig) (project.KVStore, error) {
	switch cfg.Driver {
	case config.DriverFile:
		return project.NewFileStore(cfg.Dir)
	case config.DriverRedis:
		return project.OpenRedisStore(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix)
	case config.DriverPostgres:
		return project.OpenPostgresStore(ctx, cfg.Postgres.DSN, cfg.Postgres.Table)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// withEnv wraps a command body with environment setup and teardown.
func withEnv(run func(cmd *cobra.Command, args []string, e *env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.close()
		return run(cmd, args, e)
	}
}
