package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/langchou/evcompare/internal/catalog"
	"github.com/langchou/evcompare/internal/config"
	"github.com/langchou/evcompare/internal/service"
)

// env 子命令共享的依赖
type env struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *service.ComparisonService
	catalog *catalog.Static
}

// NewRootCmd 创建根命令
func NewRootCmd() *cobra.Command {
	var (
		debug       bool
		catalogFile string
		e           env
	)

	root := &cobra.Command{
		Use:           "evcompare",
		Short:         "Compare the running cost and CO2 of two vehicles",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("debug") {
				cfg.Debug = debug
			}
			if catalogFile != "" {
				cfg.CatalogFile = catalogFile
			}

			logger, err := config.NewLogger(cfg.Debug, "stderr")
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			static := catalog.Default()
			if cfg.CatalogFile != "" {
				if static, err = catalog.LoadFile(cfg.CatalogFile); err != nil {
					return err
				}
			}

			e.cfg = cfg
			e.logger = logger
			e.catalog = static
			e.service = service.NewComparisonService(cfg.EngineOptions(), logger, static, service.StaticPrices(cfg.DefaultPrices))
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if e.logger != nil {
				_ = e.logger.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	root.PersistentFlags().StringVar(&catalogFile, "catalog", "", "vehicle catalog YAML (overrides CATALOG_FILE)")

	root.AddCommand(
		newCompareCmd(&e),
		newTripLogCmd(&e),
		newPresetsCmd(&e),
	)
	return root
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
