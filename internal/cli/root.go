package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/taj0207/IngredientCheck/internal/control"
	"github.com/taj0207/IngredientCheck/internal/core/config"
)

var (
	cfgPath string
	isDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "ingredientcheck",
	Short: "Ingredient safety scanner",
	Long: `IngredientCheck reads the ingredient list from a product label photo and
reports the GHS hazard classification of every ingredient.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

// setup loads .env and the config file and initializes logging.
func setup() (*config.AppConfig, error) {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		stylelog.InitDefault()
		return nil, err
	}

	slogLevel := slog.LevelInfo
	if isDebug || cfg.Logging.Level == "debug" {
		slogLevel = slog.LevelDebug
	}

	stylelog.InitDefault(&tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	})
	return cfg, nil
}

// newApp builds the application for a one-shot command.
func newApp(requireOCR bool) (*control.App, error) {
	cfg, err := setup()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app, err := control.NewApp(*cfg, control.Options{RequireOCR: requireOCR})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize IngredientCheck: %w", err)
	}
	return app, nil
}
