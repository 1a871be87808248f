package cli

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/vietddude/netswitch/internal/control"
	"github.com/vietddude/netswitch/internal/core/config"
)

var (
	cfgPath string
	isDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "netswitch",
	Short: "Aleo network client registry",
	Long: `netswitch keeps a single active connection to an Aleo network endpoint,
switches networks and providers safely, and prefers providers whose chain
height is advancing.`,
	Run: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the status server, gRPC health service and background checks",
	Run:   runServe,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd)
}

// loadConfig reads the config file and sets up logging. A missing default
// config file is not an error: every setting has a default.
func loadConfig(cmd *cobra.Command) *config.AppConfig {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
			cfg = config.Default()
		} else {
			stylelog.InitDefault()
			slog.Error("Failed to load config", "error", err)
			os.Exit(1)
		}
	}

	// Setup logging
	slogLevel := slog.LevelInfo
	if isDebug || cfg.Logging.Level == "debug" {
		slogLevel = slog.LevelDebug
	}

	stylelog.InitDefault(&tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	})
	return cfg
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app, err := control.New(ctx, cfg, control.Options{})
	if err != nil {
		slog.Error("Failed to initialize netswitch", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = app.Close()
	}()

	slog.Info("netswitch started",
		"config", cfgPath,
		"port", cfg.Server.Port,
		"grpc_port", cfg.Server.GRPCPort,
		"storage", cfg.Storage.Driver,
	)

	if err := app.Run(ctx); err != nil {
		slog.Error("netswitch stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("netswitch stopped gracefully")
}
