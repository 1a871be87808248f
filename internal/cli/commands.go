package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vietddude/netswitch/internal/control"
	"github.com/vietddude/netswitch/internal/core/config"
	"github.com/vietddude/netswitch/internal/core/domain"
	"github.com/vietddude/netswitch/internal/registry"
)

var applyPreference bool

var switchNetworkCmd = &cobra.Command{
	Use:   "switch-network [network]",
	Short: "Switch the active network (testnet, mainnet, devnet, local)",
	Args:  cobra.ExactArgs(1),
	Run: withRegistry(true, func(ctx context.Context, reg *registry.Registry, args []string) error {
		return reg.SwitchNetwork(ctx, domain.Network(args[0]))
	}),
}

var switchProviderCmd = &cobra.Command{
	Use:   "switch-provider [provider]",
	Short: "Switch the provider of the active network (primary, fallback)",
	Args:  cobra.ExactArgs(1),
	Run: withRegistry(true, func(ctx context.Context, reg *registry.Registry, args []string) error {
		return reg.SwitchProvider(ctx, domain.Provider(args[0]))
	}),
}

var checkHealthCmd = &cobra.Command{
	Use:   "check-health",
	Short: "Sample the preferred provider's height and update the preference",
	Args:  cobra.NoArgs,
	Run: withRegistry(false, func(ctx context.Context, reg *registry.Registry, args []string) error {
		liveness, err := reg.CheckHealth(ctx)
		if err != nil && !errors.Is(err, domain.ErrStorage) {
			return err
		}
		if last, ok := reg.LastAssessment(); ok {
			for i, s := range last.Samples {
				fmt.Printf("sample %d: %d\n", i+1, s.Value)
			}
		}
		fmt.Printf("%s/%s: %s (%s)\n", reg.Current().Network(), reg.PreferredProvider(ctx), liveness, liveness.Status())

		if applyPreference {
			if err := reg.SwitchProvider(ctx, reg.PreferredProvider(ctx)); err != nil {
				return err
			}
		}
		return err
	}),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active network, provider and latest height",
	Args:  cobra.NoArgs,
	Run: withRegistry(false, func(ctx context.Context, reg *registry.Registry, args []string) error {
		printStatus(ctx, reg)
		return nil
	}),
}

func init() {
	checkHealthCmd.Flags().BoolVar(&applyPreference, "apply", false, "switch to the resulting preferred provider")

	rootCmd.AddCommand(switchNetworkCmd)
	rootCmd.AddCommand(switchProviderCmd)
	rootCmd.AddCommand(checkHealthCmd)
	rootCmd.AddCommand(statusCmd)
}

// withRegistry runs fn against a registry built from the persisted
// preferences. A storage failure after a successful switch is only a warning.
func withRegistry(showStatus bool, fn func(ctx context.Context, reg *registry.Registry, args []string) error) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)
		if cfg.Storage.Driver == config.StorageMemory {
			slog.Warn("Memory storage does not persist changes between runs")
		}

		ctx := context.Background()
		prefs, err := control.OpenStore(ctx, cfg)
		if err != nil {
			slog.Error("Failed to open preference store", "error", err)
			os.Exit(1)
		}
		defer func() {
			_ = prefs.Close()
		}()

		reg, err := control.NewRegistry(ctx, cfg, prefs, nil)
		if err != nil {
			slog.Error("Failed to initialize registry", "error", err)
			os.Exit(1)
		}
		defer func() {
			_ = reg.Close()
		}()

		if err := fn(ctx, reg, args); err != nil {
			switch {
			case errors.Is(err, domain.ErrStorage):
				slog.Warn("Change applied but not persisted", "error", err)
			case registry.IsSwitchError(err):
				slog.Error("Switch aborted, previous client kept", "error", err)
				os.Exit(1)
			default:
				slog.Error("Command failed", "error", err)
				os.Exit(1)
			}
		}

		if showStatus {
			printStatus(ctx, reg)
		}
	}
}
