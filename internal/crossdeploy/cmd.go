package crossdeploy

import (
	"fmt"
	"log/slog"

	"github.com/compose-network/crossdeploy/configs"
	"github.com/compose-network/crossdeploy/internal/network"
	"github.com/spf13/cobra"
)

var CMD = &cobra.Command{
	Use:   "crossdeploy",
	Short: "Deploy the cross-chain governance contracts and run a proposal through them",
	Long: fmt.Sprintf("Deploys the target contracts on the chosen network and the confidential contracts on inco, "+
		"then initializes, proposes, votes, tallies, and executes.\nSupported target networks: %v", network.DeployTargets()),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configs.Values.Crossdeploy
		slog.Info("starting crossdeploy. Running pre-flight checks",
			slog.String("network", cfg.Network),
			slog.Any("contracts", cfg.Contracts),
			slog.String("artifacts_path", cfg.ArtifactsPath))

		plan, err := Preflight(cfg)
		if err != nil {
			return err
		}

		slog.Info("pre-flight successful. Starting crossdeploy...",
			slog.String("target", plan.Target.Name),
			slog.String("confidential", plan.Confidential.Name))

		if err := start(cmd.Context(), cfg, plan); err != nil {
			return fmt.Errorf("crossdeploy failed: %w", err)
		}

		slog.Info("crossdeploy completed")

		return nil
	},
}
