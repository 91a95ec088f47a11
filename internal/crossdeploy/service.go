package crossdeploy

import (
	"context"
	"log/slog"

	"github.com/compose-network/crossdeploy/configs"
	"github.com/compose-network/crossdeploy/internal/chain"
	"github.com/compose-network/crossdeploy/internal/confidential"
	"github.com/compose-network/crossdeploy/internal/deployment"
	"github.com/compose-network/crossdeploy/internal/infra/filesystem"
	"github.com/compose-network/crossdeploy/internal/relay"
	"github.com/compose-network/crossdeploy/internal/txexec"
)

// start connects to both networks, runs the pipeline, and writes the report.
func start(ctx context.Context, cfg configs.Crossdeploy, plan Plan) error {
	conns, err := chain.DialAll(ctx, cfg.Signer, plan.Confidential, plan.Target, cfg.GasLimit)
	if err != nil {
		return newError(KindDeployment, "connect", err)
	}
	defer conns.Close()

	store := filesystem.NewStore()
	target := txexec.New(plan.Target, conns.Target.Client, conns.Target.TransactOpts)
	confidentialExecutor := txexec.New(plan.Confidential, conns.Confidential.Client, conns.Confidential.TransactOpts)

	pipeline := NewPipeline(
		plan,
		conns.Target.Address,
		deployment.NewSequencer(target, confidentialExecutor, plan.Compiled, conns.Confidential.Address, cfg.AddressesDir, store),
		target,
		confidentialExecutor,
		chainBinder{target: conns.Target.Client, confidential: conns.Confidential.Client},
		confidential.NewProvider(conns.Confidential.Client),
		relay.NewClient(cfg.Relay.URL, cfg.Relay.Timeout),
	)

	report, runErr := pipeline.Run(ctx)
	if err := writeReport(store, cfg.ReportPath, report); err != nil {
		if runErr != nil {
			slog.With("err", err.Error()).Error("failed to write report")
			return runErr
		}
		return err
	}

	return runErr
}

type yamlWriter interface {
	WriteYAML(path string, data any) error
}

func writeReport(w yamlWriter, path string, report *Report) error {
	if path == "" || report == nil {
		return nil
	}
	if err := w.WriteYAML(path, report); err != nil {
		return err
	}
	slog.With("path", path).Info("report written")
	return nil
}
