package crossdeploy

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/compose-network/crossdeploy/configs"
	"github.com/compose-network/crossdeploy/internal/chain"
	"github.com/compose-network/crossdeploy/internal/contracts"
	"github.com/compose-network/crossdeploy/internal/network"
	"github.com/compose-network/crossdeploy/internal/tally"
)

// Plan is a validated configuration, ready to run.
type Plan struct {
	Target       network.Descriptor
	Confidential network.Descriptor
	Compiled     map[contracts.ContractName]contracts.CompiledContract
	Accounts     []chain.Account
	Deposit      *big.Int
	Tally        tally.Polling
	Execution    tally.Polling
}

// Preflight validates cfg without touching any network. Every problem is
// reported at once as a single configuration error.
func Preflight(cfg configs.Crossdeploy) (Plan, error) {
	var (
		plan Plan
		errs []error
		err  error
	)

	if plan.Target, err = verifyNetwork(cfg.Network); err != nil {
		errs = append(errs, err)
	}
	if plan.Confidential, err = network.Confidential(); err != nil {
		errs = append(errs, err)
	}
	if err := verifySigner(cfg.Signer); err != nil {
		errs = append(errs, err)
	}
	if plan.Compiled, err = verifyContracts(cfg.Contracts, cfg.ArtifactsPath); err != nil {
		errs = append(errs, err)
	}
	if err := verifyGasLimit(cfg.GasLimit); err != nil {
		errs = append(errs, err)
	}

	if cfg.Mnemonic == "" {
		errs = append(errs, errors.New("crossdeploy.mnemonic is required (set MNEMONIC or --mnemonic)"))
	} else if plan.Accounts, err = chain.NamedAccounts(cfg.Mnemonic); err != nil {
		errs = append(errs, fmt.Errorf("crossdeploy.mnemonic: %w", err))
	}

	// the remaining settings are only checked for shape
	if err := cfg.Validate(); err != nil {
		errs = append(errs, err)
	}
	if deposit, err := cfg.Voting.Deposit(); err == nil {
		plan.Deposit = deposit
	}
	plan.Tally = tally.Polling{Interval: cfg.Voting.TallyPollInterval, Timeout: cfg.Voting.TallyTimeout}
	plan.Execution = tally.Polling{Interval: cfg.Voting.ExecutionPollInterval, Timeout: cfg.Voting.ExecutionTimeout}

	if len(errs) > 0 {
		return Plan{}, newError(KindConfiguration, "preflight", errors.Join(errs...))
	}
	return plan, nil
}

func verifyNetwork(name string) (network.Descriptor, error) {
	d, err := network.ValidateTarget(name)
	if err != nil {
		return network.Descriptor{}, fmt.Errorf("the network you are trying to deploy to is not supported: %w", err)
	}
	return d, nil
}

func verifySigner(secret string) error {
	if secret == "" {
		return errors.New("a signer private key is required (set PRIVATE_KEY or --signer)")
	}
	if _, err := chain.ParsePrivateKey(secret); err != nil {
		return fmt.Errorf("signer: %w", err)
	}
	return nil
}

func verifyContracts(names []string, artifactsPath string) (map[contracts.ContractName]contracts.CompiledContract, error) {
	if len(names) == 0 {
		return nil, errors.New("a list of contract names to deploy is required (crossdeploy.contracts)")
	}
	if artifactsPath == "" {
		return nil, errors.New("crossdeploy.artifacts-path is required")
	}

	compiled, err := contracts.LoadArtifacts(artifactsPath)
	if err != nil {
		return nil, err
	}
	if err := contracts.CheckComplete(compiled, names); err != nil {
		return nil, err
	}
	return compiled, nil
}

func verifyGasLimit(limit uint64) error {
	if limit > configs.MaxGasLimit {
		return fmt.Errorf("gas limit %d exceeds the block gas target of %d", limit, configs.MaxGasLimit)
	}
	return nil
}
