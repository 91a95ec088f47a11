package deployment

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"path/filepath"

	"github.com/compose-network/crossdeploy/internal/contracts"
	"github.com/compose-network/crossdeploy/internal/logger"
	"github.com/compose-network/crossdeploy/internal/txexec"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

const addressesFileName = "crossdeploy.json"

// TargetOrder is the submission order on the target chain. None of these
// contracts take constructor arguments.
var TargetOrder = []contracts.ContractName{
	contracts.ContractNameTargetEndpoint,
	contracts.ContractNameProposalValidationStrategy,
	contracts.ContractNameVotingStrategy,
	contracts.ContractNameSpace,
	contracts.ContractNameAuthenticator,
}

// executionStrategyQuorum is the fixed second constructor argument of the
// execution strategy.
var executionStrategyQuorum = big.NewInt(1)

type (
	// Hook runs after the confidential endpoint is confirmed and before the
	// execution strategy is deployed.
	Hook func(ctx context.Context, endpoint Record) error

	jsonWriter interface {
		WriteJSON(path string, data any) error
	}

	// Sequencer deploys the fixed contract set across both networks.
	Sequencer struct {
		target       *txexec.Executor
		confidential *txexec.Executor
		compiled     map[contracts.ContractName]contracts.CompiledContract
		authority    common.Address
		addressesDir string
		writer       jsonWriter
		logger       *slog.Logger
	}
)

// NewSequencer creates a sequencer. authority is the placeholder owner passed to
// the execution strategy constructor. An empty addressesDir disables the address book.
func NewSequencer(
	target, confidential *txexec.Executor,
	compiled map[contracts.ContractName]contracts.CompiledContract,
	authority common.Address,
	addressesDir string,
	writer jsonWriter,
) *Sequencer {
	return &Sequencer{
		target:       target,
		confidential: confidential,
		compiled:     compiled,
		authority:    authority,
		addressesDir: addressesDir,
		writer:       writer,
		logger:       logger.Named("deployment_sequencer"),
	}
}

// Run deploys every contract and returns the book. Any failure aborts the run.
func (s *Sequencer) Run(ctx context.Context, hook Hook) (*Book, error) {
	book := NewBook()

	s.logger.With("network", s.target.Network().Name).Info("deploying target contracts")
	if err := s.deployTarget(ctx, book); err != nil {
		return nil, err
	}

	s.logger.With("network", s.confidential.Network().Name).Info("deploying confidential contracts")
	if err := s.deployConfidential(ctx, book, hook); err != nil {
		return nil, err
	}

	if err := s.writeAddressBook(book); err != nil {
		return nil, err
	}

	s.logger.With("contracts", len(book.Records())).Info("all contracts deployed")

	return book, nil
}

// deployTarget submits the target contracts with consecutive nonces and waits
// for all of them.
func (s *Sequencer) deployTarget(ctx context.Context, book *Book) error {
	nonce, err := s.target.PendingNonce(ctx)
	if err != nil {
		return fmt.Errorf("target network %s: %w", s.target.Network().Name, err)
	}

	pending := make([]*txexec.PendingDeployment, 0, len(TargetOrder))
	for i, name := range TargetOrder {
		compiled, err := s.artifact(name)
		if err != nil {
			return err
		}
		p, err := s.target.SubmitDeploy(ctx, name, compiled, nonce+uint64(i))
		if err != nil {
			return err
		}
		pending = append(pending, p)
	}

	deployed := make([]txexec.Deployment, len(pending))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, p := range pending {
		group.Go(func() error {
			d, err := p.Wait(groupCtx)
			if err != nil {
				return err
			}
			deployed[i] = d
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	for _, d := range deployed {
		book.Add(s.record(s.target, d))
	}
	return nil
}

func (s *Sequencer) deployConfidential(ctx context.Context, book *Book, hook Hook) error {
	endpoint, err := s.deploy(ctx, s.confidential, contracts.ContractNameConfidentialEndpoint)
	if err != nil {
		return err
	}
	book.Add(endpoint)

	if hook != nil {
		if err := hook(ctx, endpoint); err != nil {
			return fmt.Errorf("after %s: %w", endpoint.Contract, err)
		}
	}

	strategy, err := s.deploy(ctx, s.confidential, contracts.ContractNameExecutionStrategy, s.authority, executionStrategyQuorum)
	if err != nil {
		return err
	}
	book.Add(strategy)

	return nil
}

func (s *Sequencer) deploy(ctx context.Context, executor *txexec.Executor, name contracts.ContractName, args ...any) (Record, error) {
	compiled, err := s.artifact(name)
	if err != nil {
		return Record{}, err
	}
	d, err := executor.Deploy(ctx, name, compiled, args...)
	if err != nil {
		return Record{}, err
	}
	return s.record(executor, d), nil
}

func (s *Sequencer) artifact(name contracts.ContractName) (contracts.CompiledContract, error) {
	compiled, ok := s.compiled[name]
	if !ok {
		return contracts.CompiledContract{}, fmt.Errorf("no compiled artifact for %s", name)
	}
	return compiled, nil
}

func (s *Sequencer) record(executor *txexec.Executor, d txexec.Deployment) Record {
	return Record{
		Contract: d.Name,
		Network:  executor.Network().Name,
		Address:  d.Address,
		TxHash:   d.TxHash,
	}
}

// writeAddressBook writes one file per network in the chainInfo/addresses layout.
func (s *Sequencer) writeAddressBook(book *Book) error {
	if s.addressesDir == "" || s.writer == nil {
		return nil
	}

	for _, executor := range []*txexec.Executor{s.target, s.confidential} {
		descriptor := executor.Network()
		payload := map[string]any{
			"chainInfo": map[string]any{
				"chainId": descriptor.ChainID,
			},
			"addresses": book.ByNetwork()[descriptor.Name],
		}

		path := filepath.Join(s.addressesDir, descriptor.Name, addressesFileName)
		if err := s.writer.WriteJSON(path, payload); err != nil {
			return fmt.Errorf("failed to write address book for %s: %w", descriptor.Name, err)
		}
		s.logger.With("path", path).Info("address book written")
	}
	return nil
}
