package txexec

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/compose-network/crossdeploy/internal/contracts"
	"github.com/compose-network/crossdeploy/internal/logger"
	"github.com/compose-network/crossdeploy/internal/network"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type (
	// Backend is what the executor needs from a chain client to submit and confirm.
	Backend interface {
		bind.ContractBackend
		bind.DeployBackend
	}

	// OptsFunc returns fresh transact options for one submission.
	OptsFunc func(ctx context.Context) (*bind.TransactOpts, error)

	// TxFunc submits one transaction with the given options.
	TxFunc func(opts *bind.TransactOpts) (*types.Transaction, error)

	// Executor submits transactions on one network and waits for one confirmation.
	Executor struct {
		network network.Descriptor
		backend Backend
		opts    OptsFunc
		logger  *slog.Logger
	}

	// Deployment is a confirmed contract creation.
	Deployment struct {
		Name    contracts.ContractName
		Address common.Address
		TxHash  common.Hash
	}

	// PendingDeployment is a submitted but not yet confirmed contract creation.
	PendingDeployment struct {
		executor *Executor
		name     contracts.ContractName
		address  common.Address
		tx       *types.Transaction
	}
)

func New(descriptor network.Descriptor, backend Backend, opts OptsFunc) *Executor {
	return &Executor{
		network: descriptor,
		backend: backend,
		opts:    opts,
		logger:  logger.Named("tx_executor").With("network", descriptor.Name),
	}
}

func (e *Executor) Network() network.Descriptor { return e.network }

// Send submits the transaction built by fn and blocks until it is mined.
// A reverted transaction is an error.
func (e *Executor) Send(ctx context.Context, op string, fn TxFunc) (*types.Receipt, error) {
	opts, err := e.opts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tx, err := fn(opts)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to submit transaction: %w", op, err)
	}

	e.logger.
		With("op", op).
		With("tx_hash", tx.Hash().Hex()).
		Info("transaction sent")

	receipt, err := e.wait(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	e.logger.
		With("op", op).
		With("block", receipt.BlockNumber).
		With("gas_used", receipt.GasUsed).
		Info("transaction confirmed")

	return receipt, nil
}

// Try runs Send and only logs failures. It reports whether the transaction succeeded.
func (e *Executor) Try(ctx context.Context, op string, fn TxFunc) (*types.Receipt, bool) {
	receipt, err := e.Send(ctx, op, fn)
	if err != nil {
		e.logger.
			With("op", op).
			With("err", err.Error()).
			Error("transaction failed, continuing")
		return nil, false
	}
	return receipt, true
}

// PendingNonce returns the next nonce of the signer on this network.
func (e *Executor) PendingNonce(ctx context.Context) (uint64, error) {
	opts, err := e.opts(ctx)
	if err != nil {
		return 0, err
	}
	nonce, err := e.backend.PendingNonceAt(ctx, opts.From)
	if err != nil {
		return 0, fmt.Errorf("failed to get pending nonce: %w", err)
	}
	return nonce, nil
}

// SubmitDeploy sends a contract creation with an explicit nonce and returns
// without waiting. Several submissions may be in flight at once.
func (e *Executor) SubmitDeploy(ctx context.Context, name contracts.ContractName, contract contracts.CompiledContract, nonce uint64, args ...any) (*PendingDeployment, error) {
	opts, err := e.opts(ctx)
	if err != nil {
		return nil, fmt.Errorf("deploy %s: %w", name, err)
	}
	opts.Nonce = new(big.Int).SetUint64(nonce)

	return e.submitDeploy(opts, name, contract, args...)
}

// Deploy sends a contract creation and waits for it.
func (e *Executor) Deploy(ctx context.Context, name contracts.ContractName, contract contracts.CompiledContract, args ...any) (Deployment, error) {
	opts, err := e.opts(ctx)
	if err != nil {
		return Deployment{}, fmt.Errorf("deploy %s: %w", name, err)
	}

	pending, err := e.submitDeploy(opts, name, contract, args...)
	if err != nil {
		return Deployment{}, err
	}
	return pending.Wait(ctx)
}

func (e *Executor) submitDeploy(opts *bind.TransactOpts, name contracts.ContractName, contract contracts.CompiledContract, args ...any) (*PendingDeployment, error) {
	address, tx, _, err := bind.DeployContract(opts, contract.ABI, contract.Bytecode, e.backend, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to deploy %s: %w", name, err)
	}

	e.logger.
		With("contract", name).
		With("address", address).
		With("tx_hash", tx.Hash().Hex()).
		Info("contract deployment transaction sent")

	return &PendingDeployment{executor: e, name: name, address: address, tx: tx}, nil
}

// Wait blocks until the deployment is mined and code exists at the address.
func (p *PendingDeployment) Wait(ctx context.Context) (Deployment, error) {
	receipt, err := p.executor.wait(ctx, p.tx)
	if err != nil {
		return Deployment{}, fmt.Errorf("deploy %s: %w", p.name, err)
	}

	code, err := p.executor.backend.CodeAt(ctx, p.address, nil)
	if err != nil {
		return Deployment{}, fmt.Errorf("deploy %s: failed to read code: %w", p.name, err)
	}
	if len(code) == 0 {
		return Deployment{}, fmt.Errorf("deploy %s: no code at %s after deployment", p.name, p.address.Hex())
	}

	p.executor.logger.
		With("contract", p.name).
		With("address", p.address).
		With("block", receipt.BlockNumber).
		Info("contract deployed")

	return Deployment{Name: p.name, Address: p.address, TxHash: p.tx.Hash()}, nil
}

func (e *Executor) wait(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, e.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for transaction %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("transaction %s failed with status %d", tx.Hash().Hex(), receipt.Status)
	}
	return receipt, nil
}
