// Package txexectest provides an in-memory chain backend for executor tests.
package txexectest

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/compose-network/crossdeploy/internal/network"
	"github.com/compose-network/crossdeploy/internal/txexec"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Journal records backend events across networks in the order they happen.
type Journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *Journal) Add(format string, args ...any) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, fmt.Sprintf(format, args...))
}

func (j *Journal) Entries() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

// Backend mines every sent transaction immediately. Transactions whose nonce
// is in Reverted get a failed receipt.
type Backend struct {
	bind.ContractBackend

	Name     string
	Nonce    uint64
	Code     []byte
	Reverted map[uint64]bool
	Journal  *Journal

	mu   sync.Mutex
	sent []*types.Transaction
}

// PendingNonceAt counts sent transactions on top of Nonce, like a node's
// pending state.
func (b *Backend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Nonce + uint64(len(b.sent)), nil
}

func (b *Backend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	b.mu.Lock()
	b.sent = append(b.sent, tx)
	b.mu.Unlock()

	b.Journal.Add("%s send %d", b.Name, tx.Nonce())
	return nil
}

func (b *Backend) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, tx := range b.sent {
		if tx.Hash() != hash {
			continue
		}
		status := types.ReceiptStatusSuccessful
		if b.Reverted[tx.Nonce()] {
			status = types.ReceiptStatusFailed
		}
		b.Journal.Add("%s confirm %d", b.Name, tx.Nonce())
		return &types.Receipt{Status: status, TxHash: hash, BlockNumber: big.NewInt(1)}, nil
	}
	return nil, errors.New("unknown transaction")
}

func (b *Backend) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return b.Code, nil
}

// Sent returns the transactions submitted so far.
func (b *Backend) Sent() []*types.Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*types.Transaction(nil), b.sent...)
}

// NewExecutor returns an executor signing with a fresh key against backend.
func NewExecutor(t testing.TB, backend *Backend) (*txexec.Executor, common.Address) {
	t.Helper()

	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	from := crypto.PubkeyToAddress(key.PublicKey)

	opts := func(ctx context.Context) (*bind.TransactOpts, error) {
		auth, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(1337))
		if err != nil {
			return nil, err
		}
		auth.Context = ctx
		auth.GasLimit = 100_000
		auth.GasPrice = big.NewInt(1)
		return auth, nil
	}
	descriptor := network.Descriptor{Name: backend.Name, ChainID: 1337, RPCURL: "memory://" + backend.Name}
	return txexec.New(descriptor, backend, opts), from
}
