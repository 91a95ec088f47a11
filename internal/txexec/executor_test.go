package txexec_test

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/compose-network/crossdeploy/internal/contracts"
	"github.com/compose-network/crossdeploy/internal/txexec"
	"github.com/compose-network/crossdeploy/internal/txexec/txexectest"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	qt "github.com/frankban/quicktest"
)

func transfer(ctx context.Context, backend *txexectest.Backend, nonce uint64) txexec.TxFunc {
	return func(opts *bind.TransactOpts) (*types.Transaction, error) {
		tx := types.NewTransaction(nonce, common.HexToAddress("0x01"), big.NewInt(0), 21_000, big.NewInt(1), nil)
		signed, err := opts.Signer(opts.From, tx)
		if err != nil {
			return nil, err
		}
		return signed, backend.SendTransaction(ctx, signed)
	}
}

func emptyContract(c *qt.C) contracts.CompiledContract {
	parsed, err := abi.JSON(strings.NewReader(`[]`))
	c.Assert(err, qt.IsNil)
	return contracts.CompiledContract{ABI: parsed, Bytecode: []byte{0x60, 0x80}}
}

func TestSend(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	backend := &txexectest.Backend{Name: "testnet", Reverted: map[uint64]bool{1: true}}
	executor, _ := txexectest.NewExecutor(t, backend)

	receipt, err := executor.Send(ctx, "first", transfer(ctx, backend, 0))
	c.Assert(err, qt.IsNil)
	c.Assert(receipt.Status, qt.Equals, types.ReceiptStatusSuccessful)

	_, err = executor.Send(ctx, "second", transfer(ctx, backend, 1))
	c.Assert(err, qt.ErrorMatches, `second: transaction 0x[0-9a-f]+ failed with status 0`)
}

func TestTry(t *testing.T) {
	c := qt.New(t)

	executor, _ := txexectest.NewExecutor(t, &txexectest.Backend{Name: "testnet"})

	receipt, ok := executor.Try(context.Background(), "vote", func(*bind.TransactOpts) (*types.Transaction, error) {
		return nil, errors.New("execution reverted")
	})
	c.Assert(ok, qt.IsFalse)
	c.Assert(receipt, qt.IsNil)
}

func TestSubmitDeployUsesExplicitNonces(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	backend := &txexectest.Backend{Name: "testnet", Nonce: 5, Code: []byte{0x60}}
	executor, from := txexectest.NewExecutor(t, backend)
	compiled := emptyContract(c)

	start, err := executor.PendingNonce(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(start, qt.Equals, uint64(5))

	first, err := executor.SubmitDeploy(ctx, contracts.ContractNameSpace, compiled, start)
	c.Assert(err, qt.IsNil)
	second, err := executor.SubmitDeploy(ctx, contracts.ContractNameAuthenticator, compiled, start+1)
	c.Assert(err, qt.IsNil)
	c.Assert(backend.Sent(), qt.HasLen, 2)

	deployed, err := second.Wait(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(deployed.Name, qt.Equals, contracts.ContractNameAuthenticator)
	c.Assert(deployed.Address, qt.Equals, crypto.CreateAddress(from, 6))

	deployed, err = first.Wait(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(deployed.Address, qt.Equals, crypto.CreateAddress(from, 5))
	c.Assert(deployed.TxHash, qt.Equals, backend.Sent()[0].Hash())
}

func TestDeployFollowsPendingNonce(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	backend := &txexectest.Backend{Name: "testnet", Nonce: 3, Code: []byte{0x60}}
	executor, from := txexectest.NewExecutor(t, backend)

	first, err := executor.Deploy(ctx, contracts.ContractNameConfidentialEndpoint, emptyContract(c))
	c.Assert(err, qt.IsNil)
	second, err := executor.Deploy(ctx, contracts.ContractNameExecutionStrategy, emptyContract(c))
	c.Assert(err, qt.IsNil)

	c.Assert(first.Address, qt.Equals, crypto.CreateAddress(from, 3))
	c.Assert(second.Address, qt.Equals, crypto.CreateAddress(from, 4))

	sent := backend.Sent()
	c.Assert(sent, qt.HasLen, 2)
	c.Assert(sent[0].Nonce(), qt.Equals, uint64(3))
	c.Assert(sent[1].Nonce(), qt.Equals, uint64(4))
}

func TestDeployWithoutCodeFails(t *testing.T) {
	c := qt.New(t)

	executor, _ := txexectest.NewExecutor(t, &txexectest.Backend{Name: "testnet"})

	_, err := executor.Deploy(context.Background(), contracts.ContractNameSpace, emptyContract(c))
	c.Assert(err, qt.ErrorMatches, `deploy Space: no code at 0x[0-9a-fA-F]+ after deployment`)
}
