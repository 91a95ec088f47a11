package confidential

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"github.com/compose-network/crossdeploy/internal/logger"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var (
	// PublicKeyAddress is the precompile serving the runtime public key.
	PublicKeyAddress = common.HexToAddress("0x000000000000000000000000000000000000005d")
	// publicKeyRequest is the fhePubKey selector followed by the library index byte.
	publicKeyRequest = []byte{0xd9, 0xd4, 0x7b, 0xb0, 0x01}

	bytesArguments = abi.Arguments{{Type: mustBytesType()}}
)

func mustBytesType() abi.Type {
	typ, err := abi.NewType("bytes", "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

type (
	// Caller is the read-only part of a chain client the provider needs.
	Caller interface {
		CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
		ChainID(ctx context.Context) (*big.Int, error)
	}

	// Provider caches the confidential chain's id and runtime public key.
	// They are fetched on first use and never re-queried or changed afterwards;
	// a failed fetch is not cached.
	Provider struct {
		caller Caller
		logger *slog.Logger

		mu        sync.Mutex
		loaded    bool
		chainID   *big.Int
		publicKey []byte
	}
)

func NewProvider(caller Caller) *Provider {
	return &Provider{
		caller: caller,
		logger: logger.Named("confidential_provider"),
	}
}

// PublicKey returns the runtime public key, querying the chain only on the first call.
func (p *Provider) PublicKey(ctx context.Context) ([]byte, error) {
	if err := p.load(ctx); err != nil {
		return nil, err
	}
	return common.CopyBytes(p.publicKey), nil
}

// ChainID returns the confidential chain id.
func (p *Provider) ChainID(ctx context.Context) (*big.Int, error) {
	if err := p.load(ctx); err != nil {
		return nil, err
	}
	return new(big.Int).Set(p.chainID), nil
}

func (p *Provider) load(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loaded {
		return nil
	}

	chainID, err := p.caller.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("failed to get confidential chain ID: %w", err)
	}

	output, err := p.caller.CallContract(ctx, ethereum.CallMsg{
		To:   &PublicKeyAddress,
		Data: publicKeyRequest,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to query runtime public key: %w", err)
	}

	values, err := bytesArguments.Unpack(output)
	if err != nil {
		return fmt.Errorf("failed to decode runtime public key: %w", err)
	}
	publicKey, ok := values[0].([]byte)
	if !ok || len(publicKey) == 0 {
		return fmt.Errorf("runtime public key is empty")
	}

	p.chainID = chainID
	p.publicKey = publicKey
	p.loaded = true

	p.logger.
		With("chain_id", chainID).
		With("key_len", len(publicKey)).
		Info("runtime public key loaded")

	return nil
}
