package confidential

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/compose-network/crossdeploy/internal/chain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"golang.org/x/crypto/nacl/box"
	"golang.org/x/sync/errgroup"
)

// ErrTokenNotBound is returned when an account has no token for a contract.
var ErrTokenNotBound = errors.New("no re-encryption token bound to contract")

const (
	tokenDomainName    = "Authorization token"
	tokenDomainVersion = "1"
)

type (
	// Token authorises re-encryption of a contract's outputs to PublicKey.
	Token struct {
		Contract  common.Address
		PublicKey [keySize]byte
		Signature []byte
	}

	binding struct {
		token   Token
		public  *[keySize]byte
		private *[keySize]byte
	}

	// Instance is the per-account view of the confidential runtime. Each bound
	// contract gets its own ephemeral keypair.
	Instance struct {
		provider *Provider
		account  chain.Account

		mu       sync.RWMutex
		bindings map[common.Address]binding
	}
)

func NewInstance(provider *Provider, account chain.Account) *Instance {
	return &Instance{
		provider: provider,
		account:  account,
		bindings: make(map[common.Address]binding),
	}
}

func (i *Instance) Account() chain.Account { return i.account }

// BindToken generates an ephemeral keypair for contract and signs a token over it.
// Binding the same contract again replaces the previous token.
func (i *Instance) BindToken(ctx context.Context, contract common.Address) (Token, error) {
	chainID, err := i.provider.ChainID(ctx)
	if err != nil {
		return Token{}, err
	}

	public, private, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return Token{}, fmt.Errorf("failed to generate keypair: %w", err)
	}

	hash, err := TokenHash(chainID, contract, *public)
	if err != nil {
		return Token{}, err
	}
	signature, err := crypto.Sign(hash, i.account.Key)
	if err != nil {
		return Token{}, fmt.Errorf("failed to sign token: %w", err)
	}
	signature[crypto.RecoveryIDOffset] += 27

	token := Token{Contract: contract, PublicKey: *public, Signature: signature}

	i.mu.Lock()
	i.bindings[contract] = binding{token: token, public: public, private: private}
	i.mu.Unlock()

	return token, nil
}

// Token returns the token bound to contract.
func (i *Instance) Token(contract common.Address) (Token, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	b, ok := i.bindings[contract]
	if !ok {
		return Token{}, fmt.Errorf("%w: %s for %s", ErrTokenNotBound, contract.Hex(), i.account.Name)
	}
	return b.token, nil
}

// Decrypt opens a value that contract re-encrypted to this account's token.
func (i *Instance) Decrypt(contract common.Address, ciphertext []byte) (*big.Int, error) {
	i.mu.RLock()
	b, ok := i.bindings[contract]
	i.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s for %s", ErrTokenNotBound, contract.Hex(), i.account.Name)
	}

	plain, err := Open(b.public, b.private, ciphertext)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(plain), nil
}

// Encrypt8 seals an 8-bit value to the runtime public key. Only curve25519
// runtime keys are supported; any other key fails with ErrUnsupportedRuntimeKey.
func (i *Instance) Encrypt8(ctx context.Context, value uint8) ([]byte, error) {
	key, err := i.provider.PublicKey(ctx)
	if err != nil {
		return nil, err
	}
	recipient, err := PublicKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("runtime key cannot seal a ballot: %w", err)
	}
	return Seal(recipient, []byte{value})
}

// TokenHash is the EIP-712 digest signed for a token.
func TokenHash(chainID *big.Int, contract common.Address, publicKey [keySize]byte) ([]byte, error) {
	typed := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"Reencrypt": {
				{Name: "publicKey", Type: "bytes32"},
			},
		},
		PrimaryType: "Reencrypt",
		Domain: apitypes.TypedDataDomain{
			Name:              tokenDomainName,
			Version:           tokenDomainVersion,
			ChainId:           (*math.HexOrDecimal256)(chainID),
			VerifyingContract: contract.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"publicKey": hexutil.Encode(publicKey[:]),
		},
	}

	hash, _, err := apitypes.TypedDataAndHash(typed)
	if err != nil {
		return nil, fmt.Errorf("failed to hash token: %w", err)
	}
	return hash, nil
}

// CreateInstances builds one instance per account and binds each to contract.
// Accounts are independent so tokens are generated concurrently.
func CreateInstances(ctx context.Context, provider *Provider, accounts []chain.Account, contract common.Address) ([]*Instance, error) {
	// Load once before fanning out.
	if _, err := provider.PublicKey(ctx); err != nil {
		return nil, err
	}

	instances := make([]*Instance, len(accounts))
	group, ctx := errgroup.WithContext(ctx)
	for idx, account := range accounts {
		instances[idx] = NewInstance(provider, account)
		group.Go(func() error {
			if _, err := instances[idx].BindToken(ctx, contract); err != nil {
				return fmt.Errorf("failed to bind token for %s: %w", account.Name, err)
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return instances, nil
}
