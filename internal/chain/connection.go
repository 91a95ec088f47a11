package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/compose-network/crossdeploy/internal/logger"
	"github.com/compose-network/crossdeploy/internal/network"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/sync/errgroup"
)

type (
	// Connection is a provider plus signing key bound to one network. It is
	// created once per run and owned by the pipeline.
	Connection struct {
		Network  network.Descriptor
		Client   *ethclient.Client
		Key      *ecdsa.PrivateKey
		Address  common.Address
		GasLimit uint64
	}

	// Connections holds one connection per network role.
	Connections struct {
		Confidential *Connection
		Target       *Connection
	}
)

// Connect dials the network and checks that the node serves the expected chain.
func Connect(ctx context.Context, descriptor network.Descriptor, secret string, gasLimit uint64) (*Connection, error) {
	log := logger.Named("chain_connection").With("network", descriptor.Name)

	key, err := ParsePrivateKey(secret)
	if err != nil {
		return nil, err
	}
	address, err := AddressFromPrivateKey(key)
	if err != nil {
		return nil, err
	}

	log.With("url", descriptor.RPCURL).Info("dialing network RPC")
	client, err := ethclient.DialContext(ctx, descriptor.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", descriptor.RPCURL, err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to get chain ID from %s: %w", descriptor.Name, err)
	}
	if chainID.Uint64() != descriptor.ChainID {
		client.Close()
		return nil, fmt.Errorf("network %s reports chain ID %s, expected %d", descriptor.Name, chainID, descriptor.ChainID)
	}

	log.With("chain_id", chainID).With("signer", address.Hex()).Info("connected")

	return &Connection{
		Network:  descriptor,
		Client:   client,
		Key:      key,
		Address:  address,
		GasLimit: gasLimit,
	}, nil
}

// DialAll opens the confidential and target connections concurrently.
func DialAll(ctx context.Context, secret string, confidential, target network.Descriptor, gasLimit uint64) (*Connections, error) {
	var (
		conns Connections
		group errgroup.Group
	)

	group.Go(func() error {
		conn, err := Connect(ctx, confidential, secret, gasLimit)
		if err != nil {
			return fmt.Errorf("confidential network: %w", err)
		}
		conns.Confidential = conn
		return nil
	})
	group.Go(func() error {
		conn, err := Connect(ctx, target, secret, gasLimit)
		if err != nil {
			return fmt.Errorf("target network: %w", err)
		}
		conns.Target = conn
		return nil
	})

	if err := group.Wait(); err != nil {
		conns.Close()
		return nil, err
	}

	return &conns, nil
}

// TransactOpts returns keyed transact options for this network. The gas limit
// is left to estimation when none was configured.
func (c *Connection) TransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(c.Key, new(big.Int).SetUint64(c.Network.ChainID))
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}

	auth.Context = ctx
	auth.GasLimit = c.GasLimit

	return auth, nil
}

func (c *Connection) Close() {
	if c != nil && c.Client != nil {
		c.Client.Close()
	}
}

func (c *Connections) Close() {
	c.Confidential.Close()
	c.Target.Close()
}
