package crossdeploy

import (
	"math/big"

	"github.com/compose-network/crossdeploy/internal/contracts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// The pipeline talks to each contract only through these.
type (
	space interface {
		Address() common.Address
		Initialize(opts *bind.TransactOpts, input contracts.InitializeCalldata) (*types.Transaction, error)
		Proposals(opts *bind.CallOpts, id *big.Int) (contracts.ProposalRecord, error)
		NextProposalID(opts *bind.CallOpts) (*big.Int, error)
		Execute(opts *bind.TransactOpts, id *big.Int, payload []byte) (*types.Transaction, error)
	}

	authenticator interface {
		Authenticate(opts *bind.TransactOpts, target common.Address, selector [4]byte, data []byte) (*types.Transaction, error)
	}

	confidentialEndpoint interface {
		Address() common.Address
		Initialize(opts *bind.TransactOpts, targetEndpoint common.Address) (*types.Transaction, error)
		GetVotePower(opts *bind.CallOpts, id *big.Int, choice uint8, publicKey [32]byte) ([]byte, error)
		GetIsExecuted(opts *bind.CallOpts, id *big.Int) (bool, error)
	}

	targetEndpoint interface {
		Initialize(opts *bind.TransactOpts, confidentialEndpoint common.Address) (*types.Transaction, error)
	}

	binder interface {
		Space(address common.Address) (space, error)
		Authenticator(address common.Address) (authenticator, error)
		ConfidentialEndpoint(address common.Address) (confidentialEndpoint, error)
		TargetEndpoint(address common.Address) (targetEndpoint, error)
	}
)

// chainBinder binds contracts against the live clients of each network.
type chainBinder struct {
	target       bind.ContractBackend
	confidential bind.ContractBackend
}

func (b chainBinder) Space(address common.Address) (space, error) {
	return contracts.NewSpace(address, b.target)
}

func (b chainBinder) Authenticator(address common.Address) (authenticator, error) {
	return contracts.NewAuthenticator(address, b.target)
}

func (b chainBinder) ConfidentialEndpoint(address common.Address) (confidentialEndpoint, error) {
	return contracts.NewConfidentialEndpoint(address, b.confidential)
}

func (b chainBinder) TargetEndpoint(address common.Address) (targetEndpoint, error) {
	return contracts.NewTargetEndpoint(address, b.target)
}
