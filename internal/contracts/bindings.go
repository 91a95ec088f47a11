package contracts

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type (
	// Strategy is the (address, bytes) pair the space uses for every pluggable strategy.
	Strategy struct {
		Addr   common.Address
		Params []byte
	}

	// IndexedStrategy references one of the space's voting strategies by index.
	IndexedStrategy struct {
		Index  uint8
		Params []byte
	}

	// InitializeCalldata is the space initialisation payload. Field names follow
	// the ABI component names.
	InitializeCalldata struct {
		Owner                                 common.Address
		VotingDelay                           uint32
		MinVotingDuration                     uint32
		MaxVotingDuration                     uint32
		ProposalValidationStrategy            Strategy
		ProposalValidationStrategyMetadataURI string
		DaoURI                                string
		MetadataURI                           string
		VotingStrategies                      []Strategy
		VotingStrategyMetadataURIs            []string
		Authenticators                        []common.Address
		TargetEndpoint                        common.Address
	}

	// ProposalRecord is a row of the space's proposal storage.
	ProposalRecord struct {
		Author                 common.Address
		StartBlockNumber       uint32
		ExecutionStrategy      common.Address
		MinEndBlockNumber      uint32
		MaxEndBlockNumber      uint32
		FinalizationStatus     uint8
		ExecutionPayloadHash   [32]byte
		ActiveVotingStrategies *big.Int
	}
)

type (
	// Space is the governance contract on the target chain.
	Space struct {
		address  common.Address
		contract *bind.BoundContract
	}

	// Authenticator is the gateway through which proposals and votes are routed.
	Authenticator struct {
		address  common.Address
		contract *bind.BoundContract
	}

	// ConfidentialEndpoint holds the encrypted tallies on the confidential chain.
	ConfidentialEndpoint struct {
		address  common.Address
		contract *bind.BoundContract
	}

	// TargetEndpoint relays execution from the target chain.
	TargetEndpoint struct {
		address  common.Address
		contract *bind.BoundContract
	}
)

func bindContract(meta *bind.MetaData, address common.Address, backend bind.ContractBackend) (*bind.BoundContract, error) {
	parsed, err := meta.GetAbi()
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI: %w", err)
	}
	return bind.NewBoundContract(address, *parsed, backend, backend, backend), nil
}

func NewSpace(address common.Address, backend bind.ContractBackend) (*Space, error) {
	contract, err := bindContract(SpaceMetaData, address, backend)
	if err != nil {
		return nil, fmt.Errorf("space: %w", err)
	}
	return &Space{address: address, contract: contract}, nil
}

func (s *Space) Address() common.Address { return s.address }

func (s *Space) Initialize(opts *bind.TransactOpts, input InitializeCalldata) (*types.Transaction, error) {
	return s.contract.Transact(opts, "initialize", input)
}

// Proposals reads the stored record of proposal id.
func (s *Space) Proposals(opts *bind.CallOpts, id *big.Int) (ProposalRecord, error) {
	var out []interface{}
	if err := s.contract.Call(opts, &out, "proposals", id); err != nil {
		return ProposalRecord{}, err
	}
	if len(out) != 8 {
		return ProposalRecord{}, fmt.Errorf("proposals returned %d values, expected 8", len(out))
	}

	return ProposalRecord{
		Author:                 *abi.ConvertType(out[0], new(common.Address)).(*common.Address),
		StartBlockNumber:       *abi.ConvertType(out[1], new(uint32)).(*uint32),
		ExecutionStrategy:      *abi.ConvertType(out[2], new(common.Address)).(*common.Address),
		MinEndBlockNumber:      *abi.ConvertType(out[3], new(uint32)).(*uint32),
		MaxEndBlockNumber:      *abi.ConvertType(out[4], new(uint32)).(*uint32),
		FinalizationStatus:     *abi.ConvertType(out[5], new(uint8)).(*uint8),
		ExecutionPayloadHash:   *abi.ConvertType(out[6], new([32]byte)).(*[32]byte),
		ActiveVotingStrategies: *abi.ConvertType(out[7], new(*big.Int)).(**big.Int),
	}, nil
}

func (s *Space) NextProposalID(opts *bind.CallOpts) (*big.Int, error) {
	var out []interface{}
	if err := s.contract.Call(opts, &out, "nextProposalId"); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (s *Space) Execute(opts *bind.TransactOpts, id *big.Int, payload []byte) (*types.Transaction, error) {
	return s.contract.Transact(opts, "execute", id, payload)
}

func NewAuthenticator(address common.Address, backend bind.ContractBackend) (*Authenticator, error) {
	contract, err := bindContract(AuthenticatorMetaData, address, backend)
	if err != nil {
		return nil, fmt.Errorf("authenticator: %w", err)
	}
	return &Authenticator{address: address, contract: contract}, nil
}

func (a *Authenticator) Address() common.Address { return a.address }

// Authenticate forwards an action to target. opts.Value carries the deposit.
func (a *Authenticator) Authenticate(opts *bind.TransactOpts, target common.Address, selector [4]byte, data []byte) (*types.Transaction, error) {
	return a.contract.Transact(opts, "authenticate", target, selector, data)
}

func NewConfidentialEndpoint(address common.Address, backend bind.ContractBackend) (*ConfidentialEndpoint, error) {
	contract, err := bindContract(ConfidentialEndpointMetaData, address, backend)
	if err != nil {
		return nil, fmt.Errorf("confidential endpoint: %w", err)
	}
	return &ConfidentialEndpoint{address: address, contract: contract}, nil
}

func (e *ConfidentialEndpoint) Address() common.Address { return e.address }

func (e *ConfidentialEndpoint) Initialize(opts *bind.TransactOpts, targetEndpoint common.Address) (*types.Transaction, error) {
	return e.contract.Transact(opts, "initialize", targetEndpoint)
}

// GetVotePower returns the vote power for choice, re-encrypted to publicKey.
func (e *ConfidentialEndpoint) GetVotePower(opts *bind.CallOpts, id *big.Int, choice uint8, publicKey [32]byte) ([]byte, error) {
	var out []interface{}
	if err := e.contract.Call(opts, &out, "getVotePower", id, choice, publicKey); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]byte)).(*[]byte), nil
}

func (e *ConfidentialEndpoint) GetIsExecuted(opts *bind.CallOpts, id *big.Int) (bool, error) {
	var out []interface{}
	if err := e.contract.Call(opts, &out, "getIsExecuted", id); err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

func NewTargetEndpoint(address common.Address, backend bind.ContractBackend) (*TargetEndpoint, error) {
	contract, err := bindContract(TargetEndpointMetaData, address, backend)
	if err != nil {
		return nil, fmt.Errorf("target endpoint: %w", err)
	}
	return &TargetEndpoint{address: address, contract: contract}, nil
}

func (e *TargetEndpoint) Address() common.Address { return e.address }

func (e *TargetEndpoint) Initialize(opts *bind.TransactOpts, confidentialEndpoint common.Address) (*types.Transaction, error) {
	return e.contract.Transact(opts, "initialize", confidentialEndpoint)
}
