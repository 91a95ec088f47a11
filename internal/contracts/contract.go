package contracts

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
)

type (
	ContractName     string
	CompiledContract struct {
		ABI      abi.ABI
		Bytecode []byte
	}
)

const (
	ContractNameConfidentialEndpoint       ContractName = "IncoContract"
	ContractNameTargetEndpoint             ContractName = "TargetContract"
	ContractNameSpace                      ContractName = "Space"
	ContractNameAuthenticator              ContractName = "VanillaAuthenticator"
	ContractNameProposalValidationStrategy ContractName = "VanillaProposalValidationStrategy"
	ContractNameVotingStrategy             ContractName = "VanillaVotingStrategy"
	ContractNameExecutionStrategy          ContractName = "VanillaExecutionStrategy"
)

// Required lists every contract a crossdeploy run deploys.
var Required = []ContractName{
	ContractNameConfidentialEndpoint,
	ContractNameTargetEndpoint,
	ContractNameSpace,
	ContractNameAuthenticator,
	ContractNameProposalValidationStrategy,
	ContractNameVotingStrategy,
	ContractNameExecutionStrategy,
}

var Contracts = func() map[ContractName]struct{} {
	set := make(map[ContractName]struct{}, len(Required))
	for _, name := range Required {
		set[name] = struct{}{}
	}
	return set
}()
