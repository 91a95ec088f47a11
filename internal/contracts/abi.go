package contracts

import (
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
)

// The ABIs below only describe the members the pipeline calls. Deployment
// uses the full ABI from the compiled artifacts.

// SpaceMetaData contains the called surface of the Space contract.
var SpaceMetaData = &bind.MetaData{
	ABI: `[
  {"type":"function","name":"initialize","stateMutability":"nonpayable","outputs":[],"inputs":[
    {"name":"input","type":"tuple","internalType":"struct InitializeCalldata","components":[
      {"name":"owner","type":"address"},
      {"name":"votingDelay","type":"uint32"},
      {"name":"minVotingDuration","type":"uint32"},
      {"name":"maxVotingDuration","type":"uint32"},
      {"name":"proposalValidationStrategy","type":"tuple","internalType":"struct Strategy","components":[
        {"name":"addr","type":"address"},
        {"name":"params","type":"bytes"}]},
      {"name":"proposalValidationStrategyMetadataURI","type":"string"},
      {"name":"daoURI","type":"string"},
      {"name":"metadataURI","type":"string"},
      {"name":"votingStrategies","type":"tuple[]","internalType":"struct Strategy[]","components":[
        {"name":"addr","type":"address"},
        {"name":"params","type":"bytes"}]},
      {"name":"votingStrategyMetadataURIs","type":"string[]"},
      {"name":"authenticators","type":"address[]"},
      {"name":"targetEndpoint","type":"address"}]}]},
  {"type":"function","name":"proposals","stateMutability":"view","inputs":[
    {"name":"proposalId","type":"uint256"}],"outputs":[
    {"name":"author","type":"address"},
    {"name":"startBlockNumber","type":"uint32"},
    {"name":"executionStrategy","type":"address"},
    {"name":"minEndBlockNumber","type":"uint32"},
    {"name":"maxEndBlockNumber","type":"uint32"},
    {"name":"finalizationStatus","type":"uint8"},
    {"name":"executionPayloadHash","type":"bytes32"},
    {"name":"activeVotingStrategies","type":"uint256"}]},
  {"type":"function","name":"nextProposalId","stateMutability":"view","inputs":[],"outputs":[
    {"name":"","type":"uint256"}]},
  {"type":"function","name":"execute","stateMutability":"nonpayable","outputs":[],"inputs":[
    {"name":"proposalId","type":"uint256"},
    {"name":"executionPayload","type":"bytes"}]},
  {"type":"event","name":"ProposalCreated","anonymous":false,"inputs":[
    {"name":"proposalId","type":"uint256","indexed":false},
    {"name":"author","type":"address","indexed":false},
    {"name":"proposal","type":"tuple","indexed":false,"internalType":"struct Proposal","components":[
      {"name":"author","type":"address"},
      {"name":"startBlockNumber","type":"uint32"},
      {"name":"executionStrategy","type":"address"},
      {"name":"minEndBlockNumber","type":"uint32"},
      {"name":"maxEndBlockNumber","type":"uint32"},
      {"name":"finalizationStatus","type":"uint8"},
      {"name":"executionPayloadHash","type":"bytes32"},
      {"name":"activeVotingStrategies","type":"uint256"}]},
    {"name":"metadataUri","type":"string","indexed":false},
    {"name":"payload","type":"bytes","indexed":false}]}
]`,
}

// AuthenticatorMetaData contains the gateway entry point of the authenticator.
var AuthenticatorMetaData = &bind.MetaData{
	ABI: `[
  {"type":"function","name":"authenticate","stateMutability":"payable","outputs":[],"inputs":[
    {"name":"target","type":"address"},
    {"name":"functionSelector","type":"bytes4"},
    {"name":"data","type":"bytes"}]}
]`,
}

// ConfidentialEndpointMetaData contains the called surface of the confidential endpoint.
var ConfidentialEndpointMetaData = &bind.MetaData{
	ABI: `[
  {"type":"function","name":"initialize","stateMutability":"nonpayable","outputs":[],"inputs":[
    {"name":"targetEndpoint","type":"address"}]},
  {"type":"function","name":"getVotePower","stateMutability":"view","inputs":[
    {"name":"proposalId","type":"uint256"},
    {"name":"choice","type":"uint8"},
    {"name":"publicKey","type":"bytes32"}],"outputs":[
    {"name":"","type":"bytes"}]},
  {"type":"function","name":"getIsExecuted","stateMutability":"view","inputs":[
    {"name":"proposalId","type":"uint256"}],"outputs":[
    {"name":"","type":"bool"}]}
]`,
}

// TargetEndpointMetaData contains the called surface of the target endpoint.
var TargetEndpointMetaData = &bind.MetaData{
	ABI: `[
  {"type":"function","name":"initialize","stateMutability":"nonpayable","outputs":[],"inputs":[
    {"name":"confidentialEndpoint","type":"address"}]}
]`,
}
