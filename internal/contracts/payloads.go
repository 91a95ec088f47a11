package contracts

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Choice is a ballot value. The numbering is fixed by the voting contracts.
type Choice uint8

const (
	ChoiceAgainst Choice = 0
	ChoiceFor     Choice = 1
	ChoiceAbstain Choice = 2
)

func (c Choice) String() string {
	switch c {
	case ChoiceAgainst:
		return "against"
	case ChoiceFor:
		return "for"
	case ChoiceAbstain:
		return "abstain"
	default:
		return fmt.Sprintf("choice(%d)", uint8(c))
	}
}

// Authenticator action selectors.
var (
	ProposeSelector = [4]byte{0xaa, 0xd8, 0x3f, 0x3b}
	VoteSelector    = [4]byte{0x95, 0x4e, 0xe6, 0xda}
)

var (
	strategyComponents = []abi.ArgumentMarshaling{
		{Name: "addr", Type: "address"},
		{Name: "params", Type: "bytes"},
	}
	indexedStrategyComponents = []abi.ArgumentMarshaling{
		{Name: "index", Type: "uint8"},
		{Name: "params", Type: "bytes"},
	}

	proposeArguments = abi.Arguments{
		{Type: mustType("address", nil)},
		{Type: mustType("string", nil)},
		{Type: mustType("tuple", strategyComponents)},
		{Type: mustType("bytes", nil)},
	}
	voteArguments = abi.Arguments{
		{Type: mustType("address", nil)},
		{Type: mustType("uint256", nil)},
		{Type: mustType("bytes", nil)},
		{Type: mustType("tuple[]", indexedStrategyComponents)},
		{Type: mustType("string", nil)},
	}
	proposalRecordArguments = abi.Arguments{
		{Type: mustType("address", nil)},
		{Type: mustType("uint32", nil)},
		{Type: mustType("address", nil)},
		{Type: mustType("uint32", nil)},
		{Type: mustType("uint32", nil)},
		{Type: mustType("uint8", nil)},
		{Type: mustType("bytes32", nil)},
		{Type: mustType("uint256", nil)},
	}
)

func mustType(t string, components []abi.ArgumentMarshaling) abi.Type {
	typ, err := abi.NewType(t, "", components)
	if err != nil {
		panic(fmt.Sprintf("invalid abi type %s: %v", t, err))
	}
	return typ
}

// EncodePropose packs (author, metadataURI, (strategy, params), userParams).
func EncodePropose(author common.Address, metadataURI string, execution Strategy, userParams []byte) ([]byte, error) {
	data, err := proposeArguments.Pack(author, metadataURI, execution, nonNil(userParams))
	if err != nil {
		return nil, fmt.Errorf("failed to encode propose payload: %w", err)
	}
	return data, nil
}

// EncodeVote packs (voter, proposalId, encryptedChoice, strategies, metadataURI).
func EncodeVote(voter common.Address, proposalID *big.Int, encryptedChoice []byte, strategies []IndexedStrategy, metadataURI string) ([]byte, error) {
	if strategies == nil {
		strategies = []IndexedStrategy{}
	}
	data, err := voteArguments.Pack(voter, proposalID, nonNil(encryptedChoice), strategies, metadataURI)
	if err != nil {
		return nil, fmt.Errorf("failed to encode vote payload: %w", err)
	}
	return data, nil
}

// EncodeProposalRecord packs a stored proposal as a flat tuple for relaying.
func EncodeProposalRecord(p ProposalRecord) ([]byte, error) {
	active := p.ActiveVotingStrategies
	if active == nil {
		active = new(big.Int)
	}
	data, err := proposalRecordArguments.Pack(
		p.Author,
		p.StartBlockNumber,
		p.ExecutionStrategy,
		p.MinEndBlockNumber,
		p.MaxEndBlockNumber,
		p.FinalizationStatus,
		p.ExecutionPayloadHash,
		active,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to encode proposal record: %w", err)
	}
	return data, nil
}

// ProposalCreatedTopic is the event signature hash of ProposalCreated.
func ProposalCreatedTopic() common.Hash {
	parsed, err := SpaceMetaData.GetAbi()
	if err != nil {
		return common.Hash{}
	}
	return parsed.Events["ProposalCreated"].ID
}

// ProposalIDFromReceipt extracts the id of the proposal created by space in
// receipt. The id is the first data word of the ProposalCreated log.
func ProposalIDFromReceipt(receipt *types.Receipt, space common.Address) (*big.Int, bool) {
	if receipt == nil {
		return nil, false
	}

	topic := ProposalCreatedTopic()
	for _, l := range receipt.Logs {
		if l.Address != space || len(l.Topics) == 0 || l.Topics[0] != topic {
			continue
		}
		if len(l.Data) < common.HashLength {
			continue
		}
		return new(big.Int).SetBytes(l.Data[:common.HashLength]), true
	}
	return nil, false
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
