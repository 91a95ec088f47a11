package contracts

import (
	"context"
	"math/big"
	"testing"

	"github.com/compose-network/crossdeploy/internal/contracts/contractstest"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	qt "github.com/frankban/quicktest"
)

func TestEncodeVote(t *testing.T) {
	c := qt.New(t)

	voter := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	encrypted := []byte{1, 2, 3, 4}

	data, err := EncodeVote(voter, big.NewInt(7), encrypted, []IndexedStrategy{{Index: 0, Params: []byte{}}}, "")
	c.Assert(err, qt.IsNil)

	gotVoter, gotID, gotChoice, err := contractstest.DecodeVote(data)
	c.Assert(err, qt.IsNil)
	c.Assert(gotVoter, qt.Equals, voter)
	c.Assert(gotID.Int64(), qt.Equals, int64(7))
	c.Assert(gotChoice, qt.DeepEquals, encrypted)
}

func TestEncodePropose(t *testing.T) {
	c := qt.New(t)

	author := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	strategy := Strategy{Addr: common.HexToAddress("0x01"), Params: nil}

	data, err := EncodePropose(author, "", strategy, nil)
	c.Assert(err, qt.IsNil)
	// head: 4 words; the address sits in the first one
	c.Assert(len(data) > 4*32, qt.IsTrue)
	c.Assert(common.BytesToAddress(data[:32]), qt.Equals, author)
}

func TestEncodeProposalRecord(t *testing.T) {
	c := qt.New(t)

	record := ProposalRecord{
		Author:            common.HexToAddress("0xaa"),
		StartBlockNumber:  10,
		ExecutionStrategy: common.HexToAddress("0xbb"),
		MinEndBlockNumber: 10,
		MaxEndBlockNumber: 1010,
	}
	data, err := EncodeProposalRecord(record)
	c.Assert(err, qt.IsNil)
	c.Assert(data, qt.HasLen, 8*32)
	c.Assert(new(big.Int).SetBytes(data[4*32:5*32]).Int64(), qt.Equals, int64(1010))
}

func TestProposalIDFromReceipt(t *testing.T) {
	c := qt.New(t)

	space := common.HexToAddress("0x5ace")
	id := common.BigToHash(big.NewInt(3))

	receipt := &types.Receipt{Logs: []*types.Log{
		{Address: common.HexToAddress("0x0e"), Topics: []common.Hash{ProposalCreatedTopic()}, Data: common.BigToHash(big.NewInt(9)).Bytes()},
		{Address: space, Topics: []common.Hash{{0x01}}, Data: common.BigToHash(big.NewInt(8)).Bytes()},
		{Address: space, Topics: []common.Hash{ProposalCreatedTopic()}, Data: append(id.Bytes(), make([]byte, 64)...)},
	}}

	got, ok := ProposalIDFromReceipt(receipt, space)
	c.Assert(ok, qt.IsTrue)
	c.Assert(got.Int64(), qt.Equals, int64(3))

	_, ok = ProposalIDFromReceipt(&types.Receipt{}, space)
	c.Assert(ok, qt.IsFalse)
}

type callBackend struct {
	bind.ContractBackend
	output []byte
	calls  []ethereum.CallMsg
}

func (b *callBackend) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	b.calls = append(b.calls, msg)
	return b.output, nil
}

func TestSpaceProposals(t *testing.T) {
	c := qt.New(t)

	parsed, err := SpaceMetaData.GetAbi()
	c.Assert(err, qt.IsNil)

	author := common.HexToAddress("0xaa")
	output, err := parsed.Methods["proposals"].Outputs.Pack(
		author, uint32(5), common.HexToAddress("0xbb"), uint32(5), uint32(1005), uint8(0), [32]byte{0x01}, big.NewInt(1),
	)
	c.Assert(err, qt.IsNil)

	backend := &callBackend{output: output}
	space, err := NewSpace(common.HexToAddress("0x5ace"), backend)
	c.Assert(err, qt.IsNil)

	record, err := space.Proposals(&bind.CallOpts{Context: context.Background()}, big.NewInt(1))
	c.Assert(err, qt.IsNil)
	c.Assert(record.Author, qt.Equals, author)
	c.Assert(record.MaxEndBlockNumber, qt.Equals, uint32(1005))
	c.Assert(record.ExecutionPayloadHash, qt.Equals, [32]byte{0x01})
	c.Assert(record.ActiveVotingStrategies.Int64(), qt.Equals, int64(1))
	c.Assert(backend.calls, qt.HasLen, 1)
}

func TestInitializeCalldataMatchesABI(t *testing.T) {
	c := qt.New(t)

	parsed, err := SpaceMetaData.GetAbi()
	c.Assert(err, qt.IsNil)

	_, err = parsed.Pack("initialize", InitializeCalldata{
		Owner:                                 common.HexToAddress("0x01"),
		MaxVotingDuration:                     1000,
		ProposalValidationStrategy:            Strategy{Addr: common.HexToAddress("0x02"), Params: []byte{}},
		ProposalValidationStrategyMetadataURI: "proposalValidationStrategyMetadataURI",
		DaoURI:                                "SOC Test DAO",
		MetadataURI:                           "SOC Test Space",
		VotingStrategies:                      []Strategy{{Addr: common.HexToAddress("0x03"), Params: []byte{}}},
		VotingStrategyMetadataURIs:            []string{"votingStrategyMetadataURIs"},
		Authenticators:                        []common.Address{common.HexToAddress("0x04")},
		TargetEndpoint:                        common.HexToAddress("0x05"),
	})
	c.Assert(err, qt.IsNil)
}
