// Package contractstest decodes authenticator payloads the way the voting
// contracts read them, for fake chains in tests.
package contractstest

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var voteArguments = func() abi.Arguments {
	mustType := func(t string, components []abi.ArgumentMarshaling) abi.Type {
		typ, err := abi.NewType(t, "", components)
		if err != nil {
			panic(err)
		}
		return typ
	}
	return abi.Arguments{
		{Type: mustType("address", nil)},
		{Type: mustType("uint256", nil)},
		{Type: mustType("bytes", nil)},
		{Type: mustType("tuple[]", []abi.ArgumentMarshaling{
			{Name: "index", Type: "uint8"},
			{Name: "params", Type: "bytes"},
		})},
		{Type: mustType("string", nil)},
	}
}()

// DecodeVote unpacks (voter, proposalId, encryptedChoice, strategies, metadataURI).
func DecodeVote(data []byte) (voter common.Address, proposalID *big.Int, encryptedChoice []byte, err error) {
	values, err := voteArguments.Unpack(data)
	if err != nil {
		return common.Address{}, nil, nil, fmt.Errorf("failed to decode vote payload: %w", err)
	}
	voter = *abi.ConvertType(values[0], new(common.Address)).(*common.Address)
	proposalID = *abi.ConvertType(values[1], new(*big.Int)).(**big.Int)
	encryptedChoice = *abi.ConvertType(values[2], new([]byte)).(*[]byte)
	return voter, proposalID, encryptedChoice, nil
}
