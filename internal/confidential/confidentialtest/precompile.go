// Package confidentialtest answers confidential runtime queries for tests.
package confidentialtest

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
)

// PublicKeyResponse builds the return data of the public key precompile.
func PublicKeyResponse(key []byte) ([]byte, error) {
	typ, err := abi.NewType("bytes", "", nil)
	if err != nil {
		return nil, err
	}
	return abi.Arguments{{Type: typ}}.Pack(key)
}
