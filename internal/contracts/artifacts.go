package contracts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// LoadArtifacts loads compiled contracts from a {name: {abi, bytecode}} JSON file.
func LoadArtifacts(path string) (map[ContractName]CompiledContract, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read compiled contracts: %w", err)
	}

	return parseContracts(data)
}

// parseContracts parses contract JSON data into CompiledContract map
func parseContracts(data []byte) (map[ContractName]CompiledContract, error) {
	var result map[string]struct {
		ABI      json.RawMessage `json:"abi"`
		Bytecode string          `json:"bytecode"`
	}

	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse compiled contracts: %w", err)
	}

	loadedContracts := make(map[ContractName]CompiledContract)

	for name, contract := range result {
		if _, ok := Contracts[ContractName(name)]; !ok {
			continue
		}

		parsedABI, err := abi.JSON(strings.NewReader(string(contract.ABI)))
		if err != nil {
			return nil, fmt.Errorf("failed to parse ABI for %s: %w", name, err)
		}

		bytecodeHex := strings.TrimPrefix(contract.Bytecode, "0x")
		bytecode := common.Hex2Bytes(bytecodeHex)
		if len(bytecode) == 0 {
			return nil, fmt.Errorf("empty bytecode for %s", name)
		}

		loadedContracts[ContractName(name)] = CompiledContract{
			ABI:      parsedABI,
			Bytecode: bytecode,
		}
	}

	return loadedContracts, nil
}

// CheckComplete reports every name in names that has no compiled artifact.
func CheckComplete(compiled map[ContractName]CompiledContract, names []string) error {
	var errs []error
	for _, name := range names {
		if _, ok := Contracts[ContractName(name)]; !ok {
			errs = append(errs, fmt.Errorf("contract %s is not part of the crossdeploy scenario", name))
			continue
		}
		if _, ok := compiled[ContractName(name)]; !ok {
			errs = append(errs, fmt.Errorf("no compiled artifact for %s", name))
		}
	}
	for _, name := range Required {
		found := false
		for _, n := range names {
			if ContractName(n) == name {
				found = true
				break
			}
		}
		if !found {
			errs = append(errs, fmt.Errorf("contract list is missing %s", name))
		}
	}
	return errors.Join(errs...)
}
