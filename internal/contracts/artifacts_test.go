package contracts

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
)

const emptyABI = `[{"type":"constructor","inputs":[],"stateMutability":"nonpayable"}]`

func artifactJSON(names ...string) string {
	out := "{"
	for i, name := range names {
		if i > 0 {
			out += ","
		}
		out += `"` + name + `":{"abi":` + emptyABI + `,"bytecode":"0x6080"}`
	}
	return out + "}"
}

func allNames() []string {
	names := make([]string, 0, len(Required))
	for _, name := range Required {
		names = append(names, string(name))
	}
	return names
}

func TestLoadArtifacts(t *testing.T) {
	c := qt.New(t)

	path := filepath.Join(t.TempDir(), "contracts.json")
	names := append(allNames(), "Unrelated")
	c.Assert(os.WriteFile(path, []byte(artifactJSON(names...)), 0o644), qt.IsNil)

	compiled, err := LoadArtifacts(path)
	c.Assert(err, qt.IsNil)
	c.Assert(compiled, qt.HasLen, len(Required))
	c.Assert(compiled[ContractNameSpace].Bytecode, qt.DeepEquals, []byte{0x60, 0x80})
	c.Assert(CheckComplete(compiled, allNames()), qt.IsNil)
}

func TestParseContractsRejectsEmptyBytecode(t *testing.T) {
	c := qt.New(t)

	_, err := parseContracts([]byte(`{"Space":{"abi":[],"bytecode":"0x"}}`))
	c.Assert(err, qt.ErrorMatches, `empty bytecode for Space`)
}

func TestCheckComplete(t *testing.T) {
	c := qt.New(t)

	compiled, err := parseContracts([]byte(artifactJSON("Space", "VanillaAuthenticator")))
	c.Assert(err, qt.IsNil)

	err = CheckComplete(compiled, []string{"Space", "VanillaAuthenticator", "IncoContract", "Bogus"})
	c.Assert(err, qt.Not(qt.IsNil))
	c.Assert(err, qt.ErrorMatches, `(?s).*no compiled artifact for IncoContract.*`)
	c.Assert(err, qt.ErrorMatches, `(?s).*contract Bogus is not part of the crossdeploy scenario.*`)
	c.Assert(err, qt.ErrorMatches, `(?s).*contract list is missing VanillaExecutionStrategy.*`)
}
