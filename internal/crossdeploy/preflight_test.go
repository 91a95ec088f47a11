package crossdeploy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/compose-network/crossdeploy/configs"
	"github.com/compose-network/crossdeploy/internal/contracts"
	qt "github.com/frankban/quicktest"
)

const hardhatKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func writeArtifacts(c *qt.C) string {
	entries := make([]string, 0, len(contracts.Required))
	for _, name := range contracts.Required {
		entries = append(entries, `"`+string(name)+`":{"abi":[],"bytecode":"0x6080"}`)
	}
	path := filepath.Join(c.TempDir(), "contracts.json")
	c.Assert(os.WriteFile(path, []byte("{"+strings.Join(entries, ",")+"}"), 0o644), qt.IsNil)
	return path
}

func validConfig(c *qt.C) configs.Crossdeploy {
	names := make([]string, 0, len(contracts.Required))
	for _, name := range contracts.Required {
		names = append(names, string(name))
	}
	return configs.Crossdeploy{
		Network:       "sepolia",
		Signer:        "0x" + hardhatKey,
		Mnemonic:      testMnemonic,
		Contracts:     names,
		ArtifactsPath: writeArtifacts(c),
		Relay:         configs.Relay{URL: "http://relay.local/token", Timeout: time.Second},
		Voting: configs.Voting{
			DepositWei:            "1000000000",
			TallyPollInterval:     time.Second,
			TallyTimeout:          time.Minute,
			ExecutionPollInterval: time.Second,
			ExecutionTimeout:      time.Minute,
		},
	}
}

func TestPreflight(t *testing.T) {
	c := qt.New(t)

	plan, err := Preflight(validConfig(c))
	c.Assert(err, qt.IsNil)
	c.Assert(plan.Target.Name, qt.Equals, "sepolia")
	c.Assert(plan.Confidential.Confidential, qt.IsTrue)
	c.Assert(plan.Compiled, qt.HasLen, len(contracts.Required))
	c.Assert(plan.Accounts, qt.HasLen, 5)
	c.Assert(plan.Deposit.String(), qt.Equals, "1000000000")
	c.Assert(plan.Tally.Timeout, qt.Equals, time.Minute)
}

func TestPreflightRejects(t *testing.T) {
	tests := []struct {
		name   string
		modify func(cfg *configs.Crossdeploy)
		match  string
	}{{
		name:   "confidential network as target",
		modify: func(cfg *configs.Crossdeploy) { cfg.Network = "inco" },
		match:  `(?s).*not supported.*`,
	}, {
		name:   "unknown network",
		modify: func(cfg *configs.Crossdeploy) { cfg.Network = "mainnet" },
		match:  `(?s).*not supported.*`,
	}, {
		name:   "missing signer",
		modify: func(cfg *configs.Crossdeploy) { cfg.Signer = "" },
		match:  `(?s).*signer private key is required.*`,
	}, {
		name:   "gas limit above block target",
		modify: func(cfg *configs.Crossdeploy) { cfg.GasLimit = configs.MaxGasLimit + 1 },
		match:  `(?s).*exceeds the block gas target.*`,
	}, {
		name:   "missing mnemonic",
		modify: func(cfg *configs.Crossdeploy) { cfg.Mnemonic = "" },
		match:  `(?s).*mnemonic is required.*`,
	}, {
		name:   "mistyped mnemonic",
		modify: func(cfg *configs.Crossdeploy) { cfg.Mnemonic = strings.Replace(testMnemonic, "junk", "junkk", 1) },
		match:  `(?s).*crossdeploy.mnemonic: mnemonic is not a valid BIP-39 phrase.*`,
	}, {
		name:   "incomplete contract list",
		modify: func(cfg *configs.Crossdeploy) { cfg.Contracts = cfg.Contracts[1:] },
		match:  `(?s).*missing IncoContract.*`,
	}, {
		name:   "missing relay url",
		modify: func(cfg *configs.Crossdeploy) { cfg.Relay.URL = "" },
		match:  `(?s).*relay.url is required.*`,
	}}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := qt.New(t)

			cfg := validConfig(c)
			test.modify(&cfg)

			_, err := Preflight(cfg)
			c.Assert(IsKind(err, KindConfiguration), qt.IsTrue)
			c.Assert(err, qt.ErrorMatches, test.match)
		})
	}
}

func TestPreflightReportsEveryProblem(t *testing.T) {
	c := qt.New(t)

	cfg := validConfig(c)
	cfg.Network = "inco"
	cfg.Signer = ""
	cfg.GasLimit = 20_000_000

	_, err := Preflight(cfg)
	c.Assert(err, qt.ErrorMatches, `(?s)configuration error in preflight: .*not supported.*signer private key.*gas target.*`)
}
