package configs

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func TestDefaultConfig(t *testing.T) {
	c := qt.New(t)

	cfg, err := DefaultConfig()
	c.Assert(err, qt.IsNil)

	d := cfg.Crossdeploy
	c.Assert(d.Network, qt.Equals, "sepolia")
	c.Assert(d.Contracts, qt.HasLen, 7)
	c.Assert(d.Relay.Timeout, qt.Equals, 10*time.Second)
	c.Assert(d.Voting.TallyTimeout, qt.Equals, 2*time.Minute)
	c.Assert(d.Validate(), qt.IsNil)

	deposit, err := d.Voting.Deposit()
	c.Assert(err, qt.IsNil)
	c.Assert(deposit.Int64(), qt.Equals, int64(1_000_000_000))
}

func TestDeposit(t *testing.T) {
	c := qt.New(t)

	_, err := Voting{DepositWei: "1e9"}.Deposit()
	c.Assert(err, qt.ErrorMatches, `invalid deposit "1e9"`)

	_, err = Voting{DepositWei: "-1"}.Deposit()
	c.Assert(err, qt.ErrorMatches, `deposit must not be negative, got -1`)
}

func TestValidate(t *testing.T) {
	c := qt.New(t)

	cfg, err := DefaultConfig()
	c.Assert(err, qt.IsNil)

	d := cfg.Crossdeploy
	d.Relay.URL = ""
	d.Voting.ExecutionTimeout = 0

	err = d.Validate()
	c.Assert(err, qt.ErrorMatches, `(?s)crossdeploy configuration validation failed: .*relay.url is required.*execution poll interval.*`)
}
