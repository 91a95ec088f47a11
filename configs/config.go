package configs

import (
	"errors"
	"fmt"
	"math/big"
	"time"
)

var Values Config

type (
	Config struct {
		Crossdeploy Crossdeploy `mapstructure:"crossdeploy"`
	}

	Crossdeploy struct {
		Network       string   `mapstructure:"network"`
		Signer        string   `mapstructure:"signer"`
		Mnemonic      string   `mapstructure:"mnemonic"`
		Contracts     []string `mapstructure:"contracts"`
		GasLimit      uint64   `mapstructure:"gas-limit"`
		ArtifactsPath string   `mapstructure:"artifacts-path"`
		AddressesDir  string   `mapstructure:"addresses-dir"`
		ReportPath    string   `mapstructure:"report-path"`
		Relay         Relay    `mapstructure:"relay"`
		Voting        Voting   `mapstructure:"voting"`
	}

	Relay struct {
		URL     string        `mapstructure:"url"`
		Timeout time.Duration `mapstructure:"timeout"`
	}

	Voting struct {
		DepositWei            string        `mapstructure:"deposit-wei"`
		TallyPollInterval     time.Duration `mapstructure:"tally-poll-interval"`
		TallyTimeout          time.Duration `mapstructure:"tally-timeout"`
		ExecutionPollInterval time.Duration `mapstructure:"execution-poll-interval"`
		ExecutionTimeout      time.Duration `mapstructure:"execution-timeout"`
	}
)

// MaxGasLimit is the ceiling accepted for crossdeploy.gas-limit, matching the
// current block gas target.
const MaxGasLimit = 15_000_000

// Deposit returns the vote deposit in wei.
func (v Voting) Deposit() (*big.Int, error) {
	deposit, ok := new(big.Int).SetString(v.DepositWei, 10)
	if !ok {
		return nil, fmt.Errorf("invalid deposit %q", v.DepositWei)
	}
	if deposit.Sign() < 0 {
		return nil, fmt.Errorf("deposit must not be negative, got %s", v.DepositWei)
	}
	return deposit, nil
}

// Validate checks the run settings. The network, signer, mnemonic, contract
// list, and gas limit are verified by the crossdeploy pre-flight, which needs
// the network registry and the compiled artifacts.
func (c *Crossdeploy) Validate() error {
	var errs []error

	if c.Relay.URL == "" {
		errs = append(errs, errors.New("crossdeploy.relay.url is required"))
	}
	if _, err := c.Voting.Deposit(); err != nil {
		errs = append(errs, fmt.Errorf("crossdeploy.voting.deposit-wei: %w", err))
	}
	if c.Voting.TallyPollInterval <= 0 || c.Voting.TallyTimeout <= 0 {
		errs = append(errs, errors.New("crossdeploy.voting tally poll interval and timeout must be positive"))
	}
	if c.Voting.ExecutionPollInterval <= 0 || c.Voting.ExecutionTimeout <= 0 {
		errs = append(errs, errors.New("crossdeploy.voting execution poll interval and timeout must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("crossdeploy configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}
