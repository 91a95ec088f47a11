package crossdeploy

import (
	"time"

	"github.com/spf13/viper"
)

// flagDef defines a command-line flag bound to a viper key. Defaults are left
// empty so that values from config.yaml and the embedded defaults win unless
// the flag is set explicitly.
type (
	flagType interface {
		string | int | bool | time.Duration | []string
	}

	flagDef[T flagType] struct {
		name         string
		viperKey     string
		defaultValue T
		description  string
	}
)

var (
	stringFlags = []flagDef[string]{
		{"network", "crossdeploy.network", "", "Target network (the confidential leg always runs on inco)"},
		{"signer", "crossdeploy.signer", "", "Deployer private key (prefer PRIVATE_KEY)"},
		{"mnemonic", "crossdeploy.mnemonic", "", "Mnemonic of the demo voter accounts (prefer MNEMONIC)"},
		{"artifacts-path", "crossdeploy.artifacts-path", "", "Compiled contracts JSON ({name: {abi, bytecode}})"},
		{"addresses-dir", "crossdeploy.addresses-dir", "", "Directory for the per-network address book"},
		{"report-path", "crossdeploy.report-path", "", "Path of the YAML run report"},
		{"relay-url", "crossdeploy.relay.url", "", "Ciphertext relay endpoint"},
		{"vote-deposit-wei", "crossdeploy.voting.deposit-wei", "", "Deposit attached to each ballot, in wei"},
	}

	intFlags = []flagDef[int]{
		{"gas-limit", "crossdeploy.gas-limit", 0, "Gas limit per transaction, 0 to estimate"},
	}

	durationFlags = []flagDef[time.Duration]{
		{"relay-timeout", "crossdeploy.relay.timeout", 0, "Timeout of one relay request"},
		{"tally-poll-interval", "crossdeploy.voting.tally-poll-interval", 0, "Interval between tally reads"},
		{"tally-timeout", "crossdeploy.voting.tally-timeout", 0, "How long to wait for the tally to include every ballot"},
		{"execution-poll-interval", "crossdeploy.voting.execution-poll-interval", 0, "Interval between execution status reads"},
		{"execution-timeout", "crossdeploy.voting.execution-timeout", 0, "How long to wait for the proposal to be executed"},
	}

	listFlags = []flagDef[[]string]{
		{"contracts", "crossdeploy.contracts", nil, "Contract names to deploy"},
	}
)

func init() {
	if err := declareFlags(stringFlags); err != nil {
		panic(err)
	}
	if err := declareFlags(intFlags); err != nil {
		panic(err)
	}
	if err := declareFlags(durationFlags); err != nil {
		panic(err)
	}
	if err := declareFlags(listFlags); err != nil {
		panic(err)
	}
}

// declareFlags declares multiple flags and binds them to viper configuration keys.
func declareFlags[T flagType](flags []flagDef[T]) error {
	for _, flag := range flags {
		if err := declareFlag(flag.name, flag.viperKey, flag.defaultValue, flag.description); err != nil {
			return err
		}
	}
	return nil
}

func declareFlag[T flagType](flagName, viperKey string, defaultValue T, description string) error {
	var zero T
	switch any(zero).(type) {
	case string:
		CMD.Flags().String(flagName, any(defaultValue).(string), description)
	case int:
		CMD.Flags().Int(flagName, any(defaultValue).(int), description)
	case bool:
		CMD.Flags().Bool(flagName, any(defaultValue).(bool), description)
	case time.Duration:
		CMD.Flags().Duration(flagName, any(defaultValue).(time.Duration), description)
	case []string:
		CMD.Flags().StringSlice(flagName, any(defaultValue).([]string), description)
	}
	return viper.BindPFlag(viperKey, CMD.Flags().Lookup(flagName))
}
