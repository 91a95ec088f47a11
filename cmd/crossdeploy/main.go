package main

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/compose-network/crossdeploy/configs"
	"github.com/compose-network/crossdeploy/internal/crossdeploy"
	"github.com/compose-network/crossdeploy/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const appName = "crossdeploy"

var rootCmd = &cobra.Command{
	Use:           appName,
	Short:         "CLI for deploying and exercising cross-chain confidential governance",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logger.ParseLevel(viper.GetString("log-level"))
		if err != nil {
			return err
		}
		logger.Initialize(level)

		// embedded defaults first, then whatever config file is found
		viper.SetConfigType("yaml")
		if err := viper.ReadConfig(configs.DefaultYAML()); err != nil {
			return errors.Join(err, errors.New("unable to read embedded defaults"))
		}

		viper.SetConfigName("config")
		if execPath, err := os.Executable(); err == nil {
			viper.AddConfigPath(filepath.Dir(execPath))
		}
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")

		if err := viper.MergeInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				slog.Debug("no config file found, will rely on flags, env and defaults")
			} else {
				const errMsg = "error reading config file"
				slog.With("err", err.Error()).Error(errMsg)
				return errors.Join(err, errors.New(errMsg))
			}
		} else {
			slog.With("config_file", viper.ConfigFileUsed()).Debug("config file loaded")
		}

		_ = viper.BindEnv("crossdeploy.signer", "PRIVATE_KEY")
		_ = viper.BindEnv("crossdeploy.mnemonic", "MNEMONIC")

		if err := viper.Unmarshal(&configs.Values); err != nil {
			const errMsg = "unable to decode application config"
			slog.With("err", err.Error()).Error(errMsg)
			return errors.Join(err, errors.New(errMsg))
		}

		// secrets stay out of the log
		slog.With("network", configs.Values.Crossdeploy.Network).
			With("relay_url", configs.Values.Crossdeploy.Relay.URL).
			Debug("configuration loaded")

		return nil
	},
}

func main() {
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn or error")
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(crossdeploy.CMD)

	if err := rootCmd.Execute(); err != nil {
		slog.With("err", err.Error()).Error("failed to execute root command")
		os.Exit(exitCode(err))
	}
}

// exitCode tells configuration mistakes apart from failed runs.
func exitCode(err error) int {
	if crossdeploy.IsKind(err, crossdeploy.KindConfiguration) {
		return 2
	}
	return 1
}
