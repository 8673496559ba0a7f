package main

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentstation/syncbridge/pkg/logging"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "syncbridge",
		Short:         "Bidirectional reconciliation between a local and a remote tracker",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// .env is optional; real deployments set the environment.
			_ = godotenv.Load()

			viper.SetEnvPrefix("SYNCBRIDGE")
			viper.AutomaticEnv()
			if err := viper.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
				return err
			}

			viper.SetConfigName("syncbridge")
			viper.SetConfigType("yaml")
			viper.AddConfigPath(".")
			if err := viper.ReadInConfig(); err != nil {
				var notFound viper.ConfigFileNotFoundError
				if !errors.As(err, &notFound) {
					return fmt.Errorf("reading config file: %w", err)
				}
			}

			cfg := logging.DefaultConfig()
			cfg.Level = viper.GetString("log-level")
			cfg.Format = viper.GetString("log-format")
			if file := viper.GetString("log-file"); file != "" {
				cfg.Output = file
				cfg.Rotate = true
			}
			logging.Configure(cfg)
			return nil
		},
	}

	root.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "auto", "log format (auto, console, json)")
	root.PersistentFlags().String("log-file", "", "log to a rotated file instead of stderr")

	root.AddCommand(newRunCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "syncbridge %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
