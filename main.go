package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"feedback-capture/config"
)

const defaultConfigPath = "config.toml"

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var serverURLFlag string
	var cameraFlag string
	var dataDirFlag string
	var tempDirFlag string

	loadConfig := func() (*config.Config, error) {
		cfg, err := config.LoadConfig(configFlag)
		if err != nil {
			return nil, err
		}

		overrides := config.ConfigOverrides{}
		if serverURLFlag != "" {
			overrides.ServerURL = &serverURLFlag
		}
		if cameraFlag != "" {
			overrides.CameraDevice = &cameraFlag
		}
		if dataDirFlag != "" {
			overrides.DataDir = &dataDirFlag
		}
		if tempDirFlag != "" {
			overrides.TempDir = &tempDirFlag
		}
		cfg.Override(overrides)

		if err := cfg.EnsureDirectories(); err != nil {
			return nil, fmt.Errorf("failed to create directories: %w", err)
		}
		return cfg, nil
	}

	rootCmd := &cobra.Command{
		Use:           "feedback-capture",
		Short:         "Record, compress and deliver feedback videos",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", defaultConfigPath, "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&serverURLFlag, "server-url", "", "Override the feedback server URL")
	rootCmd.PersistentFlags().StringVar(&cameraFlag, "camera", "", "Override the camera device")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Override the data directory")
	rootCmd.PersistentFlags().StringVar(&tempDirFlag, "temp-dir", "", "Override the temp directory")

	rootCmd.AddCommand(newRunCommand(loadConfig))
	rootCmd.AddCommand(newQueueCommand(loadConfig))
	rootCmd.AddCommand(newSweepCommand(loadConfig))
	rootCmd.AddCommand(newLoginCommand(loadConfig))
	rootCmd.AddCommand(newLogoutCommand(loadConfig))

	return rootCmd
}
