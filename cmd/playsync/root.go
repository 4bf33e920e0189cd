package main

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"playsync/internal/config"
	"playsync/internal/logging"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var verboseFlag bool

	ctx := &commandContext{
		configFlag:  &configFlag,
		verboseFlag: &verboseFlag,
	}

	rootCmd := &cobra.Command{
		Use:           "playsync",
		Short:         "Archive-backed playlist sync",
		Long:          "playsync mirrors remote playlists into local directories,\nreusing previously fetched files through a persistent download archive.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newSyncCommand(ctx))
	rootCmd.AddCommand(newArchiveCommand(ctx))
	rootCmd.AddCommand(newAdoptCommand(ctx))

	return rootCmd
}

// commandContext carries lazily built shared state between commands.
type commandContext struct {
	configFlag  *string
	verboseFlag *bool

	settings *config.Settings
	logger   *slog.Logger
}

func (c *commandContext) ensureSettings() (*config.Settings, error) {
	if c.settings != nil {
		return c.settings, nil
	}

	path := strings.TrimSpace(*c.configFlag)
	if path == "" {
		c.settings = config.DefaultSettings()
		return c.settings, nil
	}

	settings, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	c.settings = settings
	return settings, nil
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}

	settings, err := c.ensureSettings()
	if err != nil {
		return nil, err
	}

	level := settings.LogLevel
	if *c.verboseFlag {
		level = "debug"
	}

	logger, err := logging.New(logging.Options{
		Level:  level,
		Format: settings.LogFormat,
	})
	if err != nil {
		return nil, err
	}
	c.logger = logger
	return logger, nil
}
