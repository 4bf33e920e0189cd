package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"playsync/internal/adopt"
	"playsync/internal/model"
)

func newAdoptCommand(cmdCtx *commandContext) *cobra.Command {
	var formatFlag string

	cmd := &cobra.Command{
		Use:   "adopt <directory>",
		Short: "Record pre-existing media files into the archive",
		Long:  "Scans a directory for media files matching the configured format\nand records them so future syncs copy instead of re-downloading.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := cmdCtx.ensureSettings()
			if err != nil {
				return err
			}
			logger, err := cmdCtx.ensureLogger()
			if err != nil {
				return err
			}

			if formatFlag != "" {
				settings.Format = formatFlag
			}
			format, err := model.ParseFormat(settings.Format)
			if err != nil {
				return err
			}

			store, err := openStore(cmdCtx, cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			res, err := adopt.New(store, format, logger).Adopt(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Adopted %d files (%d matched, %d already recorded).\n",
				res.Adopted, res.Scanned, res.Known)
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Format class to adopt: mp3, mkv, mp4, or native")

	return cmd
}
