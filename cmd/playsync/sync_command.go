package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"playsync/internal/archive"
	"playsync/internal/model"
	"playsync/internal/remote"
	"playsync/internal/syncer"
)

// scannerSource adapts the remote scanner to the orchestrator's Source.
type scannerSource struct {
	scanner *remote.Scanner
}

func (s scannerSource) Scan(ctx context.Context, ref string) (syncer.Listing, error) {
	return s.scanner.Scan(ctx, ref)
}

func newSyncCommand(cmdCtx *commandContext) *cobra.Command {
	var formatFlag string
	var outputFlag string
	var playlistFlag bool

	cmd := &cobra.Command{
		Use:   "sync <collection-url>",
		Short: "Mirror a remote collection into the downloads directory",
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

			if outputFlag != "" {
				settings.DownloadsPath = outputFlag
			}
			if playlistFlag {
				settings.CreatePlaylist = true
			}
			if formatFlag != "" {
				settings.Format = formatFlag
			}
			format, err := model.ParseFormat(settings.Format)
			if err != nil {
				return err
			}

			store, err := archive.Open(settings.ArchivePath, logger)
			if err != nil {
				switch {
				case errors.Is(err, archive.ErrArchiveBusy):
					return fmt.Errorf("another sync session is already running: %w", err)
				case errors.Is(err, archive.ErrCorruptArchive):
					fmt.Fprintln(cmd.ErrOrStderr(), "Warning: archive was unreadable, starting from an empty index")
				default:
					return err
				}
			}
			defer store.Close()

			client := remote.NewClient(settings.UserAgent)
			engine := remote.NewEngine(client, remote.EngineConfig{
				MaxRetries:    settings.DownloadMaxRetries,
				RetryCooldown: settings.DownloadRetryCooldown,
				RetryExponent: settings.DownloadRetryExponent,
				FetchTimeout:  time.Duration(settings.FetchTimeoutSeconds) * time.Second,
			}, logger)

			o := syncer.New(store, scannerSource{remote.NewScanner(client, logger)}, engine, syncer.Options{
				Format:               format,
				DownloadsPath:        settings.DownloadsPath,
				MaxConcurrentCopies:  settings.MaxConcurrentCopies,
				MaxConcurrentFetches: settings.MaxConcurrentFetches,
				CreatePlaylist:       settings.CreatePlaylist,
				M3UExtended:          settings.M3UExtended,
			}, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, err := o.Run(ctx, remote.ResolveRef(settings.RemoteBaseURL, args[0]))
			if report != nil {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderReport(report, shouldColorize(out)))
			}
			if errors.Is(err, context.Canceled) {
				return errors.New("sync cancelled")
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Output format: mp3, mkv, mp4, or native")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Downloads directory (overrides config)")
	cmd.Flags().BoolVar(&playlistFlag, "playlist", false, "Write an M3U playlist after syncing")

	return cmd
}
