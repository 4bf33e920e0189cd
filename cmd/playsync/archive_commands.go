package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"playsync/internal/archive"
)

const clearDateLayout = "2006-01-02"

func newArchiveCommand(cmdCtx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Inspect and maintain the download archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newArchiveStatsCommand(cmdCtx))
	cmd.AddCommand(newArchiveListCommand(cmdCtx))
	cmd.AddCommand(newArchiveBackupCommand(cmdCtx))
	cmd.AddCommand(newArchiveClearCommand(cmdCtx))
	cmd.AddCommand(newArchivePruneCommand(cmdCtx))

	return cmd
}

// openStore opens the configured archive for a maintenance command. A
// corrupt archive is reported but still usable as an empty index.
func openStore(cmdCtx *commandContext, cmd *cobra.Command) (*archive.Store, error) {
	settings, err := cmdCtx.ensureSettings()
	if err != nil {
		return nil, err
	}
	logger, err := cmdCtx.ensureLogger()
	if err != nil {
		return nil, err
	}

	store, err := archive.Open(settings.ArchivePath, logger)
	if err != nil {
		switch {
		case errors.Is(err, archive.ErrArchiveBusy):
			return nil, fmt.Errorf("archive is in use by another session: %w", err)
		case errors.Is(err, archive.ErrCorruptArchive):
			fmt.Fprintln(cmd.ErrOrStderr(), "Warning: archive was unreadable, treating it as empty")
		default:
			return nil, err
		}
	}
	return store, nil
}

func newArchiveStatsCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show entry counts and total archived size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmdCtx, cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			stats := store.Stats()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Entries:    %d\n", stats.Entries)
			fmt.Fprintf(out, "Total size: %s\n", humanize.Bytes(uint64(stats.TotalBytes)))
			for format, count := range stats.ByFormat {
				fmt.Fprintf(out, "  %-8s %d\n", format.String()+":", count)
			}
			return nil
		},
	}
}

func newArchiveListCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List archive entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmdCtx, cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			entries := store.List()
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Archive is empty.")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					string(e.Fingerprint),
					e.Title,
					e.Format.String(),
					humanize.Bytes(uint64(e.FileSize)),
					e.RecordedAt.Format("2006-01-02 15:04"),
				})
			}

			headers := []string{"Fingerprint", "Title", "Format", "Size", "Recorded"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
			return nil
		},
	}
}

func newArchiveBackupCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Write a timestamped side copy of the archive file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmdCtx, cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			path, err := store.Backup()
			if err != nil {
				if errors.Is(err, archive.ErrNoArchive) {
					return errors.New("nothing to back up: no archive file exists yet")
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", path)
			return nil
		},
	}
}

func newArchiveClearCommand(cmdCtx *commandContext) *cobra.Command {
	var allFlag bool
	var titleFlag string
	var fromFlag, toFlag string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove entries matching a selector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			selector, err := buildSelector(allFlag, titleFlag, fromFlag, toFlag)
			if err != nil {
				return err
			}

			store, err := openStore(cmdCtx, cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Clear(selector)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries.\n", removed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&allFlag, "all", false, "Remove every entry")
	cmd.Flags().StringVar(&titleFlag, "title", "", "Remove entries whose title contains this text")
	cmd.Flags().StringVar(&fromFlag, "from", "", "Start date (YYYY-MM-DD) of the removal range")
	cmd.Flags().StringVar(&toFlag, "to", "", "End date (YYYY-MM-DD) of the removal range, inclusive")

	return cmd
}

// buildSelector validates that exactly one clearing mode was chosen. The
// --to date is pushed to the end of its day so the range is inclusive.
func buildSelector(all bool, title, from, to string) (archive.Selector, error) {
	switch {
	case all:
		if title != "" || from != "" || to != "" {
			return archive.Selector{}, errors.New("--all cannot be combined with other selectors")
		}
		return archive.SelectAll(), nil
	case title != "":
		if from != "" || to != "" {
			return archive.Selector{}, errors.New("--title cannot be combined with a date range")
		}
		return archive.SelectTitle(title), nil
	case from != "" || to != "":
		if from == "" || to == "" {
			return archive.Selector{}, errors.New("a date range needs both --from and --to")
		}
		fromDate, err := time.Parse(clearDateLayout, from)
		if err != nil {
			return archive.Selector{}, fmt.Errorf("invalid --from date: %w", err)
		}
		toDate, err := time.Parse(clearDateLayout, to)
		if err != nil {
			return archive.Selector{}, fmt.Errorf("invalid --to date: %w", err)
		}
		toDate = toDate.Add(24*time.Hour - time.Nanosecond)
		return archive.SelectRecordedBetween(fromDate, toDate), nil
	default:
		return archive.Selector{}, errors.New("choose a selector: --all, --title, or --from/--to")
	}
}

func newArchivePruneCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Drop entries whose archived file no longer exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmdCtx, cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Prune()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d stale entries.\n", removed)
			return nil
		},
	}
}
