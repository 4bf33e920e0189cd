package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"playsync/internal/syncer"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))
)

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// renderReport formats a finished session for the terminal. With colorize
// false every style collapses to plain text, so output stays pipeable.
func renderReport(r *syncer.Report, colorize bool) string {
	style := func(s lipgloss.Style, text string) string {
		if !colorize {
			return text
		}
		return s.Render(text)
	}

	var sb strings.Builder

	sb.WriteString(style(headerStyle, fmt.Sprintf("%s (%d items)", r.Collection, r.Total())))
	sb.WriteString("\n")
	sb.WriteString(style(dimStyle, fmt.Sprintf("  session %s, %s", r.SessionID, r.Elapsed.Round(10*time.Millisecond))))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  %-12s %d\n", "skipped:", r.Skipped))
	sb.WriteString(fmt.Sprintf("  %-12s %d\n", "copied:", r.Copied))
	sb.WriteString(fmt.Sprintf("  %-12s %d\n", "downloaded:", r.Downloaded))
	if r.Omitted > 0 {
		sb.WriteString(fmt.Sprintf("  %-12s %d\n", "omitted:", r.Omitted))
	}

	if r.Failed > 0 {
		sb.WriteString(style(errorStyle, fmt.Sprintf("  %-12s %d", "failed:", r.Failed)))
		sb.WriteString("\n")
		for _, item := range r.FailedItems {
			sb.WriteString(style(errorStyle, fmt.Sprintf("    - %s (%s): %v", item.Title, item.RemoteID, item.Err)))
			sb.WriteString("\n")
		}
	} else {
		sb.WriteString(style(successStyle, "  all items in sync"))
		sb.WriteString("\n")
	}

	if r.PlaylistPath != "" {
		sb.WriteString(style(dimStyle, fmt.Sprintf("  playlist: %s", r.PlaylistPath)))
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}
