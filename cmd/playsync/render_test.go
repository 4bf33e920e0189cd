package main

import (
	"errors"
	"strings"
	"testing"
	"time"

	"playsync/internal/syncer"
)

func TestRenderReportPlain(t *testing.T) {
	report := &syncer.Report{
		SessionID:  "0c7e6a1e-0000-0000-0000-000000000000",
		Collection: "Test Mix",
		Skipped:    2,
		Copied:     1,
		Downloaded: 3,
		Elapsed:    1234 * time.Millisecond,
	}

	out := renderReport(report, false)

	if !strings.Contains(out, "Test Mix (6 items)") {
		t.Errorf("missing header: %q", out)
	}
	if !strings.Contains(out, "downloaded:  3") {
		t.Errorf("missing downloaded count: %q", out)
	}
	if !strings.Contains(out, "all items in sync") {
		t.Errorf("missing success line: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("plain output must not contain ANSI escapes")
	}
}

func TestRenderReportFailures(t *testing.T) {
	report := &syncer.Report{
		Collection: "Test Mix",
		Downloaded: 1,
		Failed:     1,
		FailedItems: []syncer.FailedItem{
			{RemoteID: "bbb", Title: "Broken Song", Err: errors.New("boom")},
		},
	}

	out := renderReport(report, false)

	if !strings.Contains(out, "failed:      1") {
		t.Errorf("missing failed count: %q", out)
	}
	if !strings.Contains(out, "Broken Song (bbb): boom") {
		t.Errorf("missing failed item detail: %q", out)
	}
	if strings.Contains(out, "all items in sync") {
		t.Error("success line should not appear with failures")
	}
}

func TestRenderReportPlaylistPath(t *testing.T) {
	report := &syncer.Report{
		Collection:   "Test Mix",
		Skipped:      1,
		PlaylistPath: "/music/Test Mix/Test Mix.m3u",
	}

	out := renderReport(report, false)

	if !strings.Contains(out, "playlist: /music/Test Mix/Test Mix.m3u") {
		t.Errorf("missing playlist line: %q", out)
	}
}
