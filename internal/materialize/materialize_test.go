package materialize

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"playsync/internal/plan"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}

func decision(action plan.Action, src, dst string) plan.Decision {
	return plan.Decision{Action: action, SourcePath: src, DestPath: dst}
}

func TestHardlinkCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.mp3")
	dst := filepath.Join(dir, "dst.mp3")
	writeFile(t, src, []byte("audio"))

	m := New(nil)
	result, err := m.Materialize(decision(plan.HardlinkCopy, src, dst))
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if !result.Linked {
		t.Error("expected a hardlink on the same volume")
	}
	if result.Size != 5 {
		t.Errorf("Size = %d, want 5", result.Size)
	}

	srcInfo, _ := os.Stat(src)
	dstInfo, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !os.SameFile(srcInfo, dstInfo) {
		t.Error("source and destination should reference the same file")
	}
}

func TestHardlinkFailureFallsBackToCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.mp3")
	dst := filepath.Join(dir, "dst.mp3")
	content := []byte("audio-bytes")
	writeFile(t, src, content)

	m := New(nil)
	m.link = func(string, string) error { return errors.New("simulated: no hardlink support") }

	result, err := m.Materialize(decision(plan.HardlinkCopy, src, dst))
	if err != nil {
		t.Fatalf("fallback should succeed silently, got %v", err)
	}
	if result.Linked {
		t.Error("result should not claim a hardlink")
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(content) {
		t.Errorf("destination size = %d, want %d", len(got), len(content))
	}
}

func TestFallbackCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.mp3")
	dst := filepath.Join(dir, "dst.mp3")
	writeFile(t, src, []byte("audio"))

	m := New(nil)
	result, err := m.Materialize(decision(plan.FallbackCopy, src, dst))
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if result.Linked {
		t.Error("FallbackCopy must not hardlink")
	}
	if _, err := os.Stat(dst); err != nil {
		t.Errorf("destination missing: %v", err)
	}
}

func TestSourceVanished(t *testing.T) {
	dir := t.TempDir()
	d := decision(plan.HardlinkCopy, filepath.Join(dir, "gone.mp3"), filepath.Join(dir, "dst.mp3"))

	if _, err := New(nil).Materialize(d); !errors.Is(err, ErrSourceVanished) {
		t.Fatalf("expected ErrSourceVanished, got %v", err)
	}
	if _, err := os.Stat(d.DestPath); !os.IsNotExist(err) {
		t.Error("no destination should be created for a vanished source")
	}
}

func TestEmptySourceTreatedAsVanished(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "empty.mp3")
	writeFile(t, src, nil)

	d := decision(plan.FallbackCopy, src, filepath.Join(dir, "dst.mp3"))
	if _, err := New(nil).Materialize(d); !errors.Is(err, ErrSourceVanished) {
		t.Fatalf("expected ErrSourceVanished for empty source, got %v", err)
	}
}

func TestSkipAndDownloadAreNotMaterializable(t *testing.T) {
	m := New(nil)
	if _, err := m.Materialize(plan.Decision{Action: plan.Skip}); err == nil {
		t.Error("Skip should not be materializable")
	}
	if _, err := m.Materialize(plan.Decision{Action: plan.Download}); err == nil {
		t.Error("Download should not be materializable")
	}
}

func TestIntegrityMismatchRemovesDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.mp3")
	dst := filepath.Join(dir, "dst.mp3")
	writeFile(t, src, []byte("audio"))

	// Claim a different expected size to simulate a source truncated
	// mid-copy.
	if _, err := copyVerified(src, dst, 9999); !errors.Is(err, ErrIntegrityMismatch) {
		t.Fatalf("expected ErrIntegrityMismatch, got %v", err)
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Error("partial destination should have been removed")
	}
}

func TestSourceNeverMutated(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.mp3")
	dst := filepath.Join(dir, "dst.mp3")
	content := []byte("original-bytes")
	writeFile(t, src, content)

	if _, err := New(nil).Materialize(decision(plan.FallbackCopy, src, dst)); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(src)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Error("source content changed")
	}
}
