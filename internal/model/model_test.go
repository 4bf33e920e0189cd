package model

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"normal-file.mp3", "normal-file.mp3"},
		{"file:with:colons", "file_with_colons"},
		{"file<with>brackets", "file_with_brackets"},
		{"file/with\\slashes", "file_with_slashes"},
		{"file|with|pipes", "file_with_pipes"},
		{"file?with*wildcards", "file_with_wildcards"},
		{"trailing dots...", "trailing dots"},
		{"multiple   spaces", "multiple spaces"},
		{"trailing spaces   ", "trailing spaces"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := SanitizeFileName(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"mp3", FormatMP3, false},
		{"MP3", FormatMP3, false},
		{" mkv ", FormatMKV, false},
		{"mp4", FormatMP4, false},
		{"native", FormatNative, false},
		{"flac", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q) expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFormat(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFormatExtensions(t *testing.T) {
	if ext := FormatMP3.DefaultExt(); ext != ".mp3" {
		t.Errorf("FormatMP3.DefaultExt() = %q", ext)
	}
	if ext := FormatNative.DefaultExt(); ext != ".m4a" {
		t.Errorf("FormatNative.DefaultExt() = %q", ext)
	}
	if !FormatMP3.IsAudio() || !FormatNative.IsAudio() {
		t.Error("mp3 and native should be audio formats")
	}
	if FormatMKV.IsAudio() || FormatMP4.IsAudio() {
		t.Error("mkv and mp4 should not be audio formats")
	}

	exts := FormatNative.Extensions()
	if len(exts) < 2 {
		t.Errorf("native format should accept several extensions, got %v", exts)
	}
}

func TestDestFileName(t *testing.T) {
	got := DestFileName("Song: Part 1/2", FormatMP3)
	want := "Song_ Part 1_2.mp3"
	if got != want {
		t.Errorf("DestFileName = %q, want %q", got, want)
	}

	if got := DestFileName("", FormatMKV); got != "unknown.mkv" {
		t.Errorf("DestFileName with empty title = %q", got)
	}
}
