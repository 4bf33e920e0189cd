package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"playsync/internal/model"
)

func TestResolveRef(t *testing.T) {
	tests := []struct {
		base string
		ref  string
		want string
	}{
		{"", "https://svc.test/list/abc", "https://svc.test/list/abc"},
		{"https://svc.test/list", "https://other.test/x", "https://other.test/x"},
		{"https://svc.test/list", "abc", "https://svc.test/list/abc"},
		{"https://svc.test/list/", "abc", "https://svc.test/list/abc"},
		{"", "abc", "abc"},
	}
	for _, tt := range tests {
		if got := ResolveRef(tt.base, tt.ref); got != tt.want {
			t.Errorf("ResolveRef(%q, %q) = %q, want %q", tt.base, tt.ref, got, tt.want)
		}
	}
}

func TestScanSinglePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"title":"Mix","entries":[
			{"id":"a","title":"First","url":"http://x/a"},
			{"id":"b","title":"Second","url":"http://x/b"}]}`)
	}))
	defer srv.Close()

	scanner := NewScanner(NewClient(""), nil)
	items, err := scanner.Scan(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if items.Title() != "Mix" {
		t.Errorf("Title = %q, want Mix", items.Title())
	}

	var got []model.PlaylistItem
	for items.Next(context.Background()) {
		got = append(got, items.Item())
	}
	if err := items.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d items, want 2", len(got))
	}
	if got[0].RemoteID != "a" || got[0].Position != 0 {
		t.Errorf("first item = %+v", got[0])
	}
	if got[1].RemoteID != "b" || got[1].Position != 1 {
		t.Errorf("second item = %+v", got[1])
	}
}

func TestScanFollowsPagesLazily(t *testing.T) {
	var pageHits int
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/list", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"title":"Mix","entries":[{"id":"a","title":"A","url":"u"}],"next_page":"%s/page2"}`, srv.URL)
	})
	mux.HandleFunc("/page2", func(w http.ResponseWriter, r *http.Request) {
		pageHits++
		fmt.Fprint(w, `{"entries":[{"id":"b","title":"B","url":"u"}]}`)
	})

	scanner := NewScanner(NewClient(""), nil)
	items, err := scanner.Scan(context.Background(), srv.URL+"/list")
	if err != nil {
		t.Fatal(err)
	}

	if !items.Next(context.Background()) {
		t.Fatal("expected first item")
	}
	if pageHits != 0 {
		t.Error("second page should not be fetched before it is needed")
	}
	if !items.Next(context.Background()) {
		t.Fatal("expected second item")
	}
	if pageHits != 1 {
		t.Errorf("second page fetched %d times, want 1", pageHits)
	}
	if items.Next(context.Background()) {
		t.Error("iterator should be exhausted")
	}
}

func TestScanUnreachableCollection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	scanner := NewScanner(NewClient(""), nil)
	if _, err := scanner.Scan(context.Background(), srv.URL); !errors.Is(err, ErrUnreachableCollection) {
		t.Fatalf("expected ErrUnreachableCollection, got %v", err)
	}
}

func TestScanOmitsEntriesWithoutID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"title":"Mix","entries":[
			{"id":"a","title":"Good","url":"u"},
			{"id":"","title":"No ID","url":"u"},
			{"id":"b","title":"Also Good","url":"u"}]}`)
	}))
	defer srv.Close()

	scanner := NewScanner(NewClient(""), nil)
	items, err := scanner.Scan(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	count := 0
	for items.Next(context.Background()) {
		count++
	}
	if count != 2 {
		t.Errorf("got %d items, want 2", count)
	}
	if items.Omitted() != 1 {
		t.Errorf("Omitted = %d, want 1", items.Omitted())
	}
	if items.Err() != nil {
		t.Errorf("omissions must not be errors: %v", items.Err())
	}
}

func TestEngineFetch(t *testing.T) {
	payload := []byte("media-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	dir := t.TempDir()
	engine := NewEngine(NewClient(""), EngineConfig{MaxRetries: 1}, nil)

	item := model.PlaylistItem{RemoteID: "abc", Title: "Song", SourceURL: srv.URL}
	result, err := engine.Fetch(context.Background(), item, model.FormatMP3, dir)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.Size != int64(len(payload)) {
		t.Errorf("Size = %d, want %d", result.Size, len(payload))
	}
	if filepath.Base(result.Path) != "Song.mp3" {
		t.Errorf("Path = %q", result.Path)
	}
	data, err := os.ReadFile(result.Path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(payload) {
		t.Error("downloaded content mismatch")
	}
	if _, err := os.Stat(result.Path + ".part"); !os.IsNotExist(err) {
		t.Error("part file should be gone after a successful fetch")
	}
}

func TestEngineFetchRetriesThenFails(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	engine := NewEngine(NewClient(""), EngineConfig{
		MaxRetries:    3,
		RetryCooldown: 0.001,
		RetryExponent: 1,
	}, nil)

	item := model.PlaylistItem{RemoteID: "abc", Title: "Song", SourceURL: srv.URL}
	if _, err := engine.Fetch(context.Background(), item, model.FormatMP3, t.TempDir()); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}
