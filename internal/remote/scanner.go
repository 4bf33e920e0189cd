package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"playsync/internal/logging"
	"playsync/internal/model"
)

// ErrUnreachableCollection indicates the remote collection could not be
// listed at all: deleted, private without credentials, or the service is
// down. Fatal for the run, unlike per-item listing omissions.
var ErrUnreachableCollection = errors.New("remote: collection unreachable")

// listingPage is the flat-listing wire format: IDs and titles only, no
// per-item codec or container metadata.
type listingPage struct {
	Title    string         `json:"title"`
	Entries  []listingEntry `json:"entries"`
	NextPage string         `json:"next_page,omitempty"`
}

type listingEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ResolveRef turns a collection reference into a listable URL. Full URLs
// pass through unchanged; anything else is joined onto base. With no base
// configured the reference is returned as-is.
func ResolveRef(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if base == "" || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return strings.TrimRight(base, "/") + "/" + ref
}

// Scanner enumerates remote collections as ordered streams of lightweight
// playlist items.
type Scanner struct {
	client *Client
	logger *slog.Logger
}

// NewScanner creates a Scanner on top of the given client.
func NewScanner(client *Client, logger *slog.Logger) *Scanner {
	return &Scanner{
		client: client,
		logger: logging.WithComponent(logger, "scanner"),
	}
}

// Scan starts enumerating the collection at ref. The first page is fetched
// eagerly so whole-collection failures surface here as
// ErrUnreachableCollection and the collection title is known immediately;
// subsequent pages are fetched lazily as the iterator advances. Calling
// Scan again restarts the enumeration from the beginning.
func (s *Scanner) Scan(ctx context.Context, ref string) (*Items, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty collection reference", ErrUnreachableCollection)
	}

	var first listingPage
	if err := s.client.GetJSON(ctx, ref, &first); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachableCollection, err)
	}

	return &Items{
		scanner: s,
		title:   first.Title,
		pending: first.Entries,
		next:    first.NextPage,
	}, nil
}

// Items is a lazy, ordered iterator over the scanned collection, in the
// bufio.Scanner idiom:
//
//	items, err := scanner.Scan(ctx, ref)
//	for items.Next(ctx) {
//	    item := items.Item()
//	    ...
//	}
//	if err := items.Err(); err != nil { ... }
//
// Entries with no remote ID are skipped with a logged omission; Omitted
// reports how many were dropped.
type Items struct {
	scanner *Scanner
	title   string

	pending []listingEntry
	next    string

	current  model.PlaylistItem
	position int
	omitted  int
	err      error
	done     bool
}

// Title returns the collection title reported by the listing.
func (it *Items) Title() string { return it.title }

// Next advances to the next item, fetching further pages as needed.
// It returns false when the collection is exhausted or a page fetch failed;
// check Err afterwards.
func (it *Items) Next(ctx context.Context) bool {
	for {
		if it.done || it.err != nil {
			return false
		}

		for len(it.pending) > 0 {
			entry := it.pending[0]
			it.pending = it.pending[1:]

			if strings.TrimSpace(entry.ID) == "" {
				it.omitted++
				it.scanner.logger.Warn("skipping listing entry without id",
					slog.String("title", entry.Title),
					slog.Int("position", it.position+it.omitted))
				continue
			}

			it.current = model.PlaylistItem{
				Position:  it.position,
				RemoteID:  entry.ID,
				Title:     entry.Title,
				SourceURL: entry.URL,
			}
			it.position++
			return true
		}

		if it.next == "" {
			it.done = true
			return false
		}

		var page listingPage
		if err := it.scanner.client.GetJSON(ctx, it.next, &page); err != nil {
			it.err = fmt.Errorf("fetch listing page: %w", err)
			return false
		}
		it.pending = page.Entries
		it.next = page.NextPage
	}
}

// Item returns the item produced by the last successful Next call.
func (it *Items) Item() model.PlaylistItem { return it.current }

// Err returns the first error encountered while paging, if any.
func (it *Items) Err() error { return it.err }

// Omitted returns the number of listing entries skipped for missing IDs.
func (it *Items) Omitted() int { return it.omitted }
