// Package remote talks to the media service: it enumerates collections as
// flat listings and provides the default HTTP download engine.
//
// # Flat listings
//
// A collection listing is a paged JSON document carrying only item IDs,
// titles, and source URLs:
//
//	{"title": "Mix", "entries": [{"id": "abc", "title": "Song", "url": "..."}],
//	 "next_page": "https://..."}
//
// Deliberately no per-item format or codec metadata is requested here;
// resolving that is deferred to the engine, and only for items the planner
// decides are actually missing. This is what keeps re-syncing a mostly
// synced collection near-free.
//
// # Scanning
//
//	scanner := remote.NewScanner(client, logger)
//	items, err := scanner.Scan(ctx, collectionURL) // ErrUnreachableCollection on failure
//	for items.Next(ctx) {
//	    process(items.Item())
//	}
//
// Entries without an ID are skipped and counted, not fatal. Re-invoking
// Scan restarts the enumeration; the iterator is not a consumed resource.
package remote
