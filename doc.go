// Package evercas is a content-addressable file store: a managed directory
// where files are located purely by the digest of their contents, never by
// caller-chosen names. Content is written once, deduplicated automatically,
// and never mutated in place; any metadata lives with the caller.
//
// Basic usage:
//
//	store, _ := evercas.Open("/var/data/store")
//	_ = store.Init()
//
//	// Store a file; identical content converges to one stored file.
//	entry, _ := store.Put("report.pdf", evercas.WithExtension(".pdf"))
//	fmt.Println(entry.Checksum, entry.Path, entry.IsDuplicate)
//
//	// Read it back by checksum.
//	f, _ := store.Open(entry.Checksum)
//	defer f.Close()
//
//	// Store a whole directory, lazily.
//	for res := range store.PutDir("ingest/", true, true) {
//	    if res.Err != nil { ... }
//	}
//
//	// Remove content and prune emptied address directories.
//	_ = store.Delete(entry.Checksum)
//
// Addressing is configured per store (digest algorithm, prefix depth and
// width) and persisted in a marker at the root; reopening with conflicting
// options fails. After Reconfigure, Corrupted reports files the new
// addressing would place elsewhere and Repair relocates them:
//
//	_ = store.Reconfigure(evercas.WithDepth(2), evercas.WithWidth(2))
//	stats, _ := store.Repair(true)
//	fmt.Println(stats.Relocated, "files reindexed")
//
// Puts materialize content through pluggable strategies: copy (default),
// move, or hard-link with silent copy fallback. Finalization is always a
// single atomic rename or link creation, so concurrent puts of the same
// content race safely and readers never observe partial files.
package evercas
