package evercas

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"
)

// RepairStats summarizes a Repair run.
type RepairStats struct {
	// Relocated counts files moved to their expected address.
	Relocated int

	// Discarded counts misplaced files whose expected address was already
	// occupied; the incoming file is removed, same as a put duplicate.
	Discarded int
}

// Corrupted yields every stored file whose location differs from the
// address its content digest computes under the current configuration,
// paired with the entry for its expected location. When extensions is
// true the file's current extension carries over to the expected address.
//
// Files that vanish or fail to read mid-scan are skipped; results under
// concurrent mutation of the tree are undefined but never a crash.
func (s *Store) Corrupted(extensions bool) iter.Seq2[string, Entry] {
	return func(yield func(string, Entry) bool) {
		for path, err := range s.Files() {
			if err != nil {
				return
			}
			checksum, err := s.checksumFile(path)
			if err != nil {
				continue
			}
			ext := ""
			if extensions {
				ext = s.normalizeExtension(filepath.Ext(path))
			}
			rel := s.addressFor(checksum, ext)
			if filepath.Join(s.root, rel) == path {
				continue
			}
			if !yield(path, Entry{Checksum: checksum, Path: rel}) {
				return
			}
		}
	}
}

// Repair relocates every corrupted file to its expected address, creating
// destination directories as needed and pruning source directories it
// empties. A destination already holding content is a collision: the
// incoming file is discarded and counted in Discarded.
func (s *Store) Repair(extensions bool) (RepairStats, error) {
	var stats RepairStats
	if !s.initialized {
		return stats, ErrNotInitialized
	}

	// Snapshot the scan before moving anything so relocations don't feed
	// back into the walk.
	type relocation struct {
		path  string
		entry Entry
	}
	var pending []relocation
	for path, entry := range s.Corrupted(extensions) {
		pending = append(pending, relocation{path: path, entry: entry})
	}

	for _, r := range pending {
		dest := filepath.Join(s.root, r.entry.Path)
		if fileExists(dest) {
			if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
				return stats, fmt.Errorf("discard %s: %w", r.path, err)
			}
			stats.Discarded++
		} else {
			if err := os.MkdirAll(filepath.Dir(dest), s.cfg.dirMode); err != nil {
				return stats, fmt.Errorf("create address dirs for %s: %w", r.entry.Path, err)
			}
			if err := os.Rename(r.path, dest); err != nil {
				return stats, fmt.Errorf("relocate %s: %w", r.path, err)
			}
			if err := os.Chmod(dest, s.cfg.fileMode); err != nil {
				return stats, fmt.Errorf("chmod %s: %w", dest, err)
			}
			stats.Relocated++
		}
		s.pruneEmpty(filepath.Dir(r.path))
	}
	return stats, nil
}

// checksumFile digests a stored file in place.
func (s *Store) checksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return s.Checksum(f)
}
