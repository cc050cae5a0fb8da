package evercas

import (
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
)

// Files yields the absolute path of every stored file, lazily. Each range
// over the sequence walks the tree afresh. Dot-named entries (the marker,
// the scratch directory) are skipped at every level.
func (s *Store) Files() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != s.root && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if !yield(path, nil) {
				return fs.SkipAll
			}
			return nil
		})
		if err != nil {
			yield("", fmt.Errorf("walk store %s: %w", s.root, err))
		}
	}
}

// Folders yields every directory under the root that directly contains at
// least one stored file.
func (s *Store) Folders() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != s.root && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if !d.IsDir() {
				return nil
			}
			entries, err := os.ReadDir(path)
			if err != nil {
				return err
			}
			for _, e := range entries {
				if e.Type().IsRegular() && !strings.HasPrefix(e.Name(), ".") {
					if !yield(path, nil) {
						return fs.SkipAll
					}
					break
				}
			}
			return nil
		})
		if err != nil {
			yield("", fmt.Errorf("walk store %s: %w", s.root, err))
		}
	}
}

// Count returns the number of stored files.
func (s *Store) Count() (int, error) {
	count := 0
	for _, err := range s.Files() {
		if err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}

// Size returns the total size in bytes of all stored files.
func (s *Store) Size() (int64, error) {
	var total int64
	for path, err := range s.Files() {
		if err != nil {
			return 0, err
		}
		info, err := os.Stat(path)
		if err != nil {
			// File removed mid-walk; the walk itself is advisory under
			// concurrent mutation.
			continue
		}
		total += info.Size()
	}
	return total, nil
}
