package evercas

import (
	"path/filepath"
	"strings"
)

// shard partitions a checksum into depth prefix groups of width hex
// characters followed by the remaining characters as the leaf filename.
// The caller guarantees depth*width < len(checksum); the store validates
// that once, against the algorithm's digest length, at Open.
func shard(checksum string, depth, width int) []string {
	parts := make([]string, 0, depth+1)
	for i := range depth {
		parts = append(parts, checksum[i*width:(i+1)*width])
	}
	return append(parts, checksum[depth*width:])
}

// addressFor computes the store-relative path for a checksum, with an
// optional extension appended to the leaf.
func (s *Store) addressFor(checksum, extension string) string {
	return filepath.Join(shard(checksum, s.cfg.depth, s.cfg.width)...) + extension
}

// normalizeExtension applies the store's extension policy: empty stays
// empty, otherwise a leading dot is ensured and case is folded when the
// store is configured for lowercase extensions.
func (s *Store) normalizeExtension(ext string) string {
	if ext == "" || ext == "." {
		return ""
	}
	if s.cfg.lowercaseExtensions {
		ext = strings.ToLower(ext)
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
