package evercas

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/weedonandscott/evercas/internal/hasher"
)

// Entry is the result of a successful put or lookup. Entries are derived
// values; the filesystem is the source of truth and entries are never
// mutated after creation.
type Entry struct {
	// Checksum is the hex digest of the file's content.
	Checksum string

	// Path is the file's location relative to the store root.
	Path string

	// IsDuplicate reports whether the content already existed before the
	// operation that produced this entry. Only ever true after a put.
	IsDuplicate bool
}

// Store is a content-addressable file store rooted at a single directory.
// Files are located purely by the digest of their contents; callers keep
// any metadata externally.
//
// A Store holds no in-process lock: the filesystem's atomic rename and
// link semantics are the sole concurrency primitive, so independent
// operations may run concurrently from multiple goroutines or processes.
type Store struct {
	root            string
	cfg             config
	hexLen          int
	defaultStrategy PutStrategy
	initialized     bool
}

// Open points a Store at root. If the root carries a persisted
// configuration marker, that configuration is loaded and any explicitly
// requested addressing option that conflicts with it fails with
// ErrConfigMismatch. Without a marker the store is not initialized until
// Init is called.
func Open(root string, opts ...Option) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve store root %s: %w", root, err)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	m, err := loadMarker(abs)
	if err != nil {
		return nil, err
	}
	if m != nil {
		if err := checkMarker(cfg, *m); err != nil {
			return nil, err
		}
		cfg.algorithm = m.Algorithm
		cfg.depth = m.Depth
		cfg.width = m.Width
		if m.DefaultStrategy != "" && !cfg.explicit.strategy {
			cfg.defaultStrategy = m.DefaultStrategy
		}
	}

	s := &Store{root: abs, cfg: cfg, initialized: m != nil}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// checkMarker compares explicitly requested addressing options against a
// persisted marker.
func checkMarker(cfg config, m marker) error {
	if cfg.explicit.algorithm && cfg.algorithm != m.Algorithm {
		return fmt.Errorf("%w: algorithm %q, store uses %q", ErrConfigMismatch, cfg.algorithm, m.Algorithm)
	}
	if cfg.explicit.depth && cfg.depth != m.Depth {
		return fmt.Errorf("%w: depth %d, store uses %d", ErrConfigMismatch, cfg.depth, m.Depth)
	}
	if cfg.explicit.width && cfg.width != m.Width {
		return fmt.Errorf("%w: width %d, store uses %d", ErrConfigMismatch, cfg.width, m.Width)
	}
	return nil
}

// validate rejects configurations that cannot address content and resolves
// the default strategy. Refreshes hexLen and defaultStrategy from cfg.
func (s *Store) validate() error {
	hexLen, err := hasher.HexLength(s.cfg.algorithm)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if s.cfg.depth < 1 || s.cfg.width < 1 {
		return fmt.Errorf("%w: depth and width must be positive", ErrInvalidConfig)
	}
	// Strictly less: the leaf filename must keep at least one character.
	if s.cfg.depth*s.cfg.width >= hexLen {
		return fmt.Errorf("%w: depth %d * width %d must be less than digest length %d",
			ErrInvalidConfig, s.cfg.depth, s.cfg.width, hexLen)
	}
	strategy, err := StrategyByName(s.cfg.defaultStrategy)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	s.hexLen = hexLen
	s.defaultStrategy = strategy
	return nil
}

// Init creates the root and scratch directories and persists the
// configuration marker, making the store ready for puts. Idempotent:
// initializing an already initialized store with a compatible
// configuration is a no-op.
func (s *Store) Init() error {
	if err := os.MkdirAll(s.root, s.cfg.dirMode); err != nil {
		return fmt.Errorf("create store root %s: %w", s.root, err)
	}
	if err := os.MkdirAll(s.scratchDir(), s.cfg.dirMode); err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	if s.initialized {
		return nil
	}
	if err := writeMarker(s.root, s.markerRecord()); err != nil {
		return err
	}
	s.initialized = true
	return nil
}

// Reconfigure replaces the persisted addressing configuration. Existing
// files keep their old locations until Repair relocates them; Corrupted
// reports every file the new configuration would place elsewhere.
func (s *Store) Reconfigure(opts ...Option) error {
	if !s.initialized {
		return ErrNotInitialized
	}
	next := s.cfg
	for _, opt := range opts {
		opt(&next)
	}
	prev := *s
	s.cfg = next
	if err := s.validate(); err != nil {
		*s = prev
		return err
	}
	if err := writeMarker(s.root, s.markerRecord()); err != nil {
		*s = prev
		return err
	}
	return nil
}

func (s *Store) markerRecord() marker {
	return marker{
		Algorithm:       s.cfg.algorithm,
		Depth:           s.cfg.depth,
		Width:           s.cfg.width,
		DefaultStrategy: s.cfg.defaultStrategy,
	}
}

// Root returns the store's absolute root directory.
func (s *Store) Root() string { return s.root }

// Initialized reports whether the root carries a configuration marker.
func (s *Store) Initialized() bool { return s.initialized }

// Algorithm returns the digest algorithm the store addresses content with.
func (s *Store) Algorithm() string { return s.cfg.algorithm }

// Get returns the entry for a checksum, or ErrNotFound. Stored extensions
// are ignored when matching.
func (s *Store) Get(checksum string) (Entry, error) {
	abs, err := s.locate(checksum)
	if err != nil {
		return Entry{}, err
	}
	rel, err := filepath.Rel(s.root, abs)
	if err != nil {
		return Entry{}, fmt.Errorf("relativize %s: %w", abs, err)
	}
	return Entry{Checksum: checksum, Path: rel}, nil
}

// Open returns a readable handle over the file stored for checksum, or
// ErrNotFound.
func (s *Store) Open(checksum string) (*os.File, error) {
	abs, err := s.locate(checksum)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, checksum)
		}
		return nil, fmt.Errorf("open %s: %w", abs, err)
	}
	return f, nil
}

// Exists reports whether content with the given checksum is stored.
func (s *Store) Exists(checksum string) bool {
	_, err := s.locate(checksum)
	return err == nil
}

// Delete removes the file stored for checksum, then removes each now-empty
// ancestor directory up to (not including) the store root. Deleting absent
// content is a no-op.
func (s *Store) Delete(checksum string) error {
	abs, err := s.locate(checksum)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if err := os.Remove(abs); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("delete %s: %w", abs, err)
	}
	s.pruneEmpty(filepath.Dir(abs))
	return nil
}

// locate resolves a checksum to the absolute path of its stored file,
// matching the exact address first and then the address with any
// extension.
func (s *Store) locate(checksum string) (string, error) {
	if len(checksum) != s.hexLen {
		return "", fmt.Errorf("%w: %s", ErrNotFound, checksum)
	}
	abs := filepath.Join(s.root, s.addressFor(checksum, ""))
	if fileExists(abs) {
		return abs, nil
	}

	entries, err := os.ReadDir(filepath.Dir(abs))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, checksum)
	}
	leaf := filepath.Base(abs)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), leaf+".") {
			return filepath.Join(filepath.Dir(abs), e.Name()), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, checksum)
}

// pruneEmpty removes empty directories from dir upward, stopping at the
// store root, the first non-empty directory, or a symlinked one.
func (s *Store) pruneEmpty(dir string) {
	for dir != s.root && strings.HasPrefix(dir, s.root+string(filepath.Separator)) {
		info, err := os.Lstat(dir)
		if err != nil || info.Mode()&os.ModeSymlink != 0 {
			return
		}
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

// Checksum computes the digest of r under the store's algorithm without
// storing anything.
func (s *Store) Checksum(r io.Reader) (string, error) {
	return hasher.Sum(s.cfg.algorithm, r, s.cfg.hashWorkers)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
