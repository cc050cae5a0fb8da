package evercas

import (
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
)

// PutOption configures a single put.
type PutOption func(*putOptions)

type putOptions struct {
	extension string
	strategy  PutStrategy
}

// WithExtension appends an extension to the stored file's leaf name. The
// extension never participates in addressing; lookups ignore it.
func WithExtension(ext string) PutOption {
	return func(o *putOptions) { o.extension = ext }
}

// WithStrategy overrides the store's default put strategy for one call.
// Combine with StrategyByName for the built-ins, or NewStrategy for a
// custom one.
func WithStrategy(strategy PutStrategy) PutOption {
	return func(o *putOptions) { o.strategy = strategy }
}

// Put stores the file at path under the digest of its contents and
// returns its entry. Identical content converges to exactly one stored
// file: if the computed address already exists the staged copy is
// discarded and the entry reports IsDuplicate.
func (s *Store) Put(path string, opts ...PutOption) (Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return Entry{}, fmt.Errorf("open source %s: %w", path, err)
	}
	defer f.Close()
	abs, err := filepath.Abs(path)
	if err != nil {
		return Entry{}, fmt.Errorf("resolve source %s: %w", path, err)
	}
	return s.put(f, abs, opts)
}

// PutReader stores the content of r. The link strategy has no source path
// to link from here and falls back to copy.
func (s *Store) PutReader(r io.Reader, opts ...PutOption) (Entry, error) {
	return s.put(r, "", opts)
}

func (s *Store) put(r io.Reader, sourcePath string, opts []PutOption) (Entry, error) {
	if !s.initialized {
		return Entry{}, ErrNotInitialized
	}

	var po putOptions
	for _, opt := range opts {
		opt(&po)
	}
	strategy := po.strategy
	if strategy == nil {
		strategy = s.defaultStrategy
	}

	staged, err := s.stage(r, sourcePath)
	if err != nil {
		return Entry{}, err
	}
	defer staged.discard()

	rel := s.addressFor(staged.checksum, s.normalizeExtension(po.extension))
	dest := filepath.Join(s.root, rel)

	// Duplicate short-circuit. This is an optimization, not the race
	// guard: concurrent puts of the same content may both get here, and
	// the atomic finalization below keeps the winner's file intact.
	if fileExists(dest) {
		return Entry{Checksum: staged.checksum, Path: rel, IsDuplicate: true}, nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), s.cfg.dirMode); err != nil {
		return Entry{}, fmt.Errorf("create address dirs for %s: %w", rel, err)
	}

	req := PutRequest{StagedPath: staged.path, SourcePath: staged.source, FileMode: s.cfg.fileMode}
	if err := strategy.Put(req, dest); err != nil {
		return Entry{}, &PutStrategyError{Strategy: strategy.Name(), Dest: rel, Err: err}
	}

	return Entry{Checksum: staged.checksum, Path: rel}, nil
}

// PutDirResult pairs one source file under PutDir's directory with the
// outcome of putting it.
type PutDirResult struct {
	Source string
	Entry  Entry
	Err    error
}

// PutDir stores every file under dir, yielding results lazily in
// directory-traversal order. When recursive is false only dir's immediate
// files are stored. When extensions is true each source file's extension
// is preserved on its stored leaf.
//
// The sequence is not restartable: ranging over it again re-walks the
// directory and re-puts from scratch.
func (s *Store) PutDir(dir string, recursive, extensions bool, opts ...PutOption) iter.Seq[PutDirResult] {
	return func(yield func(PutDirResult) bool) {
		for path, walkErr := range walkFiles(dir, recursive) {
			if walkErr != nil {
				yield(PutDirResult{Source: path, Err: walkErr})
				return
			}
			putOpts := opts
			if extensions {
				if ext := filepath.Ext(path); ext != "" {
					putOpts = append(opts[:len(opts):len(opts)], WithExtension(ext))
				}
			}
			entry, err := s.Put(path, putOpts...)
			if !yield(PutDirResult{Source: path, Entry: entry, Err: err}) {
				return
			}
		}
	}
}

// walkFiles yields files under dir, optionally recursing, in traversal
// order.
func walkFiles(dir string, recursive bool) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if !recursive {
			entries, err := os.ReadDir(dir)
			if err != nil {
				yield(dir, fmt.Errorf("read dir %s: %w", dir, err))
				return
			}
			for _, e := range entries {
				if e.Type().IsRegular() {
					if !yield(filepath.Join(dir, e.Name()), nil) {
						return
					}
				}
			}
			return
		}

		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
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
			yield(dir, fmt.Errorf("walk %s: %w", dir, err))
		}
	}
}
