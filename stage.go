package evercas

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/weedonandscott/evercas/internal/hasher"
)

// stagedFile is a digested temporary file inside the store's scratch
// directory, not yet visible under its final address. It is owned by the
// in-flight put that created it and is either renamed into place or
// removed.
type stagedFile struct {
	checksum string
	path     string
	source   string // original file path, "" for reader input
}

// stage streams r into a unique temp file under the store's scratch
// directory while computing its digest. The scratch directory shares the
// store's filesystem, so the later finalization rename is atomic. No file
// is left behind on any error path.
func (s *Store) stage(r io.Reader, sourcePath string) (*stagedFile, error) {
	dir := s.scratchDir()
	if err := os.MkdirAll(dir, s.cfg.dirMode); err != nil {
		return nil, fmt.Errorf("create scratch dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "put-*")
	if err != nil {
		return nil, fmt.Errorf("create staging file in %s: %w", dir, err)
	}

	checksum, err := hasher.TeeSum(s.cfg.algorithm, r, tmp, s.cfg.hashWorkers)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("stage %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("close staging file %s: %w", tmp.Name(), err)
	}

	return &stagedFile{checksum: checksum, path: tmp.Name(), source: sourcePath}, nil
}

// discard removes the staged file if a strategy did not already consume
// it. Best effort: the scratch dir is store-private and invisible to
// addressing.
func (f *stagedFile) discard() {
	os.Remove(f.path)
}

func (s *Store) scratchDir() string {
	return filepath.Join(s.root, scratchDirName)
}
