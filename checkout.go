package evercas

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio"
)

// Checkout copies the file stored for checksum to an external destination
// path, creating parent directories as needed. The bytes are re-digested
// while copying and the copy is discarded on a mismatch, so a checkout
// never hands out silently corrupted content.
func (s *Store) Checkout(checksum, dest string) error {
	src, err := s.Open(checksum)
	if err != nil {
		return err
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(dest), s.cfg.dirMode); err != nil {
		return fmt.Errorf("create checkout dirs for %s: %w", dest, err)
	}

	pending, err := renameio.TempFile(filepath.Dir(dest), dest)
	if err != nil {
		return fmt.Errorf("create pending checkout for %s: %w", dest, err)
	}
	defer pending.Cleanup()

	actual, err := s.Checksum(io.TeeReader(src, pending))
	if err != nil {
		return fmt.Errorf("checkout %s: %w", checksum, err)
	}
	if actual != checksum {
		return fmt.Errorf("checkout %s: stored content digests to %s", checksum, actual)
	}
	if err := pending.Chmod(s.cfg.fileMode); err != nil {
		return fmt.Errorf("chmod %s: %w", dest, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("finalize %s: %w", dest, err)
	}
	return nil
}

// CheckoutSymlink places a symlink at dest pointing at the stored file.
// The link shares the store's read-only file, so writers can't damage the
// stored content through it without first replacing the link.
func (s *Store) CheckoutSymlink(checksum, dest string) error {
	abs, err := s.locate(checksum)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), s.cfg.dirMode); err != nil {
		return fmt.Errorf("create checkout dirs for %s: %w", dest, err)
	}
	if err := renameio.Symlink(abs, dest); err != nil {
		return fmt.Errorf("symlink %s: %w", dest, err)
	}
	return nil
}
