package evercas

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/google/renameio"
)

// Built-in put strategy names, usable with WithDefaultStrategy and
// StrategyByName.
const (
	StrategyCopy = "copy"
	StrategyMove = "move"
	StrategyLink = "link"
)

// PutRequest is the context a put strategy receives. The store guarantees
// the destination's parent directories exist and that the destination was
// absent when the duplicate check ran; a concurrent put for the same
// content may still materialize it first, which strategies treat as
// success.
type PutRequest struct {
	// StagedPath is the fully written, digested temporary file inside the
	// store. It lives on the destination's filesystem, so renaming it into
	// place is atomic. The store removes it after the strategy runs if the
	// strategy did not consume it.
	StagedPath string

	// SourcePath is the original file the caller put, or "" when the
	// content came from a reader.
	SourcePath string

	// FileMode is the store's configured permission bits for stored files.
	FileMode fs.FileMode
}

// PutStrategy materializes staged or source content at its computed
// address. Implementations must make the destination visible atomically:
// a rename or link creation, never incremental writes to the final path.
type PutStrategy interface {
	Name() string
	Put(req PutRequest, dest string) error
}

// StrategyByName resolves a built-in strategy identifier.
func StrategyByName(name string) (PutStrategy, error) {
	switch name {
	case StrategyCopy:
		return copyStrategy{}, nil
	case StrategyMove:
		return moveStrategy{}, nil
	case StrategyLink:
		return linkStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown put strategy %q", name)
	}
}

// NewStrategy wraps a function as a named custom put strategy.
func NewStrategy(name string, fn func(req PutRequest, dest string) error) PutStrategy {
	return funcStrategy{name: name, fn: fn}
}

type funcStrategy struct {
	name string
	fn   func(PutRequest, string) error
}

func (s funcStrategy) Name() string                          { return s.name }
func (s funcStrategy) Put(req PutRequest, dest string) error { return s.fn(req, dest) }

// copyStrategy duplicates the staged bytes into place, leaving the staged
// file untouched. The copy lands in a pending file next to the destination
// and becomes visible through a single rename.
type copyStrategy struct{}

func (copyStrategy) Name() string { return StrategyCopy }

func (copyStrategy) Put(req PutRequest, dest string) error {
	return atomicCopy(req.StagedPath, dest, req.FileMode)
}

// moveStrategy renames the staged file into place. Single filesystem only,
// which staging already guarantees.
type moveStrategy struct{}

func (moveStrategy) Name() string { return StrategyMove }

func (moveStrategy) Put(req PutRequest, dest string) error {
	if err := os.Rename(req.StagedPath, dest); err != nil {
		return err
	}
	return os.Chmod(dest, req.FileMode)
}

// linkStrategy hard-links the original source into place and falls back to
// copy when linking cannot work: reader input with no source path,
// cross-device links, link count exhaustion, or a filesystem refusing
// links. Those conditions never surface to the caller; any other link
// error does.
type linkStrategy struct {
	// link defaults to os.Link; tests inject failures here.
	link func(oldname, newname string) error
}

func (linkStrategy) Name() string { return StrategyLink }

func (s linkStrategy) Put(req PutRequest, dest string) error {
	if req.SourcePath == "" {
		return copyStrategy{}.Put(req, dest)
	}
	link := s.link
	if link == nil {
		link = os.Link
	}
	err := link(req.SourcePath, dest)
	switch {
	case err == nil:
		// The link shares the source's inode; setting the store mode here
		// also applies to the source, same as the link contract implies.
		return os.Chmod(dest, req.FileMode)
	case errors.Is(err, fs.ErrExist):
		// A concurrent put won the race. The content at dest is ours by
		// address construction.
		return nil
	case isLinkFallback(err):
		return copyStrategy{}.Put(req, dest)
	default:
		return err
	}
}

// isLinkFallback reports the errno set that downgrades link to copy.
// EPERM may also be a genuine permissions problem; if so the fallback copy
// fails with it anyway.
func isLinkFallback(err error) bool {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return false
	}
	return errno == syscall.EXDEV || errno == syscall.EMLINK || errno == syscall.EPERM
}

// atomicCopy copies src into a pending file alongside dest and renames it
// into place with the requested mode.
func atomicCopy(src, dest string, mode fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	pending, err := renameio.TempFile(filepath.Dir(dest), dest)
	if err != nil {
		return fmt.Errorf("create pending file for %s: %w", dest, err)
	}
	defer pending.Cleanup()

	if _, err := io.Copy(pending, in); err != nil {
		return fmt.Errorf("copy to %s: %w", dest, err)
	}
	if err := pending.Chmod(mode); err != nil {
		return fmt.Errorf("chmod %s: %w", dest, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("finalize %s: %w", dest, err)
	}
	return nil
}
