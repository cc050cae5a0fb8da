// Package hasher provides the digest capability used to address store
// content. Algorithms are registered by name; the store pins one per
// configuration.
//
// Digests are computed over fixed-size chunks so that large inputs can be
// hashed by a pool of workers. Because the chunk size is a constant, the
// resulting digest does not depend on the worker count: one worker and
// sixteen workers produce the same checksum for the same bytes.
package hasher

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"sync"

	"github.com/sourcegraph/conc/pool"
	"github.com/zeebo/blake3"
)

const (
	// DefaultAlgorithm addresses content with BLAKE3.
	DefaultAlgorithm = "blake3"

	// ChunkSize is the unit of parallel hashing. Fixed: changing it
	// changes every multi-chunk digest in existing stores.
	ChunkSize = 4 << 20

	// DefaultWorkers bounds the chunk-hashing pool.
	DefaultWorkers = 4
)

// treeDomain separates multi-chunk digests from plain digests, so a small
// file whose content happens to equal a concatenation of chunk digests
// cannot collide with a large file's combined digest.
const treeDomain = "evercas.chunked.v1"

// New returns a fresh hash state for the named algorithm.
func New(algorithm string) (hash.Hash, error) {
	switch algorithm {
	case "blake3":
		return blake3.New(), nil
	case "sha256":
		return sha256.New(), nil
	case "sha512":
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("unknown hash algorithm %q", algorithm)
	}
}

// HexLength returns the length of the named algorithm's hex digest.
func HexLength(algorithm string) (int, error) {
	h, err := New(algorithm)
	if err != nil {
		return 0, err
	}
	return h.Size() * 2, nil
}

// Sum computes the hex digest of r. Inputs that fit in a single chunk get
// the plain algorithm digest. Larger inputs are split into ChunkSize chunks
// hashed by up to workers goroutines; the final digest covers the chunk
// digests in order, under the treeDomain prefix.
func Sum(algorithm string, r io.Reader, workers int) (string, error) {
	if _, err := New(algorithm); err != nil {
		return "", err
	}
	if workers < 1 {
		workers = 1
	}

	first := make([]byte, ChunkSize)
	n, err := io.ReadFull(r, first)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		h, _ := New(algorithm)
		h.Write(first[:n])
		return hex.EncodeToString(h.Sum(nil)), nil
	}
	if err != nil {
		return "", err
	}

	var (
		mu      sync.Mutex
		digests = make(map[int][]byte)
	)
	p := pool.New().WithMaxGoroutines(workers).WithErrors()
	hashChunk := func(index int, data []byte) {
		p.Go(func() error {
			h, err := New(algorithm)
			if err != nil {
				return err
			}
			h.Write(data)
			mu.Lock()
			digests[index] = h.Sum(nil)
			mu.Unlock()
			return nil
		})
	}

	hashChunk(0, first)
	count := 1

	var readErr error
	for {
		buf := make([]byte, ChunkSize)
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			hashChunk(count, buf[:n])
			count++
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			readErr = err
			break
		}
	}

	if err := p.Wait(); err != nil {
		return "", err
	}
	if readErr != nil {
		return "", readErr
	}

	root, _ := New(algorithm)
	root.Write([]byte(treeDomain))
	for i := range count {
		root.Write(digests[i])
	}
	return hex.EncodeToString(root.Sum(nil)), nil
}

// TeeSum computes the hex digest of r while copying its bytes to w. The
// copy is sequential and in input order; only chunk hashing fans out.
func TeeSum(algorithm string, r io.Reader, w io.Writer, workers int) (string, error) {
	return Sum(algorithm, io.TeeReader(r, w), workers)
}
