package evercas

import (
	"io/fs"

	"github.com/weedonandscott/evercas/internal/hasher"
)

// Addressing defaults. Two hex characters of prefix at one level keeps
// directory fan-out at 256 for typical stores.
const (
	DefaultDepth = 1
	DefaultWidth = 2

	// DefaultFileMode makes stored files owner-read-only so content can't
	// be clobbered in place by accident.
	DefaultFileMode fs.FileMode = 0o400

	// DefaultDirMode applies to every directory the store creates.
	DefaultDirMode fs.FileMode = 0o700
)

// config is the immutable per-store configuration. A copy lives in the
// Store; the addressing fields are persisted by Init and verified on Open.
type config struct {
	algorithm           string
	depth               int
	width               int
	fileMode            fs.FileMode
	dirMode             fs.FileMode
	defaultStrategy     string
	lowercaseExtensions bool
	hashWorkers         int

	// explicit records which addressing options the caller set, so Open
	// can tell a deliberate conflict from a defaulted field.
	explicit struct {
		algorithm bool
		depth     bool
		width     bool
		strategy  bool
	}
}

func defaultConfig() config {
	return config{
		algorithm:       hasher.DefaultAlgorithm,
		depth:           DefaultDepth,
		width:           DefaultWidth,
		fileMode:        DefaultFileMode,
		dirMode:         DefaultDirMode,
		defaultStrategy: StrategyCopy,
		hashWorkers:     hasher.DefaultWorkers,
	}
}

// Option configures a store at Open, Init or Reconfigure time.
type Option func(*config)

// WithAlgorithm selects the digest algorithm ("blake3", "sha256", "sha512").
func WithAlgorithm(name string) Option {
	return func(c *config) {
		c.algorithm = name
		c.explicit.algorithm = true
	}
}

// WithDepth sets the number of nested prefix directories per address.
func WithDepth(n int) Option {
	return func(c *config) {
		c.depth = n
		c.explicit.depth = true
	}
}

// WithWidth sets the number of hex characters per prefix directory.
func WithWidth(n int) Option {
	return func(c *config) {
		c.width = n
		c.explicit.width = true
	}
}

// WithDefaultStrategy sets the put strategy used when Put is not given one
// explicitly. Must name a built-in strategy.
func WithDefaultStrategy(name string) Option {
	return func(c *config) {
		c.defaultStrategy = name
		c.explicit.strategy = true
	}
}

// WithFileMode sets the permission bits applied to stored files.
func WithFileMode(mode fs.FileMode) Option {
	return func(c *config) { c.fileMode = mode }
}

// WithDirMode sets the permission bits for directories the store creates.
func WithDirMode(mode fs.FileMode) Option {
	return func(c *config) { c.dirMode = mode }
}

// WithLowercaseExtensions normalizes extensions to lower case on put.
func WithLowercaseExtensions() Option {
	return func(c *config) { c.lowercaseExtensions = true }
}

// WithHashWorkers bounds the chunk-hashing pool for large inputs. The
// digest itself does not depend on the worker count.
func WithHashWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.hashWorkers = n
		}
	}
}
