// Package materializer writes the files declared by an exporter run into an
// output directory.
//
// A run has four phases: destination validation, collision check, content
// resolution and commit. Nothing is written until every file's content has
// been resolved into memory, and the commit stages all files as temporary
// files before renaming any of them into place, so a failure leaves the
// previous state of the output directory intact. Directories are only ever
// created, never removed.
package materializer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hellenic-development/supernova-cli/pkg/exporter"
)

// Error kinds. They are wrapped with the offending path or URL.
var (
	ErrDestinationExists     = errors.New("destination already exists")
	ErrDestinationInvalid    = errors.New("invalid destination")
	ErrRemoteFetchFailed     = errors.New("remote fetch failed")
	ErrSourceReadFailed      = errors.New("source read failed")
	ErrFilesystemWriteFailed = errors.New("filesystem write failed")
)

// DefaultConcurrency is the size of the content resolution window.
const DefaultConcurrency = 4

// DefaultDownloadTimeout bounds a single copy_file_remote download.
const DefaultDownloadTimeout = 5 * time.Minute

// Materializer writes emitted files under a single output root.
type Materializer struct {
	root           string
	allowOverwrite bool
	concurrency    int
	sourceRoot     string
	httpClient     *http.Client
	logger         *slog.Logger
}

// Option customizes a Materializer.
type Option func(*Materializer)

// WithOverwrite allows replacing files that already exist at a destination. By
// default any pre-existing destination aborts the run before anything is written.
func WithOverwrite(allow bool) Option {
	return func(m *Materializer) {
		m.allowOverwrite = allow
	}
}

// WithConcurrency sets how many files are resolved at the same time.
func WithConcurrency(n int) Option {
	return func(m *Materializer) {
		if n > 0 {
			m.concurrency = n
		}
	}
}

// WithSourceRoot sets the directory relative copy_file sources resolve against,
// usually the exporter package directory.
func WithSourceRoot(dir string) Option {
	return func(m *Materializer) {
		m.sourceRoot = dir
	}
}

// WithHTTPClient replaces the client used for copy_file_remote downloads.
func WithHTTPClient(hc *http.Client) Option {
	return func(m *Materializer) {
		m.httpClient = hc
	}
}

// WithLogger sets the logger for progress messages.
func WithLogger(l *slog.Logger) Option {
	return func(m *Materializer) {
		m.logger = l
	}
}

// New returns a materializer writing under root.
func New(root string, opts ...Option) *Materializer {
	m := &Materializer{
		root:        root,
		concurrency: DefaultConcurrency,
		httpClient:  &http.Client{Timeout: DefaultDownloadTimeout},
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Report summarizes a successful run.
type Report struct {
	RunID string
	Root  string
	Files []string // absolute destination paths, in emission order
	Bytes int64
}

// entry is one planned write.
type entry struct {
	file exporter.EmittedFile
	dest string
}

// Materialize writes files under the output root. It fails with
// ErrDestinationInvalid or ErrDestinationExists before any I/O beyond existence
// checks, with ErrRemoteFetchFailed or ErrSourceReadFailed before any write, and
// with ErrFilesystemWriteFailed if the commit cannot complete, in which case
// staged files are removed and replaced files restored.
func (m *Materializer) Materialize(ctx context.Context, files []exporter.EmittedFile) (*Report, error) {
	runID := uuid.NewString()
	logger := m.logger.With("run_id", runID)

	root, err := filepath.Abs(m.root)
	if err != nil {
		return nil, fmt.Errorf("%w: output directory %s: %v", ErrDestinationInvalid, m.root, err)
	}

	entries, err := plan(root, files)
	if err != nil {
		return nil, err
	}
	if err := m.precheck(root, entries); err != nil {
		return nil, err
	}

	logger.Debug("resolving output files", "count", len(entries), "concurrency", m.concurrency)
	contents, err := m.resolveAll(ctx, entries)
	if err != nil {
		return nil, err
	}

	logger.Debug("committing output files", "root", root)
	c := &commit{runID: runID, logger: logger}
	written, err := c.run(entries, contents)
	if err != nil {
		return nil, err
	}

	report := &Report{RunID: runID, Root: root, Bytes: written}
	for _, e := range entries {
		report.Files = append(report.Files, e.dest)
	}
	logger.Info("export written", "root", root, "files", len(report.Files), "bytes", written)
	return report, nil
}

// plan validates every destination and collapses duplicates: a later file with
// the same destination replaces the earlier one but keeps its position.
func plan(root string, files []exporter.EmittedFile) ([]entry, error) {
	entries := make([]entry, 0, len(files))
	index := make(map[string]int, len(files))

	for _, f := range files {
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDestinationInvalid, err)
		}
		dest, err := Destination(root, f.Path)
		if err != nil {
			return nil, err
		}
		if i, seen := index[dest]; seen {
			entries[i].file = f
			continue
		}
		index[dest] = len(entries)
		entries = append(entries, entry{file: f, dest: dest})
	}

	// A destination cannot also be the directory of another one.
	for _, e := range entries {
		for dir := filepath.Dir(e.dest); dir != root && len(dir) > len(root); dir = filepath.Dir(dir) {
			if _, clash := index[dir]; clash {
				return nil, fmt.Errorf("%w: %s is both a file and the directory of %s", ErrDestinationInvalid, dir, e.dest)
			}
		}
	}
	return entries, nil
}

// precheck verifies the output root, that every existing parent of a destination
// is a directory inside it, and, unless overwriting is allowed, that no
// destination exists yet. The first collision aborts the run.
func (m *Materializer) precheck(root string, entries []entry) error {
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		return fmt.Errorf("%w: output path %s exists and is not a directory", ErrDestinationInvalid, root)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s: %v", ErrFilesystemWriteFailed, root, err)
	}

	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s: %v", ErrFilesystemWriteFailed, root, err)
	}

	for _, e := range entries {
		if realRoot != "" {
			if err := checkParents(root, realRoot, e.dest); err != nil {
				return err
			}
		}

		info, err := os.Lstat(e.dest)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrFilesystemWriteFailed, e.dest, err)
		}
		if info.IsDir() {
			return fmt.Errorf("%w: destination %s is a directory", ErrDestinationInvalid, e.dest)
		}
		if !m.allowOverwrite {
			return fmt.Errorf("%w: exporter produced file for destination %s but that file already exists; enable overriding to replace it", ErrDestinationExists, e.dest)
		}
	}
	return nil
}

// checkParents walks the existing directories between root and dest. Each must
// be a directory and, once symlinks are resolved, still lie inside realRoot.
// Missing directories end the walk; they are created under a checked parent.
func checkParents(root, realRoot, dest string) error {
	rel, err := filepath.Rel(root, filepath.Dir(dest))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDestinationInvalid, dest, err)
	}
	if rel == "." {
		return nil
	}

	cur := root
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		cur = filepath.Join(cur, part)

		info, err := os.Lstat(cur)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrFilesystemWriteFailed, cur, err)
		}

		if info.Mode()&fs.ModeSymlink != 0 {
			target, err := filepath.EvalSymlinks(cur)
			if err != nil {
				return fmt.Errorf("%w: %s is a broken symlink: %v", ErrDestinationInvalid, cur, err)
			}
			if !within(realRoot, target) {
				return fmt.Errorf("%w: %s resolves to %s outside the output directory", ErrDestinationInvalid, cur, target)
			}
			if info, err = os.Stat(target); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrFilesystemWriteFailed, target, err)
			}
		}
		if !info.IsDir() {
			return fmt.Errorf("%w: %s is not a directory", ErrDestinationInvalid, cur)
		}
	}
	return nil
}

func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// resolveAll loads the content of every entry with bounded concurrency. The first
// failure cancels the remaining work.
func (m *Materializer) resolveAll(ctx context.Context, entries []entry) ([][]byte, error) {
	contents := make([][]byte, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	for i := range entries {
		g.Go(func() error {
			b, err := m.resolve(gctx, entries[i].file)
			if err != nil {
				return err
			}
			contents[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return contents, nil
}

// Destination maps a slash-separated relative path onto root. Backslashes are
// treated as separators. Empty and absolute paths, paths that resolve to root
// itself and paths escaping root through ".." fail with ErrDestinationInvalid.
func Destination(root, p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", fmt.Errorf("%w: empty path", ErrDestinationInvalid)
	}
	if strings.ContainsRune(p, 0) {
		return "", fmt.Errorf("%w: path %q contains a NUL byte", ErrDestinationInvalid, p)
	}

	slashed := strings.ReplaceAll(p, `\`, "/")
	if path.IsAbs(slashed) || filepath.VolumeName(filepath.FromSlash(slashed)) != "" || hasDrivePrefix(slashed) {
		return "", fmt.Errorf("%w: path %s must be relative to the output directory", ErrDestinationInvalid, p)
	}

	clean := path.Clean(slashed)
	if clean == "." {
		return "", fmt.Errorf("%w: path %s resolves to the output directory itself", ErrDestinationInvalid, p)
	}
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: path %s points outside the output directory", ErrDestinationInvalid, p)
	}

	return filepath.Join(root, filepath.FromSlash(clean)), nil
}

func hasDrivePrefix(p string) bool {
	return len(p) >= 2 && p[1] == ':' && ((p[0] >= 'a' && p[0] <= 'z') || (p[0] >= 'A' && p[0] <= 'Z'))
}
