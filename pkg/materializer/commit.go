package materializer

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// staged tracks one destination through the commit.
type staged struct {
	dest    string
	temp    string
	backup  string
	renamed bool
}

// commit writes resolved contents in two phases. Every file is first written to a
// temporary sibling of its destination; only when all of them are on disk are
// they renamed into place. Files that get replaced are moved aside first so they
// can be restored if a later rename fails.
type commit struct {
	runID  string
	logger *slog.Logger
	files  []*staged
}

func (c *commit) run(entries []entry, contents [][]byte) (int64, error) {
	for _, e := range entries {
		if err := os.MkdirAll(filepath.Dir(e.dest), 0o755); err != nil {
			return 0, fmt.Errorf("%w: create directory for %s: %v", ErrFilesystemWriteFailed, e.dest, err)
		}
	}

	var total int64
	for i, e := range entries {
		s, err := stage(e.dest, contents[i])
		if err != nil {
			c.discard()
			return 0, err
		}
		c.files = append(c.files, s)
		total += int64(len(contents[i]))
	}

	for _, s := range c.files {
		if err := c.swap(s); err != nil {
			c.rollback()
			return 0, err
		}
	}

	c.finish()
	return total, nil
}

// stage writes b to a temporary file in the destination's directory.
func stage(dest string, b []byte) (*staged, error) {
	f, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("%w: stage %s: %v", ErrFilesystemWriteFailed, dest, err)
	}
	s := &staged{dest: dest, temp: f.Name()}

	_, werr := f.Write(b)
	if werr == nil {
		werr = f.Chmod(0o644)
	}
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		os.Remove(s.temp)
		return nil, fmt.Errorf("%w: stage %s: %v", ErrFilesystemWriteFailed, dest, err)
	}
	return s, nil
}

// swap moves an existing file aside, then renames the staged file onto it.
// Directories are never moved.
func (c *commit) swap(s *staged) error {
	if info, err := os.Lstat(s.dest); err == nil {
		if info.IsDir() {
			return fmt.Errorf("%w: destination %s is a directory", ErrDestinationInvalid, s.dest)
		}
		backup := s.dest + ".bak-" + c.runID
		if err := os.Rename(s.dest, backup); err != nil {
			return fmt.Errorf("%w: replace %s: %v", ErrFilesystemWriteFailed, s.dest, err)
		}
		s.backup = backup
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s: %v", ErrFilesystemWriteFailed, s.dest, err)
	}

	if err := os.Rename(s.temp, s.dest); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrFilesystemWriteFailed, s.dest, err)
	}
	s.renamed = true
	return nil
}

// rollback undoes every swap in reverse order and removes leftover temp files.
func (c *commit) rollback() {
	for i := len(c.files) - 1; i >= 0; i-- {
		s := c.files[i]
		if s.renamed {
			if err := os.Remove(s.dest); err != nil {
				c.logger.Warn("rollback: remove written file", "path", s.dest, "error", err)
			}
		} else {
			os.Remove(s.temp)
		}
		if s.backup != "" {
			if err := os.Rename(s.backup, s.dest); err != nil {
				c.logger.Error("rollback: restore replaced file", "path", s.dest, "backup", s.backup, "error", err)
			}
		}
	}
}

// discard removes staged temp files when staging itself failed.
func (c *commit) discard() {
	for _, s := range c.files {
		os.Remove(s.temp)
	}
}

// finish drops the backups of replaced files.
func (c *commit) finish() {
	for _, s := range c.files {
		if s.backup == "" {
			continue
		}
		if err := os.Remove(s.backup); err != nil {
			c.logger.Warn("remove backup", "path", s.backup, "error", err)
		}
	}
}
