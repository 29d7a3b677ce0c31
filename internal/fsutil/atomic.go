package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

// MaxSuffix bounds the search for a free name in WriteFileUnique.
const MaxSuffix = 10000

// ErrNoFreeName is returned when every candidate name up to MaxSuffix exists.
var ErrNoFreeName = errors.New("no free file name")

// EnsureDir creates dir and any missing parents. It is a no-op when dir exists.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o700)
}

// writeTemp writes data to a new temporary file next to path and returns its name.
func writeTemp(dir string, data []byte, perm fs.FileMode) (string, error) {
	f, err := os.CreateTemp(dir, ".pqencrypt-*.tmp")
	if err != nil {
		return "", err
	}
	name := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(name)
		return "", err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(name)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", err
	}
	if err := os.Chmod(name, perm); err != nil {
		os.Remove(name)
		return "", err
	}
	return name, nil
}

// WriteFileAtomic writes data to path so that readers observe either the old
// content or the complete new content, never a partial file.
func WriteFileAtomic(path string, data []byte, perm fs.FileMode) error {
	tmp, err := writeTemp(filepath.Dir(path), data, perm)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// UniqueName returns the n-th candidate name: base+ext for n == 1, then
// base_2+ext, base_3+ext, ...
func UniqueName(base, ext string, n int) string {
	if n <= 1 {
		return base + ext
	}
	return base + "_" + strconv.Itoa(n) + ext
}

// WriteFileUnique stores data under the first free name in dir following
// UniqueName and returns the full path. Allocation holds an exclusive lock
// on dir, and the file is published with a hard link, which fails rather
// than replace an existing file.
func WriteFileUnique(dir, base, ext string, data []byte, perm fs.FileMode) (string, error) {
	unlock, err := LockDir(dir)
	if err != nil {
		return "", fmt.Errorf("lock %s: %w", dir, err)
	}
	defer unlock()

	tmp, err := writeTemp(dir, data, perm)
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp)

	for n := 1; n <= MaxSuffix; n++ {
		path := filepath.Join(dir, UniqueName(base, ext, n))
		err := os.Link(tmp, path)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %s%s in %s", ErrNoFreeName, base, ext, dir)
}
