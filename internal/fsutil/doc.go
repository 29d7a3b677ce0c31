// Package fsutil provides the file operations pqencrypt relies on for
// persisting artifacts: atomic writes (temp file + rename) and collision-free
// name allocation that never overwrites an existing file.
package fsutil
