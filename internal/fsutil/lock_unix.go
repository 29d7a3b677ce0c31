//go:build unix

package fsutil

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// LockFileName is the lock file created inside a locked directory.
const LockFileName = ".pqencrypt.lock"

// LockDir takes an exclusive advisory lock on dir, blocking until it is
// available. The returned function releases it.
func LockDir(dir string) (func(), error) {
	f, err := os.OpenFile(filepath.Join(dir, LockFileName), os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, err
	}

	for {
		err = unix.Flock(int(f.Fd()), unix.LOCK_EX)
		if err != unix.EINTR {
			break
		}
	}
	if err != nil {
		f.Close()
		return nil, err
	}

	return func() {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
	}, nil
}
