//go:build darwin || freebsd || linux
// +build darwin freebsd linux

package fs

import (
	"time"

	"golang.org/x/sys/unix"
)

func modKey(path string) (ModKey, error) {
	var stat unix.Stat_t
	if err := unix.Stat(path, &stat); err != nil {
		return ModKey{}, err
	}
	mtime := stat.Mtim

	// We can't detect changes if the file system zeros out the modification time
	if mtime.Sec == 0 && mtime.Nsec == 0 {
		return ModKey{}, modKeyUnusable
	}

	// Don't generate a modification key if the file is too new
	now, err := unix.TimeToTimespec(time.Now())
	if err != nil {
		return ModKey{}, err
	}
	if sec := mtime.Sec + modKeySafetyGap; sec > now.Sec || (sec == now.Sec && mtime.Nsec > now.Nsec) {
		return ModKey{}, modKeyUnusable
	}

	return ModKey{
		inode:      uint64(stat.Ino),
		size:       stat.Size,
		mtime_sec:  int64(mtime.Sec),
		mtime_nsec: int64(mtime.Nsec),
		mode:       uint32(stat.Mode),
		uid:        stat.Uid,
	}, nil
}
