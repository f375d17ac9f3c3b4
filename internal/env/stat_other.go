//go:build !linux

package env

import "os"

// statTimes falls back to mtime for ctime and atime on platforms where
// POSIX st_ctime/st_atime are not exposed through os.FileInfo. The
// original tool this was distilled from has no non-POSIX support either,
// so there is no reference behavior to match outside Linux.
func statTimes(fi os.FileInfo) (ctime, atime, mtime float64) {
	mtime = float64(fi.ModTime().UnixNano()) / 1e9
	return mtime, mtime, mtime
}
