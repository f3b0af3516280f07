// Package flock provides cross-platform file locking for the snapshot
// store's data directory. The store holds an exclusive, non-blocking lock
// for the life of the process so a second server instance pointed at the
// same data dir fails fast instead of interleaving snapshot writes.
//
// Usage:
//
//	file, _ := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
//	if err := flock.Exclusive(file.Fd()); err != nil {
//	    // Lock not acquired - the directory is in use
//	}
//	defer flock.Unlock(file.Fd())
package flock
