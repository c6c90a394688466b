// Package shared holds small helpers used by more than one THRESHOLD
// package, currently SQLite error classification for the session store's
// retry paths.
//
//nolint:revive // "shared" is an intentional package name for cross-cutting helpers.
package shared

import "strings"

// IsSQLiteBusyError reports whether err is a SQLITE_BUSY error: another
// connection holds the write lock.
func IsSQLiteBusyError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "SQLITE_BUSY")
}

// IsSQLiteLockedError reports whether err is SQLite's "database is locked"
// variant of the same condition.
func IsSQLiteLockedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "database is locked")
}

// IsSQLiteConflictError reports whether err is either SQLite concurrency
// error. Session writes retry with backoff when this is true.
func IsSQLiteConflictError(err error) bool {
	if err == nil {
		return false
	}
	return IsSQLiteBusyError(err) || IsSQLiteLockedError(err)
}
