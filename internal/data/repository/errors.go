package repository

import "errors"

var (
	// ErrCapacityExceeded means an increment would push registered_count past capacity.
	ErrCapacityExceeded = errors.New("seminar capacity exceeded")
	// ErrReferenceMissing wraps foreign key violations on insert.
	ErrReferenceMissing = errors.New("referenced record not found")
	// ErrCommitFailed means COMMIT returned an error. The server may still have
	// applied the transaction, so its outcome is unknown to the caller.
	ErrCommitFailed = errors.New("commit transaction")
)
