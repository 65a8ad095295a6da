package override

import (
	"errors"
	"fmt"
)

// ErrBulkFailed is returned by [BulkResult.Err] when no file could be
// processed.
var ErrBulkFailed = errors.New("every override removal failed")

// Failure records the error for a single file of a bulk operation.
type Failure struct {
	Err  error
	File FileID
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.File, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// BulkResult is the outcome of a bulk removal. Files are processed
// independently, so a result may mix removed, missing and failed files.
type BulkResult struct {
	Removed []FileID
	Missing []FileID
	Failed  []Failure
}

// Total returns the number of files processed.
func (r *BulkResult) Total() int {
	return len(r.Removed) + len(r.Missing) + len(r.Failed)
}

// Partial reports whether some, but not all, files failed.
func (r *BulkResult) Partial() bool {
	return len(r.Failed) > 0 && len(r.Failed) < r.Total()
}

// Err returns nil unless every processed file failed. Partial failures are
// reported through [BulkResult.Failed] and [BulkResult.Partial].
func (r *BulkResult) Err() error {
	if len(r.Failed) == 0 || r.Partial() {
		return nil
	}

	errs := make([]error, 0, len(r.Failed)+1)
	errs = append(errs, ErrBulkFailed)

	for _, f := range r.Failed {
		errs = append(errs, f)
	}

	return errors.Join(errs...)
}
