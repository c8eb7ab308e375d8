package sweep

import "errors"

var (
	// ErrRootUnreadable is returned when the scan root cannot be listed.
	ErrRootUnreadable = errors.New("root unreadable")
	// ErrSubtreeUnreadable is returned under FailFast when a directory below the root cannot be listed.
	ErrSubtreeUnreadable = errors.New("subtree unreadable")
	// ErrDeleteFailed is returned when a matched directory fails to delete for a reason
	// other than missing permissions.
	ErrDeleteFailed = errors.New("delete failed")
)
