package reconcile

import (
	"errors"
	"time"

	"github.com/five82/quotebox/internal/quote"
)

// Choice is the user's answer to a manual conflict.
type Choice string

const (
	// KeepLocal keeps the local edit and schedules it for re-push.
	KeepLocal Choice = "local"
	// AcceptServer replaces the local record with the remote one.
	AcceptServer Choice = "server"
)

var (
	// ErrUnknownConflict is returned when the conflict's record is gone.
	ErrUnknownConflict = errors.New("conflict refers to an unknown record")
	// ErrStaleConflict is returned when the local record changed after the
	// conflict was detected.
	ErrStaleConflict = errors.New("record changed since the conflict was detected")
	// ErrUnknownChoice is returned for choices other than KeepLocal and AcceptServer.
	ErrUnknownChoice = errors.New("unknown conflict choice")
)

// Resolve applies choice to the record named by c and returns the new
// collection. records is not modified.
func Resolve(records []quote.Record, c Conflict, choice Choice, now time.Time) ([]quote.Record, error) {
	idx := -1
	for i, r := range records {
		if r.ID == c.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrUnknownConflict
	}
	current := records[idx]
	if !current.SameContent(c.Local) {
		return nil, ErrStaleConflict
	}

	out := quote.Clone(records)
	switch choice {
	case KeepLocal:
		current.Dirty = true
		current.UpdatedAt = quote.Stamp(now)
		out[idx] = current
	case AcceptServer:
		remote := c.Remote
		remote.Dirty = false
		out[idx] = remote
	default:
		return nil, ErrUnknownChoice
	}
	return out, nil
}
