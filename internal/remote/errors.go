package remote

import "fmt"

// NetworkError reports a failed exchange with the remote endpoint, either a
// transport failure or a non-success status.
type NetworkError struct {
	Op         string // "fetch" or "push"
	URL        string
	StatusCode int // zero for transport failures
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: returned status %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
