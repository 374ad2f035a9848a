package fetch

import "fmt"

// Status is the state of a requested locator.
type Status int

const (
	// StatusPending means the download is queued or in flight.
	StatusPending Status = iota
	// StatusReady means the resource is on disk at Result.Path.
	StatusReady
	// StatusFailed means the attempt failed with Result.Err.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is the answer to a Submit poll.
type Result struct {
	Status Status
	Path   string
	Err    error
}

// Pending returns a pending result.
func Pending() Result { return Result{Status: StatusPending} }

// Ready returns a result pointing at the downloaded file.
func Ready(path string) Result { return Result{Status: StatusReady, Path: path} }

// Failed returns a failed result carrying err.
func Failed(err error) Result { return Result{Status: StatusFailed, Err: err} }
