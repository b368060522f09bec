package session

import (
	"errors"

	"github.com/spigell/resume-ranker/internal/ranker"
	"github.com/spigell/resume-ranker/internal/results"
)

const (
	reasonNoFiles          = "no files selected"
	reasonMissingJobDesc   = "missing job description"
	reasonNoFilename       = "no filename selected"
	defaultCompleteMessage = "Processing complete."
)

// ErrAlreadyInProgress is returned by Submit while another submission is in flight.
var ErrAlreadyInProgress = errors.New("upload already in progress")

// ValidationError is a precondition failure detected before any network call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindAlreadyInProgress
	KindRemote
	KindOutOfRange
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAlreadyInProgress:
		return "already_in_progress"
	case KindRemote:
		return "remote"
	case KindOutOfRange:
		return "out_of_range"
	default:
		return "unknown"
	}
}

// KindOf classifies err. A nil error is KindUnknown.
func KindOf(err error) ErrorKind {
	var (
		validation *ValidationError
		remote     *ranker.RemoteError
		outOfRange *results.OutOfRangeError
	)

	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &validation):
		return KindValidation
	case errors.Is(err, ErrAlreadyInProgress):
		return KindAlreadyInProgress
	case errors.As(err, &remote):
		return KindRemote
	case errors.As(err, &outOfRange):
		return KindOutOfRange
	default:
		return KindUnknown
	}
}
