package ranker

import "fmt"

// RemoteError is returned for transport failures, non-success statuses and
// responses that do not match the expected schema.
type RemoteError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request to %s failed (status %d): %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("request to %s failed: %v", e.Endpoint, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func remoteErr(endpoint string, status int, err error) error {
	return &RemoteError{Endpoint: endpoint, StatusCode: status, Err: err}
}
