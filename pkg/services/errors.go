package services

import "fmt"

// ResolutionError means no issue list could be established from the
// input URL. It aborts the whole run; there is nothing to skip yet.
type ResolutionError struct {
	URL string
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve %s: %v", e.URL, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// PageFetchError fails one issue after a page's retry budget ran out.
// The batch continues with the next issue; no partial image set is ever
// assembled.
type PageFetchError struct {
	PageIndex int
	Err       error
}

func (e *PageFetchError) Error() string {
	return fmt.Sprintf("failed to fetch page %d: %v", e.PageIndex, e.Err)
}

func (e *PageFetchError) Unwrap() error {
	return e.Err
}
