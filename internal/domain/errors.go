package domain

import "fmt"

// FetchError reports an unreachable or unparseable source, or a run that
// collected nothing at all.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("fetch: %v", e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FormatError reports that no usable text could be extracted from the
// collected items. There is nothing to summarize, so the run aborts.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "format: " + e.Reason
}

// ServiceError reports a failed summarization call (auth, quota, network).
type ServiceError struct {
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("summarization service: %v", e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// DeliveryError reports a failed outbound send.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
