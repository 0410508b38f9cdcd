package api

import (
	"context"
	"errors"
	"fmt"
)

type FetchReason string

const (
	ReasonNetwork  FetchReason = "network"
	ReasonProtocol FetchReason = "protocol"
	ReasonTimeout  FetchReason = "timeout"
)

// FetchError reports a transport level failure of a single GET.
type FetchError struct {
	Reason FetchReason
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: %s failure: status %d", e.URL, e.Reason, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s failure: %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s failure", e.URL, e.Reason)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type DecodeReason string

const (
	ReasonMalformed DecodeReason = "malformed"
	ReasonEmpty     DecodeReason = "empty"
)

// DecodeError reports a payload that does not carry the expected fields.
type DecodeError struct {
	Reason   DecodeReason
	Resource string
	Err      error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: %s payload: %v", e.Resource, e.Reason, e.Err)
	}
	return fmt.Sprintf("decode %s: %s payload", e.Resource, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// DecodeReasonOf returns the decode reason of err, or "" if err is not a DecodeError.
func DecodeReasonOf(err error) DecodeReason {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Reason
	}
	return ""
}

// UserMessage renders err as the text shown to the user. Transport and payload
// failures get different wording.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		switch {
		case fe.Reason == ReasonTimeout:
			return "Request timed out, try again"
		case fe.Status != 0:
			return fmt.Sprintf("Request failed: server returned status %d", fe.Status)
		case fe.Err != nil:
			return "Request failed: " + fe.Err.Error()
		default:
			return "Request failed"
		}
	}
	var de *DecodeError
	if errors.As(err, &de) {
		if de.Reason == ReasonEmpty {
			return "No valid data received from the API"
		}
		return "Could not process the data received from the API"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timed out, try again"
	}
	return err.Error()
}
