package pipeline

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes ingestion errors.
type ErrorCode string

const (
	// ErrCodeMalformedInput indicates the body is not a JSON object with numeric x and y.
	ErrCodeMalformedInput ErrorCode = "MALFORMED_INPUT"

	// ErrCodeOutOfRange indicates the point lies outside the grid under the reject policy.
	ErrCodeOutOfRange ErrorCode = "OUT_OF_RANGE"

	// ErrCodeStorageUnavailable indicates the coordinate store write failed.
	ErrCodeStorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE"

	// ErrCodeLogAppendFailure indicates the semantic log append failed after the
	// coordinate was stored.
	ErrCodeLogAppendFailure ErrorCode = "LOG_APPEND_FAILURE"

	// ErrCodeStopped indicates the pipeline is no longer accepting submissions.
	ErrCodeStopped ErrorCode = "PIPELINE_STOPPED"
)

// IngestError represents a failed submission.
//
// CoordinateID is set only for LOG_APPEND_FAILURE, where the coordinate was
// stored before the failure.
type IngestError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// CoordinateID is the id of the already stored coordinate, if any.
	CoordinateID int64

	// Err is the underlying cause (optional).
	Err error
}

// Error implements the error interface.
func (e *IngestError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.CoordinateID != 0 {
		msg = fmt.Sprintf("%s (coordinate=%d)", msg, e.CoordinateID)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *IngestError) Unwrap() error {
	return e.Err
}

// CodeOf returns the ErrorCode of err, or "" if err is not an IngestError.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var ie *IngestError
	if errors.As(err, &ie) {
		return ie.Code
	}
	return ""
}

// IsMalformed returns true for malformed or out-of-range input, the
// caller's fault in both cases.
func IsMalformed(err error) bool {
	code := CodeOf(err)
	return code == ErrCodeMalformedInput || code == ErrCodeOutOfRange
}

// IsStorageUnavailable returns true if the coordinate store write failed.
func IsStorageUnavailable(err error) bool {
	return CodeOf(err) == ErrCodeStorageUnavailable
}

// IsLogAppendFailure returns true if the coordinate was stored but its
// facts were not appended.
func IsLogAppendFailure(err error) bool {
	return CodeOf(err) == ErrCodeLogAppendFailure
}

// IsStopped returns true if the pipeline was shut down.
func IsStopped(err error) bool {
	return CodeOf(err) == ErrCodeStopped
}

func newMalformedError(message string, cause error) *IngestError {
	return &IngestError{Code: ErrCodeMalformedInput, Message: message, Err: cause}
}

func newOutOfRangeError(x, y float64) *IngestError {
	return &IngestError{
		Code:    ErrCodeOutOfRange,
		Message: fmt.Sprintf("point (%g, %g) outside grid bounds", x, y),
	}
}

func newStorageError(cause error) *IngestError {
	return &IngestError{Code: ErrCodeStorageUnavailable, Message: "coordinate store write failed", Err: cause}
}

func newLogAppendError(id int64, cause error) *IngestError {
	return &IngestError{
		Code:         ErrCodeLogAppendFailure,
		Message:      "semantic log append failed",
		CoordinateID: id,
		Err:          cause,
	}
}

var errStopped = &IngestError{Code: ErrCodeStopped, Message: "pipeline stopped"}
