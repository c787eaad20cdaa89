package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCompleteCheck matches any *NoCompleteCheckError.
	ErrNoCompleteCheck = errors.New("no complete check")
	// ErrUnknownDataType matches any *UnknownDataTypeError.
	ErrUnknownDataType = errors.New("unknown data type")
)

// NoCompleteCheckError is returned when a resource's check history holds no
// successful run. LastMessage is the message of the most recent entry, empty
// when the history itself is empty.
type NoCompleteCheckError struct {
	Resource    string
	LastMessage string
}

func (e *NoCompleteCheckError) Error() string {
	if e.LastMessage == "" {
		return fmt.Sprintf("resource %q has no check history", e.Resource)
	}
	return fmt.Sprintf("resource %q has no complete check, last message was %q", e.Resource, e.LastMessage)
}

func (e *NoCompleteCheckError) Is(target error) bool {
	return target == ErrNoCompleteCheck
}

// UnknownDataTypeError reports a geospatial storage type missing from the
// lookup table.
type UnknownDataTypeError struct {
	DataType string
}

func (e *UnknownDataTypeError) Error() string {
	return fmt.Sprintf("unknown data type %q", e.DataType)
}

func (e *UnknownDataTypeError) Is(target error) bool {
	return target == ErrUnknownDataType
}
