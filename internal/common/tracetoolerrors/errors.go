// Package tracetoolerrors contains the error kinds returned by tracetool commands.
// Commands look for the types defined in this file (using errors.As) to decide whether a failure
// is fatal and which exit code to report.
//
// Errors that only affect a single record or group (ErrData, ErrCompute) are never returned as the
// error of a command. They are collected in a multierror.Error from package
// github.com/hashicorp/go-multierror and reported as diagnostics next to the results.
package tracetoolerrors

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// ErrInput is returned when configuration or user supplied input is malformed, e.g., an invalid
// duration, an unknown aggregation mode or a predicate the store refuses to evaluate.
type ErrInput struct {
	Name    string      // Name of the parameter referred to, e.g., "aggregation.size"
	Value   interface{} // The invalid value that was provided
	Message string      // An optional message explaining why the value is invalid
}

func (err *ErrInput) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("value %q is invalid for %q", fmt.Sprint(err.Value), err.Name)
	}
	return fmt.Sprintf("value %q is invalid for %q; %s", fmt.Sprint(err.Value), err.Name, err.Message)
}

// ErrData represents a single malformed record that was skipped.
type ErrData struct {
	Timestamp int64
	Ordinal   uint32
	Message   string
}

func (err *ErrData) Error() string {
	return fmt.Sprintf("skipped record (%d, %d): %s", err.Timestamp, err.Ordinal, err.Message)
}

// ErrCompute is returned when a result can't be computed for a group, e.g., because the
// covariance of its samples is degenerate.
type ErrCompute struct {
	GroupId int64
	Message string
}

func (err *ErrCompute) Error() string {
	return fmt.Sprintf("group %d excluded: %s", err.GroupId, err.Message)
}

// ErrStore represents a failure of the underlying event store, e.g., a missing table or an I/O error.
type ErrStore struct {
	Operation string // What was being attempted, e.g., "read intervals"
	Cause     error
}

func (err *ErrStore) Error() string {
	if err.Cause == nil {
		return fmt.Sprintf("store error during %s", err.Operation)
	}
	return fmt.Sprintf("store error during %s: %s", err.Operation, err.Cause)
}

func (err *ErrStore) Unwrap() error {
	return err.Cause
}

// NewStoreError wraps err in an ErrStore with a stack trace attached. Returns nil if err is nil.
func NewStoreError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(&ErrStore{Operation: operation, Cause: err})
}

func IsInput(err error) bool {
	var e *ErrInput
	return errors.As(err, &e)
}

func IsData(err error) bool {
	var e *ErrData
	return errors.As(err, &e)
}

func IsCompute(err error) bool {
	var e *ErrCompute
	return errors.As(err, &e)
}

func IsStore(err error) bool {
	var e *ErrStore
	return errors.As(err, &e)
}

// ExitCode maps error types to process exit codes.
// Uses errors.As to look through the chain of errors, as opposed to just considering the topmost error in the chain.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case IsInput(err):
		return 2
	case IsStore(err):
		return 3
	default:
		return 1
	}
}

// Diagnostics returns the individual errors held by a multierror, or nil.
func Diagnostics(result *multierror.Error) []error {
	if result == nil {
		return nil
	}
	return result.Errors
}
