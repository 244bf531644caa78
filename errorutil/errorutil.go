// Package errorutil holds the error kinds surfaced by fetching and
// validating datasets.
package errorutil

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ConnectionError is returned when the data store cannot be reached, the
// credentials are rejected or the operation timed out.
type ConnectionError struct {
	Cause error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error: %v", e.Cause)
}

func (e *ConnectionError) Unwrap() error { return e.Cause }

// QueryError is returned when the store rejects a query, e.g. a syntax error
// or a missing table.
type QueryError struct {
	Query string
	Cause error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query error: %v", e.Cause)
}

func (e *QueryError) Unwrap() error { return e.Cause }

// ConfigurationError is returned when connection parameters are missing or
// invalid.
type ConfigurationError struct {
	Cause error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %v", e.Cause)
}

func (e *ConfigurationError) Unwrap() error { return e.Cause }

// EvaluationError is scoped to a single expectation which could not be
// evaluated against a dataset.
type EvaluationError struct {
	Cause error
}

func (e *EvaluationError) Error() string {
	return e.Cause.Error()
}

func (e *EvaluationError) Unwrap() error { return e.Cause }

// NotFoundError is returned when a named resource does not exist.
type NotFoundError struct {
	Resource string
	Name     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Name)
}

func NewConnectionError(err error) error {
	if err == nil || IsConnectionError(err) {
		return err
	}
	return &ConnectionError{Cause: err}
}

func NewQueryError(query string, err error) error {
	if err == nil || IsQueryError(err) {
		return err
	}
	return &QueryError{Query: query, Cause: err}
}

// NewConfigurationErrorf formats a new ConfigurationError.
func NewConfigurationErrorf(format string, args ...interface{}) error {
	return &ConfigurationError{Cause: errors.Newf(format, args...)}
}

func NewConfigurationError(err error) error {
	if err == nil || IsConfigurationError(err) {
		return err
	}
	return &ConfigurationError{Cause: err}
}

// NewEvaluationErrorf formats a new EvaluationError.
func NewEvaluationErrorf(format string, args ...interface{}) error {
	return &EvaluationError{Cause: errors.Newf(format, args...)}
}

func IsConnectionError(err error) bool {
	var target *ConnectionError
	return errors.As(err, &target)
}

func IsQueryError(err error) bool {
	var target *QueryError
	return errors.As(err, &target)
}

func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

func IsEvaluationError(err error) bool {
	var target *EvaluationError
	return errors.As(err, &target)
}

func IsNotFoundError(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
