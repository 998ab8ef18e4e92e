package metric

import "errors"

var (
	// ErrDuplicateName is returned when a metric name is already registered.
	ErrDuplicateName = errors.New("duplicate metric name")

	// ErrInvalidName is returned for metric or label names that cannot be exposed.
	ErrInvalidName = errors.New("invalid name")

	// ErrLabelArity is returned when the number of label values does not match
	// the label keys declared for a counter.
	ErrLabelArity = errors.New("label arity mismatch")
)
