package logging

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// StacktraceField holds the formatted stack trace in entries returned by WithStacktrace.
const StacktraceField = "stacktrace"

// Implemented by the errors of github.com/pkg/errors that record a stack.
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// WithStacktrace adds err to entry and, if some error in its chain recorded a stack, the stack
// recorded closest to where err originated.
func WithStacktrace(entry *logrus.Entry, err error) *logrus.Entry {
	entry = entry.WithError(err)
	if stack := ExtractStack(err); stack != nil {
		entry = entry.WithField(StacktraceField, fmt.Sprintf("%+v", stack))
	}
	return entry
}

// ExtractStack returns the innermost stack trace in the chain of err, or nil.
func ExtractStack(err error) errors.StackTrace {
	var stack errors.StackTrace
	for ; err != nil; err = errors.Unwrap(err) {
		if tracer, ok := err.(stackTracer); ok {
			stack = tracer.StackTrace()
		}
	}
	return stack
}
