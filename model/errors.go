package model

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies every failure the workflow, registry and workbench
// can return. Callers decide retry vs. escalation from the kind alone:
// CONNECTION and TIMEOUT are transient, the rest are not.
type ErrorKind string

const (
	KindValidation ErrorKind = "VALIDATION"
	KindNotFound   ErrorKind = "NOT_FOUND"
	KindConflict   ErrorKind = "CONFLICT"
	KindConnection ErrorKind = "CONNECTION"
	KindTimeout    ErrorKind = "TIMEOUT"
	KindExecution  ErrorKind = "EXECUTION"
)

type FlowError struct {
	Kind    ErrorKind   `json:"kind"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func NewFlowError(kind ErrorKind, format string, args ...interface{}) *FlowError {
	return &FlowError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

func NewFlowErrorWithDetails(kind ErrorKind, details interface{}, format string, args ...interface{}) *FlowError {
	return &FlowError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Details: details,
	}
}

// KindOf unwraps err down to a FlowError and reports its kind, E_UNKNOWN
// classification otherwise.
func KindOf(err error) ErrorKind {
	var ferr *FlowError
	if errors.As(err, &ferr) {
		return ferr.Kind
	}
	return ""
}

var kindCodes = map[ErrorKind]string{
	KindValidation: E_INVALID_PARAMS,
	KindNotFound:   E_RECORD_NOT_FOUND,
	KindConflict:   E_DATA_CONFLICT,
	KindConnection: E_DS_CONNECT_FAILED,
	KindTimeout:    E_TIMEOUT,
	KindExecution:  E_EXECUTE_FAILED,
}

// CodeOf maps a service error to the response code of the uniform envelope.
func CodeOf(err error) string {
	if kind := KindOf(err); kind != "" {
		if code, ok := kindCodes[kind]; ok {
			return code
		}
	}
	return E_UNKNOWN
}
