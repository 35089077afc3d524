package scenario

import (
	"errors"
	"fmt"
)

// Error is the engine's typed error. Build errors surface from
// Suite.Define and Registry; runtime errors are captured on the failing
// step.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Name is the shared step, let value or scenario the error refers to.
	Name string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes errors.
type ErrorCode string

const (
	// CodeBuildError indicates an invalid declaration.
	CodeBuildError ErrorCode = "BUILD_ERROR"

	// CodeInvalidName indicates a shared step name that is empty, contains
	// the comma separator or is already registered.
	CodeInvalidName ErrorCode = "INVALID_NAME"

	// CodeSharedStepNotFound indicates a reference to an unregistered
	// shared step.
	CodeSharedStepNotFound ErrorCode = "SHARED_STEP_NOT_FOUND"

	// CodeStepRuntime indicates a step returned an error or panicked.
	CodeStepRuntime ErrorCode = "STEP_RUNTIME"

	// CodePendingStepFixed indicates a step marked pending completed
	// without error.
	CodePendingStepFixed ErrorCode = "PENDING_STEP_FIXED"

	// CodeUndefinedReference indicates a lookup of a name that is neither a
	// let value nor a metadata key.
	CodeUndefinedReference ErrorCode = "UNDEFINED_REFERENCE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func hasCode(err error, code ErrorCode) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Err
	}
	return false
}

// IsBuildError reports whether err is a declaration error of any kind.
func IsBuildError(err error) bool {
	return hasCode(err, CodeBuildError) || hasCode(err, CodeInvalidName) || hasCode(err, CodeSharedStepNotFound)
}

// IsInvalidName reports whether err rejects a shared step name.
func IsInvalidName(err error) bool { return hasCode(err, CodeInvalidName) }

// IsNotFound reports whether err is an unresolved shared step.
func IsNotFound(err error) bool { return hasCode(err, CodeSharedStepNotFound) }

// IsStepRuntime reports whether err was raised by a step body.
func IsStepRuntime(err error) bool { return hasCode(err, CodeStepRuntime) }

// IsPendingFixed reports whether err marks a pending step that passed.
func IsPendingFixed(err error) bool { return hasCode(err, CodePendingStepFixed) }

// IsUndefinedReference reports whether err is an unknown let/metadata name.
func IsUndefinedReference(err error) bool { return hasCode(err, CodeUndefinedReference) }

func newBuildError(format string, args ...any) *Error {
	return &Error{Code: CodeBuildError, Message: fmt.Sprintf(format, args...)}
}

func newInvalidName(name, reason string) *Error {
	return &Error{Code: CodeInvalidName, Message: fmt.Sprintf("shared step %q: %s", name, reason), Name: name}
}

func newNotFound(name string) *Error {
	return &Error{Code: CodeSharedStepNotFound, Message: fmt.Sprintf("shared step %q not found", name), Name: name}
}

func newPendingFixed() *Error {
	return &Error{Code: CodePendingStepFixed, Message: "expected step to fail since it is pending, but it passed"}
}

func newUndefinedReference(name string) *Error {
	return &Error{Code: CodeUndefinedReference, Message: fmt.Sprintf("undefined let value or metadata key %q", name), Name: name}
}

func newLetCycle(name string) *Error {
	return &Error{Code: CodeUndefinedReference, Message: fmt.Sprintf("let cycle: %q refers to itself", name), Name: name}
}

// stepError normalizes what a step body returned. Engine errors pass
// through; anything else is wrapped as a runtime error.
func stepError(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Code: CodeStepRuntime, Message: "step failed", Err: err}
}

func panicError(v any) error {
	if err, ok := v.(error); ok {
		return stepError(err)
	}
	return &Error{Code: CodeStepRuntime, Message: fmt.Sprintf("panic: %v", v)}
}
