package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

var (
	// ErrMalformedPayload is returned when instruction data is missing,
	// has the wrong width or carries an unknown tag.
	ErrMalformedPayload = Register(2, "malformed instruction payload")

	// ErrAccountCount is returned when an instruction is given a different
	// number of accounts than it declares.
	ErrAccountCount = Register(3, "account count mismatch")

	// ErrUnauthorized is returned when a required signature is absent.
	ErrUnauthorized = Register(4, "missing required signature")

	// ErrAddressMismatch is returned when a derived address does not match
	// the presented account.
	ErrAddressMismatch = Register(5, "derived address mismatch")

	// ErrInsufficientBalance is returned when an account does not hold
	// enough lamports or tokens for the requested operation.
	ErrInsufficientBalance = Register(6, "insufficient balance")

	// ErrAccountClosed is returned when an operation targets an account
	// that does not exist (anymore) under the expected program.
	ErrAccountClosed = Register(7, "account closed")

	// ErrIllegalOwner is returned when an account is not owned by the
	// program that expects to own it.
	ErrIllegalOwner = Register(8, "illegal account owner")

	// ErrInvalidAccountData is returned when account data cannot be
	// decoded or does not hold the expected kind of state.
	ErrInvalidAccountData = Register(9, "invalid account data")

	// ErrAlreadyInUse is returned when creating an account that exists.
	ErrAlreadyInUse = Register(10, "account already in use")

	// ErrReadonly is returned when a program modifies an account in a way
	// it is not allowed to.
	ErrReadonly = Register(11, "account modification not allowed")

	// ErrUnknownProgram is returned when an instruction targets a program
	// that is not deployed.
	ErrUnknownProgram = Register(12, "unknown program")

	// ErrOverflow is returned when a computation cannot be completed
	// because the result value exceeds the type.
	ErrOverflow = Register(13, "an operation cannot be completed due to value overflow")

	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = Register(14, "not found")

	// ErrInput stands for general input problems indication.
	ErrInput = Register(15, "invalid input")

	// ErrDatabase is returned when the underlying store fails.
	ErrDatabase = Register(16, "database")

	// ErrHuman is returned when application reaches a code path which
	// should not ever be reached if the code was written as expected.
	ErrHuman = Register(17, "coding error")

	// ErrPanic is only set when we recover from a panic, so we know to
	// redact potentially sensitive system info.
	ErrPanic = Register(111222, "panic")
)

// Register returns an error instance that should be used as the base for
// creating error instances during runtime.
//
// Popular root errors are declared in this package, but programs may want
// to declare custom codes. This function ensures that no error code is
// used twice. Attempt to reuse an error code results in panic.
//
// Use this function only during a program startup phase.
func Register(code uint32, description string) *Error {
	if e, ok := usedCodes[code]; ok {
		panic(fmt.Sprintf("error with code %d is already registered: %q", code, e.desc))
	}
	err := &Error{
		code: code,
		desc: description,
	}
	usedCodes[err.code] = err
	return err
}

// usedCodes is keeping track of used codes to ensure their uniqueness. No
// two error instances should share the same error code.
var usedCodes = map[uint32]*Error{
	1: {code: 1, desc: internalLog}, // Reserved for unregistered errors.
}

// Error represents a root error.
//
// Each instance created during the runtime should wrap one of the
// declared root errors. This allows error tests and returning all errors
// to the client in a safe manner.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string {
	return e.desc
}

// Code returns the result code reported to the caller.
func (e Error) Code() uint32 {
	return e.code
}

// New returns a new error. Returned instance is having the root cause set
// to this error. Below two lines are equal
//
//	e.New("my description")
//	Wrap(e, "my description")
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

// Newf is basically New with formatting capabilities.
func (e *Error) Newf(description string, args ...interface{}) error {
	return e.New(fmt.Sprintf(description, args...))
}

// Is check if given error instance is of a given kind. This involves
// unwrapping given error using the Cause method if available.
func (e *Error) Is(err error) bool {
	// Reflect usage is necessary to correctly compare with
	// a nil implementation of an error.
	if e == nil {
		return isNilErr(err)
	}

	for {
		if err == e {
			return true
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return false
		}
	}
}

// Wrap extends given error with an additional information.
//
// If the wrapped error does not provide Code method (ie. stdlib errors),
// it will be labeled as internal error.
//
// If err is nil, this returns nil, avoiding the need for an if statement
// when wrapping a error returned at the end of a function.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}

	// If this error does not carry the stacktrace information yet, attach
	// one. This should be done only once per error at the lowest frame
	// possible (most inner wrap).
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}

	return &wrappedError{
		parent: err,
		msg:    description,
	}
}

// Wrapf extends given error with an additional information.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

type wrappedError struct {
	// This error layer description.
	msg string
	// The underlying error that triggered this one.
	parent error
}

func (e *wrappedError) Error() string {
	return fmt.Sprintf("%s: %s", e.msg, e.parent.Error())
}

func (e *wrappedError) Cause() error {
	return e.parent
}

// Recover captures a panic and stop its propagation. If panic happens it
// is transformed into a ErrPanic instance and assigned to given error.
// Call this function using defer in order to work as expected.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

// causer is an interface implemented by an error that supports wrapping.
type causer interface {
	Cause() error
}

func isNilErr(err error) bool {
	if err == nil {
		return true
	}
	if val := reflect.ValueOf(err); val.Kind() == reflect.Ptr {
		return val.IsNil()
	}
	return false
}
