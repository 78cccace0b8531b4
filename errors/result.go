package errors

import "fmt"

const (
	// SuccessCode is reported when an instruction committed.
	SuccessCode uint32 = 0

	// All unclassified errors that do not provide a code are clubbed
	// under an internal error code and a generic message instead of
	// detailed error string.
	internalCode uint32 = 1
	internalLog         = "internal error"
)

// Result returns the code and log message that represent given error to
// the submitter of a transaction. Any error that does not provide a code
// is categorized as internal with code 1 and, unless debug is set, its
// message is replaced with a generic one.
func Result(err error, debug bool) (uint32, string) {
	if isNilErr(err) {
		return SuccessCode, ""
	}

	if code := Code(err); code != internalCode {
		if debug {
			return code, fmt.Sprintf("%+v", err)
		}
		return code, err.Error()
	}

	if debug {
		return internalCode, fmt.Sprintf("%+v", err)
	}
	return internalCode, internalLog
}

type coder interface {
	Code() uint32
}

// Code unwraps given error and returns the code of the first registered
// error found. Errors that were never registered return code 1.
func Code(err error) uint32 {
	if isNilErr(err) {
		return SuccessCode
	}

	for {
		if c, ok := err.(coder); ok {
			return c.Code()
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return internalCode
		}
	}
}

// Kind returns the registered root error of given error, or nil if there
// is none.
func Kind(err error) *Error {
	code := Code(err)
	if code == SuccessCode || code == internalCode {
		return nil
	}
	return usedCodes[code]
}
