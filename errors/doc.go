/*
Package errors implements the error kinds reported by vaultswap programs.

Every failure of an instruction is reported to the caller as exactly one
registered root error. Programs should reuse the root errors declared in
this package and register their own kinds only when a failure is specific
to that program (for example x/escrow declares ErrAssetMismatch).

Create errors at the point of failure with ErrXyz.New("...") or
errors.Wrap(err, "..."), so that a stacktrace is attached. Only the first
wrap records the stacktrace.

Use fmt verbs to see more of an error:

	%s is just the error message
	%+v is the full stack trace
	%v appends a compressed [filename:line] where the error was created
*/
package errors
