package vaultswap

import (
	"context"

	"github.com/tendermint/tendermint/libs/log"
)

// Context is the execution context passed through the runtime and all
// programs.
type Context = context.Context

type contextKey int // local to the vaultswap module

const (
	contextKeyLogger contextKey = iota
	contextKeyRent
	contextKeyInvoker
	contextKeyTxID
)

// DefaultLogger is used for all context that have not set anything
// themselves.
var DefaultLogger = log.NewNopLogger()

// WithLogger sets the logger for this context.
func WithLogger(ctx Context, logger log.Logger) Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// WithLogInfo accepts keyvalue pairs, and returns another context like
// this, after passing all the keyvals to the Logger.
func WithLogInfo(ctx Context, keyvals ...interface{}) Context {
	logger := GetLogger(ctx).With(keyvals...)
	return WithLogger(ctx, logger)
}

// GetLogger returns the currently set logger, or DefaultLogger if none
// was set.
func GetLogger(ctx Context) log.Logger {
	if l, ok := ctx.Value(contextKeyLogger).(log.Logger); ok {
		return l
	}
	return DefaultLogger
}

// WithRent sets the rent parameters for this context.
func WithRent(ctx Context, rent Rent) Context {
	return context.WithValue(ctx, contextKeyRent, rent)
}

// GetRent returns the rent parameters of the current transaction, or
// DefaultRent if none were set.
func GetRent(ctx Context) Rent {
	if r, ok := ctx.Value(contextKeyRent).(Rent); ok {
		return r
	}
	return DefaultRent
}

// WithTxID sets the identifier of the transaction being executed.
func WithTxID(ctx Context, id string) Context {
	return context.WithValue(ctx, contextKeyTxID, id)
}

// GetTxID returns the identifier of the transaction being executed.
func GetTxID(ctx Context) (string, bool) {
	id, ok := ctx.Value(contextKeyTxID).(string)
	return id, ok
}

// WithInvoker sets the invoker of the currently executing program. Each
// nested invocation overrides the invoker of its caller.
func WithInvoker(ctx Context, inv Invoker) Context {
	return context.WithValue(ctx, contextKeyInvoker, inv)
}

// GetInvoker returns the invoker of the currently executing program.
func GetInvoker(ctx Context) (Invoker, bool) {
	inv, ok := ctx.Value(contextKeyInvoker).(Invoker)
	return inv, ok
}
