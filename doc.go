/*
Package vaultswap defines the interfaces and value types shared by the
ledger runtime and every program built on it: addresses, program derived
addresses and their signing capability, accounts, the Program and Invoker
interfaces, storage and genesis initialization.

Programs live in the x/ directory. The runtime package executes their
instructions against a store and provides transaction atomicity and
account level mutual exclusion, so programs never lock anything
themselves.

We pass context through context.Context between runtime and programs.
There should exist two functions for every XYZ of type T that we want to
support in Context:

	WithXYZ(Context, T) Context
	GetXYZ(Context) (val T, ok bool)
*/
package vaultswap
