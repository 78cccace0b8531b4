/*
Package runtime implements the ledger programs are executed on.

A Transaction is an ordered list of instructions signed by one or more
keys. The Ledger verifies the signatures, locks every account the
transaction declares, executes the instructions one by one and commits
all account changes at once. If any instruction fails, nothing is
written.

Two transactions that declare a common writable account never execute
at the same time. Transactions that share only read access, or share
nothing at all, run concurrently.

Programs call other programs through the Invoker found in the context.
A nested call can only use accounts the caller was given, and only
escalate to signer for addresses the caller program derives itself.
After every call the runtime checks that the program changed only what
it was allowed to change:

  - only writable accounts are modified,
  - only the owning program decreases lamports or changes data,
  - only the owning program reassigns an account, and only once its
    data is cleared,
  - the total amount of lamports is preserved.
*/
package runtime
