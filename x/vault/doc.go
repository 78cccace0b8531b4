/*
Package vault implements a per user lamport vault.

Each user owns one state account at the address derived from
["state", user] and one vault at the address derived from
["vault", state address]. The vault is a plain system account without a
private key. Anyone can deposit into it, but only the user can withdraw,
because only this program can sign for the vault address and it does so
only when the user signs the instruction.
*/
package vault
