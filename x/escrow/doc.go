/*
Package escrow implements an atomic two party token swap.

A maker opens an escrow by locking an amount of asset A in a vault and
stating how much of asset B it wants in exchange. Any taker who pays that
amount receives everything the vault holds, or the maker cancels the
escrow and takes asset A back. Either way the escrow record and its vault
are closed and their storage balance returns to the maker.

Neither the record nor the vault has a private key. The record lives at
the address derived from ["escrow", maker, salt] and the vault at the
address derived from ["vault", record address]. The vault is owned by the
record address, so only this program can move its funds, by signing with
the record seeds when calling the token program.

Every handler derives the addresses again from the presented accounts and
the stored record. Nothing is trusted from a previous call.
*/
package escrow
