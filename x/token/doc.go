/*
Package token implements the asset custody program.

A mint describes an asset: who may issue it and how many decimal places
its amounts carry. Holding accounts keep a balance of a single mint on
behalf of an owner. The owner of a holding account is either a key pair
or a program derived address, in which case only the deriving program can
move the funds by signing with the address seeds.

Account state uses a fixed binary layout: 82 bytes for a mint and 165
bytes for a holding account.
*/
package token
