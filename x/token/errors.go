package token

import "github.com/vaultswap/vaultswap/errors"

var (
	// ErrMintMismatch is returned when accounts of different mints are
	// used together, or when the declared decimals do not match the mint.
	ErrMintMismatch = errors.Register(1100, "mint mismatch")

	// ErrNonZeroBalance is returned when closing a holding account that
	// still holds tokens.
	ErrNonZeroBalance = errors.Register(1101, "non zero balance")
)
