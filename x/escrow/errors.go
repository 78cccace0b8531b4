package escrow

import "github.com/vaultswap/vaultswap/errors"

// ErrAssetMismatch is returned when the presented assets differ from the
// ones stored in the escrow record.
var ErrAssetMismatch = errors.Register(1000, "asset mismatch")
