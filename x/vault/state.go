package vault

import (
	"github.com/vaultswap/vaultswap"
	"github.com/vaultswap/vaultswap/errors"
)

// StateSize is the size of the state account data.
const StateSize = 2

// State remembers the bumps of both derived addresses of a user.
type State struct {
	StateBump uint8
	VaultBump uint8
}

func (s *State) bytes() []byte {
	return []byte{s.StateBump, s.VaultBump}
}

func loadState(acc *vaultswap.AccountInfo, program vaultswap.Address) (*State, error) {
	if !acc.IsOwnedBy(program) {
		return nil, errors.Wrapf(errors.ErrIllegalOwner, "state %s is owned by %s", acc.Key, acc.Owner)
	}
	if len(acc.Data) != StateSize {
		return nil, errors.Wrapf(errors.ErrInvalidAccountData, "state of %d bytes", len(acc.Data))
	}
	return &State{StateBump: acc.Data[0], VaultBump: acc.Data[1]}, nil
}

// StateSeeds returns the seed parts of the state address of user.
func StateSeeds(user vaultswap.Address) [][]byte {
	return [][]byte{[]byte("state"), user.Bytes()}
}

// VaultSeeds returns the seed parts of the vault address of a state
// account.
func VaultSeeds(state vaultswap.Address) [][]byte {
	return [][]byte{[]byte("vault"), state.Bytes()}
}
