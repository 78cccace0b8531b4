package vault

import (
	"github.com/vaultswap/vaultswap"
	"github.com/vaultswap/vaultswap/x/system"
)

// Addresses returns the state and vault addresses of user.
func Addresses(program, user vaultswap.Address) (state, vault vaultswap.ProgramAddress, err error) {
	state, err = vaultswap.FindProgramAddress(StateSeeds(user), program)
	if err != nil {
		return state, vault, err
	}
	vault, err = vaultswap.FindProgramAddress(VaultSeeds(state.Address), program)
	return state, vault, err
}

// NewInstruction returns a vault instruction of user carrying msg.
func NewInstruction(program, user vaultswap.Address, msg Msg) (*vaultswap.Instruction, error) {
	state, vault, err := Addresses(program, user)
	if err != nil {
		return nil, err
	}
	stateMeta := vaultswap.ReadOnly(state.Address)
	switch msg.(type) {
	case *InitializeMsg, *CloseMsg:
		stateMeta = vaultswap.Writable(state.Address)
	}
	return vaultswap.NewInstruction(program, msg,
		vaultswap.Signer(user, true),
		stateMeta,
		vaultswap.Writable(vault.Address),
		vaultswap.ReadOnly(system.ProgramID),
	), nil
}
