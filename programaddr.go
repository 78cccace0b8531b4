package vaultswap

import (
	"github.com/gagliardetto/solana-go"
	"github.com/vaultswap/vaultswap/errors"
)

// MaxSeeds is the maximum number of seed parts, bump excluded, a program
// derived address can be computed from.
const MaxSeeds = solana.MaxSeeds - 1

// ProgramAddress is a derived address together with the bump that moves
// it off the ed25519 curve. It is the result of a successful derivation
// and the only way to obtain a SignerSeeds capability.
type ProgramAddress struct {
	Address Address
	Bump    uint8

	seeds [][]byte
}

// FindProgramAddress derives the address for given seed parts and
// program. It is a pure function: the same input always yields the same
// address and bump.
func FindProgramAddress(seeds [][]byte, program Address) (ProgramAddress, error) {
	if len(seeds) > MaxSeeds {
		return ProgramAddress{}, errors.Wrapf(errors.ErrInput, "%d seeds, max %d", len(seeds), MaxSeeds)
	}
	addr, bump, err := solana.FindProgramAddress(seeds, program)
	if err != nil {
		return ProgramAddress{}, errors.Wrapf(errors.ErrInput, "derive address: %s", err)
	}
	return ProgramAddress{
		Address: addr,
		Bump:    bump,
		seeds:   copySeeds(seeds),
	}, nil
}

// ValidateProgramAddress recomputes the address for given seed parts and
// program and compares it with the presented one. ErrAddressMismatch is
// returned if they differ.
func ValidateProgramAddress(seeds [][]byte, program Address, expected Address) (ProgramAddress, error) {
	pa, err := FindProgramAddress(seeds, program)
	if err != nil {
		return ProgramAddress{}, err
	}
	if !pa.Address.Equals(expected) {
		return ProgramAddress{}, errors.Wrapf(errors.ErrAddressMismatch,
			"want %s, got %s", pa.Address, expected)
	}
	return pa, nil
}

// Signer returns the capability to sign as this address in a nested
// invocation. Do not persist it.
func (p ProgramAddress) Signer() SignerSeeds {
	return SignerSeeds{seeds: p.seeds, bump: p.Bump}
}

// SignerSeeds proves knowledge of the seeds and bump of a program derived
// address. The runtime grants signer status to the derived address for
// the duration of a single Invoke call, and only when the address derives
// from the invoking program.
type SignerSeeds struct {
	seeds [][]byte
	bump  uint8
}

// Address recomputes the address this capability signs for, assuming it
// is derived from given program.
func (s SignerSeeds) Address(program Address) (Address, error) {
	seeds := append(copySeeds(s.seeds), []byte{s.bump})
	addr, err := solana.CreateProgramAddress(seeds, program)
	if err != nil {
		return Address{}, errors.Wrapf(errors.ErrAddressMismatch, "signer seeds: %s", err)
	}
	return addr, nil
}

func copySeeds(seeds [][]byte) [][]byte {
	res := make([][]byte, len(seeds))
	for i, s := range seeds {
		res[i] = append([]byte(nil), s...)
	}
	return res
}
