package escrow

import (
	"encoding/binary"

	"github.com/vaultswap/vaultswap"
)

var (
	escrowSeedPrefix = []byte("escrow")
	vaultSeedPrefix  = []byte("vault")
)

// EscrowSeeds returns the seed parts of the escrow record address.
func EscrowSeeds(maker vaultswap.Address, salt uint64) [][]byte {
	s := make([]byte, 8)
	binary.LittleEndian.PutUint64(s, salt)
	return [][]byte{escrowSeedPrefix, maker.Bytes(), s}
}

// VaultSeeds returns the seed parts of the vault address.
func VaultSeeds(escrow vaultswap.Address) [][]byte {
	return [][]byte{vaultSeedPrefix, escrow.Bytes()}
}

// FindEscrowAddress derives the address of the escrow opened by maker
// with given salt.
func FindEscrowAddress(program, maker vaultswap.Address, salt uint64) (vaultswap.ProgramAddress, error) {
	return vaultswap.FindProgramAddress(EscrowSeeds(maker, salt), program)
}

// FindVaultAddress derives the address of the vault of given escrow.
func FindVaultAddress(program, escrow vaultswap.Address) (vaultswap.ProgramAddress, error) {
	return vaultswap.FindProgramAddress(VaultSeeds(escrow), program)
}
