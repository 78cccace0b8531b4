package token

import (
	"github.com/vaultswap/vaultswap"
)

// NewInitializeMintInstruction returns an instruction that initializes an
// allocated mint account.
func NewInitializeMintInstruction(mint, authority vaultswap.Address, decimals uint8) *vaultswap.Instruction {
	msg := &InitializeMintMsg{Decimals: decimals, MintAuthority: authority}
	return vaultswap.NewInstruction(ProgramID, msg,
		vaultswap.Writable(mint),
	)
}

// NewInitializeAccountInstruction returns an instruction that initializes
// an allocated holding account of given mint for owner.
func NewInitializeAccountInstruction(account, mint, owner vaultswap.Address) *vaultswap.Instruction {
	return vaultswap.NewInstruction(ProgramID, &InitializeAccountMsg{Owner: owner},
		vaultswap.Writable(account),
		vaultswap.ReadOnly(mint),
	)
}

// NewMintToInstruction returns an instruction that issues amount of new
// tokens into dest.
func NewMintToInstruction(mint, dest, authority vaultswap.Address, amount uint64) *vaultswap.Instruction {
	return vaultswap.NewInstruction(ProgramID, &MintToMsg{Amount: amount},
		vaultswap.Writable(mint),
		vaultswap.Writable(dest),
		vaultswap.Signer(authority, false),
	)
}

// NewTransferInstruction returns an instruction that moves amount from
// source to dest. Authority must own source.
func NewTransferInstruction(source, dest, authority vaultswap.Address, amount uint64) *vaultswap.Instruction {
	return vaultswap.NewInstruction(ProgramID, &TransferMsg{Amount: amount},
		vaultswap.Writable(source),
		vaultswap.Writable(dest),
		vaultswap.Signer(authority, false),
	)
}

// NewTransferCheckedInstruction returns a transfer that fails unless both
// accounts hold given mint and the mint has given decimals.
func NewTransferCheckedInstruction(source, mint, dest, authority vaultswap.Address, amount uint64, decimals uint8) *vaultswap.Instruction {
	msg := &TransferCheckedMsg{Amount: amount, Decimals: decimals}
	return vaultswap.NewInstruction(ProgramID, msg,
		vaultswap.Writable(source),
		vaultswap.ReadOnly(mint),
		vaultswap.Writable(dest),
		vaultswap.Signer(authority, false),
	)
}

// NewCloseAccountInstruction returns an instruction that closes an empty
// holding account and moves its lamports to dest.
func NewCloseAccountInstruction(account, dest, authority vaultswap.Address) *vaultswap.Instruction {
	return vaultswap.NewInstruction(ProgramID, &CloseAccountMsg{},
		vaultswap.Writable(account),
		vaultswap.Writable(dest),
		vaultswap.Signer(authority, false),
	)
}
