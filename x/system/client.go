package system

import (
	"github.com/vaultswap/vaultswap"
)

// NewCreateAccountInstruction returns an instruction that funds newAccount
// with lamports taken from payer, allocates space bytes of data and
// assigns it to owner. Both payer and newAccount must sign.
func NewCreateAccountInstruction(payer, newAccount vaultswap.Address, lamports, space uint64, owner vaultswap.Address) *vaultswap.Instruction {
	msg := &CreateAccountMsg{
		Lamports: lamports,
		Space:    space,
		Owner:    owner,
	}
	return vaultswap.NewInstruction(ProgramID, msg,
		vaultswap.Signer(payer, true),
		vaultswap.Signer(newAccount, true),
	)
}

// NewAssignInstruction returns an instruction that hands account over to
// owner.
func NewAssignInstruction(account, owner vaultswap.Address) *vaultswap.Instruction {
	return vaultswap.NewInstruction(ProgramID, &AssignMsg{Owner: owner},
		vaultswap.Signer(account, true),
	)
}

// NewTransferInstruction returns an instruction that moves lamports from
// one account to another.
func NewTransferInstruction(from, to vaultswap.Address, lamports uint64) *vaultswap.Instruction {
	return vaultswap.NewInstruction(ProgramID, &TransferMsg{Lamports: lamports},
		vaultswap.Signer(from, true),
		vaultswap.Writable(to),
	)
}
