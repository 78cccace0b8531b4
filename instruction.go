package vaultswap

import (
	"github.com/gagliardetto/solana-go"
)

// Marshaler is implemented by every instruction payload.
type Marshaler interface {
	Marshal() ([]byte, error)
}

// Instruction is a program call whose payload is serialized only when
// the data is requested. It implements solana.Instruction, so it can be
// executed by the runtime or passed to Invoke.
type Instruction struct {
	Program Address
	Metas   []*solana.AccountMeta
	Payload Marshaler
}

var _ solana.Instruction = (*Instruction)(nil)

// NewInstruction returns an instruction calling program with given
// accounts and payload.
func NewInstruction(program Address, payload Marshaler, metas ...*solana.AccountMeta) *Instruction {
	return &Instruction{
		Program: program,
		Metas:   metas,
		Payload: payload,
	}
}

// ProgramID returns the address of the called program.
func (i *Instruction) ProgramID() Address {
	return i.Program
}

// Accounts returns the account list, in the order the program expects.
func (i *Instruction) Accounts() []*solana.AccountMeta {
	return i.Metas
}

// Data returns the serialized payload.
func (i *Instruction) Data() ([]byte, error) {
	if i.Payload == nil {
		return nil, nil
	}
	return i.Payload.Marshal()
}

// Writable returns a meta of an account the instruction modifies.
func Writable(addr Address) *solana.AccountMeta {
	return solana.NewAccountMeta(addr, true, false)
}

// ReadOnly returns a meta of an account the instruction only reads.
func ReadOnly(addr Address) *solana.AccountMeta {
	return solana.NewAccountMeta(addr, false, false)
}

// Signer returns a meta of an account that must authorize the
// instruction.
func Signer(addr Address, writable bool) *solana.AccountMeta {
	return solana.NewAccountMeta(addr, writable, true)
}

// RawPayload is a payload that is already serialized.
type RawPayload []byte

// Marshal returns the payload unchanged.
func (p RawPayload) Marshal() ([]byte, error) {
	return p, nil
}
