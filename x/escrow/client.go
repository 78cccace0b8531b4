package escrow

import (
	"github.com/vaultswap/vaultswap"
	"github.com/vaultswap/vaultswap/errors"
	"github.com/vaultswap/vaultswap/runtime"
	"github.com/vaultswap/vaultswap/x/system"
	"github.com/vaultswap/vaultswap/x/token"
)

// OpenParams describe an escrow to open.
type OpenParams struct {
	Program       vaultswap.Address
	Maker         vaultswap.Address
	AssetA        vaultswap.Address
	AssetB        vaultswap.Address
	MakerAssetA   vaultswap.Address
	Salt          uint64
	DepositAmount uint64
	ReceiveAmount uint64
}

// NewOpenInstruction returns the instruction opening an escrow, with the
// escrow and vault addresses derived from the parameters.
func NewOpenInstruction(p OpenParams) (*vaultswap.Instruction, error) {
	escrowAddr, err := FindEscrowAddress(p.Program, p.Maker, p.Salt)
	if err != nil {
		return nil, err
	}
	vaultAddr, err := FindVaultAddress(p.Program, escrowAddr.Address)
	if err != nil {
		return nil, err
	}
	msg := &OpenMsg{
		Salt:          p.Salt,
		DepositAmount: p.DepositAmount,
		ReceiveAmount: p.ReceiveAmount,
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return vaultswap.NewInstruction(p.Program, msg,
		vaultswap.Signer(p.Maker, true),
		vaultswap.ReadOnly(p.AssetA),
		vaultswap.ReadOnly(p.AssetB),
		vaultswap.Writable(p.MakerAssetA),
		vaultswap.Writable(escrowAddr.Address),
		vaultswap.Writable(vaultAddr.Address),
		vaultswap.ReadOnly(token.ProgramID),
		vaultswap.ReadOnly(system.ProgramID),
	), nil
}

// SettleParams describe the settlement of an escrow by a taker.
type SettleParams struct {
	Program     vaultswap.Address
	Escrow      vaultswap.Address
	Taker       vaultswap.Address
	TakerAssetA vaultswap.Address
	TakerAssetB vaultswap.Address
	MakerAssetB vaultswap.Address
}

// NewSettleInstruction returns the instruction settling the escrow
// described by record.
func NewSettleInstruction(record *Record, p SettleParams) (*vaultswap.Instruction, error) {
	vaultAddr, err := FindVaultAddress(p.Program, p.Escrow)
	if err != nil {
		return nil, err
	}
	return vaultswap.NewInstruction(p.Program, &SettleMsg{},
		vaultswap.Signer(p.Taker, true),
		vaultswap.Writable(record.Maker),
		vaultswap.ReadOnly(record.AssetA),
		vaultswap.ReadOnly(record.AssetB),
		vaultswap.Writable(p.TakerAssetA),
		vaultswap.Writable(p.TakerAssetB),
		vaultswap.Writable(p.MakerAssetB),
		vaultswap.Writable(p.Escrow),
		vaultswap.Writable(vaultAddr.Address),
		vaultswap.ReadOnly(token.ProgramID),
		vaultswap.ReadOnly(system.ProgramID),
	), nil
}

// CancelParams describe the cancellation of an escrow by its maker.
type CancelParams struct {
	Program     vaultswap.Address
	Escrow      vaultswap.Address
	MakerAssetA vaultswap.Address
}

// NewCancelInstruction returns the instruction cancelling the escrow
// described by record.
func NewCancelInstruction(record *Record, p CancelParams) (*vaultswap.Instruction, error) {
	vaultAddr, err := FindVaultAddress(p.Program, p.Escrow)
	if err != nil {
		return nil, err
	}
	return vaultswap.NewInstruction(p.Program, &CancelMsg{},
		vaultswap.Signer(record.Maker, true),
		vaultswap.ReadOnly(record.AssetA),
		vaultswap.Writable(p.MakerAssetA),
		vaultswap.Writable(p.Escrow),
		vaultswap.Writable(vaultAddr.Address),
		vaultswap.ReadOnly(token.ProgramID),
		vaultswap.ReadOnly(system.ProgramID),
	), nil
}

// AccountReader gives access to committed accounts.
type AccountReader interface {
	Account(addr vaultswap.Address) (*vaultswap.Account, error)
	ProgramAccounts(owner vaultswap.Address) ([]runtime.KeyedAccount, error)
}

// Open is an escrow record together with its address.
type Open struct {
	Address vaultswap.Address
	Record  *Record
}

// GetRecord returns the record of an open escrow. ErrAccountClosed is
// returned if the escrow does not exist.
func GetRecord(db AccountReader, program, escrow vaultswap.Address) (*Record, error) {
	acc, err := db.Account(escrow)
	if err != nil {
		return nil, err
	}
	return loadRecord(&vaultswap.AccountInfo{Key: escrow, Account: acc}, program)
}

// ListEscrows returns all open escrows of program. When maker is not
// zero, only escrows opened by maker are returned.
func ListEscrows(db AccountReader, program, maker vaultswap.Address) ([]Open, error) {
	accs, err := db.ProgramAccounts(program)
	if err != nil {
		return nil, err
	}
	var res []Open
	for _, acc := range accs {
		var r Record
		if err := r.Unmarshal(acc.Data); err != nil {
			return nil, errors.Wrapf(err, "escrow %s", acc.Key)
		}
		if !maker.IsZero() && !r.Maker.Equals(maker) {
			continue
		}
		res = append(res, Open{Address: acc.Key, Record: &r})
	}
	return res, nil
}
