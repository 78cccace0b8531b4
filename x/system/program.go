package system

import (
	"github.com/vaultswap/vaultswap"
	"github.com/vaultswap/vaultswap/errors"
)

// ProgramID is the address the system allocator is deployed at.
var ProgramID = vaultswap.SystemProgramID

// Program is the system allocator.
type Program struct{}

var _ vaultswap.Program = Program{}

// NewProgram returns the system allocator program.
func NewProgram() Program {
	return Program{}
}

// Process executes a single system instruction.
func (Program) Process(ctx vaultswap.Context, program vaultswap.Address, accounts []*vaultswap.AccountInfo, data []byte) error {
	msg, err := Unmarshal(data)
	if err != nil {
		return err
	}
	switch msg := msg.(type) {
	case *CreateAccountMsg:
		return createAccount(accounts, msg)
	case *AssignMsg:
		return assign(accounts, msg)
	case *TransferMsg:
		return transfer(accounts, msg)
	}
	return errors.Wrapf(errors.ErrMalformedPayload, "unsupported message %T", msg)
}

// createAccount expects accounts [payer(signer, writable), new(signer, writable)].
func createAccount(accounts []*vaultswap.AccountInfo, msg *CreateAccountMsg) error {
	if len(accounts) < 2 {
		return errors.Wrapf(errors.ErrAccountCount, "create account requires 2 accounts, got %d", len(accounts))
	}
	payer, created := accounts[0], accounts[1]
	if !payer.IsSigner {
		return errors.Wrapf(errors.ErrUnauthorized, "payer %s", payer.Key)
	}
	if !created.IsSigner {
		return errors.Wrapf(errors.ErrUnauthorized, "new account %s", created.Key)
	}
	if len(created.Data) != 0 || !created.Owner.Equals(ProgramID) {
		return errors.Wrapf(errors.ErrAlreadyInUse, "account %s", created.Key)
	}
	// Lamports sent to the address beforehand count towards the balance,
	// so that funding an address cannot prevent its creation.
	if created.Lamports < msg.Lamports {
		if err := move(payer, created, msg.Lamports-created.Lamports); err != nil {
			return err
		}
	}
	created.Data = make([]byte, msg.Space)
	created.Owner = msg.Owner
	return nil
}

// assign expects accounts [account(signer, writable)].
func assign(accounts []*vaultswap.AccountInfo, msg *AssignMsg) error {
	if len(accounts) < 1 {
		return errors.Wrap(errors.ErrAccountCount, "assign requires 1 account")
	}
	acc := accounts[0]
	if !acc.IsSigner {
		return errors.Wrapf(errors.ErrUnauthorized, "account %s", acc.Key)
	}
	if !acc.Owner.Equals(ProgramID) {
		return errors.Wrapf(errors.ErrIllegalOwner, "account %s is owned by %s", acc.Key, acc.Owner)
	}
	acc.Owner = msg.Owner
	return nil
}

// transfer expects accounts [from(signer, writable), to(writable)].
func transfer(accounts []*vaultswap.AccountInfo, msg *TransferMsg) error {
	if len(accounts) < 2 {
		return errors.Wrapf(errors.ErrAccountCount, "transfer requires 2 accounts, got %d", len(accounts))
	}
	from, to := accounts[0], accounts[1]
	if !from.IsSigner {
		return errors.Wrapf(errors.ErrUnauthorized, "source %s", from.Key)
	}
	return move(from, to, msg.Lamports)
}

// move transfers lamports out of a system owned account that carries no
// data.
func move(from, to *vaultswap.AccountInfo, lamports uint64) error {
	if !from.Owner.Equals(ProgramID) {
		return errors.Wrapf(errors.ErrIllegalOwner, "source %s is owned by %s", from.Key, from.Owner)
	}
	if len(from.Data) != 0 {
		return errors.Wrapf(errors.ErrInvalidAccountData, "source %s carries data", from.Key)
	}
	if from.Lamports < lamports {
		return errors.Wrapf(errors.ErrInsufficientBalance,
			"%s holds %d lamports, need %d", from.Key, from.Lamports, lamports)
	}
	if to.Lamports+lamports < to.Lamports {
		return errors.Wrapf(errors.ErrOverflow, "credit %s", to.Key)
	}
	from.Lamports -= lamports
	to.Lamports += lamports
	return nil
}
