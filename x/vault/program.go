package vault

import (
	"github.com/gagliardetto/solana-go"
	"github.com/vaultswap/vaultswap"
	"github.com/vaultswap/vaultswap/errors"
	"github.com/vaultswap/vaultswap/x/system"
)

// ProgramID is the address the vault program is deployed at.
var ProgramID = solana.MustPublicKeyFromBase58("7TyytQd1pwF15KCSedAQkzwLvk4Ggm4ar9jFmvn7xVVo")

// Program is the vault program. All instructions take the accounts
// [user(signer, writable), state, vault(writable), system allocator].
// State is writable for Initialize and Close.
type Program struct{}

var _ vaultswap.Program = Program{}

// NewProgram returns the vault program.
func NewProgram() Program {
	return Program{}
}

type accounts struct {
	user, state, vault, alloc *vaultswap.AccountInfo
}

// Process executes a single vault instruction.
func (p Program) Process(ctx vaultswap.Context, program vaultswap.Address, infos []*vaultswap.AccountInfo, data []byte) error {
	msg, err := Unmarshal(data)
	if err != nil {
		return err
	}
	if len(infos) != 4 {
		return errors.Wrapf(errors.ErrAccountCount, "vault requires 4 accounts, got %d", len(infos))
	}
	accs := accounts{user: infos[0], state: infos[1], vault: infos[2], alloc: infos[3]}
	if !accs.user.IsSigner {
		return errors.Wrapf(errors.ErrUnauthorized, "user %s", accs.user.Key)
	}
	if !accs.alloc.Key.Equals(system.ProgramID) {
		return errors.Wrapf(errors.ErrUnknownProgram, "system allocator %s", accs.alloc.Key)
	}
	stateAddr, err := vaultswap.ValidateProgramAddress(StateSeeds(accs.user.Key), program, accs.state.Key)
	if err != nil {
		return errors.Wrap(err, "state")
	}
	vaultAddr, err := vaultswap.ValidateProgramAddress(VaultSeeds(accs.state.Key), program, accs.vault.Key)
	if err != nil {
		return errors.Wrap(err, "vault")
	}

	if m, ok := msg.(*InitializeMsg); ok {
		return p.initialize(ctx, program, accs, stateAddr, vaultAddr, m)
	}

	state, err := loadState(accs.state, program)
	if err != nil {
		return err
	}
	if state.StateBump != stateAddr.Bump || state.VaultBump != vaultAddr.Bump {
		return errors.Wrap(errors.ErrInvalidAccountData, "stored bumps do not match")
	}

	logger := vaultswap.GetLogger(ctx).With("program", "vault", "user", accs.user.Key)
	switch m := msg.(type) {
	case *DepositMsg:
		ix := system.NewTransferInstruction(accs.user.Key, accs.vault.Key, m.Amount)
		if err := vaultswap.Invoke(ctx, ix); err != nil {
			return errors.Wrap(err, "deposit")
		}
		logger.Info("deposit", "amount", m.Amount)
		return nil
	case *WithdrawMsg:
		if accs.vault.Lamports < m.Amount {
			return errors.Wrapf(errors.ErrInsufficientBalance, "vault holds %d, need %d", accs.vault.Lamports, m.Amount)
		}
		ix := system.NewTransferInstruction(accs.vault.Key, accs.user.Key, m.Amount)
		if err := vaultswap.Invoke(ctx, ix, vaultAddr.Signer()); err != nil {
			return errors.Wrap(err, "withdraw")
		}
		logger.Info("withdraw", "amount", m.Amount)
		return nil
	case *CloseMsg:
		if amount := accs.vault.Lamports; amount > 0 {
			ix := system.NewTransferInstruction(accs.vault.Key, accs.user.Key, amount)
			if err := vaultswap.Invoke(ctx, ix, vaultAddr.Signer()); err != nil {
				return errors.Wrap(err, "drain vault")
			}
		}
		if err := accs.state.Close(accs.user); err != nil {
			return err
		}
		logger.Info("closed")
		return nil
	}
	return errors.Wrapf(errors.ErrMalformedPayload, "unsupported message %T", msg)
}

func (Program) initialize(ctx vaultswap.Context, program vaultswap.Address, accs accounts, stateAddr, vaultAddr vaultswap.ProgramAddress, _ *InitializeMsg) error {
	rent := vaultswap.GetRent(ctx)
	alloc := system.NewCreateAccountInstruction(accs.user.Key, accs.state.Key,
		rent.MinimumBalance(StateSize), StateSize, program)
	if err := vaultswap.Invoke(ctx, alloc, stateAddr.Signer()); err != nil {
		return errors.Wrap(err, "allocate state")
	}
	state := State{StateBump: stateAddr.Bump, VaultBump: vaultAddr.Bump}
	copy(accs.state.Data, state.bytes())
	vaultswap.GetLogger(ctx).Info("vault initialized", "program", "vault", "user", accs.user.Key)
	return nil
}
