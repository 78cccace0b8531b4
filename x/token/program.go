package token

import (
	"github.com/gagliardetto/solana-go"
	"github.com/vaultswap/vaultswap"
	"github.com/vaultswap/vaultswap/errors"
)

// ProgramID is the address the token program is deployed at.
var ProgramID = solana.TokenProgramID

// Program is the asset custody program.
type Program struct{}

var _ vaultswap.Program = Program{}

// NewProgram returns the token program.
func NewProgram() Program {
	return Program{}
}

// Process executes a single token instruction.
func (p Program) Process(ctx vaultswap.Context, program vaultswap.Address, accounts []*vaultswap.AccountInfo, data []byte) error {
	msg, err := Unmarshal(data)
	if err != nil {
		return err
	}
	switch msg := msg.(type) {
	case *InitializeMintMsg:
		return p.initializeMint(program, accounts, msg)
	case *InitializeAccountMsg:
		return p.initializeAccount(program, accounts, msg)
	case *TransferMsg:
		if len(accounts) < 3 {
			return errors.Wrapf(errors.ErrAccountCount, "transfer requires 3 accounts, got %d", len(accounts))
		}
		return p.transfer(program, accounts[0], nil, accounts[1], accounts[2], msg.Amount, 0)
	case *TransferCheckedMsg:
		if len(accounts) < 4 {
			return errors.Wrapf(errors.ErrAccountCount, "transfer requires 4 accounts, got %d", len(accounts))
		}
		return p.transfer(program, accounts[0], accounts[1], accounts[2], accounts[3], msg.Amount, msg.Decimals)
	case *MintToMsg:
		return p.mintTo(program, accounts, msg)
	case *CloseAccountMsg:
		return p.closeAccount(program, accounts)
	}
	return errors.Wrapf(errors.ErrMalformedPayload, "unsupported message %T", msg)
}

// initializeMint expects accounts [mint(writable)].
func (Program) initializeMint(program vaultswap.Address, accounts []*vaultswap.AccountInfo, msg *InitializeMintMsg) error {
	if len(accounts) < 1 {
		return errors.Wrap(errors.ErrAccountCount, "initialize mint requires 1 account")
	}
	acc := accounts[0]
	if !acc.Owner.Equals(program) {
		return errors.Wrapf(errors.ErrIllegalOwner, "mint %s is owned by %s", acc.Key, acc.Owner)
	}
	if len(acc.Data) != MintSize {
		return errors.Wrapf(errors.ErrInvalidAccountData, "mint %s has %d bytes", acc.Key, len(acc.Data))
	}
	var current Mint
	if err := decode(acc.Data, MintSize, &current); err != nil {
		return err
	}
	if current.IsInitialized {
		return errors.Wrapf(errors.ErrAlreadyInUse, "mint %s", acc.Key)
	}
	return StoreMint(acc, &Mint{
		MintAuthorityOption: optionSome,
		MintAuthority:       msg.MintAuthority,
		Decimals:            msg.Decimals,
		IsInitialized:       true,
	})
}

// initializeAccount expects accounts [account(writable), mint].
func (Program) initializeAccount(program vaultswap.Address, accounts []*vaultswap.AccountInfo, msg *InitializeAccountMsg) error {
	if len(accounts) < 2 {
		return errors.Wrapf(errors.ErrAccountCount, "initialize account requires 2 accounts, got %d", len(accounts))
	}
	acc, mint := accounts[0], accounts[1]
	if !acc.Owner.Equals(program) {
		return errors.Wrapf(errors.ErrIllegalOwner, "token account %s is owned by %s", acc.Key, acc.Owner)
	}
	if len(acc.Data) != AccountSize {
		return errors.Wrapf(errors.ErrInvalidAccountData, "token account %s has %d bytes", acc.Key, len(acc.Data))
	}
	var current Account
	if err := decode(acc.Data, AccountSize, &current); err != nil {
		return err
	}
	if current.IsInitialized() {
		return errors.Wrapf(errors.ErrAlreadyInUse, "token account %s", acc.Key)
	}
	if _, err := LoadMint(mint, program); err != nil {
		return err
	}
	return StoreAccount(acc, &Account{
		Mint:  mint.Key,
		Owner: msg.Owner,
		State: StateInitialized,
	})
}

// transfer moves amount from source to dest. When mint is given the
// transfer is checked against the mint address and decimals.
func (Program) transfer(program vaultswap.Address, source, mint, dest, authority *vaultswap.AccountInfo, amount uint64, decimals uint8) error {
	src, err := LoadAccount(source, program)
	if err != nil {
		return errors.Wrap(err, "source")
	}
	dst, err := LoadAccount(dest, program)
	if err != nil {
		return errors.Wrap(err, "destination")
	}
	if src.State == StateFrozen || dst.State == StateFrozen {
		return errors.Wrap(errors.ErrInvalidAccountData, "account frozen")
	}
	if !src.Mint.Equals(dst.Mint) {
		return errors.Wrapf(ErrMintMismatch, "source holds %s, destination holds %s", src.Mint, dst.Mint)
	}
	if mint != nil {
		if !mint.Key.Equals(src.Mint) {
			return errors.Wrapf(ErrMintMismatch, "source holds %s, not %s", src.Mint, mint.Key)
		}
		m, err := LoadMint(mint, program)
		if err != nil {
			return err
		}
		if m.Decimals != decimals {
			return errors.Wrapf(ErrMintMismatch, "mint has %d decimals, got %d", m.Decimals, decimals)
		}
	}
	if !authority.IsSigner {
		return errors.Wrapf(errors.ErrUnauthorized, "authority %s", authority.Key)
	}
	if !authority.Key.Equals(src.Owner) {
		return errors.Wrapf(errors.ErrUnauthorized, "%s is not the owner of %s", authority.Key, source.Key)
	}
	if src.Amount < amount {
		return errors.Wrapf(errors.ErrInsufficientBalance,
			"%s holds %d, need %d", source.Key, src.Amount, amount)
	}

	// A self transfer is a noop, both infos share the same state.
	if source.Key.Equals(dest.Key) {
		return nil
	}
	if dst.Amount+amount < dst.Amount {
		return errors.Wrapf(errors.ErrOverflow, "credit %s", dest.Key)
	}
	src.Amount -= amount
	dst.Amount += amount
	if err := StoreAccount(source, src); err != nil {
		return err
	}
	return StoreAccount(dest, dst)
}

// mintTo expects accounts [mint(writable), dest(writable), authority(signer)].
func (Program) mintTo(program vaultswap.Address, accounts []*vaultswap.AccountInfo, msg *MintToMsg) error {
	if len(accounts) < 3 {
		return errors.Wrapf(errors.ErrAccountCount, "mint to requires 3 accounts, got %d", len(accounts))
	}
	mintInfo, dest, authority := accounts[0], accounts[1], accounts[2]
	m, err := LoadMint(mintInfo, program)
	if err != nil {
		return err
	}
	dst, err := LoadAccount(dest, program)
	if err != nil {
		return err
	}
	if !dst.Mint.Equals(mintInfo.Key) {
		return errors.Wrapf(ErrMintMismatch, "destination holds %s", dst.Mint)
	}
	issuer, ok := m.Authority()
	if !ok {
		return errors.Wrapf(errors.ErrUnauthorized, "mint %s has a fixed supply", mintInfo.Key)
	}
	if !authority.IsSigner || !authority.Key.Equals(issuer) {
		return errors.Wrapf(errors.ErrUnauthorized, "mint authority %s", issuer)
	}
	if m.Supply+msg.Amount < m.Supply || dst.Amount+msg.Amount < dst.Amount {
		return errors.Wrap(errors.ErrOverflow, "mint to")
	}
	m.Supply += msg.Amount
	dst.Amount += msg.Amount
	if err := StoreMint(mintInfo, m); err != nil {
		return err
	}
	return StoreAccount(dest, dst)
}

// closeAccount expects accounts [account(writable), dest(writable), authority(signer)].
func (Program) closeAccount(program vaultswap.Address, accounts []*vaultswap.AccountInfo) error {
	if len(accounts) < 3 {
		return errors.Wrapf(errors.ErrAccountCount, "close account requires 3 accounts, got %d", len(accounts))
	}
	acc, dest, authority := accounts[0], accounts[1], accounts[2]
	state, err := LoadAccount(acc, program)
	if err != nil {
		return err
	}
	if state.Amount != 0 {
		return errors.Wrapf(ErrNonZeroBalance, "%s holds %d", acc.Key, state.Amount)
	}
	if !authority.IsSigner || !authority.Key.Equals(state.Closer()) {
		return errors.Wrapf(errors.ErrUnauthorized, "close authority %s", state.Closer())
	}
	if acc.Key.Equals(dest.Key) {
		return errors.Wrap(errors.ErrInput, "cannot close account into itself")
	}
	return acc.Close(dest)
}
