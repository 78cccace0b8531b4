package escrow

import (
	"github.com/vaultswap/vaultswap"
	"github.com/vaultswap/vaultswap/errors"
	"github.com/vaultswap/vaultswap/x/system"
	"github.com/vaultswap/vaultswap/x/token"
)

// checkPrograms ensures the presented collaborators are the deployed
// system allocator and token program.
func checkPrograms(custody, alloc *vaultswap.AccountInfo) error {
	if !custody.Key.Equals(token.ProgramID) {
		return errors.Wrapf(errors.ErrUnknownProgram, "custody program %s", custody.Key)
	}
	if !alloc.Key.Equals(system.ProgramID) {
		return errors.Wrapf(errors.ErrUnknownProgram, "system allocator %s", alloc.Key)
	}
	return nil
}

// OpenHandler creates the escrow record and moves the deposit into the
// vault.
type OpenHandler struct{}

func (h OpenHandler) handle(ctx vaultswap.Context, program vaultswap.Address, accounts []*vaultswap.AccountInfo, msg Msg) error {
	m, ok := msg.(*OpenMsg)
	if !ok {
		return errors.Wrapf(errors.ErrHuman, "open handler got %T", msg)
	}
	accs, err := ParseOpenAccounts(accounts)
	if err != nil {
		return err
	}
	if !accs.Maker.IsSigner {
		return errors.Wrapf(errors.ErrUnauthorized, "maker %s", accs.Maker.Key)
	}
	if err := checkPrograms(accs.Custody, accs.SystemAlloc); err != nil {
		return err
	}

	escrowAddr, err := vaultswap.ValidateProgramAddress(EscrowSeeds(accs.Maker.Key, m.Salt), program, accs.Escrow.Key)
	if err != nil {
		return errors.Wrap(err, "escrow")
	}

	rent := vaultswap.GetRent(ctx)
	alloc := system.NewCreateAccountInstruction(accs.Maker.Key, accs.Escrow.Key,
		rent.MinimumBalance(RecordSize), RecordSize, program)
	if err := vaultswap.Invoke(ctx, alloc, escrowAddr.Signer()); err != nil {
		return errors.Wrap(err, "allocate escrow")
	}

	record := Record{
		Salt:          m.Salt,
		Maker:         accs.Maker.Key,
		AssetA:        accs.AssetA.Key,
		AssetB:        accs.AssetB.Key,
		ReceiveAmount: m.ReceiveAmount,
	}
	if err := record.Validate(); err != nil {
		return err
	}
	raw, err := record.Marshal()
	if err != nil {
		return err
	}
	copy(accs.Escrow.Data, raw)

	vaultAddr, err := vaultswap.ValidateProgramAddress(VaultSeeds(accs.Escrow.Key), program, accs.Vault.Key)
	if err != nil {
		return errors.Wrap(err, "vault")
	}
	if err := h.prepareVault(ctx, accs, vaultAddr); err != nil {
		return err
	}

	decimals, err := token.Decimals(accs.AssetA, accs.Custody.Key)
	if err != nil {
		return errors.Wrap(err, "asset a")
	}
	deposit := token.NewTransferCheckedInstruction(accs.MakerAssetA.Key, accs.AssetA.Key,
		accs.Vault.Key, accs.Maker.Key, m.DepositAmount, decimals)
	if err := vaultswap.Invoke(ctx, deposit); err != nil {
		return errors.Wrap(err, "deposit")
	}

	vaultswap.GetLogger(ctx).Info("escrow opened",
		"escrow", accs.Escrow.Key,
		"maker", accs.Maker.Key,
		"deposit", m.DepositAmount,
		"receive", m.ReceiveAmount)
	return nil
}

// prepareVault creates the vault as a holding account of asset A owned by
// the escrow address. A vault that already exists must be exactly that.
// Lamports alone do not make a vault.
func (OpenHandler) prepareVault(ctx vaultswap.Context, accs *OpenAccounts, vault vaultswap.ProgramAddress) error {
	if len(accs.Vault.Data) != 0 || !accs.Vault.Owner.Equals(system.ProgramID) {
		state, err := token.LoadAccount(accs.Vault, accs.Custody.Key)
		if err != nil {
			return errors.Wrap(err, "vault")
		}
		if !state.Mint.Equals(accs.AssetA.Key) || !state.Owner.Equals(accs.Escrow.Key) {
			return errors.Wrapf(errors.ErrInvalidAccountData, "vault %s holds %s for %s", accs.Vault.Key, state.Mint, state.Owner)
		}
		return nil
	}

	rent := vaultswap.GetRent(ctx)
	alloc := system.NewCreateAccountInstruction(accs.Maker.Key, accs.Vault.Key,
		rent.MinimumBalance(token.AccountSize), token.AccountSize, accs.Custody.Key)
	if err := vaultswap.Invoke(ctx, alloc, vault.Signer()); err != nil {
		return errors.Wrap(err, "allocate vault")
	}
	init := token.NewInitializeAccountInstruction(accs.Vault.Key, accs.AssetA.Key, accs.Escrow.Key)
	if err := vaultswap.Invoke(ctx, init); err != nil {
		return errors.Wrap(err, "initialize vault")
	}
	return nil
}

// SettleHandler pays the vault content to the taker in exchange for the
// receive amount and closes the escrow.
type SettleHandler struct{}

func (SettleHandler) handle(ctx vaultswap.Context, program vaultswap.Address, accounts []*vaultswap.AccountInfo, msg Msg) error {
	accs, err := ParseSettleAccounts(accounts)
	if err != nil {
		return err
	}
	if !accs.Taker.IsSigner {
		return errors.Wrapf(errors.ErrUnauthorized, "taker %s", accs.Taker.Key)
	}
	if err := checkPrograms(accs.Custody, accs.SystemAlloc); err != nil {
		return err
	}

	record, escrowAddr, err := validateEscrow(accs.Escrow, accs.Maker, program)
	if err != nil {
		return err
	}
	if !record.AssetA.Equals(accs.AssetA.Key) {
		return errors.Wrapf(ErrAssetMismatch, "asset a is %s, got %s", record.AssetA, accs.AssetA.Key)
	}
	if !record.AssetB.Equals(accs.AssetB.Key) {
		return errors.Wrapf(ErrAssetMismatch, "asset b is %s, got %s", record.AssetB, accs.AssetB.Key)
	}
	if _, err := vaultswap.ValidateProgramAddress(VaultSeeds(accs.Escrow.Key), program, accs.Vault.Key); err != nil {
		return errors.Wrap(err, "vault")
	}

	if err := checkMakerAccount(accs.MakerAssetB, accs.Custody.Key, record.Maker, record.AssetB); err != nil {
		return err
	}

	amount, err := token.Balance(accs.Vault, accs.Custody.Key)
	if err != nil {
		return errors.Wrap(err, "vault")
	}
	decimalsA, err := token.Decimals(accs.AssetA, accs.Custody.Key)
	if err != nil {
		return errors.Wrap(err, "asset a")
	}
	decimalsB, err := token.Decimals(accs.AssetB, accs.Custody.Key)
	if err != nil {
		return errors.Wrap(err, "asset b")
	}

	payout := token.NewTransferCheckedInstruction(accs.Vault.Key, accs.AssetA.Key,
		accs.TakerAssetA.Key, accs.Escrow.Key, amount, decimalsA)
	if err := vaultswap.Invoke(ctx, payout, escrowAddr.Signer()); err != nil {
		return errors.Wrap(err, "pay taker")
	}
	payment := token.NewTransferCheckedInstruction(accs.TakerAssetB.Key, accs.AssetB.Key,
		accs.MakerAssetB.Key, accs.Taker.Key, record.ReceiveAmount, decimalsB)
	if err := vaultswap.Invoke(ctx, payment); err != nil {
		return errors.Wrap(err, "pay maker")
	}
	if err := closeEscrow(ctx, accs.Escrow, accs.Vault, accs.Maker, escrowAddr); err != nil {
		return err
	}

	vaultswap.GetLogger(ctx).Info("escrow settled",
		"escrow", accs.Escrow.Key,
		"taker", accs.Taker.Key,
		"paid", amount,
		"received", record.ReceiveAmount)
	return nil
}

// CancelHandler returns the vault content to the maker and closes the
// escrow.
type CancelHandler struct{}

func (CancelHandler) handle(ctx vaultswap.Context, program vaultswap.Address, accounts []*vaultswap.AccountInfo, msg Msg) error {
	accs, err := ParseCancelAccounts(accounts)
	if err != nil {
		return err
	}
	// The address derivation alone would allow anyone to unwind the
	// escrow. Only the maker may.
	if !accs.Maker.IsSigner {
		return errors.Wrapf(errors.ErrUnauthorized, "maker %s", accs.Maker.Key)
	}
	if err := checkPrograms(accs.Custody, accs.SystemAlloc); err != nil {
		return err
	}

	record, escrowAddr, err := validateEscrow(accs.Escrow, accs.Maker, program)
	if err != nil {
		return err
	}
	if !record.AssetA.Equals(accs.AssetA.Key) {
		return errors.Wrapf(ErrAssetMismatch, "asset a is %s, got %s", record.AssetA, accs.AssetA.Key)
	}
	if _, err := vaultswap.ValidateProgramAddress(VaultSeeds(accs.Escrow.Key), program, accs.Vault.Key); err != nil {
		return errors.Wrap(err, "vault")
	}

	if err := checkMakerAccount(accs.MakerAssetA, accs.Custody.Key, record.Maker, record.AssetA); err != nil {
		return err
	}

	amount, err := token.Balance(accs.Vault, accs.Custody.Key)
	if err != nil {
		return errors.Wrap(err, "vault")
	}
	decimals, err := token.Decimals(accs.AssetA, accs.Custody.Key)
	if err != nil {
		return errors.Wrap(err, "asset a")
	}
	refund := token.NewTransferCheckedInstruction(accs.Vault.Key, accs.AssetA.Key,
		accs.MakerAssetA.Key, accs.Escrow.Key, amount, decimals)
	if err := vaultswap.Invoke(ctx, refund, escrowAddr.Signer()); err != nil {
		return errors.Wrap(err, "refund maker")
	}
	if err := closeEscrow(ctx, accs.Escrow, accs.Vault, accs.Maker, escrowAddr); err != nil {
		return err
	}

	vaultswap.GetLogger(ctx).Info("escrow cancelled",
		"escrow", accs.Escrow.Key,
		"maker", accs.Maker.Key,
		"refunded", amount)
	return nil
}

// validateEscrow loads the record and derives the escrow address again
// from the presented maker and the stored salt. The derivation is the
// only source of the signing capability.
func validateEscrow(escrow, maker *vaultswap.AccountInfo, program vaultswap.Address) (*Record, vaultswap.ProgramAddress, error) {
	record, err := loadRecord(escrow, program)
	if err != nil {
		return nil, vaultswap.ProgramAddress{}, err
	}
	addr, err := vaultswap.ValidateProgramAddress(EscrowSeeds(maker.Key, record.Salt), program, escrow.Key)
	if err != nil {
		return nil, vaultswap.ProgramAddress{}, errors.Wrap(err, "escrow")
	}
	if !record.Maker.Equals(maker.Key) {
		return nil, vaultswap.ProgramAddress{}, errors.Wrapf(errors.ErrAddressMismatch, "maker is %s, got %s", record.Maker, maker.Key)
	}
	return record, addr, nil
}

// checkMakerAccount ensures that a holding account receiving funds for
// the maker belongs to the maker and holds given asset.
func checkMakerAccount(acc *vaultswap.AccountInfo, custody, maker, asset vaultswap.Address) error {
	state, err := token.LoadAccount(acc, custody)
	if err != nil {
		return errors.Wrap(err, "maker account")
	}
	if !state.Owner.Equals(maker) {
		return errors.Wrapf(errors.ErrAddressMismatch, "account %s belongs to %s, not to maker %s", acc.Key, state.Owner, maker)
	}
	if !state.Mint.Equals(asset) {
		return errors.Wrapf(ErrAssetMismatch, "account %s holds %s, want %s", acc.Key, state.Mint, asset)
	}
	return nil
}

// closeEscrow closes the empty vault and the escrow record. Both storage
// balances go to the maker.
func closeEscrow(ctx vaultswap.Context, escrow, vault, maker *vaultswap.AccountInfo, escrowAddr vaultswap.ProgramAddress) error {
	closeVault := token.NewCloseAccountInstruction(vault.Key, maker.Key, escrow.Key)
	if err := vaultswap.Invoke(ctx, closeVault, escrowAddr.Signer()); err != nil {
		return errors.Wrap(err, "close vault")
	}
	if err := escrow.Close(maker); err != nil {
		return errors.Wrap(err, "close escrow")
	}
	return nil
}
