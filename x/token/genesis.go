package token

import (
	"github.com/vaultswap/vaultswap"
	"github.com/vaultswap/vaultswap/errors"
	"github.com/vaultswap/vaultswap/x/system"
)

// GenesisMint is a mint created at genesis.
type GenesisMint struct {
	Address   vaultswap.Address `json:"address"`
	Authority vaultswap.Address `json:"authority"`
	Decimals  uint8             `json:"decimals"`
}

// GenesisAccount is a funded holding account created at genesis.
type GenesisAccount struct {
	Address vaultswap.Address `json:"address"`
	Mint    vaultswap.Address `json:"mint"`
	Owner   vaultswap.Address `json:"owner"`
	Amount  uint64            `json:"amount"`
}

// Initializer fulfils the Initializer interface to load data from the
// genesis file.
type Initializer struct{}

var _ vaultswap.Initializer = (*Initializer)(nil)

// FromGenesis creates the mints and holding accounts declared in the
// "token" section. Every account is funded to the rent exemption
// threshold and the supply of each mint is the sum of its accounts.
func (*Initializer) FromGenesis(opts vaultswap.Options, db vaultswap.KVStore) error {
	var genesis struct {
		Mints    []GenesisMint    `json:"mints"`
		Accounts []GenesisAccount `json:"accounts"`
	}
	if err := opts.ReadOptions("token", &genesis); err != nil {
		return err
	}
	rent, err := system.LoadRent(db)
	if err != nil {
		return err
	}

	mints := make(map[vaultswap.Address]*Mint, len(genesis.Mints))
	for i, gm := range genesis.Mints {
		if _, ok := mints[gm.Address]; ok {
			return errors.Wrapf(errors.ErrAlreadyInUse, "mint #%d: %s", i, gm.Address)
		}
		mints[gm.Address] = &Mint{
			MintAuthorityOption: optionSome,
			MintAuthority:       gm.Authority,
			Decimals:            gm.Decimals,
			IsInitialized:       true,
		}
	}

	for i, ga := range genesis.Accounts {
		m, ok := mints[ga.Mint]
		if !ok {
			return errors.Wrapf(errors.ErrNotFound, "account #%d: mint %s", i, ga.Mint)
		}
		if m.Supply+ga.Amount < m.Supply {
			return errors.Wrapf(errors.ErrOverflow, "account #%d: supply", i)
		}
		m.Supply += ga.Amount
		state := &Account{
			Mint:   ga.Mint,
			Owner:  ga.Owner,
			Amount: ga.Amount,
			State:  StateInitialized,
		}
		if err := create(db, ga.Address, AccountSize, rent, state); err != nil {
			return errors.Wrapf(err, "account #%d", i)
		}
	}

	for _, gm := range genesis.Mints {
		if err := create(db, gm.Address, MintSize, rent, mints[gm.Address]); err != nil {
			return errors.Wrapf(err, "mint %s", gm.Address)
		}
	}
	return nil
}

func create(db vaultswap.KVStore, addr vaultswap.Address, size int, rent vaultswap.Rent, state interface{}) error {
	acc, err := vaultswap.LoadAccount(db, addr)
	if err != nil {
		return err
	}
	if !acc.IsEmpty() {
		return errors.Wrapf(errors.ErrAlreadyInUse, "%s", addr)
	}
	acc.Lamports = rent.MinimumBalance(size)
	if acc.Lamports == 0 {
		acc.Lamports = 1
	}
	acc.Owner = ProgramID
	acc.Data = make([]byte, size)
	if err := encodeInto(acc.Data, state); err != nil {
		return err
	}
	return vaultswap.SaveAccount(db, addr, acc)
}
