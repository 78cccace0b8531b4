package system

import (
	"github.com/vaultswap/vaultswap"
	"github.com/vaultswap/vaultswap/errors"
	"github.com/vaultswap/vaultswap/gconf"
)

// GenesisWallet is an account funded at genesis.
type GenesisWallet struct {
	Address  vaultswap.Address `json:"address"`
	Lamports uint64            `json:"lamports"`
}

// Initializer fulfils the Initializer interface to load data from the
// genesis file.
type Initializer struct{}

var _ vaultswap.Initializer = (*Initializer)(nil)

// FromGenesis will parse initial wallets from the genesis file and store
// them. The rent configuration is read from the "conf" section; when it
// is missing the default rent applies.
func (*Initializer) FromGenesis(opts vaultswap.Options, db vaultswap.KVStore) error {
	var genesis struct {
		Wallets []GenesisWallet `json:"wallets"`
	}
	if err := opts.ReadOptions(packageName, &genesis); err != nil {
		return err
	}
	for i, w := range genesis.Wallets {
		if w.Lamports == 0 {
			return errors.Wrapf(errors.ErrInput, "wallet #%d: no lamports", i)
		}
		acc, err := vaultswap.LoadAccount(db, w.Address)
		if err != nil {
			return errors.Wrapf(err, "wallet #%d", i)
		}
		if !acc.IsEmpty() {
			return errors.Wrapf(errors.ErrAlreadyInUse, "wallet #%d: %s", i, w.Address)
		}
		acc.Lamports = w.Lamports
		if err := vaultswap.SaveAccount(db, w.Address, acc); err != nil {
			return errors.Wrapf(err, "wallet #%d", i)
		}
	}

	var conf Configuration
	if err := gconf.InitConfig(db, opts, packageName, &conf); err != nil && !errors.ErrNotFound.Is(err) {
		return errors.Wrap(err, "rent configuration")
	}
	return nil
}
