package escrow

import (
	"github.com/vaultswap/vaultswap"
	"github.com/vaultswap/vaultswap/errors"
)

// OpenAccounts are the accounts of an Open instruction, in order.
type OpenAccounts struct {
	Maker       *vaultswap.AccountInfo
	AssetA      *vaultswap.AccountInfo
	AssetB      *vaultswap.AccountInfo
	MakerAssetA *vaultswap.AccountInfo
	Escrow      *vaultswap.AccountInfo
	Vault       *vaultswap.AccountInfo
	Custody     *vaultswap.AccountInfo
	SystemAlloc *vaultswap.AccountInfo
}

// SettleAccounts are the accounts of a Settle instruction, in order.
type SettleAccounts struct {
	Taker       *vaultswap.AccountInfo
	Maker       *vaultswap.AccountInfo
	AssetA      *vaultswap.AccountInfo
	AssetB      *vaultswap.AccountInfo
	TakerAssetA *vaultswap.AccountInfo
	TakerAssetB *vaultswap.AccountInfo
	MakerAssetB *vaultswap.AccountInfo
	Escrow      *vaultswap.AccountInfo
	Vault       *vaultswap.AccountInfo
	Custody     *vaultswap.AccountInfo
	SystemAlloc *vaultswap.AccountInfo
}

// CancelAccounts are the accounts of a Cancel instruction, in order.
type CancelAccounts struct {
	Maker       *vaultswap.AccountInfo
	AssetA      *vaultswap.AccountInfo
	MakerAssetA *vaultswap.AccountInfo
	Escrow      *vaultswap.AccountInfo
	Vault       *vaultswap.AccountInfo
	Custody     *vaultswap.AccountInfo
	SystemAlloc *vaultswap.AccountInfo
}

const (
	openAccountCount   = 8
	settleAccountCount = 11
	cancelAccountCount = 7
)

func checkCount(tag Tag, accounts []*vaultswap.AccountInfo, want int) error {
	if len(accounts) != want {
		return errors.Wrapf(errors.ErrAccountCount, "%s requires %d accounts, got %d", tag, want, len(accounts))
	}
	return nil
}

// ParseOpenAccounts maps the account list of an Open instruction.
func ParseOpenAccounts(accounts []*vaultswap.AccountInfo) (*OpenAccounts, error) {
	if err := checkCount(TagOpen, accounts, openAccountCount); err != nil {
		return nil, err
	}
	return &OpenAccounts{
		Maker:       accounts[0],
		AssetA:      accounts[1],
		AssetB:      accounts[2],
		MakerAssetA: accounts[3],
		Escrow:      accounts[4],
		Vault:       accounts[5],
		Custody:     accounts[6],
		SystemAlloc: accounts[7],
	}, nil
}

// ParseSettleAccounts maps the account list of a Settle instruction.
func ParseSettleAccounts(accounts []*vaultswap.AccountInfo) (*SettleAccounts, error) {
	if err := checkCount(TagSettle, accounts, settleAccountCount); err != nil {
		return nil, err
	}
	return &SettleAccounts{
		Taker:       accounts[0],
		Maker:       accounts[1],
		AssetA:      accounts[2],
		AssetB:      accounts[3],
		TakerAssetA: accounts[4],
		TakerAssetB: accounts[5],
		MakerAssetB: accounts[6],
		Escrow:      accounts[7],
		Vault:       accounts[8],
		Custody:     accounts[9],
		SystemAlloc: accounts[10],
	}, nil
}

// ParseCancelAccounts maps the account list of a Cancel instruction.
func ParseCancelAccounts(accounts []*vaultswap.AccountInfo) (*CancelAccounts, error) {
	if err := checkCount(TagCancel, accounts, cancelAccountCount); err != nil {
		return nil, err
	}
	return &CancelAccounts{
		Maker:       accounts[0],
		AssetA:      accounts[1],
		MakerAssetA: accounts[2],
		Escrow:      accounts[3],
		Vault:       accounts[4],
		Custody:     accounts[5],
		SystemAlloc: accounts[6],
	}, nil
}
