package token

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/vaultswap/vaultswap"
	"github.com/vaultswap/vaultswap/errors"
)

const (
	// MintSize is the data size of a mint account.
	MintSize = 82
	// AccountSize is the data size of a holding account.
	AccountSize = 165
)

// Option tags of the optional address fields.
const (
	optionNone uint32 = 0
	optionSome uint32 = 1
)

// AccountState is the state of a holding account.
type AccountState uint8

const (
	StateUninitialized AccountState = iota
	StateInitialized
	StateFrozen
)

// Mint describes an asset.
type Mint struct {
	MintAuthorityOption   uint32
	MintAuthority         vaultswap.Address
	Supply                uint64
	Decimals              uint8
	IsInitialized         bool
	FreezeAuthorityOption uint32
	FreezeAuthority       vaultswap.Address
}

// Authority returns the mint authority, if any.
func (m *Mint) Authority() (vaultswap.Address, bool) {
	return m.MintAuthority, m.MintAuthorityOption == optionSome
}

// Account is a balance of a single mint held on behalf of an owner.
type Account struct {
	Mint                 vaultswap.Address
	Owner                vaultswap.Address
	Amount               uint64
	DelegateOption       uint32
	Delegate             vaultswap.Address
	State                AccountState
	IsNativeOption       uint32
	IsNative             uint64
	DelegatedAmount      uint64
	CloseAuthorityOption uint32
	CloseAuthority       vaultswap.Address
}

// IsInitialized returns true once InitializeAccount ran.
func (a *Account) IsInitialized() bool {
	return a.State != StateUninitialized
}

// Closer returns the address allowed to close the account.
func (a *Account) Closer() vaultswap.Address {
	if a.CloseAuthorityOption == optionSome {
		return a.CloseAuthority
	}
	return a.Owner
}

// encodeInto serializes obj into dst, which must have exactly the size
// of the layout.
func encodeInto(dst []byte, obj interface{}) error {
	var buf bytes.Buffer
	if err := bin.NewBinEncoder(&buf).Encode(obj); err != nil {
		return errors.Wrap(errors.ErrInvalidAccountData, err.Error())
	}
	if buf.Len() != len(dst) {
		return errors.Wrapf(errors.ErrInvalidAccountData, "layout of %d bytes, account of %d", buf.Len(), len(dst))
	}
	copy(dst, buf.Bytes())
	return nil
}

func decode(raw []byte, size int, obj interface{}) error {
	if len(raw) != size {
		return errors.Wrapf(errors.ErrInvalidAccountData, "want %d bytes, got %d", size, len(raw))
	}
	if err := bin.NewBinDecoder(raw).Decode(obj); err != nil {
		return errors.Wrap(errors.ErrInvalidAccountData, err.Error())
	}
	return nil
}

// LoadMint decodes the mint held by given account. The account must be
// owned by program.
func LoadMint(acc *vaultswap.AccountInfo, program vaultswap.Address) (*Mint, error) {
	if !acc.IsOwnedBy(program) {
		return nil, errors.Wrapf(errors.ErrIllegalOwner, "mint %s is owned by %s", acc.Key, acc.Owner)
	}
	var m Mint
	if err := decode(acc.Data, MintSize, &m); err != nil {
		return nil, errors.Wrapf(err, "mint %s", acc.Key)
	}
	if !m.IsInitialized {
		return nil, errors.Wrapf(errors.ErrInvalidAccountData, "mint %s is not initialized", acc.Key)
	}
	return &m, nil
}

// StoreMint writes the mint into the account data.
func StoreMint(acc *vaultswap.AccountInfo, m *Mint) error {
	return encodeInto(acc.Data, m)
}

// LoadAccount decodes the holding account state held by given account.
// The account must be owned by program.
func LoadAccount(acc *vaultswap.AccountInfo, program vaultswap.Address) (*Account, error) {
	if !acc.IsOwnedBy(program) {
		return nil, errors.Wrapf(errors.ErrIllegalOwner, "token account %s is owned by %s", acc.Key, acc.Owner)
	}
	var a Account
	if err := decode(acc.Data, AccountSize, &a); err != nil {
		return nil, errors.Wrapf(err, "token account %s", acc.Key)
	}
	if !a.IsInitialized() {
		return nil, errors.Wrapf(errors.ErrInvalidAccountData, "token account %s is not initialized", acc.Key)
	}
	return &a, nil
}

// StoreAccount writes the holding account state into the account data.
func StoreAccount(acc *vaultswap.AccountInfo, a *Account) error {
	return encodeInto(acc.Data, a)
}

// Balance returns the amount held by a token account.
func Balance(acc *vaultswap.AccountInfo, program vaultswap.Address) (uint64, error) {
	a, err := LoadAccount(acc, program)
	if err != nil {
		return 0, err
	}
	return a.Amount, nil
}

// Decimals returns the precision of given mint.
func Decimals(mint *vaultswap.AccountInfo, program vaultswap.Address) (uint8, error) {
	m, err := LoadMint(mint, program)
	if err != nil {
		return 0, err
	}
	return m.Decimals, nil
}

// DecodeAccount decodes a stored holding account, as returned by the
// ledger queries.
func DecodeAccount(acc *vaultswap.Account) (*Account, error) {
	var a Account
	if err := decode(acc.Data, AccountSize, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// DecodeMint decodes a stored mint, as returned by the ledger queries.
func DecodeMint(acc *vaultswap.Account) (*Mint, error) {
	var m Mint
	if err := decode(acc.Data, MintSize, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
