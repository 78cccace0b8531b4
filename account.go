package vaultswap

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/vaultswap/vaultswap/errors"
)

// Account is the state the ledger keeps for every address. An account
// with no lamports does not exist and is garbage collected when the
// transaction that emptied it commits.
type Account struct {
	Lamports   uint64
	Owner      Address
	Executable bool
	Data       []byte
}

// IsEmpty returns true if the account holds nothing: no lamports and no
// data. Nonexistent accounts are loaded as empty accounts owned by the
// system allocator.
func (a *Account) IsEmpty() bool {
	return a.Lamports == 0 && len(a.Data) == 0
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	return &Account{
		Lamports:   a.Lamports,
		Owner:      a.Owner,
		Executable: a.Executable,
		Data:       append([]byte(nil), a.Data...),
	}
}

// Equals returns true if both accounts hold the same state.
func (a *Account) Equals(b *Account) bool {
	return a.Lamports == b.Lamports &&
		a.Owner.Equals(b.Owner) &&
		a.Executable == b.Executable &&
		bytes.Equal(a.Data, b.Data)
}

// Marshal serializes the account for storage.
func (a *Account) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := bin.NewBinEncoder(&buf).Encode(a); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return buf.Bytes(), nil
}

// Unmarshal loads the account from its stored representation.
func (a *Account) Unmarshal(raw []byte) error {
	if err := bin.NewBinDecoder(raw).Decode(a); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	// The decoder slices raw. Programs write Data in place, so it must
	// not share memory with the store.
	a.Data = append([]byte(nil), a.Data...)
	return nil
}

// AccountInfo is an account as presented to a program: the account
// state together with the permissions granted by the instruction. All
// AccountInfo of the same key within a transaction share the same
// *Account, so changes made by a nested invocation are visible to the
// caller.
type AccountInfo struct {
	Key        Address
	IsSigner   bool
	IsWritable bool
	*Account
}

// IsOwnedBy returns true if the account exists and is owned by given
// program.
func (a *AccountInfo) IsOwnedBy(program Address) bool {
	return !a.IsEmpty() && a.Owner.Equals(program)
}

// Close zeroes and deallocates the account and moves all its lamports to
// dest. Ownership is returned to the system allocator. Only the owning
// program may close an account.
func (a *AccountInfo) Close(dest *AccountInfo) error {
	sum := dest.Lamports + a.Lamports
	if sum < dest.Lamports {
		return errors.Wrap(errors.ErrOverflow, "close account")
	}
	dest.Lamports = sum
	a.Lamports = 0
	for i := range a.Data {
		a.Data[i] = 0
	}
	a.Data = nil
	a.Owner = SystemProgramID
	return nil
}

// accountKeyPrefix separates accounts from other data kept in the same
// store, for example configuration.
var accountKeyPrefix = []byte("acct:")

// AccountKey returns the store key of the account at given address.
func AccountKey(addr Address) []byte {
	return append(append([]byte(nil), accountKeyPrefix...), addr.Bytes()...)
}

// AccountKeyRange returns the store key range holding all accounts.
func AccountKeyRange() (start, end []byte) {
	start = append([]byte(nil), accountKeyPrefix...)
	end = append([]byte(nil), accountKeyPrefix...)
	end[len(end)-1]++
	return start, end
}

// LoadAccount reads the account at given address. Nonexistent accounts
// are returned as empty accounts owned by the system allocator.
func LoadAccount(db ReadOnlyKVStore, addr Address) (*Account, error) {
	raw, err := db.Get(AccountKey(addr))
	if err != nil {
		return nil, errors.Wrap(err, "load account")
	}
	if raw == nil {
		return &Account{Owner: SystemProgramID}, nil
	}
	var acc Account
	if err := acc.Unmarshal(raw); err != nil {
		return nil, errors.Wrapf(err, "account %s", addr)
	}
	return &acc, nil
}

// SaveAccount writes the account at given address. Accounts without
// lamports are deleted.
func SaveAccount(db KVStore, addr Address, acc *Account) error {
	if acc.Lamports == 0 {
		return db.Delete(AccountKey(addr))
	}
	raw, err := acc.Marshal()
	if err != nil {
		return errors.Wrapf(err, "account %s", addr)
	}
	return db.Set(AccountKey(addr), raw)
}
