/*
Package ledgertest provides an in memory ledger with all programs
deployed, together with helpers to fund keys and create assets. It is
meant to be used by program tests.
*/
package ledgertest

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/vaultswap/vaultswap"
	"github.com/vaultswap/vaultswap/runtime"
	"github.com/vaultswap/vaultswap/store"
	"github.com/vaultswap/vaultswap/x/escrow"
	"github.com/vaultswap/vaultswap/x/system"
	"github.com/vaultswap/vaultswap/x/token"
	"github.com/vaultswap/vaultswap/x/vault"
)

// Ledger wraps a runtime.Ledger for tests. All helpers fail the test on
// unexpected errors.
type Ledger struct {
	*runtime.Ledger
	t     testing.TB
	nonce uint64
}

// New returns a ledger backed by an in memory store with the system,
// token, escrow and vault programs deployed at their default addresses.
func New(t testing.TB) *Ledger {
	t.Helper()
	l := runtime.NewLedger(store.MemStore())
	deploy := []struct {
		name    string
		id      vaultswap.Address
		program vaultswap.Program
	}{
		{"system", system.ProgramID, system.NewProgram()},
		{"token", token.ProgramID, token.NewProgram()},
		{"escrow", escrow.ProgramID, escrow.NewProgram()},
		{"vault", vault.ProgramID, vault.NewProgram()},
	}
	for _, d := range deploy {
		if err := l.Deploy(d.name, d.id, d.program); err != nil {
			t.Fatalf("deploy %s: %s", d.name, err)
		}
	}
	return &Ledger{Ledger: l, t: t}
}

// NewKey returns a new key pair whose system account holds lamports.
func (l *Ledger) NewKey(lamports uint64) solana.PrivateKey {
	l.t.Helper()
	key := solana.NewWallet().PrivateKey
	if lamports > 0 {
		l.Set(key.PublicKey(), &vaultswap.Account{Lamports: lamports, Owner: system.ProgramID})
	}
	return key
}

// Set overwrites the account at given address.
func (l *Ledger) Set(addr vaultswap.Address, acc *vaultswap.Account) {
	l.t.Helper()
	if err := l.SetAccount(addr, acc); err != nil {
		l.t.Fatalf("set account %s: %+v", addr, err)
	}
}

// Get returns the committed account at given address.
func (l *Ledger) Get(addr vaultswap.Address) *vaultswap.Account {
	l.t.Helper()
	acc, err := l.Account(addr)
	if err != nil {
		l.t.Fatalf("account %s: %+v", addr, err)
	}
	return acc
}

// Lamports returns the lamports held by given address.
func (l *Ledger) Lamports(addr vaultswap.Address) uint64 {
	l.t.Helper()
	return l.Get(addr).Lamports
}

// Exists returns true if an account is stored at given address.
func (l *Ledger) Exists(addr vaultswap.Address) bool {
	l.t.Helper()
	return !l.Get(addr).IsEmpty()
}

// CreateMint stores an initialized mint with given decimals and returns
// its address together with the key of its mint authority.
func (l *Ledger) CreateMint(decimals uint8) (vaultswap.Address, solana.PrivateKey) {
	l.t.Helper()
	authority := solana.NewWallet().PrivateKey
	mint := solana.NewWallet().PublicKey()
	acc := l.tokenProgramAccount(token.MintSize)
	info := &vaultswap.AccountInfo{Key: mint, Account: acc}
	m := &token.Mint{
		MintAuthorityOption: 1,
		MintAuthority:       authority.PublicKey(),
		Decimals:            decimals,
		IsInitialized:       true,
	}
	if err := token.StoreMint(info, m); err != nil {
		l.t.Fatalf("store mint: %+v", err)
	}
	l.Set(mint, acc)
	return mint, authority
}

// CreateTokenAccount stores a holding account of mint for owner holding
// amount and returns its address. The supply of the mint is increased
// accordingly.
func (l *Ledger) CreateTokenAccount(mint, owner vaultswap.Address, amount uint64) vaultswap.Address {
	l.t.Helper()
	addr := solana.NewWallet().PublicKey()
	acc := l.tokenProgramAccount(token.AccountSize)
	info := &vaultswap.AccountInfo{Key: addr, Account: acc}
	state := &token.Account{
		Mint:   mint,
		Owner:  owner,
		Amount: amount,
		State:  token.StateInitialized,
	}
	if err := token.StoreAccount(info, state); err != nil {
		l.t.Fatalf("store token account: %+v", err)
	}
	l.Set(addr, acc)

	if amount > 0 {
		macc := l.Get(mint)
		m, err := token.DecodeMint(macc)
		if err != nil {
			l.t.Fatalf("mint %s: %+v", mint, err)
		}
		m.Supply += amount
		if err := token.StoreMint(&vaultswap.AccountInfo{Key: mint, Account: macc}, m); err != nil {
			l.t.Fatalf("store mint: %+v", err)
		}
		l.Set(mint, macc)
	}
	return addr
}

func (l *Ledger) tokenProgramAccount(size int) *vaultswap.Account {
	return &vaultswap.Account{
		Lamports: vaultswap.DefaultRent.MinimumBalance(size),
		Owner:    token.ProgramID,
		Data:     make([]byte, size),
	}
}

// TokenBalance returns the amount held by a token account. It fails the
// test if the account is not a token account.
func (l *Ledger) TokenBalance(addr vaultswap.Address) uint64 {
	l.t.Helper()
	state, err := token.DecodeAccount(l.Get(addr))
	if err != nil {
		l.t.Fatalf("token account %s: %+v", addr, err)
	}
	return state.Amount
}

// Exec signs a transaction with given keys and executes it. Every call
// uses a new nonce.
func (l *Ledger) Exec(keys []solana.PrivateKey, ixs ...solana.Instruction) error {
	l.t.Helper()
	l.nonce++
	tx := runtime.NewTransaction(l.nonce, ixs...)
	if err := tx.Sign(keys...); err != nil {
		l.t.Fatalf("sign: %+v", err)
	}
	return l.Execute(context.Background(), tx)
}

// Keys is a shorthand for building a list of signing keys.
func Keys(keys ...solana.PrivateKey) []solana.PrivateKey {
	return keys
}
