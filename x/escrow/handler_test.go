package escrow_test

import (
	"context"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/vaultswap/vaultswap"
	"github.com/vaultswap/vaultswap/errors"
	"github.com/vaultswap/vaultswap/ledgertest"
	"github.com/vaultswap/vaultswap/ledgertest/assert"
	"github.com/vaultswap/vaultswap/runtime"
	"github.com/vaultswap/vaultswap/x/escrow"
	"github.com/vaultswap/vaultswap/x/system"
	"github.com/vaultswap/vaultswap/x/token"
)

const (
	initialLamports = 10000000
	salt            = 1337
	amount          = 100000
)

// swap is a maker and a taker, each holding one of two assets.
type swap struct {
	ledger *ledgertest.Ledger

	maker, taker solana.PrivateKey
	mintA, mintB vaultswap.Address

	makerA, makerB vaultswap.Address
	takerA, takerB vaultswap.Address
}

func newSwap(t *testing.T, takerFunds uint64) *swap {
	l := ledgertest.New(t)
	s := &swap{
		ledger: l,
		maker:  l.NewKey(initialLamports),
		taker:  l.NewKey(initialLamports),
	}
	s.mintA, _ = l.CreateMint(6)
	s.mintB, _ = l.CreateMint(9)
	s.makerA = l.CreateTokenAccount(s.mintA, s.maker.PublicKey(), amount)
	s.makerB = l.CreateTokenAccount(s.mintB, s.maker.PublicKey(), 0)
	s.takerA = l.CreateTokenAccount(s.mintA, s.taker.PublicKey(), 0)
	s.takerB = l.CreateTokenAccount(s.mintB, s.taker.PublicKey(), takerFunds)
	return s
}

func (s *swap) openParams() escrow.OpenParams {
	return escrow.OpenParams{
		Program:       escrow.ProgramID,
		Maker:         s.maker.PublicKey(),
		AssetA:        s.mintA,
		AssetB:        s.mintB,
		MakerAssetA:   s.makerA,
		Salt:          salt,
		DepositAmount: amount,
		ReceiveAmount: amount,
	}
}

func (s *swap) open(t *testing.T) (escrowAddr, vaultAddr vaultswap.Address) {
	t.Helper()
	ix, err := escrow.NewOpenInstruction(s.openParams())
	assert.Nil(t, err)
	assert.Nil(t, s.ledger.Exec(ledgertest.Keys(s.maker), ix))

	e, err := escrow.FindEscrowAddress(escrow.ProgramID, s.maker.PublicKey(), salt)
	assert.Nil(t, err)
	v, err := escrow.FindVaultAddress(escrow.ProgramID, e.Address)
	assert.Nil(t, err)
	return e.Address, v.Address
}

func (s *swap) record(t *testing.T, escrowAddr vaultswap.Address) *escrow.Record {
	t.Helper()
	r, err := escrow.GetRecord(s.ledger, escrow.ProgramID, escrowAddr)
	assert.Nil(t, err)
	return r
}

func (s *swap) settle(t *testing.T, record *escrow.Record, escrowAddr vaultswap.Address) error {
	t.Helper()
	ix, err := escrow.NewSettleInstruction(record, escrow.SettleParams{
		Program:     escrow.ProgramID,
		Escrow:      escrowAddr,
		Taker:       s.taker.PublicKey(),
		TakerAssetA: s.takerA,
		TakerAssetB: s.takerB,
		MakerAssetB: s.makerB,
	})
	assert.Nil(t, err)
	return s.ledger.Exec(ledgertest.Keys(s.taker), ix)
}

func (s *swap) cancel(t *testing.T, record *escrow.Record, escrowAddr vaultswap.Address) error {
	t.Helper()
	ix, err := escrow.NewCancelInstruction(record, escrow.CancelParams{
		Program:     escrow.ProgramID,
		Escrow:      escrowAddr,
		MakerAssetA: s.makerA,
	})
	assert.Nil(t, err)
	return s.ledger.Exec(ledgertest.Keys(s.maker), ix)
}

func TestOpen(t *testing.T) {
	s := newSwap(t, amount)
	escrowAddr, vaultAddr := s.open(t)
	l := s.ledger

	assert.Equal(t, uint64(amount), l.TokenBalance(vaultAddr))
	assert.Equal(t, uint64(0), l.TokenBalance(s.makerA))

	acc := l.Get(escrowAddr)
	assert.Equal(t, escrow.ProgramID, acc.Owner)
	assert.Equal(t, escrow.RecordSize, len(acc.Data))
	assert.Equal(t, vaultswap.DefaultRent.MinimumBalance(escrow.RecordSize), acc.Lamports)

	want := &escrow.Record{
		Salt:          salt,
		Maker:         s.maker.PublicKey(),
		AssetA:        s.mintA,
		AssetB:        s.mintB,
		ReceiveAmount: amount,
	}
	assert.Equal(t, want, s.record(t, escrowAddr))

	vault, err := token.DecodeAccount(l.Get(vaultAddr))
	assert.Nil(t, err)
	assert.Equal(t, escrowAddr, vault.Owner)
	assert.Equal(t, s.mintA, vault.Mint)

	rent := vaultswap.DefaultRent.MinimumBalance(escrow.RecordSize) + vaultswap.DefaultRent.MinimumBalance(token.AccountSize)
	assert.Equal(t, uint64(initialLamports)-rent, l.Lamports(s.maker.PublicKey()))
}

func TestOpenFailures(t *testing.T) {
	cases := map[string]struct {
		Params  func(*swap, *escrow.OpenParams)
		Unsign  bool
		WantErr *errors.Error
	}{
		"deposit larger than the balance": {
			Params:  func(s *swap, p *escrow.OpenParams) { p.DepositAmount = amount + 1 },
			WantErr: errors.ErrInsufficientBalance,
		},
		"deposit from another asset": {
			Params:  func(s *swap, p *escrow.OpenParams) { p.MakerAssetA = s.makerB },
			WantErr: token.ErrMintMismatch,
		},
		"maker does not sign": {
			Unsign:  true,
			WantErr: errors.ErrUnauthorized,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			s := newSwap(t, amount)
			p := s.openParams()
			if tc.Params != nil {
				tc.Params(s, &p)
			}
			ix, err := escrow.NewOpenInstruction(p)
			assert.Nil(t, err)
			if tc.Unsign {
				ix.Metas[0] = vaultswap.Writable(p.Maker)
			}
			err = s.ledger.Exec(ledgertest.Keys(s.maker), ix)
			assert.IsErr(t, tc.WantErr, err)

			e, err := escrow.FindEscrowAddress(escrow.ProgramID, p.Maker, p.Salt)
			assert.Nil(t, err)
			assert.Equal(t, false, s.ledger.Exists(e.Address))
			assert.Equal(t, uint64(amount), s.ledger.TokenBalance(s.makerA))
			assert.Equal(t, uint64(initialLamports), s.ledger.Lamports(s.maker.PublicKey()))
		})
	}
}

func TestOpenRejectsForeignEscrowAddress(t *testing.T) {
	s := newSwap(t, amount)
	ix, err := escrow.NewOpenInstruction(s.openParams())
	assert.Nil(t, err)

	// Escrow address derived with another salt than the payload carries.
	other, err := escrow.FindEscrowAddress(escrow.ProgramID, s.maker.PublicKey(), salt+1)
	assert.Nil(t, err)
	ix.Metas[4] = vaultswap.Writable(other.Address)

	err = s.ledger.Exec(ledgertest.Keys(s.maker), ix)
	assert.IsErr(t, errors.ErrAddressMismatch, err)
}

func TestOpenPrefundedAddresses(t *testing.T) {
	const gift = 1000
	s := newSwap(t, amount)
	e, err := escrow.FindEscrowAddress(escrow.ProgramID, s.maker.PublicKey(), salt)
	assert.Nil(t, err)
	v, err := escrow.FindVaultAddress(escrow.ProgramID, e.Address)
	assert.Nil(t, err)
	for _, addr := range []vaultswap.Address{e.Address, v.Address} {
		s.ledger.Set(addr, &vaultswap.Account{Lamports: gift, Owner: system.ProgramID})
	}

	escrowAddr, vaultAddr := s.open(t)
	l := s.ledger
	assert.Equal(t, uint64(amount), l.TokenBalance(vaultAddr))
	assert.Equal(t, s.maker.PublicKey(), s.record(t, escrowAddr).Maker)

	rent := vaultswap.DefaultRent.MinimumBalance(escrow.RecordSize) + vaultswap.DefaultRent.MinimumBalance(token.AccountSize)
	assert.Equal(t, uint64(initialLamports)-rent+2*gift, l.Lamports(s.maker.PublicKey()))
}

func TestOpenTwice(t *testing.T) {
	s := newSwap(t, amount)
	p := s.openParams()
	p.DepositAmount = amount / 2
	ix, err := escrow.NewOpenInstruction(p)
	assert.Nil(t, err)
	assert.Nil(t, s.ledger.Exec(ledgertest.Keys(s.maker), ix))

	ix, err = escrow.NewOpenInstruction(p)
	assert.Nil(t, err)
	err = s.ledger.Exec(ledgertest.Keys(s.maker), ix)
	assert.IsErr(t, errors.ErrAlreadyInUse, err)
	assert.Equal(t, uint64(amount/2), s.ledger.TokenBalance(s.makerA))
}

func TestOpenSettle(t *testing.T) {
	s := newSwap(t, amount)
	escrowAddr, vaultAddr := s.open(t)
	record := s.record(t, escrowAddr)

	assert.Nil(t, s.settle(t, record, escrowAddr))

	l := s.ledger
	assert.Equal(t, uint64(amount), l.TokenBalance(s.takerA))
	assert.Equal(t, uint64(0), l.TokenBalance(s.takerB))
	assert.Equal(t, uint64(amount), l.TokenBalance(s.makerB))
	assert.Equal(t, uint64(0), l.TokenBalance(s.makerA))
	assert.Equal(t, false, l.Exists(escrowAddr))
	assert.Equal(t, false, l.Exists(vaultAddr))

	// Storage balances of both accounts went back to the maker.
	assert.Equal(t, uint64(initialLamports), l.Lamports(s.maker.PublicKey()))
	assert.Equal(t, uint64(initialLamports), l.Lamports(s.taker.PublicKey()))

	// No double spend.
	err := s.settle(t, record, escrowAddr)
	assert.IsErr(t, errors.ErrAccountClosed, err)
	assert.Equal(t, uint64(amount), l.TokenBalance(s.takerA))
	assert.Equal(t, uint64(amount), l.TokenBalance(s.makerB))

	// Nor a cancel after the settlement.
	err = s.cancel(t, record, escrowAddr)
	assert.IsErr(t, errors.ErrAccountClosed, err)
	assert.Equal(t, uint64(0), l.TokenBalance(s.makerA))
}

func TestOpenCancel(t *testing.T) {
	s := newSwap(t, amount)
	escrowAddr, vaultAddr := s.open(t)
	record := s.record(t, escrowAddr)

	assert.Nil(t, s.cancel(t, record, escrowAddr))

	l := s.ledger
	assert.Equal(t, uint64(amount), l.TokenBalance(s.makerA))
	assert.Equal(t, uint64(0), l.TokenBalance(s.makerB))
	assert.Equal(t, uint64(amount), l.TokenBalance(s.takerB))
	assert.Equal(t, uint64(0), l.TokenBalance(s.takerA))
	assert.Equal(t, false, l.Exists(escrowAddr))
	assert.Equal(t, false, l.Exists(vaultAddr))
	assert.Equal(t, uint64(initialLamports), l.Lamports(s.maker.PublicKey()))

	err := s.settle(t, record, escrowAddr)
	assert.IsErr(t, errors.ErrAccountClosed, err)
}

func TestSettleCancelRace(t *testing.T) {
	s := newSwap(t, amount)
	escrowAddr, _ := s.open(t)
	record := s.record(t, escrowAddr)

	settleIx, err := escrow.NewSettleInstruction(record, escrow.SettleParams{
		Program:     escrow.ProgramID,
		Escrow:      escrowAddr,
		Taker:       s.taker.PublicKey(),
		TakerAssetA: s.takerA,
		TakerAssetB: s.takerB,
		MakerAssetB: s.makerB,
	})
	assert.Nil(t, err)
	cancelIx, err := escrow.NewCancelInstruction(record, escrow.CancelParams{
		Program:     escrow.ProgramID,
		Escrow:      escrowAddr,
		MakerAssetA: s.makerA,
	})
	assert.Nil(t, err)

	settleTx := runtime.NewTransaction(1001, settleIx)
	assert.Nil(t, settleTx.Sign(s.taker))
	cancelTx := runtime.NewTransaction(1002, cancelIx)
	assert.Nil(t, cancelTx.Sign(s.maker))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, tx := range []*runtime.Transaction{settleTx, cancelTx} {
		wg.Add(1)
		go func(i int, tx *runtime.Transaction) {
			defer wg.Done()
			errs[i] = s.ledger.Execute(context.Background(), tx)
		}(i, tx)
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.IsErr(t, errors.ErrAccountClosed, err)
	}
	assert.Equal(t, 1, succeeded)

	// Asset A is either with the taker or back with the maker, never both.
	l := s.ledger
	assert.Equal(t, uint64(amount), l.TokenBalance(s.takerA)+l.TokenBalance(s.makerA))
	assert.Equal(t, uint64(amount), l.TokenBalance(s.takerB)+l.TokenBalance(s.makerB))
	assert.Equal(t, false, l.Exists(escrowAddr))
}

func TestCancelByStranger(t *testing.T) {
	cases := map[string]struct {
		Build   func(s *swap, ix *vaultswap.Instruction)
		WantErr *errors.Error
	}{
		"stranger presents itself as maker": {
			WantErr: errors.ErrAddressMismatch,
		},
		"real maker presented without signature": {
			Build: func(s *swap, ix *vaultswap.Instruction) {
				ix.Metas[0] = vaultswap.Writable(s.maker.PublicKey())
			},
			WantErr: errors.ErrUnauthorized,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			s := newSwap(t, amount)
			escrowAddr, vaultAddr := s.open(t)
			record := s.record(t, escrowAddr)

			stranger := s.ledger.NewKey(initialLamports)
			forged := *record
			forged.Maker = stranger.PublicKey()
			ix, err := escrow.NewCancelInstruction(&forged, escrow.CancelParams{
				Program:     escrow.ProgramID,
				Escrow:      escrowAddr,
				MakerAssetA: s.ledger.CreateTokenAccount(s.mintA, stranger.PublicKey(), 0),
			})
			assert.Nil(t, err)
			if tc.Build != nil {
				tc.Build(s, ix)
			}

			err = s.ledger.Exec(ledgertest.Keys(stranger), ix)
			assert.IsErr(t, tc.WantErr, err)
			assert.Equal(t, uint64(amount), s.ledger.TokenBalance(vaultAddr))
			assert.Equal(t, true, s.ledger.Exists(escrowAddr))
		})
	}
}

func TestSettleAssetMismatch(t *testing.T) {
	s := newSwap(t, amount)
	escrowAddr, vaultAddr := s.open(t)
	record := s.record(t, escrowAddr)

	forged := *record
	forged.AssetA, _ = s.ledger.CreateMint(6)
	err := s.settle(t, &forged, escrowAddr)
	assert.IsErr(t, escrow.ErrAssetMismatch, err)

	forged = *record
	forged.AssetB = forged.AssetA
	err = s.settle(t, &forged, escrowAddr)
	assert.IsErr(t, escrow.ErrAssetMismatch, err)

	assert.Equal(t, uint64(amount), s.ledger.TokenBalance(vaultAddr))
	assert.Equal(t, uint64(0), s.ledger.TokenBalance(s.takerA))
	assert.Equal(t, uint64(amount), s.ledger.TokenBalance(s.takerB))
}

func TestSettlePaysOnlyTheMaker(t *testing.T) {
	cases := map[string]struct {
		Destination func(s *swap) vaultswap.Address
		WantErr     *errors.Error
	}{
		"taker own asset b account": {
			Destination: func(s *swap) vaultswap.Address { return s.takerB },
			WantErr:     errors.ErrAddressMismatch,
		},
		"account of a third party": {
			Destination: func(s *swap) vaultswap.Address {
				return s.ledger.CreateTokenAccount(s.mintB, solana.NewWallet().PublicKey(), 0)
			},
			WantErr: errors.ErrAddressMismatch,
		},
		"maker account of another asset": {
			Destination: func(s *swap) vaultswap.Address { return s.makerA },
			WantErr:     escrow.ErrAssetMismatch,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			s := newSwap(t, amount)
			escrowAddr, vaultAddr := s.open(t)
			record := s.record(t, escrowAddr)

			ix, err := escrow.NewSettleInstruction(record, escrow.SettleParams{
				Program:     escrow.ProgramID,
				Escrow:      escrowAddr,
				Taker:       s.taker.PublicKey(),
				TakerAssetA: s.takerA,
				TakerAssetB: s.takerB,
				MakerAssetB: tc.Destination(s),
			})
			assert.Nil(t, err)
			err = s.ledger.Exec(ledgertest.Keys(s.taker), ix)
			assert.IsErr(t, tc.WantErr, err)

			l := s.ledger
			assert.Equal(t, uint64(amount), l.TokenBalance(vaultAddr))
			assert.Equal(t, uint64(0), l.TokenBalance(s.takerA))
			assert.Equal(t, uint64(amount), l.TokenBalance(s.takerB))
			assert.Equal(t, uint64(0), l.TokenBalance(s.makerB))
			assert.Equal(t, true, l.Exists(escrowAddr))
		})
	}
}

func TestCancelRefundsOnlyTheMaker(t *testing.T) {
	s := newSwap(t, amount)
	escrowAddr, vaultAddr := s.open(t)
	record := s.record(t, escrowAddr)

	ix, err := escrow.NewCancelInstruction(record, escrow.CancelParams{
		Program:     escrow.ProgramID,
		Escrow:      escrowAddr,
		MakerAssetA: s.takerA,
	})
	assert.Nil(t, err)
	err = s.ledger.Exec(ledgertest.Keys(s.maker), ix)
	assert.IsErr(t, errors.ErrAddressMismatch, err)
	assert.Equal(t, uint64(amount), s.ledger.TokenBalance(vaultAddr))
	assert.Equal(t, uint64(0), s.ledger.TokenBalance(s.takerA))
	assert.Equal(t, true, s.ledger.Exists(escrowAddr))
}

func TestSettleIsAtomic(t *testing.T) {
	// The taker cannot pay the full receive amount.
	s := newSwap(t, amount/2)
	escrowAddr, vaultAddr := s.open(t)
	record := s.record(t, escrowAddr)

	err := s.settle(t, record, escrowAddr)
	assert.IsErr(t, errors.ErrInsufficientBalance, err)

	l := s.ledger
	assert.Equal(t, uint64(amount), l.TokenBalance(vaultAddr))
	assert.Equal(t, uint64(0), l.TokenBalance(s.takerA))
	assert.Equal(t, uint64(amount/2), l.TokenBalance(s.takerB))
	assert.Equal(t, uint64(0), l.TokenBalance(s.makerB))
	assert.Equal(t, true, l.Exists(escrowAddr))
	assert.Equal(t, s.record(t, escrowAddr), record)
}

func TestSettleRejectsWrongCustody(t *testing.T) {
	s := newSwap(t, amount)
	escrowAddr, _ := s.open(t)
	record := s.record(t, escrowAddr)

	ix, err := escrow.NewSettleInstruction(record, escrow.SettleParams{
		Program:     escrow.ProgramID,
		Escrow:      escrowAddr,
		Taker:       s.taker.PublicKey(),
		TakerAssetA: s.takerA,
		TakerAssetB: s.takerB,
		MakerAssetB: s.makerB,
	})
	assert.Nil(t, err)
	ix.Metas[9] = vaultswap.ReadOnly(system.ProgramID)
	err = s.ledger.Exec(ledgertest.Keys(s.taker), ix)
	assert.IsErr(t, errors.ErrUnknownProgram, err)
}

func TestListEscrows(t *testing.T) {
	s := newSwap(t, amount)
	for _, n := range []uint64{1, 2} {
		p := s.openParams()
		p.Salt = n
		p.DepositAmount = 10
		ix, err := escrow.NewOpenInstruction(p)
		assert.Nil(t, err)
		assert.Nil(t, s.ledger.Exec(ledgertest.Keys(s.maker), ix))
	}

	all, err := escrow.ListEscrows(s.ledger, escrow.ProgramID, vaultswap.Address{})
	assert.Nil(t, err)
	assert.Equal(t, 2, len(all))

	mine, err := escrow.ListEscrows(s.ledger, escrow.ProgramID, s.maker.PublicKey())
	assert.Nil(t, err)
	assert.Equal(t, 2, len(mine))

	none, err := escrow.ListEscrows(s.ledger, escrow.ProgramID, s.taker.PublicKey())
	assert.Nil(t, err)
	assert.Equal(t, 0, len(none))
}
