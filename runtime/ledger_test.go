package runtime

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/vaultswap/vaultswap"
	"github.com/vaultswap/vaultswap/errors"
	"github.com/vaultswap/vaultswap/store"
	"github.com/vaultswap/vaultswap/store/iavl"
	"github.com/vaultswap/vaultswap/x/system"
)

var (
	thiefID  = solana.NewWallet().PublicKey()
	panicID  = solana.NewWallet().PublicKey()
	boxID    = solana.NewWallet().PublicKey()
	writerID = solana.NewWallet().PublicKey()
)

// thief moves lamports out of the first account into the second one,
// regardless of ownership.
func thief(ctx vaultswap.Context, program vaultswap.Address, accounts []*vaultswap.AccountInfo, data []byte) error {
	accounts[0].Lamports -= 10
	accounts[1].Lamports += 10
	return nil
}

func panicking(ctx vaultswap.Context, program vaultswap.Address, accounts []*vaultswap.AccountInfo, data []byte) error {
	panic("boom")
}

// writer stores the instruction data in the first account.
func writer(ctx vaultswap.Context, program vaultswap.Address, accounts []*vaultswap.AccountInfo, data []byte) error {
	copy(accounts[0].Data, data)
	return nil
}

func boxSeeds(owner vaultswap.Address) [][]byte {
	return [][]byte{[]byte("box"), owner.Bytes()}
}

// box pays out lamports held by the derived address ["box", owner] to the
// owner. With data set to 1 it does not sign for the box.
func box(ctx vaultswap.Context, program vaultswap.Address, accounts []*vaultswap.AccountInfo, data []byte) error {
	boxAcc, owner := accounts[0], accounts[1]
	pa, err := vaultswap.ValidateProgramAddress(boxSeeds(owner.Key), program, boxAcc.Key)
	if err != nil {
		return err
	}
	ix := system.NewTransferInstruction(boxAcc.Key, owner.Key, boxAcc.Lamports)
	if len(data) > 0 && data[0] == 1 {
		return vaultswap.Invoke(ctx, ix)
	}
	return vaultswap.Invoke(ctx, ix, pa.Signer())
}

type fixture struct {
	ledger *Ledger
	nonce  uint64
}

func newFixture(t testing.TB) *fixture {
	return newFixtureOn(t, store.MemStore())
}

func newFixtureOn(t testing.TB, db Store) *fixture {
	l := NewLedger(db)
	require.NoError(t, l.Deploy("system", system.ProgramID, system.NewProgram()))
	require.NoError(t, l.Deploy("thief", thiefID, vaultswap.ProgramFunc(thief)))
	require.NoError(t, l.Deploy("panic", panicID, vaultswap.ProgramFunc(panicking)))
	require.NoError(t, l.Deploy("box", boxID, vaultswap.ProgramFunc(box)))
	require.NoError(t, l.Deploy("writer", writerID, vaultswap.ProgramFunc(writer)))
	return &fixture{ledger: l}
}

func (f *fixture) fund(t testing.TB, lamports uint64) solana.PrivateKey {
	key := solana.NewWallet().PrivateKey
	f.set(t, key.PublicKey(), &vaultswap.Account{Lamports: lamports, Owner: system.ProgramID})
	return key
}

func (f *fixture) set(t testing.TB, addr vaultswap.Address, acc *vaultswap.Account) {
	require.NoError(t, f.ledger.SetAccount(addr, acc))
}

func (f *fixture) lamports(t testing.TB, addr vaultswap.Address) uint64 {
	acc, err := f.ledger.Account(addr)
	require.NoError(t, err)
	return acc.Lamports
}

func (f *fixture) exec(t testing.TB, keys []solana.PrivateKey, ixs ...solana.Instruction) error {
	f.nonce++
	tx := NewTransaction(f.nonce, ixs...)
	require.NoError(t, tx.Sign(keys...))
	return f.ledger.Execute(context.Background(), tx)
}

func TestExecuteTransfer(t *testing.T) {
	cases := map[string]struct {
		Amount  uint64
		Sign    bool
		WantErr *errors.Error
	}{
		"signed transfer": {
			Amount: 400,
			Sign:   true,
		},
		"missing signature": {
			Amount:  400,
			WantErr: errors.ErrUnauthorized,
		},
		"insufficient balance": {
			Amount:  1001,
			Sign:    true,
			WantErr: errors.ErrInsufficientBalance,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			alice := f.fund(t, 1000)
			bob := solana.NewWallet().PublicKey()

			var keys []solana.PrivateKey
			if tc.Sign {
				keys = append(keys, alice)
			}
			err := f.exec(t, keys, system.NewTransferInstruction(alice.PublicKey(), bob, tc.Amount))
			if tc.WantErr != nil {
				require.True(t, tc.WantErr.Is(err), "unexpected error: %+v", err)
				require.Equal(t, uint64(1000), f.lamports(t, alice.PublicKey()))
				require.Equal(t, uint64(0), f.lamports(t, bob))
				return
			}
			require.NoError(t, err)
			require.Equal(t, 1000-tc.Amount, f.lamports(t, alice.PublicKey()))
			require.Equal(t, tc.Amount, f.lamports(t, bob))
		})
	}
}

func TestExecuteIsAtomic(t *testing.T) {
	f := newFixture(t)
	alice := f.fund(t, 1000)
	bob := solana.NewWallet().PublicKey()

	err := f.exec(t, []solana.PrivateKey{alice},
		system.NewTransferInstruction(alice.PublicKey(), bob, 600),
		system.NewTransferInstruction(alice.PublicKey(), bob, 600),
	)
	require.True(t, errors.ErrInsufficientBalance.Is(err), "unexpected error: %+v", err)
	require.Equal(t, uint64(1000), f.lamports(t, alice.PublicKey()))
	require.Equal(t, uint64(0), f.lamports(t, bob))
}

func TestExecuteDiscardsData(t *testing.T) {
	cases := map[string]struct {
		NewStore func(t *testing.T) Store
	}{
		"memory store": {
			NewStore: func(t *testing.T) Store { return store.MemStore() },
		},
		"iavl commit store": {
			NewStore: func(t *testing.T) Store {
				s := iavl.NewMemCommitStore()
				require.NoError(t, s.LoadLatestVersion())
				return s
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixtureOn(t, tc.NewStore(t))
			owned := solana.NewWallet().PublicKey()
			f.set(t, owned, &vaultswap.Account{
				Lamports: vaultswap.DefaultRent.MinimumBalance(4),
				Owner:    writerID,
				Data:     []byte{1, 2, 3, 4},
			})

			err := f.exec(t, nil,
				vaultswap.NewInstruction(writerID, vaultswap.RawPayload{9, 9, 9, 9}, vaultswap.Writable(owned)),
				vaultswap.NewInstruction(panicID, nil),
			)
			require.True(t, errors.ErrPanic.Is(err), "unexpected error: %+v", err)

			acc, err := f.ledger.Account(owned)
			require.NoError(t, err)
			require.Equal(t, []byte{1, 2, 3, 4}, acc.Data)

			// The queried copy does not alias the stored one either.
			acc.Data[0] = 7
			again, err := f.ledger.Account(owned)
			require.NoError(t, err)
			require.Equal(t, []byte{1, 2, 3, 4}, again.Data)
		})
	}
}

func TestExecuteRejectsReplay(t *testing.T) {
	f := newFixture(t)
	alice := f.fund(t, 1000)
	bob := solana.NewWallet().PublicKey()

	tx := NewTransaction(1, system.NewTransferInstruction(alice.PublicKey(), bob, 100))
	require.NoError(t, tx.Sign(alice))
	require.NoError(t, f.ledger.Execute(context.Background(), tx))

	err := f.ledger.Execute(context.Background(), tx)
	require.True(t, errors.ErrAlreadyInUse.Is(err), "unexpected error: %+v", err)
	require.Equal(t, uint64(100), f.lamports(t, bob))
}

func TestExecuteRejectsForgedSignature(t *testing.T) {
	f := newFixture(t)
	alice := f.fund(t, 1000)
	mallory := solana.NewWallet().PrivateKey
	bob := solana.NewWallet().PublicKey()

	tx := NewTransaction(1, system.NewTransferInstruction(alice.PublicKey(), bob, 100))
	require.NoError(t, tx.Sign(mallory))
	tx.Signatures[0].Signer = alice.PublicKey()

	err := f.ledger.Execute(context.Background(), tx)
	require.True(t, errors.ErrUnauthorized.Is(err), "unexpected error: %+v", err)
}

func TestExecuteEnforcesOwnership(t *testing.T) {
	f := newFixture(t)
	alice := f.fund(t, 1000)
	bob := solana.NewWallet().PublicKey()

	ix := vaultswap.NewInstruction(thiefID, nil,
		vaultswap.Writable(alice.PublicKey()),
		vaultswap.Writable(bob),
	)
	err := f.exec(t, nil, ix)
	require.True(t, errors.ErrReadonly.Is(err), "unexpected error: %+v", err)
	require.Equal(t, uint64(1000), f.lamports(t, alice.PublicKey()))
}

func TestExecuteEnforcesWritable(t *testing.T) {
	f := newFixture(t)
	owned := solana.NewWallet().PublicKey()
	f.set(t, owned, &vaultswap.Account{
		Lamports: vaultswap.DefaultRent.MinimumBalance(4),
		Owner:    writerID,
		Data:     make([]byte, 4),
	})

	err := f.exec(t, nil, vaultswap.NewInstruction(writerID, vaultswap.RawPayload{1, 2, 3, 4},
		vaultswap.ReadOnly(owned)))
	require.True(t, errors.ErrReadonly.Is(err), "unexpected error: %+v", err)

	err = f.exec(t, nil, vaultswap.NewInstruction(writerID, vaultswap.RawPayload{1, 2, 3, 4},
		vaultswap.Writable(owned)))
	require.NoError(t, err)
	acc, err := f.ledger.Account(owned)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, acc.Data)
}

func TestExecuteRecoversPanic(t *testing.T) {
	f := newFixture(t)
	err := f.exec(t, nil, vaultswap.NewInstruction(panicID, nil))
	require.True(t, errors.ErrPanic.Is(err), "unexpected error: %+v", err)
}

func TestExecuteUnknownProgram(t *testing.T) {
	f := newFixture(t)
	err := f.exec(t, nil, vaultswap.NewInstruction(solana.NewWallet().PublicKey(), nil))
	require.True(t, errors.ErrUnknownProgram.Is(err), "unexpected error: %+v", err)
}

func TestInvokeWithDerivedSigner(t *testing.T) {
	cases := map[string]struct {
		Data    vaultswap.RawPayload
		WantErr *errors.Error
	}{
		"program signs for its derived address": {
			Data: vaultswap.RawPayload{0},
		},
		"program without signer seeds cannot move funds": {
			Data:    vaultswap.RawPayload{1},
			WantErr: errors.ErrUnauthorized,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			owner := solana.NewWallet().PublicKey()
			pa, err := vaultswap.FindProgramAddress(boxSeeds(owner), boxID)
			require.NoError(t, err)
			f.set(t, pa.Address, &vaultswap.Account{Lamports: 5000, Owner: system.ProgramID})

			ix := vaultswap.NewInstruction(boxID, tc.Data,
				vaultswap.Writable(pa.Address),
				vaultswap.Writable(owner),
				vaultswap.ReadOnly(system.ProgramID),
			)
			err = f.exec(t, nil, ix)
			if tc.WantErr != nil {
				require.True(t, tc.WantErr.Is(err), "unexpected error: %+v", err)
				require.Equal(t, uint64(5000), f.lamports(t, pa.Address))
				return
			}
			require.NoError(t, err)
			require.Equal(t, uint64(0), f.lamports(t, pa.Address))
			require.Equal(t, uint64(5000), f.lamports(t, owner))
		})
	}
}

func TestInvokeCannotEscalate(t *testing.T) {
	f := newFixture(t)
	owner := solana.NewWallet().PublicKey()
	// Derived from another program, box cannot sign for it.
	pa, err := vaultswap.FindProgramAddress(boxSeeds(owner), thiefID)
	require.NoError(t, err)
	f.set(t, pa.Address, &vaultswap.Account{Lamports: 5000, Owner: system.ProgramID})

	ix := vaultswap.NewInstruction(boxID, vaultswap.RawPayload{0},
		vaultswap.Writable(pa.Address),
		vaultswap.Writable(owner),
	)
	err = f.exec(t, nil, ix)
	require.True(t, errors.ErrAddressMismatch.Is(err), "unexpected error: %+v", err)
	require.Equal(t, uint64(5000), f.lamports(t, pa.Address))
}

func TestConcurrentTransfers(t *testing.T) {
	f := newFixture(t)
	const workers = 8
	const rounds = 20

	sink := solana.NewWallet().PublicKey()
	keys := make([]solana.PrivateKey, workers)
	for i := range keys {
		keys[i] = f.fund(t, 1000)
	}

	var wg sync.WaitGroup
	errs := make(chan error, workers*rounds)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(key solana.PrivateKey, worker int) {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				tx := NewTransaction(uint64(worker*rounds+r), system.NewTransferInstruction(key.PublicKey(), sink, 10))
				if err := tx.Sign(key); err != nil {
					errs <- err
					continue
				}
				errs <- f.ledger.Execute(context.Background(), tx)
			}
		}(keys[i], i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, uint64(workers*rounds*10), f.lamports(t, sink))
	for _, key := range keys {
		require.Equal(t, uint64(1000-rounds*10), f.lamports(t, key.PublicKey()))
	}
}

func TestMetrics(t *testing.T) {
	f := newFixture(t)
	alice := f.fund(t, 1000)
	bob := solana.NewWallet().PublicKey()

	require.NoError(t, f.exec(t, []solana.PrivateKey{alice}, system.NewTransferInstruction(alice.PublicKey(), bob, 1)))
	require.Error(t, f.exec(t, []solana.PrivateKey{alice}, system.NewTransferInstruction(alice.PublicKey(), bob, 5000)))

	m := f.ledger.metrics
	require.Equal(t, float64(1), testutil.ToFloat64(m.transactions.WithLabelValues("success")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.transactions.WithLabelValues("failure")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.instructions.WithLabelValues("system", "success")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.instructions.WithLabelValues("system", "failure")))

	families, err := f.ledger.Metrics().Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	require.True(t, names["vaultswap_transactions_total"], fmt.Sprint(names))
	require.True(t, names["vaultswap_instructions_total"], fmt.Sprint(names))
}

func TestProgramAccounts(t *testing.T) {
	f := newFixture(t)
	a, b := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()
	f.set(t, a, &vaultswap.Account{Lamports: 1, Owner: writerID})
	f.set(t, b, &vaultswap.Account{Lamports: 1, Owner: thiefID})

	accs, err := f.ledger.ProgramAccounts(writerID)
	require.NoError(t, err)
	require.Len(t, accs, 1)
	require.Equal(t, a, accs[0].Key)
}
