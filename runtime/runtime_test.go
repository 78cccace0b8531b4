package runtime

import (
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
	"github.com/vaultswap/vaultswap"
)

func TestLockTableExclusiveWrite(t *testing.T) {
	table := newLockTable()
	a := solana.NewWallet().PublicKey()
	b := solana.NewWallet().PublicKey()

	table.acquire([]vaultswap.Address{a}, nil)

	// Readers of another account are not blocked.
	table.acquire(nil, []vaultswap.Address{b})
	table.acquire(nil, []vaultswap.Address{b})
	table.release(nil, []vaultswap.Address{b})
	table.release(nil, []vaultswap.Address{b})

	acquired := make(chan struct{})
	go func() {
		table.acquire(nil, []vaultswap.Address{a})
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("read access granted while the account is written")
	case <-time.After(20 * time.Millisecond):
	}

	table.release([]vaultswap.Address{a}, nil)
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("read access not granted after release")
	}
	require.Equal(t, 1, table.readers[a])
}

func TestTransactionID(t *testing.T) {
	alice := solana.NewWallet().PrivateKey
	bob := solana.NewWallet().PublicKey()
	ix := vaultswap.NewInstruction(bob, vaultswap.RawPayload{1, 2}, vaultswap.Signer(alice.PublicKey(), true))

	a, err := NewTransaction(1, ix).ID()
	require.NoError(t, err)
	b, err := NewTransaction(1, ix).ID()
	require.NoError(t, err)
	c, err := NewTransaction(2, ix).ID()
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.NotEqual(t, a, c)

	// Signatures are not part of the identifier.
	tx := NewTransaction(1, ix)
	require.NoError(t, tx.Sign(alice))
	signed, err := tx.ID()
	require.NoError(t, err)
	require.Equal(t, a, signed)

	_, _, err = tx.verify()
	require.NoError(t, err)
}

func TestTransactionMarshal(t *testing.T) {
	alice := solana.NewWallet().PrivateKey
	program := solana.NewWallet().PublicKey()
	tx := NewTransaction(7,
		vaultswap.NewInstruction(program, vaultswap.RawPayload{1, 2, 3},
			vaultswap.Signer(alice.PublicKey(), true),
			vaultswap.ReadOnly(program)),
		vaultswap.NewInstruction(program, nil),
	)
	require.NoError(t, tx.Sign(alice))

	raw, err := tx.Marshal()
	require.NoError(t, err)

	var back Transaction
	require.NoError(t, back.Unmarshal(raw))
	require.Equal(t, uint64(7), back.Nonce)
	require.Len(t, back.Instructions, 2)
	require.Equal(t, tx.Signatures, back.Signatures)

	want, err := tx.ID()
	require.NoError(t, err)
	got, err := back.ID()
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, _, err = back.verify()
	require.NoError(t, err)

	require.Error(t, back.Unmarshal(raw[:len(raw)-1]))
}
