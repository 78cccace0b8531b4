package escrow

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/vaultswap/vaultswap"
	"github.com/vaultswap/vaultswap/errors"
	"github.com/vaultswap/vaultswap/ledgertest/assert"
)

func TestEscrowAddress(t *testing.T) {
	maker := solana.NewWallet().PublicKey()
	other := solana.NewWallet().PublicKey()

	a, err := FindEscrowAddress(ProgramID, maker, 1337)
	assert.Nil(t, err)
	b, err := FindEscrowAddress(ProgramID, maker, 1337)
	assert.Nil(t, err)
	assert.Equal(t, a, b)

	cases := map[string]struct {
		maker vaultswap.Address
		salt  uint64
	}{
		"other salt":  {maker: maker, salt: 1338},
		"other maker": {maker: other, salt: 1337},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			c, err := FindEscrowAddress(ProgramID, tc.maker, tc.salt)
			assert.Nil(t, err)
			if c.Address.Equals(a.Address) {
				t.Fatalf("address collision: %s", c.Address)
			}
		})
	}

	// Only the program the address is derived for can sign for it.
	signed, err := a.Signer().Address(ProgramID)
	assert.Nil(t, err)
	assert.Equal(t, a.Address, signed)
	if elsewhere, err := a.Signer().Address(solana.TokenProgramID); err == nil && elsewhere.Equals(a.Address) {
		t.Fatal("address signed for by another program")
	}

	_, err = vaultswap.ValidateProgramAddress(EscrowSeeds(other, 1337), ProgramID, a.Address)
	assert.IsErr(t, errors.ErrAddressMismatch, err)
}

func TestVaultAddress(t *testing.T) {
	maker := solana.NewWallet().PublicKey()
	e1, err := FindEscrowAddress(ProgramID, maker, 1)
	assert.Nil(t, err)
	e2, err := FindEscrowAddress(ProgramID, maker, 2)
	assert.Nil(t, err)

	v1, err := FindVaultAddress(ProgramID, e1.Address)
	assert.Nil(t, err)
	again, err := FindVaultAddress(ProgramID, e1.Address)
	assert.Nil(t, err)
	assert.Equal(t, v1, again)

	v2, err := FindVaultAddress(ProgramID, e2.Address)
	assert.Nil(t, err)
	if v1.Address.Equals(v2.Address) {
		t.Fatal("vaults of distinct escrows collide")
	}
	if v1.Address.Equals(e1.Address) {
		t.Fatal("vault and escrow collide")
	}
}
