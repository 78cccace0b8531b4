package escrow

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/vaultswap/vaultswap"
	"github.com/vaultswap/vaultswap/errors"
	"github.com/vaultswap/vaultswap/ledgertest/assert"
)

func TestRecordLayout(t *testing.T) {
	r := Record{
		Salt:          1337,
		Maker:         solana.NewWallet().PublicKey(),
		AssetA:        solana.NewWallet().PublicKey(),
		AssetB:        solana.NewWallet().PublicKey(),
		ReceiveAmount: 100000,
	}
	raw, err := r.Marshal()
	assert.Nil(t, err)
	assert.Equal(t, 112, len(raw))

	assert.Equal(t, uint64(1337), binary.LittleEndian.Uint64(raw[0:8]))
	assert.Equal(t, r.Maker.Bytes(), raw[8:40])
	assert.Equal(t, r.AssetA.Bytes(), raw[40:72])
	assert.Equal(t, r.AssetB.Bytes(), raw[72:104])
	assert.Equal(t, uint64(100000), binary.LittleEndian.Uint64(raw[104:112]))

	var back Record
	assert.Nil(t, back.Unmarshal(raw))
	assert.Equal(t, r, back)
}

func TestRecordUnmarshalSize(t *testing.T) {
	cases := map[string][]byte{
		"empty":     nil,
		"too short": make([]byte, RecordSize-1),
		"too long":  make([]byte, RecordSize+1),
	}
	for testName, raw := range cases {
		t.Run(testName, func(t *testing.T) {
			var r Record
			assert.IsErr(t, errors.ErrInvalidAccountData, r.Unmarshal(raw))
		})
	}
}

func TestRecordValidate(t *testing.T) {
	valid := Record{
		Maker:         solana.NewWallet().PublicKey(),
		AssetA:        solana.NewWallet().PublicKey(),
		AssetB:        solana.NewWallet().PublicKey(),
		ReceiveAmount: 1,
	}
	assert.Nil(t, valid.Validate())

	cases := map[string]func(*Record){
		"missing maker":   func(r *Record) { r.Maker = vaultswap.Address{} },
		"missing asset a": func(r *Record) { r.AssetA = vaultswap.Address{} },
		"missing asset b": func(r *Record) { r.AssetB = vaultswap.Address{} },
		"zero receive":    func(r *Record) { r.ReceiveAmount = 0 },
	}
	for testName, mutate := range cases {
		t.Run(testName, func(t *testing.T) {
			r := valid
			mutate(&r)
			assert.IsErr(t, errors.ErrMalformedPayload, r.Validate())
		})
	}
}

func TestLoadRecord(t *testing.T) {
	r := Record{
		Salt:          7,
		Maker:         solana.NewWallet().PublicKey(),
		AssetA:        solana.NewWallet().PublicKey(),
		AssetB:        solana.NewWallet().PublicKey(),
		ReceiveAmount: 5,
	}
	raw, err := r.Marshal()
	assert.Nil(t, err)
	key := solana.NewWallet().PublicKey()

	cases := map[string]struct {
		acc     *vaultswap.Account
		wantErr *errors.Error
	}{
		"open escrow": {
			acc: &vaultswap.Account{Lamports: 1, Owner: ProgramID, Data: raw},
		},
		"closed escrow": {
			acc:     &vaultswap.Account{Owner: vaultswap.SystemProgramID},
			wantErr: errors.ErrAccountClosed,
		},
		"foreign owner": {
			acc:     &vaultswap.Account{Lamports: 1, Owner: solana.TokenProgramID, Data: raw},
			wantErr: errors.ErrAccountClosed,
		},
		"truncated data": {
			acc:     &vaultswap.Account{Lamports: 1, Owner: ProgramID, Data: raw[:100]},
			wantErr: errors.ErrInvalidAccountData,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := loadRecord(&vaultswap.AccountInfo{Key: key, Account: tc.acc}, ProgramID)
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, &r, got)
		})
	}
}
