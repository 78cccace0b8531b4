package escrow

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/vaultswap/vaultswap"
	"github.com/vaultswap/vaultswap/errors"
	"github.com/vaultswap/vaultswap/ledgertest/assert"
)

func openPayload(salt, deposit, receive uint64) []byte {
	raw := make([]byte, 25)
	raw[0] = byte(TagOpen)
	binary.LittleEndian.PutUint64(raw[1:], salt)
	binary.LittleEndian.PutUint64(raw[9:], deposit)
	binary.LittleEndian.PutUint64(raw[17:], receive)
	return raw
}

func TestUnmarshal(t *testing.T) {
	cases := map[string]struct {
		data    []byte
		want    Msg
		wantErr *errors.Error
	}{
		"open": {
			data: openPayload(1337, 100000, 50000),
			want: &OpenMsg{Salt: 1337, DepositAmount: 100000, ReceiveAmount: 50000},
		},
		"settle": {
			data: []byte{1},
			want: &SettleMsg{},
		},
		"cancel": {
			data: []byte{2},
			want: &CancelMsg{},
		},
		"empty": {
			data:    nil,
			wantErr: errors.ErrMalformedPayload,
		},
		"unknown tag": {
			data:    []byte{3},
			wantErr: errors.ErrMalformedPayload,
		},
		"open too short": {
			data:    openPayload(1, 1, 1)[:24],
			wantErr: errors.ErrMalformedPayload,
		},
		"open too long": {
			data:    append(openPayload(1, 1, 1), 0),
			wantErr: errors.ErrMalformedPayload,
		},
		"settle with payload": {
			data:    []byte{1, 0},
			wantErr: errors.ErrMalformedPayload,
		},
		"cancel with payload": {
			data:    []byte{2, 0, 0},
			wantErr: errors.ErrMalformedPayload,
		},
		"zero deposit": {
			data:    openPayload(1, 0, 1),
			wantErr: errors.ErrMalformedPayload,
		},
		"zero receive": {
			data:    openPayload(1, 1, 0),
			wantErr: errors.ErrMalformedPayload,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			msg, err := Unmarshal(tc.data)
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tc.want, msg)

			raw, err := msg.Marshal()
			assert.Nil(t, err)
			assert.Equal(t, tc.data, raw)
		})
	}
}

func TestUnknownTags(t *testing.T) {
	for tag := 3; tag < 256; tag++ {
		if _, err := Unmarshal([]byte{byte(tag)}); !errors.ErrMalformedPayload.Is(err) {
			t.Fatalf("tag %d: want malformed payload, got %+v", tag, err)
		}
	}
}

func TestRoutes(t *testing.T) {
	p := NewProgram()
	assert.Equal(t, 3, len(p.routes))

	// Each tag reaches a different handler.
	assert.Equal(t, OpenHandler{}, p.routes[TagOpen])
	assert.Equal(t, SettleHandler{}, p.routes[TagSettle])
	assert.Equal(t, CancelHandler{}, p.routes[TagCancel])

	assert.Panics(t, func() { p.handle(TagSettle, CancelHandler{}) })
}

func TestProcessAccountCount(t *testing.T) {
	p := NewProgram()
	ctx := context.Background()

	cases := map[string]struct {
		data  []byte
		count int
	}{
		"open":   {data: openPayload(1, 1, 1), count: openAccountCount - 1},
		"settle": {data: []byte{1}, count: settleAccountCount + 1},
		"cancel": {data: []byte{2}, count: 0},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			accounts := make([]*vaultswap.AccountInfo, tc.count)
			for i := range accounts {
				accounts[i] = &vaultswap.AccountInfo{Account: &vaultswap.Account{}}
			}
			err := p.Process(ctx, ProgramID, accounts, tc.data)
			assert.IsErr(t, errors.ErrAccountCount, err)
		})
	}
}
