package vault

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/vaultswap/vaultswap"
	"github.com/vaultswap/vaultswap/errors"
)

// Instruction tags, serialized as the first byte of the data.
const (
	TagInitialize uint8 = 0
	TagDeposit    uint8 = 1
	TagWithdraw   uint8 = 2
	TagClose      uint8 = 3
)

// Msg is an instruction payload of the vault program.
type Msg interface {
	vaultswap.Marshaler
	Tag() uint8
}

// InitializeMsg creates the state account of a user.
type InitializeMsg struct{}

func (InitializeMsg) Tag() uint8                  { return TagInitialize }
func (m *InitializeMsg) Marshal() ([]byte, error) { return marshal(m) }

// DepositMsg moves lamports from the user into the vault.
type DepositMsg struct {
	Amount uint64
}

func (DepositMsg) Tag() uint8                  { return TagDeposit }
func (m *DepositMsg) Marshal() ([]byte, error) { return marshal(m) }

// WithdrawMsg moves lamports from the vault back to the user.
type WithdrawMsg struct {
	Amount uint64
}

func (WithdrawMsg) Tag() uint8                  { return TagWithdraw }
func (m *WithdrawMsg) Marshal() ([]byte, error) { return marshal(m) }

// CloseMsg drains the vault and closes the state account.
type CloseMsg struct{}

func (CloseMsg) Tag() uint8                  { return TagClose }
func (m *CloseMsg) Marshal() ([]byte, error) { return marshal(m) }

var msgSize = map[uint8]int{
	TagInitialize: 0,
	TagDeposit:    8,
	TagWithdraw:   8,
	TagClose:      0,
}

func marshal(m Msg) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(m.Tag())
	if err := bin.NewBinEncoder(&buf).Encode(m); err != nil {
		return nil, errors.Wrap(errors.ErrMalformedPayload, err.Error())
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes instruction data into the message selected by its
// tag.
func Unmarshal(data []byte) (Msg, error) {
	if len(data) == 0 {
		return nil, errors.Wrap(errors.ErrMalformedPayload, "missing tag")
	}
	size, ok := msgSize[data[0]]
	if !ok {
		return nil, errors.Wrapf(errors.ErrMalformedPayload, "unknown tag %d", data[0])
	}
	if len(data)-1 != size {
		return nil, errors.Wrapf(errors.ErrMalformedPayload, "tag %d requires %d bytes, got %d", data[0], size, len(data)-1)
	}
	var msg Msg
	switch data[0] {
	case TagInitialize:
		msg = &InitializeMsg{}
	case TagDeposit:
		msg = &DepositMsg{}
	case TagWithdraw:
		msg = &WithdrawMsg{}
	case TagClose:
		msg = &CloseMsg{}
	}
	if size > 0 {
		if err := bin.NewBinDecoder(data[1:]).Decode(msg); err != nil {
			return nil, errors.Wrap(errors.ErrMalformedPayload, err.Error())
		}
	}
	return msg, nil
}
