package escrow

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/vaultswap/vaultswap"
	"github.com/vaultswap/vaultswap/errors"
)

// Tag selects the instruction. It is the first byte of the instruction
// data.
type Tag uint8

const (
	TagOpen   Tag = 0
	TagSettle Tag = 1
	TagCancel Tag = 2
)

func (t Tag) String() string {
	switch t {
	case TagOpen:
		return "open"
	case TagSettle:
		return "settle"
	case TagCancel:
		return "cancel"
	}
	return "unknown"
}

// Msg is an instruction payload of the escrow program.
type Msg interface {
	vaultswap.Marshaler
	Tag() Tag
	Validate() error
}

// OpenMsg opens an escrow.
type OpenMsg struct {
	Salt          uint64
	DepositAmount uint64
	ReceiveAmount uint64
}

var _ Msg = (*OpenMsg)(nil)

func (OpenMsg) Tag() Tag { return TagOpen }

// Validate rejects an escrow that offers or asks for nothing.
func (m *OpenMsg) Validate() error {
	if m.DepositAmount == 0 {
		return errors.Wrap(errors.ErrMalformedPayload, "zero deposit amount")
	}
	if m.ReceiveAmount == 0 {
		return errors.Wrap(errors.ErrMalformedPayload, "zero receive amount")
	}
	return nil
}

func (m *OpenMsg) Marshal() ([]byte, error) { return marshal(m) }

// SettleMsg swaps the vault content for the receive amount.
type SettleMsg struct{}

var _ Msg = (*SettleMsg)(nil)

func (SettleMsg) Tag() Tag { return TagSettle }

func (m *SettleMsg) Validate() error { return nil }

func (m *SettleMsg) Marshal() ([]byte, error) { return marshal(m) }

// CancelMsg returns the vault content to the maker.
type CancelMsg struct{}

var _ Msg = (*CancelMsg)(nil)

func (CancelMsg) Tag() Tag { return TagCancel }

func (m *CancelMsg) Validate() error { return nil }

func (m *CancelMsg) Marshal() ([]byte, error) { return marshal(m) }

// payload widths, tag excluded
var msgSize = map[Tag]int{
	TagOpen:   8 + 8 + 8,
	TagSettle: 0,
	TagCancel: 0,
}

func marshal(m Msg) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(byte(m.Tag()))
	if err := bin.NewBinEncoder(&buf).Encode(m); err != nil {
		return nil, errors.Wrap(errors.ErrMalformedPayload, err.Error())
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes instruction data. Missing or unknown tags and
// payloads of the wrong width are rejected with ErrMalformedPayload.
func Unmarshal(data []byte) (Msg, error) {
	if len(data) == 0 {
		return nil, errors.Wrap(errors.ErrMalformedPayload, "missing tag")
	}
	tag := Tag(data[0])
	size, ok := msgSize[tag]
	if !ok {
		return nil, errors.Wrapf(errors.ErrMalformedPayload, "unknown tag %d", data[0])
	}
	if len(data)-1 != size {
		return nil, errors.Wrapf(errors.ErrMalformedPayload,
			"%s payload must be %d bytes, got %d", tag, size, len(data)-1)
	}

	var msg Msg
	switch tag {
	case TagOpen:
		msg = &OpenMsg{}
	case TagSettle:
		msg = &SettleMsg{}
	case TagCancel:
		msg = &CancelMsg{}
	}
	if size > 0 {
		if err := bin.NewBinDecoder(data[1:]).Decode(msg); err != nil {
			return nil, errors.Wrap(errors.ErrMalformedPayload, err.Error())
		}
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return msg, nil
}
