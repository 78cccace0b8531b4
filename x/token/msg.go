package token

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/vaultswap/vaultswap"
	"github.com/vaultswap/vaultswap/errors"
)

// Instruction tags, serialized as the first byte of the data.
const (
	TagInitializeMint    uint8 = 0
	TagInitializeAccount uint8 = 1
	TagTransfer          uint8 = 3
	TagMintTo            uint8 = 7
	TagCloseAccount      uint8 = 9
	TagTransferChecked   uint8 = 12
)

// Msg is an instruction payload of the token program.
type Msg interface {
	vaultswap.Marshaler
	Tag() uint8
	Validate() error
}

// InitializeMintMsg turns an allocated account into a mint.
type InitializeMintMsg struct {
	Decimals      uint8
	MintAuthority vaultswap.Address
}

func (InitializeMintMsg) Tag() uint8 { return TagInitializeMint }

func (m *InitializeMintMsg) Validate() error {
	if m.MintAuthority.IsZero() {
		return errors.Wrap(errors.ErrInput, "mint authority required")
	}
	return nil
}

func (m *InitializeMintMsg) Marshal() ([]byte, error) { return marshal(m) }

// InitializeAccountMsg turns an allocated account into a holding account.
type InitializeAccountMsg struct {
	Owner vaultswap.Address
}

func (InitializeAccountMsg) Tag() uint8 { return TagInitializeAccount }

func (m *InitializeAccountMsg) Validate() error {
	if m.Owner.IsZero() {
		return errors.Wrap(errors.ErrInput, "owner required")
	}
	return nil
}

func (m *InitializeAccountMsg) Marshal() ([]byte, error) { return marshal(m) }

// TransferMsg moves tokens between two holding accounts of the same mint.
type TransferMsg struct {
	Amount uint64
}

func (TransferMsg) Tag() uint8 { return TagTransfer }

func (m *TransferMsg) Validate() error { return nil }

func (m *TransferMsg) Marshal() ([]byte, error) { return marshal(m) }

// MintToMsg issues new tokens.
type MintToMsg struct {
	Amount uint64
}

func (MintToMsg) Tag() uint8 { return TagMintTo }

func (m *MintToMsg) Validate() error { return nil }

func (m *MintToMsg) Marshal() ([]byte, error) { return marshal(m) }

// CloseAccountMsg deallocates an empty holding account.
type CloseAccountMsg struct{}

func (CloseAccountMsg) Tag() uint8 { return TagCloseAccount }

func (m *CloseAccountMsg) Validate() error { return nil }

func (m *CloseAccountMsg) Marshal() ([]byte, error) { return marshal(m) }

// TransferCheckedMsg is a transfer that also asserts the mint and its
// decimals.
type TransferCheckedMsg struct {
	Amount   uint64
	Decimals uint8
}

func (TransferCheckedMsg) Tag() uint8 { return TagTransferChecked }

func (m *TransferCheckedMsg) Validate() error { return nil }

func (m *TransferCheckedMsg) Marshal() ([]byte, error) { return marshal(m) }

// payload widths, tag excluded
var msgSize = map[uint8]int{
	TagInitializeMint:    1 + vaultswap.AddressLength,
	TagInitializeAccount: vaultswap.AddressLength,
	TagTransfer:          8,
	TagMintTo:            8,
	TagCloseAccount:      0,
	TagTransferChecked:   8 + 1,
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
	tag := data[0]
	size, ok := msgSize[tag]
	if !ok {
		return nil, errors.Wrapf(errors.ErrMalformedPayload, "unknown tag %d", tag)
	}
	if len(data)-1 != size {
		return nil, errors.Wrapf(errors.ErrMalformedPayload,
			"tag %d requires %d bytes, got %d", tag, size, len(data)-1)
	}

	var msg Msg
	switch tag {
	case TagInitializeMint:
		msg = &InitializeMintMsg{}
	case TagInitializeAccount:
		msg = &InitializeAccountMsg{}
	case TagTransfer:
		msg = &TransferMsg{}
	case TagMintTo:
		msg = &MintToMsg{}
	case TagCloseAccount:
		msg = &CloseAccountMsg{}
	case TagTransferChecked:
		msg = &TransferCheckedMsg{}
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
