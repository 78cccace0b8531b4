package system

import (
	"bytes"
	"encoding/binary"

	bin "github.com/gagliardetto/binary"
	"github.com/vaultswap/vaultswap"
	"github.com/vaultswap/vaultswap/errors"
)

// Instruction tags. The tag is serialized as a little endian uint32 in
// front of the payload.
const (
	TagCreateAccount uint32 = 0
	TagAssign        uint32 = 1
	TagTransfer      uint32 = 2
)

// MaxAccountSize is the biggest data size an account can be created
// with.
const MaxAccountSize = 10 * 1024 * 1024

// Msg is an instruction payload of the system allocator.
type Msg interface {
	vaultswap.Marshaler
	Tag() uint32
	Validate() error
}

// CreateAccountMsg funds a new account and allocates its data, owned by
// the given program.
type CreateAccountMsg struct {
	Lamports uint64
	Space    uint64
	Owner    vaultswap.Address
}

// Tag returns TagCreateAccount.
func (CreateAccountMsg) Tag() uint32 { return TagCreateAccount }

// Validate ensures the message is well formed.
func (m *CreateAccountMsg) Validate() error {
	if m.Space > MaxAccountSize {
		return errors.Wrapf(errors.ErrInput, "space %d exceeds %d", m.Space, MaxAccountSize)
	}
	if m.Owner.IsZero() {
		return errors.Wrap(errors.ErrInput, "owner required")
	}
	return nil
}

// Marshal serializes the message together with its tag.
func (m *CreateAccountMsg) Marshal() ([]byte, error) { return marshal(m) }

// AssignMsg changes the owner of a system owned account.
type AssignMsg struct {
	Owner vaultswap.Address
}

// Tag returns TagAssign.
func (AssignMsg) Tag() uint32 { return TagAssign }

// Validate ensures the message is well formed.
func (m *AssignMsg) Validate() error {
	if m.Owner.IsZero() {
		return errors.Wrap(errors.ErrInput, "owner required")
	}
	return nil
}

// Marshal serializes the message together with its tag.
func (m *AssignMsg) Marshal() ([]byte, error) { return marshal(m) }

// TransferMsg moves lamports between two accounts.
type TransferMsg struct {
	Lamports uint64
}

// Tag returns TagTransfer.
func (TransferMsg) Tag() uint32 { return TagTransfer }

// Validate ensures the message is well formed.
func (m *TransferMsg) Validate() error {
	return nil
}

// Marshal serializes the message together with its tag.
func (m *TransferMsg) Marshal() ([]byte, error) { return marshal(m) }

// payload widths, tag excluded
var msgSize = map[uint32]int{
	TagCreateAccount: 8 + 8 + vaultswap.AddressLength,
	TagAssign:        vaultswap.AddressLength,
	TagTransfer:      8,
}

func marshal(m Msg) ([]byte, error) {
	var buf bytes.Buffer
	enc := bin.NewBinEncoder(&buf)
	if err := enc.WriteUint32(m.Tag(), binary.LittleEndian); err != nil {
		return nil, errors.Wrap(errors.ErrMalformedPayload, err.Error())
	}
	if err := enc.Encode(m); err != nil {
		return nil, errors.Wrap(errors.ErrMalformedPayload, err.Error())
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes instruction data into the message selected by its
// tag. Data of any other width than the one the tag declares is
// rejected.
func Unmarshal(data []byte) (Msg, error) {
	if len(data) < 4 {
		return nil, errors.Wrap(errors.ErrMalformedPayload, "missing tag")
	}
	tag := binary.LittleEndian.Uint32(data)
	size, ok := msgSize[tag]
	if !ok {
		return nil, errors.Wrapf(errors.ErrMalformedPayload, "unknown tag %d", tag)
	}
	if len(data)-4 != size {
		return nil, errors.Wrapf(errors.ErrMalformedPayload,
			"tag %d requires %d bytes, got %d", tag, size, len(data)-4)
	}

	var msg Msg
	switch tag {
	case TagCreateAccount:
		msg = &CreateAccountMsg{}
	case TagAssign:
		msg = &AssignMsg{}
	case TagTransfer:
		msg = &TransferMsg{}
	}
	if err := bin.NewBinDecoder(data[4:]).Decode(msg); err != nil {
		return nil, errors.Wrap(errors.ErrMalformedPayload, err.Error())
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return msg, nil
}
