package escrow

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/vaultswap/vaultswap"
	"github.com/vaultswap/vaultswap/errors"
)

// RecordSize is the size of a serialized Record.
const RecordSize = 8 + 3*vaultswap.AddressLength + 8

// Record is the state of an open escrow. It is written once by Open and
// never updated.
type Record struct {
	Salt          uint64
	Maker         vaultswap.Address
	AssetA        vaultswap.Address
	AssetB        vaultswap.Address
	ReceiveAmount uint64
}

// Validate ensures the record is complete. Records are built from
// instruction input, so failures are reported as malformed payloads.
func (r *Record) Validate() error {
	if r.Maker.IsZero() {
		return errors.Wrap(errors.ErrMalformedPayload, "maker required")
	}
	if r.AssetA.IsZero() || r.AssetB.IsZero() {
		return errors.Wrap(errors.ErrMalformedPayload, "assets required")
	}
	if r.ReceiveAmount == 0 {
		return errors.Wrap(errors.ErrMalformedPayload, "receive amount required")
	}
	return nil
}

// Marshal serializes the record into its fixed layout.
func (r *Record) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(RecordSize)
	if err := bin.NewBinEncoder(&buf).Encode(r); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidAccountData, err.Error())
	}
	return buf.Bytes(), nil
}

// Unmarshal loads the record from its fixed layout. Data of any other
// size is rejected.
func (r *Record) Unmarshal(raw []byte) error {
	if len(raw) != RecordSize {
		return errors.Wrapf(errors.ErrInvalidAccountData, "record of %d bytes, want %d", len(raw), RecordSize)
	}
	if err := bin.NewBinDecoder(raw).Decode(r); err != nil {
		return errors.Wrap(errors.ErrInvalidAccountData, err.Error())
	}
	return nil
}

// loadRecord reads the record stored in an escrow account owned by
// program. An account that does not exist or is owned by anyone else is
// reported as closed.
func loadRecord(acc *vaultswap.AccountInfo, program vaultswap.Address) (*Record, error) {
	if !acc.IsOwnedBy(program) {
		return nil, errors.Wrapf(errors.ErrAccountClosed, "escrow %s", acc.Key)
	}
	var r Record
	if err := r.Unmarshal(acc.Data); err != nil {
		return nil, errors.Wrapf(err, "escrow %s", acc.Key)
	}
	return &r, nil
}
