package vaultswap

import (
	"encoding/hex"
	"strings"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/gagliardetto/solana-go"
	"github.com/vaultswap/vaultswap/errors"
)

// AddressLength is the length of all addresses.
const AddressLength = solana.PublicKeyLength

// Address identifies an account. It is either an ed25519 public key,
// owned by whoever holds the private key, or a program derived address
// that only the deriving program can authorize.
type Address = solana.PublicKey

// SystemProgramID is the address of the system allocator. Accounts that
// do not exist are reported as empty and owned by the system allocator.
var SystemProgramID = solana.SystemProgramID

// ParseAddress decodes an address from its textual representation.
// Base58 is the default. A "hex:" or "bech32:" prefix selects another
// encoding.
func ParseAddress(raw string) (Address, error) {
	chunks := strings.SplitN(raw, ":", 2)
	if len(chunks) == 1 {
		addr, err := solana.PublicKeyFromBase58(raw)
		if err != nil {
			return Address{}, errors.Wrapf(errors.ErrInput, "base58 address %q: %s", raw, err)
		}
		return addr, nil
	}

	var payload []byte
	switch format, enc := chunks[0], chunks[1]; format {
	case "hex":
		val, err := hex.DecodeString(enc)
		if err != nil {
			return Address{}, errors.Wrap(errors.ErrInput, "cannot decode hex")
		}
		payload = val
	case "bech32":
		_, data, err := bech32.Decode(enc)
		if err != nil {
			return Address{}, errors.Wrapf(errors.ErrInput, "bech32 decode: %s", err)
		}
		val, err := bech32.ConvertBits(data, 5, 8, false)
		if err != nil {
			return Address{}, errors.Wrapf(errors.ErrInput, "convert bits: %s", err)
		}
		payload = val
	default:
		return Address{}, errors.Wrapf(errors.ErrInput, "unknown address format %q", format)
	}
	if len(payload) != AddressLength {
		return Address{}, errors.Wrapf(errors.ErrInput, "address must be %d bytes, got %d", AddressLength, len(payload))
	}
	return solana.PublicKeyFromBytes(payload), nil
}

// EncodeBech32 returns the bech32 representation of given address, as
// accepted by ParseAddress with a "bech32:" prefix.
func EncodeBech32(hrp string, addr Address) (string, error) {
	data, err := bech32.ConvertBits(addr.Bytes(), 8, 5, true)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInput, "convert bits: %s", err)
	}
	raw, err := bech32.Encode(hrp, data)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInput, "bech32 encode: %s", err)
	}
	return raw, nil
}
