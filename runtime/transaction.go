package runtime

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/vaultswap/vaultswap"
	"github.com/vaultswap/vaultswap/errors"
	"golang.org/x/crypto/ed25519"
)

// Transaction is a list of instructions executed atomically.
type Transaction struct {
	// Nonce makes transactions with identical instructions distinct. A
	// transaction is executed at most once.
	Nonce        uint64
	Instructions []solana.Instruction
	Signatures   []Signature
}

// Signature of the transaction message by a single key.
type Signature struct {
	Signer    vaultswap.Address
	Signature solana.Signature
}

// NewTransaction returns an unsigned transaction.
func NewTransaction(nonce uint64, instructions ...solana.Instruction) *Transaction {
	return &Transaction{
		Nonce:        nonce,
		Instructions: instructions,
	}
}

type wireMeta struct {
	Key        vaultswap.Address
	IsSigner   bool
	IsWritable bool
}

type wireInstruction struct {
	Program  vaultswap.Address
	Accounts []wireMeta
	Data     []byte
}

type wireMessage struct {
	Nonce        uint64
	Instructions []wireInstruction
}

func (tx *Transaction) wire() (*wireMessage, error) {
	msg := wireMessage{Nonce: tx.Nonce}
	for i, ix := range tx.Instructions {
		data, err := ix.Data()
		if err != nil {
			return nil, errors.Wrapf(errors.ErrMalformedPayload, "instruction #%d: %s", i, err)
		}
		wi := wireInstruction{
			Program: ix.ProgramID(),
			Data:    data,
		}
		for _, m := range ix.Accounts() {
			wi.Accounts = append(wi.Accounts, wireMeta{
				Key:        m.PublicKey,
				IsSigner:   m.IsSigner,
				IsWritable: m.IsWritable,
			})
		}
		msg.Instructions = append(msg.Instructions, wi)
	}
	return &msg, nil
}

// Message returns the bytes that are signed.
func (tx *Transaction) Message() ([]byte, error) {
	msg, err := tx.wire()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := bin.NewBinEncoder(&buf).Encode(msg); err != nil {
		return nil, errors.Wrap(errors.ErrMalformedPayload, err.Error())
	}
	return buf.Bytes(), nil
}

type wireTransaction struct {
	Message    wireMessage
	Signatures []Signature
}

// Marshal serializes the transaction together with its signatures.
func (tx *Transaction) Marshal() ([]byte, error) {
	msg, err := tx.wire()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	wt := wireTransaction{Message: *msg, Signatures: tx.Signatures}
	if err := bin.NewBinEncoder(&buf).Encode(&wt); err != nil {
		return nil, errors.Wrap(errors.ErrMalformedPayload, err.Error())
	}
	return buf.Bytes(), nil
}

// Unmarshal loads a transaction serialized by Marshal. Instruction
// payloads are kept in their serialized form.
func (tx *Transaction) Unmarshal(raw []byte) error {
	var wt wireTransaction
	if err := bin.NewBinDecoder(raw).Decode(&wt); err != nil {
		return errors.Wrap(errors.ErrMalformedPayload, err.Error())
	}
	tx.Nonce = wt.Message.Nonce
	tx.Signatures = wt.Signatures
	tx.Instructions = make([]solana.Instruction, 0, len(wt.Message.Instructions))
	for _, wi := range wt.Message.Instructions {
		ix := vaultswap.NewInstruction(wi.Program, vaultswap.RawPayload(wi.Data))
		for _, m := range wi.Accounts {
			ix.Metas = append(ix.Metas, solana.NewAccountMeta(m.Key, m.IsWritable, m.IsSigner))
		}
		tx.Instructions = append(tx.Instructions, ix)
	}
	return nil
}

// ID returns the hex encoded hash of the transaction message.
func (tx *Transaction) ID() (string, error) {
	msg, err := tx.Message()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(msg)
	return hex.EncodeToString(sum[:]), nil
}

// Sign adds a signature of every given key. The transaction must not be
// modified afterwards.
func (tx *Transaction) Sign(keys ...solana.PrivateKey) error {
	msg, err := tx.Message()
	if err != nil {
		return err
	}
	for _, key := range keys {
		if len(key) != ed25519.PrivateKeySize {
			return errors.Wrapf(errors.ErrInput, "private key of %d bytes", len(key))
		}
		var sig solana.Signature
		copy(sig[:], ed25519.Sign(ed25519.PrivateKey(key), msg))
		tx.Signatures = append(tx.Signatures, Signature{
			Signer:    key.PublicKey(),
			Signature: sig,
		})
	}
	return nil
}

// verify checks every signature and returns the set of signers. Every
// account flagged as signer by an instruction must have signed.
func (tx *Transaction) verify() (map[vaultswap.Address]bool, []byte, error) {
	if len(tx.Instructions) == 0 {
		return nil, nil, errors.Wrap(errors.ErrInput, "no instructions")
	}
	msg, err := tx.Message()
	if err != nil {
		return nil, nil, err
	}
	signers := make(map[vaultswap.Address]bool, len(tx.Signatures))
	for _, s := range tx.Signatures {
		if !ed25519.Verify(ed25519.PublicKey(s.Signer[:]), msg, s.Signature[:]) {
			return nil, nil, errors.Wrapf(errors.ErrUnauthorized, "invalid signature of %s", s.Signer)
		}
		signers[s.Signer] = true
	}
	for i, ix := range tx.Instructions {
		for _, m := range ix.Accounts() {
			if m.IsSigner && !signers[m.PublicKey] {
				return nil, nil, errors.Wrapf(errors.ErrUnauthorized, "instruction #%d: %s did not sign", i, m.PublicKey)
			}
		}
	}
	return signers, msg, nil
}
