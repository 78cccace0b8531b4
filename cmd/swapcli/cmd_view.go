package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"

	"github.com/vaultswap/vaultswap"
	"github.com/vaultswap/vaultswap/runtime"
	"github.com/vaultswap/vaultswap/x/escrow"
	"github.com/vaultswap/vaultswap/x/system"
	"github.com/vaultswap/vaultswap/x/token"
	"github.com/vaultswap/vaultswap/x/vault"
)

type txView struct {
	ID           string              `json:"id"`
	Nonce        uint64              `json:"nonce"`
	Instructions []instructionView   `json:"instructions"`
	Signers      []vaultswap.Address `json:"signers"`
}

type instructionView struct {
	Program  string      `json:"program"`
	Accounts []metaView  `json:"accounts"`
	Data     string      `json:"data"`
	Msg      interface{} `json:"msg,omitempty"`
	Error    string      `json:"error,omitempty"`
}

type metaView struct {
	Address  vaultswap.Address `json:"address"`
	Signer   bool              `json:"signer,omitempty"`
	Writable bool              `json:"writable,omitempty"`
}

func cmdTransactionView(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Decode and display transaction summary. This command is helpful when reciving a
binary representation of a transaction. Before signing you should check what
kind of operation are you authorizing.
`)
		fl.PrintDefaults()
	}
	fl.Parse(args)

	tx, _, err := readTx(input)
	if err != nil {
		return fmt.Errorf("cannot read transaction: %s", err)
	}
	id, err := tx.ID()
	if err != nil {
		return fmt.Errorf("cannot compute transaction id: %s", err)
	}
	return writeJSON(output, newTxView(id, tx))
}

func newTxView(id string, tx *runtime.Transaction) txView {
	v := txView{
		ID:      id,
		Nonce:   tx.Nonce,
		Signers: []vaultswap.Address{},
	}
	for _, s := range tx.Signatures {
		v.Signers = append(v.Signers, s.Signer)
	}
	for _, ix := range tx.Instructions {
		iv := instructionView{Program: programName(ix.ProgramID())}
		for _, m := range ix.Accounts() {
			iv.Accounts = append(iv.Accounts, metaView{
				Address:  m.PublicKey,
				Signer:   m.IsSigner,
				Writable: m.IsWritable,
			})
		}
		data, err := ix.Data()
		if err != nil {
			iv.Error = err.Error()
		} else {
			iv.Data = hex.EncodeToString(data)
			iv.Msg, err = decodeMsg(ix.ProgramID(), data)
			if err != nil {
				iv.Error = err.Error()
			}
		}
		v.Instructions = append(v.Instructions, iv)
	}
	return v
}

// decodeMsg returns the payload of an instruction of a known program.
// Unknown programs have no decoded payload.
func decodeMsg(program vaultswap.Address, data []byte) (interface{}, error) {
	switch {
	case program.Equals(escrow.ProgramID):
		return escrow.Unmarshal(data)
	case program.Equals(token.ProgramID):
		return token.Unmarshal(data)
	case program.Equals(system.ProgramID):
		return system.Unmarshal(data)
	case program.Equals(vault.ProgramID):
		return vault.Unmarshal(data)
	}
	return nil, nil
}
