package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"

	"github.com/tendermint/tendermint/libs/log"
	"github.com/vaultswap/vaultswap"
	"github.com/vaultswap/vaultswap/x/escrow"
	"github.com/vaultswap/vaultswap/x/token"
)

// accountView is the JSON presentation of an account. The data is decoded
// when the owner is a known program.
type accountView struct {
	Address    vaultswap.Address `json:"address"`
	Lamports   uint64            `json:"lamports"`
	Owner      string            `json:"owner"`
	Executable bool              `json:"executable,omitempty"`
	Data       string            `json:"data,omitempty"`

	TokenAccount *token.Account `json:"token_account,omitempty"`
	Mint         *token.Mint    `json:"mint,omitempty"`
	Escrow       *escrow.Record `json:"escrow,omitempty"`
}

func newAccountView(addr vaultswap.Address, acc *vaultswap.Account) accountView {
	v := accountView{
		Address:    addr,
		Lamports:   acc.Lamports,
		Owner:      programName(acc.Owner),
		Executable: acc.Executable,
		Data:       hex.EncodeToString(acc.Data),
	}
	switch {
	case acc.Owner.Equals(token.ProgramID) && len(acc.Data) == token.AccountSize:
		v.TokenAccount, _ = token.DecodeAccount(acc)
	case acc.Owner.Equals(token.ProgramID) && len(acc.Data) == token.MintSize:
		v.Mint, _ = token.DecodeMint(acc)
	case acc.Owner.Equals(escrow.ProgramID):
		var r escrow.Record
		if err := r.Unmarshal(acc.Data); err == nil {
			v.Escrow = &r
		}
	}
	return v
}

func cmdAccount(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print the committed state of an account. Holding accounts, mints and escrow
records are decoded.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Ledger directory. You can use SWAPCLI_HOME environment variable to set it.")
		addressFl = flAddress(fl, "address", "", "Address of the account.")
	)
	fl.Parse(args)

	if err := requireAddresses(map[string]*vaultswap.Address{"address": addressFl}); err != nil {
		return err
	}
	n, err := openNode(*homeFl, log.NewNopLogger())
	if err != nil {
		return err
	}
	defer n.close()

	acc, err := n.ledger.Account(*addressFl)
	if err != nil {
		return fmt.Errorf("cannot load account: %s", err)
	}
	return writeJSON(output, newAccountView(*addressFl, acc))
}

func cmdList(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
List all open escrows, optionally only those of a single maker.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Ledger directory. You can use SWAPCLI_HOME environment variable to set it.")
		programFl = flAddress(fl, "program", escrow.ProgramID.String(), "Escrow program address.")
		makerFl   = flAddress(fl, "maker", "", "Only list escrows of this maker.")
	)
	fl.Parse(args)

	n, err := openNode(*homeFl, log.NewNopLogger())
	if err != nil {
		return err
	}
	defer n.close()

	open, err := escrow.ListEscrows(n.ledger, *programFl, *makerFl)
	if err != nil {
		return fmt.Errorf("cannot list escrows: %s", err)
	}
	if open == nil {
		open = []escrow.Open{}
	}
	return writeJSON(output, open)
}
