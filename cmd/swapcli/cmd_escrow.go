package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/tendermint/tendermint/libs/log"
	"github.com/vaultswap/vaultswap"
	"github.com/vaultswap/vaultswap/runtime"
	"github.com/vaultswap/vaultswap/x/escrow"
)

func cmdOpenEscrow(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction opening an escrow. The maker deposits an amount of asset A
and asks for an amount of asset B in exchange. The escrow and vault addresses
are derived from the maker and the salt.
`)
		fl.PrintDefaults()
	}
	var (
		programFl = flAddress(fl, "program", escrow.ProgramID.String(), "Escrow program address.")
		makerFl   = flAddress(fl, "maker", "", "Address of the maker, who must sign the transaction.")
		assetAFl  = flAddress(fl, "asset-a", "", "Mint of the deposited asset.")
		assetBFl  = flAddress(fl, "asset-b", "", "Mint of the asset asked for.")
		fromFl    = flAddress(fl, "from", "", "Holding account of asset A the deposit is taken from.")
		saltFl    = fl.Uint64("salt", uint64(time.Now().UnixNano()), "Salt distinguishing escrows of the same maker.")
		depositFl = fl.Uint64("deposit", 0, "Amount of asset A moved into the vault.")
		receiveFl = fl.Uint64("receive", 0, "Amount of asset B the maker receives on settlement.")
		nonceFl   = fl.Uint64("nonce", uint64(time.Now().UnixNano()), "Transaction nonce.")
	)
	fl.Parse(args)

	if err := requireAddresses(map[string]*vaultswap.Address{
		"maker":   makerFl,
		"asset-a": assetAFl,
		"asset-b": assetBFl,
		"from":    fromFl,
	}); err != nil {
		return err
	}

	ix, err := escrow.NewOpenInstruction(escrow.OpenParams{
		Program:       *programFl,
		Maker:         *makerFl,
		AssetA:        *assetAFl,
		AssetB:        *assetBFl,
		MakerAssetA:   *fromFl,
		Salt:          *saltFl,
		DepositAmount: *depositFl,
		ReceiveAmount: *receiveFl,
	})
	if err != nil {
		return fmt.Errorf("cannot create instruction: %s", err)
	}
	_, err = writeTx(output, runtime.NewTransaction(*nonceFl, ix))
	return err
}

func cmdSettleEscrow(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction settling an open escrow. The taker receives the vault
content and pays the receive amount to the maker. The escrow record is read
from the ledger.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Ledger directory. You can use SWAPCLI_HOME environment variable to set it.")
		programFl = flAddress(fl, "program", escrow.ProgramID.String(), "Escrow program address.")
		escrowFl  = flAddress(fl, "escrow", "", "Address of the escrow record.")
		takerFl   = flAddress(fl, "taker", "", "Address of the taker, who must sign the transaction.")
		takerAFl  = flAddress(fl, "taker-a", "", "Holding account of asset A receiving the vault content.")
		takerBFl  = flAddress(fl, "taker-b", "", "Holding account of asset B paying the maker.")
		makerBFl  = flAddress(fl, "maker-b", "", "Holding account of asset B of the maker.")
		nonceFl   = fl.Uint64("nonce", uint64(time.Now().UnixNano()), "Transaction nonce.")
	)
	fl.Parse(args)

	if err := requireAddresses(map[string]*vaultswap.Address{
		"escrow":  escrowFl,
		"taker":   takerFl,
		"taker-a": takerAFl,
		"taker-b": takerBFl,
		"maker-b": makerBFl,
	}); err != nil {
		return err
	}
	record, err := readRecord(*homeFl, *programFl, *escrowFl)
	if err != nil {
		return err
	}

	ix, err := escrow.NewSettleInstruction(record, escrow.SettleParams{
		Program:     *programFl,
		Escrow:      *escrowFl,
		Taker:       *takerFl,
		TakerAssetA: *takerAFl,
		TakerAssetB: *takerBFl,
		MakerAssetB: *makerBFl,
	})
	if err != nil {
		return fmt.Errorf("cannot create instruction: %s", err)
	}
	_, err = writeTx(output, runtime.NewTransaction(*nonceFl, ix))
	return err
}

func cmdCancelEscrow(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction cancelling an open escrow. The vault content is returned
to the maker, who must sign the transaction. The escrow record is read from the
ledger.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Ledger directory. You can use SWAPCLI_HOME environment variable to set it.")
		programFl = flAddress(fl, "program", escrow.ProgramID.String(), "Escrow program address.")
		escrowFl  = flAddress(fl, "escrow", "", "Address of the escrow record.")
		toFl      = flAddress(fl, "to", "", "Holding account of asset A of the maker receiving the refund.")
		nonceFl   = fl.Uint64("nonce", uint64(time.Now().UnixNano()), "Transaction nonce.")
	)
	fl.Parse(args)

	if err := requireAddresses(map[string]*vaultswap.Address{
		"escrow": escrowFl,
		"to":     toFl,
	}); err != nil {
		return err
	}
	record, err := readRecord(*homeFl, *programFl, *escrowFl)
	if err != nil {
		return err
	}

	ix, err := escrow.NewCancelInstruction(record, escrow.CancelParams{
		Program:     *programFl,
		Escrow:      *escrowFl,
		MakerAssetA: *toFl,
	})
	if err != nil {
		return fmt.Errorf("cannot create instruction: %s", err)
	}
	_, err = writeTx(output, runtime.NewTransaction(*nonceFl, ix))
	return err
}

func readRecord(home string, program, addr vaultswap.Address) (*escrow.Record, error) {
	n, err := openNode(home, log.NewNopLogger())
	if err != nil {
		return nil, err
	}
	defer n.close()

	record, err := escrow.GetRecord(n.ledger, program, addr)
	if err != nil {
		return nil, fmt.Errorf("cannot load escrow %s: %s", addr, err)
	}
	return record, nil
}

func cmdDerive(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print the escrow record and vault addresses of a maker and salt, together with
their bump values.
`)
		fl.PrintDefaults()
	}
	var (
		programFl = flAddress(fl, "program", escrow.ProgramID.String(), "Escrow program address.")
		makerFl   = flAddress(fl, "maker", "", "Address of the maker.")
		saltFl    = fl.Uint64("salt", 0, "Salt of the escrow.")
	)
	fl.Parse(args)

	if makerFl.IsZero() {
		return errors.New("-maker is required")
	}
	e, err := escrow.FindEscrowAddress(*programFl, *makerFl, *saltFl)
	if err != nil {
		return fmt.Errorf("cannot derive escrow address: %s", err)
	}
	v, err := escrow.FindVaultAddress(*programFl, e.Address)
	if err != nil {
		return fmt.Errorf("cannot derive vault address: %s", err)
	}
	fmt.Fprintf(output, "escrow\t%s\t%d\n", e.Address, e.Bump)
	_, err = fmt.Fprintf(output, "vault\t%s\t%d\n", v.Address, v.Bump)
	return err
}
