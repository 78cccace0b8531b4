package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/vaultswap/vaultswap"
	"github.com/vaultswap/vaultswap/x/system"
	"github.com/vaultswap/vaultswap/x/token"
)

func cmdInit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a new ledger from a genesis file.

The genesis file is a JSON document with one section per extension:
"system" lists funded wallets, "token" lists mints and holding accounts and
"conf" holds the configuration of each extension. This command fails if the
ledger was already initialized.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Ledger directory. You can use SWAPCLI_HOME environment variable to set it.")
		genesisFl  = fl.String("genesis", "", "Path to the genesis file.")
		logLevelFl = fl.String("log-level", "info", "Log level: debug, info, error or none.")
	)
	fl.Parse(args)

	if *genesisFl == "" {
		return errors.New("genesis file is required")
	}
	raw, err := ioutil.ReadFile(*genesisFl)
	if err != nil {
		return fmt.Errorf("cannot read genesis file: %s", err)
	}
	var opts vaultswap.Options
	if err := json.Unmarshal(raw, &opts); err != nil {
		return fmt.Errorf("cannot parse genesis file: %s", err)
	}

	logger, err := newLogger(os.Stderr, *logLevelFl)
	if err != nil {
		return err
	}
	n, err := openNode(*homeFl, logger)
	if err != nil {
		return err
	}
	defer n.close()

	if latest, err := n.store.LatestVersion(); err != nil {
		return fmt.Errorf("cannot read latest version: %s", err)
	} else if latest.Version != 0 {
		return fmt.Errorf("ledger in %q is already initialized at version %d", *homeFl, latest.Version)
	}

	genesis := vaultswap.ChainInitializers(&system.Initializer{}, &token.Initializer{})
	if err := n.ledger.InitGenesis(opts, genesis); err != nil {
		return fmt.Errorf("cannot load genesis: %s", err)
	}
	id, err := n.commit()
	if err != nil {
		return fmt.Errorf("cannot commit: %s", err)
	}
	_, err = fmt.Fprintf(output, "%d %X\n", id.Version, id.Hash)
	return err
}
