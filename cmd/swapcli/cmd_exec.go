package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
)

func cmdExec(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Execute a signed transaction read from standard input against the ledger and
commit the result. The transaction identifier is written to standard output.
Either all instructions of the transaction succeed or the ledger is left
unchanged.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Ledger directory. You can use SWAPCLI_HOME environment variable to set it.")
		logLevelFl = fl.String("log-level", "info", "Log level: debug, info, error or none.")
	)
	fl.Parse(args)

	tx, _, err := readTx(input)
	if err != nil {
		return fmt.Errorf("cannot read transaction: %s", err)
	}
	id, err := tx.ID()
	if err != nil {
		return fmt.Errorf("cannot compute transaction id: %s", err)
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

	if err := n.ledger.Execute(context.Background(), tx); err != nil {
		return fmt.Errorf("transaction %s failed: %+v", id, err)
	}
	if _, err := n.commit(); err != nil {
		return fmt.Errorf("cannot commit: %s", err)
	}
	_, err = fmt.Fprintln(output, id)
	return err
}
