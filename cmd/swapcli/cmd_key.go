package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/gagliardetto/solana-go"
)

func cmdKeygen(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Generate a new private key.

When successful a new file with the base58 encoded private key is created and
the address of the key is printed. This command fails if the private key file
already exists.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file. You can use SWAPCLI_PRIV_KEY environment variable to set it.")
	)
	fl.Parse(args)

	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return fmt.Errorf("cannot generate ed25519 key: %s", err)
	}
	if err := savePrivateKey(key, *keyPathFl); err != nil {
		return err
	}
	_, err = fmt.Fprintln(output, key.PublicKey())
	return err
}

func cmdKeyaddr(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print out the address associated with your private key.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file. You can use SWAPCLI_PRIV_KEY environment variable to set it.")
	)
	fl.Parse(args)

	key, err := loadPrivateKey(*keyPathFl)
	if err != nil {
		return fmt.Errorf("cannot load private key: %s", err)
	}
	_, err = fmt.Fprintln(output, key.PublicKey())
	return err
}
