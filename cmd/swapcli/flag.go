package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/vaultswap/vaultswap"
)

// flAddress returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided. This
// function follows Go's flag package convention.
// If given value cannot be deserialized to required type, process is
// terminated.
func flAddress(fl *flag.FlagSet, name, defaultVal, usage string) *vaultswap.Address {
	var a flagAddress
	if defaultVal != "" {
		if err := a.Set(defaultVal); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot parse %q address flag value. %s", name, err)
			os.Exit(2)
		}
	}
	fl.Var(&a, name, usage)
	return (*vaultswap.Address)(&a)
}

// flagAddress accepts any notation understood by vaultswap.ParseAddress.
type flagAddress vaultswap.Address

func (a flagAddress) String() string {
	return vaultswap.Address(a).String()
}

func (a *flagAddress) Set(raw string) error {
	addr, err := vaultswap.ParseAddress(raw)
	if err != nil {
		return err
	}
	*a = flagAddress(addr)
	return nil
}

// requireAddresses returns an error naming the first flag that was left
// unset.
func requireAddresses(flags map[string]*vaultswap.Address) error {
	for name, a := range flags {
		if a.IsZero() {
			return fmt.Errorf("-%s is required", name)
		}
	}
	return nil
}
