package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/vaultswap/vaultswap"
)

// commands is a register of all availables commands that can be executed by
// this program. The name is used to match with the first argument given.
//
// A command function is given stdin, stdout and the command line arguments
// without the program and command name. It parses its own flags and reads
// and writes only the provided input and output.
//
// Instruction builders write an unsigned transaction. Signing and execution
// are separate commands and are combined with a unix pipe:
//
//	$ swapcli open -maker $MAKER -asset-a $A -asset-b $B -from $MA \
//	    -deposit 100 -receive 250 \
//	    | swapcli sign -key maker.key \
//	    | swapcli exec
var commands = map[string]func(input io.Reader, output io.Writer, args []string) error{
	"account": cmdAccount,
	"cancel":  cmdCancelEscrow,
	"derive":  cmdDerive,
	"exec":    cmdExec,
	"init":    cmdInit,
	"keyaddr": cmdKeyaddr,
	"keygen":  cmdKeygen,
	"list":    cmdList,
	"open":    cmdOpenEscrow,
	"settle":  cmdSettleEscrow,
	"sign":    cmdSignTransaction,
	"version": cmdVersion,
	"view":    cmdTransactionView,
}

func main() {
	if len(os.Args) == 1 {
		fmt.Fprintf(os.Stderr, "%s is a command line client for the vaultswap ledger.\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s <command> [<flags>]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		fmt.Fprintf(os.Stderr, "Run '%s <command> -help' to learn more about each command.\n", os.Args[0])
		os.Exit(2)
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		os.Exit(2)
	}

	if err := run(os.Stdin, os.Stdout, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func availableCmds() []string {
	available := make([]string, 0, len(commands))
	for name := range commands {
		available = append(available, name)
	}
	sort.Strings(available)
	return available
}

func cmdVersion(in io.Reader, out io.Writer, args []string) error {
	_, err := fmt.Fprintln(out, vaultswap.Version())
	return err
}
