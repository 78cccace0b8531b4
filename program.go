package vaultswap

import (
	"encoding/json"

	"github.com/gagliardetto/solana-go"
	"github.com/vaultswap/vaultswap/errors"
)

// Program processes instructions addressed to it. A program is given its
// own address, the accounts listed by the instruction in their declared
// order and the raw instruction data.
//
// Process runs to completion without suspension points. Any returned
// error aborts the whole transaction and discards all its writes, so a
// program never rolls back on its own.
type Program interface {
	Process(ctx Context, program Address, accounts []*AccountInfo, data []byte) error
}

// ProgramFunc adapts a function to the Program interface.
type ProgramFunc func(ctx Context, program Address, accounts []*AccountInfo, data []byte) error

// Process calls f.
func (f ProgramFunc) Process(ctx Context, program Address, accounts []*AccountInfo, data []byte) error {
	return f(ctx, program, accounts, data)
}

// Invoker executes a nested instruction on behalf of the running
// program. Accounts referenced by the instruction must have been passed
// to the running program. Signer status is granted to every signer of
// the running program and to every address the given signer seeds
// derive from the running program.
type Invoker interface {
	Invoke(ctx Context, ix solana.Instruction, signers ...SignerSeeds) error
}

// Invoke executes a nested instruction using the invoker set in the
// context.
func Invoke(ctx Context, ix solana.Instruction, signers ...SignerSeeds) error {
	inv, ok := GetInvoker(ctx)
	if !ok {
		return errors.Wrap(errors.ErrHuman, "no invoker in context")
	}
	return inv.Invoke(ctx, ix, signers...)
}

// Options are the genesis options. Each extension can look up its key
// and parse the json as desired.
type Options map[string]json.RawMessage

// ReadOptions reads the values stored under a given key, and parses the
// json into the given obj. Returns an error if it cannot parse. Noop and
// no error if key is missing.
func (o Options) ReadOptions(key string, obj interface{}) error {
	msg := o[key]
	if len(msg) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg, obj); err != nil {
		return errors.Wrapf(errors.ErrInput, "genesis %q: %s", key, err)
	}
	return nil
}

// Initializer implementations are used to initialize extensions from
// genesis file contents.
type Initializer interface {
	FromGenesis(Options, KVStore) error
}

// ChainInitializers returns an initializer that calls all given
// initializers in order.
func ChainInitializers(inits ...Initializer) Initializer {
	return chainInitializer(inits)
}

type chainInitializer []Initializer

func (c chainInitializer) FromGenesis(opts Options, db KVStore) error {
	for _, in := range c {
		if err := in.FromGenesis(opts, db); err != nil {
			return err
		}
	}
	return nil
}
