package runtime

import (
	"bytes"
	"math/bits"

	"github.com/gagliardetto/solana-go"
	"github.com/vaultswap/vaultswap"
	"github.com/vaultswap/vaultswap/errors"
)

// txState holds the accounts of a transaction while it executes. All
// frames share the same *vaultswap.Account instances.
type txState struct {
	ledger   *Ledger
	accounts map[vaultswap.Address]*vaultswap.Account
	original map[vaultswap.Address]*vaultswap.Account
	signers  map[vaultswap.Address]bool
}

// frame is a single program call. It implements vaultswap.Invoker for the
// program it runs.
type frame struct {
	state    *txState
	program  vaultswap.Address
	depth    int
	infos    []*vaultswap.AccountInfo
	writable map[vaultswap.Address]bool
	signers  map[vaultswap.Address]bool

	// pre is the state of every account at the time the program was
	// last accountable for its changes.
	pre map[vaultswap.Address]*vaultswap.Account
}

var _ vaultswap.Invoker = (*frame)(nil)

// execute runs ix as a top level instruction, when caller is nil, or as a
// call made by caller. grants holds the derived addresses caller signs
// for.
func (s *txState) execute(ctx vaultswap.Context, ix solana.Instruction, caller *frame, grants map[vaultswap.Address]bool) (err error) {
	depth := 1
	if caller != nil {
		depth = caller.depth + 1
	}
	if depth > MaxInvokeDepth {
		return errors.Wrapf(errors.ErrInput, "invocation depth %d exceeds %d", depth, MaxInvokeDepth)
	}

	id := ix.ProgramID()
	d, ok := s.ledger.programs[id]
	if !ok {
		return errors.Wrapf(errors.ErrUnknownProgram, "%s", id)
	}
	defer func() {
		s.ledger.metrics.instructions.WithLabelValues(d.name, resultLabel(err)).Inc()
	}()

	data, err := ix.Data()
	if err != nil {
		return errors.Wrap(errors.ErrMalformedPayload, err.Error())
	}

	f := &frame{
		state:    s,
		program:  id,
		depth:    depth,
		writable: make(map[vaultswap.Address]bool),
		signers:  make(map[vaultswap.Address]bool),
	}
	for _, m := range ix.Accounts() {
		key := m.PublicKey
		acc, ok := s.accounts[key]
		if !ok {
			return errors.Wrapf(errors.ErrNotFound, "account %s is not declared by the transaction", key)
		}
		if caller == nil {
			if m.IsSigner && !s.signers[key] {
				return errors.Wrapf(errors.ErrUnauthorized, "%s did not sign", key)
			}
		} else {
			if !caller.has(key) {
				return errors.Wrapf(errors.ErrInput, "account %s was not passed to %s", key, caller.program)
			}
			if m.IsSigner && !caller.signers[key] && !grants[key] {
				return errors.Wrapf(errors.ErrUnauthorized, "%s cannot sign for %s", caller.program, key)
			}
			if m.IsWritable && !caller.writable[key] {
				return errors.Wrapf(errors.ErrReadonly, "account %s is not writable", key)
			}
		}
		if m.IsSigner {
			f.signers[key] = true
		}
		if m.IsWritable {
			f.writable[key] = true
		}
		f.infos = append(f.infos, &vaultswap.AccountInfo{
			Key:        key,
			IsSigner:   m.IsSigner,
			IsWritable: m.IsWritable,
			Account:    acc,
		})
	}
	f.snapshot()

	vaultswap.GetLogger(ctx).Debug("invoke", "program", d.name, "depth", depth)
	ctx = vaultswap.WithInvoker(ctx, f)
	if err := f.process(ctx, d.program, data); err != nil {
		return err
	}
	return f.verify()
}

func (f *frame) process(ctx vaultswap.Context, p vaultswap.Program, data []byte) (err error) {
	defer errors.Recover(&err)
	return p.Process(ctx, f.program, f.infos, data)
}

// Invoke executes a nested instruction on behalf of the program running
// in this frame.
func (f *frame) Invoke(ctx vaultswap.Context, ix solana.Instruction, signers ...vaultswap.SignerSeeds) error {
	grants := make(map[vaultswap.Address]bool, len(signers))
	for _, s := range signers {
		addr, err := s.Address(f.program)
		if err != nil {
			return err
		}
		grants[addr] = true
	}

	// The caller is accountable for what it changed so far, the callee
	// verifies its own changes.
	if err := f.verify(); err != nil {
		return err
	}
	err := f.state.execute(ctx, ix, f, grants)
	f.snapshot()
	return err
}

func (f *frame) has(key vaultswap.Address) bool {
	_, ok := f.pre[key]
	return ok
}

func (f *frame) snapshot() {
	f.pre = make(map[vaultswap.Address]*vaultswap.Account, len(f.infos))
	for _, info := range f.infos {
		f.pre[info.Key] = info.Account.Clone()
	}
}

// verify ensures the program changed only what it was allowed to since
// the last snapshot.
func (f *frame) verify() error {
	var before, after uint128
	for key, pre := range f.pre {
		post := f.state.accounts[key]
		before = before.add(pre.Lamports)
		after = after.add(post.Lamports)
		if pre.Equals(post) {
			continue
		}

		if !f.writable[key] {
			return errors.Wrapf(errors.ErrReadonly, "%s modified read only account %s", f.program, key)
		}
		if pre.Executable != post.Executable {
			return errors.Wrapf(errors.ErrReadonly, "%s changed executable flag of %s", f.program, key)
		}
		owned := pre.Owner.Equals(f.program)
		if !pre.Owner.Equals(post.Owner) {
			if !owned {
				return errors.Wrapf(errors.ErrIllegalOwner, "%s reassigned %s owned by %s", f.program, key, pre.Owner)
			}
			if !isZeroed(post.Data) {
				return errors.Wrapf(errors.ErrIllegalOwner, "%s reassigned %s without clearing its data", f.program, key)
			}
		}
		if !owned && !bytes.Equal(pre.Data, post.Data) {
			return errors.Wrapf(errors.ErrReadonly, "%s changed data of %s owned by %s", f.program, key, pre.Owner)
		}
		if !owned && post.Lamports < pre.Lamports {
			return errors.Wrapf(errors.ErrReadonly, "%s debited %s owned by %s", f.program, key, pre.Owner)
		}
	}
	if before != after {
		return errors.Wrapf(errors.ErrReadonly, "%s did not preserve the lamport total", f.program)
	}
	return nil
}

func isZeroed(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}

// uint128 sums lamports without overflowing.
type uint128 struct {
	hi, lo uint64
}

func (u uint128) add(v uint64) uint128 {
	lo, carry := bits.Add64(u.lo, v, 0)
	return uint128{hi: u.hi + carry, lo: lo}
}
