package runtime

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/vaultswap/vaultswap"
	"github.com/vaultswap/vaultswap/errors"
	"github.com/vaultswap/vaultswap/x/system"
)

// MaxInvokeDepth is the longest chain of program calls. A transaction
// instruction has depth 1.
const MaxInvokeDepth = 4

// Store is the state the ledger executes transactions against.
// store.MemStore and iavl.CommitStore both implement it.
type Store interface {
	CacheWrap() vaultswap.KVCacheWrap
}

// KeyedAccount is an account together with its address.
type KeyedAccount struct {
	Key vaultswap.Address
	*vaultswap.Account
}

type deployment struct {
	name    string
	program vaultswap.Program
}

// Ledger executes transactions. It is safe for concurrent use once all
// programs are deployed.
type Ledger struct {
	// mu guards db. It is held only while accounts are loaded or
	// committed, never while programs run.
	mu sync.Mutex
	db Store

	programs map[vaultswap.Address]deployment
	locks    *lockTable
	logger   log.Logger
	metrics  *metrics
}

// NewLedger returns a ledger without any programs deployed.
func NewLedger(db Store) *Ledger {
	return &Ledger{
		db:       db,
		programs: make(map[vaultswap.Address]deployment),
		locks:    newLockTable(),
		logger:   log.NewNopLogger(),
		metrics:  newMetrics(),
	}
}

// WithLogger sets the logger used by the ledger and passed to programs.
func (l *Ledger) WithLogger(logger log.Logger) *Ledger {
	l.logger = logger.With("module", "runtime")
	return l
}

// Deploy makes a program available at given address. Deploy must not be
// called concurrently with Execute.
func (l *Ledger) Deploy(name string, id vaultswap.Address, p vaultswap.Program) error {
	if _, ok := l.programs[id]; ok {
		return errors.Wrapf(errors.ErrAlreadyInUse, "program %s", id)
	}
	l.programs[id] = deployment{name: name, program: p}
	return nil
}

// Metrics returns the gatherer of all ledger metrics.
func (l *Ledger) Metrics() prometheus.Gatherer {
	return l.metrics.registry
}

// Execute runs all instructions of the transaction. Either all account
// changes are committed or none.
func (l *Ledger) Execute(ctx context.Context, tx *Transaction) (err error) {
	defer func() {
		l.metrics.transactions.WithLabelValues(resultLabel(err)).Inc()
	}()

	signers, _, err := tx.verify()
	if err != nil {
		return err
	}
	id, err := tx.ID()
	if err != nil {
		return err
	}

	writes, reads := accessLists(tx)
	l.locks.acquire(writes, reads)
	defer l.locks.release(writes, reads)

	state, rent, err := l.load(id, append(append([]vaultswap.Address(nil), writes...), reads...))
	if err != nil {
		return err
	}
	state.signers = signers

	ctx = vaultswap.WithTxID(ctx, id)
	ctx = vaultswap.WithLogger(ctx, l.logger.With("tx", id))
	ctx = vaultswap.WithRent(ctx, rent)
	logger := vaultswap.GetLogger(ctx)

	for i, ix := range tx.Instructions {
		if err := state.execute(ctx, ix, nil, nil); err != nil {
			logger.Debug("transaction aborted", "instruction", i, "err", err)
			return errors.Wrapf(err, "instruction #%d", i)
		}
	}
	if err := l.commit(id, state, rent); err != nil {
		return err
	}
	logger.Debug("transaction committed", "instructions", len(tx.Instructions))
	return nil
}

// accessLists returns the writable and read only accounts of the
// transaction, each sorted.
func accessLists(tx *Transaction) (writes, reads []vaultswap.Address) {
	writable := make(map[vaultswap.Address]bool)
	for _, ix := range tx.Instructions {
		for _, m := range ix.Accounts() {
			writable[m.PublicKey] = writable[m.PublicKey] || m.IsWritable
		}
	}
	for key, w := range writable {
		if w {
			writes = append(writes, key)
		} else {
			reads = append(reads, key)
		}
	}
	sortAddresses(writes)
	sortAddresses(reads)
	return writes, reads
}

func sortAddresses(addrs []vaultswap.Address) {
	sort.Slice(addrs, func(i, j int) bool {
		return bytes.Compare(addrs[i][:], addrs[j][:]) < 0
	})
}

var txKeyPrefix = []byte("tx:")

func txKey(id string) []byte {
	return append(append([]byte(nil), txKeyPrefix...), id...)
}

func (l *Ledger) load(id string, keys []vaultswap.Address) (*txState, vaultswap.Rent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	db := l.db.CacheWrap()
	defer db.Discard()

	switch done, err := db.Has(txKey(id)); {
	case err != nil:
		return nil, vaultswap.Rent{}, errors.Wrap(err, "transaction index")
	case done:
		return nil, vaultswap.Rent{}, errors.Wrapf(errors.ErrAlreadyInUse, "transaction %s already executed", id)
	}

	rent, err := system.LoadRent(db)
	if err != nil {
		return nil, vaultswap.Rent{}, err
	}

	state := &txState{
		ledger:   l,
		accounts: make(map[vaultswap.Address]*vaultswap.Account, len(keys)),
		original: make(map[vaultswap.Address]*vaultswap.Account, len(keys)),
	}
	for _, key := range keys {
		acc, err := vaultswap.LoadAccount(db, key)
		if err != nil {
			return nil, vaultswap.Rent{}, err
		}
		state.accounts[key] = acc
		state.original[key] = acc.Clone()
	}
	return state, rent, nil
}

func (l *Ledger) commit(id string, state *txState, rent vaultswap.Rent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	db := l.db.CacheWrap()
	for key, acc := range state.accounts {
		if acc.Equals(state.original[key]) {
			continue
		}
		if acc.Lamports > 0 && len(acc.Data) > 0 && !rent.IsExempt(acc.Lamports, len(acc.Data)) {
			db.Discard()
			return errors.Wrapf(errors.ErrInsufficientBalance,
				"account %s holds %d lamports, rent exemption requires %d",
				key, acc.Lamports, rent.MinimumBalance(len(acc.Data)))
		}
		if err := vaultswap.SaveAccount(db, key, acc); err != nil {
			db.Discard()
			return err
		}
	}
	if err := db.Set(txKey(id), []byte{1}); err != nil {
		db.Discard()
		return errors.Wrap(err, "transaction index")
	}
	return db.Write()
}

// Account returns the committed state of the account at given address.
// Nonexistent accounts are returned empty and owned by the system
// allocator.
func (l *Ledger) Account(addr vaultswap.Address) (*vaultswap.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	db := l.db.CacheWrap()
	defer db.Discard()
	return vaultswap.LoadAccount(db, addr)
}

// SetAccount overwrites the account at given address, bypassing all
// programs. It is meant for genesis tooling and tests.
func (l *Ledger) SetAccount(addr vaultswap.Address, acc *vaultswap.Account) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	db := l.db.CacheWrap()
	if err := vaultswap.SaveAccount(db, addr, acc); err != nil {
		db.Discard()
		return err
	}
	return db.Write()
}

// ProgramAccounts returns all accounts owned by given program, ordered by
// address.
func (l *Ledger) ProgramAccounts(owner vaultswap.Address) ([]KeyedAccount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	db := l.db.CacheWrap()
	defer db.Discard()

	start, end := vaultswap.AccountKeyRange()
	it, err := db.Iterator(start, end)
	if err != nil {
		return nil, errors.Wrap(err, "iterator")
	}
	defer it.Close()

	var res []KeyedAccount
	for ; it.Valid(); it.Next() {
		var acc vaultswap.Account
		if err := acc.Unmarshal(it.Value()); err != nil {
			return nil, err
		}
		if !acc.Owner.Equals(owner) {
			continue
		}
		key := it.Key()[len(start):]
		res = append(res, KeyedAccount{
			Key:     vaultswap.Address(copyKey(key)),
			Account: &acc,
		})
	}
	return res, nil
}

func copyKey(b []byte) [vaultswap.AddressLength]byte {
	var k [vaultswap.AddressLength]byte
	copy(k[:], b)
	return k
}

// InitGenesis loads the genesis state through given initializer.
func (l *Ledger) InitGenesis(opts vaultswap.Options, init vaultswap.Initializer) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	db := l.db.CacheWrap()
	if err := init.FromGenesis(opts, db); err != nil {
		db.Discard()
		return errors.Wrap(err, "genesis")
	}
	return db.Write()
}
