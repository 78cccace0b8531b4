package main

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tendermint/tendermint/libs/log"
	"github.com/vaultswap/vaultswap"
	"github.com/vaultswap/vaultswap/runtime"
	"github.com/vaultswap/vaultswap/store/iavl"
	"github.com/vaultswap/vaultswap/x/escrow"
	"github.com/vaultswap/vaultswap/x/system"
	"github.com/vaultswap/vaultswap/x/token"
	"github.com/vaultswap/vaultswap/x/vault"
)

// writeTx serializes the transaction. First bytes written contain the
// information how much space the transaction takes, so that transactions
// can be streamed.
func writeTx(w io.Writer, tx *runtime.Transaction) (int, error) {
	b, err := tx.Marshal()
	if err != nil {
		return 0, err
	}

	var size [txHeaderSize]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(b)))

	if n, err := w.Write(size[:]); err != nil {
		return n, err
	}
	if n, err := w.Write(b); err != nil {
		return n + txHeaderSize, err
	}
	return txHeaderSize + len(b), nil
}

func readTx(r io.Reader) (*runtime.Transaction, int, error) {
	// When serialized using writeTx function, first bytes contain
	// information about the actual size of the transaction message.
	var size [txHeaderSize]byte
	if n, err := io.ReadFull(r, size[:]); err != nil {
		return nil, n, err
	}
	msgSize := binary.BigEndian.Uint32(size[:])
	raw := make([]byte, msgSize)
	if n, err := io.ReadFull(r, raw); err != nil {
		return nil, n + txHeaderSize, err
	}

	var tx runtime.Transaction
	if err := tx.Unmarshal(raw); err != nil {
		return nil, int(msgSize + txHeaderSize), err
	}
	return &tx, int(msgSize + txHeaderSize), nil
}

const txHeaderSize = 4

// programs lists every program deployed on the ledger.
var programs = []struct {
	name    string
	id      vaultswap.Address
	program vaultswap.Program
}{
	{"system", system.ProgramID, system.NewProgram()},
	{"token", token.ProgramID, token.NewProgram()},
	{"escrow", escrow.ProgramID, escrow.NewProgram()},
	{"vault", vault.ProgramID, vault.NewProgram()},
}

func programName(id vaultswap.Address) string {
	for _, p := range programs {
		if p.id.Equals(id) {
			return p.name
		}
	}
	return id.String()
}

// node is a ledger backed by the iavl store in a home directory.
type node struct {
	store  *iavl.CommitStore
	ledger *runtime.Ledger
}

// openNode loads the latest committed state from home and deploys all
// programs. The node must be closed to release the database.
func openNode(home string, logger log.Logger) (*node, error) {
	db, err := iavl.NewCommitStore(home, "vaultswap")
	if err != nil {
		return nil, fmt.Errorf("cannot open store: %s", err)
	}
	if err := db.LoadLatestVersion(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot load state: %s", err)
	}
	l := runtime.NewLedger(db).WithLogger(logger)
	for _, p := range programs {
		if err := l.Deploy(p.name, p.id, p.program); err != nil {
			db.Close()
			return nil, fmt.Errorf("cannot deploy %s: %s", p.name, err)
		}
	}
	return &node{store: db, ledger: l}, nil
}

// commit persists all changes as a new version.
func (n *node) commit() (vaultswap.CommitID, error) {
	return n.store.Commit()
}

func (n *node) close() {
	n.store.Close()
}

// newLogger returns a logger writing to w, limited to given level.
func newLogger(w io.Writer, level string) (log.Logger, error) {
	allow, err := log.AllowLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewFilter(log.NewTMLogger(log.NewSyncWriter(w)), allow), nil
}

func writeJSON(output io.Writer, v interface{}) error {
	pretty, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return fmt.Errorf("cannot JSON serialize: %s", err)
	}
	_, err = fmt.Fprintln(output, string(pretty))
	return err
}
