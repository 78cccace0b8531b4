package escrow

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/vaultswap/vaultswap"
	"github.com/vaultswap/vaultswap/errors"
)

// ProgramID is the address the escrow program is deployed at.
var ProgramID = solana.MustPublicKeyFromBase58("9bZqvx6qwmPdHeLZ2raZszCLCb1BYij2mGXLSndGfe1F")

type handler interface {
	handle(ctx vaultswap.Context, program vaultswap.Address, accounts []*vaultswap.AccountInfo, msg Msg) error
}

// Program dispatches escrow instructions to their handlers. Every tag
// has exactly one handler.
type Program struct {
	routes map[Tag]handler
}

var _ vaultswap.Program = (*Program)(nil)

// NewProgram returns the escrow program with all handlers registered.
func NewProgram() *Program {
	p := &Program{routes: make(map[Tag]handler)}
	p.handle(TagOpen, OpenHandler{})
	p.handle(TagSettle, SettleHandler{})
	p.handle(TagCancel, CancelHandler{})
	return p
}

// handle registers the handler of a tag. Registering a tag twice is a
// programming error.
func (p *Program) handle(tag Tag, h handler) {
	if _, ok := p.routes[tag]; ok {
		panic(fmt.Sprintf("re-registering route: %s", tag))
	}
	p.routes[tag] = h
}

// Process decodes the instruction and runs its handler.
func (p *Program) Process(ctx vaultswap.Context, program vaultswap.Address, accounts []*vaultswap.AccountInfo, data []byte) error {
	msg, err := Unmarshal(data)
	if err != nil {
		return err
	}
	h, ok := p.routes[msg.Tag()]
	if !ok {
		return errors.Wrapf(errors.ErrMalformedPayload, "no handler for %s", msg.Tag())
	}
	ctx = vaultswap.WithLogInfo(ctx, "program", "escrow", "instruction", msg.Tag().String())
	return h.handle(ctx, program, accounts, msg)
}
