package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/vaultswap/vaultswap/runtime"
	"github.com/vaultswap/vaultswap/x/escrow"
)

func TestCmdTransactionView(t *testing.T) {
	maker := solana.NewWallet().PrivateKey
	ix, err := escrow.NewOpenInstruction(escrow.OpenParams{
		Program:       escrow.ProgramID,
		Maker:         maker.PublicKey(),
		AssetA:        solana.NewWallet().PublicKey(),
		AssetB:        solana.NewWallet().PublicKey(),
		MakerAssetA:   solana.NewWallet().PublicKey(),
		Salt:          1337,
		DepositAmount: 100000,
		ReceiveAmount: 100000,
	})
	if err != nil {
		t.Fatalf("cannot create instruction: %s", err)
	}
	tx := runtime.NewTransaction(5, ix)
	if err := tx.Sign(maker); err != nil {
		t.Fatalf("cannot sign: %s", err)
	}
	var input bytes.Buffer
	if _, err := writeTx(&input, tx); err != nil {
		t.Fatalf("cannot marshal transaction: %s", err)
	}

	var output bytes.Buffer
	if err := cmdTransactionView(&input, &output, nil); err != nil {
		t.Fatalf("cannot view a transaction: %s", err)
	}

	var got struct {
		Nonce        uint64
		Signers      []string
		Instructions []struct {
			Program  string
			Accounts []struct{ Address string }
			Data     string
			Msg      map[string]uint64
			Error    string
		}
	}
	if err := json.Unmarshal(output.Bytes(), &got); err != nil {
		t.Fatalf("cannot decode view: %s\n%s", err, output.String())
	}
	if got.Nonce != 5 || len(got.Signers) != 1 || got.Signers[0] != maker.PublicKey().String() {
		t.Fatalf("unexpected transaction view: %s", output.String())
	}
	if len(got.Instructions) != 1 {
		t.Fatalf("unexpected instructions: %s", output.String())
	}
	view := got.Instructions[0]
	if view.Program != "escrow" || len(view.Accounts) != 8 || view.Error != "" {
		t.Fatalf("unexpected instruction view: %s", output.String())
	}
	want := map[string]uint64{"Salt": 1337, "DepositAmount": 100000, "ReceiveAmount": 100000}
	for k, v := range want {
		if view.Msg[k] != v {
			t.Errorf("%s: want %d, got %d", k, v, view.Msg[k])
		}
	}
}

func TestCmdTransactionViewNoInput(t *testing.T) {
	if err := cmdTransactionView(&bytes.Buffer{}, &bytes.Buffer{}, nil); err == nil {
		t.Fatal("empty input accepted")
	}
}
