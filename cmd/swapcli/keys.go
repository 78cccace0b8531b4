package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"strings"

	"github.com/gagliardetto/solana-go"
	"golang.org/x/crypto/ed25519"
)

// keyPerm is the file permissions for saved private keys.
const keyPerm = 0600

// loadPrivateKey reads a private key file written by savePrivateKey.
func loadPrivateKey(filename string) (solana.PrivateKey, error) {
	raw, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	key, err := solana.PrivateKeyFromBase58(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("cannot decode private key: %s", err)
	}
	if len(key) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key length: %d", len(key))
	}
	return key, nil
}

// savePrivateKey writes the base58 encoded private key to the named file.
// It refuses to overwrite an existing file.
func savePrivateKey(key solana.PrivateKey, filename string) error {
	if _, err := os.Stat(filename); !os.IsNotExist(err) {
		// Do not allow to overwrite already existing private key. User
		// must manually delete it first to ensure we do not delete
		// such crucial data by an accident (bad command usage).
		return fmt.Errorf("private key file %q already exists, delete this file and try again", filename)
	}
	return ioutil.WriteFile(filename, []byte(key.String()), keyPerm)
}
