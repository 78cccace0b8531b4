package main

import (
	"os"
)

// env returns the value of an environment variable if provided (even if empty)
// or a fallback value.
func env(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}

// defaultHome is the ledger directory used when neither the -home flag
// nor the SWAPCLI_HOME variable is set.
func defaultHome() string {
	return env("SWAPCLI_HOME", os.Getenv("HOME")+"/.vaultswap")
}

// defaultKeyPath is the private key file used when neither the -key flag
// nor the SWAPCLI_PRIV_KEY variable is set.
func defaultKeyPath() string {
	return env("SWAPCLI_PRIV_KEY", os.Getenv("HOME")+"/.vaultswap.priv.key")
}
