package main

import (
	"fmt"
	"os"
)

const (
	defaultPassEnv  = "NFI_SIGNER_PASS"
	defaultConfig   = "./config.toml"
	defaultKeystore = "signer.keystore"
)

type command struct {
	name    string
	summary string
	run     func(args []string) error
}

var commands = []command{
	{"keygen", "generate a signer key into an encrypted keystore", runKeygen},
	{"address", "print the address held by a keystore", runAddress},
	{"digest", "print the mint authorization digest for a request", runDigest},
	{"sign-mint", "sign a mint request and print the API request body", runSignMint},
	{"token", "issue an API bearer token for a caller", runToken},
	{"export-settlements", "write archived mint settlements to a parquet file", runExportSettlements},
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	for _, cmd := range commands {
		if cmd.name != os.Args[1] {
			continue
		}
		if err := cmd.run(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	usage()
	os.Exit(1)
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: nfictl <command> [flags]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(os.Stderr, "  %-20s %s\n", cmd.name, cmd.summary)
	}
}
