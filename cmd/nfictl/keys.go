package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/nfidao/nfi-smart-contract/cmd/internal/passphrase"
	"github.com/nfidao/nfi-smart-contract/crypto"
)

func runKeygen(args []string) error {
	fs := flag.NewFlagSet("keygen", flag.ExitOnError)
	keystorePath := fs.String("keystore", defaultKeystore, "Output path for the keystore file")
	passEnv := fs.String("pass-env", defaultPassEnv, "Environment variable containing the keystore passphrase")
	light := fs.Bool("light", false, "Use light scrypt parameters (testing only)")
	force := fs.Bool("force", false, "Overwrite an existing keystore file")
	fs.Parse(args)

	if !*force {
		if _, err := os.Stat(*keystorePath); err == nil {
			return fmt.Errorf("keystore file %s already exists (use --force to overwrite)", *keystorePath)
		} else if !os.IsNotExist(err) {
			return err
		}
	}
	pass, err := passphrase.NewSource(*passEnv).WithConfirmation().Get()
	if err != nil {
		return err
	}
	params := crypto.StandardKeystore
	if *light {
		params = crypto.LightKeystore
	}
	addr, err := generateKeystore(*keystorePath, pass, params)
	if err != nil {
		return err
	}
	fmt.Printf("Keystore written to %s\n", *keystorePath)
	printAddress(addr)
	return nil
}

func runAddress(args []string) error {
	fs := flag.NewFlagSet("address", flag.ExitOnError)
	keystorePath := fs.String("keystore", defaultKeystore, "Path to the keystore file")
	passEnv := fs.String("pass-env", defaultPassEnv, "Environment variable containing the keystore passphrase")
	fs.Parse(args)

	key, err := loadKey(*keystorePath, *passEnv)
	if err != nil {
		return err
	}
	printAddress(key.PubKey().Address())
	return nil
}

func generateKeystore(path, pass string, params crypto.KeystoreParams) (crypto.Address, error) {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return crypto.Address{}, fmt.Errorf("generate key: %w", err)
	}
	if err := crypto.SaveToKeystore(path, key, pass, params); err != nil {
		return crypto.Address{}, fmt.Errorf("write keystore: %w", err)
	}
	return key.PubKey().Address(), nil
}

func loadKey(path, passEnv string) (*crypto.PrivateKey, error) {
	pass, err := passphrase.NewSource(passEnv).Get()
	if err != nil {
		return nil, err
	}
	key, err := crypto.LoadFromKeystore(path, pass)
	if err != nil {
		return nil, fmt.Errorf("open keystore %s: %w", path, err)
	}
	return key, nil
}

func printAddress(addr crypto.Address) {
	fmt.Printf("Address: %s\n", addr.Hex())
	fmt.Printf("Bech32:  %s\n", addr.String())
}
