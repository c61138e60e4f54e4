package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"gopkg.in/yaml.v3"

	"github.com/nfidao/nfi-smart-contract/crypto"
	"github.com/nfidao/nfi-smart-contract/native/collection"
)

// mintFile is the YAML description of a mint to authorize.
type mintFile struct {
	Caller      string   `yaml:"caller"`
	Collection  string   `yaml:"collection"`
	Receiver    string   `yaml:"receiver"`
	URIs        []string `yaml:"uris"`
	FormulaType uint64   `yaml:"formulaType"`
	TotalCount  uint64   `yaml:"totalCount"`
	Value       string   `yaml:"value"`
}

// mintBody mirrors the JSON accepted by POST /v1/collections/{collection}/mint.
type mintBody struct {
	Receiver    string   `json:"receiver"`
	URIs        []string `json:"uris"`
	FormulaType uint64   `json:"formulaType"`
	TotalCount  uint64   `json:"totalCount"`
	Signature   string   `json:"signature"`
	Value       string   `json:"value,omitempty"`
}

type parsedMint struct {
	caller     [20]byte
	collection [20]byte
	receiver   [20]byte
	file       mintFile
}

func readMintFile(path string) (*parsedMint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file mintFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	out := &parsedMint{file: file}
	if out.caller, err = crypto.ParseAddress(file.Caller); err != nil {
		return nil, fmt.Errorf("caller: %w", err)
	}
	if out.collection, err = crypto.ParseAddress(file.Collection); err != nil {
		return nil, fmt.Errorf("collection: %w", err)
	}
	if file.Receiver == "" {
		out.receiver = out.caller
	} else if out.receiver, err = crypto.ParseAddress(file.Receiver); err != nil {
		return nil, fmt.Errorf("receiver: %w", err)
	}
	return out, nil
}

func (p *parsedMint) request() collection.MintRequest {
	return collection.MintRequest{
		Receiver:    p.receiver,
		URIs:        p.file.URIs,
		FormulaType: p.file.FormulaType,
		TotalCount:  p.file.TotalCount,
	}
}

func (p *parsedMint) digest() []byte {
	first := ""
	if len(p.file.URIs) > 0 {
		first = p.file.URIs[0]
	}
	return collection.MintDigest(p.caller, first, p.file.FormulaType, p.file.TotalCount, p.collection)
}

func signMint(key *crypto.PrivateKey, p *parsedMint) (*mintBody, error) {
	sig, err := collection.SignMint(key, p.caller, p.collection, p.request())
	if err != nil {
		return nil, err
	}
	return &mintBody{
		Receiver:    crypto.AddressFrom(crypto.NFIPrefix, p.receiver).Hex(),
		URIs:        p.file.URIs,
		FormulaType: p.file.FormulaType,
		TotalCount:  p.file.TotalCount,
		Signature:   hexutil.Encode(sig),
		Value:       p.file.Value,
	}, nil
}

func runDigest(args []string) error {
	fs := flag.NewFlagSet("digest", flag.ExitOnError)
	requestPath := fs.String("request", "mint.yaml", "YAML file describing the mint")
	fs.Parse(args)

	parsed, err := readMintFile(*requestPath)
	if err != nil {
		return err
	}
	fmt.Println(hexutil.Encode(parsed.digest()))
	return nil
}

func runSignMint(args []string) error {
	fs := flag.NewFlagSet("sign-mint", flag.ExitOnError)
	requestPath := fs.String("request", "mint.yaml", "YAML file describing the mint")
	keystorePath := fs.String("keystore", defaultKeystore, "Path to the signer keystore")
	passEnv := fs.String("pass-env", defaultPassEnv, "Environment variable containing the keystore passphrase")
	fs.Parse(args)

	parsed, err := readMintFile(*requestPath)
	if err != nil {
		return err
	}
	key, err := loadKey(*keystorePath, *passEnv)
	if err != nil {
		return err
	}
	body, err := signMint(key, parsed)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(body)
}
