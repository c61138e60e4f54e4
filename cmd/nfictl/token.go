package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/nfidao/nfi-smart-contract/config"
	"github.com/nfidao/nfi-smart-contract/crypto"
	"github.com/nfidao/nfi-smart-contract/gateway/middleware"
)

func runToken(args []string) error {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	configPath := fs.String("config", defaultConfig, "Path to the daemon config file")
	caller := fs.String("caller", "", "Caller address (hex or bech32)")
	ttl := fs.Duration("ttl", time.Hour, "Token lifetime")
	fs.Parse(args)

	token, err := issueToken(*configPath, *caller, *ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func issueToken(configPath, caller string, ttl time.Duration) (string, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	addr, err := crypto.ParseAddress(caller)
	if err != nil {
		return "", err
	}
	auth := middleware.NewAuthenticator(middleware.AuthConfig{
		HMACSecret: cfg.Auth.Secret(),
		Issuer:     cfg.Auth.Issuer,
		Audience:   cfg.Auth.Audience,
	}, nil)
	return auth.IssueToken(addr, ttl)
}
