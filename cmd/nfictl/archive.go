package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/nfidao/nfi-smart-contract/config"
	"github.com/nfidao/nfi-smart-contract/services/archive"
)

func runExportSettlements(args []string) error {
	fs := flag.NewFlagSet("export-settlements", flag.ExitOnError)
	configPath := fs.String("config", defaultConfig, "Path to the daemon config file")
	out := fs.String("out", "settlements.parquet", "Destination parquet file")
	collection := fs.String("collection", "", "Only export settlements of this collection address")
	after := fs.Uint64("after", 0, "Only export settlements archived after this sequence")
	fs.Parse(args)

	n, err := exportSettlements(context.Background(), *configPath, *out, archive.Query{
		Collection:    *collection,
		AfterSequence: *after,
	})
	if err != nil {
		return err
	}
	fmt.Printf("wrote %d settlements to %s\n", n, *out)
	return nil
}

func exportSettlements(ctx context.Context, configPath, out string, q archive.Query) (int, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return 0, fmt.Errorf("load config: %w", err)
	}
	if cfg.Archive.Driver == "" {
		return 0, errors.New("no event archive configured")
	}
	store, err := archive.Open(cfg.Archive.Driver, cfg.Archive.DSN)
	if err != nil {
		return 0, err
	}
	defer store.Close()
	return store.ExportSettlements(ctx, out, q)
}
