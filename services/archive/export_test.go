package archive

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"

	"github.com/nfidao/nfi-smart-contract/core/types"
)

func settled(collection, first, count, amount string) *types.Event {
	return &types.Event{Type: settlementType, Attributes: map[string]string{
		"collection":   collection,
		"caller":       "0x0000000000000000000000000000000000000007",
		"receiver":     "0x0000000000000000000000000000000000000007",
		"firstAssetId": first,
		"count":        count,
		"formulaType":  "1",
		"paymentToken": "0x0000000000000000000000000000000000000000",
		"amount":       amount,
		"payee":        "0x0000000000000000000000000000000000000003",
	}}
}

func readSettlements(t *testing.T, path string) []SettlementRow {
	t.Helper()
	fr, err := local.NewLocalFileReader(path)
	require.NoError(t, err)
	defer fr.Close()
	pr, err := reader.NewParquetReader(fr, new(SettlementRow), 1)
	require.NoError(t, err)
	defer pr.ReadStop()
	rows := make([]SettlementRow, int(pr.GetNumRows()))
	require.NoError(t, pr.Read(&rows))
	return rows
}

func TestExportSettlementsWritesParquet(t *testing.T) {
	a, _ := setupArchive(t)
	ctx := context.Background()
	const colA = "0xabc0000000000000000000000000000000000001"
	const colB = "0xabc0000000000000000000000000000000000002"

	require.NoError(t, a.Append(ctx, []*types.Event{
		event("collection.asset.created", colA),
		settled(colA, "0", "3", "3000000000000000000"),
		settled(colB, "0", "1", "1000"),
	}))
	require.NoError(t, a.Append(ctx, []*types.Event{settled(colA, "3", "2", "2000000000000000000")}))

	path := filepath.Join(t.TempDir(), "settlements.parquet")
	n, err := a.ExportSettlements(ctx, path, Query{Collection: colA})
	require.NoError(t, err)
	require.Equal(t, 2, n)

	rows := readSettlements(t, path)
	require.Len(t, rows, 2)
	require.Equal(t, int64(2), rows[0].Sequence)
	require.Equal(t, int64(3), rows[0].Count)
	require.Equal(t, "3000000000000000000", rows[0].Amount)
	require.Equal(t, int64(4), rows[1].Sequence)
	require.Equal(t, int64(3), rows[1].FirstAssetID)
	require.Equal(t, colA, rows[1].Collection)
	require.Len(t, rows[1].Digest, 64)

	all := filepath.Join(t.TempDir(), "all.parquet")
	n, err = a.ExportSettlements(ctx, all, Query{})
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestExportSettlementsRejectsMalformedRows(t *testing.T) {
	a, _ := setupArchive(t)
	ctx := context.Background()
	require.NoError(t, a.Append(ctx, []*types.Event{settled("0x01", "zero", "1", "1")}))

	_, err := a.ExportSettlements(ctx, filepath.Join(t.TempDir(), "bad.parquet"), Query{})
	require.ErrorContains(t, err, "firstAssetId")
}
