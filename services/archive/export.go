package archive

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

const settlementType = "collection.mint.settled"

// SettlementRow is one settled mint in a parquet settlement report.
type SettlementRow struct {
	Sequence     int64  `parquet:"name=sequence, type=INT64"`
	Collection   string `parquet:"name=collection, type=BYTE_ARRAY, convertedtype=UTF8"`
	Caller       string `parquet:"name=caller, type=BYTE_ARRAY, convertedtype=UTF8"`
	Receiver     string `parquet:"name=receiver, type=BYTE_ARRAY, convertedtype=UTF8"`
	FirstAssetID int64  `parquet:"name=first_asset_id, type=INT64"`
	Count        int64  `parquet:"name=count, type=INT64"`
	FormulaType  int64  `parquet:"name=formula_type, type=INT64"`
	PaymentToken string `parquet:"name=payment_token, type=BYTE_ARRAY, convertedtype=UTF8"`
	Amount       string `parquet:"name=amount, type=BYTE_ARRAY, convertedtype=UTF8"`
	Payee        string `parquet:"name=payee, type=BYTE_ARRAY, convertedtype=UTF8"`
	Digest       string `parquet:"name=digest, type=BYTE_ARRAY, convertedtype=UTF8"`
	ArchivedAt   string `parquet:"name=archived_at, type=BYTE_ARRAY, convertedtype=UTF8"`
}

func settlementRow(entry Entry) (*SettlementRow, error) {
	attrs := entry.Event.Attributes
	number := func(name string) (int64, error) {
		v, err := strconv.ParseInt(attrs[name], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("archive: sequence %d %s: %w", entry.Sequence, name, err)
		}
		return v, nil
	}
	first, err := number("firstAssetId")
	if err != nil {
		return nil, err
	}
	count, err := number("count")
	if err != nil {
		return nil, err
	}
	formulaType, err := number("formulaType")
	if err != nil {
		return nil, err
	}
	return &SettlementRow{
		Sequence:     int64(entry.Sequence),
		Collection:   attrs["collection"],
		Caller:       attrs["caller"],
		Receiver:     attrs["receiver"],
		FirstAssetID: first,
		Count:        count,
		FormulaType:  formulaType,
		PaymentToken: attrs["paymentToken"],
		Amount:       attrs["amount"],
		Payee:        attrs["payee"],
		Digest:       entry.Digest,
		ArchivedAt:   entry.CreatedAt.UTC().Format(time.RFC3339),
	}, nil
}

// ExportSettlements writes every archived mint settlement matching q to a
// snappy-compressed parquet file at path and returns the number of rows.
// q.Type and q.Limit are ignored.
func (a *Archive) ExportSettlements(ctx context.Context, path string, q Query) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("archive: create parquet: %w", err)
	}
	pw, err := writer.NewParquetWriter(writerfile.NewWriterFile(file), new(SettlementRow), 1)
	if err != nil {
		file.Close()
		return 0, fmt.Errorf("archive: parquet schema: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	fail := func(err error) (int, error) {
		pw.WriteStop()
		file.Close()
		return 0, err
	}
	written := 0
	page := Query{Type: settlementType, Collection: q.Collection, AfterSequence: q.AfterSequence, Limit: 1000}
	for {
		entries, err := a.List(ctx, page)
		if err != nil {
			return fail(err)
		}
		for _, entry := range entries {
			row, err := settlementRow(entry)
			if err != nil {
				return fail(err)
			}
			if err := pw.Write(row); err != nil {
				return fail(fmt.Errorf("archive: parquet write: %w", err))
			}
			written++
			page.AfterSequence = entry.Sequence
		}
		if len(entries) < page.Limit {
			break
		}
	}
	if err := pw.WriteStop(); err != nil {
		file.Close()
		return 0, fmt.Errorf("archive: parquet flush: %w", err)
	}
	if err := file.Close(); err != nil {
		return 0, fmt.Errorf("archive: close parquet file: %w", err)
	}
	return written, nil
}
