package archive

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"lukechampine.com/blake3"

	"github.com/nfidao/nfi-smart-contract/core/types"
)

// ErrChainBroken reports an archived record whose digest does not follow from
// its predecessor.
var ErrChainBroken = errors.New("archive: digest chain broken")

const defaultListLimit = 100

// Archive persists committed events in commit order.
type Archive struct {
	db  *gorm.DB
	mu  sync.Mutex
	now func() time.Time
}

// Open connects to the named driver ("sqlite" or "postgres") and migrates the
// schema.
func Open(driver, dsn string) (*Archive, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("archive: unsupported driver %q", driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("archive: open: %w", err)
	}
	return New(db)
}

// New wraps an open database handle.
func New(db *gorm.DB) (*Archive, error) {
	if db == nil {
		return nil, errors.New("archive: database required")
	}
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("archive: migrate: %w", err)
	}
	return &Archive{db: db, now: time.Now}, nil
}

// Close releases the underlying connection pool.
func (a *Archive) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func chainDigest(prev string, sequence uint64, eventType, attributes string) string {
	h := blake3.New(32, nil)
	_, _ = h.Write([]byte(prev))
	_, _ = fmt.Fprintf(h, "|%d|%s|", sequence, eventType)
	_, _ = h.Write([]byte(attributes))
	return hex.EncodeToString(h.Sum(nil))
}

func (a *Archive) head(tx *gorm.DB) (uint64, string, error) {
	var last EventRecord
	err := tx.Order("sequence desc").Limit(1).Find(&last).Error
	if err != nil {
		return 0, "", err
	}
	if last.ID == uuid.Nil {
		return 0, "", nil
	}
	return last.Sequence, last.Digest, nil
}

// Append stores evts after the current head in one transaction.
func (a *Archive) Append(ctx context.Context, evts []*types.Event) error {
	if len(evts) == 0 {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sequence, digest, err := a.head(tx)
		if err != nil {
			return err
		}
		records := make([]EventRecord, 0, len(evts))
		now := a.now().UTC()
		for _, evt := range evts {
			if evt == nil {
				continue
			}
			attrs := evt.Attributes
			if attrs == nil {
				attrs = map[string]string{}
			}
			encoded, err := json.Marshal(attrs)
			if err != nil {
				return err
			}
			sequence++
			digest = chainDigest(digest, sequence, evt.Type, string(encoded))
			records = append(records, EventRecord{
				ID:         uuid.New(),
				Sequence:   sequence,
				Type:       evt.Type,
				Collection: strings.ToLower(attrs["collection"]),
				Attributes: string(encoded),
				Digest:     digest,
				CreatedAt:  now,
			})
		}
		if len(records) == 0 {
			return nil
		}
		return tx.Create(&records).Error
	})
}

// Query filters List. Zero values match everything.
type Query struct {
	Type          string
	Collection    string
	AfterSequence uint64
	Limit         int
}

// Entry is an archived event as returned to readers.
type Entry struct {
	Sequence  uint64       `json:"sequence"`
	Event     *types.Event `json:"event"`
	Digest    string       `json:"digest"`
	CreatedAt time.Time    `json:"createdAt"`
}

// List returns archived events in sequence order.
func (a *Archive) List(ctx context.Context, q Query) ([]Entry, error) {
	limit := q.Limit
	if limit <= 0 || limit > 1000 {
		limit = defaultListLimit
	}
	tx := a.db.WithContext(ctx).Where("sequence > ?", q.AfterSequence)
	if q.Type != "" {
		tx = tx.Where("type = ?", q.Type)
	}
	if q.Collection != "" {
		tx = tx.Where("collection = ?", strings.ToLower(q.Collection))
	}
	var rows []EventRecord
	if err := tx.Order("sequence asc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(rows))
	for _, row := range rows {
		attrs := map[string]string{}
		if err := json.Unmarshal([]byte(row.Attributes), &attrs); err != nil {
			return nil, fmt.Errorf("archive: decode sequence %d: %w", row.Sequence, err)
		}
		out = append(out, Entry{
			Sequence:  row.Sequence,
			Event:     &types.Event{Type: row.Type, Attributes: attrs},
			Digest:    row.Digest,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}

// Verify recomputes the digest chain over the whole archive.
func (a *Archive) Verify(ctx context.Context) error {
	const batch = 500
	var (
		prev     string
		expected uint64 = 1
	)
	for {
		var rows []EventRecord
		err := a.db.WithContext(ctx).
			Where("sequence >= ?", expected).
			Order("sequence asc").
			Limit(batch).
			Find(&rows).Error
		if err != nil {
			return err
		}
		for _, row := range rows {
			if row.Sequence != expected {
				return fmt.Errorf("%w: expected sequence %d, found %d", ErrChainBroken, expected, row.Sequence)
			}
			digest := chainDigest(prev, row.Sequence, row.Type, row.Attributes)
			if digest != row.Digest {
				return fmt.Errorf("%w: at sequence %d", ErrChainBroken, row.Sequence)
			}
			prev = digest
			expected++
		}
		if len(rows) < batch {
			return nil
		}
	}
}
