package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/nfidao/nfi-smart-contract/core/events"
	nfistate "github.com/nfidao/nfi-smart-contract/core/state"
	"github.com/nfidao/nfi-smart-contract/core/types"
	"github.com/nfidao/nfi-smart-contract/native/bank"
	"github.com/nfidao/nfi-smart-contract/native/collection"
	nativecommon "github.com/nfidao/nfi-smart-contract/native/common"
	"github.com/nfidao/nfi-smart-contract/native/directory"
	"github.com/nfidao/nfi-smart-contract/native/factory"
	"github.com/nfidao/nfi-smart-contract/native/formula"
	"github.com/nfidao/nfi-smart-contract/native/royalty"
	"github.com/nfidao/nfi-smart-contract/observability"
	telemetry "github.com/nfidao/nfi-smart-contract/observability/otel"
	"github.com/nfidao/nfi-smart-contract/storage"
)

// Archive receives committed events in commit order.
type Archive interface {
	Append(ctx context.Context, evts []*types.Event) error
}

// Options tunes a Node. The zero value runs with nothing paused, the personal
// sign verifier and the wall clock.
type Options struct {
	Pauses   nativecommon.PauseView
	Verifier collection.Verifier
	Now      func() int64
	Archive  Archive
	Logger   *slog.Logger
	// Genesis funds accounts the first time the database is opened.
	Genesis []Allocation
}

// Node hosts the issuance engines over a database. Every mutating operation
// runs alone against a fresh state transaction that is committed on success
// and discarded on any error. Events reach subscribers only after commit.
type Node struct {
	db      storage.Database
	opts    Options
	logger  *slog.Logger
	stateMu sync.RWMutex

	subMu   sync.Mutex
	subs    map[uint64]chan *types.Event
	nextSub uint64
}

// Migrations returns the schema migrations known to this binary.
func Migrations() (*nfistate.Migrator, error) {
	migrator := nfistate.NewMigrator()
	err := migrator.Register(nfistate.Migration{
		From: 1,
		Name: "collection-supply-into-record",
		Apply: func(m *nfistate.Manager) error {
			return collection.MigrateSupplyIntoRecord(m)
		},
	})
	if err != nil {
		return nil, err
	}
	return migrator, nil
}

// NewNode opens a node over db and lifts the stored schema to the current
// version.
func NewNode(db storage.Database, opts Options) (*Node, error) {
	if db == nil {
		return nil, errors.New("core: database required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	n := &Node{
		db:     db,
		opts:   opts,
		logger: logger,
		subs:   make(map[uint64]chan *types.Event),
	}
	migrator, err := Migrations()
	if err != nil {
		return nil, err
	}
	manager := nfistate.NewManager(db)
	from, err := migrator.Run(manager)
	if err != nil {
		manager.Discard()
		return nil, fmt.Errorf("core: migrate state: %w", err)
	}
	if err := manager.Commit(); err != nil {
		return nil, fmt.Errorf("core: commit migration: %w", err)
	}
	if from != nfistate.StateVersion {
		logger.Info("state migrated", slog.Uint64("from", uint64(from)), slog.Uint64("version", uint64(nfistate.StateVersion)))
	}
	if err := n.applyGenesis(context.Background(), opts.Genesis); err != nil {
		return nil, err
	}
	return n, nil
}

// Close releases the underlying database and closes all subscriptions.
func (n *Node) Close() {
	n.subMu.Lock()
	for id, ch := range n.subs {
		close(ch)
		delete(n.subs, id)
	}
	n.subMu.Unlock()
	n.db.Close()
}

type bufferedEmitter struct {
	events []events.Event
}

func (b *bufferedEmitter) Emit(evt events.Event) {
	if evt == nil {
		return
	}
	b.events = append(b.events, evt)
}

// engines is one transaction worth of wired engines sharing a state manager.
type engines struct {
	manager     *nfistate.Manager
	directory   *directory.Directory
	bank        *bank.Engine
	formula     *formula.Engine
	royalty     *royalty.Engine
	collections *collection.Engine
	factory     *factory.Engine
}

func (n *Node) newEngines(manager *nfistate.Manager, emitter events.Emitter) *engines {
	dir := directory.New(manager)

	bankEngine := bank.NewEngine()
	bankEngine.SetState(manager)
	bankEngine.SetDirectory(dir)
	bankEngine.SetEmitter(emitter)

	formulaEngine := formula.NewEngine()
	formulaEngine.SetState(manager)
	formulaEngine.SetDirectory(dir)
	formulaEngine.SetEmitter(emitter)

	royaltyEngine := royalty.NewEngine()
	royaltyEngine.SetState(manager)
	royaltyEngine.SetDirectory(dir)
	royaltyEngine.SetEmitter(emitter)

	collections := collection.NewEngine()
	collections.SetState(manager)
	collections.SetDirectory(dir)
	collections.SetRegistry(royaltyEngine)
	collections.SetPriceSource(formulaEngine)
	collections.SetLedger(bankEngine)
	collections.SetPauses(n.opts.Pauses)
	collections.SetVerifier(n.opts.Verifier)
	collections.SetEmitter(emitter)
	collections.SetNowFunc(n.opts.Now)

	factoryEngine := factory.NewEngine()
	factoryEngine.SetState(manager)
	factoryEngine.SetDirectory(dir)
	factoryEngine.SetCollections(collections)
	factoryEngine.SetRoyalties(royaltyEngine)
	factoryEngine.SetPauses(n.opts.Pauses)
	factoryEngine.SetEmitter(emitter)

	return &engines{
		manager:     manager,
		directory:   dir,
		bank:        bankEngine,
		formula:     formulaEngine,
		royalty:     royaltyEngine,
		collections: collections,
		factory:     factoryEngine,
	}
}

// execute runs fn as one atomic operation.
func (n *Node) execute(ctx context.Context, module, operation string, fn func(*engines) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := telemetry.Tracer().Start(ctx, module+"."+operation)
	defer span.End()
	start := time.Now()

	n.stateMu.Lock()
	defer n.stateMu.Unlock()

	buffer := &bufferedEmitter{}
	eng := n.newEngines(nfistate.NewManager(n.db), buffer)
	err := fn(eng)
	if err != nil {
		eng.manager.Discard()
	} else if err = eng.manager.Commit(); err != nil {
		eng.manager.Discard()
		err = fmt.Errorf("core: commit: %w", err)
	}

	kind := nativecommon.Kind(err)
	observability.Issuer().ObserveOperation(module, operation, kind, time.Since(start))
	span.SetAttributes(attribute.String("outcome", kind))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, kind)
		if kind == "internal" {
			n.logger.Error("operation failed", slog.String("module", module), slog.String("operation", operation), slog.Any("error", err))
		}
		return err
	}
	n.publish(ctx, buffer.events)
	return nil
}

// view runs a read-only fn. Writes made by fn are never committed.
func (n *Node) view(fn func(*engines) error) error {
	n.stateMu.RLock()
	defer n.stateMu.RUnlock()
	manager := nfistate.NewManager(n.db)
	defer manager.Discard()
	return fn(n.newEngines(manager, events.NoopEmitter{}))
}
