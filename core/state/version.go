package state

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// StateVersion identifies the expected on-disk schema layout. Increment this
// constant whenever the stored structure changes and register a Migration that
// lifts the previous version. Version 2 stores the minted count inside the
// collection record instead of a separate supply counter.
const StateVersion uint32 = 2

var (
	stateVersionKey = []byte("state/version")
	// ErrStateVersionMismatch indicates the stored schema version does not
	// match the version supported by the current binary.
	ErrStateVersionMismatch = errors.New("state: schema version mismatch")
	// ErrMigrationMissing indicates no migration is registered for a step.
	ErrMigrationMissing = errors.New("state: migration missing")
)

// SetStateVersion records the provided schema version in state.
func (m *Manager) SetStateVersion(version uint32) error {
	if m == nil {
		return fmt.Errorf("state: manager unavailable")
	}
	return m.KVPut(stateVersionKey, uint64(version))
}

// StateVersion returns the stored schema version and a boolean indicating
// whether the value was present.
func (m *Manager) StateVersion() (uint32, bool, error) {
	if m == nil {
		return 0, false, fmt.Errorf("state: manager unavailable")
	}
	var stored uint64
	ok, err := m.KVGet(stateVersionKey, &stored)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return 0, false, nil
	}
	if stored > uint64(math.MaxUint32) {
		return 0, false, fmt.Errorf("state: schema version overflow: %d", stored)
	}
	return uint32(stored), true, nil
}

// Migration lifts state from version From to From+1.
type Migration struct {
	From  uint32
	Name  string
	Apply func(m *Manager) error
}

// Migrator runs registered migrations in version order.
type Migrator struct {
	steps map[uint32]Migration
}

// NewMigrator returns a migrator with no registered steps.
func NewMigrator() *Migrator {
	return &Migrator{steps: make(map[uint32]Migration)}
}

// Register adds a migration step. Registering the same source version twice is
// an error so two binaries cannot silently disagree on a step.
func (mg *Migrator) Register(step Migration) error {
	if step.Apply == nil {
		return fmt.Errorf("state: migration %q has no apply function", step.Name)
	}
	if _, exists := mg.steps[step.From]; exists {
		return fmt.Errorf("state: migration from v%d already registered", step.From)
	}
	mg.steps[step.From] = step
	return nil
}

// Steps returns the registered source versions in ascending order.
func (mg *Migrator) Steps() []uint32 {
	out := make([]uint32, 0, len(mg.steps))
	for from := range mg.steps {
		out = append(out, from)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Run migrates the state held by m up to StateVersion and records the new
// version. An empty store is stamped with StateVersion directly. The caller
// commits or discards m.
func (mg *Migrator) Run(m *Manager) (from uint32, err error) {
	version, ok, err := m.StateVersion()
	if err != nil {
		return 0, err
	}
	if !ok {
		return StateVersion, m.SetStateVersion(StateVersion)
	}
	if version > StateVersion {
		return version, fmt.Errorf("%w: on-disk=%d supported=%d", ErrStateVersionMismatch, version, StateVersion)
	}
	from = version
	for version < StateVersion {
		step, ok := mg.steps[version]
		if !ok {
			return from, fmt.Errorf("%w: v%d -> v%d", ErrMigrationMissing, version, version+1)
		}
		if err := step.Apply(m); err != nil {
			return from, fmt.Errorf("state: migration %q: %w", step.Name, err)
		}
		version++
		if err := m.SetStateVersion(version); err != nil {
			return from, err
		}
	}
	return from, nil
}

// EnsureStateVersion verifies that the stored version matches the version
// supported by this binary. A missing version marker is treated as an empty
// store.
func EnsureStateVersion(m *Manager) error {
	version, ok, err := m.StateVersion()
	if err != nil {
		return err
	}
	if !ok || version == StateVersion {
		return nil
	}
	return fmt.Errorf("%w: on-disk=%d expected=%d", ErrStateVersionMismatch, version, StateVersion)
}
