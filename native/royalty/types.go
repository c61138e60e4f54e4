package royalty

// MaxRate is the highest royalty rate accepted for defaults and overrides, in
// basis points.
const MaxRate uint64 = 1000

// RateDenominator converts basis points into a fraction.
const RateDenominator uint64 = 10_000

// Registry is the persisted state of one royalty registry.
type Registry struct {
	Address           [20]byte
	Initialized       bool
	Owner             [20]byte
	DefaultReceiver   [20]byte
	DefaultRate       uint64
	CollectionOwner   [20]byte
	CollectionManager [20]byte
	CollectionSigner  [20]byte
	ModelFactory      [20]byte
	PriceFormula      [20]byte
}

// Override is a per-collection royalty override. A zero Receiver falls back to
// the registry default receiver.
type Override struct {
	IsSet    bool
	Rate     uint64
	Receiver [20]byte
}

// Roles are the default role identities handed to newly created collections.
type Roles struct {
	CollectionOwner   [20]byte
	CollectionManager [20]byte
	CollectionSigner  [20]byte
}

// InitParams configures a registry on Initialize. Roles is optional; when
// supplied every role must be a real identity.
type InitParams struct {
	DefaultReceiver [20]byte
	DefaultRate     uint64
	Roles           *Roles
}

// OverrideBatch mirrors the batch override entrypoint. Receivers may be nil,
// in which case every override keeps the default receiver.
type OverrideBatch struct {
	Collections [][20]byte
	Rates       []uint64
	Receivers   [][20]byte
}
