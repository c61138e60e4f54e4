package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nfidao/nfi-smart-contract/core"
	"github.com/nfidao/nfi-smart-contract/gateway/middleware"
)

// Rate limit classes.
const (
	LimitMint  = "mint"
	LimitAdmin = "admin"
	LimitRead  = "read"
)

type Config struct {
	Node               *core.Node
	Archive            EventArchive
	Authenticator      *middleware.Authenticator
	RateLimiter        *middleware.RateLimiter
	Observability      *middleware.Observability
	CORS               middleware.CORSConfig
	SubscriptionBuffer int
}

type handlers struct {
	node               *core.Node
	archive            EventArchive
	subscriptionBuffer int
}

// New builds the HTTP API. Reads are public; every write requires a bearer
// token whose subject becomes the caller.
func New(cfg Config) http.Handler {
	h := &handlers{node: cfg.Node, archive: cfg.Archive, subscriptionBuffer: cfg.SubscriptionBuffer}
	obs := cfg.Observability
	if obs == nil {
		obs = middleware.NewObservability(middleware.ObservabilityConfig{}, nil)
	}
	limit := func(class string) func(http.Handler) http.Handler {
		if cfg.RateLimiter == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return cfg.RateLimiter.Middleware(class)
	}
	authenticated := func(next http.Handler) http.Handler {
		if cfg.Authenticator == nil {
			return next
		}
		return cfg.Authenticator.Middleware(next)
	}

	r := chi.NewRouter()
	r.Use(middleware.CORS(cfg.CORS))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", obs.MetricsHandler())

	r.Route("/v1", func(v1 chi.Router) {
		// Writes.
		v1.Group(func(wr chi.Router) {
			wr.Use(authenticated)

			wr.Group(func(mr chi.Router) {
				mr.Use(limit(LimitMint), obs.Middleware("collection"))
				mr.Post("/collections/{collection}/mint", h.mint)
			})

			wr.Group(func(ar chi.Router) {
				ar.Use(limit(LimitAdmin))
				ar.With(obs.Middleware("royalty")).Post("/registries", h.deployRegistry)
				ar.With(obs.Middleware("royalty")).Post("/registries/{registry}/initialize", h.initializeRegistry)
				ar.With(obs.Middleware("royalty")).Post("/registries/{registry}/overrides", h.setOverrides)
				ar.With(obs.Middleware("royalty")).Post("/registries/{registry}/default-rate", h.changeDefaultRate)
				ar.With(obs.Middleware("royalty")).Post("/registries/{registry}/roles/{role}", h.changeRegistryRole)

				ar.With(obs.Middleware("formula")).Post("/formulas", h.deployFormula)
				ar.With(obs.Middleware("formula")).Post("/formulas/{formula}/prices", h.setFormulaPrice)

				ar.With(obs.Middleware("factory")).Post("/factories", h.deployFactory)
				ar.With(obs.Middleware("factory")).Post("/factories/{factory}/collections", h.createCollection)
				ar.With(obs.Middleware("factory")).Post("/factories/{factory}/registry", h.changeFactoryRegistry)

				ar.With(obs.Middleware("collection")).Post("/collections/{collection}/base-uri", h.setBaseURI)
				ar.With(obs.Middleware("collection")).Post("/collections/{collection}/{field}", h.setCollectionAddress)

				ar.With(obs.Middleware("bank")).Post("/tokens", h.deployToken)
				ar.With(obs.Middleware("bank")).Post("/tokens/{token}/approve", h.approveToken)
				ar.With(obs.Middleware("bank")).Post("/tokens/{token}/transfer", h.transferToken)
			})
		})

		// Reads.
		v1.Group(func(rr chi.Router) {
			rr.Use(limit(LimitRead), obs.Middleware("read"))
			rr.Get("/registries/{registry}", h.getRegistry)
			rr.Get("/registries/{registry}/royalty/{collection}", h.resolveRoyalty)
			rr.Get("/formulas/{formula}/prices/{type}", h.formulaPrice)
			rr.Get("/factories/{factory}", h.getFactory)
			rr.Get("/factories/{factory}/models/{modelID}", h.factoryModel)
			rr.Get("/collections", h.listCollections)
			rr.Get("/collections/{collection}", h.getCollection)
			rr.Get("/collections/{collection}/supply", h.supply)
			rr.Get("/collections/{collection}/tokens/{id}", h.getToken)
			rr.Get("/collections/{collection}/balances/{owner}", h.balanceOf)
			rr.Get("/collections/{collection}/royalty", h.royaltyInfo)
			rr.Get("/collections/{collection}/price/{type}", h.tokenPrice)
			rr.Get("/collections/{collection}/interfaces/{id}", h.supportsInterface)
			rr.Get("/tokens/{token}/balances/{owner}", h.tokenBalance)
			rr.Get("/tokens/{token}/allowances/{owner}/{spender}", h.tokenAllowance)
			rr.Get("/accounts/{address}/balance", h.nativeBalance)
			rr.Get("/events", h.listEvents)
		})

		v1.Get("/events/ws", h.streamEvents)
	})

	return obs.Tracing(r)
}
