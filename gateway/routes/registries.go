package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nfidao/nfi-smart-contract/core"
	"github.com/nfidao/nfi-smart-contract/gateway/middleware"
	"github.com/nfidao/nfi-smart-contract/native/royalty"
)

func (h *handlers) deployRegistry(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFrom(r.Context())
	addr, err := h.node.DeployRegistry(r.Context(), caller)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"address": hexAddr(addr)})
}

type rolesRequest struct {
	CollectionOwner   string `json:"collectionOwner"`
	CollectionManager string `json:"collectionManager"`
	CollectionSigner  string `json:"collectionSigner"`
}

type initializeRequest struct {
	DefaultReceiver string        `json:"defaultReceiver"`
	DefaultRate     uint64        `json:"defaultRate"`
	Roles           *rolesRequest `json:"roles,omitempty"`
}

func (h *handlers) initializeRegistry(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFrom(r.Context())
	registry, err := pathAddress(r, "registry")
	if err != nil {
		writeJSONError(w, err)
		return
	}
	var req initializeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, err)
		return
	}
	params := royalty.InitParams{DefaultRate: req.DefaultRate}
	if params.DefaultReceiver, err = parseAddress("defaultReceiver", req.DefaultReceiver); err != nil {
		writeJSONError(w, err)
		return
	}
	if req.Roles != nil {
		roles := &royalty.Roles{}
		if roles.CollectionOwner, err = parseAddress("collectionOwner", req.Roles.CollectionOwner); err != nil {
			writeJSONError(w, err)
			return
		}
		if roles.CollectionManager, err = parseAddress("collectionManager", req.Roles.CollectionManager); err != nil {
			writeJSONError(w, err)
			return
		}
		if roles.CollectionSigner, err = parseAddress("collectionSigner", req.Roles.CollectionSigner); err != nil {
			writeJSONError(w, err)
			return
		}
		params.Roles = roles
	}
	if err := h.node.InitializeRegistry(r.Context(), caller, registry, params); err != nil {
		writeJSONError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type overridesRequest struct {
	Collections []string `json:"collections"`
	Rates       []uint64 `json:"rates"`
	Receivers   []string `json:"receivers,omitempty"`
}

func (h *handlers) setOverrides(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFrom(r.Context())
	registry, err := pathAddress(r, "registry")
	if err != nil {
		writeJSONError(w, err)
		return
	}
	var req overridesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, err)
		return
	}
	batch := royalty.OverrideBatch{Rates: req.Rates}
	for _, value := range req.Collections {
		addr, err := parseAddress("collections", value)
		if err != nil {
			writeJSONError(w, err)
			return
		}
		batch.Collections = append(batch.Collections, addr)
	}
	for _, value := range req.Receivers {
		addr, err := parseAddress("receivers", value)
		if err != nil {
			writeJSONError(w, err)
			return
		}
		batch.Receivers = append(batch.Receivers, addr)
	}
	if err := h.node.SetRoyaltyOverrides(r.Context(), caller, registry, batch); err != nil {
		writeJSONError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type rateRequest struct {
	Rate uint64 `json:"rate"`
}

func (h *handlers) changeDefaultRate(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFrom(r.Context())
	registry, err := pathAddress(r, "registry")
	if err != nil {
		writeJSONError(w, err)
		return
	}
	var req rateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, err)
		return
	}
	if err := h.node.ChangeDefaultRate(r.Context(), caller, registry, req.Rate); err != nil {
		writeJSONError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) changeRegistryRole(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFrom(r.Context())
	registry, err := pathAddress(r, "registry")
	if err != nil {
		writeJSONError(w, err)
		return
	}
	var req addressRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, err)
		return
	}
	value, err := parseAddress("address", req.Address)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	role := core.RegistryRole(chi.URLParam(r, "role"))
	if err := h.node.ChangeRegistryAddress(r.Context(), caller, registry, role, value); err != nil {
		writeJSONError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) getRegistry(w http.ResponseWriter, r *http.Request) {
	registry, err := pathAddress(r, "registry")
	if err != nil {
		writeJSONError(w, err)
		return
	}
	reg, err := h.node.RegistryState(registry)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"address":           hexAddr(reg.Address),
		"initialized":       reg.Initialized,
		"owner":             hexAddr(reg.Owner),
		"defaultReceiver":   hexAddr(reg.DefaultReceiver),
		"defaultRate":       reg.DefaultRate,
		"collectionOwner":   hexAddr(reg.CollectionOwner),
		"collectionManager": hexAddr(reg.CollectionManager),
		"collectionSigner":  hexAddr(reg.CollectionSigner),
		"modelFactory":      hexAddr(reg.ModelFactory),
		"priceFormula":      hexAddr(reg.PriceFormula),
	})
}

func (h *handlers) resolveRoyalty(w http.ResponseWriter, r *http.Request) {
	registry, err := pathAddress(r, "registry")
	if err != nil {
		writeJSONError(w, err)
		return
	}
	collectionAddr, err := pathAddress(r, "collection")
	if err != nil {
		writeJSONError(w, err)
		return
	}
	receiver, rate, err := h.node.ResolveRoyalty(registry, collectionAddr)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	override, err := h.node.RoyaltyOverride(registry, collectionAddr)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"receiver":   hexAddr(receiver),
		"rate":       rate,
		"overridden": override.IsSet,
	})
}

func (h *handlers) deployFormula(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFrom(r.Context())
	addr, err := h.node.DeployFormula(r.Context(), caller)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"address": hexAddr(addr)})
}

type formulaPriceRequest struct {
	FormulaType uint64 `json:"formulaType"`
	Price       string `json:"price"`
}

func (h *handlers) setFormulaPrice(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFrom(r.Context())
	formulaAddr, err := pathAddress(r, "formula")
	if err != nil {
		writeJSONError(w, err)
		return
	}
	var req formulaPriceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, err)
		return
	}
	price, err := parseAmount("price", req.Price)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	if err := h.node.SetFormulaPrice(r.Context(), caller, formulaAddr, req.FormulaType, price); err != nil {
		writeJSONError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) formulaPrice(w http.ResponseWriter, r *http.Request) {
	formulaAddr, err := pathAddress(r, "formula")
	if err != nil {
		writeJSONError(w, err)
		return
	}
	formulaType, err := pathUint(r, "type")
	if err != nil {
		writeJSONError(w, err)
		return
	}
	price, err := h.node.UnitPrice(formulaAddr, formulaType)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"price": amountString(price)})
}
