package routes

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nfidao/nfi-smart-contract/gateway/middleware"
	"github.com/nfidao/nfi-smart-contract/native/collection"
	"github.com/nfidao/nfi-smart-contract/native/factory"
)

type collectionView struct {
	Address          string `json:"address"`
	Factory          string `json:"factory"`
	Registry         string `json:"registry"`
	ModelID          string `json:"modelId"`
	Name             string `json:"name"`
	Symbol           string `json:"symbol"`
	Designer         string `json:"designer"`
	Manager          string `json:"manager"`
	Owner            string `json:"owner"`
	AuthorizedSigner string `json:"authorizedSigner"`
	MintLimit        uint64 `json:"mintLimit"`
	MintedCount      uint64 `json:"mintedCount"`
	BaseURI          string `json:"baseUri"`
	PaymentToken     string `json:"paymentToken"`
	ContractURI      string `json:"contractUri"`
	CreatedAt        uint64 `json:"createdAt"`
}

func newCollectionView(col *collection.Collection, contractURI string) collectionView {
	return collectionView{
		Address:          hexAddr(col.Address),
		Factory:          hexAddr(col.Factory),
		Registry:         hexAddr(col.Registry),
		ModelID:          col.ModelID,
		Name:             col.Name,
		Symbol:           col.Symbol,
		Designer:         hexAddr(col.Designer),
		Manager:          hexAddr(col.Manager),
		Owner:            hexAddr(col.Owner),
		AuthorizedSigner: hexAddr(col.AuthorizedSigner),
		MintLimit:        col.MintLimit,
		MintedCount:      col.MintedCount,
		BaseURI:          col.BaseURI,
		PaymentToken:     hexAddr(col.PaymentToken),
		ContractURI:      contractURI,
		CreatedAt:        col.CreatedAt,
	}
}

type deployFactoryRequest struct {
	Registry string `json:"registry"`
}

func (h *handlers) deployFactory(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFrom(r.Context())
	var req deployFactoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, err)
		return
	}
	registry, err := parseAddress("registry", req.Registry)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	addr, err := h.node.DeployFactory(r.Context(), caller, registry)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"address": hexAddr(addr)})
}

type createCollectionRequest struct {
	Name            string `json:"name"`
	ModelID         string `json:"modelId"`
	PaymentToken    string `json:"paymentToken"`
	Designer        string `json:"designer"`
	RoyaltyReceiver string `json:"royaltyReceiver"`
	Rate            uint64 `json:"rate"`
	MintLimit       uint64 `json:"mintLimit"`
}

func (h *handlers) createCollection(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFrom(r.Context())
	factoryAddr, err := pathAddress(r, "factory")
	if err != nil {
		writeJSONError(w, err)
		return
	}
	var req createCollectionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, err)
		return
	}
	params := factory.CreateParams{Name: req.Name, ModelID: req.ModelID, Rate: req.Rate, MintLimit: req.MintLimit}
	if params.PaymentToken, err = parseAddress("paymentToken", req.PaymentToken); err != nil {
		writeJSONError(w, err)
		return
	}
	if params.Designer, err = parseAddress("designer", req.Designer); err != nil {
		writeJSONError(w, err)
		return
	}
	if params.RoyaltyReceiver, err = parseAddress("royaltyReceiver", req.RoyaltyReceiver); err != nil {
		writeJSONError(w, err)
		return
	}
	addr, err := h.node.CreateCollection(r.Context(), caller, factoryAddr, params)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"address": hexAddr(addr), "modelId": strings.TrimSpace(req.ModelID)})
}

type addressRequest struct {
	Address string `json:"address"`
}

func (h *handlers) changeFactoryRegistry(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFrom(r.Context())
	factoryAddr, err := pathAddress(r, "factory")
	if err != nil {
		writeJSONError(w, err)
		return
	}
	var req addressRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, err)
		return
	}
	registry, err := parseAddress("address", req.Address)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	if err := h.node.ChangeFactoryRegistry(r.Context(), caller, factoryAddr, registry); err != nil {
		writeJSONError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) getFactory(w http.ResponseWriter, r *http.Request) {
	factoryAddr, err := pathAddress(r, "factory")
	if err != nil {
		writeJSONError(w, err)
		return
	}
	record, err := h.node.FactoryRecord(factoryAddr)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	collections, err := h.node.FactoryCollections(factoryAddr)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"address":     hexAddr(record.Address),
		"owner":       hexAddr(record.Owner),
		"registry":    hexAddr(record.Registry),
		"collections": hexAddrs(collections),
	})
}

func (h *handlers) factoryModel(w http.ResponseWriter, r *http.Request) {
	factoryAddr, err := pathAddress(r, "factory")
	if err != nil {
		writeJSONError(w, err)
		return
	}
	addr, err := h.node.FactoryCollection(factoryAddr, chi.URLParam(r, "modelID"))
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"address": hexAddr(addr)})
}

type mintRequest struct {
	Receiver    string   `json:"receiver"`
	URIs        []string `json:"uris"`
	FormulaType uint64   `json:"formulaType"`
	TotalCount  uint64   `json:"totalCount"`
	Signature   string   `json:"signature"`
	Value       string   `json:"value"`
}

type mintResponse struct {
	FirstAssetID uint64 `json:"firstAssetId"`
	Count        uint64 `json:"count"`
	UnitPrice    string `json:"unitPrice"`
	Total        string `json:"total"`
	PaymentToken string `json:"paymentToken"`
	Payee        string `json:"payee"`
}

func (h *handlers) mint(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFrom(r.Context())
	collectionAddr, err := pathAddress(r, "collection")
	if err != nil {
		writeJSONError(w, err)
		return
	}
	var req mintRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, err)
		return
	}
	receiver, err := parseAddress("receiver", req.Receiver)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	signature, err := parseSignature(req.Signature)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	value, err := parseAmount("value", req.Value)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	result, err := h.node.Mint(r.Context(), caller, collectionAddr, collection.MintRequest{
		Receiver:    receiver,
		URIs:        req.URIs,
		FormulaType: req.FormulaType,
		TotalCount:  req.TotalCount,
		Signature:   signature,
	}, value)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mintResponse{
		FirstAssetID: result.FirstAssetID,
		Count:        result.Count,
		UnitPrice:    amountString(result.UnitPrice),
		Total:        amountString(result.Total),
		PaymentToken: hexAddr(result.PaymentToken),
		Payee:        hexAddr(result.Payee),
	})
}

type baseURIRequest struct {
	BaseURI string `json:"baseUri"`
}

func (h *handlers) setBaseURI(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFrom(r.Context())
	collectionAddr, err := pathAddress(r, "collection")
	if err != nil {
		writeJSONError(w, err)
		return
	}
	var req baseURIRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, err)
		return
	}
	if err := h.node.SetBaseURI(r.Context(), caller, collectionAddr, req.BaseURI); err != nil {
		writeJSONError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type collectionSetter func(h *handlers, r *http.Request, caller, collection, value [20]byte) error

var collectionSetters = map[string]collectionSetter{
	"designer": func(h *handlers, r *http.Request, caller, col, value [20]byte) error {
		return h.node.SetDesigner(r.Context(), caller, col, value)
	},
	"manager": func(h *handlers, r *http.Request, caller, col, value [20]byte) error {
		return h.node.SetCollectionManager(r.Context(), caller, col, value)
	},
	"signer": func(h *handlers, r *http.Request, caller, col, value [20]byte) error {
		return h.node.ChangeAuthorizedSigner(r.Context(), caller, col, value)
	},
	"registry": func(h *handlers, r *http.Request, caller, col, value [20]byte) error {
		return h.node.ChangeRoyaltyRegistry(r.Context(), caller, col, value)
	},
	"payment": func(h *handlers, r *http.Request, caller, col, value [20]byte) error {
		return h.node.SetPaymentCurrency(r.Context(), caller, col, value)
	},
}

func (h *handlers) setCollectionAddress(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFrom(r.Context())
	setter, ok := collectionSetters[chi.URLParam(r, "field")]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Message: "unknown collection field"})
		return
	}
	collectionAddr, err := pathAddress(r, "collection")
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
	if err := setter(h, r, caller, collectionAddr, value); err != nil {
		writeJSONError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) getCollection(w http.ResponseWriter, r *http.Request) {
	collectionAddr, err := pathAddress(r, "collection")
	if err != nil {
		writeJSONError(w, err)
		return
	}
	col, err := h.node.Collection(collectionAddr)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	contractURI, err := h.node.ContractURI(collectionAddr)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCollectionView(col, contractURI))
}

func (h *handlers) listCollections(w http.ResponseWriter, r *http.Request) {
	addrs, err := h.node.Collections()
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"collections": hexAddrs(addrs)})
}

func (h *handlers) getToken(w http.ResponseWriter, r *http.Request) {
	collectionAddr, err := pathAddress(r, "collection")
	if err != nil {
		writeJSONError(w, err)
		return
	}
	id, err := pathUint(r, "id")
	if err != nil {
		writeJSONError(w, err)
		return
	}
	owner, err := h.node.OwnerOf(collectionAddr, id)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	uri, err := h.node.TokenURI(collectionAddr, id)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":       id,
		"owner":    hexAddr(owner),
		"tokenUri": uri,
	})
}

func (h *handlers) balanceOf(w http.ResponseWriter, r *http.Request) {
	collectionAddr, err := pathAddress(r, "collection")
	if err != nil {
		writeJSONError(w, err)
		return
	}
	owner, err := pathAddress(r, "owner")
	if err != nil {
		writeJSONError(w, err)
		return
	}
	balance, err := h.node.BalanceOf(collectionAddr, owner)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"balance": balance})
}

func (h *handlers) supply(w http.ResponseWriter, r *http.Request) {
	collectionAddr, err := pathAddress(r, "collection")
	if err != nil {
		writeJSONError(w, err)
		return
	}
	total, err := h.node.TotalSupply(collectionAddr)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	limit, err := h.node.MintLimit(collectionAddr)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	token, err := h.node.TokenPayment(collectionAddr)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"totalSupply":  total,
		"mintLimit":    limit,
		"paymentToken": hexAddr(token),
	})
}

func (h *handlers) royaltyInfo(w http.ResponseWriter, r *http.Request) {
	collectionAddr, err := pathAddress(r, "collection")
	if err != nil {
		writeJSONError(w, err)
		return
	}
	id, err := strconv.ParseUint(r.URL.Query().Get("tokenId"), 10, 64)
	if err != nil {
		writeJSONError(w, badRequest("tokenId: %v", err))
		return
	}
	salePrice, err := parseAmount("salePrice", r.URL.Query().Get("salePrice"))
	if err != nil {
		writeJSONError(w, err)
		return
	}
	receiver, amount, err := h.node.RoyaltyInfo(collectionAddr, id, salePrice)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"receiver": hexAddr(receiver), "amount": amountString(amount)})
}

func (h *handlers) tokenPrice(w http.ResponseWriter, r *http.Request) {
	collectionAddr, err := pathAddress(r, "collection")
	if err != nil {
		writeJSONError(w, err)
		return
	}
	formulaType, err := pathUint(r, "type")
	if err != nil {
		writeJSONError(w, err)
		return
	}
	price, err := h.node.TokenPrice(collectionAddr, formulaType)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"price": amountString(price)})
}

func (h *handlers) supportsInterface(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(strings.ToLower(chi.URLParam(r, "id")), "0x")
	id, err := strconv.ParseUint(raw, 16, 32)
	if err != nil {
		writeJSONError(w, badRequest("interface id: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"supported": h.node.SupportsInterface(uint32(id))})
}
