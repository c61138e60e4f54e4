package routes

import (
	"net/http"

	"github.com/nfidao/nfi-smart-contract/gateway/middleware"
)

type deployTokenRequest struct {
	Symbol string `json:"symbol"`
	Supply string `json:"supply"`
}

func (h *handlers) deployToken(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFrom(r.Context())
	var req deployTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, err)
		return
	}
	supply, err := parseAmount("supply", req.Supply)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	addr, err := h.node.DeployToken(r.Context(), caller, req.Symbol, supply)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"address": hexAddr(addr)})
}

type tokenMoveRequest struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

func (h *handlers) decodeTokenMove(r *http.Request) (token, counterparty [20]byte, req tokenMoveRequest, err error) {
	if token, err = pathAddress(r, "token"); err != nil {
		return
	}
	if err = decodeJSON(r, &req); err != nil {
		return
	}
	counterparty, err = parseAddress("address", req.Address)
	return
}

func (h *handlers) approveToken(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFrom(r.Context())
	token, spender, req, err := h.decodeTokenMove(r)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	if err := h.node.Approve(r.Context(), caller, token, spender, amount); err != nil {
		writeJSONError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) transferToken(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFrom(r.Context())
	token, to, req, err := h.decodeTokenMove(r)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	if err := h.node.TransferToken(r.Context(), caller, token, to, amount); err != nil {
		writeJSONError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) tokenBalance(w http.ResponseWriter, r *http.Request) {
	token, err := pathAddress(r, "token")
	if err != nil {
		writeJSONError(w, err)
		return
	}
	owner, err := pathAddress(r, "owner")
	if err != nil {
		writeJSONError(w, err)
		return
	}
	if _, err := h.node.Token(token); err != nil {
		writeJSONError(w, err)
		return
	}
	balance, err := h.node.TokenBalance(token, owner)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"balance": amountString(balance)})
}

func (h *handlers) tokenAllowance(w http.ResponseWriter, r *http.Request) {
	token, err := pathAddress(r, "token")
	if err != nil {
		writeJSONError(w, err)
		return
	}
	owner, err := pathAddress(r, "owner")
	if err != nil {
		writeJSONError(w, err)
		return
	}
	spender, err := pathAddress(r, "spender")
	if err != nil {
		writeJSONError(w, err)
		return
	}
	allowance, err := h.node.Allowance(token, owner, spender)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"allowance": amountString(allowance)})
}

func (h *handlers) nativeBalance(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r, "address")
	if err != nil {
		writeJSONError(w, err)
		return
	}
	balance, err := h.node.NativeBalance(addr)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"balance": amountString(balance)})
}
