package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-chi/chi/v5"

	"github.com/nfidao/nfi-smart-contract/crypto"
	nativecommon "github.com/nfidao/nfi-smart-contract/native/common"
)

const requestLimit = 1 << 20 // 1 MiB

var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// statusFor maps an error kind to the HTTP status served for it.
func statusFor(kind string) int {
	switch kind {
	case "unauthorized":
		return http.StatusForbidden
	case "not_found", "unknown_asset":
		return http.StatusNotFound
	case "duplicate_identifier", "signature_reused", "already_initialized", "limit_reached":
		return http.StatusConflict
	case "insufficient_funds", "invalid_payment", "native_payment_not_allowed":
		return http.StatusPaymentRequired
	case "payment_forward_failed":
		return http.StatusBadGateway
	case "module_paused":
		return http.StatusServiceUnavailable
	case "internal":
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func writeJSONError(w http.ResponseWriter, err error) {
	if errors.Is(err, errBadRequest) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()})
		return
	}
	kind := nativecommon.Kind(err)
	message := err.Error()
	if kind == "internal" {
		message = "internal error"
	}
	writeJSON(w, statusFor(kind), errorResponse{Error: kind, Message: message})
}

func badRequest(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

func decodeJSON(r *http.Request, out interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, requestLimit))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return badRequest("decode body: %v", err)
	}
	return nil
}

func hexAddr(addr [20]byte) string {
	return common.Address(addr).Hex()
}

func hexAddrs(addrs [][20]byte) []string {
	out := make([]string, len(addrs))
	for i, addr := range addrs {
		out[i] = hexAddr(addr)
	}
	return out
}

// parseAddress accepts hex or bech32. An empty value decodes to the zero
// address so engines report their own validation error.
func parseAddress(field, value string) ([20]byte, error) {
	if strings.TrimSpace(value) == "" {
		return [20]byte{}, nil
	}
	addr, err := crypto.ParseAddress(value)
	if err != nil {
		return [20]byte{}, badRequest("%s: %v", field, err)
	}
	return addr, nil
}

func pathAddress(r *http.Request, param string) ([20]byte, error) {
	value := chi.URLParam(r, param)
	if strings.TrimSpace(value) == "" {
		return [20]byte{}, badRequest("%s required", param)
	}
	return parseAddress(param, value)
}

func pathUint(r *http.Request, param string) (uint64, error) {
	value, err := strconv.ParseUint(chi.URLParam(r, param), 10, 64)
	if err != nil {
		return 0, badRequest("%s: %v", param, err)
	}
	return value, nil
}

// parseAmount accepts a decimal or 0x-prefixed integer. Empty means zero.
func parseAmount(field, value string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return new(big.Int), nil
	}
	amount, ok := new(big.Int).SetString(trimmed, 0)
	if !ok {
		return nil, badRequest("%s: invalid integer %q", field, value)
	}
	return amount, nil
}

func amountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func parseSignature(value string) ([]byte, error) {
	sig, err := hexutil.Decode(strings.TrimSpace(value))
	if err != nil {
		return nil, badRequest("signature: %v", err)
	}
	return sig, nil
}
