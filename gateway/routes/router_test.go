package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"

	"github.com/nfidao/nfi-smart-contract/core"
	"github.com/nfidao/nfi-smart-contract/core/events"
	"github.com/nfidao/nfi-smart-contract/core/types"
	"github.com/nfidao/nfi-smart-contract/crypto"
	"github.com/nfidao/nfi-smart-contract/gateway/middleware"
	"github.com/nfidao/nfi-smart-contract/native/collection"
	"github.com/nfidao/nfi-smart-contract/storage"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var (
	deployer        = [20]byte{0x01}
	designer        = [20]byte{0x02}
	colManager      = [20]byte{0x03}
	colOwner        = [20]byte{0x04}
	royaltyReceiver = [20]byte{0x05}
	buyer           = [20]byte{0x07}
)

type apiFixture struct {
	t      *testing.T
	node   *core.Node
	server *httptest.Server
	auth   *middleware.Authenticator
	signer *crypto.PrivateKey
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	return newAPIFixtureWith(t, core.Options{})
}

func newAPIFixtureWith(t *testing.T, opts core.Options) *apiFixture {
	t.Helper()
	node, err := core.NewNode(storage.NewMemDB(), opts)
	require.NoError(t, err)
	auth := middleware.NewAuthenticator(middleware.AuthConfig{HMACSecret: testSecret}, nil)
	server := httptest.NewServer(New(Config{Node: node, Authenticator: auth}))
	t.Cleanup(server.Close)
	signer, err := crypto.GeneratePrivateKey()
	require.NoError(t, err)
	return &apiFixture{t: t, node: node, server: server, auth: auth, signer: signer}
}

func (f *apiFixture) do(method, path string, caller *[20]byte, body interface{}) (*http.Response, map[string]interface{}) {
	f.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(f.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(f.t, err)
	req.Header.Set("Content-Type", "application/json")
	if caller != nil {
		token, err := f.auth.IssueToken(*caller, time.Minute)
		require.NoError(f.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(f.t, err)
	defer res.Body.Close()
	out := map[string]interface{}{}
	_ = json.NewDecoder(res.Body).Decode(&out)
	return res, out
}

func (f *apiFixture) post(path string, caller [20]byte, body interface{}) map[string]interface{} {
	f.t.Helper()
	res, out := f.do(http.MethodPost, path, &caller, body)
	require.Less(f.t, res.StatusCode, 300, "POST %s: %v", path, out)
	return out
}

// bootstrap deploys a registry, formula and factory and creates one native
// collection priced at 1000 per asset.
func (f *apiFixture) bootstrap() (factoryAddr, col string) {
	f.t.Helper()
	registry := f.post("/v1/registries", deployer, map[string]string{})["address"].(string)
	f.post("/v1/registries/"+registry+"/initialize", deployer, map[string]interface{}{
		"defaultReceiver": hexAddr(royaltyReceiver),
		"defaultRate":     100,
		"roles": map[string]string{
			"collectionOwner":   hexAddr(colOwner),
			"collectionManager": hexAddr(colManager),
			"collectionSigner":  f.signer.PubKey().Address().Hex(),
		},
	})
	formula := f.post("/v1/formulas", deployer, map[string]string{})["address"].(string)
	f.post("/v1/formulas/"+formula+"/prices", deployer, map[string]interface{}{"formulaType": 1, "price": "1000"})
	f.post("/v1/registries/"+registry+"/roles/price_formula", deployer, map[string]string{"address": formula})

	factoryAddr = f.post("/v1/factories", deployer, map[string]string{"registry": registry})["address"].(string)
	f.post("/v1/registries/"+registry+"/roles/model_factory", deployer, map[string]string{"address": factoryAddr})

	col = f.post("/v1/factories/"+factoryAddr+"/collections", deployer, map[string]interface{}{
		"name":            "TEST",
		"modelId":         "ID",
		"designer":        hexAddr(designer),
		"royaltyReceiver": hexAddr(royaltyReceiver),
		"rate":            500,
		"mintLimit":       100,
	})["address"].(string)
	return factoryAddr, col
}

func (f *apiFixture) signedMint(col string, count uint64) map[string]interface{} {
	f.t.Helper()
	uris := make([]string, count)
	for i := range uris {
		uris[i] = "ipfs://asset-" + string(rune('a'+i))
	}
	colAddr, err := crypto.ParseAddress(col)
	require.NoError(f.t, err)
	req := collection.MintRequest{Receiver: buyer, URIs: uris, FormulaType: 1, TotalCount: count}
	sig, err := collection.SignMint(f.signer, buyer, colAddr, req)
	require.NoError(f.t, err)
	return map[string]interface{}{
		"receiver":    hexAddr(buyer),
		"uris":        uris,
		"formulaType": 1,
		"totalCount":  count,
		"signature":   hexutil.Encode(sig),
		"value":       new(big.Int).Mul(big.NewInt(1000), new(big.Int).SetUint64(count)).String(),
	}
}

func TestMintOverHTTP(t *testing.T) {
	f := newAPIFixture(t)
	factoryAddr, col := f.bootstrap()
	require.NoError(t, f.node.Credit(context.Background(), buyer, big.NewInt(10_000)))

	body := f.signedMint(col, 3)
	out := f.post("/v1/collections/"+col+"/mint", buyer, body)
	require.Equal(t, "3000", out["total"])
	require.Equal(t, hexAddr(colManager), out["payee"])

	res, out := f.do(http.MethodPost, "/v1/collections/"+col+"/mint", &buyer, body)
	require.Equal(t, http.StatusConflict, res.StatusCode)
	require.Equal(t, "signature_reused", out["error"])

	res, out = f.do(http.MethodGet, "/v1/collections/"+col+"/tokens/1", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, hexAddr(buyer), out["owner"])
	require.Equal(t, "ipfs://asset-b", out["tokenUri"])

	_, out = f.do(http.MethodGet, "/v1/collections/"+col+"/royalty?tokenId=0&salePrice=10000", nil, nil)
	require.Equal(t, hexAddr(royaltyReceiver), out["receiver"])
	require.Equal(t, "500", out["amount"])

	_, out = f.do(http.MethodGet, "/v1/collections/"+col+"/supply", nil, nil)
	require.EqualValues(t, 3, out["totalSupply"])

	_, out = f.do(http.MethodGet, "/v1/factories/"+factoryAddr+"/models/ID", nil, nil)
	require.True(t, strings.EqualFold(col, out["address"].(string)))

	res, _ = f.do(http.MethodGet, "/v1/collections/"+col+"/tokens/99", nil, nil)
	require.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestNativeMintNeedsFundedCaller(t *testing.T) {
	f := newAPIFixture(t)
	_, col := f.bootstrap()

	res, out := f.do(http.MethodPost, "/v1/collections/"+col+"/mint", &buyer, f.signedMint(col, 1))
	require.Equal(t, http.StatusPaymentRequired, res.StatusCode)
	require.Equal(t, "insufficient_funds", out["error"])
}

func TestGenesisFundedMintOverHTTP(t *testing.T) {
	f := newAPIFixtureWith(t, core.Options{
		Genesis: []core.Allocation{{Address: buyer, Amount: big.NewInt(2500)}},
	})
	_, col := f.bootstrap()

	_, out := f.do(http.MethodGet, "/v1/accounts/"+hexAddr(buyer)+"/balance", nil, nil)
	require.Equal(t, "2500", out["balance"])

	out = f.post("/v1/collections/"+col+"/mint", buyer, f.signedMint(col, 2))
	require.Equal(t, "2000", out["total"])

	_, out = f.do(http.MethodGet, "/v1/accounts/"+hexAddr(buyer)+"/balance", nil, nil)
	require.Equal(t, "500", out["balance"])
	_, out = f.do(http.MethodGet, "/v1/accounts/"+hexAddr(colManager)+"/balance", nil, nil)
	require.Equal(t, "2000", out["balance"])
}

func TestWritesRequireAuthentication(t *testing.T) {
	f := newAPIFixture(t)
	res, out := f.do(http.MethodPost, "/v1/registries", nil, map[string]string{})
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	require.Equal(t, "unauthenticated", out["error"])
}

func TestErrorKindsMapToStatus(t *testing.T) {
	f := newAPIFixture(t)
	factoryAddr, col := f.bootstrap()

	res, out := f.do(http.MethodPost, "/v1/factories/"+factoryAddr+"/collections", &deployer, map[string]interface{}{
		"name":            "AGAIN",
		"modelId":         "ID",
		"designer":        hexAddr(designer),
		"royaltyReceiver": hexAddr(royaltyReceiver),
		"mintLimit":       1,
	})
	require.Equal(t, http.StatusConflict, res.StatusCode)
	require.Equal(t, "duplicate_identifier", out["error"])

	stranger := [20]byte{0x99}
	res, out = f.do(http.MethodPost, "/v1/collections/"+col+"/base-uri", &stranger, map[string]string{"baseUri": "https://x/"})
	require.Equal(t, http.StatusForbidden, res.StatusCode)
	require.Equal(t, "unauthorized", out["error"])

	res, _ = f.do(http.MethodPost, "/v1/collections/"+col+"/base-uri", &deployer, map[string]string{"unknown": "field"})
	require.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, out = f.do(http.MethodGet, "/v1/collections/"+col+"/price/0", nil, nil)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	require.Equal(t, "unsupported_formula", out["error"])

	res, _ = f.do(http.MethodGet, "/v1/events", nil, nil)
	require.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestEventStreamDeliversCommittedEvents(t *testing.T) {
	f := newAPIFixture(t)
	_, col := f.bootstrap()
	require.NoError(t, f.node.Credit(context.Background(), buyer, big.NewInt(10_000)))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	wsURL := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/v1/events/ws?type=collection.mint"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "test complete")

	// The subscription is registered after the upgrade completes.
	require.Eventually(t, func() bool { return f.node.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	f.post("/v1/collections/"+col+"/mint", buyer, f.signedMint(col, 1))
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var evt types.Event
	require.NoError(t, json.Unmarshal(data, &evt))
	require.Equal(t, events.TypeMintSettled, evt.Type)
	require.Equal(t, "1", evt.Attributes["count"])
}
