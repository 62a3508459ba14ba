package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crux-escrow/config"
	"crux-escrow/internal/core/domain"
	"crux-escrow/internal/core/ports"
	"crux-escrow/pkg/apperror"
	"crux-escrow/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	buyerAddr  = "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"
	sellerAddr = "rPT1Sjq2YGrBMTttX4GZHjKu9dyfzbpAYe"
)

// rpcServer scripts one response body per JSON-RPC method and records the
// requests it saw.
type rpcServer struct {
	t         *testing.T
	responses map[string]string
	requests  []map[string]any
	srv       *httptest.Server
}

func newRPCServer(t *testing.T) *rpcServer {
	s := &rpcServer{t: t, responses: make(map[string]string)}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		s.requests = append(s.requests, req)

		method, _ := req["method"].(string)
		resp, ok := s.responses[method]
		if !ok {
			t.Fatalf("unscripted method %q", method)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, resp)
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *rpcServer) client() *Client {
	return NewClient(
		config.LedgerConfig{URL: s.srv.URL, SubmitTimeout: 2 * time.Second, RequestTimeout: 2 * time.Second, FeeDrops: 12},
		config.WalletsConfig{
			Buyer:  config.WalletConfig{Address: buyerAddr, Seed: "sBuyerSeed"},
			Seller: config.WalletConfig{Address: sellerAddr, Seed: "sSellerSeed"},
		},
		logger.NewWithWriter("error", io.Discard),
	)
}

// lastParams returns the params object of the most recent request for method.
func (s *rpcServer) lastParams(method string) map[string]any {
	for i := len(s.requests) - 1; i >= 0; i-- {
		if s.requests[i]["method"] == method {
			params := s.requests[i]["params"].([]any)
			return params[0].(map[string]any)
		}
	}
	s.t.Fatalf("no request for method %q", method)
	return nil
}

func TestClient_SubmitEscrowCreate_Success(t *testing.T) {
	s := newRPCServer(t)
	s.responses["submit"] = `{"result":{"status":"success","engine_result":"tesSUCCESS","tx_json":{"hash":"ABCD1234","Sequence":42}}}`

	finishAfter := int64(1_700_000_000)
	result, err := s.client().SubmitEscrowCreate(context.Background(), ports.EscrowCreateTx{
		Account:     buyerAddr,
		Destination: sellerAddr,
		AmountDrops: 5_000_000,
		Condition:   "A0258020AA",
		FinishAfter: &finishAfter,
	})
	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.EqualValues(t, 42, result.Sequence)
	assert.Equal(t, "ABCD1234", result.Hash)

	params := s.lastParams("submit")
	assert.Equal(t, "sBuyerSeed", params["secret"])
	assert.Equal(t, true, params["fail_hard"])
	tx := params["tx_json"].(map[string]any)
	assert.Equal(t, "EscrowCreate", tx["TransactionType"])
	assert.Equal(t, "5000000", tx["Amount"])
	// FinishAfter crosses the wire in the ledger's epoch.
	assert.EqualValues(t, finishAfter-rippleEpochOffset, tx["FinishAfter"])
}

func TestClient_Submit_RejectionIsNotAnError(t *testing.T) {
	s := newRPCServer(t)
	s.responses["submit"] = `{"result":{"status":"success","engine_result":"tecNO_PERMISSION","tx_json":{"hash":"FFFF","Sequence":43}}}`

	result, err := s.client().SubmitEscrowCancel(context.Background(), ports.EscrowCancelTx{
		Account:       buyerAddr,
		Owner:         buyerAddr,
		OfferSequence: 40,
	})
	// A definitive rejection is a result, not a transport failure; the
	// service layer decides how to surface it.
	require.NoError(t, err)
	assert.False(t, result.Success())
	assert.Equal(t, "tecNO_PERMISSION", result.ResultCode)
}

func TestClient_Submit_UnknownAccountHasNoSeed(t *testing.T) {
	s := newRPCServer(t)

	_, err := s.client().SubmitEscrowCreate(context.Background(), ports.EscrowCreateTx{
		Account:     "rUnknownAccountWithoutSeed12345678",
		Destination: sellerAddr,
		AmountDrops: 1,
	})
	require.Error(t, err)
}

func TestClient_Submit_TimeoutIsDistinctFromRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(
		config.LedgerConfig{URL: srv.URL, SubmitTimeout: 20 * time.Millisecond, RequestTimeout: time.Second},
		config.WalletsConfig{Buyer: config.WalletConfig{Address: buyerAddr, Seed: "s"}},
		logger.NewWithWriter("error", io.Discard),
	)

	_, err := c.SubmitEscrowCreate(context.Background(), ports.EscrowCreateTx{
		Account:     buyerAddr,
		Destination: sellerAddr,
		AmountDrops: 1,
	})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "LGR_002", appErr.Code)
}

func TestClient_SubmitEscrowFinish_FeeScalesWithFulfillment(t *testing.T) {
	s := newRPCServer(t)
	s.responses["submit"] = `{"result":{"status":"success","engine_result":"tesSUCCESS","tx_json":{"hash":"AB","Sequence":44}}}`

	// 4-byte header + 32-byte preimage = 36 bytes: 330 + 10*ceil(36/16) = 360.
	fulfillment := "A0228020" + "00112233445566778899AABBCCDDEEFF00112233445566778899AABBCCDDEEFF"
	_, err := s.client().SubmitEscrowFinish(context.Background(), ports.EscrowFinishTx{
		Account:       sellerAddr,
		Owner:         buyerAddr,
		OfferSequence: 40,
		Condition:     "A0258020AA",
		Fulfillment:   fulfillment,
	})
	require.NoError(t, err)

	tx := s.lastParams("submit")["tx_json"].(map[string]any)
	assert.Equal(t, "360", tx["Fee"])
	assert.Equal(t, buyerAddr, tx["Owner"])
	assert.Equal(t, fulfillment, tx["Fulfillment"])
}

func TestClient_PendingEscrows(t *testing.T) {
	s := newRPCServer(t)
	s.responses["account_objects"] = `{"result":{"status":"success","account_objects":[
		{"Account":"` + buyerAddr + `","Destination":"` + sellerAddr + `","Amount":"7000000","Condition":"A0258020BB","FinishAfter":800000000,"PreviousTxnID":"CAFE"}
	]}}`
	s.responses["tx"] = `{"result":{"status":"success","hash":"CAFE","Sequence":42,"date":799999000}}`

	escrows, err := s.client().PendingEscrows(context.Background(), buyerAddr)
	require.NoError(t, err)
	require.Len(t, escrows, 1)

	e := escrows[0]
	assert.EqualValues(t, 42, e.Sequence)
	assert.Equal(t, buyerAddr, e.Payer)
	assert.Equal(t, sellerAddr, e.Payee)
	assert.EqualValues(t, 7_000_000, e.AmountDrops)
	assert.Equal(t, domain.EscrowStatusPending, e.Status)
	// Epoch translation happens at the boundary.
	require.NotNil(t, e.FinishAfter)
	assert.Equal(t, int64(800000000)+rippleEpochOffset, *e.FinishAfter)
	assert.Equal(t, time.Unix(799999000+rippleEpochOffset, 0).UTC(), e.CreatedAt)
}

func TestClient_PendingEscrows_UnknownAccountIsEmpty(t *testing.T) {
	s := newRPCServer(t)
	s.responses["account_objects"] = `{"result":{"status":"error","error":"actNotFound"}}`

	escrows, err := s.client().PendingEscrows(context.Background(), buyerAddr)
	require.NoError(t, err)
	assert.Empty(t, escrows)
}

func TestClient_TransactionHistory(t *testing.T) {
	s := newRPCServer(t)
	s.responses["account_tx"] = `{"result":{"status":"success","transactions":[
		{"validated":true,"meta":{"TransactionResult":"tesSUCCESS"},"tx":{"TransactionType":"EscrowCreate","Account":"` + buyerAddr + `","Destination":"` + sellerAddr + `","Amount":"5000000","Sequence":42,"hash":"AAA","date":800000100}},
		{"validated":true,"meta":{"TransactionResult":"tesSUCCESS"},"tx":{"TransactionType":"EscrowFinish","Account":"` + sellerAddr + `","Owner":"` + buyerAddr + `","OfferSequence":42,"Sequence":7,"hash":"BBB","date":800000200}},
		{"validated":false,"meta":{"TransactionResult":"tesSUCCESS"},"tx":{"TransactionType":"EscrowCreate","Account":"` + buyerAddr + `","Sequence":99,"hash":"CCC","date":800000300}},
		{"validated":true,"meta":{"TransactionResult":"tesSUCCESS"},"tx":{"TransactionType":"AccountSet","Account":"` + buyerAddr + `","Sequence":43,"hash":"DDD","date":800000400}}
	],"marker":{"ledger":123,"seq":4}}}`

	page, err := s.client().TransactionHistory(context.Background(), buyerAddr, "", 50)
	require.NoError(t, err)

	// Unvalidated entries and irrelevant transaction types are dropped.
	require.Len(t, page.Records, 2)
	assert.Equal(t, domain.TxRecordEscrowCreate, page.Records[0].Type)
	assert.Equal(t, domain.TxRecordEscrowFinish, page.Records[1].Type)
	assert.EqualValues(t, 42, page.Records[1].OfferSequence)
	assert.NotEmpty(t, page.NextPageToken)

	// The marker round-trips opaquely into the next request.
	s.responses["account_tx"] = `{"result":{"status":"success","transactions":[]}}`
	_, err = s.client().TransactionHistory(context.Background(), buyerAddr, page.NextPageToken, 50)
	require.NoError(t, err)
	params := s.lastParams("account_tx")
	marker := params["marker"].(map[string]any)
	assert.EqualValues(t, 123, marker["ledger"])
}

func TestClient_AccountInfo(t *testing.T) {
	s := newRPCServer(t)
	s.responses["account_info"] = `{"result":{"status":"success","account_data":{"Account":"` + buyerAddr + `","Balance":"25000000","Sequence":50}}}`

	info, err := s.client().AccountInfo(context.Background(), buyerAddr)
	require.NoError(t, err)
	assert.EqualValues(t, 25_000_000, info.BalanceDrops)
	assert.EqualValues(t, 50, info.Sequence)

	params := s.lastParams("account_info")
	assert.Equal(t, "validated", params["ledger_index"])
}

func TestClient_ServerReserve(t *testing.T) {
	s := newRPCServer(t)
	s.responses["server_info"] = `{"result":{"status":"success","info":{"validated_ledger":{"reserve_base_xrp":1,"reserve_inc_xrp":0.2}}}}`

	reserve, err := s.client().ServerReserve(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1_000_000, reserve.BaseDrops)
	assert.EqualValues(t, 200_000, reserve.IncrementDrops)
}

func TestClient_QueryFailureIsLedgerUnavailable(t *testing.T) {
	c := NewClient(
		config.LedgerConfig{URL: "http://127.0.0.1:1", SubmitTimeout: time.Second, RequestTimeout: 100 * time.Millisecond},
		config.WalletsConfig{},
		logger.NewWithWriter("error", io.Discard),
	)

	_, err := c.AccountInfo(context.Background(), buyerAddr)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "LGR_003", appErr.Code)
}

func TestHealthCheck_Ping(t *testing.T) {
	s := newRPCServer(t)
	s.responses["server_info"] = `{"result":{"status":"success","info":{"validated_ledger":{"reserve_base_xrp":1,"reserve_inc_xrp":0.2}}}}`

	hc := NewHealthCheck(s.client())
	assert.Equal(t, "ledger", hc.Name())
	assert.NoError(t, hc.Ping(context.Background()))
}
