package ledger

import (
	"encoding/json"
	"strconv"
	"time"
)

// rippleEpochOffset converts between the ledger's epoch (2000-01-01) and unix.
const rippleEpochOffset int64 = 946684800

func rippleToUnix(ripple int64) int64 {
	return ripple + rippleEpochOffset
}

func unixToRipple(unix int64) int64 {
	return unix - rippleEpochOffset
}

func rippleToTime(ripple int64) time.Time {
	return time.Unix(rippleToUnix(ripple), 0).UTC()
}

// rpcRequest is the JSON-RPC envelope the ledger endpoint expects: a method
// name and a single params object.
type rpcRequest struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
}

// rpcStatus is the portion of every result payload that signals success or
// an application-level error.
type rpcStatus struct {
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// --- submit ---

type submitParams struct {
	Secret string `json:"secret"`
	TxJSON txJSON `json:"tx_json"`
	// FailHard stops the server from retrying a locally-failing transaction.
	FailHard bool `json:"fail_hard"`
}

// txJSON is the transaction template for sign-and-submit. Amounts are decimal
// drop strings; time fields use the ledger epoch.
type txJSON struct {
	TransactionType string `json:"TransactionType"`
	Account         string `json:"Account"`
	Destination     string `json:"Destination,omitempty"`
	Amount          string `json:"Amount,omitempty"`
	Condition       string `json:"Condition,omitempty"`
	Fulfillment     string `json:"Fulfillment,omitempty"`
	Owner           string `json:"Owner,omitempty"`
	OfferSequence   uint32 `json:"OfferSequence,omitempty"`
	FinishAfter     *int64 `json:"FinishAfter,omitempty"`
	CancelAfter     *int64 `json:"CancelAfter,omitempty"`
	Fee             string `json:"Fee,omitempty"`
}

type submitResult struct {
	rpcStatus
	EngineResult        string `json:"engine_result"`
	EngineResultMessage string `json:"engine_result_message"`
	TxJSON              struct {
		Hash     string `json:"hash"`
		Sequence uint32 `json:"Sequence"`
	} `json:"tx_json"`
}

// --- account_objects ---

type accountObjectsParams struct {
	Account     string `json:"account"`
	Type        string `json:"type"`
	LedgerIndex string `json:"ledger_index"`
}

// escrowObject is one entry of the validated escrow object list. The creating
// sequence is not part of the object; it is recovered from the transaction
// referenced by PreviousTxnID.
type escrowObject struct {
	Account       string `json:"Account"`
	Destination   string `json:"Destination"`
	Amount        string `json:"Amount"`
	Condition     string `json:"Condition,omitempty"`
	FinishAfter   *int64 `json:"FinishAfter,omitempty"`
	CancelAfter   *int64 `json:"CancelAfter,omitempty"`
	PreviousTxnID string `json:"PreviousTxnID"`
}

type accountObjectsResult struct {
	rpcStatus
	Account        string         `json:"account"`
	AccountObjects []escrowObject `json:"account_objects"`
}

// --- tx ---

type txParams struct {
	Transaction string `json:"transaction"`
}

type txResult struct {
	rpcStatus
	Hash     string `json:"hash"`
	Sequence uint32 `json:"Sequence"`
	Date     int64  `json:"date"`
}

// --- account_tx ---

type accountTxParams struct {
	Account     string          `json:"account"`
	Limit       int             `json:"limit,omitempty"`
	Marker      json.RawMessage `json:"marker,omitempty"`
	LedgerIndexMin int64        `json:"ledger_index_min"`
	LedgerIndexMax int64        `json:"ledger_index_max"`
}

type accountTxEntry struct {
	Tx struct {
		TransactionType string `json:"TransactionType"`
		Account         string `json:"Account"`
		Destination     string `json:"Destination,omitempty"`
		Amount          json.RawMessage `json:"Amount,omitempty"`
		Condition       string `json:"Condition,omitempty"`
		FinishAfter     *int64 `json:"FinishAfter,omitempty"`
		CancelAfter     *int64 `json:"CancelAfter,omitempty"`
		Owner           string `json:"Owner,omitempty"`
		OfferSequence   uint32 `json:"OfferSequence,omitempty"`
		Sequence        uint32 `json:"Sequence"`
		Hash            string `json:"hash"`
		Date            int64  `json:"date"`
	} `json:"tx"`
	Meta struct {
		TransactionResult string `json:"TransactionResult"`
	} `json:"meta"`
	Validated bool `json:"validated"`
}

type accountTxResult struct {
	rpcStatus
	Account      string           `json:"account"`
	Transactions []accountTxEntry `json:"transactions"`
	Marker       json.RawMessage  `json:"marker,omitempty"`
}

// --- account_info ---

type accountInfoParams struct {
	Account     string `json:"account"`
	LedgerIndex string `json:"ledger_index"`
}

type accountInfoResult struct {
	rpcStatus
	AccountData struct {
		Account  string `json:"Account"`
		Balance  string `json:"Balance"`
		Sequence uint32 `json:"Sequence"`
	} `json:"account_data"`
}

// --- server_info ---

type serverInfoResult struct {
	rpcStatus
	Info struct {
		ValidatedLedger struct {
			ReserveBaseXRP float64 `json:"reserve_base_xrp"`
			ReserveIncXRP  float64 `json:"reserve_inc_xrp"`
		} `json:"validated_ledger"`
	} `json:"info"`
}

// parseDrops parses a decimal drop string. Non-native amounts (issued
// currencies arrive as JSON objects) yield zero.
func parseDrops(raw json.RawMessage) int64 {
	if len(raw) == 0 || raw[0] == '{' {
		return 0
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
