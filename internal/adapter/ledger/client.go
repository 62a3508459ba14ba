package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"crux-escrow/config"
	"crux-escrow/internal/core/domain"
	"crux-escrow/internal/core/ports"
	"crux-escrow/pkg/apperror"

	"github.com/rs/zerolog"
)

// Client implements ports.LedgerGateway against a rippled-style JSON-RPC
// endpoint. Signing happens server-side via sign-and-submit; wallet seeds are
// registered per address at construction and never leave this package.
//
// Submissions use a bounded wait: an elapsed deadline surfaces as a Timeout
// error, which is NOT a definitive failure. The transaction may still
// validate, so callers re-reconcile instead of retrying.
type Client struct {
	url            string
	httpClient     *http.Client
	seeds          map[string]string
	submitTimeout  time.Duration
	requestTimeout time.Duration
	feeDrops       int64
	log            zerolog.Logger
	now            func() time.Time
}

// NewClient creates a gateway for the configured endpoint and wallets.
func NewClient(cfg config.LedgerConfig, wallets config.WalletsConfig, log zerolog.Logger) *Client {
	seeds := make(map[string]string)
	if wallets.Buyer.Address != "" {
		seeds[wallets.Buyer.Address] = wallets.Buyer.Seed
	}
	if wallets.Seller.Address != "" {
		seeds[wallets.Seller.Address] = wallets.Seller.Seed
	}
	submitTimeout := cfg.SubmitTimeout
	if submitTimeout <= 0 {
		submitTimeout = 20 * time.Second
	}
	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 10 * time.Second
	}
	feeDrops := cfg.FeeDrops
	if feeDrops <= 0 {
		feeDrops = 12
	}
	return &Client{
		url:            cfg.URL,
		httpClient:     &http.Client{},
		seeds:          seeds,
		submitTimeout:  submitTimeout,
		requestTimeout: requestTimeout,
		feeDrops:       feeDrops,
		log:            log,
		now:            time.Now,
	}
}

// SetNowFunc overrides the gateway clock. Test hook.
func (c *Client) SetNowFunc(now func() time.Time) {
	c.now = now
}

// Now returns the gateway's wall clock.
func (c *Client) Now() time.Time {
	return c.now()
}

// SubmitEscrowCreate locks funds toward the destination under the given
// commitment.
func (c *Client) SubmitEscrowCreate(ctx context.Context, tx ports.EscrowCreateTx) (*ports.SubmitResult, error) {
	t := txJSON{
		TransactionType: "EscrowCreate",
		Account:         tx.Account,
		Destination:     tx.Destination,
		Amount:          strconv.FormatInt(tx.AmountDrops, 10),
		Condition:       tx.Condition,
		FinishAfter:     toRipple(tx.FinishAfter),
		CancelAfter:     toRipple(tx.CancelAfter),
		Fee:             strconv.FormatInt(c.feeDrops, 10),
	}
	return c.submit(ctx, t)
}

// SubmitEscrowFinish releases the escrow identified by (Owner, OfferSequence).
// The fulfillment goes out exactly as supplied; the ledger verifies it.
func (c *Client) SubmitEscrowFinish(ctx context.Context, tx ports.EscrowFinishTx) (*ports.SubmitResult, error) {
	t := txJSON{
		TransactionType: "EscrowFinish",
		Account:         tx.Account,
		Owner:           tx.Owner,
		OfferSequence:   tx.OfferSequence,
		Condition:       tx.Condition,
		Fulfillment:     tx.Fulfillment,
		Fee:             strconv.FormatInt(c.finishFee(tx.Fulfillment), 10),
	}
	return c.submit(ctx, t)
}

// SubmitEscrowCancel returns the escrowed funds to the owner.
func (c *Client) SubmitEscrowCancel(ctx context.Context, tx ports.EscrowCancelTx) (*ports.SubmitResult, error) {
	t := txJSON{
		TransactionType: "EscrowCancel",
		Account:         tx.Account,
		Owner:           tx.Owner,
		OfferSequence:   tx.OfferSequence,
		Fee:             strconv.FormatInt(c.feeDrops, 10),
	}
	return c.submit(ctx, t)
}

// finishFee covers the extra fee a conditional finish costs: the base fee
// plus 10 drops per 16 bytes of fulfillment.
func (c *Client) finishFee(fulfillment string) int64 {
	if fulfillment == "" {
		return c.feeDrops
	}
	fulfillmentBytes := int64(len(fulfillment) / 2)
	return 330 + 10*((fulfillmentBytes+15)/16)
}

func (c *Client) submit(ctx context.Context, t txJSON) (*ports.SubmitResult, error) {
	seed, ok := c.seeds[t.Account]
	if !ok {
		return nil, apperror.InternalError(fmt.Errorf("no signing seed registered for account %s", t.Account))
	}

	ctx, cancel := context.WithTimeout(ctx, c.submitTimeout)
	defer cancel()

	var result submitResult
	err := c.call(ctx, "submit", submitParams{Secret: seed, TxJSON: t, FailHard: true}, &result)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperror.ErrSubmissionTimeout(err)
		}
		return nil, apperror.ErrLedgerUnavailable(err)
	}
	if result.Error != "" {
		return nil, apperror.ErrLedgerUnavailable(fmt.Errorf("submit failed: %s: %s", result.Error, result.ErrorMessage))
	}

	c.log.Debug().
		Str("type", t.TransactionType).
		Str("account", t.Account).
		Str("engine_result", result.EngineResult).
		Str("hash", result.TxJSON.Hash).
		Msg("transaction submitted")

	return &ports.SubmitResult{
		ResultCode: result.EngineResult,
		Sequence:   result.TxJSON.Sequence,
		Hash:       result.TxJSON.Hash,
	}, nil
}

// PendingEscrows lists the validated escrow objects the account participates
// in. The escrow object itself does not carry its creating sequence; it is
// recovered from the transaction referenced by PreviousTxnID.
func (c *Client) PendingEscrows(ctx context.Context, account string) ([]domain.Escrow, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	var result accountObjectsResult
	err := c.call(ctx, "account_objects", accountObjectsParams{
		Account:     account,
		Type:        "escrow",
		LedgerIndex: "validated",
	}, &result)
	if err != nil {
		return nil, apperror.ErrLedgerUnavailable(err)
	}
	if result.Error != "" {
		if result.Error == "actNotFound" {
			return nil, nil
		}
		return nil, apperror.ErrLedgerUnavailable(fmt.Errorf("account_objects failed: %s", result.Error))
	}

	escrows := make([]domain.Escrow, 0, len(result.AccountObjects))
	for _, obj := range result.AccountObjects {
		amount, _ := strconv.ParseInt(obj.Amount, 10, 64)
		e := domain.Escrow{
			TxHash:      obj.PreviousTxnID,
			Payer:       obj.Account,
			Payee:       obj.Destination,
			AmountDrops: amount,
			Condition:   obj.Condition,
			FinishAfter: fromRipple(obj.FinishAfter),
			CancelAfter: fromRipple(obj.CancelAfter),
			Status:      domain.EscrowStatusPending,
		}
		seq, createdAt, err := c.lookupCreate(ctx, obj.PreviousTxnID)
		if err != nil {
			// Without the creating transaction the object has no identity;
			// skip it for this refresh rather than invent one.
			c.log.Warn().Err(err).Str("prev_txn", obj.PreviousTxnID).Msg("escrow object without resolvable create tx")
			continue
		}
		e.Sequence = seq
		e.CreatedAt = createdAt
		escrows = append(escrows, e)
	}
	return escrows, nil
}

func (c *Client) lookupCreate(ctx context.Context, hash string) (uint32, time.Time, error) {
	var result txResult
	if err := c.call(ctx, "tx", txParams{Transaction: hash}, &result); err != nil {
		return 0, time.Time{}, err
	}
	if result.Error != "" {
		return 0, time.Time{}, fmt.Errorf("tx lookup failed: %s", result.Error)
	}
	return result.Sequence, rippleToTime(result.Date), nil
}

// TransactionHistory pages through validated account transactions, most
// recent first. pageToken carries the ledger's opaque resume marker.
func (c *Client) TransactionHistory(ctx context.Context, account string, pageToken string, limit int) (*ports.HistoryPage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	params := accountTxParams{
		Account:        account,
		Limit:          limit,
		LedgerIndexMin: -1,
		LedgerIndexMax: -1,
	}
	if pageToken != "" {
		params.Marker = json.RawMessage(pageToken)
	}

	var result accountTxResult
	if err := c.call(ctx, "account_tx", params, &result); err != nil {
		return nil, apperror.ErrLedgerUnavailable(err)
	}
	if result.Error != "" {
		if result.Error == "actNotFound" {
			return &ports.HistoryPage{}, nil
		}
		return nil, apperror.ErrLedgerUnavailable(fmt.Errorf("account_tx failed: %s", result.Error))
	}

	page := &ports.HistoryPage{}
	for _, entry := range result.Transactions {
		if !entry.Validated {
			continue
		}
		var recType domain.TxRecordType
		switch entry.Tx.TransactionType {
		case "EscrowCreate":
			recType = domain.TxRecordEscrowCreate
		case "EscrowFinish":
			recType = domain.TxRecordEscrowFinish
		case "EscrowCancel":
			recType = domain.TxRecordEscrowCancel
		case "Payment":
			recType = domain.TxRecordPayment
		default:
			continue
		}
		page.Records = append(page.Records, domain.TxRecord{
			Type:          recType,
			Account:       entry.Tx.Account,
			Destination:   entry.Tx.Destination,
			Sequence:      entry.Tx.Sequence,
			OfferSequence: entry.Tx.OfferSequence,
			AmountDrops:   parseDrops(entry.Tx.Amount),
			Condition:     entry.Tx.Condition,
			FinishAfter:   fromRipple(entry.Tx.FinishAfter),
			CancelAfter:   fromRipple(entry.Tx.CancelAfter),
			Hash:          entry.Tx.Hash,
			ResultCode:    entry.Meta.TransactionResult,
			ValidatedAt:   rippleToTime(entry.Tx.Date),
		})
	}
	if len(result.Marker) > 0 {
		page.NextPageToken = string(result.Marker)
	}
	return page, nil
}

// AccountInfo returns the validated-ledger state of an account.
func (c *Client) AccountInfo(ctx context.Context, account string) (*ports.AccountInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	var result accountInfoResult
	err := c.call(ctx, "account_info", accountInfoParams{Account: account, LedgerIndex: "validated"}, &result)
	if err != nil {
		return nil, apperror.ErrLedgerUnavailable(err)
	}
	if result.Error != "" {
		return nil, apperror.ErrLedgerUnavailable(fmt.Errorf("account_info failed: %s", result.Error))
	}

	balance, err := strconv.ParseInt(result.AccountData.Balance, 10, 64)
	if err != nil {
		return nil, apperror.ErrLedgerUnavailable(fmt.Errorf("malformed balance %q: %w", result.AccountData.Balance, err))
	}
	return &ports.AccountInfo{
		Address:      result.AccountData.Account,
		BalanceDrops: balance,
		Sequence:     result.AccountData.Sequence,
	}, nil
}

// ServerReserve returns the current reserve requirement in drops.
func (c *Client) ServerReserve(ctx context.Context) (*ports.ReserveInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	var result serverInfoResult
	if err := c.call(ctx, "server_info", struct{}{}, &result); err != nil {
		return nil, apperror.ErrLedgerUnavailable(err)
	}
	if result.Error != "" {
		return nil, apperror.ErrLedgerUnavailable(fmt.Errorf("server_info failed: %s", result.Error))
	}
	return &ports.ReserveInfo{
		BaseDrops:      int64(result.Info.ValidatedLedger.ReserveBaseXRP * 1_000_000),
		IncrementDrops: int64(result.Info.ValidatedLedger.ReserveIncXRP * 1_000_000),
	}, nil
}

// call performs one JSON-RPC round trip and decodes the result payload.
func (c *Client) call(ctx context.Context, method string, params any, out any) error {
	body, err := json.Marshal(rpcRequest{Method: method, Params: []any{params}})
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", method, resp.StatusCode)
	}

	var envelope rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decoding %s response: %w", method, err)
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("decoding %s result: %w", method, err)
	}
	return nil
}

func toRipple(unix *int64) *int64 {
	if unix == nil {
		return nil
	}
	r := unixToRipple(*unix)
	return &r
}

func fromRipple(ripple *int64) *int64 {
	if ripple == nil {
		return nil
	}
	u := rippleToUnix(*ripple)
	return &u
}
