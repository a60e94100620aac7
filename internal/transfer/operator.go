package transfer

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"balance_go/internal/domain"
	"balance_go/internal/infra"
)

// State tracks an exchange-mediated transfer through its step sequence.
type State int32

const (
	StateIdle State = iota
	StateFetchingPairs
	StateFetchingMarketInfo
	StateQuoteReady
	StateResolvingAddress
	StateSubmittingOrder
	StateWithdrawing
	StateCompleted
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:               "idle",
	StateFetchingPairs:      "fetching_pairs",
	StateFetchingMarketInfo: "fetching_market_info",
	StateQuoteReady:         "quote_ready",
	StateResolvingAddress:   "resolving_address",
	StateSubmittingOrder:    "submitting_order",
	StateWithdrawing:        "withdrawing",
	StateCompleted:          "completed",
	StateFailed:             "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Operator executes exactly one transfer request. Completion is the return
// value: a provider transaction id (empty for direct transfers) or exactly
// one classified error. A consumed operator refuses a second invocation.
type Operator interface {
	PerformTransfer(ctx context.Context) (providerTxID string, err error)
}

// SelectOperator picks the operator variant for a request: direct when the
// currencies match, exchange-mediated when they differ and a liquidity
// provider is available, NoRouteError otherwise.
func SelectOperator(req *domain.TransferRequest, client domain.ExchangeClient, quoteTTL time.Duration) (Operator, error) {
	if req.Direct() {
		return NewDirectOperator(req), nil
	}
	if client == nil {
		pair := req.Pair()
		return nil, &domain.NoRouteError{From: pair.From, To: pair.To}
	}
	return NewExchangeOperator(req, client, quoteTTL), nil
}

// DirectOperator moves funds between two accounts of the same currency:
// resolve the recipient's address, then withdraw from the source. No quote.
type DirectOperator struct {
	req      *domain.TransferRequest
	logger   *slog.Logger
	consumed atomic.Bool
}

// NewDirectOperator builds a single-use direct operator for one request.
func NewDirectOperator(req *domain.TransferRequest) *DirectOperator {
	return &DirectOperator{
		req:    req,
		logger: slog.Default().With("module", "direct_operator"),
	}
}

// PerformTransfer runs the two-step direct flow. The withdrawal outcome is
// reported verbatim from the source account's single call.
func (o *DirectOperator) PerformTransfer(ctx context.Context) (string, error) {
	if !o.consumed.CompareAndSwap(false, true) {
		return "", &domain.ValidationError{Reason: "operator already consumed"}
	}

	recipient := o.req.Recipient()
	source := o.req.Source()

	if !recipient.CanRequestAddress() {
		o.failed()
		return "", &domain.ValidationError{Reason: "recipient cannot produce a receiving address"}
	}
	if !source.CanMakeWithdrawal() {
		o.failed()
		return "", &domain.ValidationError{Reason: "source cannot make withdrawals"}
	}

	address, err := recipient.FetchAddress(ctx)
	if err != nil {
		o.failed()
		return "", err
	}

	w := domain.Withdrawal{
		DestinationAddress: address,
		Amount:             o.req.Amount(),
		Currency:           source.Currency(),
		Type:               domain.TxTypeWithdrawal,
	}
	if err := source.MakeWithdrawal(ctx, w); err != nil {
		o.failed()
		return "", err
	}

	infra.GlobalMetrics.RecordTransferCompleted()
	o.logger.Info("direct transfer complete",
		slog.String("currency", source.Currency().Code),
		slog.String("amount", o.req.Amount().String()),
	)
	return "", nil
}

func (o *DirectOperator) failed() {
	infra.GlobalMetrics.RecordTransferFailed()
}

// ExchangeOperator routes a cross-currency transfer through a liquidity
// provider: confirm the pair, fetch market info, build a quote, resolve the
// recipient address, submit the order, then withdraw to the provider's
// deposit address. Steps run strictly in sequence; a failure at any step
// terminates the attempt with that step's classified error.
type ExchangeOperator struct {
	req      *domain.TransferRequest
	client   domain.ExchangeClient
	quoteTTL time.Duration
	logger   *slog.Logger
	state    atomic.Int32
	consumed atomic.Bool
}

// NewExchangeOperator builds a single-use mediated operator for one request.
// quoteTTL bounds quote validity; zero disables expiry.
func NewExchangeOperator(req *domain.TransferRequest, client domain.ExchangeClient, quoteTTL time.Duration) *ExchangeOperator {
	return &ExchangeOperator{
		req:      req,
		client:   client,
		quoteTTL: quoteTTL,
		logger:   slog.Default().With("module", "exchange_operator"),
	}
}

// State returns the operator's current step.
func (o *ExchangeOperator) State() State {
	return State(o.state.Load())
}

func (o *ExchangeOperator) setState(s State) {
	o.state.Store(int32(s))
}

func (o *ExchangeOperator) fail() {
	o.setState(StateFailed)
	infra.GlobalMetrics.RecordTransferFailed()
}

// FetchQuote previews the rate without moving funds: one supported-pairs
// call, one market-info call, then the pure quote computation. Usable before
// committing to PerformTransfer; refused once the operator is consumed.
func (o *ExchangeOperator) FetchQuote(ctx context.Context) (*domain.Quote, error) {
	if o.consumed.Load() {
		return nil, &domain.ValidationError{Reason: "operator already consumed"}
	}
	quote, err := o.fetchQuote(ctx)
	if err != nil {
		o.setState(StateFailed)
		return nil, err
	}
	return quote, nil
}

func (o *ExchangeOperator) fetchQuote(ctx context.Context) (*domain.Quote, error) {
	pair := o.req.Pair()

	o.setState(StateFetchingPairs)
	pairs, err := o.client.FetchSupportedPairs(ctx)
	if err != nil {
		return nil, err
	}
	if !pairSupported(pairs, pair) {
		return nil, &domain.UnsupportedPairError{Pair: pair}
	}

	o.setState(StateFetchingMarketInfo)
	info, err := o.client.FetchMarketInfo(ctx, pair)
	if err != nil {
		return nil, err
	}

	quote, err := BuildQuote(info, o.req.Amount(), o.quoteTTL, time.Now())
	if err != nil {
		return nil, err
	}

	o.setState(StateQuoteReady)
	infra.GlobalMetrics.RecordQuoteFetched()
	return quote, nil
}

// PerformTransfer runs the full six-step mediated flow and reports exactly
// once: the provider transaction id on success, one classified error on
// failure. A withdrawal failure after a submitted order surfaces as
// WithdrawalRejectedError carrying that order's id.
func (o *ExchangeOperator) PerformTransfer(ctx context.Context) (string, error) {
	if !o.consumed.CompareAndSwap(false, true) {
		return "", &domain.ValidationError{Reason: "operator already consumed"}
	}

	source := o.req.Source()
	recipient := o.req.Recipient()

	// Capability checks up front so an incapable account cannot orphan a
	// provider order later in the sequence.
	if !recipient.CanRequestAddress() {
		o.fail()
		return "", &domain.ValidationError{Reason: "recipient cannot produce a receiving address"}
	}
	if !source.CanMakeWithdrawal() {
		o.fail()
		return "", &domain.ValidationError{Reason: "source cannot make withdrawals"}
	}

	quote, err := o.fetchQuote(ctx)
	if err != nil {
		o.fail()
		return "", err
	}

	o.setState(StateResolvingAddress)
	address, err := recipient.FetchAddress(ctx)
	if err != nil {
		o.fail()
		return "", err
	}

	// Expiry is re-checked here, immediately before the order goes out, not
	// only at fetch time.
	if quote.Expired(time.Now()) {
		o.fail()
		return "", &domain.QuoteExpiredError{ExpiredAt: *quote.ExpiresAt}
	}

	o.setState(StateSubmittingOrder)
	receipt, err := o.client.SubmitOrder(ctx, quote.Pair, address, quote.SourceAmount)
	if err != nil {
		o.fail()
		return "", err
	}

	o.setState(StateWithdrawing)
	w := domain.Withdrawal{
		DestinationAddress: receipt.DepositAddress,
		Amount:             quote.SourceAmount,
		Currency:           source.Currency(),
		Type:               domain.TxTypeExchangeWithdrawal,
	}
	if err := source.MakeWithdrawal(ctx, w); err != nil {
		o.fail()
		infra.GlobalMetrics.RecordOrderOrphaned()
		if rejected, ok := err.(*domain.WithdrawalRejectedError); ok {
			rejected.ProviderTxID = receipt.TransactionID
			return "", rejected
		}
		return "", &domain.WithdrawalRejectedError{ProviderTxID: receipt.TransactionID, Err: err}
	}

	o.setState(StateCompleted)
	infra.GlobalMetrics.RecordTransferCompleted()
	o.logger.Info("mediated transfer complete",
		slog.String("pair", quote.Pair.String()),
		slog.String("amount", quote.SourceAmount.String()),
		slog.String("provider_tx", receipt.TransactionID),
	)
	return receipt.TransactionID, nil
}

func pairSupported(pairs []domain.Pair, want domain.Pair) bool {
	for _, p := range pairs {
		if p.Equal(want) {
			return true
		}
	}
	return false
}
