package transfer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"balance_go/internal/domain"
)

// mockAccount implements domain.Transferable and records its calls
type mockAccount struct {
	currency    domain.Currency
	canAddress  bool
	canWithdraw bool
	address     string
	addressErr  error
	withdrawErr error

	trace          *[]string
	fetchCalls     int
	withdrawCalls  int
	lastWithdrawal domain.Withdrawal
}

func (a *mockAccount) Currency() domain.Currency { return a.currency }
func (a *mockAccount) CanRequestAddress() bool   { return a.canAddress }
func (a *mockAccount) CanMakeWithdrawal() bool   { return a.canWithdraw }

func (a *mockAccount) FetchAddress(ctx context.Context) (string, error) {
	a.fetchCalls++
	*a.trace = append(*a.trace, "fetchAddress")
	if a.addressErr != nil {
		return "", a.addressErr
	}
	return a.address, nil
}

func (a *mockAccount) MakeWithdrawal(ctx context.Context, w domain.Withdrawal) error {
	a.withdrawCalls++
	a.lastWithdrawal = w
	*a.trace = append(*a.trace, "makeWithdrawal")
	return a.withdrawErr
}

// mockExchange implements domain.ExchangeClient and records its calls
type mockExchange struct {
	pairs    []domain.Pair
	pairsErr error
	info     *domain.MarketInfo
	infoErr  error
	receipt  *domain.OrderReceipt
	orderErr error

	trace      *[]string
	pairsCalls int
	infoCalls  int
	orderCalls int
}

func (e *mockExchange) FetchSupportedPairs(ctx context.Context) ([]domain.Pair, error) {
	e.pairsCalls++
	*e.trace = append(*e.trace, "fetchSupportedPairs")
	return e.pairs, e.pairsErr
}

func (e *mockExchange) FetchMarketInfo(ctx context.Context, pair domain.Pair) (*domain.MarketInfo, error) {
	e.infoCalls++
	*e.trace = append(*e.trace, "fetchMarketInfo")
	return e.info, e.infoErr
}

func (e *mockExchange) SubmitOrder(ctx context.Context, pair domain.Pair, recipientAddress string, amount decimal.Decimal) (*domain.OrderReceipt, error) {
	e.orderCalls++
	*e.trace = append(*e.trace, "submitOrder")
	return e.receipt, e.orderErr
}

type fixture struct {
	trace    []string
	source   *mockAccount
	receiver *mockAccount
	exchange *mockExchange
	req      *domain.TransferRequest
}

// newFixture builds the BTC -> ETH happy path: rate 15, bounds [0.001, 10],
// order tx123 with deposit address 1Abc.
func newFixture(t *testing.T, amount decimal.Decimal) *fixture {
	t.Helper()
	f := &fixture{}
	f.source = &mockAccount{
		currency: domain.Crypto("BTC"), canAddress: true, canWithdraw: true,
		address: "btc-addr", trace: &f.trace,
	}
	f.receiver = &mockAccount{
		currency: domain.Crypto("ETH"), canAddress: true, canWithdraw: true,
		address: "eth-addr", trace: &f.trace,
	}
	pair := domain.Pair{From: domain.Crypto("BTC"), To: domain.Crypto("ETH")}
	f.exchange = &mockExchange{
		pairs: []domain.Pair{pair},
		info: &domain.MarketInfo{
			Pair:      pair,
			Rate:      decimal.NewFromFloat(15.0),
			MinAmount: decimal.NewFromFloat(0.001),
			MaxAmount: decimal.NewFromInt(10),
		},
		receipt: &domain.OrderReceipt{DepositAddress: "1Abc", TransactionID: "tx123"},
		trace:   &f.trace,
	}

	req, err := domain.NewTransferRequest(f.source, f.receiver, amount)
	if err != nil {
		t.Fatalf("NewTransferRequest failed: %v", err)
	}
	f.req = req
	return f
}

func TestDirectOperator_PerformTransfer(t *testing.T) {
	var trace []string
	source := &mockAccount{
		currency: domain.Crypto("BTC"), canAddress: true, canWithdraw: true,
		address: "src-addr", trace: &trace,
	}
	recipient := &mockAccount{
		currency: domain.Crypto("BTC"), canAddress: true, canWithdraw: true,
		address: "dst-addr", trace: &trace,
	}
	req, err := domain.NewTransferRequest(source, recipient, decimal.NewFromInt(2))
	if err != nil {
		t.Fatalf("NewTransferRequest failed: %v", err)
	}

	op := NewDirectOperator(req)
	txID, err := op.PerformTransfer(context.Background())
	if err != nil {
		t.Fatalf("PerformTransfer failed: %v", err)
	}
	if txID != "" {
		t.Errorf("direct transfer has no provider tx id, got %q", txID)
	}

	if got := strings.Join(trace, ","); got != "fetchAddress,makeWithdrawal" {
		t.Errorf("call order = %s, want fetchAddress,makeWithdrawal", got)
	}
	if recipient.fetchCalls != 1 {
		t.Errorf("fetchAddress calls = %d, want 1", recipient.fetchCalls)
	}
	if source.withdrawCalls != 1 {
		t.Errorf("makeWithdrawal calls = %d, want 1", source.withdrawCalls)
	}

	w := source.lastWithdrawal
	if w.DestinationAddress != "dst-addr" {
		t.Errorf("withdrawal address = %s, want dst-addr", w.DestinationAddress)
	}
	if !w.Amount.Equal(decimal.NewFromInt(2)) {
		t.Errorf("withdrawal amount = %s, want 2", w.Amount)
	}
	if w.Type != domain.TxTypeWithdrawal {
		t.Errorf("withdrawal type = %s, want %s", w.Type, domain.TxTypeWithdrawal)
	}
}

func TestDirectOperator_WithdrawalErrorVerbatim(t *testing.T) {
	var trace []string
	cause := &domain.ConnectivityError{Err: errors.New("dial tcp: refused")}
	source := &mockAccount{
		currency: domain.Crypto("BTC"), canAddress: true, canWithdraw: true,
		withdrawErr: cause, trace: &trace,
	}
	recipient := &mockAccount{
		currency: domain.Crypto("BTC"), canAddress: true, canWithdraw: true,
		address: "dst-addr", trace: &trace,
	}
	req, _ := domain.NewTransferRequest(source, recipient, decimal.NewFromInt(1))

	_, err := NewDirectOperator(req).PerformTransfer(context.Background())
	if err != cause {
		t.Errorf("expected the account's error verbatim, got %v", err)
	}
}

func TestExchangeOperator_FetchQuote(t *testing.T) {
	f := newFixture(t, decimal.NewFromInt(1))
	op := NewExchangeOperator(f.req, f.exchange, 0)

	quote, err := op.FetchQuote(context.Background())
	if err != nil {
		t.Fatalf("FetchQuote failed: %v", err)
	}

	if f.exchange.pairsCalls != 1 {
		t.Errorf("fetchSupportedPairs calls = %d, want 1", f.exchange.pairsCalls)
	}
	if f.exchange.infoCalls != 1 {
		t.Errorf("fetchMarketInfo calls = %d, want 1", f.exchange.infoCalls)
	}
	if f.exchange.orderCalls != 0 {
		t.Error("quote preview must not submit an order")
	}

	if !quote.Rate.Equal(decimal.NewFromFloat(15.0)) {
		t.Errorf("rate = %s, want 15", quote.Rate)
	}
	if !quote.DestinationAmount.Equal(decimal.NewFromInt(15)) {
		t.Errorf("destination = %s, want 15", quote.DestinationAmount)
	}
	if op.State() != StateQuoteReady {
		t.Errorf("state = %s, want quote_ready", op.State())
	}
}

func TestExchangeOperator_PerformTransfer(t *testing.T) {
	f := newFixture(t, decimal.NewFromInt(1))
	op := NewExchangeOperator(f.req, f.exchange, 0)

	txID, err := op.PerformTransfer(context.Background())
	if err != nil {
		t.Fatalf("PerformTransfer failed: %v", err)
	}
	if txID != "tx123" {
		t.Errorf("txID = %q, want tx123", txID)
	}

	want := "fetchSupportedPairs,fetchMarketInfo,fetchAddress,submitOrder,makeWithdrawal"
	if got := strings.Join(f.trace, ","); got != want {
		t.Errorf("call order = %s, want %s", got, want)
	}
	if f.exchange.pairsCalls != 1 || f.exchange.infoCalls != 1 || f.exchange.orderCalls != 1 {
		t.Errorf("exchange calls = %d/%d/%d, want 1/1/1",
			f.exchange.pairsCalls, f.exchange.infoCalls, f.exchange.orderCalls)
	}

	w := f.source.lastWithdrawal
	if w.DestinationAddress != "1Abc" {
		t.Errorf("withdrawal goes to %s, want the provider deposit address 1Abc", w.DestinationAddress)
	}
	if !w.Currency.Equal(domain.Crypto("BTC")) {
		t.Errorf("withdrawal currency = %s, want BTC", w.Currency)
	}
	if w.Type != domain.TxTypeExchangeWithdrawal {
		t.Errorf("withdrawal type = %s, want %s", w.Type, domain.TxTypeExchangeWithdrawal)
	}
	if op.State() != StateCompleted {
		t.Errorf("state = %s, want completed", op.State())
	}
}

func TestExchangeOperator_UnsupportedPair(t *testing.T) {
	f := newFixture(t, decimal.NewFromInt(1))
	f.exchange.pairs = []domain.Pair{{From: domain.Crypto("LTC"), To: domain.Crypto("ETH")}}
	op := NewExchangeOperator(f.req, f.exchange, 0)

	_, err := op.PerformTransfer(context.Background())
	var pairErr *domain.UnsupportedPairError
	if !errors.As(err, &pairErr) {
		t.Fatalf("expected UnsupportedPairError, got %v", err)
	}
	if f.exchange.infoCalls != 0 || f.exchange.orderCalls != 0 {
		t.Error("no further steps may run after an unsupported pair")
	}
	if op.State() != StateFailed {
		t.Errorf("state = %s, want failed", op.State())
	}
}

func TestExchangeOperator_AmountOutOfRange(t *testing.T) {
	f := newFixture(t, decimal.NewFromFloat(0.0001)) // below minimum
	op := NewExchangeOperator(f.req, f.exchange, 0)

	_, err := op.PerformTransfer(context.Background())
	var rangeErr *domain.AmountOutOfRangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected AmountOutOfRangeError, got %v", err)
	}
	if f.exchange.orderCalls != 0 {
		t.Error("no order may be submitted for an out-of-range amount")
	}
	if f.source.withdrawCalls != 0 {
		t.Error("no funds may move for an out-of-range amount")
	}
}

func TestExchangeOperator_MarketInfoServerError(t *testing.T) {
	f := newFixture(t, decimal.NewFromInt(1))
	f.exchange.info = nil
	f.exchange.infoErr = &domain.ServerError{StatusCode: 500}
	op := NewExchangeOperator(f.req, f.exchange, 0)

	_, err := op.PerformTransfer(context.Background())
	var serverErr *domain.ServerError
	if !errors.As(err, &serverErr) {
		t.Fatalf("expected ServerError, got %v", err)
	}
	if serverErr.StatusCode != 500 {
		t.Errorf("status = %d, want 500", serverErr.StatusCode)
	}
	if f.exchange.orderCalls != 0 || f.source.withdrawCalls != 0 {
		t.Error("a failed market info call must terminate the attempt")
	}
}

func TestExchangeOperator_QuoteExpiredBeforeSubmission(t *testing.T) {
	f := newFixture(t, decimal.NewFromInt(1))
	// A negative ttl backdates the expiry, so the pre-submission check trips.
	op := NewExchangeOperator(f.req, f.exchange, -time.Second)

	_, err := op.PerformTransfer(context.Background())
	var expiredErr *domain.QuoteExpiredError
	if !errors.As(err, &expiredErr) {
		t.Fatalf("expected QuoteExpiredError, got %v", err)
	}
	if f.exchange.orderCalls != 0 {
		t.Error("no order may be submitted on an expired quote")
	}
}

func TestExchangeOperator_WithdrawalRejectedAfterOrder(t *testing.T) {
	f := newFixture(t, decimal.NewFromInt(1))
	f.source.withdrawErr = &domain.ConnectivityError{Err: errors.New("wallet unreachable")}
	op := NewExchangeOperator(f.req, f.exchange, 0)

	_, err := op.PerformTransfer(context.Background())
	var rejected *domain.WithdrawalRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected WithdrawalRejectedError, got %v", err)
	}
	if !rejected.OrderOrphaned() || rejected.ProviderTxID != "tx123" {
		t.Errorf("error must carry the orphaned provider order id, got %+v", rejected)
	}

	// The connectivity cause stays reachable, not collapsed away.
	var connErr *domain.ConnectivityError
	if !errors.As(err, &connErr) {
		t.Error("expected the withdrawal cause to remain unwrappable")
	}
}

func TestExchangeOperator_SingleUse(t *testing.T) {
	f := newFixture(t, decimal.NewFromInt(1))
	op := NewExchangeOperator(f.req, f.exchange, 0)

	if _, err := op.PerformTransfer(context.Background()); err != nil {
		t.Fatalf("first PerformTransfer failed: %v", err)
	}

	_, err := op.PerformTransfer(context.Background())
	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError on reuse, got %v", err)
	}
	if _, err := op.FetchQuote(context.Background()); !errors.As(err, &validationErr) {
		t.Errorf("expected ValidationError on quote after consumption, got %v", err)
	}
	if f.exchange.pairsCalls != 1 {
		t.Errorf("a consumed operator must not issue further calls, pairs calls = %d", f.exchange.pairsCalls)
	}
}

func TestSelectOperator(t *testing.T) {
	var trace []string
	btc := &mockAccount{currency: domain.Crypto("BTC"), canAddress: true, canWithdraw: true, trace: &trace}
	btc2 := &mockAccount{currency: domain.Crypto("BTC"), canAddress: true, canWithdraw: true, trace: &trace}
	eth := &mockAccount{currency: domain.Crypto("ETH"), canAddress: true, canWithdraw: true, trace: &trace}
	exchange := &mockExchange{trace: &trace}

	t.Run("same currency selects direct", func(t *testing.T) {
		req, _ := domain.NewTransferRequest(btc, btc2, decimal.NewFromInt(1))
		op, err := SelectOperator(req, exchange, 0)
		if err != nil {
			t.Fatalf("SelectOperator failed: %v", err)
		}
		if _, ok := op.(*DirectOperator); !ok {
			t.Errorf("expected DirectOperator, got %T", op)
		}
	})

	t.Run("cross currency selects exchange-mediated", func(t *testing.T) {
		req, _ := domain.NewTransferRequest(btc, eth, decimal.NewFromInt(1))
		op, err := SelectOperator(req, exchange, 0)
		if err != nil {
			t.Fatalf("SelectOperator failed: %v", err)
		}
		if _, ok := op.(*ExchangeOperator); !ok {
			t.Errorf("expected ExchangeOperator, got %T", op)
		}
	})

	t.Run("no provider means no route", func(t *testing.T) {
		req, _ := domain.NewTransferRequest(btc, eth, decimal.NewFromInt(1))
		_, err := SelectOperator(req, nil, 0)
		var routeErr *domain.NoRouteError
		if !errors.As(err, &routeErr) {
			t.Fatalf("expected NoRouteError, got %v", err)
		}
	})
}
