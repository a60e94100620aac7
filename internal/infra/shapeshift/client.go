package shapeshift

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"balance_go/internal/domain"
	"balance_go/internal/infra"
)

// DefaultBaseURL is the public ShapeShift API host.
const DefaultBaseURL = "https://shapeshift.io"

// Client is the ShapeShift REST adapter (Boundary Layer). It implements
// domain.ExchangeClient: every transport outcome is normalized through
// domain.Classify before it reaches the orchestrator.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new ShapeShift API client.
func NewClient(cfg *infra.Config) *Client {
	baseURL := cfg.API.ShapeShift.RestURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.API.ShapeShift.APIKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
		},
		logger: slog.Default().With("module", "shapeshift_client"),
	}
}

// FetchSupportedPairs lists the pairs the provider currently trades.
// ShapeShift reports available coins, not pairs; any available coin trades
// against any other, so the pair set is the ordered cross product.
func (c *Client) FetchSupportedPairs(ctx context.Context) ([]domain.Pair, error) {
	var coins map[string]coinEntry
	if err := c.doJSON(ctx, http.MethodGet, "/getcoins", nil, &coins); err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(coins))
	for _, coin := range coins {
		if coin.Status == coinStatusAvailable && coin.Symbol != "" {
			symbols = append(symbols, coin.Symbol)
		}
	}
	sort.Strings(symbols)

	pairs := make([]domain.Pair, 0, len(symbols)*(len(symbols)-1))
	for _, from := range symbols {
		for _, to := range symbols {
			if from == to {
				continue
			}
			fc, _ := domain.LookupCurrency(from)
			tc, _ := domain.LookupCurrency(to)
			pairs = append(pairs, domain.Pair{From: fc, To: tc})
		}
	}
	return pairs, nil
}

// FetchMarketInfo returns rate and deposit bounds for one pair.
func (c *Client) FetchMarketInfo(ctx context.Context, pair domain.Pair) (*domain.MarketInfo, error) {
	var resp marketInfoResponse
	if err := c.doJSON(ctx, http.MethodGet, "/marketinfo/"+pairCode(pair), nil, &resp); err != nil {
		return nil, err
	}

	if resp.Error != "" {
		if strings.Contains(strings.ToLower(resp.Error), "unknown pair") {
			return nil, &domain.UnsupportedPairError{Pair: pair}
		}
		return nil, &domain.MalformedResponseError{Detail: resp.Error}
	}
	if !resp.Rate.IsPositive() {
		return nil, &domain.MalformedResponseError{Detail: "market info missing rate"}
	}

	return &domain.MarketInfo{
		Pair:      pair,
		Rate:      resp.Rate,
		MinAmount: resp.Minimum,
		MaxAmount: resp.Limit,
		MinerFee:  resp.MinerFee,
	}, nil
}

// SubmitOrder creates a shift order. The provider answers with the deposit
// address the source funds must be sent to and its order id.
func (c *Client) SubmitOrder(ctx context.Context, pair domain.Pair, recipientAddress string, amount decimal.Decimal) (*domain.OrderReceipt, error) {
	reqBody := shiftRequest{
		Withdrawal: recipientAddress,
		Pair:       pairCode(pair),
		APIKey:     c.apiKey,
	}
	if amount.IsPositive() {
		reqBody.Amount = amount.String()
	}

	var resp shiftResponse
	if err := c.doJSON(ctx, http.MethodPost, "/shift", reqBody, &resp); err != nil {
		return nil, err
	}

	if resp.Error != "" {
		return nil, &domain.MalformedResponseError{Detail: resp.Error}
	}
	if resp.Deposit == "" {
		return nil, &domain.MalformedResponseError{Detail: "shift response missing deposit address"}
	}

	c.logger.Info("shift order placed",
		slog.String("pair", reqBody.Pair),
		slog.String("order_id", resp.OrderID),
	)
	return &domain.OrderReceipt{
		DepositAddress: resp.Deposit,
		TransactionID:  resp.OrderID,
	}, nil
}

// OrderStatus tracks a submitted order by its deposit address.
func (c *Client) OrderStatus(ctx context.Context, depositAddress string) (*OrderStatus, error) {
	var resp txStatResponse
	if err := c.doJSON(ctx, http.MethodGet, "/txStat/"+depositAddress, nil, &resp); err != nil {
		return nil, err
	}

	if resp.Status == "" {
		return nil, &domain.MalformedResponseError{Detail: resp.Error}
	}
	return &OrderStatus{
		Status:       resp.Status,
		Transaction:  resp.Transaction,
		IncomingCoin: resp.IncomingCoin,
		OutgoingCoin: resp.OutgoingCoin,
	}, nil
}

// doJSON issues a request and decodes the body, normalizing every failure
// through the error classifier.
func (c *Client) doJSON(ctx context.Context, method, path string, reqBody, out interface{}) error {
	var bodyReader io.Reader
	if reqBody != nil {
		jsonBytes, err := json.Marshal(reqBody)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", infra.DefaultUserAgent)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Classify(err, 0, false)
	}
	defer resp.Body.Close()

	if cerr := domain.Classify(nil, resp.StatusCode, true); cerr != nil {
		return cerr
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Classify(nil, resp.StatusCode, false)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return domain.Classify(nil, resp.StatusCode, false)
	}
	return nil
}

// pairCode renders a pair the way ShapeShift spells it: "btc_eth".
func pairCode(pair domain.Pair) string {
	return strings.ToLower(pair.From.Code + "_" + pair.To.Code)
}
