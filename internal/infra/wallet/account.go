package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"balance_go/internal/domain"
	"balance_go/internal/infra"
)

// Account is a REST adapter for a wallet daemon, implementing
// domain.Transferable. It owns its credentials; the transfer core only sees
// the capability surface.
type Account struct {
	currency   domain.Currency
	baseURL    string
	httpClient *http.Client
	signer     *Signer
	logger     *slog.Logger
}

// NewAccount builds an account backed by one configured wallet daemon.
func NewAccount(currency domain.Currency, cfg infra.WalletConfig) *Account {
	return &Account{
		currency: currency,
		baseURL:  strings.TrimRight(cfg.RestURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		signer: NewSigner(cfg.AccessKey, cfg.SecretKey),
		logger: slog.Default().With("module", "wallet_account", "currency", currency.Code),
	}
}

func (a *Account) Currency() domain.Currency { return a.currency }

func (a *Account) CanRequestAddress() bool { return true }

func (a *Account) CanMakeWithdrawal() bool { return true }

type addressResponse struct {
	Address string `json:"address"`
}

// FetchAddress resolves a receiving address from the wallet daemon.
func (a *Account) FetchAddress(ctx context.Context) (string, error) {
	var resp addressResponse
	if err := a.doJSON(ctx, http.MethodGet, "/v1/address", nil, &resp); err != nil {
		return "", err
	}
	if resp.Address == "" {
		return "", &domain.MalformedResponseError{Detail: "wallet returned no address"}
	}
	return resp.Address, nil
}

type withdrawalRequest struct {
	Address  string `json:"address"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Type     string `json:"type"`
}

type withdrawalResponse struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason"`
}

// MakeWithdrawal instructs the daemon to send funds. A currency mismatch is
// rejected before any call goes out.
func (a *Account) MakeWithdrawal(ctx context.Context, w domain.Withdrawal) error {
	if !w.Currency.Equal(a.currency) {
		return &domain.WithdrawalRejectedError{
			Err: errors.New("withdrawal currency " + w.Currency.Code + " does not match account currency " + a.currency.Code),
		}
	}

	reqBody := withdrawalRequest{
		Address:  w.DestinationAddress,
		Amount:   w.Amount.String(),
		Currency: w.Currency.Code,
		Type:     string(w.Type),
	}

	var resp withdrawalResponse
	if err := a.doJSON(ctx, http.MethodPost, "/v1/withdrawals", reqBody, &resp); err != nil {
		return err
	}
	if !resp.Accepted {
		return &domain.WithdrawalRejectedError{Err: errors.New(resp.Reason)}
	}

	a.logger.Info("withdrawal accepted",
		slog.String("amount", w.Amount.String()),
		slog.String("address", w.DestinationAddress),
	)
	return nil
}

// doJSON signs and issues a request, normalizing failures through the
// error classifier.
func (a *Account) doJSON(ctx context.Context, method, path string, reqBody, out interface{}) error {
	var bodyReader io.Reader
	var bodyStr string
	if reqBody != nil {
		jsonBytes, err := json.Marshal(reqBody)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewBuffer(jsonBytes)
		bodyStr = string(jsonBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, bodyReader)
	if err != nil {
		return err
	}
	for k, v := range a.signer.GenerateHeaders(method, path, bodyStr) {
		req.Header.Set(k, v)
	}

	resp, err := a.httpClient.Do(req)
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
