package shapeshift

import "github.com/shopspring/decimal"

// Wire shapes for the ShapeShift REST API. The provider reports business
// failures as an "error" field inside a 200 body, so every response carries
// that envelope.

// coinEntry is one entry of the /getcoins map.
type coinEntry struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Status string `json:"status"` // "available" or "unavailable"
}

const coinStatusAvailable = "available"

type marketInfoResponse struct {
	Pair     string          `json:"pair"`
	Rate     decimal.Decimal `json:"rate"`
	Limit    decimal.Decimal `json:"limit"`   // maximum deposit
	Minimum  decimal.Decimal `json:"minimum"` // minimum deposit
	MinerFee decimal.Decimal `json:"minerFee"`
	Error    string          `json:"error"`
}

type shiftRequest struct {
	Withdrawal string `json:"withdrawal"`
	Pair       string `json:"pair"`
	Amount     string `json:"amount,omitempty"`
	APIKey     string `json:"apiKey,omitempty"`
}

type shiftResponse struct {
	Deposit        string `json:"deposit"`
	DepositType    string `json:"depositType"`
	Withdrawal     string `json:"withdrawal"`
	WithdrawalType string `json:"withdrawalType"`
	OrderID        string `json:"orderId"`
	Error          string `json:"error"`
}

type txStatResponse struct {
	Status       string          `json:"status"`
	Address      string          `json:"address"`
	Withdraw     string          `json:"withdraw"`
	IncomingCoin decimal.Decimal `json:"incomingCoin"`
	OutgoingCoin decimal.Decimal `json:"outgoingCoin"`
	Transaction  string          `json:"transaction"`
	Error        string          `json:"error"`
}

// Order status values reported by /txStat.
const (
	OrderStatusNoDeposits = "no_deposits"
	OrderStatusReceived   = "received"
	OrderStatusComplete   = "complete"
	OrderStatusFailed     = "failed"
)

// OrderStatus is the tracked state of a submitted order.
type OrderStatus struct {
	Status       string
	Transaction  string
	IncomingCoin decimal.Decimal
	OutgoingCoin decimal.Decimal
}
