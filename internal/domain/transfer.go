package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferRequest captures the intent to move value between two accounts.
// It is validated at construction and read-only afterwards; one request is
// consumed by exactly one operator invocation.
type TransferRequest struct {
	source    Transferable
	recipient Transferable
	amount    decimal.Decimal
}

// NewTransferRequest validates and builds a transfer request.
// Rejects non-positive amounts and transfers from an account to itself.
func NewTransferRequest(source, recipient Transferable, amount decimal.Decimal) (*TransferRequest, error) {
	if source == nil || recipient == nil {
		return nil, &ValidationError{Reason: "source and recipient accounts are required"}
	}
	if !amount.IsPositive() {
		return nil, &ValidationError{Reason: "amount must be positive"}
	}
	if source == recipient && source.Currency().Equal(recipient.Currency()) {
		return nil, &ValidationError{Reason: "source and recipient are the same account"}
	}

	return &TransferRequest{
		source:    source,
		recipient: recipient,
		amount:    amount,
	}, nil
}

// Source returns the account funds leave from.
func (r *TransferRequest) Source() Transferable { return r.source }

// Recipient returns the account funds arrive at.
func (r *TransferRequest) Recipient() Transferable { return r.recipient }

// Amount returns the requested source-side amount.
func (r *TransferRequest) Amount() decimal.Decimal { return r.amount }

// Direct reports whether source and recipient share a currency, meaning
// no liquidity provider is needed.
func (r *TransferRequest) Direct() bool {
	return r.source.Currency().Equal(r.recipient.Currency())
}

// Pair returns the (source, recipient) currency pair.
func (r *TransferRequest) Pair() Pair {
	return Pair{From: r.source.Currency(), To: r.recipient.Currency()}
}

// MarketInfo is the provider-supplied market data for one pair.
type MarketInfo struct {
	Pair      Pair
	Rate      decimal.Decimal
	MinAmount decimal.Decimal
	MaxAmount decimal.Decimal
	MinerFee  decimal.Decimal
}

// Quote is a rate estimate for one in-flight transfer. It belongs to the
// operator that built it and is never reused across requests.
type Quote struct {
	Pair              Pair
	Rate              decimal.Decimal
	MinAmount         decimal.Decimal
	MaxAmount         decimal.Decimal
	MinerFee          decimal.Decimal
	SourceAmount      decimal.Decimal
	DestinationAmount decimal.Decimal
	ExpiresAt         *time.Time
}

// Expired reports whether the quote's expiry, if any, has elapsed.
func (q *Quote) Expired(now time.Time) bool {
	return q.ExpiresAt != nil && now.After(*q.ExpiresAt)
}

// Withdrawal instructs an account to send funds to an address.
// Built by the operator immediately before invoking the account capability.
type Withdrawal struct {
	DestinationAddress string
	Amount             decimal.Decimal
	Currency           Currency
	Type               TransactionType
}

// OrderReceipt is the provider's answer to a submitted exchange order.
type OrderReceipt struct {
	DepositAddress string
	TransactionID  string
}

// RateTick is one live market-rate observation from a streaming feed.
type RateTick struct {
	ProductID string
	Price     decimal.Decimal
	Ts        time.Time
}
