package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Transferable is the capability surface an account exposes to the transfer
// core. Concrete accounts live outside the core and own their session state;
// the core only ever sees this interface.
type Transferable interface {
	Currency() Currency

	// CanRequestAddress reports whether the account can produce a
	// receiving address for its currency.
	CanRequestAddress() bool

	// CanMakeWithdrawal reports whether the account accepts withdrawal
	// instructions.
	CanMakeWithdrawal() bool

	// FetchAddress resolves a receiving address for the account's currency.
	FetchAddress(ctx context.Context) (string, error)

	// MakeWithdrawal instructs the account to send funds. Returns a domain
	// error without issuing any call when the account's invariants disallow
	// the withdrawal (for example a currency mismatch).
	MakeWithdrawal(ctx context.Context, w Withdrawal) error
}

// ExchangeClient is the liquidity-provider surface the mediated operator
// drives. Implementations return decoded domain objects or errors already
// normalized through Classify.
type ExchangeClient interface {
	FetchSupportedPairs(ctx context.Context) ([]Pair, error)
	FetchMarketInfo(ctx context.Context, pair Pair) (*MarketInfo, error)
	SubmitOrder(ctx context.Context, pair Pair, recipientAddress string, amount decimal.Decimal) (*OrderReceipt, error)
}
