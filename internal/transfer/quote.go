package transfer

import (
	"time"

	"github.com/shopspring/decimal"

	"balance_go/internal/domain"
)

// BuildQuote derives a quote from provider market info and the requested
// source-side amount. Pure: no network access, deterministic for a given now.
//
// Bounds of zero mean "unbounded" on that side, matching providers that omit
// a limit. A ttl of zero produces a quote without expiry.
func BuildQuote(info *domain.MarketInfo, amount decimal.Decimal, ttl time.Duration, now time.Time) (*domain.Quote, error) {
	if info == nil || !info.Rate.IsPositive() {
		return nil, &domain.MalformedResponseError{Detail: "market info missing a usable rate"}
	}
	if !amount.IsPositive() {
		return nil, &domain.ValidationError{Reason: "quote amount must be positive"}
	}

	if info.MinAmount.IsPositive() && amount.LessThan(info.MinAmount) {
		return nil, &domain.AmountOutOfRangeError{Amount: amount, Min: info.MinAmount, Max: info.MaxAmount}
	}
	if info.MaxAmount.IsPositive() && amount.GreaterThan(info.MaxAmount) {
		return nil, &domain.AmountOutOfRangeError{Amount: amount, Min: info.MinAmount, Max: info.MaxAmount}
	}

	dest := amount.Mul(info.Rate).Sub(info.MinerFee)
	if !dest.IsPositive() {
		// Miner fee swallows the proceeds; the effective minimum is higher.
		return nil, &domain.AmountOutOfRangeError{Amount: amount, Min: info.MinAmount, Max: info.MaxAmount}
	}

	q := &domain.Quote{
		Pair:              info.Pair,
		Rate:              info.Rate,
		MinAmount:         info.MinAmount,
		MaxAmount:         info.MaxAmount,
		MinerFee:          info.MinerFee,
		SourceAmount:      amount,
		DestinationAmount: dest,
	}
	if ttl != 0 {
		expires := now.Add(ttl)
		q.ExpiresAt = &expires
	}
	return q, nil
}
