package transfer

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"balance_go/internal/domain"
)

func btcEthInfo() *domain.MarketInfo {
	return &domain.MarketInfo{
		Pair:      domain.Pair{From: domain.Crypto("BTC"), To: domain.Crypto("ETH")},
		Rate:      decimal.NewFromFloat(15.0),
		MinAmount: decimal.NewFromFloat(0.001),
		MaxAmount: decimal.NewFromInt(10),
		MinerFee:  decimal.NewFromFloat(0.01),
	}
}

func TestBuildQuote(t *testing.T) {
	now := time.Now()

	t.Run("valid amount", func(t *testing.T) {
		q, err := BuildQuote(btcEthInfo(), decimal.NewFromInt(1), 0, now)
		if err != nil {
			t.Fatalf("BuildQuote failed: %v", err)
		}
		if !q.Rate.Equal(decimal.NewFromFloat(15.0)) {
			t.Errorf("rate = %s, want 15", q.Rate)
		}
		// 1 * 15 - 0.01
		if !q.DestinationAmount.Equal(decimal.NewFromFloat(14.99)) {
			t.Errorf("destination = %s, want 14.99", q.DestinationAmount)
		}
		if q.ExpiresAt != nil {
			t.Error("zero ttl should produce a quote without expiry")
		}
	})

	t.Run("ttl sets expiry", func(t *testing.T) {
		q, err := BuildQuote(btcEthInfo(), decimal.NewFromInt(1), 2*time.Minute, now)
		if err != nil {
			t.Fatalf("BuildQuote failed: %v", err)
		}
		if q.ExpiresAt == nil || !q.ExpiresAt.Equal(now.Add(2*time.Minute)) {
			t.Errorf("expiry = %v, want %v", q.ExpiresAt, now.Add(2*time.Minute))
		}
	})

	t.Run("below minimum", func(t *testing.T) {
		_, err := BuildQuote(btcEthInfo(), decimal.NewFromFloat(0.0001), 0, now)
		assertOutOfRange(t, err)
	})

	t.Run("above maximum", func(t *testing.T) {
		_, err := BuildQuote(btcEthInfo(), decimal.NewFromInt(11), 0, now)
		assertOutOfRange(t, err)
	})

	t.Run("miner fee swallows proceeds", func(t *testing.T) {
		info := btcEthInfo()
		info.MinerFee = decimal.NewFromInt(100)
		_, err := BuildQuote(info, decimal.NewFromInt(1), 0, now)
		assertOutOfRange(t, err)
	})

	t.Run("zero bounds mean unbounded", func(t *testing.T) {
		info := btcEthInfo()
		info.MinAmount = decimal.Zero
		info.MaxAmount = decimal.Zero
		if _, err := BuildQuote(info, decimal.NewFromInt(1000), 0, now); err != nil {
			t.Errorf("unbounded quote failed: %v", err)
		}
	})

	t.Run("missing rate is not a zero-rate quote", func(t *testing.T) {
		info := btcEthInfo()
		info.Rate = decimal.Zero
		_, err := BuildQuote(info, decimal.NewFromInt(1), 0, now)

		var malformed *domain.MalformedResponseError
		if !errors.As(err, &malformed) {
			t.Fatalf("expected MalformedResponseError, got %v", err)
		}
	})
}

func assertOutOfRange(t *testing.T, err error) {
	t.Helper()
	var rangeErr *domain.AmountOutOfRangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected AmountOutOfRangeError, got %v", err)
	}
}
