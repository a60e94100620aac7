package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"balance_go/internal/domain"
)

func TestRateService_Apply(t *testing.T) {
	svc := NewRateService()
	now := time.Now()

	svc.Apply(domain.RateTick{ProductID: "ETH-BTC", Price: decimal.NewFromFloat(0.066), Ts: now})
	svc.Apply(domain.RateTick{ProductID: "BTC-USD", Price: decimal.NewFromInt(60000), Ts: now})

	tick, ok := svc.Rate("ETH-BTC")
	if !ok {
		t.Fatal("ETH-BTC rate should exist")
	}
	if !tick.Price.Equal(decimal.NewFromFloat(0.066)) {
		t.Errorf("price = %s, want 0.066", tick.Price)
	}

	all := svc.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 products, got %d", len(all))
	}
	if all[0].ProductID != "BTC-USD" {
		t.Errorf("All() should sort by product id, got %s first", all[0].ProductID)
	}
}

func TestRateService_StaleTickIgnored(t *testing.T) {
	svc := NewRateService()
	now := time.Now()

	svc.Apply(domain.RateTick{ProductID: "BTC-USD", Price: decimal.NewFromInt(60000), Ts: now})
	svc.Apply(domain.RateTick{ProductID: "BTC-USD", Price: decimal.NewFromInt(59000), Ts: now.Add(-time.Second)})

	tick, _ := svc.Rate("BTC-USD")
	if !tick.Price.Equal(decimal.NewFromInt(60000)) {
		t.Errorf("out-of-order tick must not overwrite, price = %s", tick.Price)
	}
}

func TestRateService_Run(t *testing.T) {
	svc := NewRateService()
	ticks := make(chan domain.RateTick, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		svc.Run(ctx, ticks)
		close(done)
	}()

	ticks <- domain.RateTick{ProductID: "ETH-USD", Price: decimal.NewFromInt(3000), Ts: time.Now()}
	close(ticks)
	<-done

	if _, ok := svc.Rate("ETH-USD"); !ok {
		t.Error("tick consumed by Run should be queryable")
	}
}
