package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"balance_go/internal/app"
	"balance_go/internal/domain"
	"balance_go/internal/infra"
	"balance_go/internal/infra/coinbase"
	"balance_go/internal/infra/shapeshift"
	"balance_go/internal/infra/storage"
	"balance_go/internal/infra/wallet"
	"balance_go/internal/service"
	"balance_go/internal/transfer"
)

func usage() {
	fmt.Fprintln(os.Stderr, `usage: balance_go [flags] <command>

commands:
  quote     preview the exchange rate for a transfer (-from, -to, -amount)
  transfer  perform a transfer (-from, -to, -amount)
  watch     stream live market rates for the configured products
  history   list recorded transfer attempts (-limit)`)
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	from := flag.String("from", "", "source currency code")
	to := flag.String("to", "", "recipient currency code")
	amountStr := flag.String("amount", "", "source-side amount")
	limit := flag.Int("limit", 20, "number of history rows")
	flag.Usage = usage
	flag.Parse()

	verb := flag.Arg(0)
	if verb == "" {
		usage()
		os.Exit(2)
	}

	// System bootstrapping
	bootstrap := app.NewBootstrap(*configPath)
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Background asset sync keeps the currency registry and icons fresh
	go bootstrap.SyncAssets(ctx)

	var err error
	switch verb {
	case "quote":
		err = runQuote(ctx, bootstrap, *from, *to, *amountStr)
	case "transfer":
		err = runTransfer(ctx, bootstrap, *from, *to, *amountStr)
	case "watch":
		err = runWatch(ctx, bootstrap)
	case "history":
		err = runHistory(bootstrap.Storage, *limit)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		slog.Error("Command failed", slog.String("command", verb), slog.Any("error", err))
		os.Exit(1)
	}
}

// buildAccount resolves a configured wallet daemon for a currency code
func buildAccount(cfg *infra.Config, code string) (*wallet.Account, error) {
	if code == "" {
		return nil, fmt.Errorf("currency code is required")
	}
	currency, _ := domain.LookupCurrency(code)
	walletCfg, ok := cfg.Transfer.Wallets[currency.Code]
	if !ok {
		return nil, fmt.Errorf("no wallet configured for %s", currency.Code)
	}
	return wallet.NewAccount(currency, walletCfg), nil
}

func buildRequest(cfg *infra.Config, from, to, amountStr string) (*domain.TransferRequest, error) {
	source, err := buildAccount(cfg, from)
	if err != nil {
		return nil, err
	}
	recipient, err := buildAccount(cfg, to)
	if err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amountStr, err)
	}
	return domain.NewTransferRequest(source, recipient, amount)
}

func quoteTTL(cfg *infra.Config) time.Duration {
	return time.Duration(cfg.Transfer.QuoteTTLSec) * time.Second
}

func runQuote(ctx context.Context, bootstrap *app.Bootstrap, from, to, amountStr string) error {
	cfg := bootstrap.Config
	req, err := buildRequest(cfg, from, to, amountStr)
	if err != nil {
		return err
	}
	if req.Direct() {
		fmt.Printf("%s and %s share a currency: direct transfer, no quote needed\n", from, to)
		return nil
	}

	op := transfer.NewExchangeOperator(req, shapeshift.NewClient(cfg), quoteTTL(cfg))
	quote, err := op.FetchQuote(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%s -> %s\n", quote.Pair.From.Code, quote.Pair.To.Code)
	fmt.Printf("  rate:      %s\n", quote.Rate)
	fmt.Printf("  send:      %s %s\n", quote.SourceAmount, quote.Pair.From.Code)
	fmt.Printf("  receive:   %s %s (miner fee %s)\n", quote.DestinationAmount, quote.Pair.To.Code, quote.MinerFee)
	fmt.Printf("  limits:    [%s, %s]\n", quote.MinAmount, quote.MaxAmount)
	if quote.ExpiresAt != nil {
		fmt.Printf("  expires:   %s\n", quote.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}

func runTransfer(ctx context.Context, bootstrap *app.Bootstrap, from, to, amountStr string) error {
	cfg := bootstrap.Config
	req, err := buildRequest(cfg, from, to, amountStr)
	if err != nil {
		return err
	}

	record := &domain.TransferRecord{
		SourceCurrency: req.Source().Currency().Code,
		DestCurrency:   req.Recipient().Currency().Code,
		Amount:         req.Amount().String(),
		Type:           domain.TxTypeWithdrawal,
	}

	op, err := transfer.SelectOperator(req, shapeshift.NewClient(cfg), quoteTTL(cfg))
	if err != nil {
		return err
	}

	// For mediated transfers, show the rate before committing
	if exchangeOp, ok := op.(*transfer.ExchangeOperator); ok {
		record.Type = domain.TxTypeExchangeWithdrawal
		quote, err := exchangeOp.FetchQuote(ctx)
		if err != nil {
			return err
		}
		record.Rate = quote.Rate.String()
		fmt.Printf("quoted %s -> %s at %s, sending %s %s\n",
			quote.Pair.From.Code, quote.Pair.To.Code, quote.Rate, quote.SourceAmount, quote.Pair.From.Code)
	}

	txID, err := op.PerformTransfer(ctx)
	if err != nil {
		record.Status = domain.TransferStatusFailed
		record.FailureReason = err.Error()
		if rejected, ok := err.(*domain.WithdrawalRejectedError); ok && rejected.OrderOrphaned() {
			record.ProviderTxID = rejected.ProviderTxID
		}
		if saveErr := bootstrap.Storage.SaveTransfer(record); saveErr != nil {
			slog.Warn("Failed to record transfer", slog.Any("error", saveErr))
		}
		return err
	}

	record.Status = domain.TransferStatusCompleted
	record.ProviderTxID = txID
	if saveErr := bootstrap.Storage.SaveTransfer(record); saveErr != nil {
		slog.Warn("Failed to record transfer", slog.Any("error", saveErr))
	}

	if txID != "" {
		fmt.Printf("transfer complete, provider transaction %s\n", txID)
	} else {
		fmt.Println("transfer complete")
	}
	return nil
}

func runWatch(ctx context.Context, bootstrap *app.Bootstrap) error {
	cfg := bootstrap.Config
	if len(cfg.API.Coinbase.Products) == 0 {
		return fmt.Errorf("no products configured under api.coinbase.products")
	}

	ticks := make(chan domain.RateTick, 256)
	rateSvc := service.NewRateService()
	go rateSvc.Run(ctx, ticks)

	worker := coinbase.NewWorker(cfg.API.Coinbase.WSURL, cfg.API.Coinbase.Products, ticks)
	if err := worker.Connect(ctx); err != nil {
		return err
	}
	defer worker.Disconnect()
	slog.Info("Rate stream started", slog.Int("products", len(cfg.API.Coinbase.Products)))

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for _, tick := range rateSvc.All() {
				fmt.Printf("%-12s %s\n", tick.ProductID, tick.Price)
			}
		}
	}
}

func runHistory(store *storage.Storage, limit int) error {
	records, err := store.ListTransfers(limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no transfers recorded")
		return nil
	}
	for _, r := range records {
		line := fmt.Sprintf("%s  %s %s -> %s  %s",
			r.CreatedAt.Format("2006-01-02 15:04"), r.Amount, r.SourceCurrency, r.DestCurrency, r.Status)
		if r.ProviderTxID != "" {
			line += "  tx=" + r.ProviderTxID
		}
		if r.FailureReason != "" {
			line += "  (" + r.FailureReason + ")"
		}
		fmt.Println(line)
	}
	return nil
}
