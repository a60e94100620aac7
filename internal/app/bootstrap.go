package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"balance_go/internal/domain"
	"balance_go/internal/infra"
	"balance_go/internal/infra/storage"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config     *infra.Config
	Storage    *storage.Storage
	Downloader *infra.IconDownloader

	configPath string
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap(configPath string) *Bootstrap {
	if configPath == "" {
		configPath = "configs/config.yaml"
	}
	return &Bootstrap{configPath: configPath}
}

// Initialize performs core system initialization (config, logger, DB)
func (b *Bootstrap) Initialize() error {
	slog.Info("Bootstrapping Balance Go...")

	// 1. Load Config
	cfg, err := infra.LoadConfig(b.configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage()
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("Database initialized")

	// 4. Initialize Icon Downloader
	downloader, err := infra.NewIconDownloader()
	if err != nil {
		return err
	}
	b.Downloader = downloader

	if err := store.SaveSetting("last_run_version", cfg.App.Version); err != nil {
		slog.Warn("Failed to record app version", slog.Any("error", err))
	}

	return nil
}

// SyncAssets synchronizes currency metadata and icons in the background
func (b *Bootstrap) SyncAssets(ctx context.Context) {
	slog.Info("Starting asset synchronization...")

	currencies := domain.KnownCurrencies()
	for code := range b.Config.Transfer.Wallets {
		if c, known := domain.LookupCurrency(code); !known {
			currencies = append(currencies, c)
		}
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 5) // Limit concurrent downloads

	for _, currency := range currencies {
		wg.Add(1)
		go func(c domain.Currency) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				return
			case semaphore <- struct{}{}: // Acquire
			}
			defer func() { <-semaphore }() // Release

			info := &domain.CurrencyInfo{
				Code:      c.Code,
				Name:      c.Name,
				Kind:      string(c.Kind),
				IsActive:  true,
				UpdatedAt: time.Now(),
			}
			if info.Name == "" {
				info.Name = c.Code
			}

			// Preserve the cached icon path across syncs
			if existing, _ := b.Storage.GetCurrency(c.Code); existing != nil {
				info.IconPath = existing.IconPath
				info.LastSyncedAt = existing.LastSyncedAt
			}

			// Fiat currencies have no CDN icon
			if c.IsCrypto() && info.IconPath == "" {
				path, err := b.Downloader.DownloadIcon(c.Code)
				if err != nil {
					slog.Warn("Icon download failed", slog.String("code", c.Code), slog.Any("error", err))
				} else {
					info.IconPath = path
					info.LastSyncedAt = time.Now()
				}
			}

			if err := b.Storage.UpsertCurrency(info); err != nil {
				slog.Warn("Currency upsert failed", slog.String("code", c.Code), slog.Any("error", err))
			}
		}(currency)
	}

	wg.Wait()
	slog.Info("Asset synchronization complete", slog.Int("currencies", len(currencies)))
}
