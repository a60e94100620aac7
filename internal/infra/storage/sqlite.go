package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"balance_go/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage defines the interface for data persistence
type Storage struct {
	db *gorm.DB
}

// NewStorage creates a new SQLite storage instance at the default app path
func NewStorage() (*Storage, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve DB path: %w", err)
	}

	// Ensure directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto Migration
	if err := db.AutoMigrate(&domain.CurrencyInfo{}, &domain.TransferRecord{}, &domain.AppSetting{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// getDBPath resolves the database file path based on OS
func getDBPath() (string, error) {
	var configDir string
	var err error

	if runtime.GOOS == "windows" {
		configDir = os.Getenv("LOCALAPPDATA")
		if configDir == "" {
			configDir, err = os.UserConfigDir()
		}
	} else {
		configDir, err = os.UserConfigDir()
	}

	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "BalanceGo", "data", "balancego.db"), nil
}

// ======================================================================================
// Currency Operations
// ======================================================================================

// UpsertCurrency creates or updates currency metadata
func (s *Storage) UpsertCurrency(info *domain.CurrencyInfo) error {
	return s.db.Save(info).Error
}

// GetCurrency retrieves currency metadata by code
func (s *Storage) GetCurrency(code string) (*domain.CurrencyInfo, error) {
	var info domain.CurrencyInfo
	err := s.db.First(&info, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Not found is not an error
	}
	return &info, err
}

// GetAllCurrencies retrieves all currencies
func (s *Storage) GetAllCurrencies() ([]domain.CurrencyInfo, error) {
	var infos []domain.CurrencyInfo
	err := s.db.Find(&infos).Error
	return infos, err
}

// ======================================================================================
// Transfer Audit Operations
// ======================================================================================

// SaveTransfer appends one terminal transfer outcome to the audit ledger
func (s *Storage) SaveTransfer(record *domain.TransferRecord) error {
	return s.db.Create(record).Error
}

// ListTransfers returns the most recent transfer records, newest first
func (s *Storage) ListTransfers(limit int) ([]domain.TransferRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []domain.TransferRecord
	err := s.db.Order("created_at desc").Limit(limit).Find(&records).Error
	return records, err
}

// GetTransferByProviderTxID retrieves one record by provider transaction id
func (s *Storage) GetTransferByProviderTxID(txID string) (*domain.TransferRecord, error) {
	var record domain.TransferRecord
	err := s.db.First(&record, "provider_tx_id = ?", txID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &record, err
}

// ======================================================================================
// Settings Operations
// ======================================================================================

// SaveSetting saves a user setting
func (s *Storage) SaveSetting(key, value string) error {
	return s.db.Save(&domain.AppSetting{Key: key, Value: value}).Error
}

// GetSetting retrieves a user setting, empty when unset
func (s *Storage) GetSetting(key string) (string, error) {
	var setting domain.AppSetting
	err := s.db.First(&setting, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	return setting.Value, err
}
