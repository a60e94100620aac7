package domain

import "time"

// CurrencyInfo holds persisted metadata for a currency (icon cache, sync state).
type CurrencyInfo struct {
	Code         string    `gorm:"primaryKey" json:"code"`
	Name         string    `json:"name"`
	Kind         string    `json:"kind"`
	IconPath     string    `json:"icon_path"`
	IsActive     bool      `json:"is_active" gorm:"index"`
	LastSyncedAt time.Time `json:"last_synced_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Terminal states of a recorded transfer attempt.
const (
	TransferStatusCompleted = "completed"
	TransferStatusFailed    = "failed"
)

// TransferRecord is the audit row written after a transfer attempt reaches a
// terminal state. The core itself never persists; the app layer records the
// outcome here for history and downstream reporting.
type TransferRecord struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	SourceCurrency string          `gorm:"index" json:"source_currency"`
	DestCurrency   string          `gorm:"index" json:"dest_currency"`
	Amount         string          `json:"amount"`
	Rate           string          `json:"rate"`
	ProviderTxID   string          `gorm:"index" json:"provider_tx_id"`
	Type           TransactionType `json:"type"`
	Status         string          `gorm:"index" json:"status"`
	FailureReason  string          `json:"failure_reason"`
	CreatedAt      time.Time       `json:"created_at"`
}

// AppSetting is a user-level key/value setting.
type AppSetting struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
