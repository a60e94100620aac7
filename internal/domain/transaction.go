package domain

// TransactionType classifies a ledger event for downstream reporting.
// The set is closed; the transfer core only tags its outgoing operations.
type TransactionType string

const (
	TxTypeUnknown            TransactionType = "unknown"
	TxTypeDeposit            TransactionType = "deposit"
	TxTypeWithdrawal         TransactionType = "withdrawal"
	TxTypeTrade              TransactionType = "trade"
	TxTypeMargin             TransactionType = "margin"
	TxTypeFee                TransactionType = "fee"
	TxTypeMatch              TransactionType = "match"
	TxTypeRebate             TransactionType = "rebate"
	TxTypeVault              TransactionType = "vault"
	TxTypeSend               TransactionType = "send"
	TxTypeRequest            TransactionType = "request"
	TxTypeTransfer           TransactionType = "transfer"
	TxTypeBuy                TransactionType = "buy"
	TxTypeSell               TransactionType = "sell"
	TxTypeFiatDeposit        TransactionType = "fiat_deposit"
	TxTypeFiatWithdrawal     TransactionType = "fiat_withdrawal"
	TxTypeExchangeDeposit    TransactionType = "exchange_deposit"
	TxTypeExchangeWithdrawal TransactionType = "exchange_withdrawal"
	TxTypeVaultWithdrawal    TransactionType = "vault_withdrawal"
)

var validTransactionTypes = map[TransactionType]struct{}{
	TxTypeUnknown: {}, TxTypeDeposit: {}, TxTypeWithdrawal: {},
	TxTypeTrade: {}, TxTypeMargin: {}, TxTypeFee: {}, TxTypeMatch: {},
	TxTypeRebate: {}, TxTypeVault: {}, TxTypeSend: {}, TxTypeRequest: {},
	TxTypeTransfer: {}, TxTypeBuy: {}, TxTypeSell: {},
	TxTypeFiatDeposit: {}, TxTypeFiatWithdrawal: {},
	TxTypeExchangeDeposit: {}, TxTypeExchangeWithdrawal: {},
	TxTypeVaultWithdrawal: {},
}

// Valid reports whether t is a member of the closed enumeration.
func (t TransactionType) Valid() bool {
	_, ok := validTransactionTypes[t]
	return ok
}
