package domain

import "strings"

// Kind classifies a currency as fiat money or a crypto asset.
type Kind string

const (
	KindFiat   Kind = "fiat"
	KindCrypto Kind = "crypto"
)

// Currency identifies a currency by its ticker code.
// Two currencies are the same iff their codes match; Kind and Name are metadata.
type Currency struct {
	Code string `json:"code"`
	Kind Kind   `json:"kind"`
	Name string `json:"name,omitempty"`
}

// Crypto builds a crypto currency from a ticker code.
func Crypto(code string) Currency {
	return Currency{Code: strings.ToUpper(code), Kind: KindCrypto}
}

// Fiat builds a fiat currency from a ticker code.
func Fiat(code string) Currency {
	return Currency{Code: strings.ToUpper(code), Kind: KindFiat}
}

// Equal compares currencies by code.
func (c Currency) Equal(other Currency) bool {
	return c.Code == other.Code
}

// IsCrypto reports whether the currency is a crypto asset.
func (c Currency) IsCrypto() bool {
	return c.Kind == KindCrypto
}

func (c Currency) String() string {
	return c.Code
}

// Pair is an ordered (source, destination) currency pair.
type Pair struct {
	From Currency `json:"from"`
	To   Currency `json:"to"`
}

// Equal compares pairs by currency codes, order-sensitive.
func (p Pair) Equal(other Pair) bool {
	return p.From.Equal(other.From) && p.To.Equal(other.To)
}

func (p Pair) String() string {
	return p.From.Code + "_" + p.To.Code
}

// knownCurrencies holds the currencies the app ships metadata for.
// Lookup falls back to a bare crypto currency for codes outside this list.
var knownCurrencies = []Currency{
	{Code: "BTC", Kind: KindCrypto, Name: "Bitcoin"},
	{Code: "ETH", Kind: KindCrypto, Name: "Ethereum"},
	{Code: "LTC", Kind: KindCrypto, Name: "Litecoin"},
	{Code: "BCH", Kind: KindCrypto, Name: "Bitcoin Cash"},
	{Code: "XRP", Kind: KindCrypto, Name: "Ripple"},
	{Code: "DOGE", Kind: KindCrypto, Name: "Dogecoin"},
	{Code: "USD", Kind: KindFiat, Name: "US Dollar"},
	{Code: "EUR", Kind: KindFiat, Name: "Euro"},
	{Code: "GBP", Kind: KindFiat, Name: "Pound Sterling"},
	{Code: "KRW", Kind: KindFiat, Name: "South Korean Won"},
}

// KnownCurrencies returns a copy of the shipped currency registry.
func KnownCurrencies() []Currency {
	out := make([]Currency, len(knownCurrencies))
	copy(out, knownCurrencies)
	return out
}

// LookupCurrency resolves a ticker code against the registry.
// Unknown codes resolve to a bare crypto currency with ok=false.
func LookupCurrency(code string) (Currency, bool) {
	code = strings.ToUpper(code)
	for _, c := range knownCurrencies {
		if c.Code == code {
			return c, true
		}
	}
	return Crypto(code), false
}
