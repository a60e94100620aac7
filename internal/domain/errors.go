package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// The transfer core surfaces failures through this closed taxonomy only.
// Adapters normalize raw transport outcomes through Classify so the
// orchestrator never branches on transport details.

// ValidationError reports a malformed request or a misused operator.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// ConnectivityError reports that no HTTP response arrived at all
// (offline, refused connection, timeout).
type ConnectivityError struct {
	Err error
}

func (e *ConnectivityError) Error() string {
	if e.Err != nil {
		return "no connection: " + e.Err.Error()
	}
	return "no connection"
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// ClientError reports a 4xx response from a collaborator.
type ClientError struct {
	StatusCode int
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("client error: status %d", e.StatusCode)
}

// ServerError reports a 5xx response from a collaborator.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: status %d", e.StatusCode)
}

// MalformedResponseError reports a response that arrived but could not be
// interpreted as the expected structured data.
type MalformedResponseError struct {
	Detail string
}

func (e *MalformedResponseError) Error() string {
	if e.Detail != "" {
		return "malformed response: " + e.Detail
	}
	return "malformed response"
}

// UnsupportedPairError reports that the liquidity provider does not trade
// the requested currency pair.
type UnsupportedPairError struct {
	Pair Pair
}

func (e *UnsupportedPairError) Error() string {
	return "unsupported pair: " + e.Pair.String()
}

// AmountOutOfRangeError reports a requested amount outside the provider's
// [min, max] bounds. Raised before any funds move.
type AmountOutOfRangeError struct {
	Amount decimal.Decimal
	Min    decimal.Decimal
	Max    decimal.Decimal
}

func (e *AmountOutOfRangeError) Error() string {
	return fmt.Sprintf("amount %s outside range [%s, %s]", e.Amount, e.Min, e.Max)
}

// QuoteExpiredError reports a quote used past its expiry.
type QuoteExpiredError struct {
	ExpiredAt time.Time
}

func (e *QuoteExpiredError) Error() string {
	return "quote expired at " + e.ExpiredAt.Format(time.RFC3339)
}

// WithdrawalRejectedError reports that the source account declined or failed
// to withdraw. A non-empty ProviderTxID means the exchange order was already
// submitted and is now orphaned: funds have not moved.
type WithdrawalRejectedError struct {
	ProviderTxID string
	Err          error
}

func (e *WithdrawalRejectedError) Error() string {
	msg := "withdrawal rejected"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.ProviderTxID != "" {
		msg += " (provider order " + e.ProviderTxID + " orphaned)"
	}
	return msg
}

func (e *WithdrawalRejectedError) Unwrap() error {
	return e.Err
}

// OrderOrphaned reports whether a provider order was submitted before the
// withdrawal failed.
func (e *WithdrawalRejectedError) OrderOrphaned() bool {
	return e.ProviderTxID != ""
}

// NoRouteError reports that no operator variant can serve a currency pair.
type NoRouteError struct {
	From Currency
	To   Currency
}

func (e *NoRouteError) Error() string {
	return "no transfer route from " + e.From.Code + " to " + e.To.Code
}

// Classify maps a transport outcome onto the closed taxonomy.
// transportErr is the error from issuing the request (nil once a response
// arrived), statusCode the HTTP status of that response, and decoded whether
// the body parsed into the expected shape. Returns nil for a fully
// successful outcome.
//
// Any failure to get a response at all counts as connectivity loss, covering
// both "offline" and "timed out" in one bucket.
func Classify(transportErr error, statusCode int, decoded bool) error {
	if transportErr != nil {
		return &ConnectivityError{Err: transportErr}
	}

	switch {
	case statusCode >= 400 && statusCode <= 499:
		return &ClientError{StatusCode: statusCode}
	case statusCode >= 500 && statusCode <= 599:
		return &ServerError{StatusCode: statusCode}
	}

	if !decoded {
		return &MalformedResponseError{}
	}
	return nil
}
