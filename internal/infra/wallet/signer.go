package wallet

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"
)

// Signer handles wallet daemon request authentication
type Signer struct {
	accessKey string
	secretKey string
}

// NewSigner creates a new Signer instance
func NewSigner(accessKey, secretKey string) *Signer {
	return &Signer{
		accessKey: accessKey,
		secretKey: secretKey,
	}
}

// GenerateHeaders creates the auth headers for a request.
// The signed payload is timestamp + method + path + body.
func (s *Signer) GenerateHeaders(method, path, body string) map[string]string {
	timestamp := fmt.Sprintf("%d", time.Now().UnixMilli())

	payload := timestamp + method + path + body
	sign := computeHmacSha256(payload, s.secretKey)

	return map[string]string{
		"ACCESS-KEY":       s.accessKey,
		"ACCESS-SIGN":      sign,
		"ACCESS-TIMESTAMP": timestamp,
		"Content-Type":     "application/json",
	}
}

func computeHmacSha256(message string, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
