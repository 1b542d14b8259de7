// Package billers simulates the external bill-payment network the
// bill-pay flow settles against. The directory hands out short-lived
// OAuth-style tokens, lists the payees customers can pay, and accepts
// payment notifications after the ledger has committed. The network is
// outside the atomic scope: a failed notification never unwinds a
// ledger entry.
package billers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
)

// Biller is one payee known to the payment network.
type Biller struct {
	Name          string `json:"name"`
	AccountNumber string `json:"accountNumber"`
	Category      string `json:"category"`
}

// Token is an OAuth access token for the payment network.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Directory simulates the payment network's API with OAuth.
type Directory struct {
	billers       []Biller
	clientID      string
	clientSecret  string
	token         *Token
	tokenEndpoint string // mock endpoint for token requests
}

// NewMockDirectory initializes the directory with mock credentials and
// a seed catalog of payees.
func NewMockDirectory() *Directory {
	return &Directory{
		billers: []Biller{
			{Name: "Electric Co", AccountNumber: "EL-884421", Category: "Utilities"},
			{Name: "City Water", AccountNumber: "WA-120955", Category: "Utilities"},
			{Name: "Metro Gas", AccountNumber: "GA-733018", Category: "Utilities"},
			{Name: "SkyLink Broadband", AccountNumber: "BB-450112", Category: "Internet"},
		},
		clientID:      "mock-client-id",
		clientSecret:  "mock-client-secret",
		tokenEndpoint: "https://mock.billpay.net/oauth/token",
	}
}

// GetToken simulates requesting an OAuth token.
func (d *Directory) GetToken() (string, error) {
	if d.token != nil && d.token.ExpiresAt.After(time.Now()) {
		return d.token.AccessToken, nil
	}

	if d.clientID != "mock-client-id" || d.clientSecret != "mock-client-secret" {
		return "", errors.New("invalid client credentials")
	}

	tokenID := fmt.Sprintf("token-%d", time.Now().UnixNano())
	d.token = &Token{
		AccessToken: tokenID,
		ExpiresAt:   time.Now().Add(1 * time.Hour),
	}
	return tokenID, nil
}

// validateToken simulates token validation.
func (d *Directory) validateToken(token string) error {
	if d.token == nil || d.token.AccessToken != token || d.token.ExpiresAt.Before(time.Now()) {
		return errors.New("invalid or expired token")
	}
	return nil
}

// List returns the payee catalog, requiring a valid token.
func (d *Directory) List(token string) ([]Biller, error) {
	if err := d.validateToken(token); err != nil {
		return nil, err
	}
	out := make([]Biller, len(d.billers))
	copy(out, d.billers)
	return out, nil
}

// NotifyPayment tells the network a bill payment has been settled on
// our side and returns the network's receipt id. Unknown payees are
// accepted: the ledger does not validate external recipients.
func (d *Directory) NotifyPayment(token, payeeName, accountNumber string, amount decimal.Decimal, referenceID string) (string, error) {
	if err := d.validateToken(token); err != nil {
		return "", err
	}
	if !amount.IsPositive() {
		return "", errors.New("amount must be positive")
	}
	receiptID := fmt.Sprintf("billpay-rcpt-%d", time.Now().UnixNano())
	log.Printf("bill payment notified: payee %s (acct %s) amount %s ref %s receipt %s",
		payeeName, accountNumber, amount.StringFixed(2), referenceID, receiptID)
	return receiptID, nil
}
