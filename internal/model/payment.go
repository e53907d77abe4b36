package model

import (
	"strconv"
	"time"
)

const (
	PaymentStatusCreated = "created"
	PaymentStatusPaid    = "paid"
)

const DefaultCurrency = "usd"

type Payment struct {
	ID           int64     `json:"id"`
	EnrollmentID int64     `json:"enrollment"`
	AmountCents  int       `json:"amount_cents"`
	Currency     string    `json:"currency"`
	ExternalRef  string    `json:"external_ref"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`

	Enrollment *Enrollment `json:"-"`
}

// MockPaymentRef returns the synthetic reference used by the sample payment path
func MockPaymentRef(enrollmentID int64) string {
	return "mock_" + strconv.FormatInt(enrollmentID, 10)
}

// SiteSetting holds gateway credentials managed at runtime
type SiteSetting struct {
	ID               int64
	Name             string
	GatewayPublicKey string
	GatewaySecretKey string
	WebhookSecret    string
	IsActive         bool
}
