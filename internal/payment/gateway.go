// Package payment talks to the hosted checkout provider.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
)

var ErrGatewayDisabled = errors.New("payment gateway is not configured")

// Keys are the gateway credentials in effect for a request
type Keys struct {
	PublicKey string
	SecretKey string
}

// Enabled reports whether both keys are present
func (k Keys) Enabled() bool {
	return k.PublicKey != "" && k.SecretKey != ""
}

type CheckoutRequest struct {
	AmountCents int64
	Currency    string
	Title       string
	Description string
}

// CheckoutSession is an externally hosted payment page
type CheckoutSession struct {
	ID  string
	URL string
}

type Gateway interface {
	CreateCheckout(ctx context.Context, keys Keys, req CheckoutRequest) (*CheckoutSession, error)
}

const omiseAPIEndpoint = "https://api.omise.co"

// OmiseGateway creates single-use Omise payment links
type OmiseGateway struct {
	apiURL string // пусто в проде, в тестах указывает на локальный сервер
}

func NewOmiseGateway() *OmiseGateway {
	return &OmiseGateway{}
}

func (g *OmiseGateway) client(keys Keys) (*omise.Client, error) {
	if !keys.Enabled() {
		return nil, ErrGatewayDisabled
	}
	c, err := omise.NewClient(keys.PublicKey, keys.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("create omise client: %w", err)
	}
	if g.apiURL != "" {
		c.Endpoints[omiseAPIEndpoint] = g.apiURL
	}
	return c, nil
}

// CreateCheckout creates a payment link and returns its hosted URL
func (g *OmiseGateway) CreateCheckout(ctx context.Context, keys Keys, req CheckoutRequest) (*CheckoutSession, error) {
	if req.AmountCents <= 0 || req.Currency == "" {
		return nil, errors.New("invalid checkout params")
	}

	c, err := g.client(keys)
	if err != nil {
		return nil, err
	}
	c.WithContext(ctx)

	link := &omise.Link{}
	op := &operations.CreateLink{
		Amount:      req.AmountCents,
		Currency:    req.Currency,
		Title:       req.Title,
		Description: req.Description,
		Multiple:    false,
	}
	if err := c.Do(link, op); err != nil {
		return nil, fmt.Errorf("create payment link: %w", err)
	}

	return &CheckoutSession{ID: link.ID, URL: link.PaymentURI}, nil
}
