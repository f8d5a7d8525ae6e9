// Package payments abstracts the payment step of a registration. Only a
// simulated provider exists; there is no gateway, ledger or reconciliation.
package payments

import (
	"context"
	"errors"
)

var (
	ErrUnsupportedMethod = errors.New("unsupported payment method")
	ErrDeclined          = errors.New("payment declined")
)

type Charge struct {
	// Reference ties the charge to what is being paid for, e.g. "event:user".
	Reference string
	Amount    float64
	Method    string
}

type Receipt struct {
	Provider      string  `json:"provider"`
	Reference     string  `json:"reference"`
	TransactionId string  `json:"transactionId"`
	Amount        float64 `json:"amount"`
	Signature     string  `json:"signature"`
}

type Provider interface {
	Name() string
	Charge(ctx context.Context, charge Charge) (Receipt, error)
	// Verify reports whether receipt was signed by this provider and is
	// unchanged since.
	Verify(receipt Receipt) bool
}
