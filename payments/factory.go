package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventease/payments/stub"
)

func NewProvider(name, secret string, delay time.Duration) (Provider, error) {
	switch name {
	case "stub":
		return stubAdapter{stub.New(secret, delay)}, nil
	default:
		return nil, fmt.Errorf("unknown payment provider: %s", name)
	}
}

// stubAdapter maps the stub's own types onto the package interface so the
// stub package does not import its parent.
type stubAdapter struct {
	p *stub.Provider
}

func (a stubAdapter) Name() string { return a.p.Name() }

func (a stubAdapter) Verify(r Receipt) bool {
	return r.Provider == a.p.Name() && a.p.Verify(r.Reference, r.Amount, r.TransactionId, r.Signature)
}

func (a stubAdapter) Charge(ctx context.Context, charge Charge) (Receipt, error) {
	res, err := a.p.Charge(ctx, charge.Reference, charge.Amount, charge.Method)
	switch {
	case errors.Is(err, stub.ErrUnknownMethod):
		return Receipt{}, fmt.Errorf("%w: %q", ErrUnsupportedMethod, charge.Method)
	case errors.Is(err, stub.ErrDeclined):
		return Receipt{}, ErrDeclined
	case err != nil:
		return Receipt{}, err
	}
	return Receipt{
		Provider:      a.p.Name(),
		Reference:     charge.Reference,
		TransactionId: res.TransactionId,
		Amount:        charge.Amount,
		Signature:     res.Signature,
	}, nil
}
