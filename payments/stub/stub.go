package stub

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Stub provider:
// - Charge: waits the configured delay, then approves any supported method
// - the receipt is signed with HMAC SHA-256 over reference:amount:transaction

var (
	ErrUnknownMethod = errors.New("unknown payment method")
	ErrDeclined      = errors.New("declined")
)

var methods = map[string]bool{
	"card":       true,
	"upi":        true,
	"netbanking": true,
	"wallet":     true,
}

// DeclineReference makes the stub decline a charge, for exercising failure
// paths end to end.
const DeclineReference = "decline"

type Provider struct {
	secret string
	delay  time.Duration
}

type Result struct {
	TransactionId string
	Signature     string
}

func New(secret string, delay time.Duration) *Provider {
	return &Provider{secret: secret, delay: delay}
}

func (p *Provider) Name() string { return "stub" }

func (p *Provider) Charge(ctx context.Context, reference string, amount float64, method string) (Result, error) {
	if !methods[strings.ToLower(strings.TrimSpace(method))] {
		return Result{}, ErrUnknownMethod
	}

	if p.delay > 0 {
		timer := time.NewTimer(p.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-timer.C:
		}
	}

	if strings.Contains(reference, DeclineReference) {
		return Result{}, ErrDeclined
	}

	txId := uuid.NewString()
	return Result{
		TransactionId: txId,
		Signature:     p.Sign(reference, amount, txId),
	}, nil
}

func (p *Provider) Sign(reference string, amount float64, txId string) string {
	return HMACSHA256Hex(p.secret, fmt.Sprintf("%s:%.2f:%s", reference, amount, txId))
}

// Verify checks a receipt signature produced by Sign.
func (p *Provider) Verify(reference string, amount float64, txId, signature string) bool {
	return hmac.Equal([]byte(p.Sign(reference, amount, txId)), []byte(signature))
}

func HMACSHA256Hex(secret, msg string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(msg))
	return hex.EncodeToString(mac.Sum(nil))
}
