package services

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/chachabrian/tourhub-backend/pkg/utils"
)

// CardDetails are the raw card fields submitted at checkout.
type CardDetails struct {
	Number string `json:"number"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
}

// Validate applies the basic shape checks: 16+ digits and a 3+ digit cvv.
func (c *CardDetails) Validate() error {
	if c == nil || c.Number == "" || c.Expiry == "" || c.CVV == "" {
		return ErrInvalidCard
	}
	number := c.normalizedNumber()
	if len(number) < 16 || !allDigits(number) {
		return ErrInvalidCard
	}
	if len(c.CVV) < 3 || !allDigits(c.CVV) {
		return ErrInvalidCard
	}
	return nil
}

func (c *CardDetails) normalizedNumber() string {
	return strings.ReplaceAll(c.Number, " ", "")
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

type ChargeRequest struct {
	Amount          float64
	Currency        string
	Card            *CardDetails
	PaymentMethodID string
	Description     string
	Metadata        map[string]string
}

type ChargeResult struct {
	Reference    string `json:"paymentReference"`
	ClientSecret string `json:"clientSecret,omitempty"`
	Status       string `json:"status"`
}

// PaymentState is the provider-side state reported by Status.
type PaymentState string

const (
	PaymentStateSucceeded  PaymentState = "succeeded"
	PaymentStateProcessing PaymentState = "processing"
	PaymentStateCanceled   PaymentState = "canceled"
	PaymentStateUnknown    PaymentState = "unknown"
)

// PaymentGateway is the payment gate used by checkout and the admin payment tools.
// Charge returns ErrPaymentDeclined when the provider rejects the payment.
type PaymentGateway interface {
	PrepareIntent(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	Refund(ctx context.Context, reference string, amount float64) error
	Status(ctx context.Context, reference string) (PaymentState, error)
}

// declinedTestCards always fail, mirroring the provider test numbers.
var declinedTestCards = map[string]bool{
	"4000000000000002": true,
	"4000000000000069": true,
	"4000000000000127": true,
}

// SimulatedGateway approves charges with probability 1-failureRate.
type SimulatedGateway struct {
	failureRate float64
	mu          sync.Mutex
	rng         *rand.Rand
	now         func() time.Time
}

func NewSimulatedGateway(failureRate float64, rng *rand.Rand) *SimulatedGateway {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	}
	return &SimulatedGateway{failureRate: failureRate, rng: rng, now: time.Now}
}

func (g *SimulatedGateway) reference() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return utils.PaymentReference(g.now(), g.rng)
}

func (g *SimulatedGateway) roll() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64()
}

func (g *SimulatedGateway) checkCard(card *CardDetails) error {
	if card == nil {
		return nil
	}
	if declinedTestCards[card.normalizedNumber()] {
		return ErrPaymentDeclined
	}
	return nil
}

func (g *SimulatedGateway) PrepareIntent(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if err := g.checkCard(req.Card); err != nil {
		return nil, err
	}
	return &ChargeResult{Reference: g.reference(), Status: "validated"}, nil
}

func (g *SimulatedGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := g.checkCard(req.Card); err != nil {
		return nil, err
	}
	if g.roll() < g.failureRate {
		return nil, ErrPaymentDeclined
	}
	return &ChargeResult{Reference: g.reference(), Status: string(PaymentStateSucceeded)}, nil
}

func (g *SimulatedGateway) Refund(ctx context.Context, reference string, amount float64) error {
	if !strings.HasPrefix(reference, "PAY-") {
		return ErrNotFound
	}
	return nil
}

// Status reports every simulated reference as settled.
func (g *SimulatedGateway) Status(ctx context.Context, reference string) (PaymentState, error) {
	if !strings.HasPrefix(reference, "PAY-") {
		return PaymentStateUnknown, ErrNotFound
	}
	return PaymentStateSucceeded, nil
}
