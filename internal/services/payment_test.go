package services

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

func TestCardDetails_Validate(t *testing.T) {
	tests := []struct {
		name  string
		card  *CardDetails
		valid bool
	}{
		{"valid with spaces", &CardDetails{Number: "4242 4242 4242 4242", Expiry: "12/30", CVV: "123"}, true},
		{"nil", nil, false},
		{"short number", &CardDetails{Number: "4242 4242 4242", Expiry: "12/30", CVV: "123"}, false},
		{"letters", &CardDetails{Number: "4242abcd42424242", Expiry: "12/30", CVV: "123"}, false},
		{"short cvv", &CardDetails{Number: "4242424242424242", Expiry: "12/30", CVV: "12"}, false},
		{"missing expiry", &CardDetails{Number: "4242424242424242", CVV: "123"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.card.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidCard)
			}
		})
	}
}

func TestSimulatedGateway_Charge(t *testing.T) {
	card := &CardDetails{Number: "4242424242424242", Expiry: "12/30", CVV: "123"}

	always := NewSimulatedGateway(0, rand.New(rand.NewPCG(1, 2)))
	for i := 0; i < 20; i++ {
		res, err := always.Charge(context.Background(), ChargeRequest{Amount: 10, Card: card})
		require.NoError(t, err)
		assert.Regexp(t, paymentRefPattern, res.Reference)
	}

	never := NewSimulatedGateway(1, rand.New(rand.NewPCG(1, 2)))
	_, err := never.Charge(context.Background(), ChargeRequest{Amount: 10, Card: card})
	assert.ErrorIs(t, err, ErrPaymentDeclined)

	_, err = always.Charge(context.Background(), ChargeRequest{Amount: 10, Card: &CardDetails{Number: "4000 0000 0000 0002", Expiry: "1/30", CVV: "123"}})
	assert.ErrorIs(t, err, ErrPaymentDeclined, "test decline card")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = always.Charge(ctx, ChargeRequest{Amount: 10, Card: card})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSimulatedGateway_FailureRateIsApproximate(t *testing.T) {
	g := NewSimulatedGateway(0.05, rand.New(rand.NewPCG(42, 7)))
	card := &CardDetails{Number: "4242424242424242", Expiry: "12/30", CVV: "123"}

	declined := 0
	for i := 0; i < 2000; i++ {
		if _, err := g.Charge(context.Background(), ChargeRequest{Amount: 1, Card: card}); err != nil {
			declined++
		}
	}
	assert.InDelta(t, 100, declined, 40)
}

func TestSimulatedGateway_RefundAndStatus(t *testing.T) {
	g := NewSimulatedGateway(0, nil)

	assert.NoError(t, g.Refund(context.Background(), "PAY-1-abcdefghi", 10))
	assert.ErrorIs(t, g.Refund(context.Background(), "pi_123", 10), ErrNotFound)

	state, err := g.Status(context.Background(), "PAY-1-abcdefghi")
	require.NoError(t, err)
	assert.Equal(t, PaymentStateSucceeded, state)
}

type fakeIntents struct {
	newFn func(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	getFn func(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	last  *stripe.PaymentIntentParams
}

func (f *fakeIntents) New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	f.last = params
	return f.newFn(params)
}

func (f *fakeIntents) Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return f.getFn(id, params)
}

type fakeRefunds struct {
	last *stripe.RefundParams
	err  error
}

func (f *fakeRefunds) New(params *stripe.RefundParams) (*stripe.Refund, error) {
	f.last = params
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.Refund{ID: "re_1"}, nil
}

func TestStripeGateway_Charge(t *testing.T) {
	intents := &fakeIntents{newFn: func(*stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
		return &stripe.PaymentIntent{ID: "pi_123", Status: stripe.PaymentIntentStatusSucceeded}, nil
	}}
	g := &StripeGateway{intents: intents, refunds: &fakeRefunds{}, currency: "usd"}

	_, err := g.Charge(context.Background(), ChargeRequest{Amount: 10})
	assert.ErrorIs(t, err, ErrInvalidInput, "payment method required")

	res, err := g.Charge(context.Background(), ChargeRequest{Amount: 199.99, PaymentMethodID: "pm_card_visa"})
	require.NoError(t, err)
	assert.Equal(t, "pi_123", res.Reference)
	assert.Equal(t, int64(19999), *intents.last.Amount)
	assert.Equal(t, "usd", *intents.last.Currency)
	assert.True(t, *intents.last.Confirm)
}

func TestStripeGateway_TranslatesErrors(t *testing.T) {
	intents := &fakeIntents{newFn: func(*stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
		return nil, &stripe.Error{Type: stripe.ErrorTypeCard, Msg: "Your card was declined."}
	}}
	g := &StripeGateway{intents: intents, refunds: &fakeRefunds{}, currency: "usd"}

	_, err := g.Charge(context.Background(), ChargeRequest{Amount: 10, PaymentMethodID: "pm_x"})
	assert.ErrorIs(t, err, ErrPaymentDeclined)

	intents.newFn = func(*stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
		return &stripe.PaymentIntent{ID: "pi_9", Status: stripe.PaymentIntentStatusRequiresAction}, nil
	}
	_, err = g.Charge(context.Background(), ChargeRequest{Amount: 10, PaymentMethodID: "pm_x"})
	assert.ErrorIs(t, err, ErrPaymentDeclined)

	intents.getFn = func(string, *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
		return nil, &stripe.Error{Type: stripe.ErrorTypeInvalidRequest, Code: stripe.ErrorCodeResourceMissing}
	}
	_, err = g.Status(context.Background(), "pi_missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, translateStripeError(errors.New("timeout")), ErrPaymentProvider)
}

func TestStripeGateway_RefundAndStatus(t *testing.T) {
	refunds := &fakeRefunds{}
	intents := &fakeIntents{getFn: func(id string, _ *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
		return &stripe.PaymentIntent{ID: id, Status: stripe.PaymentIntentStatusCanceled}, nil
	}}
	g := &StripeGateway{intents: intents, refunds: refunds, currency: "usd"}

	require.NoError(t, g.Refund(context.Background(), "pi_1", 12.5))
	assert.Equal(t, "pi_1", *refunds.last.PaymentIntent)
	assert.Equal(t, int64(1250), *refunds.last.Amount)

	state, err := g.Status(context.Background(), "pi_1")
	require.NoError(t, err)
	assert.Equal(t, PaymentStateCanceled, state)

	refunds.err = errors.New("nope")
	assert.ErrorIs(t, g.Refund(context.Background(), "pi_1", 1), ErrRefundFailed)
}
