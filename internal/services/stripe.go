package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/chachabrian/tourhub-backend/pkg/utils"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

type stripeIntents interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type stripeRefunds interface {
	New(params *stripe.RefundParams) (*stripe.Refund, error)
}

// StripeGateway charges real cards through Stripe PaymentIntents.
// The reference stored on bookings is the PaymentIntent id.
type StripeGateway struct {
	intents  stripeIntents
	refunds  stripeRefunds
	currency string
}

func NewStripeGateway(secretKey, currency string) *StripeGateway {
	sc := client.New(secretKey, nil)
	return &StripeGateway{intents: sc.PaymentIntents, refunds: sc.Refunds, currency: currency}
}

func (g *StripeGateway) intentParams(ctx context.Context, req ChargeRequest) *stripe.PaymentIntentParams {
	currency := req.Currency
	if currency == "" {
		currency = g.currency
	}
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(utils.ToCents(req.Amount)),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx
	return params
}

func (g *StripeGateway) PrepareIntent(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	pi, err := g.intents.New(g.intentParams(ctx, req))
	if err != nil {
		return nil, translateStripeError(err)
	}
	return &ChargeResult{Reference: pi.ID, ClientSecret: pi.ClientSecret, Status: "validated"}, nil
}

func (g *StripeGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if req.PaymentMethodID == "" {
		return nil, invalid("paymentMethodId", "paymentMethodId is required")
	}
	params := g.intentParams(ctx, req)
	params.PaymentMethod = stripe.String(req.PaymentMethodID)
	params.Confirm = stripe.Bool(true)

	pi, err := g.intents.New(params)
	if err != nil {
		return nil, translateStripeError(err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, fmt.Errorf("%w: payment intent status %s", ErrPaymentDeclined, pi.Status)
	}
	return &ChargeResult{Reference: pi.ID, Status: string(PaymentStateSucceeded)}, nil
}

func (g *StripeGateway) Refund(ctx context.Context, reference string, amount float64) error {
	params := &stripe.RefundParams{PaymentIntent: stripe.String(reference)}
	if amount > 0 {
		params.Amount = stripe.Int64(utils.ToCents(amount))
	}
	params.Context = ctx
	if _, err := g.refunds.New(params); err != nil {
		return fmt.Errorf("%w: %v", ErrRefundFailed, err)
	}
	return nil
}

func (g *StripeGateway) Status(ctx context.Context, reference string) (PaymentState, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := g.intents.Get(reference, params)
	if err != nil {
		return PaymentStateUnknown, translateStripeError(err)
	}
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return PaymentStateSucceeded, nil
	case stripe.PaymentIntentStatusCanceled:
		return PaymentStateCanceled, nil
	case stripe.PaymentIntentStatusProcessing, stripe.PaymentIntentStatusRequiresCapture:
		return PaymentStateProcessing, nil
	default:
		return PaymentStateUnknown, nil
	}
}

func translateStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch stripeErr.Type {
		case stripe.ErrorTypeCard:
			return fmt.Errorf("%w: %s", ErrPaymentDeclined, stripeErr.Msg)
		case stripe.ErrorTypeInvalidRequest:
			if stripeErr.Code == stripe.ErrorCodeResourceMissing {
				return ErrNotFound
			}
		}
	}
	return fmt.Errorf("%w: %v", ErrPaymentProvider, err)
}
