package stripe

import (
	"errors"
	"strings"

	"arvista/config"

	gostripe "github.com/stripe/stripe-go/v75"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
)

var ErrNotConfigured = errors.New("stripe is not configured")

type CheckoutLine struct {
	Name       string
	UnitAmount int64 // cents
	Quantity   int64
}

type CheckoutRequest struct {
	OrderID       string
	OrderNumber   string
	Currency      string
	CustomerEmail string
	Lines         []CheckoutLine
	ShippingCents int64
	SuccessURL    string
	CancelURL     string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// CreateCheckoutSession opens a one-off payment session for an order. The
// order id travels as client reference and metadata so the webhook can find it.
func CreateCheckoutSession(req CheckoutRequest) (*CheckoutSession, error) {
	if config.STRIPE_SECRET_KEY == "" {
		return nil, ErrNotConfigured
	}
	gostripe.Key = config.STRIPE_SECRET_KEY

	currency := strings.ToLower(req.Currency)
	items := make([]*gostripe.CheckoutSessionLineItemParams, 0, len(req.Lines)+1)
	for _, l := range req.Lines {
		items = append(items, lineItem(currency, l))
	}
	if req.ShippingCents > 0 {
		items = append(items, lineItem(currency, CheckoutLine{Name: "Shipping", UnitAmount: req.ShippingCents, Quantity: 1}))
	}

	params := &gostripe.CheckoutSessionParams{
		Mode:              gostripe.String(string(gostripe.CheckoutSessionModePayment)),
		SuccessURL:        gostripe.String(req.SuccessURL),
		CancelURL:         gostripe.String(req.CancelURL),
		LineItems:         items,
		ClientReferenceID: gostripe.String(req.OrderID),
		PaymentIntentData: &gostripe.CheckoutSessionPaymentIntentDataParams{
			Description: gostripe.String("Order " + req.OrderNumber),
			Metadata:    map[string]string{"order_id": req.OrderID},
		},
	}
	params.AddMetadata("order_id", req.OrderID)
	params.AddMetadata("order_number", req.OrderNumber)
	if req.CustomerEmail != "" {
		params.CustomerEmail = gostripe.String(req.CustomerEmail)
	}

	s, err := checkoutsession.New(params)
	if err != nil {
		return nil, err
	}
	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func lineItem(currency string, l CheckoutLine) *gostripe.CheckoutSessionLineItemParams {
	return &gostripe.CheckoutSessionLineItemParams{
		PriceData: &gostripe.CheckoutSessionLineItemPriceDataParams{
			Currency:   gostripe.String(currency),
			UnitAmount: gostripe.Int64(l.UnitAmount),
			ProductData: &gostripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: gostripe.String(l.Name),
			},
		},
		Quantity: gostripe.Int64(l.Quantity),
	}
}
