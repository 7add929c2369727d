package services

import (
	"context"
	"sync"
	"time"

	"MusicStoreAPI/internal/model"

	"go.uber.org/zap"
)

const DefaultCountry = "France"

type checkoutEvent string

const (
	eventSubmitContact   checkoutEvent = "submit_contact"
	eventSubmitShipping  checkoutEvent = "submit_shipping"
	eventRedirectPayment checkoutEvent = "redirect_payment"
	eventCompletePayment checkoutEvent = "complete_payment"
)

// transition is one row of the checkout flow. The guard runs before the
// stage changes and blocks the move when it returns an error.
type transition struct {
	from  model.CheckoutStage
	event checkoutEvent
	to    model.CheckoutStage
	guard func(ctx context.Context, s *CheckoutService, c *Checkout) error
}

// The flow only moves forward. A back step is a new row here.
var checkoutTransitions = []transition{
	{from: model.StageContact, event: eventSubmitContact, to: model.StageShipping, guard: guardContact},
	{from: model.StageShipping, event: eventSubmitShipping, to: model.StagePayment, guard: guardAddresses},
	{from: model.StagePayment, event: eventRedirectPayment, to: model.StagePayment},
	{from: model.StagePayment, event: eventCompletePayment, to: model.StageSubmitted, guard: guardCard},
}

func findTransition(from model.CheckoutStage, ev checkoutEvent) (transition, bool) {
	for _, t := range checkoutTransitions {
		if t.from == from && t.event == ev {
			return t, true
		}
	}
	return transition{}, false
}

// Checkout is the state of one checkout session.
type Checkout struct {
	mu sync.Mutex

	stage         model.CheckoutStage
	items         []model.CartItem
	pricing       model.PriceBreakdown
	contact       model.ContactInfo
	billing       model.Address
	shipping      model.Address
	sameAsBilling bool
	method        model.PaymentMethod
	card          model.CardInfo
	order         *model.OrderRecord

	// guarded by CheckoutService.mu
	touched time.Time
}

type CheckoutService struct {
	Carts     *CartService
	Orders    *OrderService
	Payments  *PaymentService
	Validator EmailValidator
	Logger    *zap.Logger

	// ProcessingDelay stands in for the payment round trip of non-redirect methods.
	ProcessingDelay time.Duration
	Now             func() time.Time

	mu        sync.Mutex
	checkouts map[string]*Checkout
}

func NewCheckoutService(carts *CartService, orders *OrderService, payments *PaymentService,
	validator EmailValidator, delay time.Duration, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		Carts:           carts,
		Orders:          orders,
		Payments:        payments,
		Validator:       validator,
		Logger:          logger,
		ProcessingDelay: delay,
		Now:             time.Now,
		checkouts:       make(map[string]*Checkout),
	}
}

// Start opens a fresh checkout from the session's cart and coupon.
func (s *CheckoutService) Start(ctx context.Context, sessionID string) model.CheckoutView {
	items, coupon := s.Carts.Store(ctx, sessionID).Snapshot()

	c := &Checkout{
		stage:         model.StageContact,
		items:         items,
		pricing:       CalculatePrice(items, coupon.Applied),
		contact:       model.ContactInfo{Newsletter: true},
		billing:       model.Address{Country: DefaultCountry},
		shipping:      model.Address{Country: DefaultCountry},
		sameAsBilling: true,
		method:        model.PaymentMethodPaypal,
	}

	s.mu.Lock()
	c.touched = s.Now()
	s.checkouts[sessionID] = c
	s.mu.Unlock()

	s.Logger.Info("checkout started",
		zap.String("session_id", sessionID),
		zap.Int("items", len(items)),
		zap.Float64("total", c.pricing.Total),
	)
	return s.view(c)
}

func (s *CheckoutService) Get(sessionID string) (model.CheckoutView, error) {
	c, err := s.checkout(sessionID)
	if err != nil {
		return model.CheckoutView{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return s.view(c), nil
}

func (s *CheckoutService) SubmitContact(ctx context.Context, sessionID, email string, newsletter bool) (model.CheckoutView, error) {
	return s.with(sessionID, func(c *Checkout) error {
		if err := s.requireStage(c, model.StageContact); err != nil {
			return err
		}
		prev := c.contact
		c.contact = model.ContactInfo{Email: email, Newsletter: newsletter}
		if err := s.fire(ctx, c, eventSubmitContact); err != nil {
			c.contact = prev
			return err
		}
		return nil
	})
}

// UpdateBilling edits the billing draft. Switching country clears the region.
func (s *CheckoutService) UpdateBilling(sessionID string, addr model.Address) (model.CheckoutView, error) {
	return s.with(sessionID, func(c *Checkout) error {
		if err := s.requireStage(c, model.StageShipping); err != nil {
			return err
		}
		if addr.Country == "" {
			addr.Country = c.billing.Country
		}
		if addr.Country != c.billing.Country && addr.State == c.billing.State {
			addr.State = ""
		}
		c.billing = addr
		return nil
	})
}

func (s *CheckoutService) UpdateShipping(sessionID string, addr model.Address) (model.CheckoutView, error) {
	return s.with(sessionID, func(c *Checkout) error {
		if err := s.requireStage(c, model.StageShipping); err != nil {
			return err
		}
		c.shipping = addr
		return nil
	})
}

// SetSameAsBilling copies the billing draft into the shipping address when
// switched on. The copy is taken now; later billing edits do not follow it.
func (s *CheckoutService) SetSameAsBilling(sessionID string, same bool) (model.CheckoutView, error) {
	return s.with(sessionID, func(c *Checkout) error {
		if err := s.requireStage(c, model.StageShipping); err != nil {
			return err
		}
		c.sameAsBilling = same
		if same {
			c.shipping = c.billing
		}
		return nil
	})
}

// SubmitShipping records the billing address, and the shipping address when
// it differs from billing, then moves to payment.
func (s *CheckoutService) SubmitShipping(ctx context.Context, sessionID string, billing model.Address, shipping *model.Address) (model.CheckoutView, error) {
	return s.with(sessionID, func(c *Checkout) error {
		if err := s.requireStage(c, model.StageShipping); err != nil {
			return err
		}
		c.billing = billing
		if shipping != nil && !c.sameAsBilling {
			c.shipping = *shipping
		}
		return s.fire(ctx, c, eventSubmitShipping)
	})
}

// SelectPaymentMethod switches method. Unavailable methods are ignored and
// false is returned.
func (s *CheckoutService) SelectPaymentMethod(sessionID string, m model.PaymentMethod) (model.CheckoutView, bool, error) {
	var selected bool
	view, err := s.with(sessionID, func(c *Checkout) error {
		if err := s.requireStage(c, model.StagePayment); err != nil {
			return err
		}
		if !s.Payments.IsAvailable(m) {
			return nil
		}
		c.method = m
		selected = true
		return nil
	})
	return view, selected, err
}

// SubmitPayment builds the order and saves it as pending. For the manual
// redirect method it returns the payment link and stays on the payment
// stage. Any other method completes after ProcessingDelay: the order
// becomes the last order and the cart is emptied.
func (s *CheckoutService) SubmitPayment(ctx context.Context, sessionID string, card *model.CardInfo) (*model.PaymentResult, error) {
	c, err := s.checkout(sessionID)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := s.requireStage(c, model.StagePayment); err != nil {
		return nil, err
	}
	if card != nil {
		c.card = *card
	}

	if IsManualRedirect(c.method) {
		return s.redirectPayment(ctx, sessionID, c)
	}
	return s.completePayment(ctx, sessionID, c)
}

func (s *CheckoutService) redirectPayment(ctx context.Context, sessionID string, c *Checkout) (*model.PaymentResult, error) {
	order := s.buildOrder(c)
	order.Status = model.OrderStatusRedirected
	order.PaypalLink = s.Payments.RedirectURL(c.pricing.Total)

	s.Orders.SavePending(ctx, sessionID, order)
	if err := s.fire(ctx, c, eventRedirectPayment); err != nil {
		return nil, err
	}
	c.order = &order

	s.Logger.Info("redirecting to manual payment",
		zap.String("session_id", sessionID),
		zap.String("order_number", order.OrderNumber),
		zap.String("link", order.PaypalLink),
	)
	return &model.PaymentResult{Order: order.Clone(), Stage: c.stage, RedirectURL: order.PaypalLink}, nil
}

func (s *CheckoutService) completePayment(ctx context.Context, sessionID string, c *Checkout) (*model.PaymentResult, error) {
	if _, ok := findTransition(c.stage, eventCompletePayment); !ok {
		return nil, ErrInvalidTransition
	}
	if err := guardCard(ctx, s, c); err != nil {
		return nil, err
	}

	// once the order is pending it must settle; a dropped client does not abort it
	ctx = context.WithoutCancel(ctx)

	order := s.buildOrder(c)
	order.Status = model.OrderStatusProcessing
	s.Orders.SavePending(ctx, sessionID, order)

	if s.ProcessingDelay > 0 {
		time.Sleep(s.ProcessingDelay)
	}

	if err := s.fire(ctx, c, eventCompletePayment); err != nil {
		return nil, err
	}
	order.Status = model.OrderStatusCompleted
	c.order = &order

	s.Orders.SettleOrder(ctx, sessionID, EventOrderCompleted, order)
	s.Orders.HandOff(sessionID, order)
	s.Carts.Store(ctx, sessionID).Clear(ctx)

	s.Logger.Info("order completed",
		zap.String("session_id", sessionID),
		zap.String("order_number", order.OrderNumber),
		zap.String("method", string(order.PaymentMethod)),
	)
	return &model.PaymentResult{Order: order.Clone(), Stage: c.stage}, nil
}

func (s *CheckoutService) buildOrder(c *Checkout) model.OrderRecord {
	return BuildOrder(s.Now(), c.items, c.pricing.Total, c.method, c.contact, c.billing, c.shipping)
}

// fire moves c along the transition registered for ev.
func (s *CheckoutService) fire(ctx context.Context, c *Checkout, ev checkoutEvent) error {
	t, ok := findTransition(c.stage, ev)
	if !ok {
		return ErrInvalidTransition
	}
	if t.guard != nil {
		if err := t.guard(ctx, s, c); err != nil {
			return err
		}
	}
	c.stage = t.to
	return nil
}

func (s *CheckoutService) requireStage(c *Checkout, stage model.CheckoutStage) error {
	if c.stage != stage {
		return ErrInvalidTransition
	}
	return nil
}

func (s *CheckoutService) checkout(sessionID string) (*Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.checkouts[sessionID]
	if !ok {
		return nil, ErrNoCheckout
	}
	c.touched = s.Now()
	return c, nil
}

// Sweep drops checkouts not used since cutoff.
func (s *CheckoutService) Sweep(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for sid, c := range s.checkouts {
		if c.touched.Before(cutoff) {
			delete(s.checkouts, sid)
			n++
		}
	}
	return n
}

func (s *CheckoutService) with(sessionID string, fn func(c *Checkout) error) (model.CheckoutView, error) {
	c, err := s.checkout(sessionID)
	if err != nil {
		return model.CheckoutView{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := fn(c); err != nil {
		return s.view(c), err
	}
	return s.view(c), nil
}

func (s *CheckoutService) view(c *Checkout) model.CheckoutView {
	items := make([]model.CartItem, len(c.items))
	for i, it := range c.items {
		items[i] = it.Clone()
	}
	v := model.CheckoutView{
		Stage:           c.stage,
		Items:           items,
		Pricing:         c.pricing,
		Contact:         c.contact,
		BillingAddress:  c.billing,
		ShippingAddress: c.shipping,
		SameAsBilling:   c.sameAsBilling,
		PaymentMethod:   c.method,
		PaymentOptions:  s.Payments.Options(),
	}
	if c.order != nil {
		o := c.order.Clone()
		v.Order = &o
	}
	return v
}

func guardContact(ctx context.Context, s *CheckoutService, c *Checkout) error {
	if err := validateEmailFormat(c.contact.Email); err != nil {
		return &ValidationError{Fields: map[string]string{"email": err.Error()}}
	}
	if s.Validator != nil {
		if err := s.Validator.Validate(ctx, c.contact.Email); err != nil {
			return &ValidationError{Fields: map[string]string{"email": err.Error()}}
		}
	}
	return nil
}

func guardAddresses(_ context.Context, _ *CheckoutService, c *Checkout) error {
	v := &ValidationError{}
	b := c.billing
	requireField(v, "billing.country", b.Country)
	requireField(v, "billing.firstName", b.FirstName)
	requireField(v, "billing.lastName", b.LastName)
	requireField(v, "billing.address", b.Address)
	requireField(v, "billing.city", b.City)
	requireField(v, "billing.state", b.State)
	requireField(v, "billing.zipCode", b.ZipCode)
	if !c.sameAsBilling {
		requireField(v, "shipping.address", c.shipping.Address)
	}
	return v.orNil()
}

func guardCard(_ context.Context, _ *CheckoutService, c *Checkout) error {
	if c.method != model.PaymentMethodCard {
		return nil
	}
	v := &ValidationError{}
	requireField(v, "card.number", c.card.Number)
	requireField(v, "card.name", c.card.Name)
	requireField(v, "card.expiry", c.card.Expiry)
	requireField(v, "card.cvv", c.card.CVV)
	return v.orNil()
}
