package features

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"MusicStoreAPI/external/paypal"
	"MusicStoreAPI/internal/model"
	"MusicStoreAPI/internal/repository"
	"MusicStoreAPI/internal/services"

	"github.com/cucumber/godog"
	"go.uber.org/zap"
)

const sessionID = "feature-session"

type checkoutTestContext struct {
	carts        *services.CartService
	checkout     *services.CheckoutService
	confirmation *services.ConfirmationService

	payment *model.PaymentResult
	order   *model.OrderRecord
	err     error
}

func (c *checkoutTestContext) reset() {
	logger := zap.NewNop()
	slots := repository.NewMemorySlotRepository()
	orders := services.NewOrderService(slots, services.NewLogPublisher(logger), logger)
	payments := services.NewPaymentService(paypal.NewLinkBuilder("https://www.paypal.me", "Fxstudio712"))

	c.carts = services.NewCartService(slots, logger)
	c.checkout = services.NewCheckoutService(c.carts, orders, payments, services.NewLocalValidator(), 0, logger)
	c.confirmation = services.NewConfirmationService(orders, &services.LogNotifier{Logger: logger}, logger)
	c.payment = nil
	c.order = nil
	c.err = nil
}

func (c *checkoutTestContext) anEmptyCart() error {
	c.reset()
	return nil
}

func (c *checkoutTestContext) iAddOfPricedAtWithStock(qty int, id string, price float64, stock int) error {
	ctx := context.Background()
	c.carts.Store(ctx, sessionID).Add(ctx, model.Product{
		ID:       model.ProductID(id),
		Name:     id,
		Price:    price,
		MaxStock: &stock,
	}, qty)
	return nil
}

func (c *checkoutTestContext) iApplyTheCoupon(code string) error {
	c.carts.Store(context.Background(), sessionID).ApplyCoupon(code)
	return nil
}

func (c *checkoutTestContext) theAmountIs(field, want string) error {
	p := c.carts.Get(context.Background(), sessionID).Pricing
	amounts := map[string]float64{
		"subtotal": p.Subtotal,
		"discount": p.Discount,
		"shipping": p.Shipping,
		"tax":      p.Tax,
		"total":    p.Total,
	}
	if got := services.FormatAmount(amounts[field]); got != want {
		return fmt.Errorf("expected %s %s, got %s", field, want, got)
	}
	return nil
}

func (c *checkoutTestContext) theCouponErrorIs(msg string) error {
	if got := c.carts.Get(context.Background(), sessionID).Coupon.Error; got != msg {
		return fmt.Errorf("expected coupon error %q, got %q", msg, got)
	}
	return nil
}

func (c *checkoutTestContext) theQuantityOfIs(id string, want int) error {
	for _, it := range c.carts.Store(context.Background(), sessionID).Items() {
		if it.ProductID == model.ProductID(id) {
			if it.Quantity != want {
				return fmt.Errorf("expected quantity %d, got %d", want, it.Quantity)
			}
			return nil
		}
	}
	return fmt.Errorf("product %q not in cart", id)
}

func (c *checkoutTestContext) theCartHasItems(n int) error {
	if got := len(c.carts.Store(context.Background(), sessionID).Items()); got != n {
		return fmt.Errorf("expected %d cart lines, got %d", n, got)
	}
	return nil
}

func (c *checkoutTestContext) iStartCheckout() error {
	c.checkout.Start(context.Background(), sessionID)
	return nil
}

func (c *checkoutTestContext) iSubmitTheContactEmail(email string) error {
	_, c.err = c.checkout.SubmitContact(context.Background(), sessionID, email, true)
	return nil
}

func (c *checkoutTestContext) iSubmitAnEmptyBillingAddress() error {
	_, c.err = c.checkout.SubmitShipping(context.Background(), sessionID, model.Address{Country: "France"}, nil)
	return nil
}

func (c *checkoutTestContext) iSubmitACompleteBillingAddress() error {
	_, c.err = c.checkout.SubmitShipping(context.Background(), sessionID, model.Address{
		Country:   "France",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Address:   "1 rue de la Paix",
		City:      "Paris",
		State:     "Île-de-France",
		ZipCode:   "75002",
	}, nil)
	return c.err
}

func (c *checkoutTestContext) theStepIsRejectedOnField(field string) error {
	var verr *services.ValidationError
	if !errors.As(c.err, &verr) {
		return fmt.Errorf("expected a validation error, got %v", c.err)
	}
	if _, ok := verr.Fields[field]; !ok {
		return fmt.Errorf("field %q not reported in %v", field, verr.Fields)
	}
	return nil
}

func (c *checkoutTestContext) theCheckoutStageIs(stage string) error {
	view, err := c.checkout.Get(sessionID)
	if err != nil {
		return err
	}
	if string(view.Stage) != stage {
		return fmt.Errorf("expected stage %q, got %q", stage, view.Stage)
	}
	return nil
}

func (c *checkoutTestContext) iPay() error {
	c.payment, c.err = c.checkout.SubmitPayment(context.Background(), sessionID, nil)
	return c.err
}

func (c *checkoutTestContext) iAmSentTo(url string) error {
	if c.payment == nil {
		return errors.New("no payment submitted")
	}
	if c.payment.RedirectURL != url {
		return fmt.Errorf("expected redirect %q, got %q", url, c.payment.RedirectURL)
	}
	return nil
}

func (c *checkoutTestContext) theConfirmationShowsTheOrder(source string) error {
	view := c.confirmation.Resolve(context.Background(), sessionID)
	if string(view.Source) != source {
		return fmt.Errorf("expected %s, got %s", source, view.Source)
	}
	return nil
}

func (c *checkoutTestContext) iConfirmTheManualPayment() error {
	view, err := c.confirmation.ConfirmManualPayment(context.Background(), sessionID)
	if err != nil {
		return err
	}
	c.order = &view.Order
	return nil
}

func (c *checkoutTestContext) theOrderStatusIs(status string) error {
	if c.order == nil {
		return errors.New("no order confirmed")
	}
	if string(c.order.Status) != status {
		return fmt.Errorf("expected status %q, got %q", status, c.order.Status)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^an empty cart$`, tc.anEmptyCart)
	ctx.Step(`^I add (\d+) of "([^"]*)" priced at (\d+(?:\.\d+)?) with stock (\d+)$`, tc.iAddOfPricedAtWithStock)
	ctx.Step(`^I apply the coupon "([^"]*)"$`, tc.iApplyTheCoupon)
	ctx.Step(`^the (subtotal|discount|shipping|tax|total) is (\d+\.\d{2})$`, tc.theAmountIs)
	ctx.Step(`^the coupon error is "([^"]*)"$`, tc.theCouponErrorIs)
	ctx.Step(`^the quantity of "([^"]*)" is (\d+)$`, tc.theQuantityOfIs)
	ctx.Step(`^the cart has (\d+) items?$`, tc.theCartHasItems)

	ctx.Step(`^I start checkout$`, tc.iStartCheckout)
	ctx.Step(`^I submit the contact email "([^"]*)"$`, tc.iSubmitTheContactEmail)
	ctx.Step(`^I submit an empty billing address$`, tc.iSubmitAnEmptyBillingAddress)
	ctx.Step(`^I submit a complete billing address$`, tc.iSubmitACompleteBillingAddress)
	ctx.Step(`^the step is rejected on field "([^"]*)"$`, tc.theStepIsRejectedOnField)
	ctx.Step(`^the checkout stage is "([^"]*)"$`, tc.theCheckoutStageIs)

	ctx.Step(`^I pay$`, tc.iPay)
	ctx.Step(`^I am sent to "([^"]*)"$`, tc.iAmSentTo)
	ctx.Step(`^the confirmation shows the "([^"]*)" order$`, tc.theConfirmationShowsTheOrder)
	ctx.Step(`^I confirm the manual payment$`, tc.iConfirmTheManualPayment)
	ctx.Step(`^the order status is "([^"]*)"$`, tc.theOrderStatusIs)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"checkout.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
