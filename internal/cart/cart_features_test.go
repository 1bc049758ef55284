package cart

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/nolimits-storefront/internal/storage"
)

type cartTestContext struct {
	backend *storage.MemoryStore
	cart    *Cart
	err     error
}

func (c *cartTestContext) reset() {
	c.backend = storage.NewMemoryStore()
	c.cart = nil
	c.err = nil
}

func (c *cartTestContext) anEmptyCartForSession(ns string) error {
	c.cart = Load(context.Background(), storage.Bind(c.backend, ns), nil)
	return nil
}

func (c *cartTestContext) theStoredCartForSessionIs(ns, raw string) error {
	return c.backend.Save(context.Background(), ns, storage.KeyCart, []byte(raw))
}

func (c *cartTestContext) theSessionIsReloaded(ns string) error {
	c.cart = Load(context.Background(), storage.Bind(c.backend, ns), nil)
	return nil
}

func (c *cartTestContext) iAddProductPriced(id int64, nombre string, precio int64) error {
	c.err = c.cart.Add(context.Background(), id, nombre, decimal.NewFromInt(precio))
	return c.err
}

func (c *cartTestContext) iIncrementProduct(id int64) error {
	c.err = c.cart.Increment(context.Background(), id)
	return nil
}

func (c *cartTestContext) iDecrementProduct(id int64) error {
	c.err = c.cart.Decrement(context.Background(), id)
	return nil
}

func (c *cartTestContext) theCartHasLines(n int) error {
	if got := len(c.cart.Items()); got != n {
		return fmt.Errorf("lines=%d, expected %d", got, n)
	}
	return nil
}

func (c *cartTestContext) theCartHasUnits(n int) error {
	if got := c.cart.Units(); got != n {
		return fmt.Errorf("units=%d, expected %d", got, n)
	}
	return nil
}

func (c *cartTestContext) productHasQuantity(id int64, qty int) error {
	for _, it := range c.cart.Items() {
		if it.ProductID == id {
			if it.Cantidad != qty {
				return fmt.Errorf("product %d quantity=%d, expected %d", id, it.Cantidad, qty)
			}
			return nil
		}
	}
	return fmt.Errorf("product %d not in cart", id)
}

func (c *cartTestContext) theCartTotalIs(total int64) error {
	if got := c.cart.Total(); !got.Equal(decimal.NewFromInt(total)) {
		return fmt.Errorf("total=%s, expected %d", got, total)
	}
	return nil
}

func (c *cartTestContext) theStoredTotalIs(want string) error {
	got, err := c.cart.store.Load(context.Background(), storage.KeyCartTotal)
	if err != nil {
		return err
	}
	if string(got) != want {
		return fmt.Errorf("stored total=%q, expected %q", got, want)
	}
	return nil
}

func (c *cartTestContext) theLastOperationFailedWith(msg string) error {
	if c.err == nil {
		return fmt.Errorf("expected error containing %q", msg)
	}
	if !strings.Contains(c.err.Error(), msg) {
		return fmt.Errorf("error %q does not contain %q", c.err, msg)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &cartTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given
	ctx.Step(`^an empty cart for session "([^"]*)"$`, tc.anEmptyCartForSession)
	ctx.Step(`^the stored cart for session "([^"]*)" is "([^"]*)"$`, tc.theStoredCartForSessionIs)

	// When
	ctx.Step(`^I add product (\d+) "([^"]*)" priced (\d+)$`, tc.iAddProductPriced)
	ctx.Step(`^I increment product (\d+)$`, tc.iIncrementProduct)
	ctx.Step(`^I decrement product (\d+)$`, tc.iDecrementProduct)
	ctx.Step(`^the session "([^"]*)" is reloaded$`, tc.theSessionIsReloaded)

	// Then
	ctx.Step(`^the cart has (\d+) lines?$`, tc.theCartHasLines)
	ctx.Step(`^the cart has (\d+) units$`, tc.theCartHasUnits)
	ctx.Step(`^product (\d+) has quantity (\d+)$`, tc.productHasQuantity)
	ctx.Step(`^the cart total is (\d+)$`, tc.theCartTotalIs)
	ctx.Step(`^the stored total is "([^"]*)"$`, tc.theStoredTotalIs)
	ctx.Step(`^the last operation failed with "([^"]*)"$`, tc.theLastOperationFailedWith)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"testdata/cart.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
