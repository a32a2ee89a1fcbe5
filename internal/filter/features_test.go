package filter

import (
	"context"
	"fmt"
	"testing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"
)

type filterTestContext struct {
	engine *Engine
}

func (c *filterTestContext) defaultFilterCriteria() error {
	c.engine = NewEngine(Options{})
	return nil
}

func (c *filterTestContext) iSetTo(dim, value string) error {
	return c.engine.Set(Dimension(dim), value)
}

func (c *filterTestContext) iClear(dim string) error {
	return c.engine.Clear(Dimension(dim))
}

func (c *filterTestContext) iClearAllFilters() error {
	c.engine.ClearAll()
	return nil
}

func (c *filterTestContext) thePageIs(page int) error {
	if got := c.engine.Criteria().Page; got != page {
		return fmt.Errorf("page = %d, want %d", got, page)
	}
	return nil
}

func (c *filterTestContext) theCategoryIs(want string) error {
	if got := c.engine.Criteria().Category; got != want {
		return fmt.Errorf("category = %q, want %q", got, want)
	}
	return nil
}

func (c *filterTestContext) theSubcategoryIs(want string) error {
	if got := c.engine.Criteria().Subcategory; got != want {
		return fmt.Errorf("subcategory = %q, want %q", got, want)
	}
	return nil
}

func (c *filterTestContext) thePriceRangeIs(min, max int) error {
	crit := c.engine.Criteria()
	if !crit.MinPrice.Equal(decimal.NewFromInt(int64(min))) || !crit.MaxPrice.Equal(decimal.NewFromInt(int64(max))) {
		return fmt.Errorf("price = %s..%s, want %d..%d", crit.MinPrice, crit.MaxPrice, min, max)
	}
	return nil
}

func (c *filterTestContext) filtersAreActive() error {
	if !c.engine.IsActive() {
		return fmt.Errorf("IsActive() = false, want true")
	}
	return nil
}

func (c *filterTestContext) filtersAreNotActive() error {
	if c.engine.IsActive() {
		return fmt.Errorf("IsActive() = true, want false (active: %v)", c.engine.Active())
	}
	return nil
}

func (c *filterTestContext) theCriteriaEqualTheDefaults() error {
	if !c.engine.Criteria().Equal(Default(DefaultBounds())) {
		return fmt.Errorf("criteria = %+v, want defaults", c.engine.Criteria())
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &filterTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.engine = nil
		return ctx, nil
	})

	ctx.Step(`^default filter criteria$`, tc.defaultFilterCriteria)

	ctx.Step(`^I set "([^"]*)" to "([^"]*)"$`, tc.iSetTo)
	ctx.Step(`^I clear "([^"]*)"$`, tc.iClear)
	ctx.Step(`^I clear all filters$`, tc.iClearAllFilters)

	ctx.Step(`^the page is (\d+)$`, tc.thePageIs)
	ctx.Step(`^the category is "([^"]*)"$`, tc.theCategoryIs)
	ctx.Step(`^the subcategory is "([^"]*)"$`, tc.theSubcategoryIs)
	ctx.Step(`^the price range is (\d+) to (\d+)$`, tc.thePriceRangeIs)
	ctx.Step(`^filters are active$`, tc.filtersAreActive)
	ctx.Step(`^filters are not active$`, tc.filtersAreNotActive)
	ctx.Step(`^the criteria equal the defaults$`, tc.theCriteriaEqualTheDefaults)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"testdata/filter.feature"},
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
