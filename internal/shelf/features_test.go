package shelf

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"github.com/five82/vitrine/internal/storage"
)

type shelfTestContext struct {
	mem      *storage.Memory
	store    *Store
	rec      *recorder
	capacity int
	last     Outcome
	release  func()
	hydrated chan error
}

func (c *shelfTestContext) reset() {
	c.mem = storage.NewMemory()
	c.rec = &recorder{}
	c.capacity = 4
	c.store = nil
	c.release = nil
	c.hydrated = nil
}

func (c *shelfTestContext) open() *Store {
	return New(c.mem, Options{Key: testKey, Capacity: c.capacity, Label: "compare", Notifier: c.rec})
}

func splitIDs(list string) []string {
	var out []string
	for _, id := range strings.Split(list, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

func (c *shelfTestContext) anEmptyShelfWithCapacity(capacity int) error {
	c.capacity = capacity
	c.store = c.open()
	return c.store.Initialize(context.Background())
}

func (c *shelfTestContext) aPersistedShelfContaining(list string) error {
	var items []Item
	for _, id := range splitIDs(list) {
		items = append(items, item(id))
	}
	data, err := Encode(items)
	if err != nil {
		return err
	}
	c.mem.Set(testKey, data)
	return nil
}

func (c *shelfTestContext) hydrationHasStartedButNotFinished() error {
	c.store = c.open()
	c.release = c.mem.BlockReads()
	c.hydrated = make(chan error, 1)
	go func() { c.hydrated <- c.store.Initialize(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for c.store.State() != Hydrating {
		if time.Now().After(deadline) {
			return fmt.Errorf("store never started hydrating")
		}
		time.Sleep(time.Millisecond)
	}
	return nil
}

func (c *shelfTestContext) hydrationFinishes() error {
	c.release()
	return <-c.hydrated
}

func (c *shelfTestContext) iAdd(id string) error {
	c.last = c.store.Add(context.Background(), item(id))
	return nil
}

func (c *shelfTestContext) iRemove(id string) error {
	c.last = c.store.Remove(context.Background(), id)
	return nil
}

func (c *shelfTestContext) theClientRestarts() error {
	c.store = c.open()
	return c.store.Initialize(context.Background())
}

func (c *shelfTestContext) theAddIsRejectedAs(outcome string) error {
	if c.last.String() != outcome {
		return fmt.Errorf("outcome = %s, want %s", c.last, outcome)
	}
	return nil
}

func sameIDs(got []Item, list string) error {
	want := splitIDs(list)
	ids := itemIDs(got)
	if strings.Join(ids, ",") != strings.Join(want, ",") {
		return fmt.Errorf("ids = %v, want %v", ids, want)
	}
	return nil
}

func (c *shelfTestContext) theShelfContains(list string) error {
	return sameIDs(c.store.Items(), list)
}

func (c *shelfTestContext) thePersistedSnapshotContains(list string) error {
	data, ok, err := c.mem.Read(context.Background(), testKey)
	if err != nil || !ok {
		return fmt.Errorf("persisted snapshot missing: ok=%v err=%v", ok, err)
	}
	items, err := Decode(data)
	if err != nil {
		return err
	}
	return sameIDs(items, list)
}

func (c *shelfTestContext) aNotificationWasEmitted(kind string) error {
	c.rec.mu.Lock()
	defer c.rec.mu.Unlock()
	for _, k := range c.rec.kinds {
		if k.String() == kind {
			return nil
		}
	}
	return fmt.Errorf("no %q notification in %v", kind, c.rec.kinds)
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &shelfTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^an empty shelf with capacity (\d+)$`, tc.anEmptyShelfWithCapacity)
	ctx.Step(`^a persisted shelf containing "([^"]*)"$`, tc.aPersistedShelfContaining)
	ctx.Step(`^hydration has started but not finished$`, tc.hydrationHasStartedButNotFinished)

	ctx.Step(`^I add "([^"]*)"$`, tc.iAdd)
	ctx.Step(`^I remove "([^"]*)"$`, tc.iRemove)
	ctx.Step(`^hydration finishes$`, tc.hydrationFinishes)
	ctx.Step(`^the client restarts$`, tc.theClientRestarts)

	ctx.Step(`^the add is rejected as "([^"]*)"$`, tc.theAddIsRejectedAs)
	ctx.Step(`^the shelf contains "([^"]*)"$`, tc.theShelfContains)
	ctx.Step(`^the persisted snapshot contains "([^"]*)"$`, tc.thePersistedSnapshotContains)
	ctx.Step(`^a "([^"]*)" notification was emitted$`, tc.aNotificationWasEmitted)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"testdata/bounded_set.feature"},
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
