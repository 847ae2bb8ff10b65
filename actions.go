package vaadin

import (
	"fmt"
	"time"

	"github.com/blang/semver"
	"github.com/tebeka/selenium"
	"go.uber.org/zap"
)

// Option configures an Actions instance.
type Option func(*Actions) error

// WithLogger sets the logger used for interactions and waits.
func WithLogger(l *zap.Logger) Option {
	return func(a *Actions) error {
		if l == nil {
			return fmt.Errorf("logger must not be nil")
		}
		a.log = l
		a.waiter.log = l
		return nil
	}
}

// WithShortWait sets the policy of the wait following ordinary clicks.
func WithShortWait(p Policy) Option {
	return func(a *Actions) error {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("short wait: %w", err)
		}
		a.waiter.short = p
		return nil
	}
}

// WithLongWait sets the policy of the wait for overlays to close.
func WithLongWait(p Policy) Option {
	return func(a *Actions) error {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("long wait: %w", err)
		}
		a.waiter.long = p
		return nil
	}
}

// WithSettlePause sets the pause applied after every successful wait. Zero
// disables it.
func WithSettlePause(d time.Duration) Option {
	return func(a *Actions) error {
		if d < 0 {
			return fmt.Errorf("settle pause must not be negative, got %v", d)
		}
		a.waiter.settle = d
		return nil
	}
}

// WithFrameworkVersion declares the Vaadin version of the application under
// test. Versions before 7 lack the script API used to detect pending
// requests, so only the loading indicator is inspected.
func WithFrameworkVersion(v semver.Version) Option {
	return func(a *Actions) error {
		a.waiter.version = v
		return nil
	}
}

// WithInputResolver sets the resolver used by Input.
func WithInputResolver(r InputResolver) Option {
	return func(a *Actions) error {
		if r == nil {
			return fmt.Errorf("input resolver must not be nil")
		}
		a.inputs = r
		return nil
	}
}

// WithConfirmDialog sets the factory of the dialog page object used by
// ClickTableButtonWithConfirmation.
func WithConfirmDialog(f func(selenium.WebDriver) ConfirmDialog) Option {
	return func(a *Actions) error {
		if f == nil {
			return fmt.Errorf("confirm dialog factory must not be nil")
		}
		a.dialog = f
		return nil
	}
}

// StrictMatching makes lookups fail with an *AmbiguousElementError when a
// locator matches more than one element. By default the first match in
// document order is used.
func StrictMatching() Option {
	return func(a *Actions) error {
		a.strict = true
		return nil
	}
}

// Actions changes field values and clicks on elements (buttons, tabs, table
// cells) of a Vaadin application, waiting for the page to settle after every
// action that can trigger a server round trip.
//
// An Actions value owns its session for the duration of each call and must
// not be used concurrently.
type Actions struct {
	wd     selenium.WebDriver
	waiter *Waiter
	inputs InputResolver
	dialog func(selenium.WebDriver) ConfirmDialog
	strict bool
	log    *zap.Logger
}

// NewActions returns an Actions driving wd.
func NewActions(wd selenium.WebDriver, opts ...Option) (*Actions, error) {
	if wd == nil {
		return nil, fmt.Errorf("nil WebDriver")
	}
	a := &Actions{
		wd:     wd,
		waiter: NewWaiter(wd),
		dialog: func(wd selenium.WebDriver) ConfirmDialog { return NewConfirmDialogPO(wd) },
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	if a.inputs == nil {
		a.inputs = &DefaultInputResolver{wd: wd, waiter: a.waiter, strict: a.strict}
	}
	return a, nil
}

// Waiter returns the waiter used after actions.
func (a *Actions) Waiter() *Waiter {
	return a.waiter
}

// Find returns the element matched by loc. It fails with an
// *ElementNotFoundError when nothing matches.
func (a *Actions) Find(loc Locator) (selenium.WebElement, error) {
	return find(a.wd, loc, a.strict)
}

func find(wd selenium.WebDriver, loc Locator, strict bool) (selenium.WebElement, error) {
	by, value := loc.Strategy()
	elems, err := wd.FindElements(by, value)
	if err != nil && !isNoSuchElement(err) {
		return nil, fmt.Errorf("finding %s: %w", loc, err)
	}
	switch {
	case len(elems) == 0:
		return nil, &ElementNotFoundError{Locator: loc}
	case len(elems) > 1 && strict:
		return nil, &AmbiguousElementError{Locator: loc, Count: len(elems)}
	}
	return elems[0], nil
}

// Click clicks the element matched by loc and waits for the framework to
// become idle. The waiter is not invoked when the lookup or the click fails.
func (a *Actions) Click(loc Locator) error {
	elem, err := a.Find(loc)
	if err != nil {
		return err
	}
	a.log.Debug("Clicking.", zap.Stringer("locator", loc))
	if err := elem.Click(); err != nil {
		return fmt.Errorf("clicking %s: %w", loc, err)
	}
	return a.waiter.WaitForFramework()
}

// ClickButton clicks the button with the given id.
func (a *Actions) ClickButton(id string) error {
	return a.Click(ID(id))
}

// ClickTableButton clicks the button at the given 1-based row and column of
// the table with id tableID.
func (a *Actions) ClickTableButton(tableID string, row, col int) error {
	return a.Click(TableButton(tableID, row, col))
}

// ClickTableCellItemByClassName clicks the element whose class contains
// class at the given row and column of the table with id tableID.
func (a *Actions) ClickTableCellItemByClassName(tableID string, row, col int, class string) error {
	return a.Click(CellItem(tableID, row, col, class))
}

// ClickTreeTableCell clicks the expand/collapse toggle at the given row and
// column of the tree table with id tableID.
func (a *Actions) ClickTreeTableCell(tableID string, row, col int) error {
	return a.Click(TreeExpander(tableID, row, col))
}

// ClickTab selects the n-th (1-based) tab.
func (a *Actions) ClickTab(n int) error {
	return a.Click(Tab(n))
}

// ClearText clears the field with id "<entity>.<attribute>". Clearing does
// not wait for the framework.
func (a *Actions) ClearText(entity, attribute string) error {
	loc := Field(entity, attribute)
	elem, err := a.Find(loc)
	if err != nil {
		return err
	}
	a.log.Debug("Clearing.", zap.Stringer("locator", loc))
	if err := elem.Clear(); err != nil {
		return fmt.Errorf("clearing %s: %w", loc, err)
	}
	return nil
}

// Input sets the value of the field with id "<entity>.<attribute>" to text,
// using the input method the resolver picks for that field.
func (a *Actions) Input(entity, attribute, text string) error {
	m, err := a.inputs.Resolve(entity, attribute)
	if err != nil {
		return fmt.Errorf("resolving input for %s: %w", FieldID(entity, attribute), err)
	}
	a.log.Debug("Input.", zap.String("field", FieldID(entity, attribute)), zap.String("method", fmt.Sprintf("%T", m)))
	return m.Input(entity, attribute, text)
}
