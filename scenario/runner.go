package scenario

import (
	"context"
	"fmt"

	"github.com/tebeka/selenium"
	vaadin "github.com/wanmail/vaadin-selenium"
	"go.uber.org/zap"
)

// Runner plays scenarios on one session.
type Runner struct {
	wd      selenium.WebDriver
	actions *vaadin.Actions
	log     *zap.Logger
}

// NewRunner returns a Runner performing steps with actions on wd.
func NewRunner(wd selenium.WebDriver, actions *vaadin.Actions, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{wd: wd, actions: actions, log: log}
}

// Run executes the steps of sc in order. The first failing step aborts the run
// and is returned as a *vaadin.StepError whose Step reads "#<n> <action>".
// Cancelling ctx stops the run before the next step.
func (r *Runner) Run(ctx context.Context, sc *Scenario) error {
	if err := sc.Validate(); err != nil {
		return err
	}
	for i := range sc.Steps {
		step := &sc.Steps[i]
		label := fmt.Sprintf("#%d %s", i+1, step.Action())
		if err := ctx.Err(); err != nil {
			return &vaadin.StepError{Step: label, Err: err}
		}
		r.log.Info("Running step.", zap.String("scenario", sc.Name), zap.String("step", label), zap.String("name", step.Name))
		if err := r.runStep(step); err != nil {
			return &vaadin.StepError{Step: label, Err: err}
		}
	}
	r.log.Info("Scenario passed.", zap.String("scenario", sc.Name), zap.Int("steps", len(sc.Steps)))
	return nil
}

func (r *Runner) runStep(s *Step) error {
	a := r.actions
	switch s.Action() {
	case ActionOpen:
		if err := r.wd.Get(s.Open); err != nil {
			return fmt.Errorf("opening %s: %w", s.Open, err)
		}
		return a.Waiter().WaitForFramework()
	case ActionClickButton:
		return a.ClickButton(s.ClickButton)
	case ActionClickTab:
		return a.ClickTab(*s.ClickTab)
	case ActionClickTableButton:
		c := s.ClickTableButton
		if c.Confirm {
			return a.ClickTableButtonWithConfirmation(c.Table, c.Row, c.Col)
		}
		return a.ClickTableButton(c.Table, c.Row, c.Col)
	case ActionClickCellItem:
		c := s.ClickCellItem
		return a.ClickTableCellItemByClassName(c.Table, c.Row, c.Col, c.Class)
	case ActionExpandTree:
		c := s.ExpandTree
		return a.ClickTreeTableCell(c.Table, c.Row, c.Col)
	case ActionInput:
		return a.Input(s.Input.Entity, s.Input.Attribute, s.Input.Value)
	case ActionClear:
		return a.ClearText(s.Clear.Entity, s.Clear.Attribute)
	case ActionWaitIdle:
		return a.Waiter().WaitForFramework()
	}
	return fmt.Errorf("unknown action %q", s.Action())
}
