package vaadin

import (
	"fmt"

	"github.com/tebeka/selenium"
	"go.uber.org/zap"
)

// Steps of ClickTableButtonWithConfirmation, as reported by StepError.Step.
const (
	StepCellButton = "cell button"
	StepConfirm    = "confirm"
	StepOverlay    = "overlay"
)

// ConfirmDialog is the page object of a confirmation popup.
type ConfirmDialog interface {
	ClickConfirm() error
}

// ConfirmDialogPO drives the popup of the ConfirmDialog add-on
// (https://vaadin.com/directory#addon/confirmdialog), whose buttons carry
// fixed ids.
type ConfirmDialogPO struct {
	wd selenium.WebDriver
}

// NewConfirmDialogPO returns the page object of the currently shown dialog.
func NewConfirmDialogPO(wd selenium.WebDriver) *ConfirmDialogPO {
	return &ConfirmDialogPO{wd: wd}
}

// ClickConfirm clicks the OK button. It fails with an *ElementNotFoundError
// when no dialog is shown.
func (d *ConfirmDialogPO) ClickConfirm() error {
	return d.click(ConfirmOKButtonID)
}

// ClickCancel clicks the Cancel button.
func (d *ConfirmDialogPO) ClickCancel() error {
	return d.click(ConfirmCancelButtonID)
}

func (d *ConfirmDialogPO) click(id string) error {
	loc := ID(id)
	elem, err := find(d.wd, loc, false)
	if err != nil {
		return err
	}
	if err := elem.Click(); err != nil {
		return fmt.Errorf("clicking %s: %w", loc, err)
	}
	return nil
}

// ClickTableButtonWithConfirmation clicks the button at the given row and
// column of the table with id tableID, confirms the dialog it opens, and waits
// for the dialog to be gone.
//
// A failing step aborts the sequence and is returned as a *StepError; earlier
// steps are not undone. A dialog that never opens fails the StepConfirm step
// with an *ElementNotFoundError, one that never closes fails the StepOverlay
// step with a *StabilityTimeoutError.
func (a *Actions) ClickTableButtonWithConfirmation(tableID string, row, col int) error {
	if err := a.ClickTableButton(tableID, row, col); err != nil {
		return &StepError{Step: StepCellButton, Err: err}
	}
	a.log.Debug("Confirming dialog.", zap.String("table", tableID), zap.Int("row", row), zap.Int("col", col))
	if err := a.dialog(a.wd).ClickConfirm(); err != nil {
		return &StepError{Step: StepConfirm, Err: err}
	}
	if err := a.waiter.WaitForOverlaysClosed(); err != nil {
		return &StepError{Step: StepOverlay, Err: err}
	}
	return nil
}
