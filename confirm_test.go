package vaadin

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/tebeka/selenium"
	"github.com/wanmail/vaadin-selenium/internal/fakewd"
)

func TestClickTableButtonWithConfirmation(t *testing.T) {
	d := newTestDriver(t)
	showConfirmOnClick(t, d, "//*[@id='delete-1']")
	a := newTestActions(t, d)

	if err := a.ClickTableButtonWithConfirmation("orders", 1, 3); err != nil {
		t.Fatalf("ClickTableButtonWithConfirmation() returned error: %v", err)
	}
	want := []string{"click #delete-1", "click #confirmdialog-ok-button"}
	if diff := cmp.Diff(want, d.Interactions()); diff != "" {
		t.Errorf("interactions returned diff (-want/+got):\n%s", diff)
	}
	if closed, err := OverlaysClosed()(d); err != nil || !closed {
		t.Errorf("OverlaysClosed() = %t, %v after confirmation; want true, nil", closed, err)
	}
}

func TestClickTableButtonWithConfirmationSteps(t *testing.T) {
	for _, tc := range []struct {
		name      string
		setup     func(*fakewd.Driver)
		row       int
		wantStep  string
		wantErr   error
		wantClick []string
	}{
		{
			name:     "MissingButton",
			setup:    func(*fakewd.Driver) {},
			row:      9,
			wantStep: StepCellButton,
			wantErr:  ErrElementNotFound,
		},
		{
			name:      "DialogNeverOpens",
			setup:     func(*fakewd.Driver) {},
			row:       1,
			wantStep:  StepConfirm,
			wantErr:   ErrElementNotFound,
			wantClick: []string{"click #delete-1"},
		},
		{
			name: "DialogNeverCloses",
			setup: func(d *fakewd.Driver) {
				d.OnClick("//*[@id='delete-1']", func(d *fakewd.Driver) {
					d.Append("//body", confirmWindow)
				})
			},
			row:       1,
			wantStep:  StepOverlay,
			wantErr:   ErrStabilityTimeout,
			wantClick: []string{"click #delete-1", "click #confirmdialog-ok-button"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			d := newTestDriver(t)
			tc.setup(d)
			a := newTestActions(t, d, WithLongWait(Policy{Timeout: 30 * time.Millisecond, Interval: 5 * time.Millisecond}))

			err := a.ClickTableButtonWithConfirmation("orders", tc.row, 3)
			var serr *StepError
			if !errors.As(err, &serr) {
				t.Fatalf("ClickTableButtonWithConfirmation() = %v, want a *StepError", err)
			}
			if serr.Step != tc.wantStep {
				t.Errorf("Step = %q, want %q", serr.Step, tc.wantStep)
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("errors.Is(%v, %v) = false", err, tc.wantErr)
			}
			if diff := cmp.Diff(tc.wantClick, d.Interactions()); diff != "" {
				t.Errorf("interactions returned diff (-want/+got):\n%s", diff)
			}
		})
	}
}

func TestConfirmFailureSkipsOverlayWait(t *testing.T) {
	d := newTestDriver(t)
	a := newTestActions(t, d)

	if err := a.ClickTableButtonWithConfirmation("orders", 1, 3); err == nil {
		t.Fatal("ClickTableButtonWithConfirmation() returned no error without a dialog")
	}
	// Button lookup, one framework poll and the OK button lookup.
	if got := d.Finds(); got != 3 {
		t.Errorf("FindElements called %d times, want 3", got)
	}
}

type fakeDialog struct {
	err     error
	clicked int
}

func (f *fakeDialog) ClickConfirm() error {
	f.clicked++
	return f.err
}

func TestCustomConfirmDialog(t *testing.T) {
	d := newTestDriver(t)
	dialog := &fakeDialog{err: errors.New("dialog rendered off screen")}
	a := newTestActions(t, d, WithConfirmDialog(func(selenium.WebDriver) ConfirmDialog { return dialog }))

	err := a.ClickTableButtonWithConfirmation("orders", 2, 3)
	if !errors.Is(err, dialog.err) {
		t.Errorf("ClickTableButtonWithConfirmation() = %v, want %v", err, dialog.err)
	}
	if got, want := err.Error(), "confirm: dialog rendered off screen"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if dialog.clicked != 1 {
		t.Errorf("ClickConfirm called %d times, want 1", dialog.clicked)
	}
}

func TestConfirmDialogPO(t *testing.T) {
	d := newTestDriver(t)
	po := NewConfirmDialogPO(d)

	if err := po.ClickCancel(); !errors.Is(err, ErrElementNotFound) {
		t.Errorf("ClickCancel() without dialog = %v, want ErrElementNotFound", err)
	}
	if err := d.Append("//body", confirmWindow); err != nil {
		t.Fatalf("Append() returned error: %v", err)
	}
	if err := po.ClickCancel(); err != nil {
		t.Errorf("ClickCancel() returned error: %v", err)
	}
	if err := po.ClickConfirm(); err != nil {
		t.Errorf("ClickConfirm() returned error: %v", err)
	}
	want := []string{"click #confirmdialog-cancel-button", "click #confirmdialog-ok-button"}
	if diff := cmp.Diff(want, d.Interactions()); diff != "" {
		t.Errorf("interactions returned diff (-want/+got):\n%s", diff)
	}
}
