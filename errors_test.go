package vaadin

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/tebeka/selenium"
	"github.com/wanmail/vaadin-selenium/internal/fakewd"
)

func TestIsTransient(t *testing.T) {
	for _, tc := range []struct {
		name string
		err  error
		want bool
	}{
		{"Nil", nil, false},
		{"Stale", fakewd.StaleError(), true},
		{"WrappedStale", fmt.Errorf("clicking: %w", fakewd.StaleError()), true},
		{"LegacyStale", errors.New("stale element reference: element is not attached"), true},
		{"NoSuchElement", &selenium.Error{Err: "no such element", Message: "stale element reference"}, false},
		{"Other", errors.New("session not created"), false},
	} {
		if got := IsTransient(tc.err); got != tc.want {
			t.Errorf("%s: IsTransient(%v) = %t, want %t", tc.name, tc.err, got, tc.want)
		}
	}
}

func TestIsNoSuchElement(t *testing.T) {
	for _, tc := range []struct {
		name string
		err  error
		want bool
	}{
		{"Nil", nil, false},
		{"W3C", &selenium.Error{Err: "no such element"}, true},
		{"Wrapped", fmt.Errorf("finding: %w", &selenium.Error{Err: "no such element"}), true},
		{"Legacy", errors.New("no such element: Unable to locate element"), true},
		{"Stale", &selenium.Error{Err: "stale element reference", Message: "no such element"}, false},
		{"Other", errors.New("connection refused"), false},
	} {
		if got := isNoSuchElement(tc.err); got != tc.want {
			t.Errorf("%s: isNoSuchElement(%v) = %t, want %t", tc.name, tc.err, got, tc.want)
		}
	}
}

func TestStabilityTimeoutErrorMessage(t *testing.T) {
	err := &StabilityTimeoutError{
		Name:    "overlays",
		Policy:  LongWait,
		Polls:   150,
		Elapsed: 30*time.Second + 400*time.Microsecond,
		Last:    fakewd.StaleError(),
	}
	msg := err.Error()
	for _, want := range []string{"overlays wait timed out after 30s", "150 polls", "timeout 30s", "stale element reference"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, want it to contain %q", msg, want)
		}
	}
}

func TestStepError(t *testing.T) {
	inner := &ElementNotFoundError{Locator: ID(ConfirmOKButtonID)}
	err := error(&StepError{Step: StepConfirm, Err: inner})

	if got, want := err.Error(), "confirm: no element matches xpath=//*[@id='confirmdialog-ok-button']"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrElementNotFound) {
		t.Error("errors.Is(err, ErrElementNotFound) = false")
	}
	if errors.Is(err, ErrAmbiguousElement) {
		t.Error("errors.Is(err, ErrAmbiguousElement) = true")
	}
}
