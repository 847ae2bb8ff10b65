package vaadin

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tebeka/selenium"
)

// Sentinel errors matched by the typed errors below through errors.Is.
var (
	ErrElementNotFound  = errors.New("element not found")
	ErrAmbiguousElement = errors.New("locator matches more than one element")
	ErrStabilityTimeout = errors.New("page did not become stable")
	ErrInvalidPolicy    = errors.New("invalid wait policy")

	errNotYet = errors.New("condition not met")
)

const (
	staleElementErrorMsg  = "stale element reference"
	noSuchElementErrorMsg = "no such element"
)

// ElementNotFoundError is returned when a locator matches no element at the
// moment of lookup.
type ElementNotFoundError struct {
	Locator Locator
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("no element matches %s", e.Locator)
}

// Is reports whether target is ErrElementNotFound.
func (e *ElementNotFoundError) Is(target error) bool {
	return target == ErrElementNotFound
}

// AmbiguousElementError is returned in strict mode when a locator matches more
// than one element.
type AmbiguousElementError struct {
	Locator Locator
	Count   int
}

func (e *AmbiguousElementError) Error() string {
	return fmt.Sprintf("%d elements match %s", e.Count, e.Locator)
}

// Is reports whether target is ErrAmbiguousElement.
func (e *AmbiguousElementError) Is(target error) bool {
	return target == ErrAmbiguousElement
}

// StabilityTimeoutError is returned when a wait policy expires before its
// condition holds.
type StabilityTimeoutError struct {
	// Name identifies the wait, e.g. "framework" or "overlays".
	Name    string
	Policy  Policy
	Polls   int
	Elapsed time.Duration
	// Last is the most recent transient error seen while polling, if any.
	Last error
}

func (e *StabilityTimeoutError) Error() string {
	msg := fmt.Sprintf("%s wait timed out after %v (%d polls, timeout %v)", e.Name, e.Elapsed.Round(time.Millisecond), e.Polls, e.Policy.Timeout)
	if e.Last != nil {
		msg += ": last transient error: " + e.Last.Error()
	}
	return msg
}

// Is reports whether target is ErrStabilityTimeout.
func (e *StabilityTimeoutError) Is(target error) bool {
	return target == ErrStabilityTimeout
}

// StepError names the step of a multi-step flow that failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return e.Step + ": " + e.Err.Error()
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is caused by an element that was detached
// from the page between lookup and use, as happens while the client-side
// engine re-renders a component.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var se *selenium.Error
	if errors.As(err, &se) {
		return se.Err == staleElementErrorMsg
	}
	// Legacy (non-W3C) servers only report the message text.
	return strings.Contains(err.Error(), staleElementErrorMsg)
}

// isNoSuchElement reports whether err is a driver's report that nothing
// matched a lookup. Some servers answer an empty FindElements that way.
func isNoSuchElement(err error) bool {
	var se *selenium.Error
	if errors.As(err, &se) {
		return se.Err == noSuchElementErrorMsg
	}
	return err != nil && strings.Contains(err.Error(), noSuchElementErrorMsg)
}
