package vaadin

import (
	"context"
	"fmt"
	"time"

	"github.com/blang/semver"
	"github.com/cenkalti/backoff/v4"
	"github.com/tebeka/selenium"
	"go.uber.org/zap"
)

// Default wait tuning.
const (
	DefaultShortTimeout = 10 * time.Second
	DefaultLongTimeout  = 30 * time.Second
	DefaultPollInterval = 200 * time.Millisecond

	// DefaultSettlePause is slept after every successful wait to let trailing
	// animations finish. It reduces flakiness but guarantees nothing.
	DefaultSettlePause = 200 * time.Millisecond
)

// Policy bounds a polling loop.
type Policy struct {
	Timeout  time.Duration
	Interval time.Duration
}

// ShortWait is used after ordinary clicks and tab switches.
var ShortWait = Policy{Timeout: DefaultShortTimeout, Interval: DefaultPollInterval}

// LongWait is used while overlays tear down.
var LongWait = Policy{Timeout: DefaultLongTimeout, Interval: DefaultPollInterval}

// Validate returns ErrInvalidPolicy unless both durations are positive.
func (p Policy) Validate() error {
	if p.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %v", ErrInvalidPolicy, p.Timeout)
	}
	if p.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive, got %v", ErrInvalidPolicy, p.Interval)
	}
	return nil
}

// scriptProbeVersion is the first framework release exposing window.vaadin.clients.
var scriptProbeVersion = semver.MustParse("7.0.0")

const clientsActiveScript = `
if (window.vaadin == null || window.vaadin.clients == null) {
	return false;
}
var clients = window.vaadin.clients;
for (var name in clients) {
	if (clients[name].isActive()) {
		return true;
	}
}
return false;`

// Waiter blocks until the page reaches a quiescent state.
type Waiter struct {
	wd      selenium.WebDriver
	short   Policy
	long    Policy
	settle  time.Duration
	version semver.Version
	log     *zap.Logger
	sleep   func(time.Duration)
}

// NewWaiter returns a Waiter using the default policies for the given session.
func NewWaiter(wd selenium.WebDriver) *Waiter {
	return &Waiter{
		wd:      wd,
		short:   ShortWait,
		long:    LongWait,
		settle:  DefaultSettlePause,
		version: scriptProbeVersion,
		log:     zap.NewNop(),
		sleep:   time.Sleep,
	}
}

// Until polls cond on p.Interval until it returns true or p.Timeout elapses.
// The first poll happens immediately, so a condition that holds on the n-th
// poll returns after about (n-1)*p.Interval. Transient errors (see
// IsTransient) are retried; any other error from cond ends the wait and is
// returned as is, even when it wraps context.DeadlineExceeded. Only expiry of
// p.Timeout returns a *StabilityTimeoutError. The settle pause is not applied.
func (w *Waiter) Until(name string, p Policy, cond selenium.Condition) error {
	if err := p.Validate(); err != nil {
		return err
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), p.Timeout)
	defer cancel()

	var (
		polls int
		last  error
		abort error
	)
	op := func() error {
		polls++
		done, err := cond(w.wd)
		switch {
		case err == nil && done:
			return nil
		case err == nil:
			return errNotYet
		case IsTransient(err):
			last = err
			w.log.Debug("Transient error while waiting, retrying.", zap.String("wait", name), zap.Int("poll", polls), zap.Error(err))
			return err
		}
		abort = err
		return backoff.Permanent(err)
	}

	b := backoff.WithContext(backoff.NewConstantBackOff(p.Interval), ctx)
	err := backoff.Retry(op, b)
	switch {
	case err == nil:
		w.log.Debug("Wait satisfied.", zap.String("wait", name), zap.Int("polls", polls), zap.Duration("elapsed", time.Since(start)))
		return nil
	case abort != nil:
		return abort
	case ctx.Err() != nil:
		terr := &StabilityTimeoutError{Name: name, Policy: p, Polls: polls, Elapsed: time.Since(start), Last: last}
		w.log.Warn("Wait timed out.", zap.Error(terr))
		return terr
	}
	return err
}

// Settle sleeps the configured settle pause.
func (w *Waiter) Settle() {
	if w.settle > 0 {
		w.sleep(w.settle)
	}
}

// WaitForFramework waits, under the short policy, until the client-side
// engine has no request in flight, then settles.
func (w *Waiter) WaitForFramework() error {
	if err := w.Until("framework", w.short, FrameworkIdle(w.version)); err != nil {
		return err
	}
	w.Settle()
	return nil
}

// WaitForOverlaysClosed waits, under the long policy, until no sub-window is
// rendered, then settles.
func (w *Waiter) WaitForOverlaysClosed() error {
	if err := w.Until("overlays", w.long, OverlaysClosed()); err != nil {
		return err
	}
	w.Settle()
	return nil
}

// FrameworkIdle holds when no loading indicator is displayed and, for
// framework versions that expose it, no client reports an active request.
func FrameworkIdle(version semver.Version) selenium.Condition {
	by, value := BusyIndicators().Strategy()
	probe := version.GTE(scriptProbeVersion)
	return func(wd selenium.WebDriver) (bool, error) {
		indicators, err := wd.FindElements(by, value)
		if err != nil && !isNoSuchElement(err) {
			return false, err
		}
		for _, ind := range indicators {
			displayed, err := ind.IsDisplayed()
			if err != nil {
				return false, err
			}
			if displayed {
				return false, nil
			}
		}
		if !probe {
			return true, nil
		}
		active, err := wd.ExecuteScript(clientsActiveScript, nil)
		if err != nil {
			return false, err
		}
		busy, ok := active.(bool)
		if !ok {
			return false, fmt.Errorf("client activity script returned %T (%v), want bool", active, active)
		}
		return !busy, nil
	}
}

// OverlaysClosed holds when no element matches Overlays.
func OverlaysClosed() selenium.Condition {
	by, value := Overlays().Strategy()
	return func(wd selenium.WebDriver) (bool, error) {
		windows, err := wd.FindElements(by, value)
		if err != nil && !isNoSuchElement(err) {
			return false, err
		}
		return len(windows) == 0, nil
	}
}
