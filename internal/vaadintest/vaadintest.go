// Package vaadintest provides tests that exercise package vaadin against a
// real browser. They live in a separate package so that harnesses for other
// browsers or WebDriver servers can run the same suite.
package vaadintest

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	socks5 "github.com/armon/go-socks5"
	"github.com/tebeka/selenium"
	vaadin "github.com/wanmail/vaadin-selenium"
	"github.com/wanmail/vaadin-selenium/internal/browser"
	"github.com/wanmail/vaadin-selenium/internal/config"
)

// Config describes the browser under test.
type Config struct {
	// Addr is the WebDriver server URL.
	Addr string
	// ServerURL serves Handler.
	ServerURL string
	WebDriver config.WebDriverConfig
}

func runTest(f func(*testing.T, Config), c Config) func(*testing.T) {
	return func(t *testing.T) {
		f(t, c)
	}
}

var NewRemote = func(_ *testing.T, caps selenium.Capabilities, addr string) (selenium.WebDriver, error) {
	return selenium.NewRemote(caps, addr)
}

func newRemote(t *testing.T, c Config) selenium.WebDriver {
	caps, err := browser.Capabilities(c.WebDriver)
	if err != nil {
		t.Fatalf("browser.Capabilities(%+v) returned error: %v", c.WebDriver, err)
	}
	wd, err := NewRemote(t, caps, c.Addr)
	if err != nil {
		t.Fatalf("NewRemote(%+v, %q) returned error: %v", caps, c.Addr, err)
	}
	return wd
}

func quitRemote(t *testing.T, wd selenium.WebDriver) {
	if err := wd.Quit(); err != nil {
		t.Errorf("wd.Quit() returned error: %v", err)
	}
}

// openOrders starts a session on the orders page.
func openOrders(t *testing.T, c Config, opts ...vaadin.Option) (selenium.WebDriver, *vaadin.Actions) {
	wd := newRemote(t, c)
	page := c.ServerURL + "/orders"
	if err := wd.Get(page); err != nil {
		quitRemote(t, wd)
		t.Fatalf("wd.Get(%q) returned error: %v", page, err)
	}
	a, err := vaadin.NewActions(wd, opts...)
	if err != nil {
		quitRemote(t, wd)
		t.Fatalf("vaadin.NewActions() returned error: %v", err)
	}
	return wd, a
}

func status(t *testing.T, wd selenium.WebDriver) string {
	t.Helper()
	elem, err := wd.FindElement(selenium.ByID, "status")
	if err != nil {
		t.Fatalf("wd.FindElement(ByID, %q) returned error: %v", "status", err)
	}
	text, err := elem.Text()
	if err != nil {
		t.Fatalf("status.Text() returned error: %v", err)
	}
	return text
}

func checkStatus(t *testing.T, wd selenium.WebDriver, want string) {
	t.Helper()
	if got := status(t, wd); got != want {
		t.Errorf("status = %q, want %q", got, want)
	}
}

// RunCommonTests runs the browser tests shared by every driver.
func RunCommonTests(t *testing.T, c Config) {
	t.Run("Input", runTest(testInput, c))
	t.Run("ClickTab", runTest(testClickTab, c))
	t.Run("ClickTreeTableCell", runTest(testClickTreeTableCell, c))
	t.Run("ClickTableCellItem", runTest(testClickTableCellItem, c))
	t.Run("Confirmation", runTest(testConfirmation, c))
	t.Run("ConfirmationNeverOpens", runTest(testConfirmationNeverOpens, c))
	t.Run("NotFound", runTest(testNotFound, c))
	t.Run("StabilityTimeout", runTest(testStabilityTimeout, c))
	t.Run("StaleIndicator", runTest(testStaleIndicator, c))
	t.Run("BrowserLog", runTest(testBrowserLog, c))
	t.Run("Proxy", runTest(testProxy, c))
}

func testInput(t *testing.T, c Config) {
	wd, a := openOrders(t, c)
	defer quitRemote(t, wd)

	for _, in := range []struct{ attribute, value string }{
		{"number", "1042"},
		{"customer", "Acme"},
		{"paid", "true"},
	} {
		if err := a.Input("order", in.attribute, in.value); err != nil {
			t.Fatalf("Input(order, %q, %q) returned error: %v", in.attribute, in.value, err)
		}
	}
	if err := a.ClickButton("save"); err != nil {
		t.Fatalf("ClickButton(save) returned error: %v", err)
	}
	// The click returns once the round trip finished, so no extra wait.
	checkStatus(t, wd, "saved 1042 Acme true")
}

func testClickTab(t *testing.T, c Config) {
	wd, a := openOrders(t, c)
	defer quitRemote(t, wd)

	if err := a.ClickTab(2); err != nil {
		t.Fatalf("ClickTab(2) returned error: %v", err)
	}
	checkStatus(t, wd, "tab Orders")
}

func testClickTreeTableCell(t *testing.T, c Config) {
	wd, a := openOrders(t, c)
	defer quitRemote(t, wd)

	if err := a.ClickTreeTableCell("categories", 1, 1); err != nil {
		t.Fatalf("ClickTreeTableCell(categories, 1, 1) returned error: %v", err)
	}
	checkStatus(t, wd, "expanded Hardware")
}

func testClickTableCellItem(t *testing.T, c Config) {
	wd, a := openOrders(t, c)
	defer quitRemote(t, wd)

	if err := a.ClickTableCellItemByClassName("orders", 2, 2, "v-link"); err != nil {
		t.Fatalf("ClickTableCellItemByClassName(orders, 2, 2, v-link) returned error: %v", err)
	}
	checkStatus(t, wd, "opened 1002")

	if err := a.ClickTableButton("orders", 1, 4); err != nil {
		t.Fatalf("ClickTableButton(orders, 1, 4) returned error: %v", err)
	}
	checkStatus(t, wd, "archived 1001")
}

func testConfirmation(t *testing.T, c Config) {
	wd, a := openOrders(t, c)
	defer quitRemote(t, wd)

	if err := a.ClickTableButtonWithConfirmation("orders", 1, 3); err != nil {
		t.Fatalf("ClickTableButtonWithConfirmation(orders, 1, 3) returned error: %v", err)
	}
	checkStatus(t, wd, "deleted 1001")
	windows, err := wd.FindElements(vaadin.Overlays().Strategy())
	if err != nil {
		t.Fatalf("wd.FindElements(%s) returned error: %v", vaadin.Overlays(), err)
	}
	if len(windows) != 0 {
		t.Errorf("%d overlays remain after the confirmation", len(windows))
	}
}

func testConfirmationNeverOpens(t *testing.T, c Config) {
	wd, a := openOrders(t, c)
	defer quitRemote(t, wd)

	// The archive button does not ask for confirmation.
	err := a.ClickTableButtonWithConfirmation("orders", 1, 4)
	var serr *vaadin.StepError
	if !errors.As(err, &serr) {
		t.Fatalf("ClickTableButtonWithConfirmation(orders, 1, 4) = %v, want a *vaadin.StepError", err)
	}
	if serr.Step != vaadin.StepConfirm {
		t.Errorf("failed step = %q, want %q", serr.Step, vaadin.StepConfirm)
	}
	if !errors.Is(err, vaadin.ErrElementNotFound) {
		t.Errorf("error %v does not wrap ErrElementNotFound", err)
	}
	// The button itself was clicked.
	checkStatus(t, wd, "archived 1001")
}

func testNotFound(t *testing.T, c Config) {
	wd, a := openOrders(t, c)
	defer quitRemote(t, wd)

	for _, f := range []func() error{
		func() error { return a.ClickButton("no-such-button") },
		func() error { return a.ClickTab(7) },
		func() error { return a.ClickTableButton("orders", 9, 3) },
		func() error { return a.Input("order", "missing", "x") },
	} {
		if err := f(); !errors.Is(err, vaadin.ErrElementNotFound) {
			t.Errorf("error = %v, want ErrElementNotFound", err)
		}
	}
	checkStatus(t, wd, "")
}

func testStabilityTimeout(t *testing.T, c Config) {
	p := vaadin.Policy{Timeout: time.Second, Interval: 50 * time.Millisecond}
	wd, a := openOrders(t, c, vaadin.WithShortWait(p))
	defer quitRemote(t, wd)

	start := time.Now()
	err := a.ClickButton("stuck")
	var terr *vaadin.StabilityTimeoutError
	if !errors.As(err, &terr) {
		t.Fatalf("ClickButton(stuck) = %v, want a *vaadin.StabilityTimeoutError", err)
	}
	if elapsed := time.Since(start); elapsed < p.Timeout || elapsed > 10*p.Timeout {
		t.Errorf("ClickButton(stuck) returned after %v, want about %v", elapsed, p.Timeout)
	}
	if terr.Polls < 2 {
		t.Errorf("terr.Polls = %d, want at least 2", terr.Polls)
	}
}

func testStaleIndicator(t *testing.T, c Config) {
	p := vaadin.Policy{Timeout: 5 * time.Second, Interval: 5 * time.Millisecond}
	wd, a := openOrders(t, c, vaadin.WithShortWait(p))
	defer quitRemote(t, wd)

	if err := a.ClickButton("rerender"); err != nil {
		t.Fatalf("ClickButton(rerender) returned error: %v", err)
	}
	checkStatus(t, wd, "rerendered")
}

func testBrowserLog(t *testing.T, c Config) {
	if c.WebDriver.Browser == "firefox" {
		t.Skip("The log interface is not supported on Firefox, since it is not yet part of the W3C spec.")
	}
	c.WebDriver.BrowserLogLevel = "all"
	wd := newRemote(t, c)
	defer quitRemote(t, wd)

	page := c.ServerURL + "/log"
	if err := wd.Get(page); err != nil {
		t.Fatalf("wd.Get(%q) returned error: %v", page, err)
	}
	msgs, err := browser.SevereMessages(wd)
	if err != nil {
		t.Fatalf("browser.SevereMessages() returned error: %v", err)
	}
	found := false
	for _, m := range msgs {
		if strings.Contains(m.Message, "exception log") {
			found = true
		}
		if strings.Contains(m.Message, "console log") {
			t.Errorf("SevereMessages() returned a console.log message: %+v", m)
		}
	}
	if !found {
		t.Errorf("SevereMessages() = %+v, want the uncaught exception", msgs)
	}
}

// addrRewriter rewrites all requested addresses to the one specified by the
// URL.
type addrRewriter struct{ u *url.URL }

func (a *addrRewriter) Rewrite(ctx context.Context, _ *socks5.Request) (context.Context, *socks5.AddrSpec) {
	port, err := strconv.Atoi(a.u.Port())
	if err != nil {
		panic(err)
	}
	return ctx, &socks5.AddrSpec{
		FQDN: a.u.Hostname(),
		Port: port,
	}
}

func testProxy(t *testing.T, c Config) {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		t.Fatalf("url.Parse(%q) returned error: %v", c.ServerURL, err)
	}
	socks, err := socks5.New(&socks5.Config{
		Rewriter: &addrRewriter{u},
	})
	if err != nil {
		t.Fatalf("socks5.New(_) returned error: %v", err)
	}
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen(_, _) return error: %v", err)
	}

	// Start serving SOCKS connections, but don't fail the test once the
	// listener is closed at the end of execution.
	done := make(chan struct{})
	go func() {
		err := socks.Serve(l)
		select {
		case <-done:
			return
		default:
		}
		if err != nil {
			t.Errorf("socks.Serve(_) returned error: %v", err)
		}
	}()
	defer func() {
		close(done)
		l.Close()
	}()

	// The host only resolves through the proxy.
	c.WebDriver.Proxy = "socks5://" + l.Addr().String()
	c.ServerURL = "http://orders.vaadin.test"
	wd, a := openOrders(t, c)
	defer quitRemote(t, wd)

	if err := a.ClickTab(1); err != nil {
		t.Fatalf("ClickTab(1) through the proxy returned error: %v", err)
	}
	checkStatus(t, wd, "tab General")
}
