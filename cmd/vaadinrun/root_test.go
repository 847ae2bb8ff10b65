package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/log"
	vaadin "github.com/wanmail/vaadin-selenium"
	"github.com/wanmail/vaadin-selenium/internal/browser"
	"github.com/wanmail/vaadin-selenium/internal/config"
	"github.com/wanmail/vaadin-selenium/internal/fakewd"
)

const page = `<html><body>
<div class="v-loading-indicator" style="display: none"></div>
<input id="order.number" class="v-textfield" value="">
<div id="save" class="v-button">Save</div>
</body></html>`

const configYAML = `
wait:
  short_timeout: 50ms
  long_timeout: 50ms
  poll_interval: 5ms
  settle_pause: 0s
logger:
  level: debug
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// fakeDial makes the commands use d instead of a WebDriver server.
func fakeDial(t *testing.T, d *fakewd.Driver) {
	t.Helper()
	dial = func(config.WebDriverConfig) (selenium.WebDriver, error) { return d, nil }
	t.Cleanup(func() { dial = browser.Dial })
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "vaadinrun.yaml", configYAML)
	sc := writeFile(t, dir, "save.yaml", `
name: save order
steps:
  - open: http://localhost:8080/orders
  - input: {entity: order, attribute: number, value: "1042"}
  - click_button: save
`)
	d, err := fakewd.New(page)
	require.NoError(t, err)
	fakeDial(t, d)

	stdout, stderr, err := execute(t, "run", sc, "--config", cfg)
	require.NoError(t, err, stderr)
	assert.Equal(t, "PASS save order (3 steps)\n", stdout)
	assert.Equal(t, []string{
		"get http://localhost:8080/orders",
		"clear #order.number",
		"keys #order.number 1042",
		"click #save",
	}, d.Interactions())
	assert.True(t, d.Quitted(), "session was not quit")
	assert.Contains(t, stderr, "Running step.")
	assert.Contains(t, stderr, "Clicking.", "debug level from the config file applies")
}

func TestRunTimeoutDumpsBrowserLog(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "vaadinrun.yaml", configYAML)
	sc := writeFile(t, dir, "save.yaml", "steps:\n  - click_button: save\n")
	d, err := fakewd.New(page)
	require.NoError(t, err)
	d.OnClick("//*[@id='save']", func(d *fakewd.Driver) {
		d.SetAttr("//div[contains(@class, 'v-loading-indicator')]", "style", "")
	})
	d.AddLogMessage(log.Message{Timestamp: time.Now(), Level: log.Severe, Message: "Uncaught TypeError: x is undefined"})
	fakeDial(t, d)

	stdout, stderr, err := execute(t, "run", sc, "--config", cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, vaadin.ErrStabilityTimeout), "Run() = %v, want ErrStabilityTimeout", err)
	assert.Contains(t, err.Error(), "#1 click_button")
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Uncaught TypeError: x is undefined")
	assert.True(t, d.Quitted(), "session was not quit after a failure")
}

func TestRunDialError(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "vaadinrun.yaml", configYAML)
	sc := writeFile(t, dir, "save.yaml", "steps:\n  - click_button: save\n")
	refused := errors.New("connection refused")
	dial = func(config.WebDriverConfig) (selenium.WebDriver, error) { return nil, refused }
	t.Cleanup(func() { dial = browser.Dial })

	_, _, err := execute(t, "run", sc, "--config", cfg)
	assert.ErrorIs(t, err, refused)
}

func TestRunRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "vaadinrun.yaml", configYAML)
	bad := writeFile(t, dir, "bad.yaml", "steps:\n  - click_tab: -1\n")
	dial = func(config.WebDriverConfig) (selenium.WebDriver, error) {
		t.Fatal("dialed a session for an invalid scenario")
		return nil, nil
	}
	t.Cleanup(func() { dial = browser.Dial })

	_, _, err := execute(t, "run", bad, "--config", cfg)
	assert.ErrorContains(t, err, "tab index must be positive")

	_, _, err = execute(t, "run")
	assert.Error(t, err, "missing scenario argument")

	badCfg := writeFile(t, dir, "badcfg.yaml", "webdriver:\n  browser: mosaic\n")
	_, _, err = execute(t, "run", bad, "--config", badCfg)
	assert.ErrorContains(t, err, "webdriver.browser")
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.yaml", "steps:\n  - wait_idle: true\n  - click_tab: 3\n")
	bad := writeFile(t, dir, "bad.yaml", "steps:\n  - click_tab: 3\n    wait_idle: true\n")

	stdout, _, err := execute(t, "validate", good)
	require.NoError(t, err)
	assert.Equal(t, "OK "+good+" (2 steps)\n", stdout)

	_, _, err = execute(t, "validate", bad)
	assert.ErrorContains(t, err, "more than one action")
}
