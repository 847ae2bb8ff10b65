// Package browser builds WebDriver capabilities from configuration and opens
// sessions against an already running WebDriver server.
package browser

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"github.com/tebeka/selenium/firefox"
	"github.com/tebeka/selenium/log"
	"github.com/wanmail/vaadin-selenium/internal/config"
)

// NewRemote opens a session. Tests replace it to avoid a real server.
var NewRemote = selenium.NewRemote

// Capabilities returns the capabilities requesting the configured browser.
func Capabilities(c config.WebDriverConfig) (selenium.Capabilities, error) {
	caps := selenium.Capabilities{
		"browserName": c.Browser,
	}
	switch c.Browser {
	case "chrome":
		chrCaps := chrome.Capabilities{
			Path: c.Binary,
			Args: []string{
				// Containers run Chrome as root, where the sandbox is unavailable.
				"--no-sandbox",
			},
			W3C: true,
		}
		if c.Headless {
			chrCaps.Args = append(chrCaps.Args, "--headless")
		}
		caps.AddChrome(chrCaps)
	case "firefox":
		f := firefox.Capabilities{}
		if c.Binary != "" {
			p, err := filepath.Abs(c.Binary)
			if err != nil {
				return nil, fmt.Errorf("firefox binary %q: %w", c.Binary, err)
			}
			f.Binary = p
		}
		if c.Headless {
			f.Args = append(f.Args, "-headless")
		}
		caps.AddFirefox(f)
	default:
		return nil, fmt.Errorf("unsupported browser %q", c.Browser)
	}

	if c.Proxy != "" {
		p, err := parseProxy(c.Proxy)
		if err != nil {
			return nil, err
		}
		caps.AddProxy(p)
		if ff, ok := caps[firefox.CapabilitiesKey].(firefox.Capabilities); ok && p.SOCKS != "" {
			// Firefox resolves names locally unless told otherwise.
			if ff.Prefs == nil {
				ff.Prefs = make(map[string]interface{})
			}
			ff.Prefs["network.proxy.socks_remote_dns"] = true
			caps.AddFirefox(ff)
		}
	}

	if c.BrowserLogLevel != "" {
		level, err := parseLevel(c.BrowserLogLevel)
		if err != nil {
			return nil, err
		}
		caps.SetLogLevel(log.Browser, level)
	}
	return caps, nil
}

func parseProxy(s string) (selenium.Proxy, error) {
	u, err := url.Parse(s)
	if err != nil {
		return selenium.Proxy{}, fmt.Errorf("proxy %q: %w", s, err)
	}
	if u.Host == "" {
		return selenium.Proxy{}, fmt.Errorf("proxy %q: missing host", s)
	}
	switch u.Scheme {
	case "socks5":
		p := selenium.Proxy{
			Type:         selenium.Manual,
			SOCKS:        u.Host,
			SOCKSVersion: 5,
		}
		if u.User != nil {
			p.SOCKSUsername = u.User.Username()
			p.SOCKSPassword, _ = u.User.Password()
		}
		return p, nil
	case "http":
		return selenium.Proxy{
			Type: selenium.Manual,
			HTTP: u.Host,
			SSL:  u.Host,
		}, nil
	}
	return selenium.Proxy{}, fmt.Errorf("proxy %q: unsupported scheme %q", s, u.Scheme)
}

func parseLevel(s string) (log.Level, error) {
	level := log.Level(strings.ToUpper(s))
	switch level {
	case log.Off, log.Severe, log.Warning, log.Info, log.Debug, log.All:
		return level, nil
	}
	return "", fmt.Errorf("unknown browser log level %q", s)
}

// Dial opens a session with the configured browser on the WebDriver server
// at c.URL.
func Dial(c config.WebDriverConfig) (selenium.WebDriver, error) {
	caps, err := Capabilities(c)
	if err != nil {
		return nil, err
	}
	wd, err := NewRemote(caps, c.URL)
	if err != nil {
		return nil, fmt.Errorf("NewRemote(%q) returned error: %w", c.URL, err)
	}
	return wd, nil
}

// SevereMessages returns the browser console messages logged at SEVERE since
// the previous call. Drivers that do not collect browser logs return an error.
func SevereMessages(wd selenium.WebDriver) ([]log.Message, error) {
	msgs, err := wd.Log(log.Browser)
	if err != nil {
		return nil, err
	}
	var severe []log.Message
	for _, m := range msgs {
		if m.Level == log.Severe {
			severe = append(severe, m)
		}
	}
	return severe, nil
}
