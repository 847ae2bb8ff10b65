// Package config loads the settings of the vaadinrun command from a YAML file
// and VAADIN_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/blang/semver"
	"github.com/spf13/viper"
	vaadin "github.com/wanmail/vaadin-selenium"
)

// EnvPrefix prefixes environment overrides, e.g. VAADIN_WAIT_SHORT_TIMEOUT.
const EnvPrefix = "VAADIN"

// Config is the root configuration.
type Config struct {
	WebDriver WebDriverConfig `mapstructure:"webdriver" yaml:"webdriver"`
	Wait      WaitConfig      `mapstructure:"wait" yaml:"wait"`
	Framework FrameworkConfig `mapstructure:"framework" yaml:"framework"`
	Logger    LoggerConfig    `mapstructure:"logger" yaml:"logger"`
}

// WebDriverConfig selects the WebDriver endpoint and the browser it starts.
type WebDriverConfig struct {
	URL     string `mapstructure:"url" yaml:"url"`
	Browser string `mapstructure:"browser" yaml:"browser"`
	// Headless adds the browser's headless flag.
	Headless bool `mapstructure:"headless" yaml:"headless"`
	// Binary is the browser executable. Empty lets the driver pick one.
	Binary string `mapstructure:"binary" yaml:"binary"`
	// BrowserLogLevel, when set, asks the driver to collect console messages
	// at that level and above (e.g. "SEVERE").
	BrowserLogLevel string `mapstructure:"browser_log_level" yaml:"browser_log_level"`
	// Proxy routes the browser traffic, e.g. "socks5://127.0.0.1:1080" or
	// "http://proxy:3128".
	Proxy string `mapstructure:"proxy" yaml:"proxy"`
}

// WaitConfig tunes the stability waits.
type WaitConfig struct {
	ShortTimeout time.Duration `mapstructure:"short_timeout" yaml:"short_timeout"`
	LongTimeout  time.Duration `mapstructure:"long_timeout" yaml:"long_timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	SettlePause  time.Duration `mapstructure:"settle_pause" yaml:"settle_pause"`
	Strict       bool          `mapstructure:"strict" yaml:"strict"`
}

// FrameworkConfig describes the application under test.
type FrameworkConfig struct {
	Version string `mapstructure:"version" yaml:"version"`
}

// LoggerConfig configures the CLI logger.
type LoggerConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Browsers lists the supported values of webdriver.browser.
var Browsers = []string{"chrome", "firefox"}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	// -- WebDriver --
	v.SetDefault("webdriver.url", "http://127.0.0.1:4444/wd/hub")
	v.SetDefault("webdriver.browser", "chrome")
	v.SetDefault("webdriver.headless", true)
	v.SetDefault("webdriver.binary", "")
	v.SetDefault("webdriver.browser_log_level", "")
	v.SetDefault("webdriver.proxy", "")

	// -- Wait --
	v.SetDefault("wait.short_timeout", vaadin.DefaultShortTimeout)
	v.SetDefault("wait.long_timeout", vaadin.DefaultLongTimeout)
	v.SetDefault("wait.poll_interval", vaadin.DefaultPollInterval)
	v.SetDefault("wait.settle_pause", vaadin.DefaultSettlePause)
	v.SetDefault("wait.strict", false)

	// -- Framework --
	v.SetDefault("framework.version", "7.7.0")

	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
}

// NewDefaultConfig returns the configuration made of defaults only.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewViper returns a viper instance with defaults and environment overrides
// registered. A non-empty path names the configuration file to read.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path == "" {
		return v, nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return v, nil
}

// Load reads the configuration at path, which may be empty, and validates it.
func Load(path string) (*Config, error) {
	v, err := NewViper(path)
	if err != nil {
		return nil, err
	}
	return NewConfigFromViper(v)
}

// NewConfigFromViper decodes and validates the configuration held by v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.WebDriver.URL == "" {
		return fmt.Errorf("webdriver.url is required")
	}
	if !knownBrowser(c.WebDriver.Browser) {
		return fmt.Errorf("webdriver.browser must be one of %s, got %q", strings.Join(Browsers, ", "), c.WebDriver.Browser)
	}
	for _, d := range []struct {
		key string
		val time.Duration
	}{
		{"wait.short_timeout", c.Wait.ShortTimeout},
		{"wait.long_timeout", c.Wait.LongTimeout},
		{"wait.poll_interval", c.Wait.PollInterval},
	} {
		if d.val <= 0 {
			return fmt.Errorf("%s must be positive, got %v", d.key, d.val)
		}
	}
	if c.Wait.SettlePause < 0 {
		return fmt.Errorf("wait.settle_pause must not be negative, got %v", c.Wait.SettlePause)
	}
	if _, err := c.FrameworkVersion(); err != nil {
		return err
	}
	return nil
}

func knownBrowser(name string) bool {
	for _, b := range Browsers {
		if b == name {
			return true
		}
	}
	return false
}

// FrameworkVersion parses framework.version. A missing patch or minor
// component is accepted ("8" or "7.7").
func (c *Config) FrameworkVersion() (semver.Version, error) {
	s := strings.TrimPrefix(strings.TrimSpace(c.Framework.Version), "v")
	for strings.Count(s, ".") < 2 && s != "" {
		s += ".0"
	}
	v, err := semver.Parse(s)
	if err != nil {
		return semver.Version{}, fmt.Errorf("framework.version %q: %w", c.Framework.Version, err)
	}
	return v, nil
}

// ShortWait returns the policy applied after clicks and input.
func (c *Config) ShortWait() vaadin.Policy {
	return vaadin.Policy{Timeout: c.Wait.ShortTimeout, Interval: c.Wait.PollInterval}
}

// LongWait returns the policy applied while overlays close.
func (c *Config) LongWait() vaadin.Policy {
	return vaadin.Policy{Timeout: c.Wait.LongTimeout, Interval: c.Wait.PollInterval}
}

// ActionOptions translates the wait and framework settings to options of
// vaadin.NewActions.
func (c *Config) ActionOptions() ([]vaadin.Option, error) {
	version, err := c.FrameworkVersion()
	if err != nil {
		return nil, err
	}
	opts := []vaadin.Option{
		vaadin.WithShortWait(c.ShortWait()),
		vaadin.WithLongWait(c.LongWait()),
		vaadin.WithSettlePause(c.Wait.SettlePause),
		vaadin.WithFrameworkVersion(version),
	}
	if c.Wait.Strict {
		opts = append(opts, vaadin.StrictMatching())
	}
	return opts, nil
}
