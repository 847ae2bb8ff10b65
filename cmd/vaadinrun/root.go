package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tebeka/selenium"
	vaadin "github.com/wanmail/vaadin-selenium"
	"github.com/wanmail/vaadin-selenium/internal/browser"
	"github.com/wanmail/vaadin-selenium/internal/config"
	"github.com/wanmail/vaadin-selenium/internal/observability"
	"github.com/wanmail/vaadin-selenium/scenario"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// dial opens the WebDriver session. Tests replace it.
var dial = browser.Dial

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:           "vaadinrun",
		Short:         "Play widget scenarios against a Vaadin application.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (defaults and VAADIN_* environment variables apply)")

	root.AddCommand(&cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scenario in a new browser session.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(cmd, cfgFile, args[0])
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "validate <scenario.yaml>",
		Short: "Check a scenario file without opening a browser.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scenario.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK %s (%d steps)\n", args[0], len(sc.Steps))
			return nil
		},
	})
	return root
}

func runScenario(cmd *cobra.Command, cfgFile, path string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	logger, err := observability.New(cfg.Logger, zapcore.AddSync(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	defer logger.Sync()

	sc, err := scenario.Load(path)
	if err != nil {
		return err
	}
	opts, err := cfg.ActionOptions()
	if err != nil {
		return err
	}

	logger.Info("Opening session.", zap.String("url", cfg.WebDriver.URL), zap.String("browser", cfg.WebDriver.Browser))
	wd, err := dial(cfg.WebDriver)
	if err != nil {
		return err
	}
	defer func() {
		if qerr := wd.Quit(); qerr != nil {
			logger.Warn("Failed to quit session.", zap.Error(qerr))
		}
	}()

	actions, err := vaadin.NewActions(wd, append(opts, vaadin.WithLogger(logger))...)
	if err != nil {
		return err
	}
	if err := scenario.NewRunner(wd, actions, logger).Run(cmd.Context(), sc); err != nil {
		if errors.Is(err, vaadin.ErrStabilityTimeout) {
			dumpBrowserLog(logger, wd)
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "PASS %s (%d steps)\n", sc.Name, len(sc.Steps))
	return nil
}

// dumpBrowserLog logs the severe console messages, which usually explain why
// the client engine never went idle.
func dumpBrowserLog(logger *zap.Logger, wd selenium.WebDriver) {
	msgs, err := browser.SevereMessages(wd)
	if err != nil {
		logger.Debug("Browser log unavailable.", zap.Error(err))
		return
	}
	for _, m := range msgs {
		logger.Warn("Browser console.", zap.Time("at", m.Timestamp), zap.String("message", m.Message))
	}
}
