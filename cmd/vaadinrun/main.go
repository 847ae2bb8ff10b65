// Command vaadinrun plays YAML scenarios against a Vaadin application through
// a WebDriver server.
//
//	vaadinrun run orders.yaml --config vaadinrun.yaml
//	vaadinrun validate orders.yaml
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
