/*
Package vaadin drives the widgets of a Vaadin application (tables, tab sheets,
form fields and ConfirmDialog popups) through a Selenium/WebDriver session.

Each action builds a Locator from structural coordinates (table id, row,
column, CSS class), performs one interaction and then blocks until the page
is stable again: no loading indicator is displayed and, after confirming a
dialog, no sub-window remains. Elements detached by a re-render while polling
are retried until the wait policy expires.

The session is not managed by this package. Connect to a running WebDriver
server with github.com/tebeka/selenium and pass the session in.

Example usage:

	caps := selenium.Capabilities{"browserName": "chrome"}
	wd, err := selenium.NewRemote(caps, "http://127.0.0.1:4444/wd/hub")
	if err != nil {
		return err
	}
	defer wd.Quit()

	if err := wd.Get("http://localhost:8080/orders"); err != nil {
		return err
	}

	actions, err := vaadin.NewActions(wd)
	if err != nil {
		return err
	}
	if err := actions.Input("order", "total", "42"); err != nil {
		return err
	}
	if err := actions.ClickButton("save"); err != nil {
		return err
	}
	// Delete the first order and confirm.
	if err := actions.ClickTableButtonWithConfirmation("orders", 1, 4); err != nil {
		return err
	}
*/
package vaadin
