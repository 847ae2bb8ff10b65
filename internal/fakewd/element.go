package fakewd

import (
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/tebeka/selenium"
	"golang.org/x/net/html"
)

// Element is a node of a Driver's document.
type Element struct {
	selenium.WebElement

	d *Driver
	n *html.Node
}

// Node returns the underlying HTML node.
func (e *Element) Node() *html.Node {
	return e.n
}

func (e *Element) check() error {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if !e.d.attached(e.n) {
		return StaleError()
	}
	return nil
}

// Click records the click, toggles check boxes and runs matching OnClick
// hooks.
func (e *Element) Click() error {
	if err := e.check(); err != nil {
		return err
	}
	e.d.record("click %s", describe(e.n))

	e.d.mu.Lock()
	if typ, _ := attr(e.n, "type"); e.n.Data == "input" && typ == "checkbox" {
		if _, checked := attr(e.n, "checked"); checked {
			removeAttr(e.n, "checked")
		} else {
			setAttr(e.n, "checked", "checked")
		}
	}
	var fire []func(*Driver)
	for _, h := range e.d.hooks {
		for _, n := range htmlquery.Find(e.d.doc, h.expr) {
			if n == e.n {
				fire = append(fire, h.fn)
				break
			}
		}
	}
	e.d.mu.Unlock()

	for _, fn := range fire {
		fn(e.d)
	}
	return nil
}

// Clear empties the value attribute.
func (e *Element) Clear() error {
	if err := e.check(); err != nil {
		return err
	}
	e.d.record("clear %s", describe(e.n))
	e.d.mu.Lock()
	setAttr(e.n, "value", "")
	e.d.mu.Unlock()
	return nil
}

// SendKeys appends keys to the value attribute.
func (e *Element) SendKeys(keys string) error {
	if err := e.check(); err != nil {
		return err
	}
	e.d.record("keys %s %s", describe(e.n), keys)
	e.d.mu.Lock()
	v, _ := attr(e.n, "value")
	setAttr(e.n, "value", v+keys)
	e.d.mu.Unlock()
	return nil
}

// GetAttribute returns the named attribute, or an empty string.
func (e *Element) GetAttribute(name string) (string, error) {
	if err := e.check(); err != nil {
		return "", err
	}
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	v, _ := attr(e.n, name)
	return v, nil
}

// TagName returns the element name.
func (e *Element) TagName() (string, error) {
	if err := e.check(); err != nil {
		return "", err
	}
	return e.n.Data, nil
}

// Text returns the text content.
func (e *Element) Text() (string, error) {
	if err := e.check(); err != nil {
		return "", err
	}
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	return strings.TrimSpace(htmlquery.InnerText(e.n)), nil
}

// IsSelected reports whether the checked attribute is present.
func (e *Element) IsSelected() (bool, error) {
	if err := e.check(); err != nil {
		return false, err
	}
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	_, checked := attr(e.n, "checked")
	return checked, nil
}

// IsDisplayed reports false when the element or an ancestor is hidden with
// "display: none" or the hidden attribute.
func (e *Element) IsDisplayed() (bool, error) {
	if err := e.check(); err != nil {
		return false, err
	}
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	for p := e.n; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		if _, hidden := attr(p, "hidden"); hidden {
			return false, nil
		}
		style, _ := attr(p, "style")
		if strings.Contains(strings.ReplaceAll(style, " ", ""), "display:none") {
			return false, nil
		}
	}
	return true, nil
}

// FindElement returns the first descendant matching by and value.
func (e *Element) FindElement(by, value string) (selenium.WebElement, error) {
	elems, err := e.FindElements(by, value)
	if err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return nil, noSuchElement(by, value)
	}
	return elems[0], nil
}

// FindElements returns the descendants matching by and value.
func (e *Element) FindElements(by, value string) ([]selenium.WebElement, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	nodes, err := query(e.n, by, value, true)
	if err != nil {
		return nil, err
	}
	return e.d.wrap(nodes), nil
}
