// Package fakewd provides an in-memory selenium.WebDriver backed by a parsed
// HTML document. XPath lookups are evaluated with htmlquery, so locators can
// be exercised without a browser.
//
// Only the methods used by this module are implemented; calling any other
// WebDriver or WebElement method panics.
package fakewd

import (
	"fmt"
	"strings"
	"sync"

	"github.com/antchfx/htmlquery"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/log"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// StaleError returns the error a W3C driver reports for a detached element.
func StaleError() error {
	return &selenium.Error{
		Err:      "stale element reference",
		Message:  "element is not attached to the page document",
		HTTPCode: 404,
	}
}

func noSuchElement(by, value string) error {
	return &selenium.Error{
		Err:      "no such element",
		Message:  fmt.Sprintf("Unable to locate element: %s=%s", by, value),
		HTTPCode: 404,
	}
}

type hook struct {
	expr string
	fn   func(*Driver)
}

// Driver is a fake WebDriver session showing a single document.
type Driver struct {
	selenium.WebDriver

	mu           sync.Mutex
	doc          *html.Node
	url          string
	hooks        []hook
	faults       []error
	scheduled    map[int][]func(*Driver)
	finds        int
	interactions []string
	messages     []log.Message
	quit         bool

	// Script, if set, answers ExecuteScript. Otherwise scripts return false.
	Script func(script string, args []interface{}) (interface{}, error)
}

// New returns a Driver showing page.
func New(page string) (*Driver, error) {
	d := &Driver{scheduled: make(map[int][]func(*Driver))}
	if err := d.SetPage(page); err != nil {
		return nil, err
	}
	return d, nil
}

// SetPage replaces the document. Elements found before become stale.
func (d *Driver) SetPage(page string) error {
	doc, err := htmlquery.Parse(strings.NewReader(page))
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.doc = doc
	d.mu.Unlock()
	return nil
}

// Remove detaches every node matching expr and returns how many were removed.
func (d *Driver) Remove(expr string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	nodes := htmlquery.Find(d.doc, expr)
	for _, n := range nodes {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
	return len(nodes)
}

// Append parses fragment and appends it to every node matching expr.
func (d *Driver) Append(expr, fragment string) error {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, parent := range htmlquery.Find(d.doc, expr) {
		nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
		if err != nil {
			return err
		}
		for _, n := range nodes {
			parent.AppendChild(n)
		}
	}
	return nil
}

// SetAttr sets attribute name to value on every node matching expr.
func (d *Driver) SetAttr(expr, name, value string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	nodes := htmlquery.Find(d.doc, expr)
	for _, n := range nodes {
		setAttr(n, name, value)
	}
	return len(nodes)
}

// Source returns the HTML of the current document.
func (d *Driver) Source() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return htmlquery.OutputHTML(d.doc, true)
}

// OnClick registers fn to run after a click on any node matching expr.
func (d *Driver) OnClick(expr string, fn func(*Driver)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hooks = append(d.hooks, hook{expr: expr, fn: fn})
}

// FailFinds makes the next len(errs) FindElements calls return errs in order.
func (d *Driver) FailFinds(errs ...error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.faults = append(d.faults, errs...)
}

// AtFind runs fn right before the n-th (1-based) FindElements call.
func (d *Driver) AtFind(n int, fn func(*Driver)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scheduled[n] = append(d.scheduled[n], fn)
}

// Finds returns the number of FindElements calls so far.
func (d *Driver) Finds() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.finds
}

// Interactions returns the recorded element interactions and navigations,
// such as "click #save" or "keys #order.total 42".
func (d *Driver) Interactions() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.interactions...)
}

// AddLogMessage queues a browser console message returned by Log.
func (d *Driver) AddLogMessage(m log.Message) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messages = append(d.messages, m)
}

// Quitted reports whether Quit was called.
func (d *Driver) Quitted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.quit
}

func (d *Driver) record(format string, args ...interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.interactions = append(d.interactions, fmt.Sprintf(format, args...))
}

// Get records a navigation. The document is left unchanged.
func (d *Driver) Get(url string) error {
	d.mu.Lock()
	d.url = url
	d.mu.Unlock()
	d.record("get %s", url)
	return nil
}

// CurrentURL returns the last URL passed to Get.
func (d *Driver) CurrentURL() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.url, nil
}

// PageSource returns the HTML of the current document.
func (d *Driver) PageSource() (string, error) {
	return d.Source(), nil
}

// Quit ends the fake session.
func (d *Driver) Quit() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.quit = true
	return nil
}

// Log returns and drains the queued console messages.
func (d *Driver) Log(typ log.Type) ([]log.Message, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	msgs := d.messages
	d.messages = nil
	return msgs, nil
}

// ExecuteScript answers with Script, or false when Script is nil.
func (d *Driver) ExecuteScript(script string, args []interface{}) (interface{}, error) {
	if d.Script != nil {
		return d.Script(script, args)
	}
	return false, nil
}

// FindElement returns the first element matching by and value.
func (d *Driver) FindElement(by, value string) (selenium.WebElement, error) {
	elems, err := d.FindElements(by, value)
	if err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return nil, noSuchElement(by, value)
	}
	return elems[0], nil
}

// FindElements returns the elements matching by and value in document order.
// Scheduled callbacks and queued faults are applied first.
func (d *Driver) FindElements(by, value string) ([]selenium.WebElement, error) {
	d.mu.Lock()
	d.finds++
	pending := d.scheduled[d.finds]
	delete(d.scheduled, d.finds)
	d.mu.Unlock()
	for _, fn := range pending {
		fn(d)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.faults) > 0 {
		err := d.faults[0]
		d.faults = d.faults[1:]
		return nil, err
	}
	nodes, err := query(d.doc, by, value, false)
	if err != nil {
		return nil, err
	}
	return d.wrap(nodes), nil
}

func (d *Driver) wrap(nodes []*html.Node) []selenium.WebElement {
	elems := make([]selenium.WebElement, len(nodes))
	for i, n := range nodes {
		elems[i] = &Element{d: d, n: n}
	}
	return elems
}

func query(top *html.Node, by, value string, relative bool) ([]*html.Node, error) {
	prefix := "//"
	if relative {
		prefix = ".//"
	}
	var expr string
	switch by {
	case selenium.ByXPATH:
		expr = value
	case selenium.ByID:
		expr = prefix + "*[@id='" + value + "']"
	case selenium.ByTagName:
		expr = prefix + value
	case selenium.ByClassName:
		expr = prefix + "*[contains(concat(' ', normalize-space(@class), ' '), ' " + value + " ')]"
	default:
		return nil, &selenium.Error{Err: "invalid argument", Message: "unsupported locator strategy " + by, HTTPCode: 400}
	}
	nodes, err := htmlquery.QueryAll(top, expr)
	if err != nil {
		return nil, &selenium.Error{Err: "invalid selector", Message: err.Error(), HTTPCode: 400}
	}
	return nodes, nil
}

// attached reports whether n is still part of the current document.
func (d *Driver) attached(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == d.doc {
			return true
		}
	}
	return false
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if a.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func removeAttr(n *html.Node, name string) {
	for i, a := range n.Attr {
		if a.Key == name {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// describe names n as "#id" when it has an id, "tag.class" otherwise.
func describe(n *html.Node) string {
	if id, ok := attr(n, "id"); ok && id != "" {
		return "#" + id
	}
	if class, ok := attr(n, "class"); ok {
		if fields := strings.Fields(class); len(fields) > 0 {
			return n.Data + "." + fields[0]
		}
	}
	return n.Data
}
