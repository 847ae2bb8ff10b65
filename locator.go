package vaadin

import (
	"fmt"
	"strings"

	"github.com/tebeka/selenium"
)

// Structural class names generated by the Vaadin client-side engine.
const (
	TableBodyClass        = "v-table-body"
	TableCellClass        = "v-table-cell-wrapper"
	TreeSpacerClass       = "v-treetable-treespacer"
	ButtonClass           = "v-button"
	TabContainerClass     = "v-tabsheet-tabcontainer"
	LoadingIndicator      = "v-loading-indicator"
	WindowClass           = "v-window "
	FieldSeparator        = "."
	ConfirmOKButtonID     = "confirmdialog-ok-button"
	ConfirmCancelButtonID = "confirmdialog-cancel-button"
)

// Kind identifies how a Locator addresses its target.
type Kind int

// The supported locator kinds.
const (
	KindID Kind = iota
	KindCellItem
	KindTreeExpander
	KindTab
	KindOverlay
	KindBusyIndicator
	KindXPath
)

func (k Kind) String() string {
	switch k {
	case KindID:
		return "id"
	case KindCellItem:
		return "cell-item"
	case KindTreeExpander:
		return "tree-expander"
	case KindTab:
		return "tab"
	case KindOverlay:
		return "overlay"
	case KindBusyIndicator:
		return "busy-indicator"
	case KindXPath:
		return "xpath"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Locator is a structured description of the element(s) an action targets. It
// is only turned into a WebDriver selector by Strategy, at lookup time.
type Locator struct {
	kind     Kind
	id       string // element id, table id or raw expression
	row, col int
	class    string
}

// ID returns a locator for the element whose id attribute equals id.
func ID(id string) Locator {
	return Locator{kind: KindID, id: id}
}

// FieldID returns the element id Vaadin forms assign to the field bound to
// attribute of entity.
func FieldID(entity, attribute string) string {
	return entity + FieldSeparator + attribute
}

// Field returns a locator for the form field bound to attribute of entity.
func Field(entity, attribute string) Locator {
	return ID(FieldID(entity, attribute))
}

// CellItem returns a locator for the element with a class containing class,
// inside the cell at the 1-based row and col of the body of the table with
// id tableID. Indices are not checked against the rendered table.
func CellItem(tableID string, row, col int, class string) Locator {
	return Locator{kind: KindCellItem, id: tableID, row: row, col: col, class: class}
}

// TableButton returns a locator for the button rendered in a table cell.
func TableButton(tableID string, row, col int) Locator {
	return CellItem(tableID, row, col, ButtonClass)
}

// TreeExpander returns a locator for the expand/collapse toggle of a tree
// table row.
func TreeExpander(tableID string, row, col int) Locator {
	return Locator{kind: KindTreeExpander, id: tableID, row: row, col: col}
}

// Tab returns a locator for the caption of the n-th (1-based) tab of a tab
// sheet.
func Tab(n int) Locator {
	return Locator{kind: KindTab, col: n}
}

// Overlays returns a locator matching every open sub-window, including
// ConfirmDialog popups.
func Overlays() Locator {
	return Locator{kind: KindOverlay}
}

// BusyIndicators returns a locator matching the client-side loading indicator.
func BusyIndicators() Locator {
	return Locator{kind: KindBusyIndicator}
}

// XPath returns a locator for a raw XPath expression.
func XPath(expr string) Locator {
	return Locator{kind: KindXPath, id: expr}
}

// Kind reports how l addresses its target.
func (l Locator) Kind() Kind {
	return l.kind
}

// Strategy returns the WebDriver find method and value for l.
func (l Locator) Strategy() (by, value string) {
	switch l.kind {
	case KindID:
		// W3C drivers rewrite ByID to the CSS selector "#id", which breaks on the
		// dots of field ids.
		return selenium.ByXPATH, "//*[@id=" + xpathLiteral(l.id) + "]"
	case KindCellItem:
		return selenium.ByXPATH, cellPath(l.id, l.row, l.col) + "//div" + classContains(l.class)
	case KindTreeExpander:
		return selenium.ByXPATH, cellPath(l.id, l.row, l.col) +
			"//div" + classContains(TableCellClass) +
			"//span" + classContains(TreeSpacerClass)
	case KindTab:
		return selenium.ByXPATH, fmt.Sprintf("//div%s/table/tbody/tr/td[%d]/div/div", classContains(TabContainerClass), l.col)
	case KindOverlay:
		return selenium.ByXPATH, "//div" + classContains(WindowClass)
	case KindBusyIndicator:
		return selenium.ByXPATH, "//div" + classContains(LoadingIndicator)
	}
	return selenium.ByXPATH, l.id
}

// String renders l as "by=value", suitable for logs and error messages.
func (l Locator) String() string {
	by, value := l.Strategy()
	return by + "=" + value
}

func cellPath(tableID string, row, col int) string {
	return fmt.Sprintf("//div[@id=%s]//div%s//tr[%d]/td[%d]", xpathLiteral(tableID), classContains(TableBodyClass), row, col)
}

func classContains(class string) string {
	return "[contains(@class, " + xpathLiteral(class) + ")]"
}

// xpathLiteral quotes s as an XPath 1.0 string literal. XPath has no escape
// sequences, so a value holding both quote kinds is split into a concat().
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, 2*len(parts)-1)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		if p != "" {
			quoted = append(quoted, "'"+p+"'")
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}
