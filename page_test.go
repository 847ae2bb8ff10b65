package vaadin

import (
	"testing"
	"time"

	"github.com/wanmail/vaadin-selenium/internal/fakewd"
)

// ordersPage is a trimmed rendering of a Vaadin 7 screen: a tab sheet, an
// order table with action buttons, a tree table and a form.
const ordersPage = `<!DOCTYPE html>
<html><body>
<div class="v-loading-indicator first" style="position: absolute; display: none"></div>
<div class="v-tabsheet v-widget">
  <div class="v-tabsheet-tabcontainer">
    <table><tbody><tr>
      <td class="v-tabsheet-tabitemcell"><div class="v-tabsheet-tabitem"><div class="v-caption" id="tab-general">General</div></div></td>
      <td class="v-tabsheet-tabitemcell"><div class="v-tabsheet-tabitem"><div class="v-caption" id="tab-orders">Orders</div></div></td>
    </tr></tbody></table>
  </div>
</div>
<div id="orders" class="v-table v-widget">
  <div class="v-table-header-wrap"><table><tbody><tr>
    <td><div class="v-table-caption-container">Number</div></td>
  </tr></tbody></table></div>
  <div class="v-table-body">
    <table><tbody>
      <tr class="v-table-row">
        <td><div class="v-table-cell-wrapper">1001</div></td>
        <td><div class="v-table-cell-wrapper"><div id="edit-1" class="v-button v-widget">Edit</div></div></td>
        <td><div class="v-table-cell-wrapper"><div id="delete-1" class="v-button v-button-danger">Delete</div></div></td>
      </tr>
      <tr class="v-table-row-odd">
        <td><div class="v-table-cell-wrapper">1002</div></td>
        <td><div class="v-table-cell-wrapper"><div id="edit-2" class="v-button v-widget">Edit</div></div></td>
        <td><div class="v-table-cell-wrapper"><div id="delete-2" class="v-button v-button-danger">Delete</div></div></td>
      </tr>
    </tbody></table>
  </div>
</div>
<div id="categories" class="v-table v-treetable v-widget">
  <div class="v-table-body">
    <table><tbody>
      <tr><td><div class="v-table-cell-wrapper"><span id="toggle-1" class="v-treetable-treespacer v-treetable-node-closed"></span>Hardware</div></td></tr>
      <tr><td><div class="v-table-cell-wrapper"><span id="toggle-2" class="v-treetable-treespacer v-treetable-node-closed"></span>Software</div></td></tr>
    </tbody></table>
  </div>
</div>
<div class="v-formlayout">
  <input id="order.number" class="v-textfield v-widget" value="1001">
  <div id="order.customer" class="v-filterselect v-widget"><input class="v-filterselect-input" value=""></div>
  <div id="order.date" class="v-datefield v-datefield-popupcalendar v-widget"><input class="v-datefield-textfield" value=""></div>
  <span id="order.paid" class="v-checkbox v-widget"><input type="checkbox" id="gwt-uid-7"><label for="gwt-uid-7">Paid</label></span>
  <div id="it's &quot;quoted&quot;" class="v-label">odd id</div>
  <div id="save" class="v-button v-widget v-button-primary">Save</div>
</div>
</body></html>`

// confirmWindow is what the ConfirmDialog add-on appends to the body.
const confirmWindow = `<div class="v-window v-widget" id="confirm">
  <div class="v-window-contents">
    <div id="confirmdialog-ok-button" class="v-button">OK</div>
    <div id="confirmdialog-cancel-button" class="v-button">Cancel</div>
  </div>
</div>`

const (
	testTimeout  = 200 * time.Millisecond
	testInterval = 5 * time.Millisecond
)

var testPolicy = Policy{Timeout: testTimeout, Interval: testInterval}

func newTestDriver(t *testing.T) *fakewd.Driver {
	t.Helper()
	d, err := fakewd.New(ordersPage)
	if err != nil {
		t.Fatalf("fakewd.New() returned error: %v", err)
	}
	return d
}

func newTestActions(t *testing.T, d *fakewd.Driver, opts ...Option) *Actions {
	t.Helper()
	opts = append([]Option{
		WithShortWait(testPolicy),
		WithLongWait(testPolicy),
		WithSettlePause(0),
	}, opts...)
	a, err := NewActions(d, opts...)
	if err != nil {
		t.Fatalf("NewActions() returned error: %v", err)
	}
	return a
}

// showConfirmOnClick opens the confirmation window when expr is clicked and
// closes it when its OK button is clicked.
func showConfirmOnClick(t *testing.T, d *fakewd.Driver, expr string) {
	t.Helper()
	d.OnClick(expr, func(d *fakewd.Driver) {
		if err := d.Append("//body", confirmWindow); err != nil {
			t.Errorf("Append() returned error: %v", err)
		}
	})
	d.OnClick("//*[@id='confirmdialog-ok-button']", func(d *fakewd.Driver) {
		d.Remove("//div[@id='confirm']")
	})
}
