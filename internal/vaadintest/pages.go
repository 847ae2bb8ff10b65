package vaadintest

import (
	"fmt"
	"net/http"
)

// ordersPage imitates the DOM of a Vaadin 7 application. Every action that
// would round trip to the server shows the loading indicator and marks the
// client active until its simulated response arrives.
var ordersPage = `
<html>
<head>
	<title>Vaadin Test Suite - Orders</title>
	<script>
		var pending = 0;
		window.vaadin = {clients: {orders: {isActive: function() { return pending > 0; }}}};

		function indicator() {
			return document.getElementsByClassName('v-loading-indicator')[0];
		}

		function roundTrip(delay, done) {
			pending++;
			indicator().style.display = 'block';
			setTimeout(function() {
				pending--;
				if (pending == 0) {
					indicator().style.display = 'none';
				}
				if (done) {
					done();
				}
			}, delay);
		}

		function setStatus(s) {
			document.getElementById('status').textContent = s;
		}

		function field(id) {
			var el = document.getElementById(id);
			return el.tagName == 'INPUT' ? el : el.getElementsByTagName('input')[0];
		}

		function save() {
			roundTrip(500, function() {
				setStatus('saved ' + field('order.number').value + ' ' +
					field('order.customer').value + ' ' + field('order.paid').checked);
			});
		}

		function selectTab(caption) {
			roundTrip(200, function() { setStatus('tab ' + caption); });
		}

		function expand(caption) {
			roundTrip(200, function() { setStatus('expanded ' + caption); });
		}

		function openOrder(number) {
			roundTrip(200, function() { setStatus('opened ' + number); });
		}

		function archive(number) {
			roundTrip(200, function() { setStatus('archived ' + number); });
		}

		function confirmDelete(number) {
			roundTrip(300, function() {
				var w = document.createElement('div');
				w.className = 'v-window v-widget';
				w.id = 'confirm';
				w.innerHTML = '<div class="v-window-contents">' +
					'<div id="confirmdialog-ok-button" class="v-button">OK</div>' +
					'<div id="confirmdialog-cancel-button" class="v-button">Cancel</div></div>';
				document.body.appendChild(w);
				document.getElementById('confirmdialog-ok-button').onclick = function() {
					// The window closes after the server confirmed the deletion.
					setTimeout(function() {
						document.body.removeChild(w);
						var row = document.getElementById('row-' + number);
						row.parentNode.removeChild(row);
						setStatus('deleted ' + number);
					}, 400);
				};
				document.getElementById('confirmdialog-cancel-button').onclick = function() {
					document.body.removeChild(w);
					setStatus('cancelled');
				};
			});
		}

		function stuck() {
			pending++;
			indicator().style.display = 'block';
		}

		// rerender replaces the loading indicator repeatedly while busy, so
		// references to it go stale between lookup and use.
		function rerender() {
			pending++;
			var n = 0;
			var timer = setInterval(function() {
				var old = indicator();
				var fresh = old.cloneNode(false);
				fresh.style.display = 'block';
				old.parentNode.replaceChild(fresh, old);
				if (++n == 20) {
					clearInterval(timer);
					pending--;
					fresh.style.display = 'none';
					setStatus('rerendered');
				}
			}, 20);
		}
	</script>
</head>
<body>
	<div class="v-loading-indicator first" style="position: absolute; display: none"></div>
	<div id="status" class="v-label"></div>

	<div class="v-tabsheet v-widget">
		<div class="v-tabsheet-tabcontainer">
			<table><tbody><tr>
				<td class="v-tabsheet-tabitemcell"><div class="v-tabsheet-tabitem"><div class="v-caption" onclick="selectTab('General')">General</div></div></td>
				<td class="v-tabsheet-tabitemcell"><div class="v-tabsheet-tabitem"><div class="v-caption" onclick="selectTab('Orders')">Orders</div></div></td>
			</tr></tbody></table>
		</div>
	</div>

	<div id="orders" class="v-table v-widget">
		<div class="v-table-body">
			<table><tbody>
				<tr id="row-1001">
					<td><div class="v-table-cell-wrapper">1001</div></td>
					<td><div class="v-table-cell-wrapper"><div class="v-link" onclick="openOrder(1001)">1001</div></div></td>
					<td><div class="v-table-cell-wrapper"><div class="v-button v-button-danger" onclick="confirmDelete(1001)">Delete</div></div></td>
					<td><div class="v-table-cell-wrapper"><div class="v-button" onclick="archive(1001)">Archive</div></div></td>
				</tr>
				<tr id="row-1002">
					<td><div class="v-table-cell-wrapper">1002</div></td>
					<td><div class="v-table-cell-wrapper"><div class="v-link" onclick="openOrder(1002)">1002</div></div></td>
					<td><div class="v-table-cell-wrapper"><div class="v-button v-button-danger" onclick="confirmDelete(1002)">Delete</div></div></td>
					<td><div class="v-table-cell-wrapper"><div class="v-button" onclick="archive(1002)">Archive</div></div></td>
				</tr>
			</tbody></table>
		</div>
	</div>

	<div id="categories" class="v-table v-treetable v-widget">
		<div class="v-table-body">
			<table><tbody>
				<tr><td><div class="v-table-cell-wrapper"><span class="v-treetable-treespacer v-treetable-node-closed" style="display: inline-block; width: 16px; height: 16px" onclick="expand('Hardware')"></span>Hardware</div></td></tr>
			</tbody></table>
		</div>
	</div>

	<div class="v-formlayout">
		<input id="order.number" class="v-textfield v-widget" value="1001">
		<div id="order.customer" class="v-filterselect v-widget"><input class="v-filterselect-input" value=""></div>
		<span id="order.paid" class="v-checkbox v-widget"><input type="checkbox" id="gwt-uid-7"><label for="gwt-uid-7">Paid</label></span>
		<div id="save" class="v-button v-widget" onclick="save()">Save</div>
		<div id="stuck" class="v-button v-widget" onclick="stuck()">Stuck</div>
		<div id="rerender" class="v-button v-widget" onclick="rerender()">Rerender</div>
	</div>
</body>
</html>
`

var logPage = `
<html>
<head>
	<title>Vaadin Test Suite - Log Page</title>
	<script>
		console.log("console log");
		throw "exception log";
	</script>
</head>
<body>
	Log test page.
</body>
</html>
`

// Handler serves the pages the suite drives.
var Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	page, ok := map[string]string{
		"/":       ordersPage,
		"/orders": ordersPage,
		"/log":    logPage,
	}[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, page)
})
