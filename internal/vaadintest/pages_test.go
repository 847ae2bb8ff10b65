package vaadintest

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blang/semver"
	vaadin "github.com/wanmail/vaadin-selenium"
	"github.com/wanmail/vaadin-selenium/internal/fakewd"
)

func get(t *testing.T, s *httptest.Server, path string) (int, string) {
	t.Helper()
	resp, err := http.Get(s.URL + path)
	if err != nil {
		t.Fatalf("http.Get(%q) returned error: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading %q: %v", path, err)
	}
	return resp.StatusCode, string(body)
}

func TestHandler(t *testing.T) {
	s := httptest.NewServer(Handler)
	defer s.Close()

	for _, tc := range []struct {
		path string
		code int
	}{
		{"/", http.StatusOK},
		{"/orders", http.StatusOK},
		{"/log", http.StatusOK},
		{"/favicon.ico", http.StatusNotFound},
	} {
		if code, _ := get(t, s, tc.path); code != tc.code {
			t.Errorf("GET %s = %d, want %d", tc.path, code, tc.code)
		}
	}
}

// The suite is only meaningful when the served page has the structure the
// locators expect.
func TestOrdersPageMatchesLocators(t *testing.T) {
	s := httptest.NewServer(Handler)
	defer s.Close()
	_, page := get(t, s, "/orders")

	d, err := fakewd.New(page)
	if err != nil {
		t.Fatalf("fakewd.New() returned error: %v", err)
	}
	a, err := vaadin.NewActions(d, vaadin.StrictMatching())
	if err != nil {
		t.Fatalf("vaadin.NewActions() returned error: %v", err)
	}

	for _, loc := range []vaadin.Locator{
		vaadin.ID("save"),
		vaadin.ID("stuck"),
		vaadin.ID("rerender"),
		vaadin.Tab(1),
		vaadin.Tab(2),
		vaadin.TableButton("orders", 1, 3),
		vaadin.TableButton("orders", 2, 4),
		vaadin.CellItem("orders", 2, 2, "v-link"),
		vaadin.TreeExpander("categories", 1, 1),
		vaadin.Field("order", "number"),
		vaadin.Field("order", "customer"),
		vaadin.Field("order", "paid"),
		vaadin.BusyIndicators(),
	} {
		if _, err := a.Find(loc); err != nil {
			t.Errorf("Find(%s) returned error: %v", loc, err)
		}
	}

	if _, err := a.Find(vaadin.Overlays()); err == nil {
		t.Error("the page shows an overlay before any confirmation")
	}
	if idle, err := vaadin.FrameworkIdle(semver.MustParse("7.7.0"))(d); err != nil || !idle {
		t.Errorf("FrameworkIdle() = %t, %v; want true, nil", idle, err)
	}

	r := vaadin.NewDefaultInputResolver(d, a.Waiter())
	for attribute, want := range map[string]string{
		"number":   "*vaadin.TextInput",
		"customer": "*vaadin.ComboBoxInput",
		"paid":     "*vaadin.CheckBoxInput",
	} {
		m, err := r.Resolve("order", attribute)
		if err != nil {
			t.Errorf("Resolve(order, %q) returned error: %v", attribute, err)
			continue
		}
		if got := fmt.Sprintf("%T", m); got != want {
			t.Errorf("Resolve(order, %q) = %s, want %s", attribute, got, want)
		}
	}
}
