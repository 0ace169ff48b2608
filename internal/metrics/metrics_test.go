package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Lacosst0/pathfinding-playground/internal/plugin/contract"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{contract.NewLoadError(contract.LoadIo, "a", errors.New("x")), "io"},
		{contract.NewLoadError(contract.LoadCompile, "a", nil), "compile"},
		{contract.NewLoadError(contract.LoadLink, "a", nil), "link"},
		{contract.NewLoadError(contract.LoadMissingExport, "a", nil), "missing_export"},
		{contract.Trap(errors.New("unreachable")), "trapped"},
		{contract.TimedOut(errors.New("deadline")), "timeout"},
		{contract.Violation("bad", nil), "violation"},
		{errors.New("other"), "error"},
	}
	for _, tt := range tests {
		if got := Outcome(tt.err); got != tt.want {
			t.Errorf("Outcome(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestObserve(t *testing.T) {
	m := New()

	m.ObserveLoad("wasm", nil)
	m.ObserveLoad("", contract.NewLoadError(contract.LoadIo, "a", nil))
	m.ObserveInvoke("wasm", time.Millisecond, 3, nil)
	m.ObserveInvoke("wasm", time.Millisecond, 1, contract.Trap(errors.New("boom")))
	m.ObserveReload(nil)
	m.ObserveDropped(2)
	m.ObserveDropped(0)

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"loads ok", testutil.ToFloat64(m.loads.WithLabelValues("wasm", "ok")), 1},
		{"loads io", testutil.ToFloat64(m.loads.WithLabelValues("none", "io")), 1},
		{"invocations ok", testutil.ToFloat64(m.invocations.WithLabelValues("wasm", "ok")), 1},
		{"invocations trapped", testutil.ToFloat64(m.invocations.WithLabelValues("wasm", "trapped")), 1},
		{"actions", testutil.ToFloat64(m.actions.WithLabelValues("wasm")), 3},
		{"reloads", testutil.ToFloat64(m.reloads.WithLabelValues("ok")), 1},
		{"dropped", testutil.ToFloat64(m.droppedActions), 2},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveReload(nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if !strings.Contains(rec.Body.String(), "playground_reloads_total") {
		t.Errorf("metrics output missing reloads counter:\n%s", rec.Body.String())
	}
}
