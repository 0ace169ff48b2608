package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Lacosst0/pathfinding-playground/internal/plugin/contract"
	"github.com/Lacosst0/pathfinding-playground/internal/renderer/backend"
)

const diagonalLua = `
function run(grid, start, goal)
	host.output({start, {x = 1, y = 1}, goal})
end
`

const gridJSON = `{"width": 3, "height": 3, "walls": [[1, 0]]}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRunPrintsTimeline(t *testing.T) {
	module := writeFile(t, "algo.lua", diagonalLua)
	gridPath := writeFile(t, "grid.json", gridJSON)

	stdout, _, err := execute(t, "run", module, "--grid", gridPath)
	if err != nil {
		t.Fatalf("run error = %v", err)
	}

	doc := gjson.Parse(stdout)
	if got := doc.Get("actions.#").Int(); got != 2 {
		t.Errorf("actions.# = %d, want 2\n%s", got, stdout)
	}
	if got := doc.Get("width").Int(); got != 3 {
		t.Errorf("width = %d, want 3", got)
	}
	if got := doc.Get("actions.0.kind").String(); got != "line" {
		t.Errorf("actions.0.kind = %q, want line", got)
	}
	// Module coordinates: the host start (0, 0) is row 2.
	if got := doc.Get("actions.0.start").Raw; got != "[0,2]" {
		t.Errorf("actions.0.start = %s, want [0,2]", got)
	}
}

func TestRunOutAndRender(t *testing.T) {
	module := writeFile(t, "algo.lua", diagonalLua)
	gridPath := writeFile(t, "grid.json", gridJSON)
	out := filepath.Join(t.TempDir(), "timeline.json")

	stdout, _, err := execute(t, "run", module, "--grid", gridPath, "--out", out, "--render")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("timeline not written: %v", err)
	}
	if !gjson.ValidBytes(data) {
		t.Errorf("timeline is not valid JSON: %s", data)
	}

	lines := strings.Split(strings.TrimRight(stdout, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("rendered %d lines, want 4:\n%s", len(lines), stdout)
	}
	if !strings.HasPrefix(lines[0], "    G") {
		t.Errorf("top row = %q, want goal in the top-right cell", lines[0])
	}
	if !strings.HasPrefix(lines[2], "S") {
		t.Errorf("bottom row = %q, want start in the bottom-left cell", lines[2])
	}
	if !strings.Contains(lines[3], "2 actions") {
		t.Errorf("status = %q, want action count", lines[3])
	}

	replayed, _, err := execute(t, "replay", out)
	if err != nil {
		t.Fatalf("replay error = %v", err)
	}
	if !strings.Contains(replayed, "2 actions") {
		t.Errorf("replay output = %q, want action count", replayed)
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name   string
		module string
		want   error
	}{
		{"missing entry point", `function solve() end`, contract.ErrMissingExport},
		{"trap", `function run(g, s, e) error("boom") end`, contract.ErrTrapped},
		{"syntax", `function run(`, contract.ErrCompile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			module := writeFile(t, "algo.lua", tt.module)
			_, _, err := execute(t, "run", module)
			if !errors.Is(err, tt.want) {
				t.Errorf("run error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRunTimeoutFlag(t *testing.T) {
	module := writeFile(t, "algo.lua", `function run(g, s, e) while true do end end`)

	start := time.Now()
	_, _, err := execute(t, "run", module, "--timeout", "100ms")
	if !errors.Is(err, contract.ErrTimeout) {
		t.Fatalf("run error = %v, want timeout", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("run took %s, timeout flag ignored", elapsed)
	}
}

func TestBadConfig(t *testing.T) {
	module := writeFile(t, "algo.lua", diagonalLua)
	cfg := writeFile(t, "playground.toml", "[grid]\nwidth = 1\n")

	if _, _, err := execute(t, "run", module, "--config", cfg); err == nil {
		t.Error("run should reject a 1-wide grid")
	}
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(stdout, "playground dev") {
		t.Errorf("version output = %q", stdout)
	}
}

func TestWatchModuleQuits(t *testing.T) {
	module := writeFile(t, "algo.lua", diagonalLua)
	b := backend.NewNullBackend(80, 12)
	b.PostEvent(backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: 'q'})

	cmd := newRootCmd()
	cmd.SetContext(context.Background())
	global := &globalOptions{}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := watchModule(ctx, cmd, global, &watchOptions{noRun: true}, module, b); err != nil {
		t.Fatalf("watchModule() error = %v", err)
	}
	if ctx.Err() != nil {
		t.Fatal("watchModule() ended by timeout")
	}
	if b.Shows() == 0 {
		t.Error("viewer never drew")
	}
}
