package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/safephase/pkg/conflict"
	sperrors "github.com/matzehuels/safephase/pkg/errors"
	"github.com/matzehuels/safephase/pkg/phase"
)

// Junction C is a four-arm cross where opposing movements are compatible.
// Its traffic light program has one safe and one unsafe state.
const testNet = `<net version="1.16">
    <junction id="C" type="traffic_light" x="0.00" y="0.00">
        <request index="0" response="0000" foes="1010" cont="0"/>
        <request index="1" response="0101" foes="0101" cont="0"/>
        <request index="2" response="0000" foes="1010" cont="0"/>
        <request index="3" response="0101" foes="0101" cont="0"/>
    </junction>
    <junction id="P" type="priority" x="100.00" y="0.00">
        <request index="0" response="00" foes="10" cont="0"/>
        <request index="1" response="01" foes="01" cont="0"/>
    </junction>
    <tlLogic id="C" type="static" programID="0" offset="0">
        <phase duration="31" state="GrGr"/>
        <phase duration="31" state="GGrr"/>
    </tlLogic>
</net>
`

const starMatrix = `{"junction": "S", "type": "traffic_light", "foes": [
	[false, false, false, false],
	[false, false, false, false],
	[false, false, false, false],
	[false, false, false, false]
]}`

// run executes the root command with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestEnumerateJSON(t *testing.T) {
	net := writeTemp(t, "cross.net.xml", testNet)

	out, err := run(t, "enumerate", net, "-j", "C", "-f", "json", "--no-cache")
	if err != nil {
		t.Fatalf("enumerate: %v", err)
	}

	var res phase.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if res.N != 4 || len(res.Phases) != 6 {
		t.Errorf("n=%d phases=%v, want 4 connections and 6 phases", res.N, res.Phases)
	}
	if got := res.Phases[4]; !slices.Equal(got, phase.Phase{0, 2}) {
		t.Errorf("first pair = %v, want [0 2]", got)
	}
}

func TestEnumerateOutputFile(t *testing.T) {
	matrix := writeTemp(t, "star.json", starMatrix)
	dest := filepath.Join(t.TempDir(), "phases.json")

	if _, err := run(t, "enumerate", "-m", matrix, "-f", "json", "-o", dest); err != nil {
		t.Fatalf("enumerate: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	var res phase.Result
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatal(err)
	}
	// Four mutually compatible connections: every non-empty subset.
	if len(res.Phases) != 15 {
		t.Errorf("phases = %d, want 15", len(res.Phases))
	}
}

func TestEnumerateTable(t *testing.T) {
	net := writeTemp(t, "cross.net.xml", testNet)

	out, err := run(t, "enumerate", net, "-j", "C", "--maximal")
	if err != nil {
		t.Fatalf("enumerate: %v", err)
	}
	if !strings.Contains(out, "Safe phases of C") {
		t.Errorf("missing title in %q", out)
	}
}

func TestEnumerateInputErrors(t *testing.T) {
	net := writeTemp(t, "cross.net.xml", testNet)
	matrix := writeTemp(t, "star.json", starMatrix)

	tests := []struct {
		name string
		args []string
		code sperrors.Code
	}{
		{"no input", []string{"enumerate"}, sperrors.ErrCodeInvalidInput},
		{"no junction", []string{"enumerate", net}, sperrors.ErrCodeInvalidInput},
		{"both inputs", []string{"enumerate", net, "-m", matrix}, sperrors.ErrCodeInvalidInput},
		{"unknown junction", []string{"enumerate", net, "-j", "X", "--no-cache"}, sperrors.ErrCodeJunctionNotFound},
		{"bad format", []string{"enumerate", net, "-j", "C", "-f", "xml"}, sperrors.ErrCodeUnsupportedFormat},
		{"limit", []string{"enumerate", "-m", matrix, "--max-phases", "5", "--no-cache"}, sperrors.ErrCodeLimitExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if !sperrors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestStates(t *testing.T) {
	net := writeTemp(t, "cross.net.xml", testNet)

	out, err := run(t, "states", net, "-j", "C", "--no-cache")
	if err != nil {
		t.Fatalf("states: %v", err)
	}
	want := []string{"Grrr", "rGrr", "rrGr", "rrrG", "GrGr", "rGrG"}
	if got := strings.Fields(out); !slices.Equal(got, want) {
		t.Errorf("states = %v, want %v", got, want)
	}
}

func TestStatesTransition(t *testing.T) {
	net := writeTemp(t, "cross.net.xml", testNet)

	out, err := run(t, "states", net, "-j", "C", "--from", "4", "--to", "5", "--no-cache")
	if err != nil {
		t.Fatalf("states: %v", err)
	}
	if !strings.Contains(out, "yryr") || !strings.Contains(out, "rGrG") {
		t.Errorf("transition output %q lacks yellow and next state", out)
	}

	if _, err := run(t, "states", net, "-j", "C", "--to", "6", "--no-cache"); err == nil {
		t.Error("out of range phase index should fail")
	}
}

func TestAudit(t *testing.T) {
	net := writeTemp(t, "cross.net.xml", testNet)

	out, err := run(t, "audit", net)
	if !sperrors.Is(err, sperrors.ErrCodeInvalidState) {
		t.Fatalf("error = %v, want %s", err, sperrors.ErrCodeInvalidState)
	}
	if !strings.Contains(out, "1 of 2 states are unsafe") {
		t.Errorf("audit output %q", out)
	}

	if _, err := run(t, "audit", net, "-j", "P"); !sperrors.Is(err, sperrors.ErrCodeNotFound) {
		t.Errorf("junction without program: error = %v", err)
	}
}

func TestRenderDOT(t *testing.T) {
	net := writeTemp(t, "cross.net.xml", testNet)
	dest := filepath.Join(t.TempDir(), "c.dot")

	if _, err := run(t, "render", net, "-j", "C", "-f", "dot", "--highlight", "2,0", "-o", dest); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	dot := string(data)
	for _, want := range []string{"graph conflicts", "c0 -- c1", "fillcolor=palegreen"} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output lacks %q:\n%s", want, dot)
		}
	}
}

func TestJunctionsExport(t *testing.T) {
	net := writeTemp(t, "cross.net.xml", testNet)
	dir := filepath.Join(t.TempDir(), "matrices")

	out, err := run(t, "junctions", net, "--all", "--export", dir)
	if err != nil {
		t.Fatalf("junctions: %v", err)
	}
	if !strings.Contains(out, "Exported 2 matrices") {
		t.Errorf("junctions output %q", out)
	}
	// C has four conflicting pairs, two per connection.
	if !strings.Contains(out, "4 (max 2)") {
		t.Errorf("junctions table lacks the conflict summary:\n%s", out)
	}

	// Exported files round-trip through enumerate.
	res, err := run(t, "enumerate", "-m", filepath.Join(dir, "C.json"), "-f", "json", "--no-cache")
	if err != nil {
		t.Fatalf("enumerate exported matrix: %v", err)
	}
	if !strings.Contains(res, `"n": 4`) {
		t.Errorf("exported matrix result %q", res)
	}
}

func TestParsePhase(t *testing.T) {
	tests := []struct {
		in      string
		want    phase.Phase
		wantErr bool
	}{
		{"", nil, false},
		{"  ", nil, false},
		{"2", phase.Phase{2}, false},
		{"3, 1,1", phase.Phase{1, 3}, false},
		{"1,x", nil, true},
		{"-1", nil, true},
	}
	for _, tt := range tests {
		got, err := parsePhase(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parsePhase(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("parsePhase(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPhaseListModel(t *testing.T) {
	m, err := conflict.FromStrings([]string{"0101", "1010", "0101", "1010"})
	if err != nil {
		t.Fatal(err)
	}
	res, err := phase.Enumerate(m)
	if err != nil {
		t.Fatal(err)
	}

	var model tea.Model = NewPhaseListModel("C", m, res)
	press := func(keys ...tea.KeyMsg) PhaseListModel {
		for _, k := range keys {
			model, _ = model.Update(k)
		}
		return model.(PhaseListModel)
	}
	runes := func(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

	if got := press(runes("j"), tea.KeyMsg{Type: tea.KeyDown}); got.Cursor != 2 {
		t.Errorf("cursor after two downs = %d, want 2", got.Cursor)
	}
	if got := press(runes("G")); got.Cursor != len(res.Phases)-1 {
		t.Errorf("cursor after end = %d", got.Cursor)
	}
	if got := press(runes("j")); got.Cursor != len(res.Phases)-1 {
		t.Errorf("cursor moved past the last phase: %d", got.Cursor)
	}

	got := press(runes("m"))
	if !got.MaximalOnly || got.Cursor != 0 {
		t.Fatalf("after toggle: maximal=%v cursor=%d", got.MaximalOnly, got.Cursor)
	}
	view := got.View()
	if !strings.Contains(view, "2 maximal") || !strings.Contains(view, "none (maximal)") {
		t.Errorf("maximal view:\n%s", view)
	}

	if _, cmd := model.Update(runes("q")); cmd == nil {
		t.Error("q should quit")
	}
}
