package render

import (
	"strings"
	"testing"

	"github.com/saorsa-labs/saorsa/internal/buffer"
)

func TestRenderEmitsCursorMoveAndGrapheme(t *testing.T) {
	r := New(Options{Capability: TrueColor})
	out := r.Render([]buffer.CellChange{
		{X: 2, Y: 1, Cell: buffer.Cell{Grapheme: "a", Width: 1}},
	})
	s := string(out)
	if !strings.Contains(s, "\x1b[2;3H") {
		t.Fatalf("expected cursor move to row 2 col 3, got %q", s)
	}
	if !strings.Contains(s, "a") {
		t.Fatalf("expected grapheme 'a' in output, got %q", s)
	}
}

func TestRenderSkipsContinuationGraphemeButAdvancesCursor(t *testing.T) {
	r := New(Options{Capability: TrueColor})
	out := r.Render([]buffer.CellChange{
		{X: 0, Y: 0, Cell: buffer.Cell{Grapheme: "你", Width: 2}},
		{X: 1, Y: 0, Cell: buffer.Cell{Grapheme: "", Width: 0}},
	})
	s := string(out)
	if strings.Count(s, "你") != 1 {
		t.Fatalf("expected exactly one grapheme write, got %q", s)
	}
}

func TestNoColorEnvForcesReset(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	r := New(Options{Capability: TrueColor})
	out := r.Render([]buffer.CellChange{
		{X: 0, Y: 0, Cell: buffer.Cell{Grapheme: "a", Width: 1, Style: buffer.Style{Fg: buffer.RGBColor(255, 0, 0)}}}})
	s := string(out)
	if strings.Contains(s, "38;2") {
		t.Fatalf("expected no truecolor codes under NO_COLOR, got %q", s)
	}
}

func TestRenderIdempotentEmptyDiffProducesNoOutput(t *testing.T) {
	r := New(Options{Capability: TrueColor})
	out := r.Render(nil)
	if len(out) != 0 {
		t.Fatalf("expected empty output for empty diff, got %q", out)
	}
}

func TestSGRTurningOffRequiresFullReset(t *testing.T) {
	prev := buffer.Style{Bold: true, Fg: buffer.RGBColor(1, 2, 3)}
	next := buffer.Style{Fg: buffer.RGBColor(1, 2, 3)}
	codes := sgrCodes(prev, next)
	if len(codes) == 0 || codes[0] != "0" {
		t.Fatalf("expected leading reset code, got %v", codes)
	}
}

func TestColor256DowngradeIsDeterministicAndCached(t *testing.T) {
	d := newDowngrader(Color256)
	c := buffer.RGBColor(12, 34, 56)
	a := d.Downgrade(c)
	b := d.Downgrade(c)
	if a != b {
		t.Fatalf("downgrade not deterministic: %+v vs %+v", a, b)
	}
	if a.Kind != buffer.ColorIndexed {
		t.Fatalf("expected indexed color, got %+v", a)
	}
}
