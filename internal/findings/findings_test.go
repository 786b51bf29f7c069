package findings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePayload(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "findings.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write payload: %v", err)
	}
	return path
}

func TestLoad_AppliesLineDefaults(t *testing.T) {
	path := writePayload(t, `{
		"findings": [
			{"id": "f1", "title": "Margin", "page": 3, "fallback_pos": 0.4},
			{"id": "f2", "title": "Debt", "page": 5, "fallback_pos": 0.7, "highlight_lines": 2}
		]
	}`)

	p, err := Load(path, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(p.Findings))
	}
	if p.Findings[0].HighlightLines != DefaultHighlightLines {
		t.Errorf("expected default %d lines, got %d", DefaultHighlightLines, p.Findings[0].HighlightLines)
	}
	if p.Findings[1].HighlightLines != 2 {
		t.Errorf("expected explicit 2 lines, got %d", p.Findings[1].HighlightLines)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json"), 3); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestResolveTarget_EvidenceResolvesThroughFinding(t *testing.T) {
	p := &Payload{
		Findings: []Finding{{ID: "f1", Page: 2}, {ID: "f2", Page: 4}},
		Evidence: []Evidence{{ID: "e1", FindingID: "f2", Quote: "quote"}},
	}

	f, ok := p.ResolveTarget("e1")
	if !ok {
		t.Fatal("expected evidence target to resolve")
	}
	if f.ID != "f2" {
		t.Errorf("expected f2, got %s", f.ID)
	}

	if _, ok := p.ResolveTarget("unknown"); ok {
		t.Error("expected unknown target to miss")
	}

	// Evidence pointing at a missing finding must not resolve.
	p.Evidence = append(p.Evidence, Evidence{ID: "e2", FindingID: "gone"})
	if _, ok := p.ResolveTarget("e2"); ok {
		t.Error("expected dangling evidence to miss")
	}
}

func TestFinding_PositionClamped(t *testing.T) {
	cases := []struct {
		pos  float64
		want float64
	}{
		{0.0, 0.05},
		{1.0, 0.95},
		{-3, 0.05},
		{0.4, 0.4},
	}
	for _, tc := range cases {
		f := Finding{FallbackPos: tc.pos}
		if got := f.Position(); got != tc.want {
			t.Errorf("Position(%v): expected %v, got %v", tc.pos, tc.want, got)
		}
	}
}

func TestRenderHTML_Sanitizes(t *testing.T) {
	out := RenderHTML("**bold** <script>alert(1)</script>")
	if out == "" {
		t.Fatal("expected output")
	}
	if strings.Contains(out, "<script") {
		t.Errorf("expected script stripped, got %q", out)
	}
	if !strings.Contains(out, "<strong>") {
		t.Errorf("expected markdown rendered, got %q", out)
	}
}

func TestExcerptText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain  text\n here", "plain text here"},
		{"<p>EBITDA of <b>USD 2.3 bn</b></p>", "EBITDA of USD 2.3 bn"},
		{"<style>p{}</style><p>kept</p>", "kept"},
	}
	for _, tc := range cases {
		if got := ExcerptText(tc.in); got != tc.want {
			t.Errorf("ExcerptText(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}
