package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestClassifyChildren tests child type classification.
func TestClassifyChildren(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		areas  int
		routes int
		want   ChildType
	}{
		{name: "no children", want: ChildNone},
		{name: "only areas", areas: 3, want: ChildArea},
		{name: "only routes", routes: 2, want: ChildRoute},
		{name: "both prefers areas", areas: 1, routes: 4, want: ChildArea},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ClassifyChildren(tt.areas, tt.routes); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

// TestParseProtection tests protection code parsing.
func TestParseProtection(t *testing.T) {
	t.Parallel()

	for _, code := range []string{"G", "PG", "PG13", "R", "X"} {
		if got := ParseProtection(code); string(got) != code {
			t.Errorf("expected %q, got %q", code, got)
		}
	}
	for _, junk := range []string{"", "pg", "PG-13", "Sport", "R "} {
		if got := ParseProtection(junk); got != ProtectionNone {
			t.Errorf("expected empty for %q, got %q", junk, got)
		}
	}
}

// TestAreaRecord tests the Area column layout.
func TestAreaRecord(t *testing.T) {
	t.Parallel()

	a := Area{
		ID:         "105731932",
		Name:       "Red Rocks",
		Longitude:  -115.43,
		Latitude:   36.13,
		URL:        "https://example.com/area/105731932/red-rocks",
		ChildType:  ChildArea,
		ChildIDs:   []string{"1", "2"},
		ParentName: RootParentName,
		ParentID:   RootParentID,
	}

	if a.Kind() != KindArea {
		t.Errorf("expected kind area, got %s", a.Kind())
	}
	if len(a.Columns()) != len(a.Values()) {
		t.Fatalf("columns and values differ in length: %d vs %d", len(a.Columns()), len(a.Values()))
	}

	want := []string{
		"105731932", "Red Rocks", "", "", "-115.43", "36.13",
		"https://example.com/area/105731932/red-rocks", "area", `["1","2"]`, "ROOT", "-1",
	}
	if diff := cmp.Diff(want, a.Values()); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}

	t.Run("nil child ids render as empty array", func(t *testing.T) {
		t.Parallel()
		empty := Area{ChildType: ChildNone}
		if got := empty.Values()[8]; got != "[]" {
			t.Errorf("expected [], got %q", got)
		}
	})

	t.Run("with comment does not alias child ids", func(t *testing.T) {
		t.Parallel()
		orig := Area{ChildIDs: []string{"1"}}
		merged := orig.WithComment("nice")
		merged.ChildIDs[0] = "changed"
		if orig.ChildIDs[0] != "1" {
			t.Error("expected original child ids to be untouched")
		}
		if merged.Comment != "nice" {
			t.Errorf("expected comment merged, got %q", merged.Comment)
		}
	})
}

// TestRouteRecord tests the Route column layout.
func TestRouteRecord(t *testing.T) {
	t.Parallel()

	g := NewGrades()
	g.Set(GradeYDS, "5.8")
	r := Route{
		ID:         "105732422",
		Name:       "Crimson Chrysalis",
		Grade:      g,
		Type:       "Trad",
		Length:     "900 ft",
		Pitch:      9,
		Protection: ProtectionPG13,
		ParentName: "Cloud Tower",
		ParentID:   "105732000",
	}

	if r.Kind() != KindRoute {
		t.Errorf("expected kind route, got %s", r.Kind())
	}
	cols := r.Columns()
	vals := r.Values()
	if len(cols) != len(vals) {
		t.Fatalf("columns and values differ in length: %d vs %d", len(cols), len(vals))
	}

	got := make(map[string]string, len(cols))
	for i, c := range cols {
		got[c] = vals[i]
	}
	if got["pitch"] != "9" {
		t.Errorf("expected pitch 9, got %q", got["pitch"])
	}
	if got["protection"] != "PG13" {
		t.Errorf("expected protection PG13, got %q", got["protection"])
	}
	if got["grade"] != `{"YDS":"5.8","French":null,"Ewbanks":null,"UIAA":null,"ZA":null,"British":null,"FontFrench":null}` {
		t.Errorf("unexpected grade cell %q", got["grade"])
	}

	t.Run("with comment copies grades", func(t *testing.T) {
		t.Parallel()
		merged := r.WithComment("great climb")
		merged.Grade.Set(GradeYDS, "5.9")
		if v, _ := r.Grade.Get(GradeYDS); v != "5.8" {
			t.Errorf("expected original grade untouched, got %q", v)
		}
	})
}

// TestRootParent tests the root sentinel.
func TestRootParent(t *testing.T) {
	t.Parallel()

	p := RootParent()
	if p.Name != "ROOT" || p.ID != "-1" {
		t.Errorf("expected ROOT/-1, got %s/%s", p.Name, p.ID)
	}
	if p.URL != "" {
		t.Errorf("expected no parent URL, got %q", p.URL)
	}
}
