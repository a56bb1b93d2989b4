package lexicon

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLexiconNew(t *testing.T) {
	lex := New()
	if got := lex.Stats(); got.Groups != 0 {
		t.Errorf("new lexicon should have 0 groups, got %d", got.Groups)
	}
	if got := lex.Rewrite(Institute, "VLIZ"); got != "VLIZ" {
		t.Errorf("empty lexicon rewrote %q", got)
	}
}

func TestRewriteIsCaseAndSpaceInsensitive(t *testing.T) {
	lex := New()
	if err := lex.AddGroup(Institute, "Flanders Marine Institute", []string{"VLIZ", "Vlaams  Instituut voor de Zee"}); err != nil {
		t.Fatalf("AddGroup: %v", err)
	}

	for _, q := range []string{"vliz", " VLIZ ", "vlaams instituut VOOR de zee", "flanders marine institute"} {
		if got := lex.Rewrite(Institute, q); got != "Flanders Marine Institute" {
			t.Errorf("Rewrite(%q) = %q", q, got)
		}
	}
	if got := lex.Rewrite(Area, "vliz"); got != "vliz" {
		t.Errorf("aliases must not leak across kinds, got %q", got)
	}
	if got := lex.Rewrite(Institute, "vliz ghent"); got != "vliz ghent" {
		t.Errorf("partial query should not be rewritten, got %q", got)
	}
}

func TestAddGroupReplacesAndRejectsConflicts(t *testing.T) {
	lex := New()
	_ = lex.AddGroup(Area, "North Sea", []string{"Nordsee"})
	_ = lex.AddGroup(Area, "North Sea", []string{"Mer du Nord"})

	if got := lex.Rewrite(Area, "nordsee"); got != "nordsee" {
		t.Errorf("replaced alias should be gone, got %q", got)
	}
	if got := lex.Aliases(Area, "mer du nord"); len(got) != 2 || got[0] != "North Sea" {
		t.Errorf("Aliases = %v", got)
	}

	if err := lex.AddGroup(Area, "Baltic Sea", []string{"Mer du Nord"}); err == nil {
		t.Error("expected conflict error")
	}
	if err := lex.AddGroup(Area, "  ", nil); err == nil {
		t.Error("expected error for empty canonical")
	}
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	content := `institutes:
  - canonical: Alfred Wegener Institute
    aliases: [AWI]
  - canonical: Flanders Marine Institute
    aliases: [VLIZ]
areas:
  - canonical: North Sea
    aliases: [Nordsee]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	lex, err := LoadFromYAML(path)
	if err != nil {
		t.Fatalf("LoadFromYAML: %v", err)
	}
	if got := lex.Rewrite(Institute, "awi"); got != "Alfred Wegener Institute" {
		t.Errorf("Rewrite(awi) = %q", got)
	}
	stats := lex.Stats()
	if stats.Groups != 3 || stats.InstituteGroups != 2 || stats.Aliases != 3 {
		t.Errorf("unexpected stats %+v", stats)
	}

	if _, err := LoadFromYAML(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNilLexicon(t *testing.T) {
	var lex *Lexicon
	if got := lex.Rewrite(Institute, "VLIZ"); got != "VLIZ" {
		t.Errorf("nil lexicon rewrote to %q", got)
	}
}
