package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/obisquery/pkg/obis/catalog"
)

func TestSQLiteSaveLoadKeepsOrder(t *testing.T) {
	ctx := context.Background()
	st, err := Open(ctx, filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	if _, ok, err := st.Load(ctx, catalog.KindInstitute); err != nil || ok {
		t.Fatalf("empty store: ok=%v err=%v", ok, err)
	}

	in := []catalog.Entity{
		{ID: "19482", Name: "Flanders Marine Institute - Belgium", Extra: "Belgium"},
		{ID: "1", Name: "Alfred Wegener Institute - Germany", Extra: "Germany"},
		{ID: "7", Name: "Marine Biological Association - United Kingdom", Extra: "United Kingdom"},
	}
	if err := st.Save(ctx, catalog.KindInstitute, in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := st.Load(ctx, catalog.KindInstitute)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entities, got %d", len(got))
	}
	for i := range in {
		if got[i].ID != in[i].ID || got[i].Name != in[i].Name || got[i].Extra != in[i].Extra {
			t.Errorf("entity %d: got %+v, want %+v", i, got[i], in[i])
		}
		if got[i].Kind != catalog.KindInstitute {
			t.Errorf("entity %d: kind %q", i, got[i].Kind)
		}
	}

	if _, ok, err := st.LoadedAt(ctx, catalog.KindInstitute); err != nil || !ok {
		t.Errorf("LoadedAt: ok=%v err=%v", ok, err)
	}
}

func TestSQLiteSaveReplaces(t *testing.T) {
	ctx := context.Background()
	st, err := Open(ctx, filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	_ = st.Save(ctx, catalog.KindArea, []catalog.Entity{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}})
	if err := st.Save(ctx, catalog.KindArea, []catalog.Entity{{ID: "3", Name: "C", Type: "eez"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, _, err := st.Load(ctx, catalog.KindArea)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 || got[0].ID != "3" || got[0].Type != "eez" {
		t.Errorf("unexpected set after replace: %+v", got)
	}
}

func TestSQLitePurgeAndRemove(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")
	st, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	_ = st.Save(ctx, catalog.KindArea, []catalog.Entity{{ID: "1", Name: "A"}})
	if err := st.Purge(ctx); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if _, ok, _ := st.Load(ctx, catalog.KindArea); ok {
		t.Error("set should be gone after purge")
	}

	if err := st.Remove(); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("database file should be removed, stat err=%v", err)
	}
}
