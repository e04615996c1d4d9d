package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/janekbaraniewski/wfdash/internal/codec"
	"github.com/janekbaraniewski/wfdash/internal/config"
	"github.com/janekbaraniewski/wfdash/internal/store"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCommand(config.DefaultConfig())
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestGridSaveThenExportLocal(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "workflow-db.sqlite")

	grid := `[
		{"Timeline_Status": "Canva", "Autor": "Lea", "Beitragsthema": "Mensa", "Ressort": "Campus", "VÖ_Datum": "15.11.2025"},
		{"Timeline_Status": "Sheet", "Autor": "Tom", "Beitragsthema": "Wahl", "Ressort": "Politik", "VÖ_Datum": "07.11.2025"}
	]`
	out, _, err := runCLI(t, grid, "grid", "save", "-", "--db", dbPath)
	if err != nil {
		t.Fatalf("grid save: %v", err)
	}
	if !strings.Contains(out, "saved 2 rows") {
		t.Fatalf("grid save output = %q", out)
	}

	out, _, err = runCLI(t, "", "grid", "export", "--db", dbPath)
	if err != nil {
		t.Fatalf("grid export: %v", err)
	}
	var rows []codec.GridRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode export: %v\n%s", err, out)
	}
	if len(rows) != 2 {
		t.Fatalf("exported %d rows, want 2", len(rows))
	}
	if rows[0].Topic != "Wahl" || rows[0].PublicationDate != "07.11.2025" {
		t.Fatalf("first row = %+v, want Wahl on 07.11.2025", rows[0])
	}
	if rows[0].ID == 0 || rows[1].ID == 0 {
		t.Fatalf("exported rows lack store ids: %+v", rows)
	}
}

func TestGridSaveSoftDateFailureWarns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "workflow-db.sqlite")
	grid := `[{"Beitragsthema": "Kino", "VÖ_Datum": "bald"}]`

	_, stderr, err := runCLI(t, grid, "grid", "save", "-", "--db", dbPath)
	if err != nil {
		t.Fatalf("grid save: %v", err)
	}
	if !strings.Contains(stderr, "1 rows had unparsable dates") {
		t.Fatalf("stderr = %q, want date warning", stderr)
	}

	_, _, err = runCLI(t, grid, "grid", "save", "-", "--strict", "--db", dbPath)
	if err == nil {
		t.Fatal("strict save with a bad date succeeded")
	}
}

func TestGridSaveRejectsNonArray(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "workflow-db.sqlite")
	if _, _, err := runCLI(t, "null", "grid", "save", "-", "--db", dbPath); err == nil {
		t.Fatal("grid save accepted null")
	}
	if _, _, err := runCLI(t, "", "grid", "save", "-", "--db", dbPath); err == nil {
		t.Fatal("grid save accepted empty input")
	}
}

func TestReadGridFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.json")
	if err := os.WriteFile(path, []byte(`[{"id": 4, "Beitragsthema": "Mensa"}]`), 0o600); err != nil {
		t.Fatalf("write grid: %v", err)
	}
	rows, err := readGrid(nil, path)
	if err != nil {
		t.Fatalf("readGrid: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != 4 || rows[0].Topic != "Mensa" {
		t.Fatalf("rows = %+v", rows)
	}
	if _, err := readGrid(nil, filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("readGrid on a missing file returned nil error")
	}
}

func TestSeedWithoutSourceFails(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "workflow-db.sqlite")
	_, _, err := runCLI(t, "", "seed", "--db", dbPath)
	if err == nil || !strings.Contains(err.Error(), "no bulk source configured") {
		t.Fatalf("seed error = %v, want missing source", err)
	}
}

func TestDescribeSeed(t *testing.T) {
	if got := describeSeed(store.SeedResult{}); got != "store already initialized, nothing seeded" {
		t.Fatalf("describeSeed(not seeded) = %q", got)
	}
	if got := describeSeed(store.SeedResult{Seeded: true, Rows: 3}); got != "seeded 3 rows" {
		t.Fatalf("describeSeed(seeded) = %q", got)
	}
}

func TestResolveDBPathPrefersFlag(t *testing.T) {
	cfg := config.DefaultConfig()
	if got := resolveDBPath(cfg, " /tmp/x.sqlite "); got != "/tmp/x.sqlite" {
		t.Fatalf("resolveDBPath = %q", got)
	}

	t.Setenv("XDG_STATE_HOME", "/state")
	if got := resolveDBPath(cfg, ""); got != filepath.Join("/state", "wfdash", "workflow-db.sqlite") {
		t.Fatalf("resolveDBPath(default) = %q", got)
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runCLI(t, "", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "wfdash dev") {
		t.Fatalf("version output = %q", out)
	}
}
