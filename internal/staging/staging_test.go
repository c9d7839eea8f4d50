package staging

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adaptive-ads/imdb-ingest/internal/objectstore"
	"github.com/adaptive-ads/imdb-ingest/internal/table"
)

func sampleTable(t *testing.T, csv string) *table.Table {
	t.Helper()
	tbl, err := table.FromCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("FromCSV failed: %v", err)
	}
	return tbl
}

func TestStageLayout(t *testing.T) {
	root := t.TempDir()
	stager := NewStager(root)
	tbl := sampleTable(t, "a,b\n1,x\n")

	path, err := stager.Stage(context.Background(), "horror", tbl, "horror.parquet")
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}

	want := filepath.Join(root, "horror", "horror.parquet")
	if path != want {
		t.Errorf("expected path %s, got %s", want, path)
	}
	if path != stager.ArtifactPath("horror", "horror.parquet") {
		t.Errorf("ArtifactPath disagrees with Stage output")
	}

	got, err := table.ReadParquet(path)
	if err != nil {
		t.Fatalf("staged artifact unreadable: %v", err)
	}
	if got.NumRows() != 1 {
		t.Errorf("expected 1 row, got %d", got.NumRows())
	}
}

func TestStageOverwritesPartialFile(t *testing.T) {
	root := t.TempDir()
	stager := NewStager(root)

	// Simulate a half-written artifact left by a killed attempt.
	dir := filepath.Join(root, "war")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	garbage := filepath.Join(dir, "war.parquet")
	if err := os.WriteFile(garbage, []byte("not parquet"), 0o644); err != nil {
		t.Fatal(err)
	}

	tbl := sampleTable(t, "n\n42\n")
	path, err := stager.Stage(context.Background(), "war", tbl, "war.parquet")
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}

	got, err := table.ReadParquet(path)
	if err != nil {
		t.Fatalf("restaged artifact unreadable: %v", err)
	}
	if got.NumRows() != 1 || got.Rows[0][0] != int64(42) {
		t.Errorf("expected single row [42], got %v", got.Rows)
	}
}

func TestStageMirrorsArtifact(t *testing.T) {
	root := t.TempDir()
	store := objectstore.NewLocalStore(t.TempDir())
	stager := NewStager(root).WithMirror(store, "imdb-staging")

	tbl := sampleTable(t, "a\nx\n")
	path, err := stager.Stage(context.Background(), "scifi", tbl, "scifi.parquet")
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}

	local, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read staged file: %v", err)
	}
	mirrored, err := store.GetObject(context.Background(), "imdb-staging", "scifi/scifi.parquet")
	if err != nil {
		t.Fatalf("mirror object missing: %v", err)
	}
	if string(local) != string(mirrored) {
		t.Error("mirrored bytes differ from staged artifact")
	}
}

func TestStageRequiresGenre(t *testing.T) {
	stager := NewStager(t.TempDir())
	tbl := sampleTable(t, "a\nx\n")
	if _, err := stager.Stage(context.Background(), "", tbl, "x.parquet"); err == nil {
		t.Error("expected error for empty genre")
	}
}
