package activities

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"strings"
	"sync"
	"testing"

	"go.temporal.io/sdk/testsuite"

	"github.com/adaptive-ads/imdb-ingest/internal/source"
	"github.com/adaptive-ads/imdb-ingest/internal/staging"
	"github.com/adaptive-ads/imdb-ingest/internal/table"
)

// fakeWarehouse records full-replace writes keyed by table id.
type fakeWarehouse struct {
	mu     sync.Mutex
	tables map[string]*table.Table
	calls  int
}

func newFakeWarehouse() *fakeWarehouse {
	return &fakeWarehouse{tables: make(map[string]*table.Table)}
}

func (f *fakeWarehouse) ReplaceTable(ctx context.Context, tableID string, tbl *table.Table) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.tables[tableID] = tbl
	return nil
}

func (f *fakeWarehouse) Close() error { return nil }

func (f *fakeWarehouse) get(tableID string) *table.Table {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tables[tableID]
}

func testSourceClient() *source.Client {
	cfg := source.DefaultClientConfig()
	cfg.MaxRetries = 1
	cfg.RateLimit = 1000
	cfg.RateBurst = 1000
	return source.NewClient(cfg)
}

func activityEnv(t *testing.T, acts *Activities) *testsuite.TestActivityEnvironment {
	t.Helper()
	ts := &testsuite.WorkflowTestSuite{}
	env := ts.NewTestActivityEnvironment()
	env.RegisterActivity(acts.CheckGenreExists)
	env.RegisterActivity(acts.BuildGenreParquet)
	env.RegisterActivity(acts.LoadGenreParquet)
	return env
}

const moviesCSV = `Movie Name,Year,Rating(out of 10),Gross(in $)
Inception,2010,8.8,829895144
Arrival,2016,7.9,203388186
`

func TestCheckGenreExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/action.csv" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	acts := New(testSourceClient(), staging.NewStager(t.TempDir()), nil)
	env := activityEnv(t, acts)

	t.Run("available genre", func(t *testing.T) {
		val, err := env.ExecuteActivity(acts.CheckGenreExists, CheckRequest{Genre: "action", URL: srv.URL + "/action.csv"})
		if err != nil {
			t.Fatalf("activity failed: %v", err)
		}
		var res CheckResult
		if err := val.Get(&res); err != nil {
			t.Fatalf("decode result: %v", err)
		}
		if !res.Available {
			t.Error("expected available")
		}
	})

	t.Run("missing genre is not an error", func(t *testing.T) {
		val, err := env.ExecuteActivity(acts.CheckGenreExists, CheckRequest{Genre: "western", URL: srv.URL + "/western.csv"})
		if err != nil {
			t.Fatalf("availability check must not fail: %v", err)
		}
		var res CheckResult
		if err := val.Get(&res); err != nil {
			t.Fatalf("decode result: %v", err)
		}
		if res.Available {
			t.Error("expected unavailable")
		}
		if res.StatusCode != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", res.StatusCode)
		}
	})
}

func TestBuildGenreParquet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(moviesCSV))
	}))
	defer srv.Close()

	root := t.TempDir()
	acts := New(testSourceClient(), staging.NewStager(root), nil)
	env := activityEnv(t, acts)

	val, err := env.ExecuteActivity(acts.BuildGenreParquet, BuildRequest{Genre: "action", URL: srv.URL + "/action.csv"})
	if err != nil {
		t.Fatalf("activity failed: %v", err)
	}
	var res BuildResult
	if err := val.Get(&res); err != nil {
		t.Fatalf("decode result: %v", err)
	}

	if res.Rows != 2 {
		t.Errorf("expected 2 rows, got %d", res.Rows)
	}
	wantCols := []string{"Movie Name", "Year", "Rating(out of 10)", "Gross(in $)"}
	if !reflect.DeepEqual(res.Columns, wantCols) {
		t.Errorf("expected columns %v, got %v", wantCols, res.Columns)
	}
	if _, err := os.Stat(res.Path); err != nil {
		t.Errorf("staged artifact missing: %v", err)
	}

	tbl, err := table.ReadParquet(res.Path)
	if err != nil {
		t.Fatalf("staged artifact unreadable: %v", err)
	}
	if tbl.NumRows() != 2 {
		t.Errorf("expected 2 staged rows, got %d", tbl.NumRows())
	}
}

func TestBuildGenreParquetFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	acts := New(testSourceClient(), staging.NewStager(t.TempDir()), nil)
	env := activityEnv(t, acts)

	if _, err := env.ExecuteActivity(acts.BuildGenreParquet, BuildRequest{Genre: "action", URL: srv.URL + "/action.csv"}); err == nil {
		t.Error("expected hard failure on fetch error")
	}
}

func TestLoadGenreParquet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(moviesCSV))
	}))
	defer srv.Close()

	wh := newFakeWarehouse()
	acts := New(testSourceClient(), staging.NewStager(t.TempDir()), wh)
	env := activityEnv(t, acts)

	val, err := env.ExecuteActivity(acts.BuildGenreParquet, BuildRequest{Genre: "action", URL: srv.URL + "/action.csv"})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	var build BuildResult
	if err := val.Get(&build); err != nil {
		t.Fatalf("decode build result: %v", err)
	}

	const tableID = "demo.imdb_dataset.action"
	val, err = env.ExecuteActivity(acts.LoadGenreParquet, LoadRequest{Genre: "action", Path: build.Path, TableID: tableID})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	var load LoadResult
	if err := val.Get(&load); err != nil {
		t.Fatalf("decode load result: %v", err)
	}

	if load.Rows != 2 {
		t.Errorf("expected 2 rows loaded, got %d", load.Rows)
	}
	if len(load.Renames) != 4 {
		t.Errorf("expected 4 renames, got %v", load.Renames)
	}

	loaded := wh.get(tableID)
	if loaded == nil {
		t.Fatal("warehouse received no table")
	}
	wantCols := []string{"movie_name", "year", "rating_out_of_10", "gross_in"}
	if !reflect.DeepEqual(loaded.ColumnNames(), wantCols) {
		t.Errorf("expected sanitized columns %v, got %v", wantCols, loaded.ColumnNames())
	}
	if loaded.Rows[0][0] != "Inception" || loaded.Rows[0][1] != int64(2010) {
		t.Errorf("unexpected loaded row: %v", loaded.Rows[0])
	}
}

func TestLoadGenreParquetIdempotent(t *testing.T) {
	wh := newFakeWarehouse()
	stager := staging.NewStager(t.TempDir())
	acts := New(testSourceClient(), stager, wh)
	env := activityEnv(t, acts)

	tbl, err := table.FromCSV(strings.NewReader(moviesCSV))
	if err != nil {
		t.Fatalf("FromCSV failed: %v", err)
	}
	path, err := stager.Stage(context.Background(), "action", tbl, "action.parquet")
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}

	const tableID = "demo.imdb_dataset.action"
	req := LoadRequest{Genre: "action", Path: path, TableID: tableID}

	if _, err := env.ExecuteActivity(acts.LoadGenreParquet, req); err != nil {
		t.Fatalf("first load failed: %v", err)
	}
	first := wh.get(tableID)

	if _, err := env.ExecuteActivity(acts.LoadGenreParquet, req); err != nil {
		t.Fatalf("second load failed: %v", err)
	}
	second := wh.get(tableID)

	if !reflect.DeepEqual(first, second) {
		t.Error("repeated load of an unchanged artifact must produce identical table contents")
	}
	if wh.calls != 2 {
		t.Errorf("expected 2 replace calls, got %d", wh.calls)
	}
}

func TestLoadGenreParquetWithoutWarehouse(t *testing.T) {
	acts := New(testSourceClient(), staging.NewStager(t.TempDir()), nil)
	env := activityEnv(t, acts)

	if _, err := env.ExecuteActivity(acts.LoadGenreParquet, LoadRequest{Genre: "action", Path: "/nowhere", TableID: "a.b.c"}); err == nil {
		t.Error("expected error when warehouse client is missing")
	}
}
