package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"factoryplan/internal/adapters/http/perf"
)

func openTimedTestDB(t *testing.T) (*TimedDB, *perf.Collector) {
	t.Helper()
	db := openTestDB(t)
	collector := perf.NewCollector(100)
	return NewTimedDB(db, collector, 0), collector
}

func TestTimedDB_RecordsEveryCall(t *testing.T) {
	tdb, collector := openTimedTestDB(t)
	ctx := context.Background()

	if _, err := tdb.ExecContext(ctx, `INSERT INTO phase (phase_no, title) VALUES (?, ?)`, 1, "Setting of objectives"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	rows, err := tdb.QueryContext(ctx, `SELECT id FROM phase`)
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	rows.Close()
	var title string
	if err := tdb.QueryRowContext(ctx, `SELECT title FROM phase WHERE phase_no = ?`, 1).Scan(&title); err != nil {
		t.Fatalf("QueryRowContext: %v", err)
	}
	if title != "Setting of objectives" {
		t.Errorf("title = %q", title)
	}
	tx, err := tdb.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	tx.Rollback()

	if collector.TotalRecorded() != 4 {
		t.Errorf("TotalRecorded = %d, want 4", collector.TotalRecorded())
	}
	snap := collector.Snapshot(time.Now().Add(-time.Minute), 10)
	labels := map[string]bool{}
	for _, s := range snap.SlowestQueries {
		labels[s.Path] = true
	}
	for _, want := range []string{"INSERT phase", "SELECT phase", "BEGIN"} {
		if !labels[want] {
			t.Errorf("missing label %q in %v", want, labels)
		}
	}
}

func TestTimedDB_NilCollector(t *testing.T) {
	db := openTestDB(t)
	tdb := NewTimedDB(db, nil, time.Second)
	if _, err := tdb.ExecContext(context.Background(), `DELETE FROM phase`); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
}

func TestTimedDB_ErrorsStillRecorded(t *testing.T) {
	tdb, collector := openTimedTestDB(t)
	if _, err := tdb.ExecContext(context.Background(), `INSERT INTO nope (x) VALUES (1)`); err == nil {
		t.Fatal("expected error")
	}
	if collector.TotalRecorded() != 1 {
		t.Errorf("TotalRecorded = %d, want 1", collector.TotalRecorded())
	}
}

func TestTimedDB_SatisfiesSQLDB(t *testing.T) {
	tdb, _ := openTimedTestDB(t)
	var db SQLDB = tdb
	var n int
	if err := db.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM phase`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if tdb.RawDB() == nil {
		t.Error("RawDB() = nil")
	}
	if err := tdb.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestTimedDB_ConcurrentUse(t *testing.T) {
	tdb, collector := openTimedTestDB(t)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var n int
			_ = tdb.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM phase`).Scan(&n)
		}()
	}
	wg.Wait()
	if collector.TotalRecorded() != 20 {
		t.Errorf("TotalRecorded = %d, want 20", collector.TotalRecorded())
	}
}

func TestQueryLabel(t *testing.T) {
	tests := map[string]string{
		"SELECT id, title FROM phase WHERE id = ?":        "SELECT phase",
		"select p.id from potential p join phase ph on 1": "SELECT potential",
		"INSERT INTO matrix_category (a) VALUES (?)":      "INSERT matrix_category",
		"UPDATE subphase SET name = ?":                    "UPDATE subphase",
		"DELETE FROM api_token WHERE expires_at < ?":      "DELETE api_token",
		"PRAGMA foreign_keys=ON":                          "PRAGMA",
		"":                                                "?",
	}
	for query, want := range tests {
		if got := queryLabel(query); got != want {
			t.Errorf("queryLabel(%q) = %q, want %q", query, got, want)
		}
	}
}
