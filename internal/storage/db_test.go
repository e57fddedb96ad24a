package storage

import (
	"path/filepath"
	"testing"

	"pedidos/internal"
)

func sp(v string) *string { return &v }

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "pedidos.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRunRoundTrip(t *testing.T) {
	db := openTestDB(t)

	if err := db.InsertRun("run-1", "orders"); err != nil {
		t.Fatal(err)
	}
	docID, err := db.InsertDocument(internal.DocumentRow{RunID: "run-1", FileName: "a.pdf", Hash: "h1", Status: internal.DocumentExtracted, ItemCount: 2})
	if err != nil {
		t.Fatal(err)
	}

	items := []internal.OrderItem{
		{LineNo: 3, Source: internal.SourcePDF, RawLine: "l3", Customer: sp("ACME"), BarCode: sp("V-1"), Weight: 25.3, SourceFile: "a.pdf"},
		{LineNo: 7, Source: internal.SourcePDF, RawLine: "l7", Customer: sp("ACME"), Weight: 0.5, SourceFile: "a.pdf"},
	}
	if err := db.InsertItems("run-1", docID, items); err != nil {
		t.Fatal(err)
	}
	if err := db.FinishRun(internal.RunRow{ID: "run-1", OutputPath: "out.xlsx", Files: 1, Items: 2, TotalWeight: "25.8"}); err != nil {
		t.Fatal(err)
	}

	run, err := db.GetRun("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if run == nil || run.FinishedAt == nil || run.Items != 2 || run.TotalWeight != "25.8" {
		t.Fatalf("run=%+v", run)
	}

	got, err := db.GetRunItems("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("len=%d", len(got))
	}
	if got[0].LineNo != 3 || got[0].BarCodeText() != "V-1" || got[0].Weight != 25.3 {
		t.Fatalf("item0=%+v", got[0])
	}
	if got[1].BarCode != nil || got[1].DiameterText() != "0" {
		t.Fatalf("item1=%+v", got[1])
	}

	runs, err := db.ListRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != "run-1" {
		t.Fatalf("runs=%+v", runs)
	}
}

func TestHasDocumentHash(t *testing.T) {
	db := openTestDB(t)
	if err := db.InsertRun("run-1", "orders"); err != nil {
		t.Fatal(err)
	}
	docs := []internal.DocumentRow{
		{RunID: "run-1", FileName: "bad.pdf", Hash: "bad", Status: internal.DocumentFailed, Error: sp("boom")},
		{RunID: "run-1", FileName: "empty.pdf", Hash: "empty", Status: internal.DocumentEmpty},
		{RunID: "run-1", FileName: "unreadable.pdf", Status: internal.DocumentFailed, Error: sp("permission denied")},
	}
	for _, doc := range docs {
		if _, err := db.InsertDocument(doc); err != nil {
			t.Fatal(err)
		}
	}

	cases := []struct {
		hash string
		want bool
	}{
		{hash: "bad", want: true},
		{hash: "empty", want: true},
		{hash: "", want: false},
		{hash: "other", want: false},
	}
	for _, tc := range cases {
		if seen, err := db.HasDocumentHash(tc.hash); err != nil || seen != tc.want {
			t.Fatalf("hash %q seen=%v err=%v", tc.hash, seen, err)
		}
	}

	got, err := db.ListRunDocuments("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0].Status != internal.DocumentFailed || got[0].Error == nil {
		t.Fatalf("docs=%+v", got)
	}
}

func TestFinishUnknownRun(t *testing.T) {
	db := openTestDB(t)
	if err := db.FinishRun(internal.RunRow{ID: "nope"}); err == nil {
		t.Fatal("expected error")
	}
	run, err := db.GetRun("nope")
	if err != nil || run != nil {
		t.Fatalf("run=%v err=%v", run, err)
	}
}
