package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"pedidos/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  inputDir TEXT NOT NULL,
  outputPath TEXT NOT NULL DEFAULT '',
  startedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  finishedAt TEXT,
  files INTEGER NOT NULL DEFAULT 0,
  failed INTEGER NOT NULL DEFAULT 0,
  items INTEGER NOT NULL DEFAULT 0,
  totalWeight TEXT NOT NULL DEFAULT '0'
);

CREATE TABLE IF NOT EXISTS documents (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId TEXT NOT NULL,
  fileName TEXT NOT NULL,
  hash TEXT NOT NULL,
  status TEXT NOT NULL,
  itemCount INTEGER NOT NULL DEFAULT 0,
  error TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(runId) REFERENCES runs(id)
);
CREATE INDEX IF NOT EXISTS idx_documents_hash ON documents(hash);
CREATE INDEX IF NOT EXISTS idx_documents_runId ON documents(runId);

CREATE TABLE IF NOT EXISTS items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  documentId INTEGER NOT NULL,
  runId TEXT NOT NULL,
  lineNo INTEGER NOT NULL,
  source TEXT NOT NULL,
  rawLine TEXT NOT NULL,
  customer TEXT,
  deliveryDate TEXT,
  barCode TEXT,
  material TEXT,
  diameter TEXT,
  length TEXT,
  weight REAL NOT NULL,
  sourceFile TEXT NOT NULL,
  FOREIGN KEY(documentId) REFERENCES documents(id)
);
CREATE INDEX IF NOT EXISTS idx_items_runId ON items(runId);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) InsertRun(id, inputDir string) error {
	_, err := d.conn.Exec(`INSERT INTO runs (id, inputDir) VALUES (?, ?)`, id, inputDir)
	return err
}

func (d *DB) FinishRun(run internal.RunRow) error {
	res, err := d.conn.Exec(`
UPDATE runs SET
  outputPath = ?, files = ?, failed = ?, items = ?, totalWeight = ?, finishedAt = CURRENT_TIMESTAMP
WHERE id = ?
`, run.OutputPath, run.Files, run.Failed, run.Items, run.TotalWeight, run.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run not found: %s", run.ID)
	}
	return nil
}

func (d *DB) GetRun(id string) (*internal.RunRow, error) {
	var row internal.RunRow
	err := d.conn.QueryRow(`
SELECT id, inputDir, outputPath, startedAt, finishedAt, files, failed, items, totalWeight
FROM runs WHERE id = ?
`, id).Scan(&row.ID, &row.InputDir, &row.OutputPath, &row.StartedAt, &row.FinishedAt, &row.Files, &row.Failed, &row.Items, &row.TotalWeight)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) ListRuns(limit int) ([]internal.RunRow, error) {
	rows, err := d.conn.Query(`
SELECT id, inputDir, outputPath, startedAt, finishedAt, files, failed, items, totalWeight
FROM runs ORDER BY startedAt DESC, rowid DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RunRow
	for rows.Next() {
		var row internal.RunRow
		if err := rows.Scan(&row.ID, &row.InputDir, &row.OutputPath, &row.StartedAt, &row.FinishedAt, &row.Files, &row.Failed, &row.Items, &row.TotalWeight); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) InsertDocument(doc internal.DocumentRow) (int64, error) {
	result, err := d.conn.Exec(`
INSERT INTO documents (runId, fileName, hash, status, itemCount, error)
VALUES (?, ?, ?, ?, ?, ?)
`, doc.RunID, doc.FileName, doc.Hash, string(doc.Status), doc.ItemCount, doc.Error)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (d *DB) ListRunDocuments(runID string) ([]internal.DocumentRow, error) {
	rows, err := d.conn.Query(`
SELECT id, runId, fileName, hash, status, itemCount, error
FROM documents WHERE runId = ? ORDER BY id ASC
`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.DocumentRow
	for rows.Next() {
		var row internal.DocumentRow
		var status string
		if err := rows.Scan(&row.ID, &row.RunID, &row.FileName, &row.Hash, &status, &row.ItemCount, &row.Error); err != nil {
			return nil, err
		}
		row.Status = internal.DocumentStatus(status)
		out = append(out, row)
	}
	return out, rows.Err()
}

// HasDocumentHash reports whether a file with this content was already
// recorded by any run. Extraction of the same bytes gives the same outcome,
// so failed documents count too; unreadable files carry no hash.
func (d *DB) HasDocumentHash(hash string) (bool, error) {
	if hash == "" {
		return false, nil
	}
	var n int
	err := d.conn.QueryRow(`SELECT COUNT(1) FROM documents WHERE hash = ?`, hash).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *DB) InsertItems(runID string, documentID int64, items []internal.OrderItem) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO items (
  documentId, runId, lineNo, source, rawLine,
  customer, deliveryDate, barCode, material, diameter, length, weight, sourceFile
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, item := range items {
		if _, err := stmt.Exec(
			documentID, runID, item.LineNo, string(item.Source), item.RawLine,
			item.Customer, item.DeliveryDate, item.BarCode, item.Material, item.Diameter, item.Length, item.Weight, item.SourceFile,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) GetRunItems(runID string) ([]internal.OrderItem, error) {
	rows, err := d.conn.Query(`
SELECT lineNo, source, rawLine, customer, deliveryDate, barCode, material, diameter, length, weight, sourceFile
FROM items WHERE runId = ?
ORDER BY documentId ASC, lineNo ASC
`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.OrderItem
	for rows.Next() {
		var item internal.OrderItem
		var source string
		if err := rows.Scan(
			&item.LineNo, &source, &item.RawLine,
			&item.Customer, &item.DeliveryDate, &item.BarCode, &item.Material, &item.Diameter, &item.Length,
			&item.Weight, &item.SourceFile,
		); err != nil {
			return nil, err
		}
		item.Source = internal.ItemSource(source)
		out = append(out, item)
	}
	return out, rows.Err()
}
