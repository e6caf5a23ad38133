package defstore

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // pure Go driver

	"github.com/Aman-CERP/ccindex/internal/chemcomp"
	ccerrors "github.com/Aman-CERP/ccindex/internal/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS definitions (
	seq  INTEGER PRIMARY KEY AUTOINCREMENT,
	id   TEXT NOT NULL UNIQUE,
	body TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// maxLineSize bounds a single JSON Lines record.
const maxLineSize = 16 * 1024 * 1024

// Options configures the SQLite-cached store.
type Options struct {
	CachePath      string // root cache directory
	UseCache       bool   // reuse an existing database
	MolLimit       int    // 0 means all definitions
	SourcePath     string // JSON Lines definitions file
	FileNamePrefix string // defaults to "cc"
}

// DatabasePath returns <cache>/chem_comp/<prefix>-definitions.db.
func (o Options) DatabasePath() string {
	prefix := o.FileNamePrefix
	if prefix == "" {
		prefix = "cc"
	}
	return filepath.Join(o.CachePath, "chem_comp", prefix+"-definitions.db")
}

// SQLiteStore is a Provider backed by a SQLite cache of a JSON Lines source.
// Definitions are loaded into memory on Open; row order preserves source order.
type SQLiteStore struct {
	path string
	defs *chemcomp.DefinitionSet
}

// Open loads the definition store. With UseCache and an existing database the
// source file is not read. Otherwise the database is (re)built from
// SourcePath. A missing database with no source yields an empty store.
func Open(ctx context.Context, opts Options) (*SQLiteStore, error) {
	path := opts.DatabasePath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, ccerrors.New(ccerrors.ErrCodeStoreFailed, "failed to create store directory", err)
	}

	if !opts.UseCache {
		removeDatabase(path)
	} else if err := validateIntegrity(path); err != nil {
		slog.Warn("definition_store_corrupted",
			slog.String("path", path),
			slog.String("error", err.Error()))
		removeDatabase(path)
	}

	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM definitions").Scan(&count); err != nil {
		return nil, ccerrors.New(ccerrors.ErrCodeStoreFailed, "failed to count definitions", err)
	}

	if count == 0 && opts.SourcePath != "" {
		n, err := loadSource(ctx, db, opts.SourcePath)
		if err != nil {
			return nil, err
		}
		slog.Info("definition store populated",
			slog.String("source", opts.SourcePath),
			slog.Int("count", n))
	}

	defs, err := readDefinitions(ctx, db, opts.MolLimit)
	if err != nil {
		return nil, err
	}

	return &SQLiteStore{path: path, defs: defs}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// TestCache implements Provider.
func (s *SQLiteStore) TestCache(minCount int, logSizes bool) bool {
	return checkCount("sqlite", s.defs, minCount, logSizes)
}

// Definitions implements Provider.
func (s *SQLiteStore) Definitions() *chemcomp.DefinitionSet {
	return s.defs
}

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, ccerrors.New(ccerrors.ErrCodeStoreFailed, "failed to open database", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, ccerrors.New(ccerrors.ErrCodeStoreFailed, "failed to set pragma", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, ccerrors.New(ccerrors.ErrCodeStoreFailed, "failed to initialize schema", err)
	}
	return db, nil
}

// validateIntegrity checks an existing database file. A missing file is fine.
func validateIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check: %s", result)
	}
	return nil
}

func removeDatabase(path string) {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove database file",
				slog.String("path", p),
				slog.String("error", err.Error()))
		}
	}
}

// loadSource reads JSON Lines definitions into the database. Malformed lines
// and records without an id are logged and skipped. A repeated id replaces
// the body but keeps its first position.
func loadSource(ctx context.Context, db *sql.DB, source string) (int, error) {
	f, err := os.Open(source)
	if err != nil {
		code := ccerrors.ErrCodeStoreFailed
		if os.IsNotExist(err) {
			code = ccerrors.ErrCodeFileNotFound
		}
		return 0, ccerrors.New(code, "failed to open definition source", err).
			WithDetail("path", source)
	}
	defer f.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, ccerrors.New(ccerrors.ErrCodeStoreFailed, "failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO definitions (id, body) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET body = excluded.body`)
	if err != nil {
		return 0, ccerrors.New(ccerrors.ErrCodeStoreFailed, "failed to prepare insert", err)
	}
	defer stmt.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	n, lineNo := 0, 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		var def chemcomp.Definition
		if err := json.Unmarshal([]byte(line), &def); err != nil {
			slog.Error("skipping malformed definition",
				slog.String("source", source),
				slog.Int("line", lineNo),
				slog.String("error", err.Error()))
			continue
		}
		if def.ID == "" && def.ChemComp != nil {
			def.ID = def.ChemComp.ID
		}
		if def.ID == "" {
			slog.Error("skipping definition without id",
				slog.String("source", source),
				slog.Int("line", lineNo))
			continue
		}

		if _, err := stmt.ExecContext(ctx, def.ID, line); err != nil {
			return 0, ccerrors.New(ccerrors.ErrCodeStoreFailed, "failed to insert definition", err).
				WithDetail("id", def.ID)
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return 0, ccerrors.New(ccerrors.ErrCodeStoreFailed, "failed to read definition source", err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO meta (key, value) VALUES ('source', ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		source); err != nil {
		return 0, ccerrors.New(ccerrors.ErrCodeStoreFailed, "failed to record source", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, ccerrors.New(ccerrors.ErrCodeStoreFailed, "failed to commit definitions", err)
	}
	return n, nil
}

func readDefinitions(ctx context.Context, db *sql.DB, molLimit int) (*chemcomp.DefinitionSet, error) {
	query := "SELECT id, body FROM definitions ORDER BY seq"
	var args []any
	if molLimit > 0 {
		query += " LIMIT ?"
		args = append(args, molLimit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, ccerrors.New(ccerrors.ErrCodeStoreFailed, "failed to query definitions", err)
	}
	defer rows.Close()

	defs := chemcomp.NewDefinitionSet()
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, ccerrors.New(ccerrors.ErrCodeStoreFailed, "failed to scan definition", err)
		}
		def := &chemcomp.Definition{}
		if err := json.Unmarshal([]byte(body), def); err != nil {
			slog.Error("skipping undecodable stored definition",
				slog.String("id", id),
				slog.String("error", err.Error()))
			continue
		}
		def.ID = id
		defs.Add(id, def)
	}
	if err := rows.Err(); err != nil {
		return nil, ccerrors.New(ccerrors.ErrCodeStoreFailed, "failed to iterate definitions", err)
	}
	return defs, nil
}
