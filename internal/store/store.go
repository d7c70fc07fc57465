// Package store handles the SQLite price catalog database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/verte-zerg/shoplog/internal/normalize"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for catalog prices.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS prices (
			name TEXT PRIMARY KEY,
			price REAL NOT NULL CHECK (price >= 0)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ListPrices returns every stored price keyed by normalized item name.
func (s *Store) ListPrices(ctx context.Context) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, price FROM prices`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	result := map[string]float64{}
	for rows.Next() {
		var name string
		var price float64
		if err := rows.Scan(&name, &price); err != nil {
			return nil, err
		}
		result[name] = price
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpsertPrice stores one price.
func (s *Store) UpsertPrice(ctx context.Context, name string, price float64) error {
	return s.ImportPrices(ctx, map[string]float64{name: price})
}

// ImportPrices upserts all prices in one transaction.
func (s *Store) ImportPrices(ctx context.Context, prices map[string]float64) (err error) {
	if len(prices) == 0 {
		return nil
	}
	names := make([]string, 0, len(prices))
	for name, price := range prices {
		if price < 0 {
			return fmt.Errorf("negative price for %q", name)
		}
		if normalize.Text(name) == "" {
			return fmt.Errorf("empty item name")
		}
		names = append(names, name)
	}
	sort.Strings(names)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO prices (name, price) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET price = excluded.price`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, name := range names {
		if _, err = stmt.ExecContext(ctx, normalize.Text(name), prices[name]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeletePrice removes one price. Missing names are not an error.
func (s *Store) DeletePrice(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM prices WHERE name = ?`, normalize.Text(name))
	return err
}
