// Package store keeps the natural products and their reference lists in
// SQLite, and rewrites those lists from a reference map.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/OBrink/citation-normalisation/internal/coconut"
	"github.com/OBrink/citation-normalisation/internal/refmap"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// Product is a natural product with its ordered reference strings.
type Product struct {
	CoconutID  string   `json:"coconut_id"`
	References []string `json:"references"`
}

// Open opens or creates the database at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS natural_products (
			coconut_id TEXT PRIMARY KEY
		);

		-- Reference strings of a product, in their original order
		CREATE TABLE IF NOT EXISTS product_references (
			coconut_id TEXT NOT NULL REFERENCES natural_products(coconut_id),
			position INTEGER NOT NULL,
			reference TEXT NOT NULL,
			PRIMARY KEY (coconut_id, position)
		);

		CREATE INDEX IF NOT EXISTS idx_product_references_reference ON product_references(reference);
	`
	_, err := db.Exec(schema)
	return err
}

// Import inserts or replaces the given products and their reference lists.
// It returns the number of products written.
func (d *DB) Import(records []coconut.Record) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range records {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO natural_products (coconut_id) VALUES (?)`, rec.CoconutID); err != nil {
			return 0, fmt.Errorf("inserting %s: %w", rec.CoconutID, err)
		}
		if err := replaceReferences(tx, rec.CoconutID, rec.References); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing import: %w", err)
	}
	return len(records), nil
}

// Get returns one product, or nil if it is unknown.
func (d *DB) Get(coconutID string) (*Product, error) {
	var id string
	err := d.db.QueryRow(`SELECT coconut_id FROM natural_products WHERE coconut_id = ?`, coconutID).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying product: %w", err)
	}

	refs, err := d.references(coconutID)
	if err != nil {
		return nil, err
	}
	return &Product{CoconutID: id, References: refs}, nil
}

// List returns up to limit products ordered by id; limit <= 0 means all.
func (d *DB) List(limit int) ([]Product, error) {
	query := `SELECT coconut_id FROM natural_products ORDER BY coconut_id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating products: %w", err)
	}

	products := make([]Product, 0, len(ids))
	for _, id := range ids {
		refs, err := d.references(id)
		if err != nil {
			return nil, err
		}
		products = append(products, Product{CoconutID: id, References: refs})
	}
	return products, nil
}

// Count returns the number of stored products.
func (d *DB) Count() (int, error) {
	var n int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM natural_products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting products: %w", err)
	}
	return n, nil
}

// ApplyStats reports the effect of Apply.
type ApplyStats struct {
	Products   int `json:"products"`
	Updated    int `json:"updated"`
	Replaced   int `json:"replaced"`
	Unreplaced int `json:"unreplaced"`
}

// Apply rewrites every product's reference list, replacing each mapped
// reference string by its normalized form. Unmapped strings are kept.
func (d *DB) Apply(m refmap.Map) (*ApplyStats, error) {
	products, err := d.List(0)
	if err != nil {
		return nil, err
	}

	tx, err := d.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stats := &ApplyStats{Products: len(products)}
	for _, p := range products {
		changed := false
		updated := make([]string, len(p.References))
		for i, old := range p.References {
			updated[i] = m.Replacement(old)
			if _, ok := m[old]; ok {
				stats.Replaced++
			} else {
				stats.Unreplaced++
			}
			if updated[i] != old {
				changed = true
			}
		}
		if !changed {
			continue
		}
		if err := replaceReferences(tx, p.CoconutID, updated); err != nil {
			return nil, err
		}
		stats.Updated++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing update: %w", err)
	}
	return stats, nil
}

func (d *DB) references(coconutID string) ([]string, error) {
	rows, err := d.db.Query(`SELECT reference FROM product_references WHERE coconut_id = ? ORDER BY position`, coconutID)
	if err != nil {
		return nil, fmt.Errorf("querying references of %s: %w", coconutID, err)
	}
	defer rows.Close()

	var refs []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("scanning reference: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func replaceReferences(tx *sql.Tx, coconutID string, refs []string) error {
	if _, err := tx.Exec(`DELETE FROM product_references WHERE coconut_id = ?`, coconutID); err != nil {
		return fmt.Errorf("clearing references of %s: %w", coconutID, err)
	}
	for i, ref := range refs {
		if _, err := tx.Exec(`INSERT INTO product_references (coconut_id, position, reference) VALUES (?, ?, ?)`, coconutID, i, ref); err != nil {
			return fmt.Errorf("inserting reference of %s: %w", coconutID, err)
		}
	}
	return nil
}
