package companies

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

//go:embed data/companies.json
var seedJSON []byte

// Seed returns the built-in company list in its original order.
func Seed() ([]Company, error) {
	var out []Company
	if err := json.Unmarshal(seedJSON, &out); err != nil {
		return nil, fmt.Errorf("decode seed companies: %w", err)
	}
	return out, nil
}

// Store keeps companies in SQLite. A nil Store behaves as an empty source.
type Store struct {
	db   *sql.DB
	path string
}

// OpenStore opens or creates the database at path, seeding it with the
// built-in companies when empty.
func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := migrateStore(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	s := &Store{db: db, path: path}
	if err := s.seed(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func migrateStore(db *sql.DB) error {
	statements := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS companies (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			company_name TEXT NOT NULL DEFAULT '',
			country TEXT NOT NULL DEFAULT '',
			company_logo TEXT NOT NULL DEFAULT '',
			speciality TEXT NOT NULL DEFAULT '',
			country_logo TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("company store migration failed: %w", err)
		}
	}
	return nil
}

func (s *Store) seed(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM companies`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	seed, err := Seed()
	if err != nil {
		return err
	}
	return s.Replace(ctx, seed)
}

// Path returns the database file.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Replace swaps the stored list for companies, keeping their order.
func (s *Store) Replace(ctx context.Context, companies []Company) error {
	if s == nil || s.db == nil {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM companies`); err != nil {
		_ = tx.Rollback()
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO companies
		(id, position, company_name, country, company_logo, speciality, country_logo)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for i, c := range companies {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, id, i, c.CompanyName, c.Country, c.CompanyLogo, c.Speciality, c.CountryLogo); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) List(ctx context.Context) ([]Company, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, company_name, country, company_logo, speciality, country_logo
		FROM companies ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.CompanyName, &c.Country, &c.CompanyLogo, &c.Speciality, &c.CountryLogo); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id string) (Company, error) {
	if s == nil || s.db == nil {
		return Company{}, ErrNotFound
	}
	var c Company
	err := s.db.QueryRowContext(ctx, `SELECT id, company_name, country, company_logo, speciality, country_logo
		FROM companies WHERE id = ?`, strings.TrimSpace(id)).
		Scan(&c.ID, &c.CompanyName, &c.Country, &c.CompanyLogo, &c.Speciality, &c.CountryLogo)
	if errors.Is(err, sql.ErrNoRows) {
		return Company{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if err != nil {
		return Company{}, err
	}
	return c, nil
}

// Update sets one editable field of company id and returns the result.
func (s *Store) Update(ctx context.Context, id, field, value string) (Company, error) {
	column, ok := editableColumns[field]
	if !ok {
		return Company{}, fmt.Errorf("%w: %q", ErrFieldNotEditable, field)
	}
	if s == nil || s.db == nil {
		return Company{}, ErrNotFound
	}
	// column comes from editableColumns, never from input
	res, err := s.db.ExecContext(ctx,
		`UPDATE companies SET `+column+` = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		strings.TrimSpace(value), strings.TrimSpace(id))
	if err != nil {
		return Company{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Company{}, err
	}
	if n == 0 {
		return Company{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return s.Get(ctx, id)
}
