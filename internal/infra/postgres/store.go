// Package postgres is the hosted relational backend behind the dashboard:
// the three normalized tables plus the externally loaded reconciliation
// table, accessed through database/sql and lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Config carries the connection settings for the purchase database.
type Config struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// ConnectionString renders the lib/pq DSN.
func (c Config) ConnectionString() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, sslmode)
}

// Store wraps the purchase database. It is both the normalization sink and
// the dashboard query provider.
type Store struct {
	db *sql.DB
}

// Open connects and pings the database.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	db, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStore wraps an existing handle, mainly for tests.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// EnsureSchema creates the four tables when absent. Reference tables carry
// no foreign keys: rows relate by matching string values only.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS achats (
			num_bon_pese        TEXT NOT NULL,
			designation_article TEXT NOT NULL,
			date_br             DATE NOT NULL,
			code_fournisseur    TEXT NOT NULL,
			nom_bateau          TEXT NOT NULL,
			qte_recue           DOUBLE PRECISION NOT NULL,
			qte_facturee        DOUBLE PRECISION NOT NULL,
			qualite             TEXT NOT NULL,
			moule               TEXT NOT NULL,
			pu                  DOUBLE PRECISION NOT NULL,
			montant_achat       DOUBLE PRECISION NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS fournisseurs (
			code_fournisseur        TEXT NOT NULL,
			designation_fournisseur TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS produits (
			designation_article TEXT NOT NULL,
			famille             TEXT NOT NULL,
			ca                  DOUBLE PRECISION
		)`,
		`CREATE TABLE IF NOT EXISTS achats_bp (
			code_fournisseur TEXT,
			date_br          DATE,
			tot_paye         DOUBLE PRECISION NOT NULL DEFAULT 0,
			tot_recu         DOUBLE PRECISION NOT NULL DEFAULT 0,
			tot_facture      DOUBLE PRECISION NOT NULL DEFAULT 0,
			ecart_qt         DOUBLE PRECISION,
			ecart_montant    DOUBLE PRECISION NOT NULL DEFAULT 0
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
