package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/finwatch-dev/finwatch/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// TransactionStore is the durable system of record for every transaction
// ever seen. An ID present here has already been notified and must never
// be notified again, across restarts included. SQLite serializes writes,
// which gives the atomic per-id upsert the concurrent loop and command
// handlers rely on.
type TransactionStore struct {
	db *sql.DB
}

// NewTransactionStore opens (creating if needed) the SQLite store at
// dbPath and applies any pending migrations.
func NewTransactionStore(dbPath string) (*TransactionStore, error) {
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory %s: %w", dbDir, err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to store: %w", err)
	}
	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("migrating store: %w", err)
	}

	return &TransactionStore{db: db}, nil
}

// Contains reports whether a transaction ID has been seen before.
func (s *TransactionStore) Contains(id string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM transactions WHERE id = ?)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking transaction %s: %w", id, err)
	}
	return exists, nil
}

// Upsert inserts the transaction, or overwrites all fields if the ID is
// already present (the pending flag flips this way).
func (s *TransactionStore) Upsert(txn model.Transaction) error {
	_, err := s.db.Exec(`
		INSERT INTO transactions (id, account_id, date, description, amount, pending)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			account_id = excluded.account_id,
			date = excluded.date,
			description = excluded.description,
			amount = excluded.amount,
			pending = excluded.pending`,
		txn.ID,
		txn.AccountID,
		txn.Date.Format(model.DateFormat),
		txn.Description,
		txn.Amount.String(),
		txn.Pending,
	)
	if err != nil {
		return fmt.Errorf("upserting transaction %s: %w", txn.ID, err)
	}
	return nil
}

// All returns every stored transaction, ordered by date then ID.
func (s *TransactionStore) All() ([]model.Transaction, error) {
	rows, err := s.db.Query(`
		SELECT id, account_id, date, description, amount, pending
		FROM transactions
		ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	return txns, nil
}

// Close closes the underlying database.
func (s *TransactionStore) Close() error {
	return s.db.Close()
}

func scanTransaction(rows *sql.Rows) (model.Transaction, error) {
	var (
		txn          model.Transaction
		date, amount string
	)
	if err := rows.Scan(&txn.ID, &txn.AccountID, &date, &txn.Description, &amount, &txn.Pending); err != nil {
		return model.Transaction{}, fmt.Errorf("scanning transaction: %w", err)
	}

	var err error
	if txn.Date, err = parseDate(date); err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %s: %w", txn.ID, err)
	}
	if txn.Amount, err = decimal.NewFromString(amount); err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %s: parsing amount %q: %w", txn.ID, amount, err)
	}
	return txn, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(model.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("setting up migrate driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("creating migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("setting up migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}
