package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"options-signals/internal/errors"
	"options-signals/internal/models"
)

// SQLiteStore implements SignalStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based signal store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.NewStoreError("open", err)
	}

	// Single active writer per the cycle model; a small pool covers reads.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, errors.NewStoreError("init schema", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Signals table, one row per generated strategy signal
	CREATE TABLE IF NOT EXISTS signals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		strategy TEXT NOT NULL,
		expiration DATETIME NOT NULL,
		spot_at_creation REAL NOT NULL,
		net_premium REAL NOT NULL,
		strike_set TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'ACTIVE',
		created_at DATETIME NOT NULL
	);

	-- Per-leg detail, ordered short leg first via leg_index
	CREATE TABLE IF NOT EXISTS signal_legs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		signal_id INTEGER NOT NULL,
		leg_index INTEGER NOT NULL,
		option_type TEXT NOT NULL,
		side TEXT NOT NULL,
		strike REAL NOT NULL,
		premium REAL NOT NULL,
		quantity REAL NOT NULL,
		FOREIGN KEY (signal_id) REFERENCES signals(id),
		UNIQUE(signal_id, leg_index)
	);

	CREATE INDEX IF NOT EXISTS idx_signals_status ON signals(status);
	CREATE INDEX IF NOT EXISTS idx_signals_dedup ON signals(symbol, strategy, expiration, strike_set, status);
	CREATE INDEX IF NOT EXISTS idx_legs_signal ON signal_legs(signal_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Exists reports whether an equivalent Active signal is already stored.
func (s *SQLiteStore) Exists(ctx context.Context, symbol string, strategy models.Strategy, expiration time.Time, strikeSet string) (bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM signals
		WHERE symbol = ? AND strategy = ? AND expiration = ? AND strike_set = ? AND status = ?
		LIMIT 1
	`, symbol, strategy, expiration.UTC(), strikeSet, models.StatusActive).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.NewStoreError("exists", err)
	}
	return true, nil
}

// Insert atomically writes the signal and its ordered legs.
func (s *SQLiteStore) Insert(ctx context.Context, signal *models.Signal) (int64, error) {
	if len(signal.Legs) != 2 {
		return 0, fmt.Errorf("signal must have exactly two legs, got %d", len(signal.Legs))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.NewStoreError("begin tx", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO signals (symbol, strategy, expiration, spot_at_creation, net_premium, strike_set, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, signal.Symbol, signal.Strategy, signal.Expiration.UTC(), signal.SpotAtCreation,
		signal.NetPremium, signal.StrikeSet(), signal.Status, signal.CreatedAt.UTC())
	if err != nil {
		return 0, errors.NewStoreError("insert signal", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.NewStoreError("insert signal", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO signal_legs (signal_id, leg_index, option_type, side, strike, premium, quantity)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, errors.NewStoreError("prepare legs", err)
	}
	defer stmt.Close()

	for i, leg := range signal.Legs {
		if _, err := stmt.ExecContext(ctx, id, i, leg.Type, leg.Side, leg.Strike, leg.Premium, leg.Quantity); err != nil {
			return 0, errors.NewStoreError("insert leg", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.NewStoreError("commit", err)
	}

	signal.ID = id
	return id, nil
}

// ListActive returns all Active signals with legs populated. The query
// filters on status alone; signals past expiration stay listed until the
// monitor transitions them, so asOf only marks the evaluation instant.
func (s *SQLiteStore) ListActive(ctx context.Context, asOf time.Time) ([]models.Signal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, symbol, strategy, expiration, spot_at_creation, net_premium, status, created_at
		FROM signals WHERE status = ? ORDER BY created_at ASC, id ASC
	`, models.StatusActive)
	if err != nil {
		return nil, errors.NewStoreError("list active", err)
	}
	defer rows.Close()

	var signals []models.Signal
	for rows.Next() {
		var sig models.Signal
		if err := rows.Scan(&sig.ID, &sig.Symbol, &sig.Strategy, &sig.Expiration,
			&sig.SpotAtCreation, &sig.NetPremium, &sig.Status, &sig.CreatedAt); err != nil {
			return nil, errors.NewStoreError("scan signal", err)
		}
		signals = append(signals, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError("iterate signals", err)
	}

	for i := range signals {
		legs, err := s.legsFor(ctx, signals[i].ID)
		if err != nil {
			return nil, err
		}
		signals[i].Legs = legs
	}

	return signals, nil
}

// legsFor loads the ordered legs of one signal.
func (s *SQLiteStore) legsFor(ctx context.Context, signalID int64) ([]models.OptionLeg, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT option_type, side, strike, premium, quantity
		FROM signal_legs WHERE signal_id = ? ORDER BY leg_index ASC
	`, signalID)
	if err != nil {
		return nil, errors.NewStoreError("list legs", err)
	}
	defer rows.Close()

	var legs []models.OptionLeg
	for rows.Next() {
		var leg models.OptionLeg
		if err := rows.Scan(&leg.Type, &leg.Side, &leg.Strike, &leg.Premium, &leg.Quantity); err != nil {
			return nil, errors.NewStoreError("scan leg", err)
		}
		legs = append(legs, leg)
	}
	return legs, rows.Err()
}

// UpdateStatus transitions a signal to a new lifecycle status.
func (s *SQLiteStore) UpdateStatus(ctx context.Context, id int64, status models.SignalStatus) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE signals SET status = ? WHERE id = ?
	`, status, id)
	if err != nil {
		return errors.NewStoreError("update status", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.Wrapf(errors.ErrSignalNotFound, "id %d", id)
	}

	return nil
}
