package storage

// sqlite.go — persistencia del historial de trades y snapshots por subject.
//
// Estrategia:
//   - `trades`: append-only, una fila por TradeRecord emitido.
//   - `subjects`: UNA fila por subject (UPSERT) con supply, último precio
//     y volumen acumulado — el estado resumido sin recorrer el historial.
//   - Prune automático al arrancar: trades con más de 90 días se van;
//     los snapshots de subjects se conservan siempre.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/bondmarket/internal/domain"
	"github.com/alejandrodnm/bondmarket/internal/ports"
)

const schema = `
-- Historial de trades, append-only
CREATE TABLE IF NOT EXISTS trades (
    id           TEXT PRIMARY KEY,
    trader       TEXT     NOT NULL,
    subject      TEXT     NOT NULL,
    side         TEXT     NOT NULL,
    quantity     INTEGER  NOT NULL,
    base_price   INTEGER  NOT NULL,
    protocol_fee INTEGER  NOT NULL,
    subject_fee  INTEGER  NOT NULL,
    supply       INTEGER  NOT NULL,
    traded_at    DATETIME NOT NULL
);

-- Una fila por subject, sin duplicados
CREATE TABLE IF NOT EXISTS subjects (
    subject    TEXT PRIMARY KEY,
    supply     INTEGER  NOT NULL DEFAULT 0,
    last_price INTEGER  NOT NULL DEFAULT 0,
    volume     INTEGER  NOT NULL DEFAULT 0,
    trades     INTEGER  NOT NULL DEFAULT 0,
    first_seen DATETIME NOT NULL,
    last_seen  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_at      ON trades(traded_at DESC);
CREATE INDEX IF NOT EXISTS idx_trades_subject ON trades(subject);
CREATE INDEX IF NOT EXISTS idx_subjects_vol   ON subjects(volume DESC);
`

// retentionTrades limita el historial crudo; los snapshots no caducan.
const retentionTrades = 90 * 24 * time.Hour

// SQLiteStore implementa ports.TradeStore usando SQLite (pure Go, sin CGo).
type SQLiteStore struct {
	db *sql.DB
}

var _ ports.TradeStore = (*SQLiteStore)(nil)

// NewSQLiteStore abre (o crea) la base de datos en la ruta dada, aplica el
// schema y limpia trades antiguos.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStore: apply schema: %w", err)
	}

	s := &SQLiteStore{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveTrade persiste el record y hace upsert del snapshot de su subject.
func (s *SQLiteStore) SaveTrade(ctx context.Context, rec domain.TradeRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveTrade: begin tx: %w", err)
	}
	defer tx.Rollback()

	at := rec.Timestamp.UTC()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO trades
			(id, trader, subject, side, quantity, base_price, protocol_fee, subject_fee, supply, traded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Trader.Hex(), rec.Subject.Hex(), string(rec.Side),
		rec.Quantity, rec.BasePrice, rec.ProtocolFee, rec.SubjectFee, rec.Supply, at,
	); err != nil {
		return fmt.Errorf("storage.SaveTrade: insert trade %s: %w", rec.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO subjects (subject, supply, last_price, volume, trades, first_seen, last_seen)
		VALUES (?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(subject) DO UPDATE SET
			supply     = excluded.supply,
			last_price = excluded.last_price,
			volume     = volume + excluded.volume,
			trades     = trades + 1,
			last_seen  = excluded.last_seen`,
		rec.Subject.Hex(), rec.Supply, rec.BasePrice, rec.BasePrice, at, at,
	); err != nil {
		return fmt.Errorf("storage.SaveTrade: upsert subject %s: %w", rec.Subject, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveTrade: commit: %w", err)
	}
	return nil
}

// History devuelve los trades con traded_at en el rango dado, del más
// antiguo al más reciente.
func (s *SQLiteStore) History(ctx context.Context, from, to time.Time) ([]domain.TradeRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, trader, subject, side, quantity, base_price, protocol_fee, subject_fee, supply, traded_at
		FROM trades
		WHERE traded_at >= ? AND traded_at <= ?
		ORDER BY traded_at ASC`,
		from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("storage.History: query: %w", err)
	}
	defer rows.Close()

	var out []domain.TradeRecord
	for rows.Next() {
		var rec domain.TradeRecord
		var trader, subject, side string
		if err := rows.Scan(&rec.ID, &trader, &subject, &side,
			&rec.Quantity, &rec.BasePrice, &rec.ProtocolFee, &rec.SubjectFee,
			&rec.Supply, &rec.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("storage.History: scan: %w", err)
		}
		rec.Trader = common.HexToAddress(trader)
		rec.Subject = common.HexToAddress(subject)
		rec.Side = domain.Side(side)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Subjects devuelve los snapshots ordenados por volumen desc — los
// subjects más tradeados primero.
func (s *SQLiteStore) Subjects(ctx context.Context) ([]ports.SubjectSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT subject, supply, last_price, volume, trades, first_seen, last_seen
		FROM subjects
		ORDER BY volume DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage.Subjects: query: %w", err)
	}
	defer rows.Close()

	var out []ports.SubjectSnapshot
	for rows.Next() {
		var snap ports.SubjectSnapshot
		var subject string
		if err := rows.Scan(&subject, &snap.Supply, &snap.LastPrice,
			&snap.Volume, &snap.Trades, &snap.FirstSeen, &snap.LastSeen,
		); err != nil {
			return nil, fmt.Errorf("storage.Subjects: scan: %w", err)
		}
		snap.Subject = common.HexToAddress(subject)
		out = append(out, snap)
	}
	return out, rows.Err()
}

// Close cierra la conexión.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// pruneOld borra trades fuera de la ventana de retención. Best-effort:
// un fallo aquí no impide arrancar.
func (s *SQLiteStore) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionTrades)
	s.db.ExecContext(ctx, `DELETE FROM trades WHERE traded_at < ?`, cutoff)
}
