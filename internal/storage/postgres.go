package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/raydebug/puretexaspoker-sub003/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS hand_actions (
	id            TEXT PRIMARY KEY,
	hand_id       TEXT NOT NULL,
	table_id      TEXT NOT NULL,
	player_id     TEXT NOT NULL,
	seat_number   INT NOT NULL,
	phase         TEXT NOT NULL,
	action        TEXT NOT NULL,
	amount        INT NOT NULL,
	resulting_pot INT NOT NULL,
	sequence      INT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	UNIQUE (hand_id, sequence)
);

CREATE TABLE IF NOT EXISTS deck_commitments (
	hand_id      TEXT PRIMARY KEY,
	table_id     TEXT NOT NULL,
	hash         TEXT NOT NULL,
	seed_hex     TEXT,
	card_order   TEXT[],
	committed_at TIMESTAMPTZ NOT NULL,
	revealed_at  TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS table_seats (
	table_id    TEXT NOT NULL,
	seat_number INT NOT NULL,
	player_id   TEXT,
	player_name TEXT,
	chips       INT,
	updated_at  TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (table_id, seat_number)
);

CREATE TABLE IF NOT EXISTS tables (
	table_id   TEXT PRIMARY KEY,
	snapshot   JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
`

// PostgresStore is the durable implementation backed by lib/pq.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// EnsureSchema creates the audit tables if they do not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) RecordAction(ctx context.Context, record models.ActionRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO hand_actions
			(id, hand_id, table_id, player_id, seat_number, phase, action, amount, resulting_pot, sequence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING`,
		record.ID, record.HandID, record.TableID, record.PlayerID, record.SeatNumber,
		record.Phase, record.Action, record.Amount, record.ResultingPot, record.Sequence, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("record action %s: %w", record.ID, err)
	}
	return nil
}

func (s *PostgresStore) CommitDeck(ctx context.Context, tableID, handID, hash string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO deck_commitments (hand_id, table_id, hash, committed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (hand_id) DO NOTHING`,
		handID, tableID, hash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("commit deck for hand %s: %w", handID, err)
	}
	return nil
}

func (s *PostgresStore) RevealDeck(ctx context.Context, handID, seedHex string, cardOrder []string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE deck_commitments
		SET seed_hex = $2, card_order = $3, revealed_at = $4
		WHERE hand_id = $1`,
		handID, seedHex, pq.Array(cardOrder), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("reveal deck for hand %s: %w", handID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("reveal deck for hand %s: %w", handID, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) GetDeckCommitment(ctx context.Context, handID string) (*DeckCommitment, error) {
	var c DeckCommitment
	var cardOrder pq.StringArray
	var seedHex sql.NullString
	var revealedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT hand_id, table_id, hash, seed_hex, card_order, committed_at, revealed_at
		FROM deck_commitments WHERE hand_id = $1`, handID).
		Scan(&c.HandID, &c.TableID, &c.Hash, &seedHex, &cardOrder, &c.CommittedAt, &revealedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get deck commitment %s: %w", handID, err)
	}
	c.SeedHex = seedHex.String
	c.CardOrder = []string(cardOrder)
	if revealedAt.Valid {
		t := revealedAt.Time
		c.RevealedAt = &t
	}
	return &c, nil
}

func (s *PostgresStore) ListActions(ctx context.Context, handID string) ([]models.ActionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hand_id, table_id, player_id, seat_number, phase, action, amount, resulting_pot, sequence, created_at
		FROM hand_actions WHERE hand_id = $1 ORDER BY sequence`, handID)
	if err != nil {
		return nil, fmt.Errorf("list actions for hand %s: %w", handID, err)
	}
	defer rows.Close()

	var records []models.ActionRecord
	for rows.Next() {
		var r models.ActionRecord
		if err := rows.Scan(&r.ID, &r.HandID, &r.TableID, &r.PlayerID, &r.SeatNumber,
			&r.Phase, &r.Action, &r.Amount, &r.ResultingPot, &r.Sequence, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan action row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// UpsertSeat records the occupant of a seat, or clears it when player is nil.
func (s *PostgresStore) UpsertSeat(ctx context.Context, tableID string, seatNumber int, player *models.Player) error {
	var playerID, playerName sql.NullString
	var chips sql.NullInt64
	if player != nil {
		playerID = sql.NullString{String: player.PlayerID, Valid: true}
		playerName = sql.NullString{String: player.PlayerName, Valid: true}
		chips = sql.NullInt64{Int64: int64(player.Chips), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO table_seats (table_id, seat_number, player_id, player_name, chips, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (table_id, seat_number)
		DO UPDATE SET player_id = $3, player_name = $4, chips = $5, updated_at = $6`,
		tableID, seatNumber, playerID, playerName, chips, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert seat %d on table %s: %w", seatNumber, tableID, err)
	}
	return nil
}

func (s *PostgresStore) UpsertTable(ctx context.Context, snapshot models.Table) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal table %s: %w", snapshot.TableID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tables (table_id, snapshot, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (table_id) DO UPDATE SET snapshot = $2, updated_at = $3`,
		snapshot.TableID, payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert table %s: %w", snapshot.TableID, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
