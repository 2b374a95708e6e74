// internal/database/archive.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mhollis/bridge/internal/history"
)

// ArchiveActions persists a batch of action records in one transaction.
// Records that carry a room code also upsert the room row, so the archive
// has a row per room even when the server itself never touched the DB.
func ArchiveActions(ctx context.Context, records []history.ActionRecord) error {
	return beginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range records {
			if err := insertActionTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("insertActionTx: %w", err)
			}
		}
		return nil
	})
}

// MarkRoomAbandoned flags a room as abandoned in the archive if it was still
// recorded as active.
func MarkRoomAbandoned(ctx context.Context, roomCode string) error {
	return beginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			UPDATE rooms
			SET status = 'abandoned', last_seen = NOW()
			WHERE code = $1 AND status = 'active'
		`
		_, err := tx.Exec(ctx, q, roomCode)
		return err
	})
}

func insertActionTx(ctx context.Context, tx pgx.Tx, rec history.ActionRecord) error {
	if code := roomCodeOf(rec); code != "" {
		upsertRoomQ := `
			INSERT INTO rooms (code, status, first_seen, last_seen)
			VALUES ($1, 'active', NOW(), NOW())
			ON CONFLICT (code)
			DO UPDATE SET status = 'active', last_seen = NOW()
		`
		if _, err := tx.Exec(ctx, upsertRoomQ, code); err != nil {
			return err
		}
	}

	details, err := json.Marshal(rec.Details)
	if err != nil {
		return err
	}
	insertQ := `
		INSERT INTO room_actions (
			room_code, action, client_ip, path, details, recorded_at
		) VALUES (NULLIF($1, ''), $2, $3, $4, $5, $6)
	`
	_, err = tx.Exec(ctx, insertQ,
		roomCodeOf(rec), rec.Action, rec.IP, rec.Path, details, rec.Timestamp,
	)
	return err
}

func roomCodeOf(rec history.ActionRecord) string {
	if rec.Details == nil {
		return ""
	}
	code, _ := rec.Details["room_code"].(string)
	return code
}

// beginTxFunc runs f inside a transaction, committing on success and rolling
// back on error.
func beginTxFunc(ctx context.Context, pool *pgxpool.Pool, txOptions pgx.TxOptions, f func(tx pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}
	if err := f(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("tx rollback error: %v; original error: %w", rbErr, err)
		}
		return err
	}
	return tx.Commit(ctx)
}
