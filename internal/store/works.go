package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/domain"
)

var insertWorkQuery = fmt.Sprintf(
	"INSERT INTO %s (%s) VALUES (:%s)",
	worksTable,
	strings.Join(workColumns, ", "),
	strings.Join(workColumns, ", :"),
)

// Rebuild drops the unclaimed works table and recreates it with its index.
func (db *DB) Rebuild(ctx context.Context) error {
	return db.runInTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, dropWorksTable); err != nil {
			return fmt.Errorf("drop works table: %w", err)
		}
		if _, err := tx.ExecContext(ctx, Schema); err != nil {
			return fmt.Errorf("create works table: %w", err)
		}
		return nil
	})
}

// InsertWorks writes a batch of works in a single transaction. IDs are
// assigned by the database in slice order.
func (db *DB) InsertWorks(ctx context.Context, works []domain.UnclaimedWork) error {
	if len(works) == 0 {
		return nil
	}

	return db.runInTx(ctx, func(tx *sqlx.Tx) error {
		stmt, err := tx.PrepareNamedContext(ctx, insertWorkQuery)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close() //nolint:errcheck // deferred cleanup

		for i := range works {
			if _, err := stmt.ExecContext(ctx, &works[i]); err != nil {
				return fmt.Errorf("insert work %d of batch: %w", i+1, err)
			}
		}
		return nil
	})
}

// FirstWorkByISRC returns the earliest inserted work with exactly this ISRC.
func (db *DB) FirstWorkByISRC(ctx context.Context, isrc string) (*domain.UnclaimedWork, error) {
	query := `SELECT * FROM ` + worksTable + ` WHERE isrc = ? ORDER BY id LIMIT 1`

	var w domain.UnclaimedWork
	err := db.GetContext(ctx, &w, query, isrc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup isrc %s: %w", isrc, err)
	}
	return &w, nil
}

// WorksByISRC returns up to limit works with this ISRC in insertion order.
// A limit of zero or less returns all of them.
func (db *DB) WorksByISRC(ctx context.Context, isrc string, limit int) ([]domain.UnclaimedWork, error) {
	query := `SELECT * FROM ` + worksTable + ` WHERE isrc = ? ORDER BY id`
	args := []interface{}{isrc}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	works := []domain.UnclaimedWork{}
	if err := db.SelectContext(ctx, &works, query, args...); err != nil {
		return nil, fmt.Errorf("list isrc %s: %w", isrc, err)
	}
	return works, nil
}

// CountWorks returns the number of rows in the unclaimed works table.
func (db *DB) CountWorks(ctx context.Context) (int64, error) {
	var n int64
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM ` + worksTable); err != nil {
		return 0, fmt.Errorf("count works: %w", err)
	}
	return n, nil
}

// ListWorks returns works ordered by id, starting after afterID.
func (db *DB) ListWorks(ctx context.Context, afterID int64, limit int) ([]domain.UnclaimedWork, error) {
	works := []domain.UnclaimedWork{}
	err := db.SelectContext(ctx, &works,
		`SELECT * FROM ` + worksTable + ` WHERE id > ? ORDER BY id LIMIT ?`, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list works: %w", err)
	}
	return works, nil
}
