package sqlstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"giveaway-engine/internal/features/giveaway/models"
	"giveaway-engine/internal/features/giveaway/repository"
)

//go:embed schema.sql
var schema string

const giveawayColumns = `id, guild_id, channel_id, message_id, name, description, color,
	max_entries, winners_count, ends_at, ended, reopened`

type sqlRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewRepository(db *sql.DB, dialect Dialect) repository.Store {
	return &sqlRepository{db: db, dialect: dialect}
}

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

func (r *sqlRepository) q(query string) string {
	return r.dialect.rebind(query)
}

func (r *sqlRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *sqlRepository) CreateGiveaway(ctx context.Context, g *models.Giveaway) error {
	query := r.q(`
		INSERT INTO giveaways (` + giveawayColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, FALSE, FALSE)
	`)
	_, err := r.db.ExecContext(ctx, query,
		g.ID, g.GuildID, g.ChannelID, g.MessageID, g.Name, g.Description, g.Color,
		nullableInt(g.MaxEntries), g.WinnersCount, g.EndsAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to create giveaway: %w", err)
	}
	return nil
}

func (r *sqlRepository) GetGiveaway(ctx context.Context, id string) (*models.Giveaway, error) {
	row := r.db.QueryRowContext(ctx, r.q(`SELECT `+giveawayColumns+` FROM giveaways WHERE id = ?`), id)
	g, err := scanGiveaway(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrGiveawayNotFound
		}
		return nil, fmt.Errorf("failed to get giveaway: %w", err)
	}
	return g, nil
}

func (r *sqlRepository) ListGiveaways(ctx context.Context, filter models.ListFilter) ([]*models.Giveaway, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.ActiveOnly {
		conds = append(conds, "ended = FALSE")
	}
	if filter.GuildID != nil {
		conds = append(conds, "guild_id = ?")
		args = append(args, *filter.GuildID)
	}

	query := `SELECT ` + giveawayColumns + ` FROM giveaways`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY ends_at, id"

	rows, err := r.db.QueryContext(ctx, r.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list giveaways: %w", err)
	}
	defer rows.Close()

	var out []*models.Giveaway
	for rows.Next() {
		g, err := scanGiveaway(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan giveaway: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate giveaways: %w", err)
	}
	return out, nil
}

func (r *sqlRepository) UpdateGiveaway(ctx context.Context, g *models.Giveaway, now time.Time) (bool, error) {
	// ends_at in WHERE is the stored deadline, not the new one
	query := r.q(`
		UPDATE giveaways
		SET name = ?, description = ?, color = ?, max_entries = ?, winners_count = ?, ends_at = ?
		WHERE id = ? AND ended = FALSE AND reopened = FALSE AND ends_at > ?
	`)
	res, err := r.db.ExecContext(ctx, query,
		g.Name, g.Description, g.Color, nullableInt(g.MaxEntries), g.WinnersCount,
		g.EndsAt.UnixMilli(), g.ID, now.UnixMilli())
	if err != nil {
		return false, fmt.Errorf("failed to update giveaway: %w", err)
	}
	return affected(res)
}

func (r *sqlRepository) DeleteGiveaway(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// sqlite only honours ON DELETE CASCADE with the foreign_keys pragma
	if _, err := tx.ExecContext(ctx, r.q(`DELETE FROM giveaway_entries WHERE giveaway_id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete participants: %w", err)
	}
	if _, err := tx.ExecContext(ctx, r.q(`DELETE FROM giveaways WHERE id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete giveaway: %w", err)
	}
	return tx.Commit()
}

func (r *sqlRepository) MarkEnded(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.q(`UPDATE giveaways SET ended = TRUE, reopened = FALSE WHERE id = ? AND ended = FALSE`), id)
	if err != nil {
		return false, fmt.Errorf("failed to mark giveaway ended: %w", err)
	}
	return affected(res)
}

func (r *sqlRepository) Reopen(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.q(`UPDATE giveaways SET ended = FALSE, reopened = TRUE WHERE id = ? AND ended = TRUE`), id)
	if err != nil {
		return false, fmt.Errorf("failed to reopen giveaway: %w", err)
	}
	return affected(res)
}

func (r *sqlRepository) InsertParticipant(ctx context.Context, giveawayID string, userID int64, now time.Time) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		maxEntries sql.NullInt64
		endsAt     int64
		ended      bool
		reopened   bool
	)
	err = tx.QueryRowContext(ctx,
		r.q(`SELECT max_entries, ends_at, ended, reopened FROM giveaways WHERE id = ?`+r.dialect.lockRow()),
		giveawayID,
	).Scan(&maxEntries, &endsAt, &ended, &reopened)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, repository.ErrGiveawayNotFound
		}
		return 0, fmt.Errorf("failed to lock giveaway: %w", err)
	}
	if ended || reopened || endsAt <= now.UnixMilli() {
		return 0, repository.ErrGiveawayClosed
	}

	var exists bool
	err = tx.QueryRowContext(ctx,
		r.q(`SELECT EXISTS (SELECT 1 FROM giveaway_entries WHERE giveaway_id = ? AND user_id = ?)`),
		giveawayID, userID,
	).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("failed to check participant: %w", err)
	}
	if exists {
		return 0, repository.ErrAlreadyJoined
	}

	var count int
	if err := tx.QueryRowContext(ctx,
		r.q(`SELECT COUNT(*) FROM giveaway_entries WHERE giveaway_id = ?`), giveawayID,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	if maxEntries.Valid && int64(count) >= maxEntries.Int64 {
		return 0, repository.ErrCapacityReached
	}

	res, err := tx.ExecContext(ctx, r.q(`
		INSERT INTO giveaway_entries (giveaway_id, user_id, winner, created_at)
		VALUES (?, ?, FALSE, ?)
		ON CONFLICT (giveaway_id, user_id) DO NOTHING
	`), giveawayID, userID, now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to insert participant: %w", err)
	}
	inserted, err := affected(res)
	if err != nil {
		return 0, err
	}
	if !inserted {
		return 0, repository.ErrAlreadyJoined
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit participant: %w", err)
	}
	return count + 1, nil
}

func (r *sqlRepository) IsParticipant(ctx context.Context, giveawayID string, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		r.q(`SELECT EXISTS (SELECT 1 FROM giveaway_entries WHERE giveaway_id = ? AND user_id = ?)`),
		giveawayID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check participant: %w", err)
	}
	return exists, nil
}

func (r *sqlRepository) CountParticipants(ctx context.Context, giveawayID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		r.q(`SELECT COUNT(*) FROM giveaway_entries WHERE giveaway_id = ?`), giveawayID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return count, nil
}

func (r *sqlRepository) ListParticipants(ctx context.Context, giveawayID string) ([]models.Participant, error) {
	rows, err := r.db.QueryContext(ctx, r.q(`
		SELECT giveaway_id, user_id, winner, created_at
		FROM giveaway_entries
		WHERE giveaway_id = ?
		ORDER BY created_at, user_id
	`), giveawayID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var out []models.Participant
	for rows.Next() {
		var (
			p         models.Participant
			createdAt int64
		)
		if err := rows.Scan(&p.GiveawayID, &p.UserID, &p.Winner, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		p.CreatedAt = time.UnixMilli(createdAt).UTC()
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return out, nil
}

func (r *sqlRepository) SetWinners(ctx context.Context, giveawayID string, winnerIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		r.q(`UPDATE giveaway_entries SET winner = FALSE WHERE giveaway_id = ?`), giveawayID,
	); err != nil {
		return fmt.Errorf("failed to reset winners: %w", err)
	}

	if len(winnerIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(winnerIDs)), ", ")
		args := make([]interface{}, 0, len(winnerIDs)+1)
		args = append(args, giveawayID)
		for _, id := range winnerIDs {
			args = append(args, id)
		}
		query := r.q(`UPDATE giveaway_entries SET winner = TRUE WHERE giveaway_id = ? AND user_id IN (` + placeholders + `)`)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to set winners: %w", err)
		}
	}

	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGiveaway(row rowScanner) (*models.Giveaway, error) {
	var (
		g          models.Giveaway
		maxEntries sql.NullInt64
		endsAt     int64
	)
	err := row.Scan(&g.ID, &g.GuildID, &g.ChannelID, &g.MessageID, &g.Name, &g.Description,
		&g.Color, &maxEntries, &g.WinnersCount, &endsAt, &g.Ended, &g.Reopened)
	if err != nil {
		return nil, err
	}
	if maxEntries.Valid {
		v := int(maxEntries.Int64)
		g.MaxEntries = &v
	}
	g.EndsAt = time.UnixMilli(endsAt).UTC()
	return &g, nil
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}
