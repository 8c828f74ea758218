package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"scrimbot/internal/config"
	"scrimbot/internal/db/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is the subset of pgxpool.Pool the store uses. Tests swap in a
// pgxmock pool.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

type DB struct {
	Pool Pool
}

func New(cfg config.DatabaseConfig) (*DB, error) {
	// Create a configuration object
	poolCfg, err := pgxpool.ParseConfig(fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName, cfg.SSLMode,
	))
	if err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	// Configure connection pool and statement cache
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("error creating connection pool: %w", err)
	}

	return &DB{Pool: pool}, nil
}

func (db *DB) Close() {
	db.Pool.Close()
}

// NormalizeTeam folds a team name for lookups and comparisons. Team names
// are matched case-insensitively and trimmed everywhere; the cased form is
// kept for display only.
func NormalizeTeam(team string) string {
	return strings.ToLower(strings.TrimSpace(team))
}

// UpsertPlayer adds a player to a team, or moves them if they are already
// registered on this guild.
func (db *DB) UpsertPlayer(ctx context.Context, p *models.Player) error {
	query := `
		INSERT INTO players (discord_id, guild_id, username, game, team)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (discord_id, guild_id)
		DO UPDATE SET username = $3, game = $4, team = $5`

	_, err := db.Pool.Exec(ctx, query,
		p.DiscordID,
		p.GuildID,
		p.Username,
		p.Game,
		strings.TrimSpace(p.Team),
	)
	return err
}

// GetPlayer retrieves a player's membership on a guild, or nil if they are
// not registered there.
func (db *DB) GetPlayer(ctx context.Context, discordID, guildID string) (*models.Player, error) {
	query := `
		SELECT discord_id, guild_id, username, game, team
		FROM players
		WHERE discord_id = $1 AND guild_id = $2`

	p := &models.Player{}
	err := db.Pool.QueryRow(ctx, query, discordID, guildID).Scan(
		&p.DiscordID,
		&p.GuildID,
		&p.Username,
		&p.Game,
		&p.Team,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// RemovePlayer deletes a player's membership on a guild. Availability is
// global per person, so it is left alone while the person still belongs to
// a team anywhere; once the last membership is gone their availability rows
// are cleaned up best-effort. Returns whether a membership row was removed.
func (db *DB) RemovePlayer(ctx context.Context, discordID, guildID string) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM players WHERE discord_id = $1 AND guild_id = $2`,
		discordID, guildID)
	if err != nil {
		return false, fmt.Errorf("error removing player: %w", err)
	}
	removed := tag.RowsAffected() > 0

	var remaining int
	if err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM players WHERE discord_id = $1`,
		discordID).Scan(&remaining); err != nil {
		// Best-effort cleanup only; the removal itself already succeeded.
		return removed, nil
	}
	if remaining == 0 {
		_, _ = db.Pool.Exec(ctx,
			`DELETE FROM availability WHERE discord_id = $1`, discordID)
	}
	return removed, nil
}

// GetTeamMembers retrieves every member of a team on a guild. The team name
// is matched case-insensitively.
func (db *DB) GetTeamMembers(ctx context.Context, guildID, team string) ([]*models.Player, error) {
	query := `
		SELECT discord_id, guild_id, username, game, team
		FROM players
		WHERE guild_id = $1 AND LOWER(team) = $2
		ORDER BY username`

	rows, err := db.Pool.Query(ctx, query, guildID, NormalizeTeam(team))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		p := &models.Player{}
		if err := rows.Scan(&p.DiscordID, &p.GuildID, &p.Username, &p.Game, &p.Team); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// GetGuildPlayers retrieves all players on a guild, grouped for roster
// display.
func (db *DB) GetGuildPlayers(ctx context.Context, guildID string) ([]*models.Player, error) {
	query := `
		SELECT discord_id, guild_id, username, game, team
		FROM players
		WHERE guild_id = $1
		ORDER BY game, team, username`

	rows, err := db.Pool.Query(ctx, query, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		p := &models.Player{}
		if err := rows.Scan(&p.DiscordID, &p.GuildID, &p.Username, &p.Game, &p.Team); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// ListTeams retrieves the distinct team names registered on a guild.
func (db *DB) ListTeams(ctx context.Context, guildID string) ([]string, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT DISTINCT team FROM players WHERE guild_id = $1 ORDER BY team`,
		guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []string
	for rows.Next() {
		var team string
		if err := rows.Scan(&team); err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

// SetAvailability declares a player's window for a weekday, replacing any
// previous window for that day. Delete-then-insert keeps the one-row-per-
// (person, day) invariant without a uniqueness constraint; the two
// statements are not wrapped in a transaction, matching the
// commit-per-statement model the rest of the store uses.
func (db *DB) SetAvailability(ctx context.Context, a *models.Availability) error {
	_, err := db.Pool.Exec(ctx,
		`DELETE FROM availability WHERE discord_id = $1 AND day = $2`,
		a.DiscordID, a.Day)
	if err != nil {
		return fmt.Errorf("error clearing previous window: %w", err)
	}

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO availability (discord_id, day, start_hour, end_hour)
		VALUES ($1, $2, $3, $4)`,
		a.DiscordID, a.Day, a.StartHour, a.EndHour)
	if err != nil {
		return fmt.Errorf("error saving window: %w", err)
	}
	return nil
}

// GetAvailabilityForPlayers fetches every declared window of the given
// players in one query, for the aggregator to fold per day.
func (db *DB) GetAvailabilityForPlayers(ctx context.Context, discordIDs []string) ([]*models.Availability, error) {
	query := `
		SELECT discord_id, day, start_hour, end_hour
		FROM availability
		WHERE discord_id = ANY($1)
		ORDER BY day, start_hour`

	rows, err := db.Pool.Query(ctx, query, discordIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []*models.Availability
	for rows.Next() {
		a := &models.Availability{}
		if err := rows.Scan(&a.DiscordID, &a.Day, &a.StartHour, &a.EndHour); err != nil {
			return nil, err
		}
		slots = append(slots, a)
	}
	return slots, rows.Err()
}

// GetPlayerAvailability fetches one player's declared windows.
func (db *DB) GetPlayerAvailability(ctx context.Context, discordID string) ([]*models.Availability, error) {
	query := `
		SELECT discord_id, day, start_hour, end_hour
		FROM availability
		WHERE discord_id = $1
		ORDER BY day, start_hour`

	rows, err := db.Pool.Query(ctx, query, discordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []*models.Availability
	for rows.Next() {
		a := &models.Availability{}
		if err := rows.Scan(&a.DiscordID, &a.Day, &a.StartHour, &a.EndHour); err != nil {
			return nil, err
		}
		slots = append(slots, a)
	}
	return slots, rows.Err()
}

// PurgeAvailabilityForDay deletes every availability row for one day index.
// The daily job calls this with yesterday's index once that weekday has
// elapsed, which is what makes the week roll. Returns the number of rows
// deleted.
func (db *DB) PurgeAvailabilityForDay(ctx context.Context, day int) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM availability WHERE day = $1`, day)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// PlayersWithoutAvailability retrieves every distinct registered person with
// no availability rows at all, regardless of how many guilds they belong
// to. A person with even a single declared day is excluded.
func (db *DB) PlayersWithoutAvailability(ctx context.Context) ([]*models.Player, error) {
	query := `
		SELECT DISTINCT ON (p.discord_id) p.discord_id, p.guild_id, p.username, p.game, p.team
		FROM players p
		WHERE NOT EXISTS (
			SELECT 1 FROM availability a WHERE a.discord_id = p.discord_id
		)
		ORDER BY p.discord_id`

	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		p := &models.Player{}
		if err := rows.Scan(&p.DiscordID, &p.GuildID, &p.Username, &p.Game, &p.Team); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}
