package db

import (
	"context"

	"scrimbot/internal/db/models"
)

// CreateSession persists a booked session and fills in its generated ID.
// A single insert, so a storage failure leaves no partial state.
func (db *DB) CreateSession(ctx context.Context, s *models.Session) error {
	query := `
		INSERT INTO sessions (guild_id, team, session_date, start_hour, end_hour, duration)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	return db.Pool.QueryRow(ctx, query,
		s.GuildID,
		NormalizeTeam(s.Team),
		s.Date,
		s.StartHour,
		s.EndHour,
		s.Duration,
	).Scan(&s.ID)
}

// GetSessionsByTeam retrieves every session booked for a team on a guild,
// oldest first. Callers filter out past sessions against "now".
func (db *DB) GetSessionsByTeam(ctx context.Context, guildID, team string) ([]*models.Session, error) {
	query := `
		SELECT id, guild_id, team, session_date, start_hour, end_hour, duration
		FROM sessions
		WHERE guild_id = $1 AND LOWER(team) = $2
		ORDER BY session_date, start_hour`

	rows, err := db.Pool.Query(ctx, query, guildID, NormalizeTeam(team))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		s := &models.Session{}
		if err := rows.Scan(&s.ID, &s.GuildID, &s.Team, &s.Date, &s.StartHour, &s.EndHour, &s.Duration); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// DeleteSession removes a session by ID, scoped to the guild it was booked
// on. Returns whether a row was deleted.
func (db *DB) DeleteSession(ctx context.Context, guildID string, id int64) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM sessions WHERE id = $1 AND guild_id = $2`,
		id, guildID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
