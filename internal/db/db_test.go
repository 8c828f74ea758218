package db

import (
	"context"
	"testing"
	"time"

	"scrimbot/internal/db/models"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return &DB{Pool: mock}, mock
}

func TestNormalizeTeam(t *testing.T) {
	assert.Equal(t, "phoenix five", NormalizeTeam("  Phoenix Five "))
}

func TestSetAvailability_ReplacesPreviousWindow(t *testing.T) {
	db, mock := setupDB(t)

	mock.ExpectExec(`DELETE FROM availability`).
		WithArgs("42", 0).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`INSERT INTO availability`).
		WithArgs("42", 0, 18, 22).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := db.SetAvailability(context.Background(), &models.Availability{
		DiscordID: "42", Day: 0, StartHour: 18, EndHour: 22,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetAvailability_InsertFailureSurfaces(t *testing.T) {
	db, mock := setupDB(t)

	mock.ExpectExec(`DELETE FROM availability`).
		WithArgs("42", 3).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`INSERT INTO availability`).
		WithArgs("42", 3, 9, 11).
		WillReturnError(assert.AnError)

	err := db.SetAvailability(context.Background(), &models.Availability{
		DiscordID: "42", Day: 3, StartHour: 9, EndHour: 11,
	})

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurgeAvailabilityForDay(t *testing.T) {
	db, mock := setupDB(t)

	mock.ExpectExec(`DELETE FROM availability WHERE day`).
		WithArgs(6).
		WillReturnResult(pgxmock.NewResult("DELETE", 5))

	n, err := db.PurgeAvailabilityForDay(context.Background(), 6)

	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemovePlayer_KeepsAvailabilityWhileOtherMembershipsExist(t *testing.T) {
	db, mock := setupDB(t)

	mock.ExpectExec(`DELETE FROM players`).
		WithArgs("42", "guild-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM players`).
		WithArgs("42").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))

	removed, err := db.RemovePlayer(context.Background(), "42", "guild-1")

	require.NoError(t, err)
	assert.True(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemovePlayer_LastMembershipCleansAvailability(t *testing.T) {
	db, mock := setupDB(t)

	mock.ExpectExec(`DELETE FROM players`).
		WithArgs("42", "guild-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM players`).
		WithArgs("42").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`DELETE FROM availability`).
		WithArgs("42").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	removed, err := db.RemovePlayer(context.Background(), "42", "guild-1")

	require.NoError(t, err)
	assert.True(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemovePlayer_NotRegistered(t *testing.T) {
	db, mock := setupDB(t)

	mock.ExpectExec(`DELETE FROM players`).
		WithArgs("99", "guild-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM players`).
		WithArgs("99").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	// Cleanup is still attempted even though no membership row existed.
	mock.ExpectExec(`DELETE FROM availability`).
		WithArgs("99").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	removed, err := db.RemovePlayer(context.Background(), "99", "guild-1")

	require.NoError(t, err)
	assert.False(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSession_FillsGeneratedID(t *testing.T) {
	db, mock := setupDB(t)

	date := time.Date(2026, 9, 3, 0, 0, 0, 0, time.Local)
	mock.ExpectQuery(`INSERT INTO sessions`).
		WithArgs("guild-1", "alpha", date, 18, 20, 2).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	s := &models.Session{
		GuildID:   "guild-1",
		Team:      "Alpha",
		Date:      date,
		StartHour: 18,
		EndHour:   20,
		Duration:  2,
	}
	err := db.CreateSession(context.Background(), s)

	require.NoError(t, err)
	assert.Equal(t, int64(7), s.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSessionsByTeam_OrderedRows(t *testing.T) {
	db, mock := setupDB(t)

	early := time.Date(2026, 9, 1, 0, 0, 0, 0, time.Local)
	late := time.Date(2026, 9, 4, 0, 0, 0, 0, time.Local)
	rows := pgxmock.NewRows([]string{"id", "guild_id", "team", "session_date", "start_hour", "end_hour", "duration"}).
		AddRow(int64(1), "guild-1", "alpha", early, 18, 20, 2).
		AddRow(int64(2), "guild-1", "alpha", late, 10, 12, 2)
	mock.ExpectQuery(`SELECT .+ FROM sessions`).
		WithArgs("guild-1", "alpha").
		WillReturnRows(rows)

	sessions, err := db.GetSessionsByTeam(context.Background(), "guild-1", " Alpha ")

	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.True(t, sessions[0].StartTime().Before(sessions[1].StartTime()))
	assert.Equal(t, "01/09/2026", sessions[0].DateString())
	assert.Equal(t, "18h - 20h", sessions[0].TimeRange())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSession(t *testing.T) {
	db, mock := setupDB(t)

	mock.ExpectExec(`DELETE FROM sessions`).
		WithArgs(int64(7), "guild-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	deleted, err := db.DeleteSession(context.Background(), "guild-1", 7)

	require.NoError(t, err)
	assert.True(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlayersWithoutAvailability(t *testing.T) {
	db, mock := setupDB(t)

	rows := pgxmock.NewRows([]string{"discord_id", "guild_id", "username", "game", "team"}).
		AddRow("7", "guild-1", "slacker", "valorant", "Alpha").
		AddRow("9", "guild-2", "ghost", "league", "Bravo")
	mock.ExpectQuery(`SELECT DISTINCT ON \(p.discord_id\)`).
		WillReturnRows(rows)

	players, err := db.PlayersWithoutAvailability(context.Background())

	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, "slacker", players[0].Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrCreateGuildConfig_CreatesOnFirstContact(t *testing.T) {
	db, mock := setupDB(t)

	mock.ExpectQuery(`SELECT .+ FROM guild_configs`).
		WithArgs("guild-1").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(`INSERT INTO guild_configs`).
		WithArgs("guild-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	cfg, err := db.GetOrCreateGuildConfig(context.Background(), "guild-1")

	require.NoError(t, err)
	assert.Equal(t, "guild-1", cfg.GuildID)
	assert.Empty(t, cfg.PlanningChannel())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetGuildChannel_GlobalResetsAllThree(t *testing.T) {
	db, mock := setupDB(t)

	existing := pgxmock.NewRows([]string{
		"guild_id", "default_channel_id", "planning_channel_id",
		"reminder_channel_id", "admin_role_id", "report_channel_id",
	}).AddRow("guild-1", "", "", "", "", "")
	mock.ExpectQuery(`SELECT .+ FROM guild_configs`).
		WithArgs("guild-1").
		WillReturnRows(existing)
	mock.ExpectExec(`UPDATE guild_configs`).
		WithArgs("chan-9", "guild-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := db.SetGuildChannel(context.Background(), "guild-1", "global", "chan-9")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetGuildChannel_UnknownKind(t *testing.T) {
	db, mock := setupDB(t)

	existing := pgxmock.NewRows([]string{
		"guild_id", "default_channel_id", "planning_channel_id",
		"reminder_channel_id", "admin_role_id", "report_channel_id",
	}).AddRow("guild-1", "", "", "", "", "")
	mock.ExpectQuery(`SELECT .+ FROM guild_configs`).
		WithArgs("guild-1").
		WillReturnRows(existing)

	err := db.SetGuildChannel(context.Background(), "guild-1", "bogus", "chan-9")

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
