package bot

import (
	"context"
	"testing"
	"time"

	"scrimbot/internal/config"
	"scrimbot/internal/db"
	"scrimbot/internal/db/models"
	"scrimbot/internal/schedule"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBookingBot(t *testing.T) (*Bot, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	database := &db.DB{Pool: mock}
	cfg := &config.Config{}
	cfg.Scheduler.DefaultSessionHours = 2
	return &Bot{config: cfg, db: database, planner: schedule.NewPlanner(database)}, mock
}

func sessionOn(date time.Time, start, end int) *models.Session {
	return &models.Session{Date: date, StartHour: start, EndHour: end, Duration: end - start}
}

func TestUpcomingSessions_DropsPastKeepsOrder(t *testing.T) {
	now := time.Date(2026, 8, 31, 15, 0, 0, 0, time.Local)
	yesterday := time.Date(2026, 8, 30, 0, 0, 0, 0, time.Local)
	today := time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local)
	friday := time.Date(2026, 9, 4, 0, 0, 0, 0, time.Local)

	sessions := []*models.Session{
		sessionOn(yesterday, 18, 20), // already over
		sessionOn(today, 10, 12),     // started this morning
		sessionOn(today, 15, 17),     // starting right now counts
		sessionOn(today, 20, 22),
		sessionOn(friday, 18, 20),
	}

	upcoming := upcomingSessions(sessions, now)

	require.Len(t, upcoming, 3)
	assert.Equal(t, 15, upcoming[0].StartHour)
	assert.Equal(t, 20, upcoming[1].StartHour)
	assert.Equal(t, friday, upcoming[2].Date)
	for i := 1; i < len(upcoming); i++ {
		assert.False(t, upcoming[i].StartTime().Before(upcoming[i-1].StartTime()))
	}
}

func TestUpcomingSessions_AllPast(t *testing.T) {
	now := time.Date(2026, 8, 31, 15, 0, 0, 0, time.Local)
	past := time.Date(2026, 8, 24, 0, 0, 0, 0, time.Local)

	assert.Empty(t, upcomingSessions([]*models.Session{sessionOn(past, 18, 20)}, now))
}

func TestBookSession_IncompatibleSlotStillPersists(t *testing.T) {
	bot, mock := setupBookingBot(t)

	// Monday 2026-08-31; booking Thursday (day 3) resolves to 2026-09-03.
	now := time.Date(2026, 8, 31, 15, 0, 0, 0, time.Local)
	date := time.Date(2026, 9, 3, 0, 0, 0, 0, time.Local)

	mock.ExpectQuery(`SELECT .+ FROM players`).
		WithArgs("guild-1", "alpha").
		WillReturnRows(pgxmock.NewRows([]string{"discord_id", "guild_id", "username", "game", "team"}).
			AddRow("1", "guild-1", "one", "valorant", "alpha"))
	mock.ExpectQuery(`SELECT .+ FROM availability`).
		WithArgs([]string{"1"}).
		WillReturnRows(pgxmock.NewRows([]string{"discord_id", "day", "start_hour", "end_hour"}).
			AddRow("1", 3, 9, 17))
	mock.ExpectQuery(`INSERT INTO sessions`).
		WithArgs("guild-1", "alpha", date, 16, 19, 3).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(11)))

	// (16,19) only partially overlaps the common (9,17)
	session, compatible, err := bot.bookSession(context.Background(), "guild-1", "alpha", 3, 16, 19, now)

	require.NoError(t, err)
	assert.False(t, compatible)
	assert.Equal(t, int64(11), session.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookSession_CompatibleSlot(t *testing.T) {
	bot, mock := setupBookingBot(t)

	now := time.Date(2026, 8, 31, 15, 0, 0, 0, time.Local)
	date := time.Date(2026, 9, 3, 0, 0, 0, 0, time.Local)

	mock.ExpectQuery(`SELECT .+ FROM players`).
		WithArgs("guild-1", "alpha").
		WillReturnRows(pgxmock.NewRows([]string{"discord_id", "guild_id", "username", "game", "team"}).
			AddRow("1", "guild-1", "one", "valorant", "alpha"))
	mock.ExpectQuery(`SELECT .+ FROM availability`).
		WithArgs([]string{"1"}).
		WillReturnRows(pgxmock.NewRows([]string{"discord_id", "day", "start_hour", "end_hour"}).
			AddRow("1", 3, 9, 17))
	mock.ExpectQuery(`INSERT INTO sessions`).
		WithArgs("guild-1", "alpha", date, 10, 12, 2).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(12)))

	session, compatible, err := bot.bookSession(context.Background(), "guild-1", "alpha", 3, 10, 12, now)

	require.NoError(t, err)
	assert.True(t, compatible)
	assert.Equal(t, "03/09/2026", session.DateString())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookSession_UnknownTeamRejectedBeforeInsert(t *testing.T) {
	bot, mock := setupBookingBot(t)

	now := time.Date(2026, 8, 31, 15, 0, 0, 0, time.Local)
	mock.ExpectQuery(`SELECT .+ FROM players`).
		WithArgs("guild-1", "ghosts").
		WillReturnRows(pgxmock.NewRows([]string{"discord_id", "guild_id", "username", "game", "team"}))

	session, _, err := bot.bookSession(context.Background(), "guild-1", "Ghosts", 3, 18, 20, now)

	assert.ErrorIs(t, err, errUnknownTeam)
	assert.Nil(t, session)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionBookedEmbed_WarningAnnotation(t *testing.T) {
	s := sessionOn(time.Date(2026, 9, 3, 0, 0, 0, 0, time.Local), 16, 19)

	ok := sessionBookedEmbed("alpha", 3, s, true)
	assert.Equal(t, colorGreen, ok.Color)
	assert.NotContains(t, ok.Description, "Warning")

	warned := sessionBookedEmbed("alpha", 3, s, false)
	assert.Equal(t, colorOrange, warned.Color)
	assert.Contains(t, warned.Description, "Warning")
	assert.Contains(t, warned.Description, "Thursday 16h - 19h")
}
