package models

import (
	"fmt"
	"time"
)

// Session is a booked play session for a team. Date and hours are stored
// structured; the DD/MM/YYYY and "18h - 20h" forms are produced for display
// only. Sessions never expire on their own: listings filter out past ones,
// deletion is explicit.
type Session struct {
	ID        int64     `db:"id"`
	GuildID   string    `db:"guild_id"`
	Team      string    `db:"team"`
	Date      time.Time `db:"session_date"`
	StartHour int       `db:"start_hour"`
	EndHour   int       `db:"end_hour"`
	Duration  int       `db:"duration"`
}

// StartTime anchors the session on its calendar date at the start hour,
// in server-local time.
func (s *Session) StartTime() time.Time {
	return time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(), s.StartHour, 0, 0, 0, time.Local)
}

// DateString renders the date as DD/MM/YYYY.
func (s *Session) DateString() string {
	return s.Date.Format("02/01/2006")
}

// TimeRange renders the booked window, e.g. "18h - 20h".
func (s *Session) TimeRange() string {
	return fmt.Sprintf("%dh - %dh", s.StartHour, s.EndHour)
}
