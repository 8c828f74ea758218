package models

// Availability is one declared window of free hours on a weekday.
//
// The week is rolling: a row with Day d always describes the next upcoming
// occurrence of weekday d, and the daily purge job deletes a day's rows
// once that weekday has elapsed. Availability is global to the person, not
// scoped to any guild or team.
//
// The store keeps at most one row per (person, day); declaring a new window
// replaces the previous one.
type Availability struct {
	DiscordID string `db:"discord_id"`
	Day       int    `db:"day"` // 0=Monday .. 6=Sunday
	StartHour int    `db:"start_hour"`
	EndHour   int    `db:"end_hour"`
}
