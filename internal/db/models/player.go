package models

// Player is a team membership: one row per (person, guild). The same person
// can belong to different teams on different guilds, but only one team per
// guild.
type Player struct {
	DiscordID string `db:"discord_id"`
	GuildID   string `db:"guild_id"`
	Username  string `db:"username"`
	Game      string `db:"game"`
	Team      string `db:"team"`
}
