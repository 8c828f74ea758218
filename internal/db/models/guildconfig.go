package models

// GuildConfig holds per-guild bot settings. Channel and role IDs are empty
// strings until configured; a row is created lazily on the first
// configuration command (or when the bot joins the guild).
type GuildConfig struct {
	GuildID           string `db:"guild_id"`
	DefaultChannelID  string `db:"default_channel_id"`
	PlanningChannelID string `db:"planning_channel_id"`
	ReminderChannelID string `db:"reminder_channel_id"`
	AdminRoleID       string `db:"admin_role_id"`
	ReportChannelID   string `db:"report_channel_id"`
}

// PlanningChannel returns the channel the weekly schedule should be posted
// to, falling back to the default channel.
func (g *GuildConfig) PlanningChannel() string {
	if g.PlanningChannelID != "" {
		return g.PlanningChannelID
	}
	return g.DefaultChannelID
}

// ReminderChannel returns the channel a reminder falls back to when a
// player's DMs are closed, again defaulting to the default channel.
func (g *GuildConfig) ReminderChannel() string {
	if g.ReminderChannelID != "" {
		return g.ReminderChannelID
	}
	return g.DefaultChannelID
}
