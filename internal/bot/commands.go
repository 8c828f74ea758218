package bot

import (
	"context"
	"fmt"
	"log"
	"strings"

	"scrimbot/internal/db/models"
	"scrimbot/internal/schedule"

	"github.com/bwmarrin/discordgo"
)

func dayChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 7)
	for i := 0; i < 7; i++ {
		choices[i] = &discordgo.ApplicationCommandOptionChoice{
			Name:  schedule.DayName(i),
			Value: schedule.DayName(i),
		}
	}
	return choices
}

var (
	minHour = float64(0)

	commands = []*discordgo.ApplicationCommand{
		{
			Name:                     "addplayer",
			Description:              "Register a player into a team",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "member",
					Description: "Member to register",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "game",
					Description: "Game the team plays",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "team",
					Description: "Team name",
					Required:    true,
				},
			},
		},
		{
			Name:                     "removeplayer",
			Description:              "Remove a player from the roster",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "member",
					Description: "Member to remove",
					Required:    true,
				},
			},
		},
		{
			Name:        "players",
			Description: "Show all registered players by game and team",
		},
		{
			Name:        "availability",
			Description: "Manage weekly availability",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Declare your window for a weekday (replaces any previous one)",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "day",
							Description: "Day of the week",
							Required:    true,
							Choices:     dayChoices(),
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "start",
							Description: "First free hour (0-23)",
							Required:    true,
							MinValue:    &minHour,
							MaxValue:    23,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "end",
							Description: "Hour you stop being free (0-23)",
							Required:    true,
							MinValue:    &minHour,
							MaxValue:    23,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "view",
					Description: "View a team's common slots or one player's week",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "team",
							Description: "Team name",
							Required:    false,
						},
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "member",
							Description: "Player to inspect",
							Required:    false,
						},
					},
				},
			},
		},
		{
			Name:        "schedule",
			Description: "Book a session for a team on the next occurrence of a weekday",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "team",
					Description: "Team name",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "day",
					Description: "Day of the week",
					Required:    true,
					Choices:     dayChoices(),
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "start",
					Description: "Start hour (0-23)",
					Required:    true,
					MinValue:    &minHour,
					MaxValue:    23,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "end",
					Description: "End hour (defaults to start + configured duration)",
					Required:    false,
					MinValue:    &minHour,
					MaxValue:    23,
				},
			},
		},
		{
			Name:        "sessions",
			Description: "List a team's upcoming sessions",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "team",
					Description: "Team name",
					Required:    true,
				},
			},
		},
		{
			Name:                     "cancelsession",
			Description:              "Cancel a booked session by its ID",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "id",
					Description: "Session ID (shown by /sessions)",
					Required:    true,
				},
			},
		},
		{
			Name:                     "setchannel",
			Description:              "Use the current channel for bot notifications",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "type",
					Description: "Which notifications go here",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Global", Value: "global"},
						{Name: "Planning", Value: "planning"},
						{Name: "Reminders", Value: "reminders"},
						{Name: "Reports", Value: "report"},
					},
				},
			},
		},
		{
			Name:                     "setadminrole",
			Description:              "Set the role allowed to manage the bot",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "Manager role",
					Required:    true,
				},
			},
		},
		{
			Name:        "help",
			Description: "Show the command guide",
		},
		{
			Name:        "info",
			Description: "Show bot information",
		},
		{
			Name:        "report",
			Description: "Send feedback or a problem report to the server staff",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "message",
					Description: "What happened",
					Required:    true,
				},
			},
		},
	}

	// Permission for admin commands (Manage Server permission)
	adminPermission = int64(discordgo.PermissionManageServer)
)

func (b *Bot) handleAddPlayer(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.requireManager(s, i) {
		return
	}
	logCommand(s, i, "addplayer")

	options := i.ApplicationCommandData().Options
	member := options[0].UserValue(s)
	if member == nil {
		respondWithError(s, i, "Could not resolve that member")
		return
	}
	game := strings.TrimSpace(options[1].StringValue())
	team := strings.TrimSpace(options[2].StringValue())
	if game == "" || team == "" {
		respondWithError(s, i, "Game and team must not be empty")
		return
	}

	player := &models.Player{
		DiscordID: member.ID,
		GuildID:   i.GuildID,
		Username:  member.Username,
		Game:      game,
		Team:      team,
	}
	if err := b.db.UpsertPlayer(context.Background(), player); err != nil {
		logError("UpsertPlayer", err.Error())
		respondWithError(s, i, "Could not save the player, please retry")
		return
	}

	respondWithSuccess(s, i, fmt.Sprintf("Added **%s** to team **%s** (%s)",
		member.Username, titleCase(team), game))
}

func (b *Bot) handleRemovePlayer(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.requireManager(s, i) {
		return
	}
	logCommand(s, i, "removeplayer")

	member := i.ApplicationCommandData().Options[0].UserValue(s)
	if member == nil {
		respondWithError(s, i, "Could not resolve that member")
		return
	}

	removed, err := b.db.RemovePlayer(context.Background(), member.ID, i.GuildID)
	if err != nil {
		logError("RemovePlayer", err.Error())
		respondWithError(s, i, "Could not remove the player, please retry")
		return
	}
	if !removed {
		respondWithError(s, i, fmt.Sprintf("%s is not registered on this server", member.Username))
		return
	}

	respondWithSuccess(s, i, fmt.Sprintf("Removed **%s** from the roster", member.Username))
}

func (b *Bot) handlePlayers(s *discordgo.Session, i *discordgo.InteractionCreate) {
	logCommand(s, i, "players")

	players, err := b.db.GetGuildPlayers(context.Background(), i.GuildID)
	if err != nil {
		logError("GetGuildPlayers", err.Error())
		respondWithError(s, i, "Could not fetch the roster, please retry")
		return
	}
	if len(players) == 0 {
		respondWithSuccess(s, i, "No players registered yet. Use `/addplayer` to get started.")
		return
	}

	respondWithEmbed(s, i, rosterEmbed(players))
}

func (b *Bot) handleSetChannel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.requireManager(s, i) {
		return
	}
	logCommand(s, i, "setchannel")

	kind := i.ApplicationCommandData().Options[0].StringValue()
	if err := b.db.SetGuildChannel(context.Background(), i.GuildID, kind, i.ChannelID); err != nil {
		logError("SetGuildChannel", err.Error())
		respondWithError(s, i, "Could not save the channel configuration, please retry")
		return
	}

	var msg string
	switch kind {
	case "global":
		msg = fmt.Sprintf("Channel <#%s> now receives **all** notifications (default + planning + reminders)", i.ChannelID)
	case "planning":
		msg = fmt.Sprintf("Channel <#%s> now receives the **weekly planning**", i.ChannelID)
	case "reminders":
		msg = fmt.Sprintf("Channel <#%s> now receives **reminder** notices", i.ChannelID)
	case "report":
		msg = fmt.Sprintf("Channel <#%s> now receives **player reports**", i.ChannelID)
	}
	respondWithSuccess(s, i, msg)
}

func (b *Bot) handleSetAdminRole(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.requireManager(s, i) {
		return
	}
	logCommand(s, i, "setadminrole")

	role := i.ApplicationCommandData().Options[0].RoleValue(s, i.GuildID)
	if role == nil {
		respondWithError(s, i, "Could not resolve that role")
		return
	}

	if err := b.db.SetGuildAdminRole(context.Background(), i.GuildID, role.ID); err != nil {
		logError("SetGuildAdminRole", err.Error())
		respondWithError(s, i, "Could not save the role configuration, please retry")
		return
	}

	respondWithSuccess(s, i, fmt.Sprintf("Role **%s** can now manage the bot", role.Name))
}

func (b *Bot) handleHelp(s *discordgo.Session, i *discordgo.InteractionCreate) {
	logCommand(s, i, "help")
	respondWithEmbed(s, i, helpEmbed())
}

func (b *Bot) handleInfo(s *discordgo.Session, i *discordgo.InteractionCreate) {
	logCommand(s, i, "info")

	guilds := len(s.State.Guilds)
	embed := &discordgo.MessageEmbed{
		Title: "scrimbot",
		Description: "Team and planning manager: track who plays when, " +
			"find the slots everyone shares, and book your sessions.",
		Color: colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Servers", Value: fmt.Sprintf("%d", guilds), Inline: true},
		},
	}
	respondWithEmbed(s, i, embed)
}

func (b *Bot) handleReport(s *discordgo.Session, i *discordgo.InteractionCreate) {
	logCommand(s, i, "report")

	message := i.ApplicationCommandData().Options[0].StringValue()
	_, username, err := interactionUser(i)
	if err != nil {
		respondWithError(s, i, err.Error())
		return
	}

	log.Printf(formatLogMessage(i.GuildID,
		fmt.Sprintf("report: %s", message), username, getServerName(s, i.GuildID)))

	// Forward to the configured report channel when there is one; the
	// console line above is the fallback.
	cfg, err := b.db.GetOrCreateGuildConfig(context.Background(), i.GuildID)
	if err == nil && cfg.ReportChannelID != "" {
		content := fmt.Sprintf("New report from **%s**:\n>>> %s", username, message)
		if _, err := s.ChannelMessageSend(cfg.ReportChannelID, content); err != nil {
			log.Printf("Error forwarding report: %v", err)
		}
	}

	respondWithSuccess(s, i, "Thanks for the report, it has been passed on.")
}
