package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"scrimbot/internal/db/models"
	"scrimbot/internal/schedule"

	"github.com/bwmarrin/discordgo"
)

// errUnknownTeam marks a booking attempt for a team with no members on the
// guild.
var errUnknownTeam = errors.New("team has no members")

func (b *Bot) handleAvailability(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if len(i.ApplicationCommandData().Options) == 0 {
		respondWithError(s, i, "Invalid command options")
		return
	}

	sub := i.ApplicationCommandData().Options[0]
	switch sub.Name {
	case "add":
		b.handleAvailabilityAdd(s, i, sub)
	case "view":
		b.handleAvailabilityView(s, i, sub)
	default:
		respondWithError(s, i, "Invalid subcommand")
	}
}

func (b *Bot) handleAvailabilityAdd(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	logCommand(s, i, "availability")

	userID, username, err := interactionUser(i)
	if err != nil {
		respondWithError(s, i, err.Error())
		return
	}

	day, err := schedule.ParseDay(sub.Options[0].StringValue())
	if err != nil {
		respondWithError(s, i, "Unknown day name")
		return
	}
	start := int(sub.Options[1].IntValue())
	end := int(sub.Options[2].IntValue())
	if start >= end {
		respondWithError(s, i, "The start hour must be before the end hour")
		return
	}

	// Availability is tied to registered players only
	player, err := b.db.GetPlayer(context.Background(), userID, i.GuildID)
	if err != nil {
		logError("GetPlayer", err.Error())
		respondWithError(s, i, "Could not check your registration, please retry")
		return
	}
	if player == nil {
		respondWithError(s, i, fmt.Sprintf("%s, you are not registered on any team here. Ask a manager to `/addplayer` you first.", username))
		return
	}

	window := &models.Availability{
		DiscordID: userID,
		Day:       day,
		StartHour: start,
		EndHour:   end,
	}
	if err := b.db.SetAvailability(context.Background(), window); err != nil {
		logError("SetAvailability", err.Error())
		respondWithError(s, i, "Could not save your availability, please retry")
		return
	}

	respondWithSuccess(s, i, fmt.Sprintf(
		"Availability saved: **%s %dh - %dh** (this replaces any window you had declared for that day)",
		schedule.DayName(day), start, end))
}

func (b *Bot) handleAvailabilityView(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	logCommand(s, i, "availability")

	var team string
	var member *discordgo.User
	for _, opt := range sub.Options {
		switch opt.Name {
		case "team":
			team = opt.StringValue()
		case "member":
			member = opt.UserValue(s)
		}
	}

	if team != "" {
		common, members, err := b.planner.TeamSchedule(context.Background(), i.GuildID, team)
		if err != nil {
			logError("TeamSchedule", err.Error())
			respondWithError(s, i, "Could not compute the team schedule, please retry")
			return
		}
		if members == nil {
			respondWithError(s, i, fmt.Sprintf("Team **%s** doesn't exist on this server", titleCase(team)))
			return
		}
		respondWithEmbed(s, i, teamScheduleEmbed(team, common))
		return
	}

	// No team given: show a player's week (the caller's own by default)
	userID, username, err := interactionUser(i)
	if err != nil {
		respondWithError(s, i, err.Error())
		return
	}
	if member != nil {
		userID, username = member.ID, member.Username
	}

	week, err := b.planner.PlayerSchedule(context.Background(), userID)
	if err != nil {
		logError("PlayerSchedule", err.Error())
		respondWithError(s, i, "Could not fetch that schedule, please retry")
		return
	}
	respondWithEmbed(s, i, playerScheduleEmbed(username, week))
}

func (b *Bot) handleSchedule(s *discordgo.Session, i *discordgo.InteractionCreate) {
	logCommand(s, i, "schedule")

	options := i.ApplicationCommandData().Options
	team := options[0].StringValue()

	// Stage 1: day resolution
	day, err := schedule.ParseDay(options[1].StringValue())
	if err != nil {
		respondWithError(s, i, "Unknown day name")
		return
	}

	start := int(options[2].IntValue())
	end := start + b.config.Scheduler.DefaultSessionHours
	for _, opt := range options[3:] {
		if opt.Name == "end" {
			end = int(opt.IntValue())
		}
	}
	if end > 24 {
		end = 24
	}
	if start >= end {
		respondWithError(s, i, "The start hour must be before the end hour")
		return
	}

	session, compatible, err := b.bookSession(context.Background(), i.GuildID, team, day, start, end, time.Now())
	if errors.Is(err, errUnknownTeam) {
		respondWithError(s, i, fmt.Sprintf("Team **%s** doesn't exist on this server", titleCase(team)))
		return
	}
	if err != nil {
		logError("bookSession", err.Error())
		respondWithError(s, i, "Could not book the session, please retry")
		return
	}

	respondWithEmbed(s, i, sessionBookedEmbed(team, day, session, compatible))
}

// bookSession runs the booking stages after input validation: resolve the
// weekday to its next concrete date, check the team exists, check the slot
// against the team's common availability, persist. Compatibility is
// advisory only; an incompatible slot is still booked, the caller just
// annotates the confirmation.
func (b *Bot) bookSession(ctx context.Context, guildID, team string, day, start, end int, now time.Time) (*models.Session, bool, error) {
	// Stage 2: next-occurrence date. A slot earlier today books next week.
	when := schedule.NextOccurrence(now, day, start)

	// Stage 3: the team must have at least one member
	common, members, err := b.planner.TeamSchedule(ctx, guildID, team)
	if err != nil {
		return nil, false, err
	}
	if members == nil {
		return nil, false, errUnknownTeam
	}

	// Stage 4: advisory compatibility check, never blocking
	slot := schedule.Interval{Start: start, End: end}
	compatible := schedule.Fits(slot, common[day], b.config.Scheduler.AllowPartialOverlap)

	// Stage 5: persist (the only durable side effect)
	session := &models.Session{
		GuildID:   guildID,
		Team:      team,
		Date:      time.Date(when.Year(), when.Month(), when.Day(), 0, 0, 0, 0, time.Local),
		StartHour: start,
		EndHour:   end,
		Duration:  end - start,
	}
	if err := b.db.CreateSession(ctx, session); err != nil {
		return nil, compatible, err
	}
	return session, compatible, nil
}

// upcomingSessions drops every session that starts strictly before now.
// Input order is preserved, so rows already sorted ascending stay sorted.
func upcomingSessions(sessions []*models.Session, now time.Time) []*models.Session {
	var upcoming []*models.Session
	for _, s := range sessions {
		if s.StartTime().Before(now) {
			continue
		}
		upcoming = append(upcoming, s)
	}
	return upcoming
}

func (b *Bot) handleSessions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	logCommand(s, i, "sessions")

	team := i.ApplicationCommandData().Options[0].StringValue()
	sessions, err := b.db.GetSessionsByTeam(context.Background(), i.GuildID, team)
	if err != nil {
		logError("GetSessionsByTeam", err.Error())
		respondWithError(s, i, "Could not fetch the sessions, please retry")
		return
	}
	if len(sessions) == 0 {
		respondWithSuccess(s, i, fmt.Sprintf("No sessions booked for team **%s**.", titleCase(team)))
		return
	}

	// Future-only view; the rows are already in ascending order
	upcoming := upcomingSessions(sessions, time.Now())
	if len(upcoming) == 0 {
		respondWithSuccess(s, i, fmt.Sprintf("No upcoming sessions for team **%s** (past ones are hidden).", titleCase(team)))
		return
	}

	respondWithEmbed(s, i, sessionListEmbed(team, upcoming))
}

func (b *Bot) handleCancelSession(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.requireManager(s, i) {
		return
	}
	logCommand(s, i, "cancelsession")

	id := i.ApplicationCommandData().Options[0].IntValue()
	deleted, err := b.db.DeleteSession(context.Background(), i.GuildID, id)
	if err != nil {
		logError("DeleteSession", err.Error())
		respondWithError(s, i, "Could not cancel the session, please retry")
		return
	}
	if !deleted {
		respondWithError(s, i, fmt.Sprintf("No session with ID %d on this server", id))
		return
	}

	respondWithSuccess(s, i, fmt.Sprintf("Session %d cancelled.", id))
}
