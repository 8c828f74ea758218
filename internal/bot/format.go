package bot

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"scrimbot/internal/db/models"
	"scrimbot/internal/schedule"

	"github.com/bwmarrin/discordgo"
)

const (
	colorBlue   = 0x3498db
	colorGreen  = 0x2ecc71
	colorOrange = 0xe67e22
	colorGold   = 0xf1c40f
)

// titleCase capitalizes the first letter of each word, for displaying
// team names that are stored and matched lower-cased.
func titleCase(s string) string {
	words := strings.Fields(strings.TrimSpace(s))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// formatSlots renders a day's intervals as bullet lines.
func formatSlots(slots []schedule.Interval) string {
	lines := make([]string, len(slots))
	for i, slot := range slots {
		lines[i] = fmt.Sprintf("• %dh - %dh", slot.Start, slot.End)
	}
	return strings.Join(lines, "\n")
}

// teamScheduleEmbed renders common availability per day. Teams with no
// shared hours at all get an explicit notice instead of an empty embed.
func teamScheduleEmbed(team string, common map[int][]schedule.Interval) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Weekly schedule - %s", titleCase(team)),
		Description: "Common slots for the week:",
		Color:       colorGreen,
	}

	hasSlots := false
	for day := 0; day < 7; day++ {
		slots := common[day]
		if len(slots) == 0 {
			continue
		}
		hasSlots = true
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  schedule.DayName(day),
			Value: formatSlots(slots),
		})
	}

	if !hasSlots {
		embed.Description = "No common slots this week. Remember that a day counts only once every member has declared availability for it."
		embed.Color = colorOrange
	}
	return embed
}

// playerScheduleEmbed renders one player's declared week, empty days
// included.
func playerScheduleEmbed(username string, week map[int][]schedule.Interval) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Availability - %s", username),
		Color: colorBlue,
	}
	for day := 0; day < 7; day++ {
		value := "—"
		if slots := week[day]; len(slots) > 0 {
			value = formatSlots(slots)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   schedule.DayName(day),
			Value:  value,
			Inline: true,
		})
	}
	return embed
}

// rosterEmbed groups players by game, then team.
func rosterEmbed(players []*models.Player) *discordgo.MessageEmbed {
	byGame := make(map[string]map[string][]string)
	for _, p := range players {
		if byGame[p.Game] == nil {
			byGame[p.Game] = make(map[string][]string)
		}
		team := titleCase(p.Team)
		byGame[p.Game][team] = append(byGame[p.Game][team], p.Username)
	}

	games := make([]string, 0, len(byGame))
	for game := range byGame {
		games = append(games, game)
	}
	sort.Strings(games)

	embed := &discordgo.MessageEmbed{
		Title: "Our teams",
		Color: colorBlue,
	}
	for _, game := range games {
		teams := make([]string, 0, len(byGame[game]))
		for team := range byGame[game] {
			teams = append(teams, team)
		}
		sort.Strings(teams)

		var section strings.Builder
		for _, team := range teams {
			section.WriteString(fmt.Sprintf("**%s**\n%s\n\n", team, strings.Join(byGame[game][team], "\n")))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  game,
			Value: strings.TrimRight(section.String(), "\n"),
		})
	}
	return embed
}

// sessionBookedEmbed confirms a booking. An incompatible slot is booked
// all the same; the confirmation just carries a warning.
func sessionBookedEmbed(team string, day int, s *models.Session, compatible bool) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Session booked - %s", titleCase(team)),
		Description: fmt.Sprintf("**Date**: %s (%s)\n**Time**: %s",
			s.DateString(), schedule.DayName(day), s.TimeRange()),
		Color: colorGreen,
	}
	if !compatible {
		embed.Color = colorOrange
		embed.Description += fmt.Sprintf(
			"\n\n**Warning**: %s %s is outside the team's declared common availability.",
			schedule.DayName(day), s.TimeRange())
	}
	return embed
}

// sessionListEmbed renders upcoming sessions, oldest first.
func sessionListEmbed(team string, sessions []*models.Session) *discordgo.MessageEmbed {
	var lines strings.Builder
	for _, s := range sessions {
		lines.WriteString(fmt.Sprintf("• **%s** at **%s** (ID: %d)\n", s.DateString(), s.TimeRange(), s.ID))
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Upcoming sessions - %s", titleCase(team)),
		Description: lines.String(),
		Color:       colorBlue,
	}
}

func helpEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "scrimbot - Help",
		Description: "Commands to manage your teams, availability and sessions.",
		Color:       colorGold,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "Players",
				Value: "`/addplayer member game team` - register a player\n" +
					"`/removeplayer member` - remove a player\n" +
					"`/players` - show the roster by game and team",
			},
			{
				Name: "Availability",
				Value: "`/availability add day start end` - declare your window for a weekday\n" +
					"`/availability view [team|member]` - common slots, or one player's week",
			},
			{
				Name: "Sessions",
				Value: "`/schedule team day start [end]` - book the next occurrence of a weekday\n" +
					"`/sessions team` - upcoming sessions\n" +
					"`/cancelsession id` - cancel a session",
			},
			{
				Name: "Configuration (managers)",
				Value: "`/setchannel type` - route notifications to the current channel\n" +
					"`/setadminrole role` - allow a role to manage the bot",
			},
		},
	}
}
