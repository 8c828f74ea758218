package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// formatLogMessage builds a single log line tagged with guild context.
func formatLogMessage(guildID, message, username, serverName string) string {
	parts := []string{}
	if serverName != "" {
		parts = append(parts, serverName)
	} else if guildID != "" {
		parts = append(parts, guildID)
	}
	if username != "" {
		parts = append(parts, username)
	}
	if len(parts) == 0 {
		return message
	}
	return fmt.Sprintf("[%s] %s", strings.Join(parts, "/"), message)
}

// getServerName resolves a guild's display name, falling back to the ID.
func getServerName(s *discordgo.Session, guildID string) string {
	if guildID == "" {
		return ""
	}
	if guild, err := s.State.Guild(guildID); err == nil && guild.Name != "" {
		return guild.Name
	}
	if guild, err := s.Guild(guildID); err == nil {
		return guild.Name
	}
	return guildID
}

// respondWithError sends an error response to the user
func respondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, errMsg string) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "Error: " + errMsg,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// respondWithSuccess sends a success response to the user
func respondWithSuccess(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: msg,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// respondWithEmbed sends an embed response, visible to the channel.
func respondWithEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

// interactionUser returns the acting user's ID and username, handling both
// guild and DM contexts.
func interactionUser(i *discordgo.InteractionCreate) (string, string, error) {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID, i.Member.User.Username, nil
	}
	if i.User != nil {
		return i.User.ID, i.User.Username, nil
	}
	return "", "", fmt.Errorf("could not get user information from interaction")
}

// isManager reports whether the user may run management commands: Discord
// Administrator / Manage Server, or the guild's configured admin role.
func (b *Bot) isManager(s *discordgo.Session, guildID, userID string) bool {
	if guildID == "" {
		return false
	}

	member, err := s.GuildMember(guildID, userID)
	if err != nil {
		log.Printf("Error getting guild member: %v", err)
		return false
	}

	if member.Permissions&(discordgo.PermissionAdministrator|discordgo.PermissionManageServer) != 0 {
		return true
	}

	guild, err := s.Guild(guildID)
	if err == nil && guild.OwnerID == userID {
		return true
	}

	cfg, err := b.db.GetOrCreateGuildConfig(context.Background(), guildID)
	if err != nil {
		log.Printf("Error getting guild config: %v", err)
		return false
	}
	if cfg.AdminRoleID == "" {
		return false
	}
	for _, roleID := range member.Roles {
		if roleID == cfg.AdminRoleID {
			return true
		}
	}
	return false
}

// requireManager rejects the interaction unless the user is a manager.
func (b *Bot) requireManager(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	userID, _, err := interactionUser(i)
	if err != nil {
		respondWithError(s, i, err.Error())
		return false
	}
	if !b.isManager(s, i.GuildID, userID) {
		respondWithError(s, i, "You don't have permission to perform this action")
		return false
	}
	return true
}

// logCommand logs command execution to the console.
func logCommand(s *discordgo.Session, i *discordgo.InteractionCreate, commandName string, details ...string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")

	_, username, err := interactionUser(i)
	if err != nil {
		username = "unknown"
	}

	var params []string
	if options := i.ApplicationCommandData().Options; len(options) > 0 {
		for _, opt := range options {
			switch opt.Type {
			case discordgo.ApplicationCommandOptionSubCommand:
				params = append(params, opt.Name)
				for _, subOpt := range opt.Options {
					params = append(params, fmt.Sprintf("%s:%v", subOpt.Name, subOpt.Value))
				}
			default:
				params = append(params, fmt.Sprintf("%s:%v", opt.Name, opt.Value))
			}
		}
	}

	logMessage := fmt.Sprintf("[%s] %s executed /%s", timestamp, username, commandName)
	if len(params) > 0 {
		logMessage += fmt.Sprintf(" [%s]", strings.Join(params, ", "))
	}
	if len(details) > 0 {
		logMessage += fmt.Sprintf(" (%s)", strings.Join(details, " "))
	}

	log.Println(logMessage)
}

// logError logs an error with its operation context.
func logError(errContext, errMsg string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	log.Printf("[%s] ERROR - %s: %s", timestamp, errContext, errMsg)
}
