package bot

import (
	"github.com/bwmarrin/discordgo"
)

// Notifier is the only outbound surface the periodic jobs need from the
// chat platform.
type Notifier interface {
	SendChannelMessage(channelID, content string) error
	SendChannelEmbed(channelID string, embed *discordgo.MessageEmbed) error
	SendDirectMessage(userID, content string) error
}

type discordNotifier struct {
	session *discordgo.Session
}

func (n *discordNotifier) SendChannelMessage(channelID, content string) error {
	_, err := n.session.ChannelMessageSend(channelID, content)
	return err
}

func (n *discordNotifier) SendChannelEmbed(channelID string, embed *discordgo.MessageEmbed) error {
	_, err := n.session.ChannelMessageSendEmbed(channelID, embed)
	return err
}

func (n *discordNotifier) SendDirectMessage(userID, content string) error {
	channel, err := n.session.UserChannelCreate(userID)
	if err != nil {
		return err
	}
	_, err = n.session.ChannelMessageSend(channel.ID, content)
	return err
}
