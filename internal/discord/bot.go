package discord

import (
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Bot manages the Discord bot lifecycle and command dispatch.
type Bot struct {
	session  *discordgo.Session
	guildID  string
	commands *CommandHandler
	log      *zap.Logger
}

// NewBot returns nil when no token is configured; a nil *Bot is safe to
// Start and Stop. A non-empty guildID limits commands to that server.
func NewBot(token, guildID string, commands *CommandHandler, log *zap.Logger) (*Bot, error) {
	if token == "" {
		log.Info("no discord bot token configured, bot disabled")
		return nil, nil
	}

	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}

	s.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	bot := &Bot{session: s, guildID: guildID, commands: commands, log: log}
	s.AddHandler(bot.onMessageCreate)
	return bot, nil
}

// Start opens the Discord gateway connection.
func (b *Bot) Start() error {
	if b == nil || b.session == nil {
		return nil
	}
	if err := b.session.Open(); err != nil {
		return err
	}
	b.log.Info("discord bot connected")
	return nil
}

// Stop closes the Discord gateway connection.
func (b *Bot) Stop() {
	if b == nil || b.session == nil {
		return
	}
	_ = b.session.Close()
	b.log.Info("discord bot disconnected")
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || (s.State.User != nil && m.Author.ID == s.State.User.ID) {
		return
	}
	if b.guildID != "" && m.GuildID != "" && m.GuildID != b.guildID {
		return
	}
	if len(m.Content) == 0 || m.Content[0] != '!' {
		return
	}
	b.commands.Handle(s, m.ChannelID, m.Content)
}
