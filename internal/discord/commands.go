package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"spacegame-combat/internal/catalog"
	"spacegame-combat/internal/combat"
	"spacegame-combat/internal/model"
	"spacegame-combat/internal/service"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Sender is the part of *discordgo.Session commands reply with.
type Sender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type PilotLookup interface {
	PilotByName(ctx context.Context, username string) (*model.Pilot, error)
}

type BattleView interface {
	State(playerID string) model.BattleState
	ActiveCount() int
}

type OnlineCounter interface {
	OnlineCount() int
}

// CommandHandler processes bot prefix commands.
type CommandHandler struct {
	pilots  PilotLookup
	battles BattleView
	online  OnlineCounter
	cat     *catalog.Catalog
	log     *zap.Logger
}

func NewCommandHandler(pilots PilotLookup, battles BattleView, online OnlineCounter, cat *catalog.Catalog, log *zap.Logger) *CommandHandler {
	return &CommandHandler{pilots: pilots, battles: battles, online: online, cat: cat, log: log}
}

// Handle dispatches a prefix command.
func (h *CommandHandler) Handle(s Sender, channelID, content string) {
	parts := strings.Fields(content)
	if len(parts) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var (
		embed *discordgo.MessageEmbed
		text  string
	)
	switch strings.ToLower(parts[0]) {
	case "!status":
		embed = h.status()
	case "!pilot":
		if len(parts) < 2 {
			text = "Usage: `!pilot <name>`"
			break
		}
		embed, text = h.pilot(ctx, parts[1])
	case "!battle":
		if len(parts) < 2 {
			text = "Usage: `!battle <name>`"
			break
		}
		embed, text = h.battle(ctx, parts[1])
	case "!raids":
		embed = h.raids()
	case "!help":
		embed = help()
	default:
		return
	}

	var err error
	if embed != nil {
		_, err = s.ChannelMessageSendEmbed(channelID, embed)
	} else if text != "" {
		_, err = s.ChannelMessageSend(channelID, text)
	}
	if err != nil {
		h.log.Warn("discord reply failed", zap.String("command", parts[0]), zap.Error(err))
	}
}

func (h *CommandHandler) status() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "SpaceGame Combat - Server status",
		Color: 0x2ECC71,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Pilots online", Value: fmt.Sprintf("%d", h.online.OnlineCount()), Inline: true},
			{Name: "Battles in progress", Value: fmt.Sprintf("%d", h.battles.ActiveCount()), Inline: true},
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Footer:    &discordgo.MessageEmbedFooter{Text: "SpaceGame"},
	}
}

func (h *CommandHandler) lookup(ctx context.Context, name string) (*model.Pilot, string) {
	pilot, err := h.pilots.PilotByName(ctx, name)
	if errors.Is(err, service.ErrPlayerNotFound) {
		return nil, fmt.Sprintf("Pilot `%s` not found.", name)
	}
	if err != nil {
		h.log.Error("discord pilot lookup", zap.String("name", name), zap.Error(err))
		return nil, "Could not load that pilot right now."
	}
	return pilot, ""
}

func (h *CommandHandler) pilot(ctx context.Context, name string) (*discordgo.MessageEmbed, string) {
	p, msg := h.lookup(ctx, name)
	if p == nil {
		return nil, msg
	}

	loot := 0
	for _, item := range p.Inventory {
		loot += item.Quantity
	}

	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Pilot %s", p.Username),
		Color: 0x00C8FF,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Level", Value: fmt.Sprintf("%d", p.Level), Inline: true},
			{Name: "XP", Value: fmt.Sprintf("%d / %d", p.Experience, p.NextLevelExp), Inline: true},
			{Name: "Credits", Value: fmt.Sprintf("%d", p.Credits), Inline: true},
			{Name: "Kills", Value: fmt.Sprintf("%d", p.Kills), Inline: true},
			{Name: "Loot", Value: fmt.Sprintf("%d item(s)", loot), Inline: true},
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Footer:    &discordgo.MessageEmbedFooter{Text: "SpaceGame"},
	}, ""
}

func (h *CommandHandler) battle(ctx context.Context, name string) (*discordgo.MessageEmbed, string) {
	p, msg := h.lookup(ctx, name)
	if p == nil {
		return nil, msg
	}

	st := h.battles.State(p.ID)
	if st.Phase == combat.PhaseIdle || st.Progress == nil {
		return nil, fmt.Sprintf("%s is not in combat.", p.Username)
	}

	hostiles, alive := 0, 0
	var fleet []string
	for _, s := range st.Ships {
		if s.Player {
			fleet = append(fleet, fmt.Sprintf("%s %.0f%% hull", s.Name, s.HullPercentage()))
			continue
		}
		hostiles++
		if !s.Destroyed() {
			alive++
		}
	}

	status := string(st.Phase)
	if st.Result != combat.ResultNone {
		status = string(st.Result)
	}

	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s - %s", p.Username, st.Progress.Name),
		Color: 0xE67E22,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Status", Value: status, Inline: true},
			{Name: "Wave", Value: fmt.Sprintf("%d / %d", st.Progress.Wave, st.Progress.TotalWaves), Inline: true},
			{Name: "Hostiles", Value: fmt.Sprintf("%d / %d alive", alive, hostiles), Inline: true},
			{Name: "Fleet", Value: strings.Join(fleet, "\n")},
			{Name: "Time", Value: (time.Duration(st.Elapsed) * time.Second).String(), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "SpaceGame"},
	}, ""
}

func (h *CommandHandler) raids() *discordgo.MessageEmbed {
	fields := make([]*discordgo.MessageEmbedField, 0, len(h.cat.Raids)+len(h.cat.Missions))
	for _, r := range h.cat.Raids {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("%s (%s)", r.Name, r.Difficulty),
			Value: fmt.Sprintf("`%s` - %d waves, %s", r.ID, len(r.Waves), r.TotalRewards),
		})
	}
	for _, m := range h.cat.Missions {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("%s (%s)", m.Name, m.Difficulty),
			Value: fmt.Sprintf("`%s` - mission, %s", m.ID, m.Reward),
		})
	}
	return &discordgo.MessageEmbed{
		Title:  "Available raids and missions",
		Color:  0x9B59B6,
		Fields: fields,
		Footer: &discordgo.MessageEmbedFooter{Text: "SpaceGame"},
	}
}

func help() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "SpaceGame Bot - Commands",
		Color: 0x00C8FF,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "`!status`", Value: "Pilots online and battles in progress"},
			{Name: "`!pilot <name>`", Value: "A pilot's level, credits and kills"},
			{Name: "`!battle <name>`", Value: "A pilot's current battle"},
			{Name: "`!raids`", Value: "Raids and missions that can be started"},
			{Name: "`!help`", Value: "This help"},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "SpaceGame"},
	}
}
