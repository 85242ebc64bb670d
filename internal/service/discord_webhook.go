package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"spacegame-combat/internal/combat"

	"go.uber.org/zap"
)

// DiscordWebhookService sends rich embeds to Discord channels via webhooks.
type DiscordWebhookService struct {
	webhookKills  string
	webhookEvents string
	client        *http.Client
	log           *zap.Logger
}

func NewDiscordWebhookService(kills, events string, log *zap.Logger) *DiscordWebhookService {
	return &DiscordWebhookService{
		webhookKills:  kills,
		webhookEvents: events,
		client:        &http.Client{Timeout: 10 * time.Second},
		log:           log,
	}
}

type discordEmbed struct {
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	Color       int            `json:"color,omitempty"`
	Fields      []discordField `json:"fields,omitempty"`
	Footer      *discordFooter `json:"footer,omitempty"`
	Timestamp   string         `json:"timestamp,omitempty"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type discordFooter struct {
	Text string `json:"text"`
}

type discordWebhookPayload struct {
	Username string         `json:"username,omitempty"`
	Embeds   []discordEmbed `json:"embeds"`
}

func (s *DiscordWebhookService) send(webhookURL string, payload discordWebhookPayload) {
	if webhookURL == "" {
		return
	}
	go func() {
		body, err := json.Marshal(payload)
		if err != nil {
			s.log.Error("discord webhook marshal", zap.Error(err))
			return
		}
		resp, err := s.client.Post(webhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			s.log.Warn("discord webhook send", zap.Error(err))
			return
		}
		resp.Body.Close()
		if resp.StatusCode >= 400 {
			s.log.Warn("discord webhook rejected", zap.Int("status", resp.StatusCode))
		}
	}()
}

// SendBossKill posts a boss kill to #kill-feed.
func (s *DiscordWebhookService) SendBossKill(pilot, boss, weapon, raid string) {
	s.send(s.webhookKills, discordWebhookPayload{
		Username: "SpaceGame Kill Feed",
		Embeds: []discordEmbed{{
			Title: fmt.Sprintf("💀 %s destroyed %s", pilot, boss),
			Color: 0xE74C3C,
			Fields: []discordField{
				{Name: "Weapon", Value: orDash(weapon), Inline: true},
				{Name: "Raid", Value: orDash(raid), Inline: true},
			},
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}},
	})
}

// SendRaidComplete posts a finished raid to #events.
func (s *DiscordWebhookService) SendRaidComplete(pilot string, c combat.Completed) {
	color := 0xF1C40F
	title := fmt.Sprintf("🏆 %s cleared %s", pilot, c.Name)
	if c.Result == combat.ResultDefeat {
		color = 0x95A5A6
		title = fmt.Sprintf("☠️ %s fell in %s", pilot, c.Name)
	}
	fields := []discordField{
		{Name: "Credits", Value: fmt.Sprintf("%d", c.Reward.Credits), Inline: true},
		{Name: "XP", Value: fmt.Sprintf("%d", c.Reward.Experience), Inline: true},
		{Name: "Time", Value: (time.Duration(c.Elapsed) * time.Second).String(), Inline: true},
	}
	if len(c.Reward.Loot) > 0 {
		fields = append(fields, discordField{Name: "Loot", Value: strings.Join(c.Reward.Loot, ", ")})
	}
	s.send(s.webhookEvents, discordWebhookPayload{
		Username: "SpaceGame Events",
		Embeds: []discordEmbed{{
			Title:     title,
			Color:     color,
			Fields:    fields,
			Footer:    &discordFooter{Text: string(c.Kind)},
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}},
	})
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
