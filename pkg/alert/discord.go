package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const discordColor = 0x2E86DE

type discordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
	Timestamp   string `json:"timestamp"`
}

// Discord posts one embed per notification to a channel webhook.
type Discord struct {
	webhookURL string
	now        func() time.Time
}

func NewDiscord(webhookURL string) *Discord {
	return &Discord{webhookURL: webhookURL, now: time.Now}
}

func (d *Discord) Name() string { return "discord" }

func (d *Discord) Send(ctx context.Context, n *Notification) error {
	embed := discordEmbed{
		Title:       n.Title,
		Description: fmt.Sprintf("**Date:** %s\n\n%s", n.Date, bulletList(n.Movers)),
		Color:       discordColor,
		Timestamp:   d.now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(map[string][]discordEmbed{"embeds": {embed}})
	if err != nil {
		return fmt.Errorf("marshal discord payload: %w", err)
	}
	return post(ctx, httpClient, "discord webhook", d.webhookURL, body, nil)
}
