package alert

import (
	"context"
	"encoding/json"
	"fmt"
)

// Slack posts Block Kit messages to an incoming webhook.
type Slack struct {
	webhookURL string
}

func NewSlack(webhookURL string) *Slack {
	return &Slack{webhookURL: webhookURL}
}

func (s *Slack) Name() string { return "slack" }

func (s *Slack) Send(ctx context.Context, n *Notification) error {
	type text struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	type block struct {
		Type string `json:"type"`
		Text text   `json:"text"`
	}

	body, err := json.Marshal(map[string][]block{
		"blocks": {
			{Type: "header", Text: text{Type: "plain_text", Text: n.Title}},
			{Type: "section", Text: text{Type: "mrkdwn", Text: fmt.Sprintf("*Date:* %s\n%s", n.Date, bulletList(n.Movers))}},
		},
	})
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}
	return post(ctx, httpClient, "slack webhook", s.webhookURL, body, nil)
}
