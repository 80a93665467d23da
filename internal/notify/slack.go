package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/slack-go/slack"
)

// SlackConfig selects between an incoming webhook and a bot token plus
// channel. The webhook wins when both are set.
type SlackConfig struct {
	WebhookURL string
	BotToken   string
	Channel    string

	// APIURL and HTTPClient override the Slack endpoints in tests.
	APIURL     string
	HTTPClient *http.Client
}

type SlackChannel struct {
	webhookURL string
	httpClient *http.Client
	api        *slack.Client
	channel    string
}

func NewSlackChannel(cfg SlackConfig) (*SlackChannel, error) {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if cfg.WebhookURL != "" {
		return &SlackChannel{webhookURL: cfg.WebhookURL, httpClient: httpClient}, nil
	}
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("slack webhook url or bot token is required")
	}
	if cfg.Channel == "" {
		return nil, fmt.Errorf("slack channel is required with a bot token")
	}

	opts := []slack.Option{slack.OptionHTTPClient(httpClient)}
	if cfg.APIURL != "" {
		opts = append(opts, slack.OptionAPIURL(cfg.APIURL))
	}
	return &SlackChannel{
		api:     slack.New(cfg.BotToken, opts...),
		channel: cfg.Channel,
	}, nil
}

func (s *SlackChannel) Name() string { return "slack" }

func (s *SlackChannel) Post(ctx context.Context, msg Message) error {
	text := fmt.Sprintf("*%s*\n%s", msg.Subject, msg.Body)

	if s.webhookURL != "" {
		if err := slack.PostWebhookCustomHTTPContext(ctx, s.webhookURL, s.httpClient, &slack.WebhookMessage{Text: text}); err != nil {
			return fmt.Errorf("post slack webhook: %w", err)
		}
		return nil
	}

	if _, _, err := s.api.PostMessageContext(ctx, s.channel, slack.MsgOptionText(text, false)); err != nil {
		return fmt.Errorf("post slack message: %w", err)
	}
	return nil
}
