package infrastructure

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"tipster/domain/events"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const colorPending = 0xF1C40F

// WebhookExecutor is the part of a discordgo session the notifier needs
type WebhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordNotifier posts moderator notifications to a Discord webhook
type DiscordNotifier struct {
	executor  WebhookExecutor
	webhookID string
	token     string
}

// NewDiscordNotifier creates a notifier for a webhook URL of the form
// https://discord.com/api/webhooks/{id}/{token}
func NewDiscordNotifier(webhookURL string) (*DiscordNotifier, error) {
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	return NewDiscordNotifierWithExecutor(session, webhookURL)
}

// NewDiscordNotifierWithExecutor creates a notifier over an existing executor
func NewDiscordNotifierWithExecutor(executor WebhookExecutor, webhookURL string) (*DiscordNotifier, error) {
	webhookID, token, err := parseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}
	return &DiscordNotifier{
		executor:  executor,
		webhookID: webhookID,
		token:     token,
	}, nil
}

func parseWebhookURL(raw string) (string, string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", fmt.Errorf("invalid Discord webhook URL: %w", err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "webhooks" && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", fmt.Errorf("invalid Discord webhook URL: expected /api/webhooks/{id}/{token}")
}

// NotifyPendingPrediction posts an embed describing the prediction awaiting validation
func (n *DiscordNotifier) NotifyPendingPrediction(ctx context.Context, event events.PredictionSubmittedEvent) error {
	params := &discordgo.WebhookParams{
		Content: "A new prediction is waiting for validation",
		Embeds:  []*discordgo.MessageEmbed{buildPendingPredictionEmbed(event)},
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{},
		},
	}

	if _, err := n.executor.WebhookExecute(n.webhookID, n.token, false, params, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to execute Discord webhook: %w", err)
	}

	log.WithField("predictionID", event.PredictionID).Debug("Posted pending prediction to Discord")
	return nil
}

func buildPendingPredictionEmbed(event events.PredictionSubmittedEvent) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: "Author", Value: event.AuthorName, Inline: true},
		{Name: "Sport", Value: fmt.Sprintf("%s · %s", event.Sport, event.Competition), Inline: true},
		{Name: "Kick-off", Value: fmt.Sprintf("%s %s", event.MatchDate, event.MatchTime), Inline: true},
		{Name: "Odds", Value: fmt.Sprintf("%.2f", event.Odds), Inline: true},
		{Name: "Prediction", Value: event.PredictionText, Inline: false},
	}
	if event.ProbableScore != nil && *event.ProbableScore != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Probable score", Value: *event.ProbableScore, Inline: true})
	}
	if event.Details != nil && *event.Details != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Details", Value: truncate(*event.Details, 1024), Inline: false})
	}

	return &discordgo.MessageEmbed{
		Title:  event.MatchName,
		Color:  colorPending,
		Fields: fields,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Prediction %s", event.PredictionID),
		},
	}
}

// truncate keeps embed field values under Discord's length limit
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
