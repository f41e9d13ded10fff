package infrastructure

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tipster/domain/events"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockWebhookExecutor struct {
	mock.Mock
}

func (m *mockWebhookExecutor) WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	args := m.Called(webhookID, token, wait, data)
	msg, _ := args.Get(0).(*discordgo.Message)
	return msg, args.Error(1)
}

func TestParseWebhookURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		id      string
		token   string
		wantErr bool
	}{
		{name: "discord.com", url: "https://discord.com/api/webhooks/123/abc-def", id: "123", token: "abc-def"},
		{name: "versioned api", url: "https://discord.com/api/v10/webhooks/456/tok/", id: "456", token: "tok"},
		{name: "missing token", url: "https://discord.com/api/webhooks/123", wantErr: true},
		{name: "not a webhook", url: "https://example.com/hooks/1/2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, token, err := parseWebhookURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, id)
			assert.Equal(t, tt.token, token)
		})
	}
}

func TestDiscordNotifier_NotifyPendingPrediction(t *testing.T) {
	score := "3-1"
	event := events.PredictionSubmittedEvent{
		PredictionID:   "p-1",
		AuthorName:     "Zizou",
		Sport:          "football",
		Competition:    "FRA_L1",
		MatchName:      "PSG - OM",
		MatchDate:      "2025-03-10",
		MatchTime:      "21:00",
		Odds:           1.85,
		PredictionText: "PSG wins",
		ProbableScore:  &score,
	}

	t.Run("posts an embed", func(t *testing.T) {
		executor := new(mockWebhookExecutor)
		executor.On("WebhookExecute", "123", "secret", false, mock.MatchedBy(func(p *discordgo.WebhookParams) bool {
			if len(p.Embeds) != 1 {
				return false
			}
			embed := p.Embeds[0]
			return embed.Title == "PSG - OM" &&
				len(embed.Fields) == 6 &&
				embed.Fields[3].Value == "1.85" &&
				strings.Contains(embed.Footer.Text, "p-1")
		})).Return(&discordgo.Message{}, nil)

		notifier, err := NewDiscordNotifierWithExecutor(executor, "https://discord.com/api/webhooks/123/secret")
		require.NoError(t, err)

		require.NoError(t, notifier.NotifyPendingPrediction(context.Background(), event))
		executor.AssertExpectations(t)
	})

	t.Run("webhook failure", func(t *testing.T) {
		executor := new(mockWebhookExecutor)
		executor.On("WebhookExecute", "123", "secret", false, mock.Anything).Return(nil, errors.New("429"))

		notifier, err := NewDiscordNotifierWithExecutor(executor, "https://discord.com/api/webhooks/123/secret")
		require.NoError(t, err)

		assert.ErrorContains(t, notifier.NotifyPendingPrediction(context.Background(), event), "429")
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := NewDiscordNotifierWithExecutor(new(mockWebhookExecutor), "not a url")
		assert.Error(t, err)
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
