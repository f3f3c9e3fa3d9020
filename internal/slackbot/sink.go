// Package slackbot adapts the notifier to Slack: outbound block delivery
// and the socket-mode slash commands.
package slackbot

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/finwatch-dev/finwatch/internal/block"
)

// Sink delivers blocks through the Slack Web API. It satisfies the
// notifier's message-sink contract.
type Sink struct {
	api *slack.Client
	log *zap.Logger
}

// NewSink creates a Sink over an authenticated Slack client.
func NewSink(api *slack.Client, log *zap.Logger) *Sink {
	return &Sink{api: api, log: log}
}

// ListMemberChannels returns the IDs of every channel the bot is a member
// of, following pagination.
func (s *Sink) ListMemberChannels(ctx context.Context) ([]string, error) {
	params := &slack.GetConversationsParameters{
		ExcludeArchived: true,
		Limit:           200,
		Types:           []string{"public_channel", "private_channel"},
	}

	var ids []string
	for {
		channels, cursor, err := s.api.GetConversationsContext(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("listing conversations: %w", err)
		}
		for _, ch := range channels {
			if ch.IsMember {
				ids = append(ids, ch.ID)
			}
		}
		if cursor == "" {
			return ids, nil
		}
		params.Cursor = cursor
	}
}

// SendMessage posts one chunk of blocks to a channel, with fallback as
// the plain-text summary for notifications and constrained clients.
func (s *Sink) SendMessage(ctx context.Context, channelID string, blocks []block.Block, fallback string) error {
	s.log.Debug("posting message",
		zap.String("channel", channelID),
		zap.Int("blocks", len(blocks)))

	_, _, err := s.api.PostMessageContext(ctx, channelID,
		slack.MsgOptionBlocks(ToSlackBlocks(blocks)...),
		slack.MsgOptionText(fallback, false))
	if err != nil {
		return fmt.Errorf("posting to %s: %w", channelID, err)
	}
	return nil
}
