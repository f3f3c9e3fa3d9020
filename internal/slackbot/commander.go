package slackbot

import (
	"context"
	"os"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"
	"go.uber.org/zap"

	"github.com/finwatch-dev/finwatch/internal/block"
	"github.com/finwatch-dev/finwatch/internal/render"
)

// Commander serves the /accts and /buf slash commands over socket mode.
// Both run the same sync and render paths as the notifier loop, so a
// command can race a cycle; the stores are safe under that.
type Commander struct {
	api           *slack.Client
	sm            *socketmode.Client
	builder       *render.Builder
	fallbackLimit int
	log           *zap.Logger

	exit func(int) // os.Exit, swapped in tests
}

// NewCommander creates a Commander. The slack client must carry an
// app-level token for the socket-mode connection.
func NewCommander(api *slack.Client, builder *render.Builder, fallbackLimit int, log *zap.Logger) *Commander {
	return &Commander{
		api:           api,
		sm:            socketmode.New(api),
		builder:       builder,
		fallbackLimit: fallbackLimit,
		log:           log,
		exit:          os.Exit,
	}
}

// Run connects to Slack and serves commands until ctx is cancelled.
func (c *Commander) Run(ctx context.Context) error {
	go c.consumeEvents(ctx)
	return c.sm.RunContext(ctx)
}

func (c *Commander) consumeEvents(ctx context.Context) {
	for evt := range c.sm.Events {
		switch evt.Type {
		case socketmode.EventTypeConnecting:
			c.log.Info("connecting to slack")
		case socketmode.EventTypeConnected:
			c.log.Info("connected to slack")
		case socketmode.EventTypeConnectionError:
			c.log.Warn("slack connection error")
		case socketmode.EventTypeSlashCommand:
			cmd, ok := evt.Data.(slack.SlashCommand)
			if !ok {
				continue
			}
			c.sm.Ack(*evt.Request)
			c.handleCommand(ctx, cmd)
		case socketmode.EventTypeEventsAPI:
			// Plain message events arrive here; nothing to do beyond ack.
			c.sm.Ack(*evt.Request)
		case socketmode.EventTypeInteractive:
			// Overflow menu selections are read-only facets.
			c.sm.Ack(*evt.Request)
		}
	}
}

func (c *Commander) handleCommand(ctx context.Context, cmd slack.SlashCommand) {
	c.log.Info("handling command",
		zap.String("command", cmd.Command),
		zap.String("channel", cmd.ChannelID))

	var (
		blocks []block.Block
		err    error
	)
	switch cmd.Command {
	case "/accts":
		blocks, err = c.builder.AccountsBlocks(ctx)
	case "/buf":
		var buffer block.Text
		if buffer, err = c.builder.MoneyBuffer(ctx); err == nil {
			blocks = []block.Block{block.Section{Text: buffer}}
		}
	default:
		c.log.Warn("unknown command", zap.String("command", cmd.Command))
		return
	}
	if err != nil {
		c.fail(ctx, cmd.ChannelID, err)
		return
	}

	fallback := block.Truncate(block.Flatten(blocks), c.fallbackLimit)
	_, _, err = c.api.PostMessageContext(ctx, cmd.ChannelID,
		slack.MsgOptionBlocks(ToSlackBlocks(blocks)...),
		slack.MsgOptionText(fallback, false))
	if err != nil {
		c.fail(ctx, cmd.ChannelID, err)
	}
}

// fail posts a best-effort apology plus the error text to the invoking
// channel, then terminates the process so supervision restarts it with a
// clean session. Errors are never swallowed at this level.
func (c *Commander) fail(ctx context.Context, channelID string, cause error) {
	for _, msg := range []string{
		"Sorry, an error occurred. I'm going to restart myself now, please try again later.",
		"The error was: " + cause.Error(),
	} {
		if _, _, err := c.api.PostMessageContext(ctx, channelID, slack.MsgOptionText(msg, false)); err != nil {
			c.log.Error("error while reporting an error", zap.Error(err))
			break
		}
	}
	c.log.Error("command failed, exiting", zap.Error(cause))
	c.exit(1)
}
