package slack

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	slackgo "github.com/slack-go/slack"
)

// GatewayError reports that the Slack API rejected or failed a call.
type GatewayError struct {
	Method string
	Err    error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s: %v", e.Method, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Posted identifies a message that was posted by [Client.PostMessage].
type Posted struct {
	Channel   string
	Timestamp string
}

// Reaction is an emoji reaction on a message, and the number of users who added it.
type Reaction struct {
	Name  string
	Count int
}

// Message is the text of a posted message, and its current reactions.
type Message struct {
	Text      string
	Reactions []Reaction
}

// Client is a thin wrapper of a Slack API client, which always acts as the bot user.
type Client struct {
	api *slackgo.Client
}

// NewClient initializes a Slack API client with a bot token.
// The optional base URL ("https://slack.com/api/" by default) is used in tests.
func NewClient(botToken, baseURL string) *Client {
	var opts []slackgo.Option
	if baseURL != "" {
		opts = append(opts, slackgo.OptionAPIURL(baseURL))
	}
	return &Client{api: slackgo.New(botToken, opts...)}
}

// PostMessage posts a text message to a channel (ID, or name with a "#" prefix).
// Based on https://docs.slack.dev/reference/methods/chat.postMessage.
func (c *Client) PostMessage(ctx context.Context, channel, text string) (Posted, error) {
	ch, ts, err := c.api.PostMessageContext(ctx, channel,
		slackgo.MsgOptionText(text, false), slackgo.MsgOptionAsUser(true))
	if err != nil {
		return Posted{}, gatewayError(ctx, "chat.postMessage", err)
	}

	zerolog.Ctx(ctx).Trace().Str("channel", ch).Str("ts", ts).Msg("posted Slack message")
	return Posted{Channel: ch, Timestamp: ts}, nil
}

// AddReaction adds an emoji reaction to a message.
// Based on https://docs.slack.dev/reference/methods/reactions.add.
func (c *Client) AddReaction(ctx context.Context, name, channel, ts string) error {
	if err := c.api.AddReactionContext(ctx, name, slackgo.NewRefToMessage(channel, ts)); err != nil {
		return gatewayError(ctx, "reactions.add", err)
	}
	return nil
}

// Reactions returns the text of a message and all of its reactions.
// Based on https://docs.slack.dev/reference/methods/conversations.history,
// which (unlike "reactions.get") also returns the text of the message.
func (c *Client) Reactions(ctx context.Context, channel, ts string) (Message, error) {
	resp, err := c.api.GetConversationHistoryContext(ctx, &slackgo.GetConversationHistoryParameters{
		ChannelID: channel,
		Latest:    ts,
		Inclusive: true,
		Limit:     1,
	})
	if err != nil {
		return Message{}, gatewayError(ctx, "conversations.history", err)
	}

	for _, m := range resp.Messages {
		if m.Timestamp != ts {
			continue
		}

		msg := Message{Text: m.Text, Reactions: make([]Reaction, 0, len(m.Reactions))}
		for _, r := range m.Reactions {
			msg.Reactions = append(msg.Reactions, Reaction{Name: r.Name, Count: r.Count})
		}
		return msg, nil
	}

	err = fmt.Errorf("message %s not found in channel %s", ts, channel)
	return Message{}, gatewayError(ctx, "conversations.history", err)
}

func gatewayError(ctx context.Context, method string, err error) error {
	l := zerolog.Ctx(ctx).Warn().Err(err).Str("method", method)
	rle := new(slackgo.RateLimitedError)
	if errors.As(err, &rle) {
		l = l.Dur("retry_after", rle.RetryAfter)
	}
	l.Msg("Slack API call failed")

	return &GatewayError{Method: method, Err: err}
}
