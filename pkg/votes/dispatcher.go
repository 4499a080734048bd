// Package votes dispatches votebot's slash commands: it authorizes each
// request, and then orchestrates the vote stores and the chat gateway.
package votes

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/tzrikka/votebot/pkg/command"
	"github.com/tzrikka/votebot/pkg/slack"
	"github.com/tzrikka/votebot/pkg/store"
)

const (
	DefaultPostDelay = 500 * time.Millisecond

	invalidToken = "invalid incoming Slack token"
	helpText     = "You can use the following commands: help , ping , list , open , close."
)

// OptionStore reads [store.VoteOption] definitions.
type OptionStore interface {
	Get(ctx context.Context, selection string) (*store.VoteOption, error)
	Scan(ctx context.Context) ([]store.VoteOption, error)
}

// OpenVoteStore creates, reads and deletes [store.OpenVote] records.
type OpenVoteStore interface {
	Get(ctx context.Context, voteID string) (*store.OpenVote, error)
	Put(ctx context.Context, ov store.OpenVote) error
	Delete(ctx context.Context, voteID string) error
}

// Gateway posts messages and reactions to chat channels, and reads them back.
type Gateway interface {
	PostMessage(ctx context.Context, channel, text string) (slack.Posted, error)
	AddReaction(ctx context.Context, name, channel, ts string) error
	Reactions(ctx context.Context, channel, ts string) (slack.Message, error)
}

// Response is shown inline only to the user who invoked the command.
// It's empty when the actual answer is posted to the channel.
type Response struct {
	Text string `json:"text,omitempty"`
}

// Dispatcher handles slash commands. It holds no state between requests.
type Dispatcher struct {
	token     string
	options   OptionStore
	openVotes OpenVoteStore
	chat      Gateway
	clock     clockwork.Clock

	// Pause after posting each option message, to avoid Slack's rate limits.
	postDelay time.Duration
}

func NewDispatcher(token string, o OptionStore, v OpenVoteStore, g Gateway, c clockwork.Clock, postDelay time.Duration) *Dispatcher {
	return &Dispatcher{
		token:     token,
		options:   o,
		openVotes: v,
		chat:      g,
		clock:     c,
		postDelay: postDelay,
	}
}

// Handle processes a single form-encoded slash command request. It never
// fails: all errors are converted into a user-visible response text.
func (d *Dispatcher) Handle(ctx context.Context, raw string) Response {
	l := zerolog.Ctx(ctx)

	req, err := command.Parse(raw)
	if err != nil {
		l.Warn().Err(err).Msg("failed to parse slash command")
		return errorResponse(err)
	}

	if !d.authorized(req.Envelope.Token()) {
		l.Warn().Msg("invalid slash command token")
		return Response{Text: invalidToken}
	}

	l.Info().Str("command", req.Kind.String()).Strs("args", req.Args).
		Str("user_name", req.Envelope.UserName()).
		Str("channel_name", req.Envelope.ChannelName()).
		Msg("received slash command")

	switch req.Kind {
	case command.Ping:
		return Response{Text: "pong"}
	case command.Help:
		return Response{Text: helpText}
	case command.List:
		return d.list(ctx, req)
	case command.Open:
		return d.open(ctx, req)
	case command.Close:
		return d.close(ctx, req)
	default: // [command.Unknown].
		return Response{Text: "unknown command"}
	}
}

// authorized compares the request's token with the configured shared
// secret in constant time. An unconfigured secret rejects everything.
func (d *Dispatcher) authorized(token string) bool {
	if d.token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(d.token)) == 1
}

// channel returns the name of the channel where the command was invoked.
func channel(req command.Request) string {
	return "#" + req.Envelope.ChannelName()
}

// pause waits for the configured post delay, unless the context is done first.
func (d *Dispatcher) pause(ctx context.Context) error {
	if d.postDelay <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-d.clock.After(d.postDelay):
		return nil
	}
}

// errorResponse distinguishes between Slack API errors and all other errors.
func errorResponse(err error) Response {
	ge := new(slack.GatewayError)
	if errors.As(err, &ge) {
		return Response{Text: fmt.Sprintf("Slack responded with error %v", ge.Err)}
	}
	return Response{Text: fmt.Sprintf("Error: %v", err)}
}
