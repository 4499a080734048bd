package slack

import (
	"context"
	stdlog "log"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	slackgo "github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"
)

// CommandFunc handles a slash command in the same form-encoded representation
// that Slack sends to webhooks, and returns the (possibly empty) response text.
type CommandFunc func(ctx context.Context, form string) string

// SocketMode receives slash commands over a Slack Socket Mode WebSocket
// connection, instead of (or in addition to) inbound webhooks. This allows
// votebot to run without a public HTTP endpoint. Based on
// https://docs.slack.dev/apis/events-api/using-socket-mode.
type SocketMode struct {
	client  *socketmode.Client
	handler CommandFunc
	ack     func(ctx context.Context, envelopeID string, payload any) error
}

// NewSocketMode initializes a Socket Mode client with an app-level token
// (to open connections) and a bot token. The optional base URL is used in tests.
func NewSocketMode(ctx context.Context, appToken, botToken, baseURL string, f CommandFunc) *SocketMode {
	opts := []slackgo.Option{slackgo.OptionAppLevelToken(appToken)}
	if baseURL != "" {
		opts = append(opts, slackgo.OptionAPIURL(baseURL))
	}

	l := zerolog.Ctx(ctx).With().Str("component", "socketmode").Logger()
	c := socketmode.New(slackgo.New(botToken, opts...), socketmode.OptionLog(stdlog.New(l, "", 0)))

	return &SocketMode{client: c, handler: f, ack: c.AckCtx}
}

// Run connects to Slack and handles incoming slash commands. It reconnects
// automatically when Slack asks it to, and blocks until the context is
// canceled or a reconnection fails.
func (s *SocketMode) Run(ctx context.Context) error {
	go s.receiveEvents(ctx)
	return s.client.RunContext(ctx)
}

func (s *SocketMode) receiveEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-s.client.Events:
			s.handleEvent(ctx, evt)
		}
	}
}

func (s *SocketMode) handleEvent(ctx context.Context, evt socketmode.Event) {
	l := zerolog.Ctx(ctx)
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		l.Debug().Msg("connecting to Slack in Socket Mode")

	case socketmode.EventTypeConnected:
		l.Info().Msg("connected to Slack in Socket Mode")

	case socketmode.EventTypeConnectionError, socketmode.EventTypeInvalidAuth, socketmode.EventTypeIncomingError:
		l.Warn().Str("event_type", string(evt.Type)).Interface("data", evt.Data).
			Msg("Slack Socket Mode error")

	case socketmode.EventTypeSlashCommand:
		cmd, ok := evt.Data.(slackgo.SlashCommand)
		if !ok || evt.Request == nil {
			l.Warn().Msgf("unexpected Socket Mode slash command data: %T", evt.Data)
			s.ackEmpty(ctx, evt)
			return
		}
		// Opening a vote takes a while, don't block other commands.
		go s.handleCommand(ctx, evt.Request.EnvelopeID, cmd)

	default:
		// Events and interactions are not used, but must still be acknowledged.
		s.ackEmpty(ctx, evt)
	}
}

func (s *SocketMode) ackEmpty(ctx context.Context, evt socketmode.Event) {
	if evt.Request == nil || evt.Request.EnvelopeID == "" {
		return
	}
	if err := s.ack(ctx, evt.Request.EnvelopeID, nil); err != nil {
		zerolog.Ctx(ctx).Err(err).Str("event_type", string(evt.Type)).Msg("failed to acknowledge Slack event")
	}
}

// handleCommand acknowledges the envelope before dispatching the command,
// because Slack expects an acknowledgement within 3 seconds, and opening
// a vote takes longer. The response text is sent to the command's response URL.
func (s *SocketMode) handleCommand(ctx context.Context, envelopeID string, cmd slackgo.SlashCommand) {
	l := zerolog.Ctx(ctx).With().Str("envelope_id", envelopeID).Logger()
	l.Info().Str("command", cmd.Command).Msg("received Slack slash command")

	if err := s.ack(ctx, envelopeID, nil); err != nil {
		l.Err(err).Msg("failed to acknowledge Slack slash command")
		return
	}

	text := s.handler(l.WithContext(ctx), formValues(cmd).Encode())
	if text == "" || cmd.ResponseURL == "" {
		return
	}

	msg := &slackgo.WebhookMessage{Text: text, ResponseType: slackgo.ResponseTypeEphemeral}
	if err := slackgo.PostWebhookContext(ctx, cmd.ResponseURL, msg); err != nil {
		l.Err(err).Msg("failed to send Slack slash command response")
	}
}

// formValues converts a slash command back into the fields of its webhook form.
// Slack omits the command name from the text, so it's restored as the first token.
func formValues(cmd slackgo.SlashCommand) url.Values {
	text := strings.TrimSpace(strings.TrimPrefix(cmd.Command, "/") + " " + cmd.Text)

	return url.Values{
		"token":        {cmd.Token},
		"team_id":      {cmd.TeamID},
		"team_domain":  {cmd.TeamDomain},
		"channel_id":   {cmd.ChannelID},
		"channel_name": {cmd.ChannelName},
		"user_id":      {cmd.UserID},
		"user_name":    {cmd.UserName},
		"command":      {cmd.Command},
		"text":         {text},
		"response_url": {cmd.ResponseURL},
		"trigger_id":   {cmd.TriggerID},
		"api_app_id":   {cmd.APIAppID},
	}
}
