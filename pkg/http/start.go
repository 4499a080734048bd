package http

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/lithammer/shortuuid/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"github.com/urfave/cli/v3"

	"github.com/tzrikka/votebot/pkg/etcd"
	"github.com/tzrikka/votebot/pkg/slack"
	"github.com/tzrikka/votebot/pkg/store"
	"github.com/tzrikka/votebot/pkg/thrippy"
	"github.com/tzrikka/votebot/pkg/votes"
)

// Start initializes votebot's HTTP server, backend clients, and logging.
func Start(ctx context.Context, cmd *cli.Command) error {
	InitLog(cmd.Bool("dev"))
	ctx = log.Logger.WithContext(ctx)

	secrets, err := loadSecrets(ctx, cmd)
	if err != nil {
		log.Err(err).Msg("failed to load secrets")
		return err
	}

	kv, err := etcd.Connect(cmd)
	if err != nil {
		log.Err(err).Send()
		return err
	}
	defer kv.Close()

	root := cmd.String("etcd-key-prefix")
	d := votes.NewDispatcher(
		secrets.VerificationToken,
		store.NewOptions(kv, root),
		store.NewOpenVotes(kv, root),
		slack.NewClient(secrets.BotToken, cmd.String("slack-api-url")),
		clockwork.NewRealClock(),
		cmd.Duration("post-delay"),
	)

	if secrets.AppToken != "" {
		sm := slack.NewSocketMode(ctx, secrets.AppToken, secrets.BotToken, cmd.String("slack-api-url"), socketHandler(d))
		go func() {
			if err := sm.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Err(err).Msg("Slack Socket Mode connection failed")
			}
		}()
	}

	return newHTTPServer(cmd, d, secrets.SigningSecret).run()
}

// InitLog initializes the logger for the votebot server,
// based on whether it's running in development mode or not.
func InitLog(devMode bool) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	if !devMode {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Caller().Logger()
		return
	}

	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05.000",
	}).With().Caller().Logger()

	log.Warn().Msg("********** DEV MODE - UNSAFE IN PRODUCTION! **********")
}

// loadSecrets reads Slack secrets from CLI flags, environment variables and files.
// If a Thrippy link ID is specified, its credentials fill in any missing secrets.
func loadSecrets(ctx context.Context, cmd *cli.Command) (thrippy.Secrets, error) {
	s := thrippy.NewSecrets(
		cmd.String("slack-bot-token"),
		cmd.String("slack-verification-token"),
		cmd.String("slack-signing-secret"),
		cmd.String("slack-app-token"),
	)

	if id := cmd.String("thrippy-link-id"); id != "" {
		if _, err := shortuuid.DefaultEncoder.Decode(id); err != nil {
			return s, fmt.Errorf("invalid Thrippy link ID %q: %w", id, err)
		}

		creds, err := thrippy.SecureCreds(cmd)
		if err != nil {
			return s, err
		}

		m, err := thrippy.LinkSecrets(ctx, cmd.String("thrippy-server-addr"), creds, id)
		if err != nil {
			return s, fmt.Errorf("failed to get Thrippy link secrets: %w", err)
		}
		if m == nil {
			return s, fmt.Errorf("Thrippy link not found: %s", id)
		}
		s.Fill(m)
	}

	if s.BotToken == "" {
		return s, errors.New("missing Slack bot token")
	}
	if s.VerificationToken == "" {
		return s, errors.New("missing Slack verification token")
	}

	return s, nil
}
