package slack

import (
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

// Flags defines CLI flags to configure the Slack API client and the verification
// of inbound requests. These flags can also be set using environment variables,
// secret files, and the application's configuration file.
func Flags(configFilePath altsrc.StringSourcer) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "slack-bot-token",
			Usage: "Slack bot API token, to post messages and reactions",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("SLACK_BOT_API_TOKEN"),
				cli.File("SLACK_BOT_API_TOKEN"),
				toml.TOML("slack.bot_token", configFilePath),
			),
		},
		&cli.StringFlag{
			Name:  "slack-verification-token",
			Usage: "shared token that Slack sends with each slash command request",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("SLACK_CHANNEL_TOKEN"),
				cli.File("SLACK_CHANNEL_TOKEN"),
				toml.TOML("slack.verification_token", configFilePath),
			),
		},
		&cli.StringFlag{
			Name:  "slack-signing-secret",
			Usage: "optional Slack app signing secret, to verify request signatures",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("SLACK_SIGNING_SECRET"),
				toml.TOML("slack.signing_secret", configFilePath),
			),
		},
		&cli.StringFlag{
			Name:  "slack-app-token",
			Usage: "optional Slack app-level token, to receive slash commands in Socket Mode",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("SLACK_APP_TOKEN"),
				toml.TOML("slack.app_token", configFilePath),
			),
		},
		&cli.StringFlag{
			Name:  "slack-api-url",
			Usage: "base URL of the Slack Web API (for testing)",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("SLACK_API_URL"),
				toml.TOML("slack.api_url", configFilePath),
			),
		},
	}
}
