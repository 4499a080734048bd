package votes

import (
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

// Flags defines CLI flags to configure vote handling. These flags can also
// be set using environment variables and the application's configuration file.
func Flags(configFilePath altsrc.StringSourcer) []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:  "post-delay",
			Usage: "pause after posting each vote option, to avoid Slack rate limits",
			Value: DefaultPostDelay,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("VOTEBOT_POST_DELAY"),
				toml.TOML("votes.post_delay", configFilePath),
			),
		},
	}
}
